// internal/price/jupiter.go
package price

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	// DefaultJupiterURL – Jupiter Price API v2.
	DefaultJupiterURL = "https://lite-api.jup.ag/price/v2"
	// DefaultMaxTries – общее число попыток запроса цены.
	DefaultMaxTries = 3

	defaultRetryInterval = 250 * time.Millisecond
	defaultHTTPTimeout   = 5 * time.Second
)

var (
	// ErrPriceNotFound – API не знает цену токена. Не повторяется.
	ErrPriceNotFound = errors.New("price not found")
	// ErrUnexpectedStatus – API ответило неожиданным HTTP статусом.
	ErrUnexpectedStatus = errors.New("unexpected price API status")
)

// JupiterConfig задает параметры клиента Jupiter.
type JupiterConfig struct {
	BaseURL       string
	MaxTries      uint
	RetryInterval time.Duration
	HTTPClient    *http.Client
}

// JupiterOracle получает текущие цены из Jupiter Price API.
type JupiterOracle struct {
	baseURL       string
	maxTries      uint
	retryInterval time.Duration
	httpClient    *http.Client
	logger        *zap.Logger
}

// jupiterResponse – ответ /price/v2?ids=<mint>
type jupiterResponse struct {
	Data map[string]*struct {
		ID    string          `json:"id"`
		Type  string          `json:"type"`
		Price decimal.Decimal `json:"price"`
	} `json:"data"`
}

// NewJupiterOracle создает клиент Jupiter.
func NewJupiterOracle(cfg JupiterConfig, logger *zap.Logger) *JupiterOracle {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultJupiterURL
	}
	if cfg.MaxTries == 0 {
		cfg.MaxTries = DefaultMaxTries
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = defaultRetryInterval
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &JupiterOracle{
		baseURL:       cfg.BaseURL,
		maxTries:      cfg.MaxTries,
		retryInterval: cfg.RetryInterval,
		httpClient:    cfg.HTTPClient,
		logger:        logger.Named("jupiter-oracle"),
	}
}

// CurrentPrice возвращает текущую цену токена в USD.
// Ошибки сети и 5xx повторяются с экспоненциальной задержкой.
func (o *JupiterOracle) CurrentPrice(ctx context.Context, mint string) (decimal.Decimal, error) {
	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = o.retryInterval

	operation := func() (decimal.Decimal, error) {
		return o.fetch(ctx, mint)
	}

	price, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(expBackoff),
		backoff.WithMaxTries(o.maxTries),
		backoff.WithNotify(func(err error, next time.Duration) {
			o.logger.Debug("Price request failed, retrying",
				zap.String("mint", mint),
				zap.Duration("next_attempt", next),
				zap.Error(err))
		}),
	)
	if err != nil {
		return decimal.Zero, fmt.Errorf("jupiter price for %s: %w", mint, err)
	}
	return price, nil
}

func (o *JupiterOracle) fetch(ctx context.Context, mint string) (decimal.Decimal, error) {
	endpoint := o.baseURL + "?ids=" + url.QueryEscape(mint)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return decimal.Zero, backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return decimal.Zero, backoff.Permanent(ctx.Err())
		}
		return decimal.Zero, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError:
		return decimal.Zero, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	default:
		return decimal.Zero, backoff.Permanent(fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode))
	}

	var body jupiterResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return decimal.Zero, backoff.Permanent(fmt.Errorf("failed to decode price response: %w", err))
	}

	entry, ok := body.Data[mint]
	if !ok || entry == nil {
		return decimal.Zero, backoff.Permanent(ErrPriceNotFound)
	}
	return entry.Price, nil
}
