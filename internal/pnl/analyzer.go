// internal/pnl/analyzer.go
package pnl

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// WrappedSOLMint is the default quote asset used to convert SOL profit to USD.
const WrappedSOLMint = "So11111111111111111111111111111111111111112"

// QuoteAnalyzedToken as QuoteMint prices the analysed token itself.
const QuoteAnalyzedToken = "token"

// TransactionSource returns the parsed transaction history of a wallet.
type TransactionSource interface {
	WalletTransactions(ctx context.Context, wallet string) ([]TransactionRecord, error)
}

// PriceOracle returns the current fiat price of a token.
type PriceOracle interface {
	CurrentPrice(ctx context.Context, mint string) (decimal.Decimal, error)
}

// MetadataResolver returns a human-readable token name.
type MetadataResolver interface {
	TokenName(ctx context.Context, mint string) (string, error)
}

// Recorder receives analysis metrics. A nil Recorder is allowed.
type Recorder interface {
	ObserveAnalysis(outcome string, elapsed time.Duration)
	CountTradeEvent(kind string)
}

// AnalyzerConfig wires the collaborators of an Analyzer.
type AnalyzerConfig struct {
	Transactions TransactionSource
	Prices       PriceOracle
	Metadata     MetadataResolver
	Recorder     Recorder
	Logger       *zap.Logger

	// QuoteMint is the asset whose price converts native profit to fiat.
	// Empty means wSOL; QuoteAnalyzedToken means the analysed mint.
	QuoteMint string
	// Classifier options, e.g. WithOwner. Empty keeps the default heuristic.
	ClassifierOptions []ClassifierOption
}

// Analyzer fetches the inputs of the PnL engine and runs it.
type Analyzer struct {
	txs        TransactionSource
	prices     PriceOracle
	metadata   MetadataResolver
	recorder   Recorder
	logger     *zap.Logger
	quoteMint  string
	classifier *Classifier
}

// NewAnalyzer creates an Analyzer.
func NewAnalyzer(cfg AnalyzerConfig) *Analyzer {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	quote := cfg.QuoteMint
	if quote == "" {
		quote = WrappedSOLMint
	}
	return &Analyzer{
		txs:        cfg.Transactions,
		prices:     cfg.Prices,
		metadata:   cfg.Metadata,
		recorder:   cfg.Recorder,
		logger:     logger.Named("pnl-analyzer"),
		quoteMint:  quote,
		classifier: NewClassifier(cfg.ClassifierOptions...),
	}
}

// Analyze builds the PnL report of wallet for the token mint.
func (a *Analyzer) Analyze(ctx context.Context, wallet, mint string) (report *Report, err error) {
	start := time.Now()
	defer func() {
		a.observe(err, time.Since(start))
	}()

	logger := a.logger.With(zap.String("wallet", wallet), zap.String("mint", mint))

	name, err := a.metadata.TokenName(ctx, mint)
	if err != nil {
		logger.Warn("Token metadata lookup failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrMetadataUnavailable, err)
	}

	records, err := a.txs.WalletTransactions(ctx, wallet)
	if err != nil {
		logger.Warn("Wallet history fetch failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrTransactionsUnavailable, err)
	}

	events := a.classifier.Classify(records, mint)
	if a.recorder != nil {
		for _, ev := range events {
			a.recorder.CountTradeEvent(string(ev.Kind))
		}
	}

	quote := a.quoteMint
	if quote == QuoteAnalyzedToken {
		quote = mint
	}
	price, err := a.prices.CurrentPrice(ctx, quote)
	if err != nil {
		logger.Warn("Price lookup failed", zap.String("quote_mint", quote), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrPriceUnavailable, err)
	}
	if price.IsNegative() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPrice, price)
	}

	result := Aggregate(events, price, name)

	logger.Info("PnL analysis completed",
		zap.String("token", name),
		zap.Int("transactions", len(records)),
		zap.Int("trade_events", len(events)),
		zap.String("profit_sol", result.ProfitNative.String()),
		zap.String("roi_percent", result.ROIPercent.StringFixed(2)))

	return &result, nil
}

func (a *Analyzer) observe(err error, elapsed time.Duration) {
	if a.recorder == nil {
		return
	}
	a.recorder.ObserveAnalysis(Outcome(err), elapsed)
}

// Outcome maps an Analyze error to a short label for metrics and logs.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrInvalidAddress):
		return "invalid_address"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, ErrMetadataUnavailable):
		return "metadata_unavailable"
	case errors.Is(err, ErrTransactionsUnavailable):
		return "transactions_unavailable"
	case errors.Is(err, ErrPriceUnavailable):
		return "price_unavailable"
	case errors.Is(err, ErrInvalidPrice):
		return "invalid_price"
	default:
		return "error"
	}
}
