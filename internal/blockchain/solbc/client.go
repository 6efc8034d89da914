// internal/blockchain/solbc/client.go
package solbc

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rovshanmuradov/solana-pnl-bot/internal/blockchain/solbc/rpc"
	"github.com/rovshanmuradov/solana-pnl-bot/internal/pnl"
)

const (
	// DefaultSignatureLimit – сколько последних подписей запрашивать у кошелька.
	DefaultSignatureLimit = 100
	// DefaultConcurrency – сколько getTransaction выполняется параллельно.
	DefaultConcurrency = 8
)

// ErrAccountNotFound возвращается, когда аккаунт отсутствует в сети.
var ErrAccountNotFound = errors.New("account not found")

// maxTransactionVersion позволяет получать versioned (v0) транзакции.
var maxTransactionVersion uint64 = 0

// ClientConfig задает параметры выборки истории кошелька.
type ClientConfig struct {
	SignatureLimit int
	Concurrency    int
}

// Client – тонкий адаптер над пулом RPC узлов Solana.
type Client struct {
	pool           *rpc.Pool
	logger         *zap.Logger
	signatureLimit int
	concurrency    int
}

// NewClient создаёт новый клиент, принимая пул RPC и логгер через dependency injection.
func NewClient(pool *rpc.Pool, cfg ClientConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SignatureLimit <= 0 {
		cfg.SignatureLimit = DefaultSignatureLimit
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	return &Client{
		pool:           pool,
		logger:         logger.Named("solbc-client"),
		signatureLimit: cfg.SignatureLimit,
		concurrency:    cfg.Concurrency,
	}
}

// WalletTransactions возвращает разобранные транзакции кошелька в порядке подписей
// (самые новые первыми). Транзакции, которые узел не вернул, пропускаются.
// Любая другая ошибка RPC прерывает выборку.
func (c *Client) WalletTransactions(ctx context.Context, wallet string) ([]pnl.TransactionRecord, error) {
	owner, err := solana.PublicKeyFromBase58(wallet)
	if err != nil {
		return nil, fmt.Errorf("%w: wallet %q: %v", pnl.ErrInvalidAddress, wallet, err)
	}

	signatures, err := c.signatures(ctx, owner)
	if err != nil {
		return nil, err
	}

	results := make([]*pnl.TransactionRecord, len(signatures))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)

	for i, sig := range signatures {
		if sig == nil {
			continue
		}
		i, signature := i, sig.Signature
		g.Go(func() error {
			tx, err := c.transaction(gctx, signature)
			if err != nil {
				return err
			}
			if rec, ok := ToRecord(signature.String(), tx); ok {
				results[i] = &rec
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	records := make([]pnl.TransactionRecord, 0, len(results))
	for _, rec := range results {
		if rec != nil {
			records = append(records, *rec)
		}
	}

	c.logger.Debug("Wallet transactions fetched",
		zap.String("wallet", wallet),
		zap.Int("signatures", len(signatures)),
		zap.Int("transactions", len(records)))

	return records, nil
}

func (c *Client) signatures(ctx context.Context, owner solana.PublicKey) ([]*solanarpc.TransactionSignature, error) {
	limit := c.signatureLimit
	var out []*solanarpc.TransactionSignature

	err := c.pool.Do(ctx, "getSignaturesForAddress", func(api rpc.API) error {
		var err error
		out, err = api.GetSignaturesForAddressWithOpts(ctx, owner, &solanarpc.GetSignaturesForAddressOpts{
			Limit:      &limit,
			Commitment: solanarpc.CommitmentConfirmed,
		})
		return err
	})
	if err != nil {
		c.logger.Warn("getSignaturesForAddress failed", rpcErrorFields(err)...)
		return nil, fmt.Errorf("failed to get signatures for %s: %w", owner, err)
	}
	return out, nil
}

// transaction возвращает nil без ошибки, если узел не знает транзакцию.
func (c *Client) transaction(ctx context.Context, sig solana.Signature) (*solanarpc.GetTransactionResult, error) {
	var out *solanarpc.GetTransactionResult

	err := c.pool.Do(ctx, "getTransaction", func(api rpc.API) error {
		var err error
		out, err = api.GetTransaction(ctx, sig, &solanarpc.GetTransactionOpts{
			Encoding:                       solana.EncodingBase64,
			Commitment:                     solanarpc.CommitmentConfirmed,
			MaxSupportedTransactionVersion: &maxTransactionVersion,
		})
		return err
	})
	if errors.Is(err, solanarpc.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		c.logger.Warn("getTransaction failed",
			append(rpcErrorFields(err), zap.String("signature", sig.String()))...)
		return nil, fmt.Errorf("failed to get transaction %s: %w", sig, err)
	}
	return out, nil
}

// AccountData возвращает сырые данные аккаунта.
func (c *Client) AccountData(ctx context.Context, account solana.PublicKey) ([]byte, error) {
	var out *solanarpc.GetAccountInfoResult

	err := c.pool.Do(ctx, "getAccountInfo", func(api rpc.API) error {
		var err error
		out, err = api.GetAccountInfo(ctx, account)
		return err
	})
	if errors.Is(err, solanarpc.ErrNotFound) || (err == nil && (out == nil || out.Value == nil)) {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, account)
	}
	if err != nil {
		c.logger.Debug("getAccountInfo failed",
			append(rpcErrorFields(err), zap.String("pubkey", account.String()))...)
		return nil, err
	}
	return out.Value.Data.GetBinary(), nil
}

// Гарантируем, что Client реализует порт истории кошелька.
var _ pnl.TransactionSource = (*Client)(nil)
