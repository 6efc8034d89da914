// internal/blockchain/solbc/rpc/types.go
package rpc

import (
	"context"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
)

// API – подмножество методов solana-go RPC, которые использует бот.
// *solanarpc.Client удовлетворяет этому интерфейсу.
type API interface {
	GetSignaturesForAddressWithOpts(
		ctx context.Context,
		account solana.PublicKey,
		opts *solanarpc.GetSignaturesForAddressOpts,
	) ([]*solanarpc.TransactionSignature, error)
	GetTransaction(
		ctx context.Context,
		txSig solana.Signature,
		opts *solanarpc.GetTransactionOpts,
	) (*solanarpc.GetTransactionResult, error)
	GetAccountInfo(ctx context.Context, account solana.PublicKey) (*solanarpc.GetAccountInfoResult, error)
}

// NodeClient представляет отдельный RPC узел
type NodeClient struct {
	API     API
	URL     string
	metrics metrics
}

// metrics содержит метрики производительности RPC узла
type metrics struct {
	successCount uint64
	errorCount   uint64
	latency      time.Duration
	mutex        sync.RWMutex
}

// Pool распределяет запросы по узлам round-robin.
type Pool struct {
	nodes  []*NodeClient
	logger *zap.Logger
	next   uint64
	mu     sync.Mutex
}
