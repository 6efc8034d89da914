package solbc

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	solanarpc "github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/rovshanmuradov/solana-pnl-bot/internal/blockchain/solbc/rpc"
)

// mockAPI имитирует RPC узел
type mockAPI struct {
	mock.Mock
}

func (m *mockAPI) GetSignaturesForAddressWithOpts(
	ctx context.Context,
	account solana.PublicKey,
	opts *solanarpc.GetSignaturesForAddressOpts,
) ([]*solanarpc.TransactionSignature, error) {
	args := m.Called(ctx, account, opts)
	out, _ := args.Get(0).([]*solanarpc.TransactionSignature)
	return out, args.Error(1)
}

func (m *mockAPI) GetTransaction(
	ctx context.Context,
	txSig solana.Signature,
	opts *solanarpc.GetTransactionOpts,
) (*solanarpc.GetTransactionResult, error) {
	args := m.Called(ctx, txSig, opts)
	out, _ := args.Get(0).(*solanarpc.GetTransactionResult)
	return out, args.Error(1)
}

func (m *mockAPI) GetAccountInfo(ctx context.Context, account solana.PublicKey) (*solanarpc.GetAccountInfoResult, error) {
	args := m.Called(ctx, account)
	out, _ := args.Get(0).(*solanarpc.GetAccountInfoResult)
	return out, args.Error(1)
}

// mockAccounts имитирует AccountReader
type mockAccounts struct {
	mock.Mock
}

func (m *mockAccounts) AccountData(ctx context.Context, account solana.PublicKey) ([]byte, error) {
	args := m.Called(ctx, account)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func newTestClient(t *testing.T, api *mockAPI, cfg ClientConfig) *Client {
	t.Helper()
	pool, err := rpc.NewPoolFromNodes([]*rpc.NodeClient{{API: api, URL: "mock://node"}}, zaptest.NewLogger(t))
	require.NoError(t, err)
	return NewClient(pool, cfg, zaptest.NewLogger(t))
}
