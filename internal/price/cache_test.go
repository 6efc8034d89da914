package price

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type mockOracle struct {
	mock.Mock
}

func (m *mockOracle) CurrentPrice(ctx context.Context, mint string) (decimal.Decimal, error) {
	args := m.Called(ctx, mint)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

type memoryStore struct {
	mu      sync.Mutex
	prices  map[string]decimal.Decimal
	ttls    map[string]time.Duration
	readErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{prices: map[string]decimal.Decimal{}, ttls: map[string]time.Duration{}}
}

func (s *memoryStore) Get(_ context.Context, mint string) (decimal.Decimal, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.readErr != nil {
		return decimal.Zero, false, s.readErr
	}
	p, ok := s.prices[mint]
	return p, ok, nil
}

func (s *memoryStore) Set(_ context.Context, mint string, price decimal.Decimal, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prices[mint] = price
	s.ttls[mint] = ttl
	return nil
}

type countingRecorder struct {
	mu     sync.Mutex
	counts map[string]int
}

func (r *countingRecorder) CountPriceLookup(result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.counts == nil {
		r.counts = map[string]int{}
	}
	r.counts[result]++
}

func TestCachedOracle(t *testing.T) {
	ctx := context.Background()
	next := new(mockOracle)
	next.On("CurrentPrice", ctx, solMint).Return(decimal.RequireFromString("171.5"), nil).Once()

	store := newMemoryStore()
	recorder := &countingRecorder{}
	oracle := NewCachedOracle(next, store, time.Minute, recorder, zaptest.NewLogger(t))

	for i := 0; i < 3; i++ {
		price, err := oracle.CurrentPrice(ctx, solMint)
		require.NoError(t, err)
		assert.Equal(t, "171.5", price.String())
	}

	next.AssertExpectations(t)
	assert.Equal(t, time.Minute, store.ttls[solMint])
	assert.Equal(t, map[string]int{"miss": 1, "hit": 2}, recorder.counts)
}

func TestCachedOracle_StoreFailureBypassesCache(t *testing.T) {
	ctx := context.Background()
	next := new(mockOracle)
	next.On("CurrentPrice", ctx, solMint).Return(decimal.NewFromInt(150), nil).Twice()

	store := newMemoryStore()
	store.readErr = errors.New("connection refused")
	oracle := NewCachedOracle(next, store, 0, nil, zaptest.NewLogger(t))

	for i := 0; i < 2; i++ {
		price, err := oracle.CurrentPrice(ctx, solMint)
		require.NoError(t, err)
		assert.True(t, price.Equal(decimal.NewFromInt(150)))
	}
	next.AssertExpectations(t)
	assert.Equal(t, DefaultCacheTTL, store.ttls[solMint])
}

func TestCachedOracle_SourceErrorIsNotCached(t *testing.T) {
	ctx := context.Background()
	next := new(mockOracle)
	next.On("CurrentPrice", ctx, solMint).Return(decimal.Zero, ErrPriceNotFound).Once()

	store := newMemoryStore()
	oracle := NewCachedOracle(next, store, time.Minute, nil, zaptest.NewLogger(t))

	_, err := oracle.CurrentPrice(ctx, solMint)
	assert.ErrorIs(t, err, ErrPriceNotFound)
	assert.Empty(t, store.prices)
}
