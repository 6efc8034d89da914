// internal/blockchain/solbc/token_metadata.go
package solbc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-pnl-bot/internal/pnl"
)

const metadataTTL = 5 * time.Minute

// TokenMetadataProgramID – программа Metaplex Token Metadata.
var TokenMetadataProgramID = solana.MustPublicKeyFromBase58("metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s")

// ErrInvalidMetadata возвращается, если аккаунт метаданных не декодируется.
var ErrInvalidMetadata = errors.New("invalid token metadata account")

// AccountReader читает сырые данные аккаунта.
type AccountReader interface {
	AccountData(ctx context.Context, account solana.PublicKey) ([]byte, error)
}

// TokenMetadata хранит информацию о токене
type TokenMetadata struct {
	Name      string
	Symbol    string
	URI       string
	Source    string // "chain", "known"
	UpdatedAt time.Time
}

// DisplayName возвращает имя токена, а при его отсутствии – символ.
func (m *TokenMetadata) DisplayName() string {
	if m.Name != "" {
		return m.Name
	}
	return m.Symbol
}

// metaplexMetadata – префикс аккаунта Metaplex Metadata в borsh-раскладке.
// Остальные поля (creators, collection, ...) не нужны и не читаются.
type metaplexMetadata struct {
	Key             uint8
	UpdateAuthority solana.PublicKey
	Mint            solana.PublicKey
	Name            string
	Symbol          string
	URI             string
}

// TokenMetadataCache управляет кэшированием метаданных токенов
type TokenMetadataCache struct {
	cache    sync.Map
	accounts AccountReader
	logger   *zap.Logger
	ttl      time.Duration
	now      func() time.Time
}

// NewTokenMetadataCache создаёт резолвер имён токенов поверх AccountReader.
func NewTokenMetadataCache(accounts AccountReader, logger *zap.Logger) *TokenMetadataCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TokenMetadataCache{
		accounts: accounts,
		logger:   logger.Named("token-metadata"),
		ttl:      metadataTTL,
		now:      time.Now,
	}
}

// FindMetadataAddress вычисляет PDA метаданных: ["metadata", programID, mint].
func FindMetadataAddress(mint solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{
			[]byte("metadata"),
			TokenMetadataProgramID.Bytes(),
			mint.Bytes(),
		},
		TokenMetadataProgramID,
	)
	return addr, err
}

// TokenName возвращает отображаемое имя токена.
func (c *TokenMetadataCache) TokenName(ctx context.Context, mint string) (string, error) {
	key, err := solana.PublicKeyFromBase58(mint)
	if err != nil {
		return "", fmt.Errorf("%w: mint %q: %v", pnl.ErrInvalidAddress, mint, err)
	}
	metadata, err := c.GetTokenMetadata(ctx, key)
	if err != nil {
		return "", err
	}
	return metadata.DisplayName(), nil
}

// GetTokenMetadata получает метаданные токена с кэшированием
func (c *TokenMetadataCache) GetTokenMetadata(ctx context.Context, mint solana.PublicKey) (*TokenMetadata, error) {
	// 1. Проверяем кэш
	if metadata, ok := c.getFromCache(mint.String()); ok {
		return metadata, nil
	}

	// 2. Получаем on-chain данные
	metadata, err := c.getFromChain(ctx, mint)
	if err != nil {
		// 3. Известные токены отдаем даже без аккаунта метаданных
		known, ok := knownToken(mint)
		if !ok {
			c.logger.Debug("failed to get on-chain metadata",
				zap.String("mint", mint.String()),
				zap.Error(err))
			return nil, err
		}
		metadata = known
	}

	metadata.UpdatedAt = c.now()
	c.cache.Store(mint.String(), metadata)

	c.logger.Debug("token metadata retrieved",
		zap.String("mint", mint.String()),
		zap.String("symbol", metadata.Symbol),
		zap.String("name", metadata.Name),
		zap.String("source", metadata.Source))

	return metadata, nil
}

// getFromCache получает метаданные из кэша с проверкой TTL
func (c *TokenMetadataCache) getFromCache(mint string) (*TokenMetadata, bool) {
	if value, ok := c.cache.Load(mint); ok {
		metadata := value.(*TokenMetadata)
		if c.now().Sub(metadata.UpdatedAt) < c.ttl {
			return metadata, true
		}
		// Если данные устарели, удаляем их из кэша
		c.cache.Delete(mint)
	}
	return nil, false
}

// getFromChain читает и декодирует аккаунт Metaplex
func (c *TokenMetadataCache) getFromChain(ctx context.Context, mint solana.PublicKey) (*TokenMetadata, error) {
	pda, err := FindMetadataAddress(mint)
	if err != nil {
		return nil, fmt.Errorf("failed to derive metadata address: %w", err)
	}

	data, err := c.accounts.AccountData(ctx, pda)
	if err != nil {
		return nil, fmt.Errorf("failed to get metadata account: %w", err)
	}

	return DecodeMetadata(data)
}

// DecodeMetadata декодирует данные аккаунта Metaplex Metadata.
func DecodeMetadata(data []byte) (*TokenMetadata, error) {
	var raw metaplexMetadata
	if err := bin.NewBorshDecoder(data).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMetadata, err)
	}

	// Metaplex дополняет строки нулевыми байтами до фиксированной длины
	return &TokenMetadata{
		Name:   trimPadding(raw.Name),
		Symbol: trimPadding(raw.Symbol),
		URI:    trimPadding(raw.URI),
		Source: "chain",
	}, nil
}

func trimPadding(s string) string {
	return strings.TrimSpace(strings.TrimRight(s, "\x00"))
}

// knownToken возвращает метаданные для известных токенов
func knownToken(mint solana.PublicKey) (*TokenMetadata, bool) {
	var name, symbol string
	switch mint.String() {
	case pnl.WrappedSOLMint: // wSOL
		symbol, name = "SOL", "Wrapped SOL"
	case "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v": // USDC
		symbol, name = "USDC", "USD Coin"
	case "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263": // Bonk
		symbol, name = "BONK", "Bonk"
	default:
		return nil, false
	}
	return &TokenMetadata{Name: name, Symbol: symbol, Source: "known"}, true
}

// Гарантируем, что кэш реализует порт резолвера имён.
var _ pnl.MetadataResolver = (*TokenMetadataCache)(nil)
