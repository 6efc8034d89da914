// internal/pnl/types.go
package pnl

import (
	"errors"

	"github.com/shopspring/decimal"
)

// LamportsPerSOL is the native unit scale: raw lamport values are divided by it.
const (
	LamportsPerSOL   = 1_000_000_000
	lamportsExponent = 9
)

var (
	ErrInvalidAddress          = errors.New("invalid address")
	ErrMetadataUnavailable     = errors.New("token metadata unavailable")
	ErrTransactionsUnavailable = errors.New("wallet transactions unavailable")
	ErrPriceUnavailable        = errors.New("price unavailable")
	ErrInvalidPrice            = errors.New("invalid price")
)

// TokenBalance is one account's token balance snapshot inside a transaction.
type TokenBalance struct {
	AccountIndex uint16
	Mint         string
	Owner        string
	Amount       uint64 // raw integer amount, decimals not applied
}

// TransactionRecord is a parsed on-chain transaction as seen by the engine.
// Produced by the chain client; the engine only reads it.
type TransactionRecord struct {
	Signature         string
	PreTokenBalances  []TokenBalance
	PostTokenBalances []TokenBalance
	PreBalances       []uint64 // lamports, index 0 is the fee payer
	PostBalances      []uint64
	Fee               uint64 // lamports
	BlockTime         *int64 // seconds since epoch, nil if unknown
}

// TradeKind is the direction of a trade event.
type TradeKind string

const (
	Buy  TradeKind = "buy"
	Sell TradeKind = "sell"
)

// TradeEvent is a buy or sell derived from a single transaction record.
type TradeEvent struct {
	Kind        TradeKind
	TokenAmount decimal.Decimal // raw token units, always positive
	UnitPrice   decimal.Decimal // SOL per raw token unit
	Timestamp   int64
	FeePaid     decimal.Decimal // SOL
}

// Value returns amount*unitPrice in SOL.
func (e TradeEvent) Value() decimal.Decimal {
	return e.TokenAmount.Mul(e.UnitPrice)
}

// Report is the result of a PnL analysis for one (wallet, token) pair.
type Report struct {
	TokenName    string          `json:"token_name"`
	TotalSpent   decimal.Decimal `json:"total_spent"`
	TotalFees    decimal.Decimal `json:"total_fees"`
	TotalSales   decimal.Decimal `json:"total_sales"`
	ProfitNative decimal.Decimal `json:"profit_native"`
	ProfitFiat   decimal.Decimal `json:"profit_fiat"`
	ROIPercent   decimal.Decimal `json:"roi_percent"`

	CurrentPrice decimal.Decimal `json:"current_price"`
	Buys         int             `json:"buys"`
	Sells        int             `json:"sells"`
}
