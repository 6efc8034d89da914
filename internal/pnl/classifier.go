// internal/pnl/classifier.go
package pnl

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// unitPricePrecision is the number of decimal places kept for SOL-per-unit prices.
const unitPricePrecision = 36

// Classifier turns transaction records into buy/sell events for one token.
//
// All native balance movement of the fee payer (index 0) is attributed to the
// token trade, and the pre snapshot is the first one matching the mint; the post
// snapshot must belong to the same token account. Both are known
// simplifications kept as the default behaviour; WithOwner narrows the token
// snapshots to a single owner.
type Classifier struct {
	owner string
}

// ClassifierOption configures a Classifier.
type ClassifierOption func(*Classifier)

// WithOwner restricts token balance snapshots to the given owner address.
func WithOwner(owner string) ClassifierOption {
	return func(c *Classifier) {
		c.owner = owner
	}
}

// NewClassifier creates a classifier.
func NewClassifier(opts ...ClassifierOption) *Classifier {
	c := &Classifier{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify classifies records with the default classifier.
func Classify(records []TransactionRecord, tokenMint string) []TradeEvent {
	return NewClassifier().Classify(records, tokenMint)
}

// Classify walks records once, in order, and emits at most one event per record.
// Records that did not move the token balance, or lack the data needed to price
// the move, are skipped.
func (c *Classifier) Classify(records []TransactionRecord, tokenMint string) []TradeEvent {
	events := make([]TradeEvent, 0, len(records))
	for i := range records {
		if ev, ok := c.classifyOne(&records[i], tokenMint); ok {
			events = append(events, ev)
		}
	}
	return events
}

func (c *Classifier) classifyOne(rec *TransactionRecord, tokenMint string) (TradeEvent, bool) {
	pre, ok := c.findBalance(rec.PreTokenBalances, tokenMint)
	if !ok {
		return TradeEvent{}, false
	}
	post, ok := c.findAccount(rec.PostTokenBalances, pre)
	if !ok {
		return TradeEvent{}, false
	}
	if pre.Amount == post.Amount {
		return TradeEvent{}, false
	}
	if len(rec.PreBalances) == 0 || len(rec.PostBalances) == 0 {
		return TradeEvent{}, false
	}

	nativeDelta := lamportsToSOL(absDiff(rec.PreBalances[0], rec.PostBalances[0]))
	fee := lamportsToSOL(rec.Fee)

	kind := Buy
	size := post.Amount - pre.Amount
	if post.Amount < pre.Amount {
		kind = Sell
		size = pre.Amount - post.Amount
	}
	amount := fromUint64(size)

	var ts int64
	if rec.BlockTime != nil {
		ts = *rec.BlockTime
	}

	return TradeEvent{
		Kind:        kind,
		TokenAmount: amount,
		UnitPrice:   nativeDelta.DivRound(amount, unitPricePrecision),
		Timestamp:   ts,
		FeePaid:     fee,
	}, true
}

// findBalance returns the first snapshot for mint (and owner, when configured).
func (c *Classifier) findBalance(balances []TokenBalance, mint string) (TokenBalance, bool) {
	for _, b := range balances {
		if b.Mint != mint {
			continue
		}
		if c.owner != "" && b.Owner != c.owner {
			continue
		}
		return b, true
	}
	return TokenBalance{}, false
}

// findAccount returns the snapshot of the same token account as ref.
func (c *Classifier) findAccount(balances []TokenBalance, ref TokenBalance) (TokenBalance, bool) {
	for _, b := range balances {
		if b.AccountIndex != ref.AccountIndex || b.Mint != ref.Mint {
			continue
		}
		if c.owner != "" && b.Owner != c.owner {
			continue
		}
		return b, true
	}
	return TokenBalance{}, false
}

func absDiff(a, b uint64) uint64 {
	if a > b {
		return a - b
	}
	return b - a
}

func fromUint64(v uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(v), 0)
}

// lamportsToSOL scales lamports by 10^-9; the shift is exact.
func lamportsToSOL(lamports uint64) decimal.Decimal {
	return fromUint64(lamports).Shift(-lamportsExponent)
}
