// internal/blockchain/solbc/convert.go
package solbc

import (
	"strconv"

	solanarpc "github.com/gagliardetto/solana-go/rpc"

	"github.com/rovshanmuradov/solana-pnl-bot/internal/pnl"
)

// ToRecord конвертирует ответ getTransaction в запись для классификатора.
// Снимки с нечитаемым количеством токена отбрасываются.
func ToRecord(signature string, tx *solanarpc.GetTransactionResult) (pnl.TransactionRecord, bool) {
	if tx == nil || tx.Meta == nil {
		return pnl.TransactionRecord{}, false
	}
	meta := tx.Meta

	rec := pnl.TransactionRecord{
		Signature:         signature,
		PreTokenBalances:  convertTokenBalances(meta.PreTokenBalances),
		PostTokenBalances: convertTokenBalances(meta.PostTokenBalances),
		PreBalances:       meta.PreBalances,
		PostBalances:      meta.PostBalances,
		Fee:               meta.Fee,
	}
	if tx.BlockTime != nil {
		ts := int64(*tx.BlockTime)
		rec.BlockTime = &ts
	}
	return rec, true
}

func convertTokenBalances(balances []solanarpc.TokenBalance) []pnl.TokenBalance {
	out := make([]pnl.TokenBalance, 0, len(balances))
	for _, b := range balances {
		if b.UiTokenAmount == nil {
			continue
		}
		amount, err := strconv.ParseUint(b.UiTokenAmount.Amount, 10, 64)
		if err != nil {
			continue
		}
		tb := pnl.TokenBalance{
			AccountIndex: b.AccountIndex,
			Mint:         b.Mint.String(),
			Amount:       amount,
		}
		if b.Owner != nil {
			tb.Owner = b.Owner.String()
		}
		out = append(out, tb)
	}
	return out
}
