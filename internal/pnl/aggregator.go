// internal/pnl/aggregator.go
package pnl

import "github.com/shopspring/decimal"

const roiPrecision = 16

var hundred = decimal.NewFromInt(100)

// Aggregate folds trade events into a report. currentPrice converts the native
// profit to fiat and, like tokenName, is passed through without validation.
// Accumulation is commutative, so event order does not affect the result.
func Aggregate(events []TradeEvent, currentPrice decimal.Decimal, tokenName string) Report {
	totalSpent := decimal.Zero
	totalFees := decimal.Zero
	totalSales := decimal.Zero
	var buys, sells int

	for _, ev := range events {
		switch ev.Kind {
		case Buy:
			totalSpent = totalSpent.Add(ev.Value())
			totalFees = totalFees.Add(ev.FeePaid)
			buys++
		case Sell:
			totalSales = totalSales.Add(ev.Value())
			sells++
		}
	}

	profitNative := totalSales.Sub(totalSpent).Sub(totalFees)

	// ROI без расходов не определён, отдаём ноль
	roi := decimal.Zero
	if !totalSpent.IsZero() {
		roi = profitNative.Mul(hundred).DivRound(totalSpent, roiPrecision)
	}

	return Report{
		TokenName:    tokenName,
		TotalSpent:   totalSpent,
		TotalFees:    totalFees,
		TotalSales:   totalSales,
		ProfitNative: profitNative,
		ProfitFiat:   profitNative.Mul(currentPrice),
		ROIPercent:   roi,
		CurrentPrice: currentPrice,
		Buys:         buys,
		Sells:        sells,
	}
}
