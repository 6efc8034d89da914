package bot

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rovshanmuradov/solana-pnl-bot/internal/pnl"
)

func TestFormatReport(t *testing.T) {
	r := &pnl.Report{
		TokenName:    "BONK",
		TotalSpent:   decimal.RequireFromString("10"),
		TotalFees:    decimal.RequireFromString("0.01"),
		TotalSales:   decimal.RequireFromString("15"),
		ProfitNative: decimal.RequireFromString("4.99"),
		ProfitFiat:   decimal.RequireFromString("9.98"),
		ROIPercent:   decimal.RequireFromString("49.9"),
	}
	at := time.Date(2024, 5, 1, 14, 30, 0, 0, time.FixedZone("UTC+2", 2*3600))

	embed := FormatReport(r, at)

	assert.Equal(t, "PnL Analysis for BONK", embed.Title)
	assert.Equal(t, colorProfit, embed.Color)
	assert.Equal(t, "2024-05-01T12:30:00Z", embed.Timestamp)
	require.NotNil(t, embed.Footer)
	assert.Equal(t, "Powered by Solana PnL Bot", embed.Footer.Text)

	want := [][2]string{
		{"Total Spent", "10.0000 SOL"},
		{"Total Fees", "0.0100 SOL"},
		{"Total Sales", "15.0000 SOL"},
		{"Profit (SOL)", "4.9900 SOL"},
		{"Profit (USD)", "$9.98"},
		{"ROI", "49.90%"},
	}
	require.Len(t, embed.Fields, len(want))
	for i, f := range embed.Fields {
		assert.Equal(t, want[i][0], f.Name)
		assert.Equal(t, want[i][1], f.Value)
		assert.True(t, f.Inline)
	}
}

func TestFormatReport_Color(t *testing.T) {
	tests := []struct {
		profit string
		want   int
	}{
		{"0.0001", colorProfit},
		{"0", colorLoss},
		{"-1.000005", colorLoss},
	}
	for _, tt := range tests {
		t.Run(tt.profit, func(t *testing.T) {
			r := pnl.Aggregate(nil, decimal.Zero, "X")
			r.ProfitNative = decimal.RequireFromString(tt.profit)
			assert.Equal(t, tt.want, FormatReport(&r, time.Now()).Color)
		})
	}
}

func TestFormatReport_NegativeValues(t *testing.T) {
	r := pnl.Aggregate([]pnl.TradeEvent{
		{Kind: pnl.Buy, TokenAmount: decimal.NewFromInt(100), UnitPrice: decimal.RequireFromString("0.02"), FeePaid: decimal.RequireFromString("0.000005")},
		{Kind: pnl.Sell, TokenAmount: decimal.NewFromInt(100), UnitPrice: decimal.RequireFromString("0.01")},
	}, decimal.NewFromInt(150), "X")

	embed := FormatReport(&r, time.Now())
	assert.Equal(t, "-1.0000 SOL", embed.Fields[3].Value)
	assert.Equal(t, "$-150.00", embed.Fields[4].Value)
	assert.Equal(t, "-50.00%", embed.Fields[5].Value)
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"invalid address", fmt.Errorf("%w: %w", pnl.ErrTransactionsUnavailable, pnl.ErrInvalidAddress), MsgInvalidAddress},
		{"deadline", fmt.Errorf("%w: %w", pnl.ErrTransactionsUnavailable, context.DeadlineExceeded), MsgAnalysisTimedOut},
		{"metadata", fmt.Errorf("%w: boom", pnl.ErrMetadataUnavailable), MsgNoMetadata},
		{"transactions", fmt.Errorf("%w: boom", pnl.ErrTransactionsUnavailable), MsgNoTransactions},
		{"price", fmt.Errorf("%w: boom", pnl.ErrPriceUnavailable), MsgNoPrice},
		{"negative price", pnl.ErrInvalidPrice, MsgNoPrice},
		{"other", errors.New("boom"), MsgGenericFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UserMessage(tt.err))
		})
	}
}
