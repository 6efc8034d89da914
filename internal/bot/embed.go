// internal/bot/embed.go
package bot

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/rovshanmuradov/solana-pnl-bot/internal/pnl"
)

const (
	colorProfit = 0x00ff00
	colorLoss   = 0xff0000

	embedFooter = "Powered by Solana PnL Bot"
)

// Сообщения пользователю
const (
	MsgUseInChannel     = "This command must be used in the server channel"
	MsgEnterWallet      = "Please enter your wallet address:"
	MsgEnterContract    = "Now enter the contract address for your token:"
	MsgInvalidWallet    = "Please provide a valid wallet address."
	MsgInvalidContract  = "Please provide a valid contract address."
	MsgFetching         = "Fetching PnL data... Please wait."
	MsgTimeout          = "You took too long to respond. Please run `/pnl` again."
	MsgGenericFailure   = "There was an error processing your request. Please check the provided addresses and try again."
	MsgInvalidAddress   = "That doesn't look like a valid Solana address. Please check the provided addresses and try again."
	MsgNoMetadata       = "Could not load metadata for that token. Please check the contract address and try again."
	MsgNoTransactions   = "Could not fetch the wallet's transactions right now. Please try again later."
	MsgNoPrice          = "Could not fetch the current SOL price right now. Please try again later."
	MsgAnalysisTimedOut = "The analysis took too long. Please try again later."
)

// FormatReport рисует отчет PnL как эмбед Discord.
func FormatReport(r *pnl.Report, at time.Time) *discordgo.MessageEmbed {
	color := colorLoss
	if r.ProfitNative.IsPositive() {
		color = colorProfit
	}

	return &discordgo.MessageEmbed{
		Title: "PnL Analysis for " + r.TokenName,
		Color: color,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Total Spent", Value: r.TotalSpent.StringFixed(4) + " SOL", Inline: true},
			{Name: "Total Fees", Value: r.TotalFees.StringFixed(4) + " SOL", Inline: true},
			{Name: "Total Sales", Value: r.TotalSales.StringFixed(4) + " SOL", Inline: true},
			{Name: "Profit (SOL)", Value: r.ProfitNative.StringFixed(4) + " SOL", Inline: true},
			{Name: "Profit (USD)", Value: "$" + r.ProfitFiat.StringFixed(2), Inline: true},
			{Name: "ROI", Value: r.ROIPercent.StringFixed(2) + "%", Inline: true},
		},
		Timestamp: at.UTC().Format(time.RFC3339),
		Footer:    &discordgo.MessageEmbedFooter{Text: embedFooter},
	}
}

// UserMessage переводит ошибку анализа в текст для пользователя.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, pnl.ErrInvalidAddress):
		return MsgInvalidAddress
	case errors.Is(err, context.DeadlineExceeded):
		return MsgAnalysisTimedOut
	case errors.Is(err, pnl.ErrMetadataUnavailable):
		return MsgNoMetadata
	case errors.Is(err, pnl.ErrTransactionsUnavailable):
		return MsgNoTransactions
	case errors.Is(err, pnl.ErrPriceUnavailable), errors.Is(err, pnl.ErrInvalidPrice):
		return MsgNoPrice
	default:
		return MsgGenericFailure
	}
}
