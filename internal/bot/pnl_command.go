// internal/bot/pnl_command.go
package bot

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// PnlCommand – команда /pnl: запускает разговор сбора адресов.
type PnlCommand struct {
	conversations *Conversations
}

// NewPnlCommand создает команду /pnl.
func NewPnlCommand(conversations *Conversations) *PnlCommand {
	return &PnlCommand{conversations: conversations}
}

func (c *PnlCommand) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        "pnl",
		Description: "Get PnL analysis for your token",
	}
}

func (c *PnlCommand) Handle(_ context.Context, inv *Invocation) error {
	return c.conversations.Begin(inv)
}
