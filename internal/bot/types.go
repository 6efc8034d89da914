// internal/bot/types.go
package bot

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"github.com/rovshanmuradov/solana-pnl-bot/internal/pnl"
)

// Invocation – вызов slash-команды пользователем.
type Invocation struct {
	Interaction *discordgo.Interaction
	CommandName string
	ChannelID   string
	GuildID     string
	UserID      string
	Username    string
}

// Message – сообщение пользователя в канале.
type Message struct {
	ID        string
	ChannelID string
	AuthorID  string
	Content   string
}

// Responder отправляет ответы в Discord.
type Responder interface {
	// Respond отвечает на взаимодействие (первый ответ).
	Respond(inv *Invocation, content string, ephemeral bool) error
	// FollowUp отправляет дополнительное сообщение к взаимодействию.
	FollowUp(inv *Invocation, content string, ephemeral bool) error
	// Reply отвечает на сообщение пользователя.
	Reply(msg *Message, content string) error
	// ReplyEmbed отвечает на сообщение пользователя эмбедом.
	ReplyEmbed(msg *Message, embed *discordgo.MessageEmbed) error
}

// Analyzer строит отчет PnL.
type Analyzer interface {
	Analyze(ctx context.Context, wallet, mint string) (*pnl.Report, error)
}

// Recorder учитывает команды и разговоры. nil допустим.
type Recorder interface {
	CountCommand(command, result string)
	CountConversation(state string)
}
