// internal/bot/discord.go
package bot

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// Intents – события шлюза, нужные боту: slash-команды и сообщения в каналах.
const Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages | discordgo.IntentsMessageContent

// DiscordConfig задает подключение к Discord.
type DiscordConfig struct {
	Token         string
	ApplicationID string
	// GuildID – если задан, команды регистрируются только в этой гильдии.
	GuildID string
}

// Service связывает сессию Discord с диспетчером и разговорами.
type Service struct {
	cfg           DiscordConfig
	session       *discordgo.Session
	registry      *Registry
	dispatcher    *Dispatcher
	conversations *Conversations
	logger        *zap.Logger

	removeHandlers []func()
}

// NewSession создает сессию бота с нужными интентами.
func NewSession(token string) (*discordgo.Session, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	session.Identify.Intents = Intents
	return session, nil
}

// NewService создает сервис бота.
func NewService(
	cfg DiscordConfig,
	session *discordgo.Session,
	registry *Registry,
	dispatcher *Dispatcher,
	conversations *Conversations,
	logger *zap.Logger,
) *Service {
	return &Service{
		cfg:           cfg,
		session:       session,
		registry:      registry,
		dispatcher:    dispatcher,
		conversations: conversations,
		logger:        logger.Named("discord"),
	}
}

// Start подключается к шлюзу и регистрирует slash-команды.
func (s *Service) Start(ctx context.Context) error {
	s.removeHandlers = append(s.removeHandlers,
		s.session.AddHandler(func(_ *discordgo.Session, r *discordgo.Ready) {
			s.logger.Info("Bot is online",
				zap.String("user", r.User.Username),
				zap.Int("guilds", len(r.Guilds)))
		}),
		s.session.AddHandler(func(_ *discordgo.Session, i *discordgo.InteractionCreate) {
			if i.Type != discordgo.InteractionApplicationCommand {
				return
			}
			s.dispatcher.Dispatch(ctx, InvocationFromInteraction(i.Interaction))
		}),
		s.session.AddHandler(func(_ *discordgo.Session, m *discordgo.MessageCreate) {
			if m.Author == nil || m.Author.Bot {
				return
			}
			s.conversations.HandleMessage(&Message{
				ID:        m.ID,
				ChannelID: m.ChannelID,
				AuthorID:  m.Author.ID,
				Content:   m.Content,
			})
		}),
	)

	if err := s.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord session: %w", err)
	}

	s.logger.Info("Started refreshing application (/) commands",
		zap.Strings("commands", s.registry.Names()),
		zap.String("guild_id", s.cfg.GuildID))

	if _, err := s.session.ApplicationCommandBulkOverwrite(s.cfg.ApplicationID, s.cfg.GuildID, s.registry.Definitions()); err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}

	s.logger.Info("Successfully reloaded application (/) commands")
	return nil
}

// Close снимает обработчики, завершает разговоры и закрывает сессию.
func (s *Service) Close() error {
	for _, remove := range s.removeHandlers {
		remove()
	}
	s.removeHandlers = nil

	if err := s.conversations.Close(); err != nil {
		s.logger.Warn("Failed to close conversations", zap.Error(err))
	}
	return s.session.Close()
}

// InvocationFromInteraction извлекает данные вызова команды.
func InvocationFromInteraction(i *discordgo.Interaction) *Invocation {
	inv := &Invocation{
		Interaction: i,
		ChannelID:   i.ChannelID,
		GuildID:     i.GuildID,
	}
	if i.Type == discordgo.InteractionApplicationCommand {
		inv.CommandName = i.ApplicationCommandData().Name
	}

	user := i.User
	if i.Member != nil && i.Member.User != nil {
		user = i.Member.User
	}
	if user != nil {
		inv.UserID = user.ID
		inv.Username = user.Username
	}
	return inv
}

// SessionResponder отправляет ответы через discordgo.
type SessionResponder struct {
	session *discordgo.Session
}

// NewSessionResponder создает Responder поверх сессии.
func NewSessionResponder(session *discordgo.Session) *SessionResponder {
	return &SessionResponder{session: session}
}

func messageFlags(ephemeral bool) discordgo.MessageFlags {
	if ephemeral {
		return discordgo.MessageFlagsEphemeral
	}
	return 0
}

func (r *SessionResponder) Respond(inv *Invocation, content string, ephemeral bool) error {
	return r.session.InteractionRespond(inv.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   messageFlags(ephemeral),
		},
	})
}

func (r *SessionResponder) FollowUp(inv *Invocation, content string, ephemeral bool) error {
	_, err := r.session.FollowupMessageCreate(inv.Interaction, true, &discordgo.WebhookParams{
		Content: content,
		Flags:   messageFlags(ephemeral),
	})
	return err
}

func (r *SessionResponder) Reply(msg *Message, content string) error {
	_, err := r.session.ChannelMessageSendReply(msg.ChannelID, content, reference(msg))
	return err
}

func (r *SessionResponder) ReplyEmbed(msg *Message, embed *discordgo.MessageEmbed) error {
	_, err := r.session.ChannelMessageSendEmbedReply(msg.ChannelID, embed, reference(msg))
	return err
}

func reference(msg *Message) *discordgo.MessageReference {
	return &discordgo.MessageReference{MessageID: msg.ID, ChannelID: msg.ChannelID}
}

var _ Responder = (*SessionResponder)(nil)
