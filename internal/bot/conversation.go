// internal/bot/conversation.go
package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rovshanmuradov/solana-pnl-bot/internal/utils/logger"
)

const (
	DefaultPromptTimeout   = 30 * time.Second
	DefaultAnalysisTimeout = 60 * time.Second
)

// ErrConversationsClosed – бот останавливается и новые разговоры не начинаются.
var ErrConversationsClosed = errors.New("conversations closed")

// ConversationConfig задает таймауты разговора /pnl.
type ConversationConfig struct {
	PromptTimeout   time.Duration
	AnalysisTimeout time.Duration
}

type conversationKey struct {
	channelID string
	userID    string
}

// conversation – один разговор /pnl пользователя в канале.
type conversation struct {
	key    conversationKey
	inv    *Invocation
	input  chan *Message
	cancel context.CancelFunc
	logger *zap.Logger

	mu    sync.Mutex
	state State
	// accepting – текущее состояние ожидания еще не получило ответ.
	accepting bool
}

func (c *conversation) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *conversation) transition(to State) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := ValidateTransition(c.state, to); err != nil {
		return err
	}
	c.state = to
	c.accepting = to.IsAwaiting()
	return nil
}

// deliver передает сообщение, только если разговор ждет ввода.
// Каждое состояние ожидания принимает ровно одно сообщение.
func (c *conversation) deliver(msg *Message) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.accepting || !c.state.IsAwaiting() {
		return false
	}
	select {
	case c.input <- msg:
		c.accepting = false
		return true
	default:
		return false
	}
}

// Conversations ведет активные разговоры /pnl: не больше одного на пару (канал, пользователь).
type Conversations struct {
	responder Responder
	analyzer  Analyzer
	recorder  Recorder
	cfg       ConversationConfig
	logger    *zap.Logger
	now       func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	active map[conversationKey]*conversation
}

// NewConversations создает менеджер разговоров.
func NewConversations(responder Responder, analyzer Analyzer, recorder Recorder, cfg ConversationConfig, log *zap.Logger) *Conversations {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.PromptTimeout <= 0 {
		cfg.PromptTimeout = DefaultPromptTimeout
	}
	if cfg.AnalysisTimeout <= 0 {
		cfg.AnalysisTimeout = DefaultAnalysisTimeout
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Conversations{
		responder: responder,
		analyzer:  analyzer,
		recorder:  recorder,
		cfg:       cfg,
		logger:    log.Named("conversations"),
		now:       time.Now,
		ctx:       ctx,
		cancel:    cancel,
		active:    make(map[conversationKey]*conversation),
	}
}

// Begin начинает разговор: просит кошелек и ждет ответа в фоне.
// Предыдущий разговор того же пользователя в канале отменяется.
func (m *Conversations) Begin(inv *Invocation) error {
	if inv.ChannelID == "" {
		return m.responder.Respond(inv, MsgUseInChannel, true)
	}
	if m.ctx.Err() != nil {
		return ErrConversationsClosed
	}

	if err := m.responder.Respond(inv, MsgEnterWallet, true); err != nil {
		return fmt.Errorf("failed to prompt for wallet: %w", err)
	}

	ctx, cancel := context.WithCancel(m.ctx)
	conv := &conversation{
		key:    conversationKey{channelID: inv.ChannelID, userID: inv.UserID},
		inv:    inv,
		input:  make(chan *Message, 1),
		cancel: cancel,
		logger: logger.ForUser(logger.ForOperation(m.logger, "pnl_conversation"), inv.UserID),
		state:  StateAwaitingWallet,

		accepting: true,
	}

	m.mu.Lock()
	if m.ctx.Err() != nil {
		m.mu.Unlock()
		cancel()
		return ErrConversationsClosed
	}
	if old, ok := m.active[conv.key]; ok {
		old.logger.Info("Conversation replaced by a new /pnl")
		old.cancel()
	}
	m.active[conv.key] = conv
	m.wg.Add(1)
	m.mu.Unlock()

	go m.run(ctx, conv)
	return nil
}

// HandleMessage направляет сообщение в разговор автора в этом канале.
func (m *Conversations) HandleMessage(msg *Message) bool {
	m.mu.Lock()
	conv, ok := m.active[conversationKey{channelID: msg.ChannelID, userID: msg.AuthorID}]
	m.mu.Unlock()
	if !ok {
		return false
	}
	return conv.deliver(msg)
}

// Active возвращает число активных разговоров.
func (m *Conversations) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.active)
}

// Close отменяет все разговоры и ждет их завершения.
func (m *Conversations) Close() error {
	m.mu.Lock()
	m.cancel()
	m.mu.Unlock()
	m.wg.Wait()
	return nil
}

func (m *Conversations) run(ctx context.Context, c *conversation) {
	defer m.wg.Done()
	defer m.finish(c)

	c.logger.Info("Conversation started", zap.String("channel_id", c.key.channelID))

	walletMsg, ok := m.await(ctx, c, nil)
	if !ok {
		return
	}
	wallet := strings.TrimSpace(walletMsg.Content)
	if wallet == "" {
		if m.advance(c, StateInvalidInput) {
			m.reply(c, walletMsg, MsgInvalidWallet)
		}
		return
	}
	if !m.advance(c, StateAwaitingContract) {
		return
	}
	m.reply(c, walletMsg, MsgEnterContract)

	contractMsg, ok := m.await(ctx, c, walletMsg)
	if !ok {
		return
	}
	mint := strings.TrimSpace(contractMsg.Content)
	if mint == "" {
		if m.advance(c, StateInvalidInput) {
			m.reply(c, contractMsg, MsgInvalidContract)
		}
		return
	}
	if !m.advance(c, StateAnalyzing) {
		return
	}
	m.reply(c, contractMsg, MsgFetching)

	c.logger.Info("Analysis requested", zap.String("wallet", wallet), zap.String("mint", mint))

	analysisCtx, cancel := context.WithTimeout(ctx, m.cfg.AnalysisTimeout)
	report, err := m.analyzer.Analyze(analysisCtx, wallet, mint)
	cancel()

	if err != nil {
		if ctx.Err() != nil {
			m.advance(c, StateCancelled)
			return
		}
		c.logger.Warn("Analysis failed", zap.Error(err))
		if m.advance(c, StateFailed) {
			m.reply(c, contractMsg, UserMessage(err))
		}
		return
	}

	if !m.advance(c, StateDone) {
		return
	}
	if err := m.responder.ReplyEmbed(contractMsg, FormatReport(report, m.now())); err != nil {
		c.logger.Warn("Failed to send report", zap.Error(err))
	}
}

// await ждет ответа в текущем состоянии. Таймер принадлежит состоянию
// и останавливается при выходе из него.
func (m *Conversations) await(ctx context.Context, c *conversation, prev *Message) (*Message, bool) {
	timer := time.NewTimer(m.cfg.PromptTimeout)
	defer timer.Stop()

	select {
	case msg := <-c.input:
		return msg, true
	case <-timer.C:
		if !m.advance(c, StateTimedOut) {
			return nil, false
		}
		if prev == nil {
			if err := m.responder.FollowUp(c.inv, MsgTimeout, true); err != nil {
				c.logger.Warn("Failed to send timeout notice", zap.Error(err))
			}
		} else {
			m.reply(c, prev, MsgTimeout)
		}
		return nil, false
	case <-ctx.Done():
		m.advance(c, StateCancelled)
		return nil, false
	}
}

func (m *Conversations) advance(c *conversation, to State) bool {
	if err := c.transition(to); err != nil {
		c.logger.Error("Conversation transition rejected", zap.Error(err))
		return false
	}
	return true
}

func (m *Conversations) reply(c *conversation, msg *Message, content string) {
	if err := m.responder.Reply(msg, content); err != nil {
		c.logger.Warn("Failed to reply", zap.String("message_id", msg.ID), zap.Error(err))
	}
}

func (m *Conversations) finish(c *conversation) {
	m.mu.Lock()
	if current, ok := m.active[c.key]; ok && current == c {
		delete(m.active, c.key)
	}
	m.mu.Unlock()
	c.cancel()

	state := c.State()
	if m.recorder != nil {
		m.recorder.CountConversation(string(state))
	}
	c.logger.Info("Conversation finished", zap.String("state", string(state)))
}
