package bot

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/rovshanmuradov/solana-pnl-bot/internal/pnl"
)

const waitTimeout = 2 * time.Second

type sent struct {
	kind      string // respond, followup, reply, embed
	content   string
	ephemeral bool
	replyTo   string
	embed     *discordgo.MessageEmbed
}

// fakeResponder записывает все ответы в канал.
type fakeResponder struct {
	calls      chan sent
	respondErr error
}

func newFakeResponder() *fakeResponder {
	return &fakeResponder{calls: make(chan sent, 32)}
}

func (f *fakeResponder) Respond(_ *Invocation, content string, ephemeral bool) error {
	f.calls <- sent{kind: "respond", content: content, ephemeral: ephemeral}
	return f.respondErr
}

func (f *fakeResponder) FollowUp(_ *Invocation, content string, ephemeral bool) error {
	f.calls <- sent{kind: "followup", content: content, ephemeral: ephemeral}
	return nil
}

func (f *fakeResponder) Reply(msg *Message, content string) error {
	f.calls <- sent{kind: "reply", content: content, replyTo: msg.ID}
	return nil
}

func (f *fakeResponder) ReplyEmbed(msg *Message, embed *discordgo.MessageEmbed) error {
	f.calls <- sent{kind: "embed", replyTo: msg.ID, embed: embed}
	return nil
}

func (f *fakeResponder) next(t *testing.T) sent {
	t.Helper()
	select {
	case s := <-f.calls:
		return s
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for a response")
		return sent{}
	}
}

func (f *fakeResponder) assertSilent(t *testing.T, d time.Duration) {
	t.Helper()
	select {
	case s := <-f.calls:
		t.Fatalf("unexpected response: %+v", s)
	case <-time.After(d):
	}
}

type fakeAnalyzer struct {
	analyze func(ctx context.Context, wallet, mint string) (*pnl.Report, error)
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, wallet, mint string) (*pnl.Report, error) {
	return f.analyze(ctx, wallet, mint)
}

// fakeRecorder собирает финальные состояния разговоров и результаты команд.
type fakeRecorder struct {
	states chan string

	mu       sync.Mutex
	commands map[string]int
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{states: make(chan string, 16), commands: make(map[string]int)}
}

func (f *fakeRecorder) CountCommand(command, result string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commands[command+"/"+result]++
}

func (f *fakeRecorder) CountConversation(state string) {
	f.states <- state
}

func (f *fakeRecorder) command(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.commands[key]
}

func (f *fakeRecorder) nextState(t *testing.T) string {
	t.Helper()
	select {
	case s := <-f.states:
		return s
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for conversation to finish")
		return ""
	}
}
