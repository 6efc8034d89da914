// internal/bot/state.go
package bot

import "fmt"

// State – состояние разговора /pnl.
type State string

const (
	StateAwaitingWallet   State = "awaiting_wallet"
	StateAwaitingContract State = "awaiting_contract"
	StateAnalyzing        State = "analyzing"
	StateDone             State = "done"
	StateTimedOut         State = "timed_out"
	StateInvalidInput     State = "invalid_input"
	StateFailed           State = "failed"
	StateCancelled        State = "cancelled" // заменен новым /pnl или остановкой бота
)

// StateTransition – переход между состояниями
type StateTransition struct {
	From State
	To   State
}

// legalTransitions – все допустимые переходы; финальные состояния не имеют выходов.
var legalTransitions = map[StateTransition]bool{
	{StateAwaitingWallet, StateAwaitingContract}: true,
	{StateAwaitingWallet, StateTimedOut}:         true,
	{StateAwaitingWallet, StateInvalidInput}:     true,
	{StateAwaitingWallet, StateCancelled}:        true,

	{StateAwaitingContract, StateAnalyzing}:    true,
	{StateAwaitingContract, StateTimedOut}:     true,
	{StateAwaitingContract, StateInvalidInput}: true,
	{StateAwaitingContract, StateCancelled}:    true,

	{StateAnalyzing, StateDone}:      true,
	{StateAnalyzing, StateFailed}:    true,
	{StateAnalyzing, StateCancelled}: true,
}

// ValidateTransition проверяет, что переход разрешен.
func ValidateTransition(from, to State) error {
	if !legalTransitions[StateTransition{From: from, To: to}] {
		return fmt.Errorf("invalid conversation transition: %s -> %s", from, to)
	}
	return nil
}

// IsAwaiting сообщает, что разговор ждет ввода пользователя.
func (s State) IsAwaiting() bool {
	return s == StateAwaitingWallet || s == StateAwaitingContract
}

// IsFinal сообщает, что разговор завершен.
func (s State) IsFinal() bool {
	switch s {
	case StateDone, StateTimedOut, StateInvalidInput, StateFailed, StateCancelled:
		return true
	}
	return false
}
