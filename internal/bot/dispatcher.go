// internal/bot/dispatcher.go
package bot

import (
	"context"

	"go.uber.org/zap"
)

// MsgCommandError – ответ пользователю, если команда завершилась ошибкой.
const MsgCommandError = "There was an error executing this command!"

// Dispatcher направляет вызовы slash-команд в реестр.
type Dispatcher struct {
	registry  *Registry
	responder Responder
	recorder  Recorder
	logger    *zap.Logger
}

// NewDispatcher создает диспетчер команд
func NewDispatcher(registry *Registry, responder Responder, recorder Recorder, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		registry:  registry,
		responder: responder,
		recorder:  recorder,
		logger:    logger.Named("dispatcher"),
	}
}

// Dispatch выполняет команду. Неизвестные команды игнорируются.
func (d *Dispatcher) Dispatch(ctx context.Context, inv *Invocation) {
	cmd, ok := d.registry.Get(inv.CommandName)
	if !ok {
		d.logger.Debug("Unknown command ignored", zap.String("command", inv.CommandName))
		return
	}

	d.logger.Info("Executing command",
		zap.String("command", inv.CommandName),
		zap.String("user_id", inv.UserID),
		zap.String("channel_id", inv.ChannelID))

	err := cmd.Handle(ctx, inv)
	if err == nil {
		d.count(inv.CommandName, "ok")
		return
	}

	d.count(inv.CommandName, "error")
	d.logger.Error("Command execution failed",
		zap.String("command", inv.CommandName),
		zap.String("user_id", inv.UserID),
		zap.Error(err))

	if rerr := d.responder.Respond(inv, MsgCommandError, true); rerr != nil {
		// взаимодействие уже подтверждено – пробуем follow-up
		if ferr := d.responder.FollowUp(inv, MsgCommandError, true); ferr != nil {
			d.logger.Warn("Failed to report command error", zap.Error(ferr))
		}
	}
}

func (d *Dispatcher) count(command, result string) {
	if d.recorder != nil {
		d.recorder.CountCommand(command, result)
	}
}
