// internal/bot/registry.go
package bot

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/bwmarrin/discordgo"
)

var (
	// ErrDuplicateCommand – две команды с одинаковым именем.
	ErrDuplicateCommand = errors.New("duplicate command name")
	// ErrInvalidCommand – команда без определения или имени.
	ErrInvalidCommand = errors.New("invalid command")
)

// Command – slash-команда бота.
type Command interface {
	// Definition описывает команду для регистрации в Discord.
	Definition() *discordgo.ApplicationCommand
	// Handle выполняет команду. Ошибка означает, что пользователь еще не получил ответ.
	Handle(ctx context.Context, inv *Invocation) error
}

// Registry – неизменяемый набор команд, собранный при старте.
type Registry struct {
	commands map[string]Command
	names    []string
}

// NewRegistry собирает реестр. Повторяющиеся имена отклоняются.
func NewRegistry(commands ...Command) (*Registry, error) {
	r := &Registry{
		commands: make(map[string]Command, len(commands)),
		names:    make([]string, 0, len(commands)),
	}
	for _, cmd := range commands {
		if cmd == nil || cmd.Definition() == nil || cmd.Definition().Name == "" {
			return nil, ErrInvalidCommand
		}
		name := cmd.Definition().Name
		if _, exists := r.commands[name]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateCommand, name)
		}
		r.commands[name] = cmd
		r.names = append(r.names, name)
	}
	sort.Strings(r.names)
	return r, nil
}

// Get возвращает команду по имени.
func (r *Registry) Get(name string) (Command, bool) {
	cmd, ok := r.commands[name]
	return cmd, ok
}

// Names возвращает отсортированные имена команд.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Definitions возвращает определения для ApplicationCommandBulkOverwrite.
func (r *Registry) Definitions() []*discordgo.ApplicationCommand {
	defs := make([]*discordgo.ApplicationCommand, 0, len(r.names))
	for _, name := range r.names {
		defs = append(defs, r.commands[name].Definition())
	}
	return defs
}
