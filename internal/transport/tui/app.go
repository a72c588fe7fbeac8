package tui

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandevgo/docchat/pkg/log"
)

// App runs the Model as a full-screen program. Closing the program cancels
// the surrounding context so the other services shut down too.
type App struct {
	deps   Deps
	cancel context.CancelFunc

	mu      sync.Mutex
	program *tea.Program
}

func NewApp(deps Deps, cancel context.CancelFunc) *App {
	return &App{deps: deps, cancel: cancel}
}

func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	var program *tea.Program
	model := NewModel(ctx, a.deps, func(msg tea.Msg) { program.Send(msg) })
	program = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	a.program = program
	a.mu.Unlock()

	defer a.cancel()

	_, err := program.Run()
	if err != nil && ctx.Err() != nil {
		// Shutdown requested from outside.
		return nil
	}
	log.FromCtx(ctx).Debug().Err(err).Msg("terminal ui closed")
	return err
}

func (a *App) Shutdown(_ context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.program != nil {
		a.program.Quit()
	}
	return nil
}
