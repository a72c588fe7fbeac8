package installer

import (
	tea "github.com/charmbracelet/bubbletea"
)

// FinalizationStep reconciles derived values before saving
type FinalizationStep struct{}

func NewFinalizationStep() Step {
	return &FinalizationStep{}
}

func (s *FinalizationStep) Init() tea.Cmd {
	return next
}

func (s *FinalizationStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	if state.Telegram.Token == "" {
		state.App.EnableTelegram = false
	}
	return nil, nil
}

func (s *FinalizationStep) View(state *InstallState) string {
	return "Finalizing configuration...\n"
}
