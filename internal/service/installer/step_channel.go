package installer

import (
	tea "github.com/charmbracelet/bubbletea"
)

// ChannelStep decides whether the Telegram bot runs next to the terminal UI
type ChannelStep struct {
	choiceStep
}

func NewChannelStep() Step {
	return &ChannelStep{choiceStep{
		title:   "Select your Chat Channels:",
		choices: []string{"Terminal only", "Terminal and Telegram"},
	}}
}

func (s *ChannelStep) Init() tea.Cmd {
	return nil
}

func (s *ChannelStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && s.move(key.String()) {
		state.App.EnableTelegram = s.cursor == 1
		return nil, nil
	}
	return s, nil
}

func (s *ChannelStep) View(state *InstallState) string {
	return s.view()
}
