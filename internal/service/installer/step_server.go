package installer

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// ServerURLStep collects the document server base URL
type ServerURLStep struct {
	input textinput.Model
	err   error
}

func NewServerURLStep() Step {
	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 255
	ti.Width = 50
	ti.Placeholder = "http://localhost:8000"
	return &ServerURLStep{input: ti}
}

func (s *ServerURLStep) Init() tea.Cmd {
	return textinput.Blink
}

func (s *ServerURLStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	if s.input.Value() == "" && s.input.Placeholder != state.App.ServerURL && state.App.ServerURL != "" {
		s.input.Placeholder = state.App.ServerURL
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)

	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		val := strings.TrimSpace(s.input.Value())
		if val == "" {
			val = s.input.Placeholder
		}
		u, err := url.Parse(val)
		if err != nil || u.Scheme == "" || u.Host == "" {
			s.err = fmt.Errorf("%q is not an absolute URL", val)
			return s, nil
		}
		state.App.ServerURL = strings.TrimRight(val, "/")
		return nil, nil
	}
	return s, cmd
}

func (s *ServerURLStep) View(state *InstallState) string {
	view := "Enter the document server URL:\n\n" + s.input.View() + "\n\n(press enter to confirm, empty keeps the placeholder)\n"
	if s.err != nil {
		view += "\n" + errorStyle.Render(s.err.Error()) + "\n"
	}
	return view
}

// CookieStep collects the optional session cookie sent with every request
type CookieStep struct {
	input textinput.Model
}

func NewCookieStep() Step {
	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 1024
	ti.Width = 50
	ti.Placeholder = "Optional - press Enter to skip"
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '•'
	return &CookieStep{input: ti}
}

func (s *CookieStep) Init() tea.Cmd {
	return textinput.Blink
}

func (s *CookieStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)

	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "enter" {
		if val := strings.TrimSpace(s.input.Value()); val != "" {
			state.App.SessionCookie = val
		}
		return nil, nil
	}
	return s, cmd
}

func (s *CookieStep) View(state *InstallState) string {
	return "Enter a session cookie for the server (e.g. session=abc):\n\n" +
		s.input.View() + "\n\n(press enter to confirm)\n"
}
