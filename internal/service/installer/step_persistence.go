package installer

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandevgo/docchat/pkg/env"
)

// SaveEnvStep writes the collected configuration to the .env file
type SaveEnvStep struct {
	dir       string
	overwrite bool
	err       error
	saved     bool
}

func NewSaveEnvStep(dir string, overwrite bool) Step {
	return &SaveEnvStep{dir: dir, overwrite: overwrite}
}

func (s *SaveEnvStep) Init() tea.Cmd {
	return next
}

func (s *SaveEnvStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	if s.saved || s.err != nil {
		return nil, nil
	}

	if err := s.save(state); err != nil {
		s.err = err
		return s, nil
	}

	s.saved = true
	return nil, nil
}

func (s *SaveEnvStep) save(state *InstallState) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create runtime directory: %w", err)
	}

	envPath := filepath.Join(s.dir, ".env")
	if _, err := os.Stat(envPath); err == nil && !s.overwrite {
		return fmt.Errorf(".env file already exists at %s", envPath)
	}

	app := state.App
	// The runtime path locates the .env file itself.
	app.RuntimePath = ""
	content, err := env.MarshalEnv(&app)
	if err != nil {
		return err
	}

	if app.EnableTelegram {
		tg, err := env.MarshalEnv(&state.Telegram)
		if err != nil {
			return err
		}
		content += tg
	}

	return os.WriteFile(envPath, []byte(content), 0600)
}

func (s *SaveEnvStep) View(state *InstallState) string {
	if s.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v", s.err)) + "\n\n(press ctrl+c to quit)\n"
	}
	if s.saved {
		return "Configuration saved successfully!\n"
	}
	return "Saving configuration...\n"
}
