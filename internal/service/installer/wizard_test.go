package installer

import (
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/sandevgo/docchat/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func typeText(m tea.Model, text string) tea.Model {
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return m
}

func press(m tea.Model, k tea.KeyType) tea.Model {
	m, _ = m.Update(tea.KeyMsg{Type: k})
	return m
}

func TestWizard_TerminalOnly(t *testing.T) {
	dir := t.TempDir()
	state := NewInstallState(config.AppConfig{ServerURL: "http://localhost:8000"})
	var m tea.Model = initialModel(state, getSteps(dir, false))

	m = typeText(m, "https://docs.example.com/")
	m = press(m, tea.KeyEnter) // server
	m = press(m, tea.KeyEnter) // cookie skipped
	m = press(m, tea.KeyDown)
	m = press(m, tea.KeyEnter) // ALSA
	m = press(m, tea.KeyEnter) // terminal only

	// Skipped steps, finalization and save advance on nextMsg.
	for i := 0; i < 4; i++ {
		m, _ = m.Update(nextMsg{})
	}

	final := m.(model)
	require.Equal(t, len(final.steps), final.currentStep)
	assert.Equal(t, "https://docs.example.com", state.App.ServerURL)
	assert.False(t, state.App.EnableTelegram)

	vars, err := godotenv.Read(filepath.Join(dir, ".env"))
	require.NoError(t, err)
	assert.Equal(t, "https://docs.example.com", vars["DOCCHAT_SERVER_URL"])
	assert.Equal(t, recorderPresets[1].command, vars["DOCCHAT_RECORDER"])
	assert.NotContains(t, vars, "DOCCHAT_TELEGRAM_TOKEN")
	assert.NotContains(t, vars, "DOCCHAT_RUNTIME_PATH")
}

func TestServerURLStep_RejectsRelative(t *testing.T) {
	state := NewInstallState(config.AppConfig{})
	step := NewServerURLStep()

	step.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("localhost")}, state, 0, 0)
	next, _ := step.Update(tea.KeyMsg{Type: tea.KeyEnter}, state, 0, 0)

	assert.NotNil(t, next)
	assert.Contains(t, step.View(state), "not an absolute URL")
	assert.Empty(t, state.App.ServerURL)
}

func TestTelegramSteps(t *testing.T) {
	state := NewInstallState(config.AppConfig{EnableTelegram: true})

	token := NewTelegramTokenStep()
	token.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("123:abc")}, state, 0, 0)
	next, _ := token.Update(tea.KeyMsg{Type: tea.KeyEnter}, state, 0, 0)
	assert.Nil(t, next)
	assert.Equal(t, "123:abc", state.Telegram.Token)

	owner := NewTelegramOwnerStep()
	owner.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("abc")}, state, 0, 0)
	next, _ = owner.Update(tea.KeyMsg{Type: tea.KeyEnter}, state, 0, 0)
	assert.NotNil(t, next)

	owner = NewTelegramOwnerStep()
	owner.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("777")}, state, 0, 0)
	next, _ = owner.Update(tea.KeyMsg{Type: tea.KeyEnter}, state, 0, 0)
	assert.Nil(t, next)
	assert.Equal(t, int64(777), state.Telegram.OwnerID)
}

func TestSaveEnvStep_RefusesExisting(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("X=1\n"), 0600))
	state := NewInstallState(config.AppConfig{ServerURL: "http://a"})

	step := NewSaveEnvStep(dir, false)
	next, _ := step.Update(nextMsg{}, state, 0, 0)
	assert.NotNil(t, next)
	assert.Contains(t, step.View(state), "already exists")

	step = NewSaveEnvStep(dir, true)
	next, _ = step.Update(nextMsg{}, state, 0, 0)
	assert.Nil(t, next)

	vars, err := godotenv.Read(filepath.Join(dir, ".env"))
	require.NoError(t, err)
	assert.Equal(t, "http://a", vars["DOCCHAT_SERVER_URL"])
}
