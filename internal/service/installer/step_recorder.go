package installer

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandevgo/docchat/internal/config"
)

var recorderPresets = []struct {
	name    string
	command string
}{
	{"PulseAudio / PipeWire (Linux)", "ffmpeg -hide_banner -loglevel error -f pulse -i default -c:a libopus -f webm -"},
	{"ALSA (Linux)", "ffmpeg -hide_banner -loglevel error -f alsa -i default -c:a libopus -f webm -"},
	{"AVFoundation (macOS)", "ffmpeg -hide_banner -loglevel error -f avfoundation -i :0 -c:a libopus -f webm -"},
	{"No microphone", config.RecorderDisabled},
}

// RecorderStep picks the command that streams microphone audio to stdout
type RecorderStep struct {
	choiceStep
}

func NewRecorderStep() Step {
	choices := make([]string, len(recorderPresets))
	for i, p := range recorderPresets {
		choices[i] = p.name
	}
	return &RecorderStep{choiceStep{title: "Select how to record voice questions:", choices: choices}}
}

func (s *RecorderStep) Init() tea.Cmd {
	return nil
}

func (s *RecorderStep) Update(msg tea.Msg, state *InstallState, width, height int) (Step, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && s.move(key.String()) {
		state.App.RecorderCommand = recorderPresets[s.cursor].command
		return nil, nil
	}
	return s, nil
}

func (s *RecorderStep) View(state *InstallState) string {
	return s.view()
}
