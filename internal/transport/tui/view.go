package tui

import (
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandevgo/docchat/internal/core"
)

// Controllers run inside tea.Cmd goroutines. The views below turn their
// display calls into messages so only Update ever touches screen state.

type (
	appendMsg struct {
		id    core.EntryID
		entry core.Entry
	}
	removeMsg        struct{ id core.EntryID }
	inputMsg         struct{ text string }
	alertMsg         struct{ text string }
	recordingMsg     struct{ active bool }
	statusMsg        struct{ text string }
	uploadEnabledMsg struct{ enabled bool }
	processingMsg    struct{ active bool }
	openChatMsg      struct{}
	userInfoMsg      struct{ info core.UserInfo }
)

type sender func(tea.Msg)

type chatView struct {
	send   sender
	nextID atomic.Int64
}

func (v *chatView) Append(entry core.Entry) core.EntryID {
	id := core.EntryID(v.nextID.Add(1))
	v.send(appendMsg{id: id, entry: entry})
	return id
}

func (v *chatView) Remove(id core.EntryID)   { v.send(removeMsg{id: id}) }
func (v *chatView) SetInput(text string)     { v.send(inputMsg{text: text}) }
func (v *chatView) Alert(msg string)         { v.send(alertMsg{text: msg}) }
func (v *chatView) SetRecording(active bool) { v.send(recordingMsg{active: active}) }

type uploadView struct {
	send sender
}

func (v *uploadView) SetStatus(text string)         { v.send(statusMsg{text: text}) }
func (v *uploadView) SetUploadEnabled(enabled bool) { v.send(uploadEnabledMsg{enabled: enabled}) }
func (v *uploadView) SetProcessing(active bool)     { v.send(processingMsg{active: active}) }

type navigator struct {
	send sender
}

func (n *navigator) OpenChat() { n.send(openChatMsg{}) }
