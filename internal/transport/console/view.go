// Package console prints controller output as plain lines, for the one-shot
// commands that run without the full-screen interface.
package console

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/sandevgo/docchat/internal/core"
	"github.com/sandevgo/docchat/internal/service/ui"
	"github.com/sandevgo/docchat/pkg/conv"
)

// ChatView writes finished turns only. Transient entries stay invisible.
type ChatView struct {
	mu     sync.Mutex
	out    io.Writer
	nextID core.EntryID
	echo   bool
	input  string
}

// NewChatView prints user turns too when echo is set.
func NewChatView(out io.Writer, echo bool) *ChatView {
	return &ChatView{out: out, echo: echo}
}

func (v *ChatView) Append(entry core.Entry) core.EntryID {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.nextID++

	if entry.Kind != core.EntryTurn {
		return v.nextID
	}

	turn := entry.Turn
	switch {
	case turn.Role == core.RoleUser && v.echo:
		fmt.Fprintln(v.out, ui.UserStyle.Render("You: ")+turn.Text)
	case turn.Role == core.RoleAssistant:
		text := turn.Text
		if turn.Markdown {
			text = conv.MarkdownToText(text)
		}
		fmt.Fprintln(v.out, strings.TrimRight(text, "\n"))
	}
	return v.nextID
}

func (v *ChatView) Remove(core.EntryID) {}

func (v *ChatView) SetInput(text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.input = text
}

// Input is the last value the controllers put into the input box, which is
// how a transcript reaches the user.
func (v *ChatView) Input() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.input
}

func (v *ChatView) Alert(msg string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintln(v.out, ui.AlertStyle.Render(msg))
}

func (v *ChatView) SetRecording(active bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if active {
		fmt.Fprintln(v.out, ui.RecordingStyle.Render("● recording, press Enter to stop"))
	}
}

// UploadView prints each status line once.
type UploadView struct {
	mu   sync.Mutex
	out  io.Writer
	last string
}

func NewUploadView(out io.Writer) *UploadView {
	return &UploadView{out: out}
}

func (v *UploadView) SetStatus(text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if text == v.last {
		return
	}
	v.last = text
	fmt.Fprintln(v.out, ui.StatusStyle.Render(text))
}

func (v *UploadView) SetUploadEnabled(bool) {}

func (v *UploadView) SetProcessing(active bool) {
	if active {
		v.SetStatus("Processing document...")
	}
}

// Navigator records that the document became ready.
type Navigator struct {
	once  sync.Once
	ready chan struct{}
}

func NewNavigator() *Navigator {
	return &Navigator{ready: make(chan struct{})}
}

func (n *Navigator) OpenChat() {
	n.once.Do(func() { close(n.ready) })
}

func (n *Navigator) Ready() <-chan struct{} {
	return n.ready
}
