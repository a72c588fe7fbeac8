// Package tui is the terminal front end: an upload screen and a chat screen
// driven by the chat, voice and ingest controllers.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sandevgo/docchat/internal/core"
	"github.com/sandevgo/docchat/internal/service/chat"
	"github.com/sandevgo/docchat/internal/service/command"
	"github.com/sandevgo/docchat/internal/service/ingest"
	"github.com/sandevgo/docchat/internal/service/ui"
	"github.com/sandevgo/docchat/internal/service/voice"
	"github.com/sandevgo/docchat/pkg/conv"
	"github.com/sandevgo/docchat/pkg/log"
)

type screen int

const (
	screenUpload screen = iota
	screenChat
)

// chrome is the number of lines around the transcript viewport.
const chrome = 6

type sessionReader interface {
	ID() string
	ActiveCollection(ctx context.Context) (*string, error)
	ActiveFileName(ctx context.Context) (string, error)
}

type Deps struct {
	Chat       *chat.Controller
	Ingest     *ingest.Controller
	Microphone core.Microphone
	Transcribe core.TranscribeBackend
	Profile    core.ProfileBackend
	Session    sessionReader
	Commands   *command.Router
}

type item struct {
	id    core.EntryID
	entry core.Entry
}

type fileNameMsg struct{ name string }

type Model struct {
	ctx  context.Context
	deps Deps

	voice      *voice.Controller
	chatView   *chatView
	uploadView *uploadView
	nav        *navigator

	screen        screen
	width, height int

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	picker   filepicker.Model

	items     []item
	recording bool
	alert     string

	user          core.UserInfo
	fileName      string
	status        string
	uploadEnabled bool
	processing    bool
}

// NewModel opens on the chat screen when the session already has a
// document, otherwise on the upload screen.
func NewModel(ctx context.Context, deps Deps, send func(tea.Msg)) Model {
	cv := &chatView{send: send}

	ti := textinput.New()
	ti.Placeholder = "Ask about your document..."
	ti.CharLimit = 4000
	ti.Width = 60
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = ui.PendingStyle

	fp := filepicker.New()
	fp.CurrentDirectory = "."
	fp.ShowHidden = false

	m := Model{
		ctx:           ctx,
		deps:          deps,
		chatView:      cv,
		uploadView:    &uploadView{send: send},
		nav:           &navigator{send: send},
		screen:        screenUpload,
		input:         ti,
		viewport:      viewport.New(80, 20),
		spinner:       sp,
		picker:        fp,
		uploadEnabled: true,
	}
	if deps.Microphone != nil && deps.Transcribe != nil {
		m.voice = voice.NewController(deps.Microphone, deps.Transcribe, deps.Chat, cv)
	}

	if collection, err := deps.Session.ActiveCollection(ctx); err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msg("failed to read session")
	} else if collection != nil {
		m.screen = screenChat
		m.fileName, _ = deps.Session.ActiveFileName(ctx)
	}
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, m.picker.Init(), m.loadUser())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-chrome, 3)
		m.input.Width = max(msg.Width-4, 10)
		m.refresh()

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.alert != "" {
			m.alert = ""
			return m, nil
		}
		if m.screen == screenChat {
			return m.updateChatKeys(msg)
		}
		return m.updateUploadKeys(msg)

	case appendMsg:
		m.items = append(m.items, item{id: msg.id, entry: msg.entry})
		m.refresh()

	case removeMsg:
		for i, it := range m.items {
			if it.id == msg.id {
				m.items = append(m.items[:i:i], m.items[i+1:]...)
				break
			}
		}
		m.refresh()

	case inputMsg:
		m.input.SetValue(msg.text)
		m.input.CursorEnd()

	case alertMsg:
		m.alert = msg.text

	case recordingMsg:
		m.recording = msg.active

	case statusMsg:
		m.status = msg.text

	case uploadEnabledMsg:
		m.uploadEnabled = msg.enabled

	case processingMsg:
		m.processing = msg.active

	case openChatMsg:
		m.screen = screenChat
		m.status = ""
		m.processing = false
		m.uploadEnabled = true
		m.items = nil
		m.refresh()
		return m, tea.Batch(m.loadFileName(), textinput.Blink)

	case fileNameMsg:
		m.fileName = msg.name

	case userInfoMsg:
		m.user = msg.info

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.hasPending() {
			m.refresh()
		}
		return m, cmd
	}

	// The picker reads directories through its own messages.
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m Model) updateChatKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		text := m.input.Value()
		if strings.TrimSpace(text) == "" {
			return m, nil
		}
		m.input.SetValue("")
		if strings.HasPrefix(strings.TrimSpace(text), "/") && m.deps.Commands != nil {
			return m, m.runCommand(text)
		}
		return m, m.send(text)
	case "ctrl+r":
		return m, m.toggleRecording()
	case "ctrl+u":
		m.screen = screenUpload
		return m, nil
	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateUploadKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "esc" {
		if m.processing {
			return m, m.cancelUpload()
		}
		if m.fileName != "" {
			m.screen = screenChat
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)

	if ok, path := m.picker.DidSelectFile(msg); ok && m.uploadEnabled {
		return m, tea.Batch(cmd, m.upload(path))
	}
	return m, cmd
}

func (m Model) send(text string) tea.Cmd {
	ctx, view, controller := m.ctx, m.chatView, m.deps.Chat
	return func() tea.Msg {
		if _, err := controller.Send(ctx, view, text); err != nil {
			log.FromCtx(ctx).Debug().Err(err).Msg("chat turn ended with apology")
		}
		return nil
	}
}

func (m Model) runCommand(text string) tea.Cmd {
	ctx, view, router, sessionID := m.ctx, m.chatView, m.deps.Commands, m.deps.Session.ID()
	return func() tea.Msg {
		reply, _ := router.Execute(ctx, sessionID, text)
		view.Append(core.Entry{Kind: core.EntryTurn, Turn: core.Turn{Role: core.RoleUser, Text: text}})
		view.Append(core.Entry{Kind: core.EntryTurn, Turn: core.Turn{Role: core.RoleAssistant, Text: reply, Markdown: true}})
		return nil
	}
}

func (m Model) toggleRecording() tea.Cmd {
	if m.voice == nil {
		view := m.chatView
		return func() tea.Msg {
			view.Alert(voice.DeniedText)
			return nil
		}
	}
	ctx, controller := m.ctx, m.voice
	return func() tea.Msg {
		if err := controller.Toggle(ctx); err != nil {
			log.FromCtx(ctx).Debug().Err(err).Msg("voice toggle failed")
		}
		return nil
	}
}

func (m Model) upload(path string) tea.Cmd {
	ctx, controller, view, nav := m.ctx, m.deps.Ingest, m.uploadView, m.nav
	return func() tea.Msg {
		if _, err := controller.Upload(ctx, view, nav, path); err != nil {
			log.FromCtx(ctx).Debug().Err(err).Str("path", path).Msg("upload not started")
		}
		return nil
	}
}

func (m Model) cancelUpload() tea.Cmd {
	controller, view := m.deps.Ingest, m.uploadView
	return func() tea.Msg {
		controller.Cancel(view)
		return nil
	}
}

func (m Model) loadUser() tea.Cmd {
	ctx, profile := m.ctx, m.deps.Profile
	if profile == nil {
		return nil
	}
	return func() tea.Msg {
		info, err := profile.UserInfo(ctx)
		if err != nil {
			log.FromCtx(ctx).Debug().Err(err).Msg("user info unavailable, showing guest")
			return userInfoMsg{}
		}
		return userInfoMsg{info: info}
	}
}

func (m Model) loadFileName() tea.Cmd {
	ctx, session := m.ctx, m.deps.Session
	return func() tea.Msg {
		name, err := session.ActiveFileName(ctx)
		if err != nil {
			log.FromCtx(ctx).Warn().Err(err).Msg("failed to read active file name")
		}
		return fileNameMsg{name: name}
	}
}

func (m Model) hasPending() bool {
	for _, it := range m.items {
		if it.entry.Kind == core.EntryTyping {
			return true
		}
	}
	return false
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.transcript())
	m.viewport.GotoBottom()
}

func (m Model) transcript() string {
	width := max(m.viewport.Width-2, 20)
	wrap := lipgloss.NewStyle().Width(width)

	var b strings.Builder
	for _, it := range m.items {
		b.WriteString(wrap.Render(m.renderEntry(it.entry)))
		b.WriteString("\n\n")
	}
	return b.String()
}

func (m Model) renderEntry(e core.Entry) string {
	switch e.Kind {
	case core.EntryTyping:
		return m.spinner.View() + ui.PendingStyle.Render(" thinking...")
	case core.EntryPlaceholder:
		return ui.PendingStyle.Render(strings.Trim(e.Turn.Text, "*"))
	}

	text := e.Turn.Text
	if e.Turn.Markdown {
		text = conv.MarkdownToText(text)
	}
	if e.Turn.Role == core.RoleUser {
		return ui.UserStyle.Render("You: ") + text
	}
	return ui.AssistantStyle.Render("Assistant: ") + text
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n\n")

	if m.screen == screenChat {
		b.WriteString(m.viewport.View())
		b.WriteString("\n")
		b.WriteString(m.input.View())
		b.WriteString("\n")
		if m.recording {
			b.WriteString(ui.RecordingStyle.Render("● REC") + "  ")
		}
		b.WriteString(ui.HelpStyle.Render("enter send • ctrl+r record • ctrl+u upload • ctrl+c quit"))
	} else {
		b.WriteString("Pick a PDF document to chat about:\n\n")
		b.WriteString(m.picker.View())
		b.WriteString("\n")
		if m.processing {
			b.WriteString(m.spinner.View() + " Processing document...\n")
		}
		if m.status != "" {
			b.WriteString(ui.StatusStyle.Render(m.status) + "\n")
		}
		b.WriteString(ui.HelpStyle.Render("enter select • esc cancel/back • ctrl+c quit"))
	}

	if m.alert != "" {
		b.WriteString("\n\n")
		b.WriteString(ui.AlertStyle.Render(m.alert))
		b.WriteString("\n" + ui.HelpStyle.Render("(press any key)"))
	}
	return b.String()
}

func (m Model) header() string {
	who := "Guest"
	if !m.user.IsGuest() {
		who = m.user.Name
	}
	title := ui.TitleStyle.UnsetMarginBottom().Render(core.AppName)
	line := fmt.Sprintf("%s  %s", title, ui.DescStyle.Render(who))
	if m.screen == screenChat && m.fileName != "" {
		line += ui.DescStyle.Render("  •  " + m.fileName)
	}
	return line
}
