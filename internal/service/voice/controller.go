// Package voice records a spoken question, has the backend transcribe it and
// submits the transcript as a chat message.
package voice

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sandevgo/docchat/internal/core"
	"github.com/sandevgo/docchat/internal/service/chat"
	"github.com/sandevgo/docchat/pkg/log"
)

const (
	DeniedText       = "Microphone access denied."
	TranscribingText = "*Transcribing audio...*"
	NotUnderstood    = "Could not understand audio."
	UnreachableText  = chat.ApologyText
)

type State int

const (
	Idle State = iota
	Recording
	Stopping
)

func (s State) String() string {
	switch s {
	case Recording:
		return "recording"
	case Stopping:
		return "stopping"
	default:
		return "idle"
	}
}

type sender interface {
	Send(ctx context.Context, view core.ChatView, text string) (string, error)
}

// Controller owns the microphone for the length of one recording session.
// At most one session exists at a time.
type Controller struct {
	mic     core.Microphone
	backend core.TranscribeBackend
	chat    sender
	view    core.ChatView

	mu        sync.Mutex
	state     State
	capture   core.Capture
	recording *recording
}

// recording is the frame buffer of one capture session. Its collector
// goroutine only ever writes here, so a stream that outlives its session
// cannot leak frames into the next one.
type recording struct {
	mu     sync.Mutex
	chunks [][]byte
	sealed bool
	done   chan struct{}
}

func (r *recording) add(frame []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.sealed {
		r.chunks = append(r.chunks, frame)
	}
}

// seal stops accepting frames and returns what arrived so far.
func (r *recording) seal() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sealed = true
	return bytes.Join(r.chunks, nil)
}

func NewController(mic core.Microphone, backend core.TranscribeBackend, chat sender, view core.ChatView) *Controller {
	return &Controller{
		mic:     mic,
		backend: backend,
		chat:    chat,
		view:    view,
	}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Toggle is the single record button: it starts when idle, stops when
// recording and ignores presses while a stop is finalizing.
func (c *Controller) Toggle(ctx context.Context) error {
	switch c.State() {
	case Idle:
		return c.Start(ctx)
	case Recording:
		return c.Stop(ctx)
	default:
		log.FromCtx(ctx).Debug().Msg("recording is finalizing, toggle ignored")
		return nil
	}
}

// Start opens a capture session. It is a no-op unless idle.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Idle {
		return nil
	}

	capture, err := c.mic.Open(ctx)
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msg("microphone unavailable")
		c.view.Alert(DeniedText)
		return fmt.Errorf("open microphone: %w", err)
	}

	rec := &recording{done: make(chan struct{})}
	c.capture = capture
	c.recording = rec
	c.state = Recording
	go collect(capture.Frames(), rec)

	c.view.SetRecording(true)
	log.FromCtx(ctx).Debug().Msg("recording started")
	return nil
}

func collect(frames <-chan []byte, rec *recording) {
	defer close(rec.done)
	for frame := range frames {
		rec.add(frame)
	}
}

// Stop releases the microphone, assembles the recorded frames and sends
// them for transcription. It is a no-op unless recording.
func (c *Controller) Stop(ctx context.Context) error {
	logger := log.FromCtx(ctx)

	c.mu.Lock()
	if c.state != Recording {
		c.mu.Unlock()
		return nil
	}
	c.state = Stopping
	capture, rec := c.capture, c.recording
	c.mu.Unlock()

	c.view.SetRecording(false)

	if err := capture.Stop(); err != nil {
		logger.Warn().Err(err).Msg("capture did not stop cleanly")
	}

	select {
	case <-rec.done:
	case <-ctx.Done():
		// The stream never closed; keep whatever arrived.
		logger.Warn().Err(ctx.Err()).Msg("gave up waiting for final audio frame")
	}

	audio := rec.seal()

	c.mu.Lock()
	c.capture = nil
	c.recording = nil
	c.state = Idle
	c.mu.Unlock()

	logger.Debug().Int("bytes", len(audio)).Msg("recording stopped")
	return c.Deliver(ctx, audio)
}

// Deliver transcribes a finished clip. A recognized transcript is put into
// the input and sent exactly as if it had been typed.
func (c *Controller) Deliver(ctx context.Context, audio []byte) error {
	logger := log.FromCtx(ctx)

	placeholder := c.view.Append(core.Entry{
		Kind: core.EntryPlaceholder,
		Turn: core.Turn{Role: core.RoleAssistant, Text: TranscribingText, Markdown: true},
	})

	text, err := c.backend.Transcribe(ctx, audio)
	c.view.Remove(placeholder)

	switch {
	case err != nil && errors.Is(err, core.ErrUnreachable):
		logger.Error().Err(err).Msg("transcription request failed")
		c.say(UnreachableText)
		return err
	case err != nil:
		logger.Warn().Err(err).Msg("transcription response unusable")
		c.say(NotUnderstood)
		return nil
	case strings.TrimSpace(text) == "":
		c.say(NotUnderstood)
		return nil
	}

	c.view.SetInput(text)
	_, err = c.chat.Send(ctx, c.view, text)
	return err
}

func (c *Controller) say(text string) {
	c.view.Append(core.Entry{Kind: core.EntryTurn, Turn: core.Turn{Role: core.RoleAssistant, Text: text}})
}
