package voice

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/sandevgo/docchat/internal/core"
	"github.com/sandevgo/docchat/internal/service/chat"
	"github.com/sandevgo/docchat/internal/session"
	"github.com/sandevgo/docchat/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCapture struct {
	frames  chan []byte
	pending [][]byte
	stops   int
	hang    bool
}

func (f *fakeCapture) Frames() <-chan []byte { return f.frames }

// Stop flushes the frames that were still buffered, then ends the stream.
func (f *fakeCapture) Stop() error {
	f.stops++
	if f.hang {
		return nil
	}
	for _, p := range f.pending {
		f.frames <- p
	}
	close(f.frames)
	return nil
}

type fakeMic struct {
	mu       sync.Mutex
	err      error
	hang     bool
	opened   int
	captures []*fakeCapture
	frames   [][]byte
}

func (m *fakeMic) Open(ctx context.Context) (core.Capture, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.opened++
	c := &fakeCapture{frames: make(chan []byte), pending: m.frames, hang: m.hang}
	m.captures = append(m.captures, c)
	return c, nil
}

type fakeTranscriber struct {
	text  string
	err   error
	calls int
	audio []byte
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, audio []byte) (string, error) {
	f.calls++
	f.audio = audio
	return f.text, f.err
}

type chatStub struct {
	answer string
	calls  []string
}

func (c *chatStub) Chat(ctx context.Context, message string, collection *string) (string, error) {
	c.calls = append(c.calls, message)
	return c.answer, nil
}

type fixture struct {
	mic     *fakeMic
	trans   *fakeTranscriber
	chatAPI *chatStub
	chat    *chat.Controller
	view    *test.ChatView
	ctrl    *Controller
}

func newFixture(text string, err error) *fixture {
	f := &fixture{
		mic:     &fakeMic{frames: [][]byte{[]byte("aa"), []byte("bb"), []byte("cc")}},
		trans:   &fakeTranscriber{text: text, err: err},
		chatAPI: &chatStub{answer: "Hi there"},
		view:    test.NewChatView(),
	}
	f.chat = chat.NewController(f.chatAPI, session.NewContext(session.NewMemoryStore(), "test"))
	f.ctrl = NewController(f.mic, f.trans, f.chat, f.view)
	return f
}

func TestController_RecordAndTranscribe(t *testing.T) {
	ctx := context.Background()
	f := newFixture("hello", nil)

	require.NoError(t, f.ctrl.Toggle(ctx))
	assert.Equal(t, Recording, f.ctrl.State())

	require.NoError(t, f.ctrl.Toggle(ctx))
	assert.Equal(t, Idle, f.ctrl.State())

	assert.Equal(t, []byte("aabbcc"), f.trans.audio, "frames are joined in arrival order")
	assert.Equal(t, 1, f.mic.captures[0].stops, "microphone released once")
	assert.Equal(t, []string{"hello"}, f.chatAPI.calls)

	// Same transcript as typing "hello" and pressing enter.
	manual := newFixture("", nil)
	_, err := manual.chat.Send(ctx, manual.view, "hello")
	require.NoError(t, err)
	assert.Equal(t, manual.view.Turns(), f.view.Turns())
}

func TestController_PlaceholderAlwaysRemoved(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		err       error
		wantReply string
		wantChat  bool
	}{
		{name: "transcript", text: "hello", wantReply: "Hi there", wantChat: true},
		{name: "empty transcript", text: "", wantReply: NotUnderstood},
		{name: "whitespace transcript", text: "   ", wantReply: NotUnderstood},
		{name: "malformed body", err: fmt.Errorf("%w: bad json", core.ErrMalformedResponse), wantReply: NotUnderstood},
		{name: "http error", err: errors.New("http 500"), wantReply: NotUnderstood},
		{name: "unreachable", err: fmt.Errorf("%w: refused", core.ErrUnreachable), wantReply: chat.ApologyText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(tt.text, tt.err)

			_ = f.ctrl.Deliver(context.Background(), []byte("clip"))

			for _, e := range f.view.Visible() {
				assert.NotEqual(t, core.EntryPlaceholder, e.Kind, "placeholder left on screen")
			}
			turns := f.view.Turns()
			require.NotEmpty(t, turns)
			assert.Equal(t, tt.wantReply, turns[len(turns)-1].Text)
			if tt.wantChat {
				assert.Len(t, f.chatAPI.calls, 1)
			} else {
				assert.Empty(t, f.chatAPI.calls)
			}
		})
	}
}

func TestController_StartTwiceKeepsOneSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture("hello", nil)

	require.NoError(t, f.ctrl.Start(ctx))
	require.NoError(t, f.ctrl.Start(ctx))

	assert.Equal(t, 1, f.mic.opened)
	assert.Equal(t, Recording, f.ctrl.State())

	require.NoError(t, f.ctrl.Stop(ctx))
	assert.Equal(t, 1, f.trans.calls)
}

func TestController_StreamOutlivingStopStaysInItsSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture("hello", nil)

	f.mic.hang = true
	require.NoError(t, f.ctrl.Start(ctx))

	stopCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	_ = f.ctrl.Stop(stopCtx)
	require.Equal(t, Idle, f.ctrl.State())

	f.mic.hang = false
	require.NoError(t, f.ctrl.Start(ctx))

	// The first recorder finally flushes after its session is over.
	f.mic.captures[0].frames <- []byte("late")

	require.NoError(t, f.ctrl.Stop(ctx))
	assert.Equal(t, []byte("aabbcc"), f.trans.audio)
}

func TestController_StopWithoutStartIsNoop(t *testing.T) {
	f := newFixture("hello", nil)

	require.NoError(t, f.ctrl.Stop(context.Background()))

	assert.Equal(t, Idle, f.ctrl.State())
	assert.Zero(t, f.trans.calls)
	assert.Empty(t, f.view.Events())
}

func TestController_StopIgnoredWhileStopping(t *testing.T) {
	ctx := context.Background()
	f := newFixture("hello", nil)
	require.NoError(t, f.ctrl.Start(ctx))

	f.ctrl.mu.Lock()
	f.ctrl.state = Stopping
	f.ctrl.mu.Unlock()

	require.NoError(t, f.ctrl.Stop(ctx))
	require.NoError(t, f.ctrl.Toggle(ctx))
	assert.Zero(t, f.trans.calls)
	assert.Zero(t, f.mic.captures[0].stops)
}

func TestController_PermissionDenied(t *testing.T) {
	f := newFixture("hello", nil)
	f.mic.err = errors.New("permission denied")

	err := f.ctrl.Toggle(context.Background())

	require.Error(t, err)
	assert.Equal(t, Idle, f.ctrl.State())
	events := f.view.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "alert", events[0].Op)
	assert.Equal(t, DeniedText, events[0].Text)
}

func TestController_RecordingIndicator(t *testing.T) {
	ctx := context.Background()
	f := newFixture("hello", nil)

	require.NoError(t, f.ctrl.Start(ctx))
	require.NoError(t, f.ctrl.Stop(ctx))

	var flags []bool
	for _, e := range f.view.Events() {
		if e.Op == "recording" {
			flags = append(flags, e.Flag)
		}
	}
	assert.Equal(t, []bool{true, false}, flags)
}
