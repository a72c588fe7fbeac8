package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/sandevgo/docchat/internal/core"
	"github.com/sandevgo/docchat/internal/session"
	"github.com/sandevgo/docchat/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pollConfig struct {
	interval    time.Duration
	maxAttempts int
}

func (p pollConfig) GetPollInterval() time.Duration { return p.interval }
func (p pollConfig) GetPollMaxAttempts() int        { return p.maxAttempts }

type statusErr struct {
	code   int
	detail string
}

func (e *statusErr) Error() string              { return fmt.Sprintf("http %d", e.code) }
func (e *statusErr) HTTPStatus() (int, string) { return e.code, e.detail }

type fakeBackend struct {
	mu         sync.Mutex
	uploadErr  error
	collection string
	uploads    []string
	statuses   []core.IngestStatus
	statusErrs map[int]error
	polled     []string
}

func (f *fakeBackend) UploadPDF(ctx context.Context, name string, r io.Reader) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads = append(f.uploads, name)
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	return f.collection, nil
}

func (f *fakeBackend) Status(ctx context.Context, collectionID string) (core.IngestStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.polled = append(f.polled, collectionID)
	n := len(f.polled)
	if err := f.statusErrs[n]; err != nil {
		return "", err
	}
	if n <= len(f.statuses) {
		return f.statuses[n-1], nil
	}
	return core.StatusPending, nil
}

func (f *fakeBackend) pollCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.polled)
}

func (f *fakeBackend) uploadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.uploads)
}

func writeFile(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0644))
	return path
}

type fixture struct {
	backend *fakeBackend
	session *session.Context
	view    *test.UploadView
	nav     *test.Navigator
	ctrl    *Controller
}

func newFixture(backend *fakeBackend, maxAttempts int) *fixture {
	sc := session.NewContext(session.NewMemoryStore(), "test")
	return &fixture{
		backend: backend,
		session: sc,
		view:    test.NewUploadView(),
		nav:     test.NewNavigator(),
		ctrl:    NewController(backend, sc, pollConfig{interval: 10 * time.Millisecond, maxAttempts: maxAttempts}),
	}
}

func TestController_RejectsNonPDF(t *testing.T) {
	f := newFixture(&fakeBackend{collection: "x"}, 0)

	task, err := f.ctrl.Upload(context.Background(), f.view, f.nav, writeFile(t, "report.txt"))

	assert.ErrorIs(t, err, ErrInvalidFile)
	assert.Nil(t, task)
	assert.Equal(t, InvalidFileText, f.view.Status())
	assert.Zero(t, f.backend.uploadCount())
	assert.True(t, f.view.Enabled())
}

func TestController_AcceptsUppercaseExtension(t *testing.T) {
	f := newFixture(&fakeBackend{collection: "report_pdf", statuses: []core.IngestStatus{core.StatusCompleted}}, 0)

	task, err := f.ctrl.Upload(context.Background(), f.view, f.nav, writeFile(t, "report.PDF"))
	require.NoError(t, err)
	<-task.Done()

	assert.Equal(t, []string{"report.PDF"}, f.backend.uploads)
	assert.Equal(t, 1, f.nav.Count())
}

func TestController_PollUntilCompleted(t *testing.T) {
	backend := &fakeBackend{
		collection: "abc123",
		statuses:   []core.IngestStatus{core.StatusPending, core.StatusPending, core.StatusCompleted},
	}
	f := newFixture(backend, 0)
	ctx := context.Background()

	task, err := f.ctrl.Upload(ctx, f.view, f.nav, writeFile(t, "report.pdf"))
	require.NoError(t, err)

	require.True(t, f.nav.Wait(2*time.Second))
	<-task.Done()
	time.Sleep(50 * time.Millisecond)

	assert.Equal(t, 1, f.nav.Count())
	assert.Equal(t, 3, backend.pollCount(), "no polls after completion")
	assert.Equal(t, []string{"abc123", "abc123", "abc123"}, backend.polled)
	assert.Equal(t, OutcomeCompleted, task.Outcome())
	assert.True(t, f.view.Processing())

	id, err := f.session.ActiveCollection(ctx)
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, "abc123", *id)
	name, err := f.session.ActiveFileName(ctx)
	require.NoError(t, err)
	assert.Equal(t, "report.pdf", name)
}

func TestController_PollUntilFailed(t *testing.T) {
	backend := &fakeBackend{
		collection: "abc123",
		statuses:   []core.IngestStatus{core.StatusPending, core.StatusFailed},
	}
	f := newFixture(backend, 0)

	task, err := f.ctrl.Upload(context.Background(), f.view, f.nav, writeFile(t, "report.pdf"))
	require.NoError(t, err)
	<-task.Done()

	assert.Equal(t, OutcomeFailed, task.Outcome())
	assert.Zero(t, f.nav.Count())
	assert.True(t, f.view.Enabled())
	assert.False(t, f.view.Processing())
	assert.Equal(t, ProcessFailedText, f.view.Status())
	assert.Equal(t, 2, backend.pollCount())
}

func TestController_PollSurvivesTransientErrors(t *testing.T) {
	backend := &fakeBackend{
		collection: "abc123",
		statuses:   []core.IngestStatus{"", "", "processing", core.StatusCompleted},
		statusErrs: map[int]error{
			1: fmt.Errorf("%w: connection reset", core.ErrUnreachable),
			2: fmt.Errorf("%w: not json", core.ErrMalformedResponse),
		},
	}
	f := newFixture(backend, 0)

	task, err := f.ctrl.Upload(context.Background(), f.view, f.nav, writeFile(t, "report.pdf"))
	require.NoError(t, err)
	<-task.Done()

	assert.Equal(t, OutcomeCompleted, task.Outcome())
	assert.Equal(t, 4, backend.pollCount())
	assert.Equal(t, 1, f.nav.Count())
}

func TestController_PollAttemptCap(t *testing.T) {
	backend := &fakeBackend{collection: "abc123"}
	f := newFixture(backend, 3)

	task, err := f.ctrl.Upload(context.Background(), f.view, f.nav, writeFile(t, "report.pdf"))
	require.NoError(t, err)
	<-task.Done()

	assert.Equal(t, OutcomeTimedOut, task.Outcome())
	assert.Equal(t, 3, backend.pollCount())
	assert.Equal(t, TimedOutText, f.view.Status())
	assert.True(t, f.view.Enabled())
}

func TestController_UploadFailures(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus string
	}{
		{
			name:       "http error with detail",
			err:        &statusErr{code: 400, detail: "Only PDF files are allowed."},
			wantStatus: "⚠️ Error: Only PDF files are allowed.",
		},
		{
			name:       "http error without detail",
			err:        &statusErr{code: 500},
			wantStatus: "⚠️ Error: Upload failed",
		},
		{
			name:       "connection refused",
			err:        errors.New("dial tcp 127.0.0.1:8000: connect: connection refused"),
			wantStatus: "⚠️ Error: dial tcp 127.0.0.1:8000: connect: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(&fakeBackend{uploadErr: tt.err}, 0)

			task, err := f.ctrl.Upload(context.Background(), f.view, f.nav, writeFile(t, "report.pdf"))

			require.Error(t, err)
			assert.Nil(t, task)
			assert.Equal(t, tt.wantStatus, f.view.Status())
			assert.True(t, f.view.Enabled())
			assert.False(t, f.view.Processing())

			// The control is usable again.
			f.backend.uploadErr = nil
			f.backend.collection = "retry"
			f.backend.statuses = []core.IngestStatus{core.StatusCompleted}
			task, err = f.ctrl.Upload(context.Background(), f.view, f.nav, writeFile(t, "report.pdf"))
			require.NoError(t, err)
			<-task.Done()
		})
	}
}

func TestController_RefusesConcurrentUpload(t *testing.T) {
	f := newFixture(&fakeBackend{collection: "abc123"}, 0)
	ctx := context.Background()

	task, err := f.ctrl.Upload(ctx, f.view, f.nav, writeFile(t, "a.pdf"))
	require.NoError(t, err)
	assert.False(t, f.view.Enabled())

	_, err = f.ctrl.Upload(ctx, f.view, f.nav, writeFile(t, "b.pdf"))
	assert.ErrorIs(t, err, ErrBusy)
	assert.Equal(t, 1, f.backend.uploadCount())

	f.ctrl.Cancel(f.view)
	<-task.Done()
	assert.Equal(t, OutcomeStopped, task.Outcome())
	assert.True(t, f.view.Enabled())
	assert.Zero(t, f.nav.Count())
}

func TestPoll_StopEndsLoop(t *testing.T) {
	backend := &fakeBackend{}
	done := make(chan Outcome, 1)

	task := Poll(context.Background(), backend, "abc123", 5*time.Millisecond, 0, func(o Outcome) { done <- o })
	time.Sleep(30 * time.Millisecond)
	task.Stop()
	polls := backend.pollCount()
	time.Sleep(30 * time.Millisecond)

	assert.Equal(t, polls, backend.pollCount())
	assert.Equal(t, OutcomeStopped, task.Outcome())
	assert.Empty(t, done)
}
