// Package ingest uploads a document and follows its server-side processing
// until the document is ready to chat about.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/sandevgo/docchat/internal/core"
	"github.com/sandevgo/docchat/pkg/log"
)

const (
	DocumentExt = ".pdf"

	InvalidFileText   = "⚠️ Please select a valid PDF."
	UploadingText     = "Uploading..."
	UploadFailedText  = "Upload failed"
	ProcessFailedText = "❌ Processing Failed on Server."
	TimedOutText      = "❌ Processing timed out."
	ErrorPrefix       = "⚠️ Error: "
)

var (
	ErrInvalidFile = errors.New("not a pdf document")
	ErrBusy        = errors.New("upload already in progress")
)

type uploader interface {
	UploadPDF(ctx context.Context, name string, r io.Reader) (string, error)
	statusSource
}

type sessionWriter interface {
	Activate(ctx context.Context, collectionID, fileName string) error
}

// Controller runs at most one upload and its poll loop at a time.
type Controller struct {
	backend     uploader
	session     sessionWriter
	interval    time.Duration
	maxAttempts int

	mu   sync.Mutex
	busy bool
	task *PollTask
}

func NewController(backend uploader, session sessionWriter, cfg core.PollConfig) *Controller {
	interval := cfg.GetPollInterval()
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Controller{
		backend:     backend,
		session:     session,
		interval:    interval,
		maxAttempts: cfg.GetPollMaxAttempts(),
	}
}

// HasValidExtension is an advisory client-side check, not a security boundary.
func HasValidExtension(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), DocumentExt)
}

// Upload validates and uploads the file at path, then starts polling. The
// returned task is nil when the upload did not succeed.
func (c *Controller) Upload(ctx context.Context, view core.UploadView, nav core.Navigator, path string) (*PollTask, error) {
	name := filepath.Base(path)
	if path == "" || !HasValidExtension(name) {
		view.SetStatus(InvalidFileText)
		return nil, ErrInvalidFile
	}

	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return nil, ErrBusy
	}
	c.busy = true
	c.mu.Unlock()

	view.SetUploadEnabled(false)
	view.SetStatus(UploadingText)

	collectionID, err := c.upload(ctx, path, name)
	if err != nil {
		log.FromCtx(ctx).Error().Err(err).Str("file", name).Msg("upload failed")
		view.SetStatus(ErrorPrefix + uploadErrorMessage(err))
		c.release(view)
		return nil, err
	}

	if err := c.session.Activate(ctx, collectionID, name); err != nil {
		// The job exists server side; chat can still use it this run.
		log.FromCtx(ctx).Error().Err(err).Msg("failed to persist active collection")
	}

	log.FromCtx(ctx).Info().Str("file", name).Str("collection", collectionID).Msg("document uploaded, polling status")
	view.SetProcessing(true)

	task := Poll(ctx, c.backend, collectionID, c.interval, c.maxAttempts, func(outcome Outcome) {
		switch outcome {
		case OutcomeCompleted:
			c.mu.Lock()
			c.busy = false
			c.mu.Unlock()
			nav.OpenChat()
		case OutcomeFailed:
			view.SetProcessing(false)
			view.SetStatus(ProcessFailedText)
			c.release(view)
		case OutcomeTimedOut:
			view.SetProcessing(false)
			view.SetStatus(TimedOutText)
			c.release(view)
		}
	})

	c.mu.Lock()
	c.task = task
	c.mu.Unlock()

	return task, nil
}

// Cancel stops a running poll loop and re-enables uploads.
func (c *Controller) Cancel(view core.UploadView) {
	c.mu.Lock()
	task := c.task
	c.task = nil
	c.mu.Unlock()

	if task == nil {
		return
	}
	task.Stop()
	if task.Outcome() == OutcomeStopped {
		view.SetProcessing(false)
		c.release(view)
	}
}

func (c *Controller) release(view core.UploadView) {
	c.mu.Lock()
	c.busy = false
	c.mu.Unlock()
	view.SetUploadEnabled(true)
}

func (c *Controller) upload(ctx context.Context, path, name string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open document: %w", err)
	}
	defer f.Close()

	return c.backend.UploadPDF(ctx, name, f)
}

// uploadErrorMessage prefers the server's own explanation of an HTTP failure.
func uploadErrorMessage(err error) string {
	var withStatus interface{ HTTPStatus() (int, string) }
	if errors.As(err, &withStatus) {
		if _, detail := withStatus.HTTPStatus(); detail != "" {
			return detail
		}
		return UploadFailedText
	}
	return err.Error()
}
