package ingest

import (
	"context"
	"sync"
	"time"

	"github.com/sandevgo/docchat/internal/core"
	"github.com/sandevgo/docchat/pkg/log"
)

type statusSource interface {
	Status(ctx context.Context, collectionID string) (core.IngestStatus, error)
}

// Outcome is how a poll loop ended.
type Outcome int

const (
	OutcomeStopped Outcome = iota
	OutcomeCompleted
	OutcomeFailed
	OutcomeTimedOut
)

// PollTask is a running status poll loop.
type PollTask struct {
	cancel  context.CancelFunc
	done    chan struct{}
	outcome Outcome
	polls   int
	mu      sync.Mutex
}

// Stop ends the loop without a terminal transition and waits for it.
func (t *PollTask) Stop() {
	t.cancel()
	<-t.done
}

// Done is closed when the loop has ended for any reason.
func (t *PollTask) Done() <-chan struct{} {
	return t.done
}

// Outcome is meaningful once Done is closed.
func (t *PollTask) Outcome() Outcome {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.outcome
}

// Polls reports how many status queries were issued.
func (t *PollTask) Polls() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.polls
}

// Poll queries the job status once per interval until it is terminal, the
// attempt cap is reached (maxAttempts > 0) or the task is stopped. A failed
// query is logged and retried on the next tick. onDone runs once, on the
// loop's goroutine, for every outcome except OutcomeStopped.
func Poll(ctx context.Context, src statusSource, collectionID string, interval time.Duration, maxAttempts int, onDone func(Outcome)) *PollTask {
	ctx, cancel := context.WithCancel(ctx)
	t := &PollTask{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(t.done)
		defer cancel()

		outcome := t.run(ctx, src, collectionID, interval, maxAttempts)

		t.mu.Lock()
		t.outcome = outcome
		t.mu.Unlock()

		if outcome != OutcomeStopped && onDone != nil {
			onDone(outcome)
		}
	}()

	return t
}

func (t *PollTask) run(ctx context.Context, src statusSource, collectionID string, interval time.Duration, maxAttempts int) Outcome {
	logger := log.FromCtx(ctx).With().Str("collection", collectionID).Logger()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for attempt := 1; ; attempt++ {
		select {
		case <-ctx.Done():
			return OutcomeStopped
		case <-ticker.C:
		}

		t.mu.Lock()
		t.polls++
		t.mu.Unlock()

		status, err := src.Status(ctx, collectionID)
		switch {
		case ctx.Err() != nil:
			return OutcomeStopped
		case err != nil:
			logger.Warn().Err(err).Int("attempt", attempt).Msg("status poll failed")
		case status.Terminal():
			if status == core.StatusFailed {
				logger.Warn().Int("attempt", attempt).Msg("document processing failed")
				return OutcomeFailed
			}
			logger.Info().Int("attempt", attempt).Msg("document processed")
			return OutcomeCompleted
		default:
			logger.Debug().Str("status", string(status)).Int("attempt", attempt).Msg("document still processing")
		}

		if maxAttempts > 0 && attempt >= maxAttempts {
			logger.Warn().Int("attempts", attempt).Msg("gave up waiting for document processing")
			return OutcomeTimedOut
		}
	}
}
