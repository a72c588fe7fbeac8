package srv

import "context"

// cleanupService releases a resource when the services shut down.
type cleanupService struct {
	cleanup func() error
}

func (c *cleanupService) Start(ctx context.Context) error {
	return nil
}

func (c *cleanupService) Shutdown(ctx context.Context) error {
	if c.cleanup != nil {
		return c.cleanup()
	}
	return nil
}

// NewCleanup runs fn on shutdown, e.g. closing the database.
func NewCleanup(fn func() error) Service {
	return &cleanupService{cleanup: fn}
}
