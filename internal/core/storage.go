package core

import "context"

const (
	KeyActiveCollection = "activeCollectionName"
	KeyActiveFileName   = "activeFileName"
)

// SessionStore keeps session-scoped string entries.
type SessionStore interface {
	Get(ctx context.Context, sessionID, key string) (string, bool, error)
	Set(ctx context.Context, sessionID, key, value string) error
	Clear(ctx context.Context, sessionID string) error
}
