// Package session holds the Session Context: the active document collection
// of one client session, persisted across restarts of the client.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/sandevgo/docchat/internal/core"
)

type Context struct {
	store     core.SessionStore
	sessionID string
}

func NewContext(store core.SessionStore, sessionID string) *Context {
	return &Context{store: store, sessionID: sessionID}
}

func (c *Context) ID() string {
	return c.sessionID
}

// ActiveCollection returns nil when no document has been ingested yet.
func (c *Context) ActiveCollection(ctx context.Context) (*string, error) {
	v, ok, err := c.store.Get(ctx, c.sessionID, core.KeyActiveCollection)
	if err != nil || !ok || v == "" {
		return nil, err
	}
	return &v, nil
}

func (c *Context) ActiveFileName(ctx context.Context) (string, error) {
	v, _, err := c.store.Get(ctx, c.sessionID, core.KeyActiveFileName)
	return v, err
}

// Activate replaces the active collection; the previous one is forgotten.
func (c *Context) Activate(ctx context.Context, collectionID, fileName string) error {
	if err := c.store.Set(ctx, c.sessionID, core.KeyActiveCollection, collectionID); err != nil {
		return fmt.Errorf("store collection: %w", err)
	}
	if err := c.store.Set(ctx, c.sessionID, core.KeyActiveFileName, fileName); err != nil {
		return fmt.Errorf("store file name: %w", err)
	}
	return nil
}

func (c *Context) Reset(ctx context.Context) error {
	return c.store.Clear(ctx, c.sessionID)
}

// MemoryStore is a process-local SessionStore.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]map[string]string)}
}

func (m *MemoryStore) Get(_ context.Context, sessionID, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[sessionID][key]
	return v, ok, nil
}

func (m *MemoryStore) Set(_ context.Context, sessionID, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data[sessionID] == nil {
		m.data[sessionID] = make(map[string]string)
	}
	m.data[sessionID][key] = value
	return nil
}

func (m *MemoryStore) Clear(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, sessionID)
	return nil
}
