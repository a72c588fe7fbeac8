package command

import (
	"context"
	"errors"
	"testing"

	"github.com/sandevgo/docchat/internal/core"
	"github.com/sandevgo/docchat/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProfile struct {
	info core.UserInfo
	err  error
}

func (f fakeProfile) UserInfo(context.Context) (core.UserInfo, error) {
	return f.info, f.err
}

func newRouter(store core.SessionStore, profile core.ProfileBackend) *Router {
	return New(NewCommands(store, profile))
}

func TestRouter_IgnoresPlainText(t *testing.T) {
	r := newRouter(session.NewMemoryStore(), fakeProfile{})
	_, handled := r.Execute(context.Background(), "s", "what is this?")
	assert.False(t, handled)
}

func TestRouter_Unknown(t *testing.T) {
	r := newRouter(session.NewMemoryStore(), fakeProfile{})
	out, handled := r.Execute(context.Background(), "s", "/nope")
	assert.True(t, handled)
	assert.Contains(t, out, "Unknown command: /nope")
}

func TestRouter_Help(t *testing.T) {
	r := newRouter(session.NewMemoryStore(), fakeProfile{})
	out, handled := r.Execute(context.Background(), "s", "/help")
	require.True(t, handled)
	assert.Contains(t, out, "/session")
	assert.Contains(t, out, "/whoami")
	assert.Contains(t, out, "/help")
}

func TestSessionCommand(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()
	r := newRouter(store, fakeProfile{})

	out, _ := r.Execute(ctx, "s", "/session")
	assert.Contains(t, out, "No active document")

	require.NoError(t, session.NewContext(store, "s").Activate(ctx, "paper_pdf", "paper.pdf"))
	out, _ = r.Execute(ctx, "s", "/session")
	assert.Contains(t, out, "paper.pdf")
	assert.Contains(t, out, "paper_pdf")

	// Other sessions are unaffected.
	out, _ = r.Execute(ctx, "other", "/session")
	assert.Contains(t, out, "No active document")

	out, _ = r.Execute(ctx, "s", "/session clear")
	assert.Contains(t, out, "Session cleared")
	collection, err := session.NewContext(store, "s").ActiveCollection(ctx)
	require.NoError(t, err)
	assert.Nil(t, collection)

	out, _ = r.Execute(ctx, "s", "/session bogus")
	assert.Contains(t, out, "/session [clear]")
}

func TestWhoamiCommand(t *testing.T) {
	ctx := context.Background()

	out, _ := newRouter(session.NewMemoryStore(), fakeProfile{info: core.UserInfo{Name: "Ada"}}).Execute(ctx, "s", "/whoami")
	assert.Contains(t, out, "Ada")

	out, _ = newRouter(session.NewMemoryStore(), fakeProfile{err: errors.New("down")}).Execute(ctx, "s", "/whoami")
	assert.Contains(t, out, "Guest")
}
