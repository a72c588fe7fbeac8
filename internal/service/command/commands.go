package command

import (
	"context"
	"fmt"

	"github.com/sandevgo/docchat/internal/core"
	"github.com/sandevgo/docchat/internal/session"
)

// SessionCommand shows or clears the document the session chats about.
type SessionCommand struct {
	store     core.SessionStore
	formatter *ResponseFormatter
}

func NewSessionCommand(store core.SessionStore) *SessionCommand {
	return &SessionCommand{store: store, formatter: NewResponseFormatter()}
}

func (c *SessionCommand) Name() string {
	return "session"
}

func (c *SessionCommand) Description() string {
	return "Show the active document, or clear it with /session clear"
}

func (c *SessionCommand) Execute(ctx context.Context, sessionID string, args []string) (string, error) {
	sess := session.NewContext(c.store, sessionID)

	if len(args) > 0 {
		if args[0] != "clear" {
			return c.formatter.Usage("/session [clear]"), nil
		}
		if err := sess.Reset(ctx); err != nil {
			return "", fmt.Errorf("failed to clear session: %w", err)
		}
		return c.formatter.Success("Session cleared, upload a new document to continue"), nil
	}

	collection, err := sess.ActiveCollection(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to read session: %w", err)
	}
	if collection == nil {
		return c.formatter.Combine(
			c.formatter.Info("No active document"),
			c.formatter.Label("Session", sessionID),
		), nil
	}

	name, err := sess.ActiveFileName(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to read session: %w", err)
	}
	return c.formatter.Combine(
		c.formatter.Info("Active Document"),
		c.formatter.Label("File", name),
		c.formatter.Label("Collection", *collection),
		c.formatter.Label("Session", sessionID),
	), nil
}

// WhoamiCommand reports the signed-in user, or Guest.
type WhoamiCommand struct {
	profile   core.ProfileBackend
	formatter *ResponseFormatter
}

func NewWhoamiCommand(profile core.ProfileBackend) *WhoamiCommand {
	return &WhoamiCommand{profile: profile, formatter: NewResponseFormatter()}
}

func (c *WhoamiCommand) Name() string {
	return "whoami"
}

func (c *WhoamiCommand) Description() string {
	return "Show the user the server knows you as"
}

func (c *WhoamiCommand) Execute(ctx context.Context, _ string, _ []string) (string, error) {
	info, err := c.profile.UserInfo(ctx)
	if err != nil || info.IsGuest() {
		return c.formatter.Label("User", "Guest"), nil
	}
	return c.formatter.Label("User", info.Name), nil
}

type HelpCommand struct {
	list      func() []core.Command
	formatter *ResponseFormatter
}

func NewHelpCommand(list func() []core.Command) *HelpCommand {
	return &HelpCommand{list: list, formatter: NewResponseFormatter()}
}

func (c *HelpCommand) Name() string {
	return "help"
}

func (c *HelpCommand) Description() string {
	return "List available commands"
}

func (c *HelpCommand) Execute(_ context.Context, _ string, _ []string) (string, error) {
	var items []string
	for _, cmd := range c.list() {
		items = append(items, fmt.Sprintf("`/%s` %s", cmd.Name(), cmd.Description()))
	}
	return c.formatter.Combine(c.formatter.Info("Commands"), c.formatter.List(items)), nil
}
