package core

import "context"

// Command is a slash command typed into the chat input instead of a question.
type Command interface {
	Name() string
	Description() string
	Execute(ctx context.Context, sessionID string, args []string) (string, error)
}
