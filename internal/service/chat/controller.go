package chat

import (
	"context"
	"strings"
	"sync"

	"github.com/sandevgo/docchat/internal/core"
	"github.com/sandevgo/docchat/pkg/log"
)

// ApologyText is shown whenever the assistant cannot be reached.
const ApologyText = "Sorry, I couldn't reach the server."

type collectionSource interface {
	ActiveCollection(ctx context.Context) (*string, error)
}

// Controller is the message exchange controller. Sends are independent:
// nothing serializes them, so replies appear in completion order.
type Controller struct {
	backend core.ChatBackend
	session collectionSource
}

func NewController(backend core.ChatBackend, session collectionSource) *Controller {
	return &Controller{
		backend: backend,
		session: session,
	}
}

// Send displays the user turn, asks the backend and displays the reply or
// the apology. Blank input does nothing. The returned error has already been
// shown to the user as the apology and is only useful for logging.
func (c *Controller) Send(ctx context.Context, view core.ChatView, text string) (string, error) {
	message := strings.TrimSpace(text)
	if message == "" {
		return "", nil
	}
	logger := log.FromCtx(ctx)

	view.Append(core.Entry{Kind: core.EntryTurn, Turn: core.Turn{Role: core.RoleUser, Text: message}})
	view.SetInput("")

	typing := view.Append(core.Entry{Kind: core.EntryTyping})
	stopTyping := sync.OnceFunc(func() { view.Remove(typing) })
	defer stopTyping()

	collection, err := c.session.ActiveCollection(ctx)
	if err != nil {
		// Ask without document scope rather than failing the turn.
		logger.Warn().Err(err).Msg("failed to read active collection")
		collection = nil
	}

	answer, err := c.backend.Chat(ctx, message, collection)
	stopTyping()

	if err != nil {
		logger.Error().Err(err).Msg("chat request failed")
		view.Append(core.Entry{Kind: core.EntryTurn, Turn: core.Turn{Role: core.RoleAssistant, Text: ApologyText}})
		return "", err
	}

	view.Append(core.Entry{Kind: core.EntryTurn, Turn: core.Turn{Role: core.RoleAssistant, Text: answer, Markdown: true}})
	return answer, nil
}
