package command

import (
	"github.com/sandevgo/docchat/internal/core"
)

func NewCommands(
	store core.SessionStore,
	profile core.ProfileBackend,
) []core.Command {
	return []core.Command{
		NewSessionCommand(store),
		NewWhoamiCommand(profile),
	}
}
