package command

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/sandevgo/docchat/internal/core"
)

type Router struct {
	commands map[string]core.Command
}

// New registers commands plus a /help listing all of them.
func New(commands []core.Command) *Router {
	c := &Router{
		commands: make(map[string]core.Command),
	}

	for _, cmd := range commands {
		c.commands[cmd.Name()] = cmd
	}
	help := NewHelpCommand(c.ListCommands)
	c.commands[help.Name()] = help
	return c
}

// Execute runs input when it is a slash command. The reply is Markdown.
func (c *Router) Execute(ctx context.Context, sessionID, input string) (string, bool) {
	input = strings.TrimSpace(input)
	if !strings.HasPrefix(input, "/") {
		return "", false
	}

	parts := strings.Fields(input)
	name := strings.TrimPrefix(parts[0], "/")
	args := parts[1:]

	cmd, ok := c.commands[name]
	if !ok {
		return fmt.Sprintf("Unknown command: /%s. Try /help.", name), true
	}

	result, err := cmd.Execute(ctx, sessionID, args)
	if err != nil {
		return NewResponseFormatter().Error(err), true
	}
	return result, true
}

// ListCommands returns the commands sorted by name.
func (c *Router) ListCommands() []core.Command {
	res := make([]core.Command, 0, len(c.commands))
	for _, cmd := range c.commands {
		res = append(res, cmd)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Name() < res[j].Name() })
	return res
}
