// Package terminal is the local console transport: a line-oriented REPL
// that feeds the same events as the bot and presses actions by number.
package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Lin-Jiong-HDU/shellgate/internal/core"
)

// ErrUserExit means the user asked to leave the console.
var ErrUserExit = errors.New("user requested exit")

// Doer handles one event and returns its reply.
type Doer interface {
	Do(ctx context.Context, ev core.Event) (core.Reply, error)
}

var commandKinds = map[string]core.Kind{
	"/start":    core.KindStart,
	"/help":     core.KindHelp,
	"/cd":       core.KindChangeDir,
	"/home":     core.KindHome,
	"/pwd":      core.KindPwd,
	"/status":   core.KindStatus,
	"/device":   core.KindDevice,
	"/bookmark": core.KindListBookmarks,
}

const consoleHelp = `Console:
  !N                 Press action N of the last reply
  /clear             Clear the screen
  /exit, /quit       Leave the console`

// Console is an interactive session for one principal.
type Console struct {
	dispatch  Doer
	principal string
	renderer  *Renderer
	out       io.Writer
	actions   []core.Action
}

// NewConsole creates a console acting as principal and writing to out.
func NewConsole(dispatch Doer, principal string, renderer *Renderer, out io.Writer) *Console {
	if renderer == nil {
		renderer = NewPlainRenderer()
	}
	return &Console{
		dispatch:  dispatch,
		principal: principal,
		renderer:  renderer,
		out:       out,
	}
}

// Run reads lines from in until EOF, /exit or ctx is done.
func (c *Console) Run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	fmt.Fprint(c.out, c.renderer.Prompt("shellgate"))
	for scanner.Scan() {
		err := c.ProcessInput(ctx, scanner.Text())
		if errors.Is(err, ErrUserExit) {
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Fprint(c.out, c.renderer.Prompt("shellgate"))
	}
	return scanner.Err()
}

// ProcessInput handles one line.
func (c *Console) ProcessInput(ctx context.Context, input string) error {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil
	}

	if strings.HasPrefix(input, "!") {
		return c.press(ctx, input[1:])
	}

	if strings.HasPrefix(input, "/") {
		return c.HandleCommand(ctx, input)
	}

	return c.send(ctx, core.KindRawCommand, input)
}

// HandleCommand dispatches a slash command.
func (c *Console) HandleCommand(ctx context.Context, input string) error {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return nil
	}
	args := strings.TrimSpace(strings.TrimPrefix(input, parts[0]))

	switch parts[0] {
	case "/exit", "/quit":
		fmt.Fprintln(c.out, "Bye.")
		return ErrUserExit
	case "/clear":
		fmt.Fprint(c.out, "\033[H\033[2J")
		return nil
	}

	kind, ok := commandKinds[parts[0]]
	if !ok {
		fmt.Fprintln(c.out, c.renderer.Error("Unknown command: "+parts[0]))
		return nil
	}
	if err := c.send(ctx, kind, args); err != nil {
		return err
	}
	if kind == core.KindHelp {
		fmt.Fprintln(c.out, consoleHelp)
	}
	return nil
}

func (c *Console) press(ctx context.Context, index string) error {
	n, err := strconv.Atoi(strings.TrimSpace(index))
	if err != nil || n < 1 || n > len(c.actions) {
		fmt.Fprintln(c.out, c.renderer.Error(fmt.Sprintf("No action %s.", index)))
		return nil
	}
	return c.send(ctx, core.KindButtonPress, c.actions[n-1].Tag())
}

func (c *Console) send(ctx context.Context, kind core.Kind, args string) error {
	reply, err := c.dispatch.Do(ctx, core.NewEvent(c.principal, kind, args))
	if err != nil {
		return err
	}
	if reply.Silent {
		return nil
	}
	c.actions = flatten(reply.Actions)
	fmt.Fprint(c.out, c.renderer.Reply(reply))
	return nil
}
