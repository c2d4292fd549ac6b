package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/Lin-Jiong-HDU/shellgate/internal/storage"
	"github.com/Lin-Jiong-HDU/shellgate/internal/terminal"
	"github.com/spf13/cobra"
)

const defaultConsolePrincipal = "console"

var (
	consoleAs       string
	consoleNoRender bool
)

func getConsoleCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "console",
		Short: "Run an interactive local session",
		Long:  "Read commands from stdin and run them through the same gate as the bot",
		Args:  cobra.NoArgs,
		RunE:  runConsole,
	}

	cmd.Flags().StringVar(&consoleAs, "as", "", "principal to act as (default: first allowed user)")
	cmd.Flags().BoolVar(&consoleNoRender, "no-render", false, "disable markdown rendering of command output")

	return cmd
}

func runConsole(cmd *cobra.Command, args []string) error {
	cfg := storage.GetConfig()

	gw, err := newGateway(cfg)
	if err != nil {
		return err
	}

	var renderer *terminal.Renderer
	if !consoleNoRender {
		renderer, _ = terminal.NewRenderer(80)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	dispatched := make(chan error, 1)
	go func() { dispatched <- gw.dispatcher.Run(ctx) }()
	defer func() {
		cancel()
		<-dispatched
	}()

	principal := consolePrincipal(consoleAs, cfg.Security.AllowedUsers)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "shellgate console as %s, /help for commands, /exit to leave\n", principal)

	console := terminal.NewConsole(gw.dispatcher, principal, renderer, out)
	return console.Run(ctx, cmd.InOrStdin())
}

// consolePrincipal picks who the console acts as: the --as flag, else the
// first allowed user, else a fixed name that only an empty allow-list admits.
func consolePrincipal(as string, allowed []string) string {
	if as = strings.TrimSpace(as); as != "" {
		return as
	}
	for _, id := range allowed {
		if id = strings.TrimSpace(id); id != "" {
			return id
		}
	}
	return defaultConsolePrincipal
}
