package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/Lin-Jiong-HDU/shellgate/internal/core/paths"
	"github.com/Lin-Jiong-HDU/shellgate/internal/core/security"
	"github.com/Lin-Jiong-HDU/shellgate/internal/storage"
	"github.com/spf13/cobra"
)

func getCheckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Test a command or directory against the blacklists",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "cmd <command>",
		Short: "Check a command against the command blacklist",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gate := newGate(storage.GetConfig())
			command := strings.Join(args, " ")
			result := &security.CheckResult{Allowed: true}
			if entry, blocked := gate.IsCommandBlocked(cmd.Context(), command); blocked {
				result = &security.CheckResult{Allowed: false, Reason: security.ReasonCommandBlocked, Match: entry}
			}
			return report(cmd, result)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "dir <path>",
		Short: "Check a directory against the directory blacklist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return err
			}
			gate := newGate(storage.GetConfig())
			return report(cmd, gate.CheckDirectory(cmd.Context(), paths.Resolve(args[0], cwd)))
		},
	})

	return cmd
}

// report prints the outcome; a rejection is returned as an error so the
// exit status reflects it.
func report(cmd *cobra.Command, result *security.CheckResult) error {
	if !result.Allowed {
		return errors.New(result.Message())
	}
	fmt.Fprintln(cmd.OutOrStdout(), result.Message())
	return nil
}
