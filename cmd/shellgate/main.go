package main

import (
	"fmt"
	"os"

	"github.com/Lin-Jiong-HDU/shellgate/internal/logger"
	"github.com/Lin-Jiong-HDU/shellgate/internal/storage"
	"github.com/spf13/cobra"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "shellgate",
	Short: "Remote shell gateway",
	Long:  "shellgate - run shell commands on this host from Telegram or a local console, with an allow-list and command/directory blacklists",
	Args:  cobra.NoArgs,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := storage.LoadConfig(configFile)
		if err != nil {
			return err
		}
		return logger.Setup(cfg.Log.Level, cfg.Log.Format)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if storage.GetConfig().Telegram.Token == "" {
			return cmd.Help()
		}
		return runServe(cmd, args)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default ~/.shellgate/config.yaml)")
	rootCmd.AddCommand(getServeCommand())
	rootCmd.AddCommand(getConsoleCommand())
	rootCmd.AddCommand(getCheckCommand())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
