package cmd

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/teemow/consultcal/internal/logging"
)

// configFile is the optional YAML file passed with --config.
var configFile string

// rootCmd represents the base command for the consultcal application
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "consultcal",
		Short: "Books 30-minute consultations on a Google Calendar",
		Long: `consultcal offers the free 30-minute slots of one Google Calendar inside a
fixed working window (09:00-17:00 Europe/Budapest by default) and books
them as calendar events, with a Meet link for online consultations.

It can run as:
  - An HTTP API (serve)
  - A one-off availability query (slots)`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to a YAML config file. Keys match flag names.")
	cmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn or error")
	cmd.PersistentFlags().String("log-format", logging.FormatText, "Log format: text or json")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newSlotsCmd())
	cmd.AddCommand(newAuthURLCmd())
	cmd.AddCommand(newAuthExchangeCmd())
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "consultcal version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newLogger builds the process logger from s and installs it as the slog default.
func newLogger(s Settings, w io.Writer) (*slog.Logger, error) {
	logger, err := logging.New(s.LogLevel, s.LogFormat, w)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	return logger, nil
}
