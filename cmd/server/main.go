package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/chatrelay/internal/app"
	"github.com/vovakirdan/chatrelay/internal/config"
	"github.com/vovakirdan/chatrelay/internal/log"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		overrides  config.Config
	)

	serve := func(cmd *cobra.Command, _ []string) error {
		return runServer(cmd.Context(), configPath, overrides)
	}

	root := &cobra.Command{
		Use:          "chatrelay",
		Short:        "Room-based real-time chat relay over WebSocket",
		SilenceUsage: true,
		RunE:         serve,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "path to config file (default ./config.yaml)")
	flags.StringVar(&overrides.Host, "host", "", "listen host")
	flags.IntVar(&overrides.Port, "port", 0, "listen port")
	flags.StringVar(&overrides.LogLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.StringVar(&overrides.LogFormat, "log-format", "", "log format (console, json)")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the chat server",
		RunE:  serve,
	})
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	})

	return root
}

func runServer(ctx context.Context, configPath string, overrides config.Config) error {
	bootLog := log.New("info", "console")

	cfg, path, err := config.Load(bootLog, configPath)
	if err != nil {
		bootLog.Error().Err(err).Msg("failed to load config")
		return err
	}
	cfg.UpdateFrom(overrides)

	logger := log.New(cfg.LogLevel, cfg.LogFormat)
	logger.Debug().Str("config", path).Msg("config loaded")

	application, err := app.New(&cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("failed to init app")
		return err
	}

	logger.Info().Str("addr", application.Addr()).Str("version", version).Msg("starting chatrelay server")
	if err := application.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("server exited with error")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}
