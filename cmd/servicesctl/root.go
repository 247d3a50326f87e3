package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/samvad-hq/samvad-services-client/internal/app"
	"github.com/samvad-hq/samvad-services-client/internal/config"
	"github.com/samvad-hq/samvad-services-client/internal/logger"
)

// globals holds state shared by subcommands after PersistentPreRunE.
type globals struct {
	baseURL string
	storage string

	cfg *config.Config
	log logger.Logger
}

func newRootCmd() *cobra.Command {
	g := &globals{}

	root := &cobra.Command{
		Use:   "servicesctl",
		Short: "Fetch and watch the services endpoint",
		Long: `servicesctl issues GET {base}/services and displays the returned message,
or "Error fetching services: ..." when the call fails.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return g.load()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = logger.Close()
		},
	}

	root.SetOut(os.Stdout)
	root.PersistentFlags().StringVar(&g.baseURL, "base-url", "", "override api_base_url")
	root.PersistentFlags().StringVar(&g.storage, "storage", "", "override storage_type (none, bbolt, redis)")

	root.AddCommand(
		newFetchCmd(g),
		newWatchCmd(g),
		newUICmd(g),
		newHistoryCmd(g),
	)
	return root
}

func (g *globals) load() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if v := strings.TrimSpace(g.baseURL); v != "" {
		cfg.APIBaseURL = v
	}
	if v := strings.TrimSpace(g.storage); v != "" {
		cfg.StorageType = v
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger.DebugObj("servicesctl starting", "config", cfg)

	g.cfg = cfg
	g.log = log
	return nil
}

func (g *globals) app(ctx context.Context) (*app.App, error) {
	a, err := app.New(ctx, g.cfg, g.log)
	if err != nil {
		g.log.ErrorObj("failed to initialize app", "error", err)
		return nil, err
	}
	return a, nil
}
