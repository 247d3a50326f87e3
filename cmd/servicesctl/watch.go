package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/samvad-hq/samvad-services-client/internal/domain"
)

func newWatchCmd(g *globals) *cobra.Command {
	var (
		interval time.Duration
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Fetch the services message on an interval",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := g.app(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if interval <= 0 {
				interval = g.cfg.WatchInterval
			}
			return a.Watch(cmd.Context(), interval, func(o domain.Outcome) {
				if err := printOutcome(cmd, o, asJSON); err != nil {
					g.log.ErrorObj("print outcome failed", "error", err)
				}
			})
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", 0, "time between fetches (defaults to watch_interval)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print outcomes as JSON lines")
	return cmd
}
