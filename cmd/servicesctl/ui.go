package main

import (
	"github.com/spf13/cobra"

	"github.com/samvad-hq/samvad-services-client/internal/ui"
)

func newUICmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "ui",
		Short: "Interactive view: press enter to fetch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := g.app(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			repo := a.Repository()
			return ui.Run(ctx, repo.Slot(), func() { repo.TriggerFetch(ctx) })
		},
	}
}
