package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newHistoryCmd(g *globals) *cobra.Command {
	var (
		limit  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show stored fetch outcomes, newest first",
		Long: `Show stored fetch outcomes, newest first.

With storage_type=bbolt the database file is held exclusively by a running
watch; stop it or use storage_type=redis to read history
alongside a watch.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := g.app(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			entries, err := a.History(cmd.Context(), limit)
			if err != nil {
				return err
			}

			if asJSON {
				data, err := json.MarshalIndent(entries, "", "  ")
				if err != nil {
					return fmt.Errorf("marshal history: %w", err)
				}
				cmd.Println(string(data))
				return nil
			}

			if len(entries) == 0 {
				cmd.Println("No outcomes recorded.")
				return nil
			}
			for _, e := range entries {
				cmd.Printf("%s  %-15s  %s\n", e.CompletedAt.Local().Format(time.DateTime), e.Kind, e.Message)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of outcomes")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}
