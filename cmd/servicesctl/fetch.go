package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/samvad-hq/samvad-services-client/internal/domain"
	"github.com/samvad-hq/samvad-services-client/pkg/apicall"
)

// outcomeView is the --json rendering of an outcome.
type outcomeView struct {
	FetchID    string `json:"fetch_id"`
	OK         bool   `json:"ok"`
	Kind       string `json:"kind"`
	Message    string `json:"message"`
	DurationMs int64  `json:"duration_ms"`
}

func newOutcomeView(o domain.Outcome) outcomeView {
	return outcomeView{
		FetchID:    o.FetchID,
		OK:         o.OK(),
		Kind:       apicall.Kind(o.Err),
		Message:    o.Message(),
		DurationMs: o.Duration().Milliseconds(),
	}
}

func printOutcome(cmd *cobra.Command, o domain.Outcome, asJSON bool) error {
	if !asJSON {
		cmd.Println(o.Message())
		return nil
	}
	data, err := json.Marshal(newOutcomeView(o))
	if err != nil {
		return fmt.Errorf("marshal outcome: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func newFetchCmd(g *globals) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch the services message once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := g.app(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			o, err := a.FetchOnce(cmd.Context())
			if err != nil {
				return err
			}
			return printOutcome(cmd, o, asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the outcome as JSON")
	return cmd
}
