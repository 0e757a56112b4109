package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"samparkdash/internal/agent"
	"samparkdash/internal/drilldown"
	"samparkdash/internal/indicators"
	"samparkdash/internal/session"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about the indicators using Claude AI via Fantasy",
	Long: `Ask a natural language question and get an answer grounded in the
dashboard tables. Claude can list the tables of any level, query them with
filters and sorting, and read the state summary.

Requires ANTHROPIC_API_KEY environment variable to be set.

Example:
  samparkdash ask "Which districts are below the daily usage target?"
  samparkdash ask "Compare the blocks of district 111 on teacher acceptance"`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		question := strings.Join(args, " ")
		ctx := context.Background()

		sess, err := LoadSession(ctx, cfg)
		if err != nil {
			HandleError(err, "Failed to load session")
		}
		src, cleanup, err := OpenSource(cfg, logger)
		if err != nil {
			HandleError(err, "Failed to open data source")
		}
		defer cleanup()

		answer, err := agent.GenerateResponse(ctx, question,
			agent.WithAPIKey(cfg.AnthropicAPIKey),
			agent.WithStateName(cfg.StateName),
			agent.WithLoader(askLoader(Dashboard{Source: src, Config: cfg, Session: sess})),
		)
		if err != nil {
			HandleError(err, "Failed to generate response")
		}

		fmt.Println(answer)
	},
}

// askLoader lets the agent reach block data without the user opening a
// district first: the block's district is looked up in the state view.
func askLoader(dash Dashboard) agent.Loader {
	return func(ctx context.Context, level drilldown.Level, id string) (indicators.Dataset, error) {
		if level != drilldown.Block || dash.Session.District != nil {
			return dash.Load(ctx, level, id)
		}
		districtID, err := findBlockDistrict(ctx, dash, id)
		if err != nil {
			return nil, err
		}
		scoped := *dash.Session
		scoped.District = &session.Selection{ID: districtID}
		dash.Session = &scoped
		return dash.Load(ctx, level, id)
	}
}

func findBlockDistrict(ctx context.Context, dash Dashboard, blockID string) (string, error) {
	ds, err := dash.Load(ctx, drilldown.State, "")
	if err != nil {
		return "", err
	}
	state, ok := ds.(indicators.StateDataset)
	if !ok {
		return "", ErrNoDistrict
	}
	for _, d := range state.LeadingIndicators {
		if d.ID == "" {
			continue
		}
		district, err := dash.Load(ctx, drilldown.District, string(d.ID))
		if err != nil {
			continue
		}
		dd, ok := district.(indicators.DistrictDataset)
		if !ok {
			continue
		}
		for _, b := range dd.LeadingIndicators {
			if string(b.ID) == blockID {
				return string(d.ID), nil
			}
		}
	}
	return "", fmt.Errorf("%w: block %s not found in any district", ErrNoDistrict, blockID)
}
