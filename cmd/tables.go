package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"samparkdash/internal/drilldown"
	"samparkdash/internal/indicators"
	"samparkdash/internal/session"
)

// tableFlags selects one table and its view, shared by show, export and
// summarize.
type tableFlags struct {
	district string
	block    string
	query    indicators.Query
}

func (f *tableFlags) register(c *cobra.Command, paging bool) {
	c.Flags().StringVar(&f.district, "district", "", "District id; shows its blocks")
	c.Flags().StringVar(&f.block, "block", "", "Block id; shows its schools (needs --district or a previously opened district)")
	c.Flags().StringVarP(&f.query.Search, "search", "s", "", "Filter rows by name (and DISE code for schools)")
	c.Flags().StringVarP(&f.query.Filter, "filter", "f", "", "Performance band: high, medium or low")
	c.Flags().StringVar(&f.query.Subject, "subject", "", "Lagging table subject, e.g. Math")
	c.Flags().StringVar(&f.query.Sort, "sort", "", "Column key to sort by")
	c.Flags().StringVar(&f.query.Direction, "dir", "asc", "Sort direction: asc or desc")
	if paging {
		c.Flags().IntVar(&f.query.Page, "page", 1, "Page to show")
		c.Flags().Int("page-size", 25, "Rows per page")
	}
}

// level works out which dataset the flags point at.
func (f *tableFlags) level() (drilldown.Level, string) {
	switch {
	case f.block != "":
		return drilldown.Block, f.block
	case f.district != "":
		return drilldown.District, f.district
	default:
		return drilldown.State, ""
	}
}

// openTable loads the dataset the flags select and builds the named table
// with the flags' view applied.
func openTable(ctx context.Context, name string, f *tableFlags) (*indicators.Table, func(), error) {
	kind, err := indicators.ParseKind(name)
	if err != nil {
		return nil, nil, err
	}
	sess, err := LoadSession(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	level, id := f.level()
	if level == drilldown.Block && f.district != "" {
		sess.District = &session.Selection{ID: f.district}
	}

	src, cleanup, err := OpenSource(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	dash := Dashboard{Source: src, Config: cfg, Session: sess}
	ds, err := dash.Load(ctx, level, id)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to load %s data: %w", level, err)
	}

	t, err := ds.Table(kind, indicators.WithPageSize(cfg.PageSize), indicators.WithLogger(logger))
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	t.Apply(f.query)
	return t, cleanup, nil
}
