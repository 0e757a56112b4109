package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"charm.land/fantasy"

	"samparkdash/internal/classify"
	"samparkdash/internal/drilldown"
	"samparkdash/internal/indicators"
)

// Loader returns the dataset behind a level. id is the district or block id
// and is ignored at state level.
type Loader func(ctx context.Context, level drilldown.Level, id string) (indicators.Dataset, error)

const maxRows = 50

// QueryInput selects and filters one table.
type QueryInput struct {
	Level     string `json:"level" description:"Hierarchy level: state, district or block"`
	ID        string `json:"id,omitempty" description:"District id (level district) or block id (level block). Ids come from the target field of rows one level up"`
	Table     string `json:"table" description:"leading, class-observation, lagging (state only) or schools (block only)"`
	Search    string `json:"search,omitempty" description:"Case-insensitive name filter; also matches DISE codes for schools"`
	Filter    string `json:"filter,omitempty" description:"Performance band: high, medium or low (leading and class-observation only)"`
	Subject   string `json:"subject,omitempty" description:"Lagging table subject, e.g. Math or Language"`
	Sort      string `json:"sort,omitempty" description:"Column key to sort by"`
	Direction string `json:"direction,omitempty" description:"asc or desc"`
	Limit     int    `json:"limit,omitempty" description:"Maximum rows to return (default and max 50)"`
}

// SummaryInput selects the state whose headline numbers are wanted.
type SummaryInput struct {
	Top int `json:"top,omitempty" description:"How many top districts by daily usage to include (default 5)"`
}

// ListInput selects a level whose tables should be listed.
type ListInput struct {
	Level string `json:"level" description:"Hierarchy level: state, district or block"`
	ID    string `json:"id,omitempty" description:"District or block id for levels below state"`
}

type tableInfo struct {
	Table    string              `json:"table"`
	Title    string              `json:"title"`
	Subtitle string              `json:"subtitle"`
	Rows     int                 `json:"rows"`
	Columns  []indicators.Column `json:"columns"`
}

type queryRow struct {
	Name   string            `json:"name"`
	Target *drilldown.Target `json:"target,omitempty"`
	Values map[string]string `json:"values"`
	Tiers  map[string]string `json:"tiers,omitempty"`
}

type queryResult struct {
	Table   string     `json:"table"`
	Title   string     `json:"title"`
	Matched int        `json:"matched"`
	Rows    []queryRow `json:"rows"`
}

type summaryResult struct {
	indicators.Summary
	TopByDailyUsage []string `json:"topByDailyUsage"`
}

// CreateTools builds the tools the ask agent can call.
func CreateTools(load Loader) []fantasy.AgentTool {
	return []fantasy.AgentTool{
		fantasy.NewAgentTool(
			"list_tables",
			"List the tables available at a hierarchy level with their columns and row counts",
			func(ctx context.Context, in ListInput, _ fantasy.ToolCall) (fantasy.ToolResponse, error) {
				return respond(ListTables(ctx, load, in))
			},
		),
		fantasy.NewAgentTool(
			"query_table",
			"Read rows of an indicator table with optional search, performance band, subject and sort",
			func(ctx context.Context, in QueryInput, _ fantasy.ToolCall) (fantasy.ToolResponse, error) {
				return respond(QueryTable(ctx, load, in))
			},
		),
		fantasy.NewAgentTool(
			"state_summary",
			"Headline numbers of the state: districts, average teacher acceptance, daily usage, active schools, teachers trained, smart schools",
			func(ctx context.Context, in SummaryInput, _ fantasy.ToolCall) (fantasy.ToolResponse, error) {
				return respond(StateSummary(ctx, load, in))
			},
		),
	}
}

// respond turns tool failures into error responses so the model can retry
// with different arguments.
func respond(out string, err error) (fantasy.ToolResponse, error) {
	if err != nil {
		return fantasy.NewTextErrorResponse(err.Error()), nil
	}
	return fantasy.NewTextResponse(out), nil
}

func loadLevel(ctx context.Context, load Loader, levelName, id string) (indicators.Dataset, drilldown.Level, error) {
	level, ok := drilldown.ParseLevel(levelName)
	if !ok || level == drilldown.School {
		return nil, level, fmt.Errorf("level must be state, district or block, got %q", levelName)
	}
	if level != drilldown.State && strings.TrimSpace(id) == "" {
		return nil, level, fmt.Errorf("id is required at %s level", level)
	}
	ds, err := load(ctx, level, strings.TrimSpace(id))
	if err != nil {
		return nil, level, fmt.Errorf("failed to load %s data: %w", level, err)
	}
	return ds, level, nil
}

func encode(v any) (string, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode result as JSON: %w", err)
	}
	return string(b), nil
}

// ListTables describes every table at a level.
func ListTables(ctx context.Context, load Loader, in ListInput) (string, error) {
	ds, level, err := loadLevel(ctx, load, in.Level, in.ID)
	if err != nil {
		return "", err
	}
	var out []tableInfo
	for _, t := range indicators.Tables(ds, level) {
		out = append(out, tableInfo{
			Table:    t.Kind().String(),
			Title:    t.Title(),
			Subtitle: t.Subtitle(),
			Rows:     len(t.AllRows()),
			Columns:  t.Columns(),
		})
	}
	return encode(out)
}

// QueryTable returns the filtered, sorted rows of one table as JSON.
func QueryTable(ctx context.Context, load Loader, in QueryInput) (string, error) {
	kind, err := indicators.ParseKind(in.Table)
	if err != nil {
		return "", err
	}
	ds, _, err := loadLevel(ctx, load, in.Level, in.ID)
	if err != nil {
		return "", err
	}
	t, err := ds.Table(kind)
	if err != nil {
		return "", err
	}
	t.Apply(indicators.Query{
		Search:    in.Search,
		Filter:    in.Filter,
		Subject:   in.Subject,
		Sort:      in.Sort,
		Direction: in.Direction,
	})

	limit := in.Limit
	if limit <= 0 || limit > maxRows {
		limit = maxRows
	}
	rows := t.Rows()
	res := queryResult{Table: t.Kind().String(), Title: t.Title(), Matched: len(rows)}
	cols := t.Columns()
	for _, r := range rows[:min(len(rows), limit)] {
		vr := t.Render(r)
		qr := queryRow{Name: r.Name, Target: vr.Target, Values: make(map[string]string, len(cols))}
		for _, c := range vr.Cells {
			qr.Values[c.Key] = c.Display
			if c.Tier != classify.Unknown && c.Tier != classify.Benchmark {
				if qr.Tiers == nil {
					qr.Tiers = make(map[string]string)
				}
				qr.Tiers[c.Key] = c.Tier.Label()
			}
		}
		res.Rows = append(res.Rows, qr)
	}
	return encode(res)
}

// StateSummary returns the headline numbers of the state view.
func StateSummary(ctx context.Context, load Loader, in SummaryInput) (string, error) {
	ds, _, err := loadLevel(ctx, load, drilldown.State.String(), "")
	if err != nil {
		return "", err
	}
	state, ok := ds.(indicators.StateDataset)
	if !ok {
		return "", fmt.Errorf("state loader returned %T", ds)
	}
	n := in.Top
	if n <= 0 {
		n = 5
	}
	t, err := state.Table(indicators.Leading)
	if err != nil {
		return "", err
	}
	res := summaryResult{Summary: indicators.Summarize(state.LeadingIndicators)}
	for _, r := range indicators.Top(t, indicators.KeyDailyUsage, n) {
		res.TopByDailyUsage = append(res.TopByDailyUsage, r.Name)
	}
	return encode(res)
}
