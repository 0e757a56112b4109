package indicators

import (
	"samparkdash/internal/cell"
	"samparkdash/internal/classify"
	"samparkdash/internal/drilldown"
	"samparkdash/internal/tableutil"
)

// Cell is one rendered table cell.
type Cell struct {
	Key     string        `json:"key"`
	Value   cell.Value    `json:"value"`
	Display string        `json:"display"`
	Tier    classify.Tier `json:"tier"`
}

// ViewRow is one rendered row of the current page.
type ViewRow struct {
	ID        string            `json:"id,omitempty"`
	Name      string            `json:"name"`
	Aggregate bool              `json:"aggregate"`
	Cells     []Cell            `json:"cells"`
	Target    *drilldown.Target `json:"target,omitempty"`
	Href      string            `json:"href,omitempty"`
}

// Page is everything a client needs to draw the current page of a table.
type Page struct {
	Table      string                `json:"table"`
	Title      string                `json:"title"`
	Subtitle   string                `json:"subtitle"`
	Level      string                `json:"level"`
	Columns    []Column              `json:"columns"`
	Rows       []ViewRow             `json:"rows"`
	Page       int                   `json:"page"`
	PageSize   int                   `json:"pageSize"`
	TotalPages int                   `json:"totalPages"`
	TotalItems int                   `json:"totalItems"`
	Sort       *tableutil.SortConfig `json:"sort,omitempty"`
	Search     string                `json:"search,omitempty"`
	Filter     string                `json:"filter"`
	Subject    string                `json:"subject,omitempty"`
}

// Render classifies and formats r against the visible columns.
func (t *Table) Render(r Row) ViewRow {
	cols := t.Columns()
	vr := ViewRow{
		ID:        r.ID,
		Name:      r.Name,
		Aggregate: classify.IsAggregate(r.Name),
		Cells:     make([]Cell, len(cols)),
	}
	for i, c := range cols {
		v := r.Get(c.Key)
		vr.Cells[i] = Cell{Key: c.Key, Value: v, Display: c.Display(v), Tier: t.Classify(r, c)}
	}
	if target, ok := t.Target(r); ok {
		vr.Target = &target
		vr.Href = target.Path(t.level.Next())
	}
	return vr
}

// View renders the current page.
func (t *Table) View() Page {
	rows := t.engine.PaginatedData()
	p := Page{
		Table:      t.kind.String(),
		Title:      t.Title(),
		Subtitle:   t.subtitle,
		Level:      t.level.String(),
		Columns:    t.Columns(),
		Rows:       make([]ViewRow, len(rows)),
		Page:       t.engine.Page(),
		PageSize:   t.engine.PageSize(),
		TotalPages: t.engine.TotalPages(),
		TotalItems: t.engine.TotalItems(),
		Sort:       t.engine.SortConfig(),
		Search:     t.search,
		Filter:     t.band.String(),
	}
	if t.kind == Lagging {
		p.Subject = t.Subject()
	}
	for i, r := range rows {
		p.Rows[i] = t.Render(r)
	}
	return p
}

// TierCounts counts the tiers of every classified column over the filtered
// rows. Aggregate rows are skipped.
func TierCounts(t *Table) map[string]map[classify.Tier]int {
	out := make(map[string]map[classify.Tier]int)
	for _, c := range t.Columns() {
		if c.Rule.Mode == classify.None {
			continue
		}
		counts := make(map[classify.Tier]int)
		for _, r := range t.Rows() {
			if classify.IsAggregate(r.Name) {
				continue
			}
			counts[t.Classify(r, c)]++
		}
		out[c.Key] = counts
	}
	return out
}
