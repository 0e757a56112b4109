package indicators

import (
	"samparkdash/internal/classify"
	"samparkdash/internal/tableutil"
)

// Query is a table view request as it arrives from a URL, flags or a tool
// call. Zero fields leave the table as it is.
type Query struct {
	Search    string `json:"search,omitempty"`
	Filter    string `json:"filter,omitempty"`
	Subject   string `json:"subject,omitempty"`
	Sort      string `json:"sort,omitempty"`
	Direction string `json:"direction,omitempty"`
	Page      int    `json:"page,omitempty"`
	PageSize  int    `json:"pageSize,omitempty"`
}

// Apply sets t's filters, sort and page from q. A sort key without a
// direction sorts ascending. Out of range page numbers and sizes are
// clamped.
func (t *Table) Apply(q Query) {
	if q.Sort != "" {
		dir := tableutil.ParseDirection(q.Direction)
		if dir == tableutil.None {
			dir = tableutil.Ascending
		}
		t.SetSort(&tableutil.SortConfig{Key: q.Sort, Direction: dir})
	}
	t.SetSearch(q.Search)
	t.SetBand(classify.ParseBand(q.Filter))
	if q.Subject != "" {
		t.SetSubject(q.Subject)
	}
	if q.PageSize != 0 {
		t.SetPageSize(q.PageSize)
	}
	if q.Page != 0 {
		t.SetPage(q.Page)
	}
}
