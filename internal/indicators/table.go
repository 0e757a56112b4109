// Package indicators turns the raw Sampark indicator payloads into
// searchable, sortable, classified tables. Every dataset shares one
// parameterized Table; the builders differ only in columns and rules.
package indicators

import (
	"log/slog"
	"slices"
	"strings"

	"samparkdash/internal/cell"
	"samparkdash/internal/classify"
	"samparkdash/internal/drilldown"
	"samparkdash/internal/table"
	"samparkdash/internal/tableutil"
)

// Band settings per table kind.
const (
	leadingBandFraction          = 0.5
	classObservationBandFraction = 0.75
)

// Row is one normalized table row.
type Row struct {
	ID    string
	Name  string
	Code  string
	Cells map[string]cell.Value
}

// Get returns the cell under key. Name and code are exposed as text cells.
func (r Row) Get(key string) cell.Value {
	switch key {
	case KeyName:
		return textOrEmpty(r.Name)
	case KeyCode:
		return textOrEmpty(r.Code)
	}
	return r.Cells[key]
}

func textOrEmpty(s string) cell.Value {
	if strings.TrimSpace(s) == "" {
		return cell.Empty()
	}
	return cell.Text(s)
}

func getRow(r Row, key string) cell.Value { return r.Get(key) }

// Option configures a Table.
type Option func(*Table)

// WithLevel sets the hierarchy level the rows belong to. Drill-down targets
// point one level below it.
func WithLevel(level drilldown.Level) Option {
	return func(t *Table) { t.level = level }
}

// WithPageSize sets the initial page size.
func WithPageSize(n int) Option {
	return func(t *Table) {
		if n >= 1 {
			t.pageSize = n
		}
	}
}

// WithScope names the place the table covers; it is appended to titles and
// export file names.
func WithScope(name string) Option {
	return func(t *Table) { t.scope = strings.TrimSpace(name) }
}

// WithLogger sets the logger used for data quality warnings.
func WithLogger(l *slog.Logger) Option {
	return func(t *Table) {
		if l != nil {
			t.logger = l
		}
	}
}

// Table is the search, band filter, subject filter and engine of one view.
// A Table is not safe for concurrent use.
type Table struct {
	kind     Kind
	title    string
	subtitle string
	scope    string
	level    drilldown.Level
	pageSize int
	logger   *slog.Logger

	columns []Column
	rows    []Row

	search  string
	band    classify.Band
	subject string

	bandKey      string
	bandFraction float64

	engine *table.Engine[Row]
}

func newTable(kind Kind, title, subtitle string, columns []Column, rows []Row, opts []Option) *Table {
	t := &Table{
		kind:     kind,
		title:    title,
		subtitle: subtitle,
		level:    drilldown.State,
		pageSize: table.DefaultPageSize,
		logger:   slog.Default(),
		columns:  columns,
		rows:     rows,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.resolvePeerAverages()
	t.engine = table.New(t.filtered(), getRow, table.WithPageSize(t.pageSize))
	return t
}

// resolvePeerAverages fills the average of every peer-mode column from the
// aggregate row. Without one the average stays 0.
func (t *Table) resolvePeerAverages() {
	names := make([]string, len(t.rows))
	for i, r := range t.rows {
		names[i] = r.Name
	}
	for i, c := range t.columns {
		if c.Rule.Mode != classify.PeerMode {
			continue
		}
		values := make([]cell.Value, len(t.rows))
		for j, r := range t.rows {
			values[j] = r.Get(c.Key)
		}
		avg, found := classify.PeerAverageFrom(names, values)
		if !found {
			t.logger.Warn("no aggregate row for peer average, comparing against 0",
				"table", t.kind.String(), "column", c.Key, "rows", len(t.rows))
		}
		t.columns[i].Rule.Average = avg
	}
}

// NewLeadingTable builds the leading indicators table for districts (state
// level) or blocks (district level).
func NewLeadingTable(items []LeadingIndicator, criteria LeadingCriteria, opts ...Option) *Table {
	rows := make([]Row, 0, len(items))
	for _, it := range items {
		rows = append(rows, Row{
			ID:   it.ID.String(),
			Name: it.Name,
			Cells: map[string]cell.Value{
				KeyTeacherAcceptance: it.TeacherFeedback.Rating,
				KeyLessonsTaught:     it.UsagePerSchool,
				KeyActiveSchools:     it.STVUtilization,
				KeyDailyUsage:        it.UsageMinutesPerDay,
				KeyTeachersTrained:   it.TrainedTeachers,
				KeySmartSchools:      it.SmartSchools,
			},
		})
	}
	t := newTable(Leading, "Leading Indicators (2025-26)", "Average per school in the last 30 days",
		leadingColumns("District", criteria), rows, opts)
	t.relabelUnit()
	t.bandKey = KeyDailyUsage
	t.bandFraction = leadingBandFraction
	return t
}

// NewClassObservationTable builds the grade appropriate learners table. Cells
// are compared with the aggregate row's value.
func NewClassObservationTable(items []LeadingIndicator, opts ...Option) *Table {
	rows := make([]Row, 0, len(items))
	for _, it := range items {
		rows = append(rows, Row{
			ID:   it.ID.String(),
			Name: it.Name,
			Cells: map[string]cell.Value{
				KeyChildrenAssessed: it.ContinuousAssessment.ChildrenAssessed,
				KeyGradeAppropriate: it.ContinuousAssessment.ChildrenAboveAverage,
			},
		})
	}
	t := newTable(ClassObservation, "Class Observation (2025-26)", "% of grade appropriate learners",
		classObservationColumns("District"), rows, opts)
	t.relabelUnit()
	t.bandKey = KeyGradeAppropriate
	t.bandFraction = classObservationBandFraction
	return t
}

// DefaultSubjects are used when the payload does not list lagging subjects.
var DefaultSubjects = []string{"Math", "Language"}

// NewLaggingTable builds the base/end competence table, two peer-mode
// columns per subject.
func NewLaggingTable(items []LaggingIndicator, subjects []string, opts ...Option) *Table {
	if len(subjects) == 0 {
		subjects = DefaultSubjects
	}
	rows := make([]Row, 0, len(items))
	for _, it := range items {
		cells := make(map[string]cell.Value, 2*len(subjects))
		for _, s := range subjects {
			base, end := subjectKeys(s)
			c := it.Subject(s)
			cells[base] = c.BaseLine
			cells[end] = c.EndLine
		}
		rows = append(rows, Row{Name: it.Name, Cells: cells})
	}
	t := newTable(Lagging, "Lagging Indicators (2024-25)", "% of Children achieving Base-level/End-level Competence",
		laggingColumns("District", subjects), rows, opts)
	t.relabelUnit()
	return t
}

// NewBlockLeadingTable builds the school-level table of a block.
func NewBlockLeadingTable(items []SchoolIndicator, criteria SchoolCriteria, opts ...Option) *Table {
	rows := make([]Row, 0, len(items))
	for _, it := range items {
		rows = append(rows, Row{
			ID:   it.ID.String(),
			Name: it.Name,
			Code: it.DiseCode.String(),
			Cells: map[string]cell.Value{
				KeyLastSyncDays:    it.LastSyncDays,
				KeyLessonsPerMonth: it.LessonsPerMonthPerDevice,
				KeyDailyUsage:      it.UsageInMinutesPerDay,
				KeyTeachersTrained: it.TrainedTeachers,
			},
		})
	}
	opts = append([]Option{WithLevel(drilldown.Block)}, opts...)
	return newTable(BlockLeading, "Leading Indicators (2025-26)", "School-level metrics",
		schoolColumns(criteria), rows, opts)
}

// relabelUnit names the first column after the level of its rows.
func (t *Table) relabelUnit() {
	unit := "District"
	if t.level == drilldown.District {
		unit = "Block"
	}
	for i := range t.columns {
		if t.columns[i].Key == KeyName {
			t.columns[i].Title = unit
		}
	}
}

func (t *Table) filtered() []Row {
	q := strings.ToLower(strings.TrimSpace(t.search))
	bench, hasBand := t.bandBenchmark()
	out := make([]Row, 0, len(t.rows))
	for _, r := range t.rows {
		if q != "" && !t.matches(r, q) {
			continue
		}
		if hasBand && !classify.InBand(r.Get(t.bandKey), bench, t.bandFraction, t.band) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func (t *Table) matches(r Row, q string) bool {
	if strings.Contains(strings.ToLower(r.Name), q) {
		return true
	}
	return t.kind == BlockLeading && strings.Contains(strings.ToLower(r.Code), q)
}

func (t *Table) bandBenchmark() (float64, bool) {
	if t.band == classify.BandAll || t.bandKey == "" {
		return 0, false
	}
	c, ok := t.column(t.bandKey)
	if !ok {
		return 0, false
	}
	return c.Benchmark()
}

func (t *Table) column(key string) (Column, bool) {
	for _, c := range t.columns {
		if c.Key == key {
			return c, true
		}
	}
	return Column{}, false
}

func (t *Table) refilter() {
	t.engine.SetData(t.filtered())
	t.engine.ResetPagination()
}

// Kind reports which table this is.
func (t *Table) Kind() Kind { return t.kind }

// Level is the hierarchy level of the rows.
func (t *Table) Level() drilldown.Level { return t.level }

// Title includes the scope when one is set.
func (t *Table) Title() string {
	if t.scope == "" {
		return t.title
	}
	return t.title + " - " + t.scope
}

// Subtitle describes what the values mean.
func (t *Table) Subtitle() string { return t.subtitle }

// SupportsBand reports whether SetBand has any effect on this table.
func (t *Table) SupportsBand() bool { return t.bandKey != "" }

// SetSearch filters rows by name, and by DISE code for school tables.
func (t *Table) SetSearch(q string) {
	if q == t.search {
		return
	}
	t.search = q
	t.refilter()
}

// Search is the active search text.
func (t *Table) Search() string { return t.search }

// SetBand filters rows by performance band. Tables without a band column
// ignore it.
func (t *Table) SetBand(b classify.Band) {
	if !t.SupportsBand() || b == t.band {
		return
	}
	t.band = b
	t.refilter()
}

// Band is the active performance band.
func (t *Table) Band() classify.Band { return t.band }

// SetSubject limits lagging tables to one subject's columns. "all", "" or an
// unknown subject shows every column.
func (t *Table) SetSubject(s string) {
	t.subject = strings.ToLower(strings.TrimSpace(s))
}

// Subject is the active subject filter, "all" when unset.
func (t *Table) Subject() string {
	if t.subject == "" {
		return "all"
	}
	return t.subject
}

// Subjects lists the subject groups of the table in column order.
func (t *Table) Subjects() []string {
	var out []string
	for _, c := range t.columns {
		if c.Group != "" && !slices.Contains(out, c.Group) {
			out = append(out, c.Group)
		}
	}
	return out
}

// Columns are the visible columns in display order.
func (t *Table) Columns() []Column {
	if t.subject == "" || t.subject == "all" {
		return slices.Clone(t.columns)
	}
	matched := false
	for _, c := range t.columns {
		if strings.EqualFold(c.Group, t.subject) {
			matched = true
			break
		}
	}
	if !matched {
		return slices.Clone(t.columns)
	}
	out := make([]Column, 0, len(t.columns))
	for _, c := range t.columns {
		if c.Group == "" || strings.EqualFold(c.Group, t.subject) {
			out = append(out, c)
		}
	}
	return out
}

// Sort cycles the sort on key.
func (t *Table) Sort(key string) { t.engine.HandleSort(key) }

// SetSort replaces the sort. A nil config restores API order.
func (t *Table) SetSort(cfg *tableutil.SortConfig) { t.engine.SetSortConfig(cfg) }

// SortConfig is the active sort or nil.
func (t *Table) SortConfig() *tableutil.SortConfig { return t.engine.SortConfig() }

// SetPage moves to page n, clamped.
func (t *Table) SetPage(n int) { t.engine.SetPage(n) }

// SetPageSize changes the page size and returns to page 1.
func (t *Table) SetPageSize(n int) { t.engine.SetPageSize(n) }

// Rows are all filtered rows in sort order.
func (t *Table) Rows() []Row { return t.engine.SortedData() }

// AllRows are the unfiltered rows in API order.
func (t *Table) AllRows() []Row { return t.rows }

// Classify returns the tier of r's cell in column c.
func (t *Table) Classify(r Row, c Column) classify.Tier {
	if c.Key == KeyName || c.Key == KeyCode {
		if classify.IsAggregate(r.Name) {
			return classify.Benchmark
		}
		return classify.Unknown
	}
	return c.Rule.Classify(r.Name, r.Get(c.Key))
}

// Target is the drill-down target of r, if it has one.
func (t *Table) Target(r Row) (drilldown.Target, bool) {
	if t.kind != Leading && t.kind != ClassObservation {
		return drilldown.Target{}, false
	}
	if t.level >= drilldown.Block {
		return drilldown.Target{}, false
	}
	return drilldown.Resolve(r.ID, r.Name)
}

// Resolve finds the row called name and returns its drill-down target.
func (t *Table) Resolve(name string) (drilldown.Target, bool) {
	for _, r := range t.rows {
		if r.Name == name {
			return t.Target(r)
		}
	}
	return drilldown.Target{}, false
}

// Headers maps column keys to titles for CSV export.
func (t *Table) Headers() map[string]string {
	out := make(map[string]string, len(t.columns))
	for _, c := range t.Columns() {
		out[c.Key] = c.Title
	}
	return out
}

// Records are the filtered, sorted rows in visible column order, ready for
// CSV export.
func (t *Table) Records() []tableutil.Record {
	cols := t.Columns()
	rows := t.engine.SortedData()
	out := make([]tableutil.Record, 0, len(rows))
	for _, r := range rows {
		rec := make(tableutil.Record, len(cols))
		for i, c := range cols {
			rec[i] = tableutil.Field{Name: c.Key, Value: c.Export(r.Get(c.Key))}
		}
		out = append(out, rec)
	}
	return out
}

var kindSlugs = map[Kind]string{
	Leading:          "leading-indicators",
	ClassObservation: "class-observation",
	Lagging:          "lagging-indicators",
	BlockLeading:     "school-leading-indicators",
}

// Slug names the dataset in export file names.
func (t *Table) Slug() string {
	slug := kindSlugs[t.kind]
	if t.scope != "" {
		slug += "-" + drilldown.Slugify(t.scope)
	}
	return strings.ReplaceAll(slug, "/", "-")
}
