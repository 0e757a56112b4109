package indicators

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"samparkdash/internal/cell"
	"samparkdash/internal/classify"
	"samparkdash/internal/drilldown"
	"samparkdash/internal/tableutil"
)

func findRow(t *testing.T, rows []ViewRow, name string) ViewRow {
	t.Helper()
	for _, r := range rows {
		if r.Name == name {
			return r
		}
	}
	t.Fatalf("row %q not found", name)
	return ViewRow{}
}

func cellOf(t *testing.T, r ViewRow, key string) Cell {
	t.Helper()
	for _, c := range r.Cells {
		if c.Key == key {
			return c
		}
	}
	t.Fatalf("cell %q not found in row %q", key, r.Name)
	return Cell{}
}

func names(rows []Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Name
	}
	return out
}

func stateTable(t *testing.T, kind Kind, opts ...Option) *Table {
	t.Helper()
	tbl, err := MockStateDataset().Table(kind, opts...)
	require.NoError(t, err)
	return tbl
}

func TestLeadingTableClassification(t *testing.T) {
	tbl := stateTable(t, Leading, WithPageSize(50))
	page := tbl.View()

	require.Len(t, page.Rows, 14)
	assert.Equal(t, "Leading Indicators (2025-26) - Chattisgarh", page.Title)
	assert.Equal(t, "District", page.Columns[0].Title)

	tests := map[string]struct {
		row  string
		key  string
		tier classify.Tier
		text string
	}{
		"usage above threshold":   {"BALOD", KeyDailyUsage, classify.Good, "61"},
		"usage below threshold":   {"BALODABAZAR", KeyDailyUsage, classify.Warning, "43"},
		"acceptance on boundary":  {"BIJAPUR", KeyTeacherAcceptance, classify.Good, "4.5"},
		"missing usage":           {"SUKMA", KeyDailyUsage, classify.Unknown, "NA"},
		"NA sentinel":             {"SUKMA", KeySmartSchools, classify.Unknown, "NA"},
		"aggregate row":           {"State Average/Total", KeyDailyUsage, classify.Benchmark, "56"},
		"neutral column":          {"RAIPUR", KeyTeachersTrained, classify.Unknown, "215"},
		"active schools boundary": {"BALODABAZAR", KeyActiveSchools, classify.Warning, "50"},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			c := cellOf(t, findRow(t, page.Rows, tc.row), tc.key)
			assert.Equal(t, tc.tier, c.Tier)
			assert.Equal(t, tc.text, c.Display)
		})
	}
}

func TestLeadingTableDrillDown(t *testing.T) {
	page := stateTable(t, Leading, WithPageSize(50)).View()

	balod := findRow(t, page.Rows, "BALOD")
	require.NotNil(t, balod.Target)
	assert.Equal(t, "/district/101/balod", balod.Href)

	state := findRow(t, page.Rows, classify.StateAverage)
	assert.Nil(t, state.Target)
	assert.Empty(t, state.Href)
	assert.True(t, state.Aggregate)

	district, err := MockDistrictDataset().Table(Leading, WithPageSize(50))
	require.NoError(t, err)
	dpage := district.View()
	assert.Equal(t, "Block", dpage.Columns[0].Title)
	assert.Equal(t, "/block/1111/abhanpur", findRow(t, dpage.Rows, "ABHANPUR").Href)
	assert.Nil(t, findRow(t, dpage.Rows, classify.DistrictAverage).Target)

	target, ok := district.Resolve("TILDA")
	require.True(t, ok)
	assert.Equal(t, drilldown.Target{ID: "1114", Name: "TILDA", Slug: "tilda"}, target)

	_, ok = district.Resolve("Nowhere")
	assert.False(t, ok)
}

func TestLeadingTableBands(t *testing.T) {
	tbl := stateTable(t, Leading, WithPageSize(50))
	require.True(t, tbl.SupportsBand())

	tbl.SetBand(classify.BandHigh)
	assert.ElementsMatch(t, []string{"BALOD", "BILASPUR", "JASHPUR", "RAJNANDGAON"}, names(tbl.Rows()))

	tbl.SetBand(classify.BandMedium)
	assert.ElementsMatch(t, []string{classify.StateAverage, "BALODABAZAR", "BASTER", "DANTEWADA", "KHAIRAGARH", "MUNGELI", "RAIPUR"}, names(tbl.Rows()))

	tbl.SetBand(classify.BandLow)
	assert.ElementsMatch(t, []string{"BIJAPUR", "DURG"}, names(tbl.Rows()))
	assert.Equal(t, 2, tbl.View().TotalItems)

	tbl.SetBand(classify.BandAll)
	assert.Len(t, tbl.Rows(), 14)
}

func TestClassObservationPeerAverage(t *testing.T) {
	tbl := stateTable(t, ClassObservation, WithPageSize(50))
	page := tbl.View()

	tests := []struct {
		row     string
		tier    classify.Tier
		display string
	}{
		{"RAIPUR", classify.AboveAverage, "50.7%"},
		{"DURG", classify.BelowAverage, "12.9%"},
		{"BILASPUR", classify.AtAverage, "47.6%"},
		{"SUKMA", classify.Unknown, "NA"},
		{classify.StateAverage, classify.Benchmark, "47.6%"},
	}
	for _, tc := range tests {
		c := cellOf(t, findRow(t, page.Rows, tc.row), KeyGradeAppropriate)
		assert.Equal(t, tc.tier, c.Tier, tc.row)
		assert.Equal(t, tc.display, c.Display, tc.row)
	}

	tbl.SetBand(classify.BandHigh)
	assert.ElementsMatch(t, []string{classify.StateAverage, "BIJAPUR", "BILASPUR", "RAIPUR", "RAJNANDGAON"}, names(tbl.Rows()))
}

func TestPeerAverageWithoutAggregateRow(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	items := []LeadingIndicator{
		{ID: "1", Name: "A", ContinuousAssessment: ContinuousAssessment{ChildrenAboveAverage: cell.Number(10)}},
		{ID: "2", Name: "B", ContinuousAssessment: ContinuousAssessment{ChildrenAboveAverage: cell.Number(0)}},
	}
	page := NewClassObservationTable(items, WithLogger(logger)).View()

	assert.Equal(t, classify.AboveAverage, cellOf(t, findRow(t, page.Rows, "A"), KeyGradeAppropriate).Tier)
	assert.Equal(t, classify.AtAverage, cellOf(t, findRow(t, page.Rows, "B"), KeyGradeAppropriate).Tier)
	assert.Contains(t, logs.String(), "no aggregate row for peer average")
	assert.Contains(t, logs.String(), "column=gradeAppropriate")
}

func TestLaggingTable(t *testing.T) {
	tbl := stateTable(t, Lagging)
	assert.Equal(t, []string{"Math", "Language"}, tbl.Subjects())
	assert.Len(t, tbl.Columns(), 5)

	page := tbl.View()
	assert.Equal(t, "all", page.Subject)
	row := findRow(t, page.Rows, "BALODABAZAR")
	assert.Equal(t, classify.AboveAverage, cellOf(t, row, "mathBase").Tier)
	assert.Equal(t, "34.0", cellOf(t, row, "mathBase").Display)
	assert.Equal(t, classify.AboveAverage, cellOf(t, row, "languageEnd").Tier)
	assert.Nil(t, row.Target)

	jashpur := findRow(t, page.Rows, "JASHPUR")
	assert.Equal(t, classify.BelowAverage, cellOf(t, jashpur, "mathEnd").Tier)

	tbl.SetSubject("math")
	cols := tbl.Columns()
	require.Len(t, cols, 3)
	assert.Equal(t, []string{KeyName, "mathBase", "mathEnd"}, []string{cols[0].Key, cols[1].Key, cols[2].Key})
	assert.Len(t, tbl.View().Rows[0].Cells, 3)
	assert.Equal(t, map[string]string{KeyName: "District", "mathBase": "Math Base-level", "mathEnd": "Math End-level"}, tbl.Headers())

	tbl.SetSubject("science")
	assert.Len(t, tbl.Columns(), 5)

	// band filters do not apply to lagging data
	tbl.SetBand(classify.BandHigh)
	assert.Len(t, tbl.Rows(), 7)
}

func TestBlockLeadingTable(t *testing.T) {
	ds := MockBlockDataset()
	tbl, err := ds.Table(BlockLeading)
	require.NoError(t, err)
	page := tbl.View()

	assert.Equal(t, "block", page.Level)
	assert.Equal(t, KeyCode, page.Columns[0].Key)

	tests := map[string]struct {
		row  string
		tier classify.Tier
	}{
		"synced on the limit": {"GHS Tamasivni", classify.Good},
		"synced too long ago": {"GPS \"Naya\" Para, Abhanpur", classify.Warning},
		"recent sync":         {"GPS Abhanpur", classify.Good},
		"no data":             {"GPS Nawagaon", classify.Unknown},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			r := findRow(t, page.Rows, tc.row)
			assert.Equal(t, tc.tier, cellOf(t, r, KeyLastSyncDays).Tier)
			assert.Nil(t, r.Target)
		})
	}

	assert.Equal(t, "22270101201", cellOf(t, findRow(t, page.Rows, "GPS Abhanpur"), KeyCode).Display)

	tbl.SetSearch("22270101305")
	assert.Equal(t, []string{"GMS Kendri"}, names(tbl.Rows()))

	tbl.SetSearch("  ABHANPUR ")
	assert.Equal(t, []string{"GPS Abhanpur", "GPS \"Naya\" Para, Abhanpur"}, names(tbl.Rows()))

	_, ok := tbl.Resolve("GPS Abhanpur")
	assert.False(t, ok)
}

func TestSearchAndBandResetPage(t *testing.T) {
	tbl := stateTable(t, Leading, WithPageSize(3))
	tbl.SetPage(4)
	require.Equal(t, 4, tbl.View().Page)

	tbl.SetSearch("a")
	assert.Equal(t, 1, tbl.View().Page)

	tbl.SetPage(2)
	tbl.SetBand(classify.BandMedium)
	assert.Equal(t, 1, tbl.View().Page)

	tbl.SetPage(2)
	tbl.Sort(KeyDailyUsage)
	assert.Equal(t, 1, tbl.View().Page)
}

func TestSortEmptyLast(t *testing.T) {
	tbl := stateTable(t, Leading, WithPageSize(50))

	tbl.Sort(KeyDailyUsage)
	rows := tbl.Rows()
	assert.Equal(t, "DURG", rows[0].Name)
	assert.Equal(t, "SUKMA", rows[len(rows)-1].Name)

	tbl.Sort(KeyDailyUsage)
	rows = tbl.Rows()
	assert.Equal(t, "JASHPUR", rows[0].Name)
	assert.Equal(t, "SUKMA", rows[len(rows)-1].Name)

	tbl.Sort(KeyDailyUsage)
	assert.Nil(t, tbl.SortConfig())
	assert.Equal(t, classify.StateAverage, tbl.Rows()[0].Name)

	tbl.SetSort(&tableutil.SortConfig{Key: KeyName, Direction: tableutil.Descending})
	assert.Equal(t, "SUKMA", tbl.Rows()[0].Name)
}

func TestRecordsExport(t *testing.T) {
	tbl := stateTable(t, Leading)
	tbl.SetSearch("sukma")

	out := tableutil.CSV(tbl.Records(), tbl.Headers())
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, `"District","Teacher Acceptance","Lessons Taught/Month","Active Schools %","Daily Usage (min)","# Teachers Trained","# Smart Schools"`, lines[0])
	assert.Equal(t, `"SUKMA","","","","","",""`, lines[1])

	assert.Equal(t, "leading-indicators-chattisgarh", tbl.Slug())

	tbl.SetSearch("nothing matches this")
	assert.Empty(t, tbl.Records())
}

func TestRecordsExportSchoolNames(t *testing.T) {
	tbl, err := MockBlockDataset().Table(BlockLeading)
	require.NoError(t, err)
	tbl.SetSearch("naya")

	out := tableutil.CSV(tbl.Records(), tbl.Headers())
	assert.Equal(t,
		"\"DISE Code\",\"School Name\",\"Last Sync Days\",\"Lessons Taught/Month\",\"Daily Usage (min)\",\"Teachers Trained\"\n"+
			"\"22270101620\",\"GPS \"\"Naya\"\" Para, Abhanpur\",\"8\",\"4.1\",\"30\",\"0\"",
		out)
	assert.Equal(t, "school-leading-indicators-raipur", tbl.Slug())
}

func TestSummarize(t *testing.T) {
	s := Summarize(MockStateDataset().LeadingIndicators)

	assert.Equal(t, 13, s.TotalDistricts)
	assert.InDelta(t, 55.6/12, s.AverageTeacherAcceptance, 1e-9)
	assert.InDelta(t, 49.0, s.AverageDailyUsage, 1e-9)
	assert.InDelta(t, 61.0, s.ActiveSchoolsPercentage, 1e-9)
	assert.Equal(t, 2926.0, s.TotalTeachersTrained)
	assert.Equal(t, 2130.0, s.TotalSmartSchools)
	assert.False(t, s.AcceptanceOnTarget())
	assert.InDelta(t, -11.0, s.UsageDelta(), 1e-9)
	assert.True(t, s.ActiveOnTarget())

	assert.Equal(t, Summary{}, Summarize(nil))
}

func TestTopAndTierCounts(t *testing.T) {
	tbl := stateTable(t, Leading)
	assert.Equal(t, []string{"JASHPUR", "BILASPUR", "BALOD"}, names(Top(tbl, KeyDailyUsage, 3)))

	counts := TierCounts(tbl)
	assert.Equal(t, map[classify.Tier]int{classify.Good: 4, classify.Warning: 8, classify.Unknown: 1}, counts[KeyDailyUsage])
	_, neutral := counts[KeyTeachersTrained]
	assert.False(t, neutral)
}

func TestLaggingIndicatorJSON(t *testing.T) {
	var li LaggingIndicator
	err := json.Unmarshal([]byte(`{"name":"Durg","Math":{"base_line_competence":"31.5","end_line_competence":70},"rank":3,"Language":null}`), &li)
	require.NoError(t, err)

	assert.Equal(t, "Durg", li.Name)
	require.Len(t, li.Subjects, 1)
	n, ok := li.Subject("math").BaseLine.Float()
	assert.True(t, ok)
	assert.Equal(t, 31.5, n)
	assert.True(t, li.Subject("Language").EndLine.IsEmpty())

	out, err := json.Marshal(li)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Durg","Math":{"base_line_competence":31.5,"end_line_competence":70}}`, string(out))
}

func TestIDDecoding(t *testing.T) {
	var ids []ID
	require.NoError(t, json.Unmarshal([]byte(`["12", 34, null, " 7 "]`), &ids))
	assert.Equal(t, []ID{"12", "34", "", "7"}, ids)
}

func TestKinds(t *testing.T) {
	k, err := ParseKind("Class-Observation")
	require.NoError(t, err)
	assert.Equal(t, ClassObservation, k)

	_, err = ParseKind("finance")
	assert.True(t, errors.Is(err, ErrUnknownTable))

	assert.Equal(t, []Kind{BlockLeading}, KindsAt(drilldown.Block))

	_, err = MockDistrictDataset().Table(Lagging)
	assert.ErrorIs(t, err, ErrUnknownTable)
	_, err = MockBlockDataset().Table(Leading)
	assert.ErrorIs(t, err, ErrUnknownTable)

	tables := Tables(MockStateDataset(), drilldown.State)
	require.Len(t, tables, 3)
	assert.Equal(t, Lagging, tables[2].Kind())
}

func TestPageJSON(t *testing.T) {
	tbl := stateTable(t, Leading, WithPageSize(2))
	tbl.Sort(KeyDailyUsage)

	out, err := json.Marshal(tbl.View())
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, "leading", decoded["table"])
	assert.Equal(t, float64(7), decoded["totalPages"])
	assert.Equal(t, map[string]any{"key": KeyDailyUsage, "direction": "asc"}, decoded["sort"])

	rows := decoded["rows"].([]any)
	first := rows[0].(map[string]any)
	assert.Equal(t, "DURG", first["name"])
	assert.Equal(t, "/district/107/durg", first["href"])
}
