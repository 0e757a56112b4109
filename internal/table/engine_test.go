package table

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"samparkdash/internal/cell"
	"samparkdash/internal/tableutil"
)

type district struct {
	Name  string
	Usage cell.Value
}

func getDistrict(d district, key string) cell.Value {
	switch key {
	case "name":
		return cell.Text(d.Name)
	case "usage":
		return d.Usage
	}
	return cell.Empty()
}

func rowNames(rows []district) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Name
	}
	return out
}

func makeDistricts(n int) []district {
	out := make([]district, n)
	for i := range out {
		out[i] = district{Name: fmt.Sprintf("D%02d", i), Usage: cell.Number(float64(i))}
	}
	return out
}

func TestEngineSortScenario(t *testing.T) {
	e := New([]district{
		{"B", cell.Number(10)},
		{"A", cell.Number(20)},
		{"State Average/Total", cell.Number(15)},
	}, getDistrict)

	e.HandleSort("usage")
	assert.Equal(t, []string{"B", "State Average/Total", "A"}, rowNames(e.SortedData()))

	e.HandleSort("usage")
	assert.Equal(t, []string{"A", "State Average/Total", "B"}, rowNames(e.SortedData()))

	e.HandleSort("usage")
	assert.Nil(t, e.SortConfig())
	assert.Equal(t, []string{"B", "A", "State Average/Total"}, rowNames(e.SortedData()))
}

func TestEnginePaginationScenario(t *testing.T) {
	e := New(makeDistricts(37), getDistrict)

	assert.Len(t, e.PaginatedData(), 25)
	assert.Equal(t, 2, e.TotalPages())
	assert.Equal(t, 37, e.TotalItems())

	e.SetPage(2)
	assert.Len(t, e.PaginatedData(), 12)

	e.SetPage(3)
	assert.Equal(t, 2, e.Page())
	assert.Len(t, e.PaginatedData(), 12)

	e.SetPage(-4)
	assert.Equal(t, 1, e.Page())
}

func TestEnginePageClamp(t *testing.T) {
	for _, n := range []int{0, 1, 24, 25, 26, 50, 51} {
		e := New(makeDistricts(n), getDistrict)
		last := tableutil.DisplayPages(e.TotalPages())
		for _, requested := range []int{-10, 0, 1, 2, 3, 100} {
			e.SetPage(requested)
			assert.GreaterOrEqual(t, e.Page(), 1)
			assert.LessOrEqual(t, e.Page(), last, "n=%d requested=%d", n, requested)
		}
	}
}

func TestEngineResets(t *testing.T) {
	e := New(makeDistricts(60), getDistrict, WithPageSize(10))
	require.Equal(t, 6, e.TotalPages())

	e.SetPage(4)
	e.HandleSort("name")
	assert.Equal(t, 1, e.Page())

	e.SetPage(4)
	e.SetPageSize(20)
	assert.Equal(t, 1, e.Page())
	assert.Equal(t, 3, e.TotalPages())

	e.SetPage(3)
	e.ResetPagination()
	assert.Equal(t, 1, e.Page())
	require.NotNil(t, e.SortConfig())
	assert.Equal(t, "name", e.SortConfig().Key)

	e.SetPageSize(0)
	assert.Equal(t, 1, e.PageSize())
}

func TestEngineViewsNeverStale(t *testing.T) {
	e := New(makeDistricts(5), getDistrict, WithPageSize(2), WithSort(&tableutil.SortConfig{Key: "usage", Direction: tableutil.Descending}))
	assert.Equal(t, []string{"D04", "D03"}, rowNames(e.PaginatedData()))

	e.SetPage(3)
	assert.Equal(t, []string{"D00"}, rowNames(e.PaginatedData()))

	e.SetData(makeDistricts(3))
	assert.Equal(t, 3, e.TotalItems())
	assert.Empty(t, e.PaginatedData())
	e.ResetPagination()
	assert.Equal(t, []string{"D02", "D01"}, rowNames(e.PaginatedData()))

	e.SetSortConfig(nil)
	assert.Equal(t, []string{"D00", "D01"}, rowNames(e.PaginatedData()))
}

func TestEngineSortConfigIsCopied(t *testing.T) {
	cfg := &tableutil.SortConfig{Key: "usage", Direction: tableutil.Ascending}
	e := New(makeDistricts(3), getDistrict, WithSort(cfg))
	cfg.Direction = tableutil.Descending

	assert.Equal(t, tableutil.Ascending, e.SortConfig().Direction)
	got := e.SortConfig()
	got.Key = "name"
	assert.Equal(t, "usage", e.SortConfig().Key)
}

func TestEngineEmpty(t *testing.T) {
	e := New[district](nil, getDistrict)
	assert.Equal(t, 0, e.TotalPages())
	assert.NotNil(t, e.SortedData())
	assert.Empty(t, e.PaginatedData())
	e.SetPage(5)
	assert.Equal(t, 1, e.Page())
}
