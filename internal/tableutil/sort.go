// Package tableutil holds the pure helpers behind every indicator table:
// sorting with empties last, page slicing, and CSV export.
package tableutil

import (
	"cmp"
	"slices"
	"strings"

	"samparkdash/internal/cell"
)

// Direction of a sort.
type Direction int

const (
	None Direction = iota
	Ascending
	Descending
)

func (d Direction) String() string {
	switch d {
	case Ascending:
		return "asc"
	case Descending:
		return "desc"
	default:
		return ""
	}
}

// MarshalText writes "asc", "desc" or "".
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText is the inverse of MarshalText.
func (d *Direction) UnmarshalText(b []byte) error {
	*d = ParseDirection(string(b))
	return nil
}

// ParseDirection accepts "asc" and "desc" (any case). Anything else is None.
func ParseDirection(s string) Direction {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc", "ascending":
		return Ascending
	case "desc", "descending":
		return Descending
	default:
		return None
	}
}

// SortConfig is the active sort of one table.
type SortConfig struct {
	Key       string    `json:"key"`
	Direction Direction `json:"direction"`
}

// Active reports whether c actually orders rows.
func (c *SortConfig) Active() bool {
	return c != nil && c.Key != "" && c.Direction != None
}

// Cycle returns the config after the user activates key: a new key starts
// ascending, then descending, then no sort.
func Cycle(prev *SortConfig, key string) *SortConfig {
	if prev == nil || prev.Key != key || prev.Direction == None {
		return &SortConfig{Key: key, Direction: Ascending}
	}
	if prev.Direction == Ascending {
		return &SortConfig{Key: key, Direction: Descending}
	}
	return nil
}

// Compare orders two cells for dir. Empty cells always come last. Two
// numbers compare numerically, everything else as case-folded text.
func Compare(a, b cell.Value, dir Direction) int {
	switch {
	case a.IsEmpty() && b.IsEmpty():
		return 0
	case a.IsEmpty():
		return 1
	case b.IsEmpty():
		return -1
	}

	var c int
	an, aok := a.Float()
	bn, bok := b.Float()
	if aok && bok {
		c = cmp.Compare(an, bn)
	} else {
		c = strings.Compare(strings.ToLower(a.String()), strings.ToLower(b.String()))
	}
	if dir == Descending {
		return -c
	}
	return c
}

// Sort returns rows ordered by cfg. Without an active config the input
// slice is returned as is; otherwise a new, stably sorted slice.
func Sort[T any](rows []T, cfg *SortConfig, get func(T, string) cell.Value) []T {
	if !cfg.Active() {
		return rows
	}
	out := slices.Clone(rows)
	key, dir := cfg.Key, cfg.Direction
	slices.SortStableFunc(out, func(a, b T) int {
		return Compare(get(a, key), get(b, key), dir)
	})
	return out
}
