// Package drilldown decides which table rows link to the next level of the
// state -> district -> block hierarchy.
package drilldown

import (
	"net/url"
	"regexp"
	"strings"

	"samparkdash/internal/classify"
)

// Level is a step in the administrative hierarchy.
type Level int

const (
	State Level = iota
	District
	Block
	School
)

func (l Level) String() string {
	switch l {
	case District:
		return "district"
	case Block:
		return "block"
	case School:
		return "school"
	default:
		return "state"
	}
}

// ParseLevel maps "state", "district", "block" or "school" onto a Level.
func ParseLevel(s string) (Level, bool) {
	for l := State; l <= School; l++ {
		if strings.EqualFold(strings.TrimSpace(s), l.String()) {
			return l, true
		}
	}
	return State, false
}

// Next is the level a row at l drills into. School is terminal.
func (l Level) Next() Level {
	if l >= School {
		return School
	}
	return l + 1
}

// Target identifies the row to navigate into.
type Target struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// Slugify lower-cases name and replaces each whitespace run with "-".
// Leading and trailing runs are replaced too, not trimmed.
func Slugify(name string) string {
	return whitespaceRun.ReplaceAllString(strings.ToLower(name), "-")
}

// Resolve returns the navigation target for a row, or false for aggregate
// rows and rows without an id.
func Resolve(id, name string) (Target, bool) {
	if classify.IsAggregate(name) || strings.TrimSpace(id) == "" {
		return Target{}, false
	}
	return Target{ID: id, Name: name, Slug: Slugify(name)}, true
}

// Path is the route of the view that shows t at level.
func (t Target) Path(level Level) string {
	return "/" + level.String() + "/" + url.PathEscape(t.ID) + "/" + url.PathEscape(t.Slug)
}
