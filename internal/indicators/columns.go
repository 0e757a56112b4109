package indicators

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"samparkdash/internal/cell"
	"samparkdash/internal/classify"
	"samparkdash/internal/drilldown"
)

// ErrUnknownTable is returned when a table name is not offered at a level.
var ErrUnknownTable = errors.New("unknown table")

// Kind selects one of the indicator tables.
type Kind int

const (
	Leading Kind = iota
	ClassObservation
	Lagging
	BlockLeading
)

var kindNames = map[Kind]string{
	Leading:          "leading",
	ClassObservation: "class-observation",
	Lagging:          "lagging",
	BlockLeading:     "schools",
}

func (k Kind) String() string { return kindNames[k] }

// ParseKind maps a table name from a URL or flag onto a Kind.
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownTable, s)
}

// KindsAt lists the tables shown at a hierarchy level, in display order.
func KindsAt(level drilldown.Level) []Kind {
	switch level {
	case drilldown.State:
		return []Kind{Leading, ClassObservation, Lagging}
	case drilldown.District:
		return []Kind{Leading, ClassObservation}
	case drilldown.Block:
		return []Kind{BlockLeading}
	default:
		return nil
	}
}

// Column keys. Every table starts with KeyName.
const (
	KeyName = "name"
	KeyCode = "diseCode"

	KeyTeacherAcceptance = "teacherAcceptance"
	KeyLessonsTaught     = "lessonsTaught"
	KeyActiveSchools     = "activeSchools"
	KeyDailyUsage        = "dailyUsage"
	KeyTeachersTrained   = "teachersTrained"
	KeySmartSchools      = "smartSchools"

	KeyChildrenAssessed = "childrenAssessed"
	KeyGradeAppropriate = "gradeAppropriate"

	KeyLastSyncDays    = "lastSyncDays"
	KeyLessonsPerMonth = "lessonsPerMonth"
)

// Format controls how a numeric cell is displayed.
type Format int

const (
	Plain Format = iota
	OneDecimal
	Percent
)

// Column describes one table column and how its cells are classified.
type Column struct {
	Key    string        `json:"key"`
	Title  string        `json:"title"`
	Group  string        `json:"group,omitempty"`
	Rule   classify.Rule `json:"-"`
	Format Format        `json:"-"`
}

// Display renders v for the screen: "NA" for empty cells.
func (c Column) Display(v cell.Value) string {
	if v.IsEmpty() {
		return v.String()
	}
	return c.format(v)
}

// Export renders v for CSV: "" for empty cells.
func (c Column) Export(v cell.Value) string {
	if v.IsEmpty() {
		return ""
	}
	return c.format(v)
}

func (c Column) format(v cell.Value) string {
	n, ok := v.Float()
	if !ok {
		return v.String()
	}
	switch c.Format {
	case OneDecimal:
		return strconv.FormatFloat(n, 'f', 1, 64)
	case Percent:
		return strconv.FormatFloat(n, 'f', 1, 64) + "%"
	default:
		return v.String()
	}
}

// Benchmark is the value the column compares against, if any.
func (c Column) Benchmark() (float64, bool) {
	return c.Rule.Benchmark()
}

// criterionRule turns an API criterion into a threshold rule. A missing or
// non-numeric criterion leaves the column unclassified.
func criterionRule(v cell.Value, cmp classify.Comparator) classify.Rule {
	n, ok := v.Float()
	if !ok {
		return classify.Rule{}
	}
	return classify.ThresholdRule(n, cmp)
}

func nameColumn(title string) Column {
	return Column{Key: KeyName, Title: title}
}

func leadingColumns(unit string, criteria LeadingCriteria) []Column {
	return []Column{
		nameColumn(unit),
		{Key: KeyTeacherAcceptance, Title: "Teacher Acceptance", Rule: criterionRule(criteria.TeacherFeedback, classify.AtLeast)},
		{Key: KeyLessonsTaught, Title: "Lessons Taught/Month", Rule: criterionRule(criteria.UsagePerSchool, classify.AtLeast)},
		{Key: KeyActiveSchools, Title: "Active Schools %", Rule: criterionRule(criteria.STVUtilization, classify.AtLeast)},
		{Key: KeyDailyUsage, Title: "Daily Usage (min)", Rule: criterionRule(criteria.UsageMinutesPerDay, classify.AtLeast)},
		{Key: KeyTeachersTrained, Title: "# Teachers Trained"},
		{Key: KeySmartSchools, Title: "# Smart Schools"},
	}
}

func classObservationColumns(unit string) []Column {
	return []Column{
		nameColumn(unit),
		{Key: KeyChildrenAssessed, Title: "Children Assessed"},
		{Key: KeyGradeAppropriate, Title: "% of Grade Appropriate Learners", Rule: classify.PeerRule(0), Format: Percent},
	}
}

// subject column keys are "<subject>Base" and "<subject>End" in lower camel case.
func subjectKeys(subject string) (base, end string) {
	s := strings.ToLower(strings.Join(strings.Fields(subject), ""))
	return s + "Base", s + "End"
}

func laggingColumns(unit string, subjects []string) []Column {
	cols := []Column{nameColumn(unit)}
	for _, s := range subjects {
		base, end := subjectKeys(s)
		cols = append(cols,
			Column{Key: base, Title: s + " Base-level", Group: s, Rule: classify.PeerRule(0), Format: OneDecimal},
			Column{Key: end, Title: s + " End-level", Group: s, Rule: classify.PeerRule(0), Format: OneDecimal},
		)
	}
	return cols
}

func schoolColumns(criteria SchoolCriteria) []Column {
	return []Column{
		{Key: KeyCode, Title: "DISE Code"},
		nameColumn("School Name"),
		{Key: KeyLastSyncDays, Title: "Last Sync Days", Rule: criterionRule(criteria.LastSyncDays, classify.AtMost)},
		{Key: KeyLessonsPerMonth, Title: "Lessons Taught/Month", Rule: criterionRule(criteria.LessonsPerMonthPerDevice, classify.AtLeast)},
		{Key: KeyDailyUsage, Title: "Daily Usage (min)", Rule: criterionRule(criteria.UsageInMinutesPerDay, classify.AtLeast)},
		{Key: KeyTeachersTrained, Title: "Teachers Trained", Rule: criterionRule(criteria.TrainedTeachers, classify.AtLeast)},
	}
}
