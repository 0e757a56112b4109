package indicators

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"samparkdash/internal/cell"
)

// ID is an identifier the API sends either as a string or as a number.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("failed to decode id: %w", err)
		}
		*id = ID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("failed to decode id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

// Place names the state or district a dataset was computed for.
type Place struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

type TeacherFeedback struct {
	Rating          cell.Value `json:"rating"`
	OverallFeedback cell.Value `json:"overall_feedback"`
}

type ContinuousAssessment struct {
	ChildrenAssessed     cell.Value `json:"childrenAssessed"`
	ChildrenAboveAverage cell.Value `json:"childrenAboveAverage"`
}

// LeadingIndicator is one district (state view) or block (district view) row.
type LeadingIndicator struct {
	ID                       ID                   `json:"id"`
	Name                     string               `json:"name"`
	SmartSchools             cell.Value           `json:"smartSchools"`
	UsagePerSchool           cell.Value           `json:"usage_per_school"`
	STVUtilization           cell.Value           `json:"stvUtilization"`
	UsageMinutesPerDay       cell.Value           `json:"usage_in_minutes_per_day"`
	TrainedTeachers          cell.Value           `json:"trainedTeachers"`
	TrainedTeachersPerSchool cell.Value           `json:"trainedTeachersPerSchool"`
	TeacherFeedback          TeacherFeedback      `json:"teacherFeedback"`
	ContinuousAssessment     ContinuousAssessment `json:"continuousAssessment"`
}

// LeadingCriteria are the green thresholds for leading indicators.
type LeadingCriteria struct {
	UsagePerSchool       cell.Value `json:"usage_per_school"`
	STVUtilization       cell.Value `json:"stvUtilization"`
	UsageMinutesPerDay   cell.Value `json:"usage_in_minutes_per_day"`
	TeacherFeedback      cell.Value `json:"teacherFeedback"`
	ChildrenAboveAverage cell.Value `json:"childrenAboveAverage"`
}

// Competence is a subject's baseline and endline share of competent children.
type Competence struct {
	BaseLine cell.Value `json:"base_line_competence"`
	EndLine  cell.Value `json:"end_line_competence"`
}

// LaggingIndicator is one district row of the yearly assessment results.
// Subjects are keyed by the API's subject name ("Math", "Language", ...).
type LaggingIndicator struct {
	Name     string
	Subjects map[string]Competence
}

func (l *LaggingIndicator) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to decode lagging indicator: %w", err)
	}
	l.Name = ""
	l.Subjects = make(map[string]Competence)
	for key, msg := range raw {
		if key == "name" {
			var name *string
			if err := json.Unmarshal(msg, &name); err == nil && name != nil {
				l.Name = *name
			}
			continue
		}
		trimmed := bytes.TrimSpace(msg)
		if len(trimmed) == 0 || trimmed[0] != '{' {
			continue
		}
		var c Competence
		if err := json.Unmarshal(trimmed, &c); err != nil {
			continue
		}
		l.Subjects[key] = c
	}
	return nil
}

func (l LaggingIndicator) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(l.Subjects)+1)
	out["name"] = l.Name
	for k, v := range l.Subjects {
		out[k] = v
	}
	return json.Marshal(out)
}

// Subject returns the competence for subject, matching the key case-insensitively.
func (l LaggingIndicator) Subject(subject string) Competence {
	if c, ok := l.Subjects[subject]; ok {
		return c
	}
	for k, c := range l.Subjects {
		if strings.EqualFold(k, subject) {
			return c
		}
	}
	return Competence{}
}

// SchoolIndicator is one school row of the block view.
type SchoolIndicator struct {
	ID                       ID         `json:"id"`
	DiseCode                 ID         `json:"diseCode"`
	Name                     string     `json:"name"`
	TrainedTeachers          cell.Value `json:"trainedTeachers"`
	LessonsPerMonthPerDevice cell.Value `json:"lessonsPerMonthPerDevice"`
	UsageInMinutesPerDay     cell.Value `json:"usageInMinutesPerDay"`
	LastSyncDays             cell.Value `json:"lastSyncDays"`
	LastSyncDate             string     `json:"lastSyncDate,omitempty"`
	TeacherAcceptance        cell.Value `json:"teacherAcceptance"`
	ActiveSchools            cell.Value `json:"activeSchools"`
	SmartSchools             cell.Value `json:"smartSchools"`
}

// SchoolCriteria are the green thresholds for school rows. LastSyncDays is
// an upper bound, the rest are lower bounds.
type SchoolCriteria struct {
	TrainedTeachers          cell.Value `json:"trainedTeachers"`
	LessonsPerMonthPerDevice cell.Value `json:"lessonsPerMonthPerDevice"`
	UsageInMinutesPerDay     cell.Value `json:"usageInMinutesPerDay"`
	LastSyncDays             cell.Value `json:"lastSyncDays"`
}

// StateDataset is the payload of the district-wise leading indicators call.
type StateDataset struct {
	LastUpdatedDate          string             `json:"lastUpdatedDate"`
	LaggingIndicatorSubjects []string           `json:"laggingIndicatorSubjects"`
	LaggingIndicators        []LaggingIndicator `json:"laggingIndicators2024"`
	LeadingIndicators        []LeadingIndicator `json:"leadingIndicators"`
	Criteria                 LeadingCriteria    `json:"leadingIndicatorsGreenCriteria"`
	StateData                Place              `json:"stateData"`
}

// DistrictDataset is the payload of the district-level call: one row per block.
type DistrictDataset struct {
	LastUpdatedDate   string             `json:"lastUpdatedDate"`
	LeadingIndicators []LeadingIndicator `json:"leadingIndicators"`
	Criteria          LeadingCriteria    `json:"leadingIndicatorsGreenCriteria"`
	StateData         Place              `json:"stateData"`
	DistrictData      Place              `json:"districtData"`
}

// BlockDataset is the payload of the data insights call: one row per school.
type BlockDataset struct {
	LastUpdatedDate   string            `json:"lastUpdatedDate"`
	DataMonth         cell.Value        `json:"dataMonth"`
	Criteria          SchoolCriteria    `json:"leadingIndicatorsGreenCriteria"`
	LeadingIndicators []SchoolIndicator `json:"leadingIndicators"`
	StateData         Place             `json:"stateData"`
	DistrictData      Place             `json:"districtData"`
}
