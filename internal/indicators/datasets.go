package indicators

import (
	"fmt"

	"samparkdash/internal/drilldown"
)

func unknownTable(kind Kind, level drilldown.Level) error {
	return fmt.Errorf("%w: %s at %s level", ErrUnknownTable, kind, level)
}

// Table builds one table of the state view.
func (ds StateDataset) Table(kind Kind, opts ...Option) (*Table, error) {
	opts = append([]Option{WithLevel(drilldown.State), WithScope(ds.StateData.Name)}, opts...)
	switch kind {
	case Leading:
		return NewLeadingTable(ds.LeadingIndicators, ds.Criteria, opts...), nil
	case ClassObservation:
		return NewClassObservationTable(ds.LeadingIndicators, opts...), nil
	case Lagging:
		return NewLaggingTable(ds.LaggingIndicators, ds.LaggingIndicatorSubjects, opts...), nil
	}
	return nil, unknownTable(kind, drilldown.State)
}

// Table builds one table of the district view. Rows are blocks.
func (ds DistrictDataset) Table(kind Kind, opts ...Option) (*Table, error) {
	opts = append([]Option{WithLevel(drilldown.District), WithScope(ds.DistrictData.Name)}, opts...)
	switch kind {
	case Leading:
		return NewLeadingTable(ds.LeadingIndicators, ds.Criteria, opts...), nil
	case ClassObservation:
		return NewClassObservationTable(ds.LeadingIndicators, opts...), nil
	}
	return nil, unknownTable(kind, drilldown.District)
}

// Table builds the school table of the block view.
func (ds BlockDataset) Table(kind Kind, opts ...Option) (*Table, error) {
	if kind != BlockLeading {
		return nil, unknownTable(kind, drilldown.Block)
	}
	opts = append([]Option{WithScope(ds.DistrictData.Name)}, opts...)
	return NewBlockLeadingTable(ds.LeadingIndicators, ds.Criteria, opts...), nil
}

// Dataset is any payload that can produce the tables of one level.
type Dataset interface {
	Table(kind Kind, opts ...Option) (*Table, error)
}

// Tables builds every table ds offers at level, in display order.
func Tables(ds Dataset, level drilldown.Level, opts ...Option) []*Table {
	var out []*Table
	for _, k := range KindsAt(level) {
		t, err := ds.Table(k, opts...)
		if err != nil {
			continue
		}
		out = append(out, t)
	}
	return out
}
