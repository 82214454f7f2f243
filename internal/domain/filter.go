package domain

// FilterType selects which session field a filter matches against.
type FilterType string

const (
	FilterFormateur FilterType = "formateur"
	FilterGroupe    FilterType = "groupe"
	FilterSalle     FilterType = "salle"
)

// FilterAll is the reserved "no filter" sentinel value; a filter with
// this value matches every session.
const FilterAll = "_all"

// Filter is one active filter. At most one value is active per type.
type Filter struct {
	Type  FilterType
	Value string
}

// IsAll reports whether the filter is the no-op sentinel.
func (f Filter) IsAll() bool {
	return f.Value == "" || f.Value == FilterAll
}
