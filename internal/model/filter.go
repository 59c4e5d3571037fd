package model

// FilterAll is the selector value that disables a type or severity filter.
const FilterAll = "all"

// FilterState holds the three independent list filters.
type FilterState struct {
	// Type is a notification type or FilterAll.
	Type string

	// Severity is a severity level or FilterAll.
	Severity Severity

	// UnreadOnly hides notifications that have been read.
	UnreadOnly bool
}

// DefaultFilter returns a filter state that lets every notification through.
func DefaultFilter() FilterState {
	return FilterState{
		Type:     FilterAll,
		Severity: FilterAll,
	}
}

// TypeActive reports whether the type selector narrows the list.
func (f FilterState) TypeActive() bool {
	return f.Type != "" && f.Type != FilterAll
}

// SeverityActive reports whether the severity selector narrows the list.
func (f FilterState) SeverityActive() bool {
	return f.Severity != "" && f.Severity != FilterAll
}

// IsNeutral reports whether no filter is active.
func (f FilterState) IsNeutral() bool {
	return !f.UnreadOnly && !f.TypeActive() && !f.SeverityActive()
}
