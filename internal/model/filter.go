package model

type SortOrder int

const (
	SortNone SortOrder = iota
	SortAscending
	SortDescending
)

// Next cycles None -> Ascending -> Descending -> None.
func (o SortOrder) Next() SortOrder {
	switch o {
	case SortNone:
		return SortAscending
	case SortAscending:
		return SortDescending
	default:
		return SortNone
	}
}

func (o SortOrder) Label() string {
	switch o {
	case SortAscending:
		return "↑ % Increase"
	case SortDescending:
		return "↓ % Increase"
	default:
		return "Sort"
	}
}

type FilterState struct {
	Tab   Category  `json:"tab"`
	Sort  SortOrder `json:"sort"`
	Query string    `json:"query"`
	Page  int       `json:"page"`
}

func DefaultFilterState() FilterState {
	return FilterState{Tab: CategoryAll}
}
