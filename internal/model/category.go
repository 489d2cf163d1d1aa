package model

type Category string

const (
	CategoryAll        Category = "all"
	CategoryCEO        Category = "ceo"
	CategoryCFO        Category = "cfo"
	CategoryPresident  Category = "pres"
	CategoryDirector   Category = "dir"
	CategoryTenPercent Category = "ten"
)

// Categories lists the tabs in display order.
var Categories = []Category{
	CategoryAll,
	CategoryCEO,
	CategoryCFO,
	CategoryPresident,
	CategoryDirector,
	CategoryTenPercent,
}

func (c Category) Label() string {
	switch c {
	case CategoryCEO:
		return "CEO"
	case CategoryCFO:
		return "CFO"
	case CategoryPresident:
		return "President"
	case CategoryDirector:
		return "Director"
	case CategoryTenPercent:
		return "10% Owner"
	default:
		return "All"
	}
}

func (c Category) Valid() bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}
