package pagination

// Meta contains metadata about a paginated result.
type Meta struct {
	CurrentPage int  `json:"current_page" yaml:"current_page"`
	PageSize    int  `json:"page_size"    yaml:"page_size"`
	TotalPages  int  `json:"total_pages"  yaml:"total_pages"`
	TotalItems  int  `json:"total_items"  yaml:"total_items"`
	HasPrevious bool `json:"has_previous" yaml:"has_previous"`
	HasNext     bool `json:"has_next"     yaml:"has_next"`
}

// NewMeta builds metadata for page current of a list of totalCount items.
// current is clamped into range.
func NewMeta(p Paginator, current, totalCount int) Meta {
	totalPages := p.TotalPages(totalCount)
	current = Clamp(current, totalPages)

	return Meta{
		CurrentPage: current,
		PageSize:    p.Size(),
		TotalPages:  totalPages,
		TotalItems:  totalCount,
		HasPrevious: current > MinPage,
		HasNext:     current < totalPages,
	}
}
