package shared

// Filter narrows a listing query. Filters holds column equality or date
// bounds understood by the repository; unknown keys are ignored.
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
	Filters  map[string]any
}

// Paged reports whether the filter selects a single page
func (f Filter) Paged() bool {
	return f.Page > 0 && f.PageSize > 0
}

// Offset is the number of rows skipped before the selected page
func (f Filter) Offset() int {
	if !f.Paged() {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}
