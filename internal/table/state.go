package table

// Direction is the sort order of the active column.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// Sort identifies the active sort column by its position in the column list.
// The zero value means unsorted.
type Sort struct {
	Active    bool
	Column    int
	Direction Direction
}

// State is the interactive state of one table: search term, sort and page.
type State struct {
	Search   string
	Sort     Sort
	PageSize int
	Page     int
}

// NewState returns a State on page 1 with the given page size.
func NewState(pageSize int) State {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return State{PageSize: pageSize, Page: 1}
}

// SetSearch replaces the search term and returns to the first page.
func (s *State) SetSearch(term string) {
	s.Search = term
	s.Page = 1
}

// ToggleSort applies a header click on column index. The first click sorts
// ascending, a second click on the same column flips to descending, and a
// click on another column starts ascending there. Clicks on columns that
// cannot sort are ignored and reported as false.
func (s *State) ToggleSort(columns []Column, index int) bool {
	if index < 0 || index >= len(columns) || !columns[index].CanSort() {
		return false
	}
	dir := Ascending
	if s.Sort.Active && s.Sort.Column == index && s.Sort.Direction == Ascending {
		dir = Descending
	}
	s.Sort = Sort{Active: true, Column: index, Direction: dir}
	return true
}

// ClearSort drops the active sort.
func (s *State) ClearSort() {
	s.Sort = Sort{}
}

// SetPageSize changes the page size and returns to the first page.
func (s *State) SetPageSize(size int) {
	if size <= 0 {
		size = DefaultPageSize
	}
	s.PageSize = size
	s.Page = 1
}

// NextPageSize cycles through PageSizes.
func (s *State) NextPageSize() {
	for i, size := range PageSizes {
		if size == s.PageSize {
			s.SetPageSize(PageSizes[(i+1)%len(PageSizes)])
			return
		}
	}
	s.SetPageSize(DefaultPageSize)
}

// SetPage moves to page p, clamped into the range valid for count rows.
func (s *State) SetPage(p, count int) {
	s.Page = p
	s.Clamp(count)
}

// Clamp keeps Page within [1, TotalPages(count, PageSize)].
func (s *State) Clamp(count int) {
	if s.PageSize <= 0 {
		s.PageSize = DefaultPageSize
	}
	total := TotalPages(count, s.PageSize)
	if s.Page > total {
		s.Page = total
	}
	if s.Page < 1 {
		s.Page = 1
	}
}
