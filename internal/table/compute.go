package table

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Ellipsis marks a gap in the page strip returned by PageNumbers.
const Ellipsis = 0

// Filter keeps rows where any column's value contains term, ignoring case.
// Columns with a Render func also match on the text they display. A missing
// value never matches for its column.
func Filter(columns []Column, rows []Row, term string) []Row {
	if term == "" {
		return rows
	}
	needle := strings.ToLower(term)
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if rowMatches(columns, r, needle) {
			out = append(out, r)
		}
	}
	return out
}

func rowMatches(columns []Column, r Row, needle string) bool {
	for _, c := range columns {
		v, ok := c.Accessor.Value(r)
		if !ok {
			continue
		}
		if strings.Contains(strings.ToLower(Stringify(v)), needle) {
			return true
		}
		if c.Render != nil && strings.Contains(strings.ToLower(c.Render(r)), needle) {
			return true
		}
	}
	return false
}

// SortRows returns a sorted copy of rows. Missing values sort last in both
// directions; the rest compare case-insensitively with locale collation.
func SortRows(columns []Column, rows []Row, s Sort) []Row {
	out := slices.Clone(rows)
	if !s.Active || s.Column < 0 || s.Column >= len(columns) {
		return out
	}
	acc := columns[s.Column].Accessor
	if acc.IsZero() {
		return out
	}
	coll := collate.New(language.Und, collate.IgnoreCase)
	slices.SortStableFunc(out, func(a, b Row) int {
		av, aok := acc.Value(a)
		bv, bok := acc.Value(b)
		switch {
		case !aok && !bok:
			return 0
		case !aok:
			return 1
		case !bok:
			return -1
		}
		cmp := coll.CompareString(strings.ToLower(Stringify(av)), strings.ToLower(Stringify(bv)))
		if s.Direction == Descending {
			return -cmp
		}
		return cmp
	})
	return out
}

// TotalPages is ceil(count/pageSize), never less than one.
func TotalPages(count, pageSize int) int {
	if pageSize <= 0 || count <= 0 {
		return 1
	}
	return (count + pageSize - 1) / pageSize
}

// PageNumbers returns the page strip for current out of total pages.
// Ellipsis entries mark elided ranges.
func PageNumbers(total, current int) []int {
	if total <= 7 {
		pages := make([]int, total)
		for i := range pages {
			pages[i] = i + 1
		}
		return pages
	}
	switch {
	case current <= 4:
		return []int{1, 2, 3, 4, 5, Ellipsis, total}
	case current >= total-3:
		return []int{1, Ellipsis, total - 4, total - 3, total - 2, total - 1, total}
	default:
		return []int{1, Ellipsis, current - 1, current, current + 1, Ellipsis, total}
	}
}

// View is the visible slice of a table after filtering, sorting and paging.
type View struct {
	Rows       []Row
	Total      int
	TotalPages int
	Page       int
	// Start and End are 1-based and inclusive; both are zero when Total is zero.
	Start int
	End   int
	Strip []int
}

// Empty reports whether the filtered result has no rows.
func (v View) Empty() bool {
	return v.Total == 0
}

// Summary renders the pagination caption.
func (v View) Summary() string {
	return fmt.Sprintf("Showing %d to %d of %d entries", v.Start, v.End, v.Total)
}

// Compute applies st to rows. st.Page is clamped on the way through, the
// caller's State is left untouched.
func Compute(columns []Column, rows []Row, st State) View {
	filtered := Filter(columns, rows, st.Search)
	sorted := SortRows(columns, filtered, st.Sort)

	st.Clamp(len(sorted))
	total := len(sorted)
	pages := TotalPages(total, st.PageSize)

	v := View{
		Total:      total,
		TotalPages: pages,
		Page:       st.Page,
		Strip:      PageNumbers(pages, st.Page),
	}
	if total == 0 {
		return v
	}
	lo := (st.Page - 1) * st.PageSize
	hi := min(lo+st.PageSize, total)
	v.Rows = sorted[lo:hi]
	v.Start = lo + 1
	v.End = hi
	return v
}
