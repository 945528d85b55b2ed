package table

import (
	"fmt"
	"strconv"
	"time"
)

// EmptyText is shown in place of rows when nothing matches.
const EmptyText = "No data found"

// PageSizes lists the page sizes offered to the user.
var PageSizes = []int{5, 10, 25, 50, 100}

// DefaultPageSize is used when no page size has been chosen.
const DefaultPageSize = 10

// Row is a schemaless record. Columns decide how to read it.
type Row map[string]any

// Accessor extracts a value from a row, either by field name or by a
// derivation function. The zero Accessor reads nothing.
type Accessor struct {
	field string
	fn    func(Row) any
}

// ByField reads the named field from the row.
func ByField(name string) Accessor {
	return Accessor{field: name}
}

// ByFunc derives a value from the whole row.
func ByFunc(fn func(Row) any) Accessor {
	return Accessor{fn: fn}
}

// IsZero reports whether the accessor reads nothing.
func (a Accessor) IsZero() bool {
	return a.field == "" && a.fn == nil
}

// Field returns the field name for ByField accessors.
func (a Accessor) Field() string {
	return a.field
}

// Value resolves the accessor against r. The second result is false when
// the value is missing or nil.
func (a Accessor) Value(r Row) (any, bool) {
	var v any
	switch {
	case a.fn != nil:
		v = a.fn(r)
	case a.field != "":
		v = r[a.field]
	default:
		return nil, false
	}
	if v == nil {
		return nil, false
	}
	return v, true
}

// Column describes how one column reads, labels and renders its cells.
type Column struct {
	Label    string
	Accessor Accessor
	Sortable bool
	// Render formats the cell; when nil the accessed value is stringified.
	Render func(Row) string
	// Width is a display hint in cells; zero lets the renderer decide.
	Width int
}

// CanSort reports whether clicking the column header changes the sort.
func (c Column) CanSort() bool {
	return c.Sortable && !c.Accessor.IsZero()
}

// Cell returns the display text for the column in row r.
func (c Column) Cell(r Row) string {
	if c.Render != nil {
		return c.Render(r)
	}
	v, ok := c.Accessor.Value(r)
	if !ok {
		return ""
	}
	return Stringify(v)
}

// Stringify renders a row value the way it is searched and compared.
func Stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case time.Time:
		if val.IsZero() {
			return ""
		}
		return val.Format(time.RFC3339)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
