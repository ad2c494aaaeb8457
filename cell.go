package smartspread

import (
	"fmt"
	"strconv"
	"strings"
)

// CellKind identifies the scalar type held by a Cell.
type CellKind int

const (
	KindNull CellKind = iota
	KindInt
	KindFloat
	KindBool
	KindString
)

// Cell is a nullable typed scalar, the unit of the canonical tabular
// representation. The Google Sheets API traffics in [][]interface{}; that
// representation is confined to the API boundary and every value is wrapped
// into a Cell as soon as it crosses it. A null Cell is the single canonical
// missing value - empty strings read from a tab are normalized to null on
// entry.
type Cell struct {
	kind CellKind
	i    int64
	f    float64
	b    bool
	s    string
}

// NullCell returns the missing-value cell.
func NullCell() Cell {
	return Cell{kind: KindNull}
}

// IntCell returns a cell holding an integer.
func IntCell(v int64) Cell {
	return Cell{kind: KindInt, i: v}
}

// FloatCell returns a cell holding a floating-point number.
func FloatCell(v float64) Cell {
	return Cell{kind: KindFloat, f: v}
}

// BoolCell returns a cell holding a boolean.
func BoolCell(v bool) Cell {
	return Cell{kind: KindBool, b: v}
}

// StringCell returns a cell holding text.
func StringCell(v string) Cell {
	return Cell{kind: KindString, s: v}
}

// NewCell wraps a raw value from the Google Sheets API (or from a caller
// supplied row-list/record-list) in a Cell. nil and the empty string both
// become the null cell.
func NewCell(raw interface{}) Cell {
	switch v := raw.(type) {
	case nil:
		return NullCell()
	case Cell:
		return v
	case string:
		if v == "" {
			return NullCell()
		}
		return StringCell(v)
	case bool:
		return BoolCell(v)
	case int:
		return IntCell(int64(v))
	case int32:
		return IntCell(int64(v))
	case int64:
		return IntCell(v)
	case float32:
		return FloatCell(float64(v))
	case float64:
		return FloatCell(v)
	default:
		return StringCell(fmt.Sprintf("%v", v))
	}
}

// Kind returns the cell's scalar kind.
func (c Cell) Kind() CellKind {
	return c.kind
}

// IsNull reports whether the cell holds no value.
func (c Cell) IsNull() bool {
	return c.kind == KindNull
}

// String renders the cell as text. Null renders as the empty string, which
// is also the wire representation of a missing cell.
func (c Cell) String() string {
	switch c.kind {
	case KindInt:
		return strconv.FormatInt(c.i, 10)
	case KindFloat:
		return strconv.FormatFloat(c.f, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(c.b)
	case KindString:
		return c.s
	default:
		return ""
	}
}

// Value returns the cell as a plain Go value suitable for generic
// serialization: nil for null, int64, float64, bool or string otherwise.
// No library-specific missing sentinel ever escapes through here.
func (c Cell) Value() interface{} {
	switch c.kind {
	case KindInt:
		return c.i
	case KindFloat:
		return c.f
	case KindBool:
		return c.b
	case KindString:
		return c.s
	default:
		return nil
	}
}

// numeric returns the cell's numeric interpretation. String cells parse via
// strconv so that raw text grids can be type-inferred column by column.
func (c Cell) numeric() (float64, bool) {
	switch c.kind {
	case KindInt:
		return float64(c.i), true
	case KindFloat:
		return c.f, true
	case KindString:
		f, err := strconv.ParseFloat(strings.TrimSpace(c.s), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Equal reports value equality between two cells. Null only equals null.
// Int and Float compare numerically across kinds; text and booleans compare
// within their own kind only, so the string "2" does not equal the number 2.
func (c Cell) Equal(o Cell) bool {
	if c.kind == KindNull || o.kind == KindNull {
		return c.kind == KindNull && o.kind == KindNull
	}
	if isNumericKind(c.kind) && isNumericKind(o.kind) {
		cf, _ := c.numeric()
		of, _ := o.numeric()
		return cf == of
	}
	if c.kind != o.kind {
		return false
	}
	switch c.kind {
	case KindBool:
		return c.b == o.b
	default:
		return c.s == o.s
	}
}

func isNumericKind(k CellKind) bool {
	return k == KindInt || k == KindFloat
}
