package handover

import (
	"strconv"
	"strings"
)

// Kind identifies the type of a worksheet cell value.
type Kind int

const (
	Empty Kind = iota
	String
	Number
	Bool
)

// Value is a worksheet cell value tagged with its type. The zero Value is Empty.
type Value struct {
	kind Kind
	s    string
	n    float64
	b    bool
}

func StringValue(s string) Value {
	return Value{kind: String, s: s}
}

func NumberValue(n float64) Value {
	return Value{kind: Number, n: n}
}

func BoolValue(b bool) Value {
	return Value{kind: Bool, b: b}
}

func (v Value) Kind() Kind {
	return v.kind
}

func (v Value) IsEmpty() bool {
	return v.kind == Empty
}

// Text returns the natural textual form of the value. Numbers are formatted
// in the shortest form that round trips (42, 4.5), booleans as TRUE/FALSE and
// empty cells as "".
func (v Value) Text() string {
	switch v.kind {
	case String:
		return v.s

	case Number:
		return strconv.FormatFloat(v.n, 'f', -1, 64)

	case Bool:
		if v.b {
			return "TRUE"
		}
		return "FALSE"

	default:
		return ""
	}
}

func (v Value) String() string {
	return v.Text()
}

// Normalise stringifies and trims a cell value. It is the only conversion
// applied to cell contents before they are queued.
func Normalise(v Value) string {
	return clean(v.Text())
}

func clean(v string) string {
	return strings.TrimSpace(v)
}
