package expr

import (
	"strconv"

	"github.com/zclconf/go-cty/cty"
)

// Number wraps a float as a cty number.
func Number(f float64) cty.Value {
	return cty.NumberFloatVal(f)
}

// String wraps a literal as a cty string.
func String(s string) cty.Value {
	return cty.StringVal(s)
}

// IsNumber reports whether v is a known, non-null number.
func IsNumber(v cty.Value) bool {
	return v.IsKnown() && !v.IsNull() && v.Type() == cty.Number
}

// Render formats a value the way it is handed to subprocesses and stored.
// Whole numbers have no decimal point; other numbers use the shortest
// decimal form that round-trips.
func Render(v cty.Value) string {
	if !v.IsKnown() || v.IsNull() {
		return ""
	}
	switch v.Type() {
	case cty.Number:
		bf := v.AsBigFloat()
		if bf.IsInt() {
			return bf.Text('f', 0)
		}
		f, _ := bf.Float64()
		return strconv.FormatFloat(f, 'f', -1, 64)
	case cty.String:
		return v.AsString()
	default:
		return v.GoString()
	}
}

func asFloat(v cty.Value) float64 {
	f, _ := v.AsBigFloat().Float64()
	return f
}
