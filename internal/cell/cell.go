// Package cell normalizes the loosely typed metric values returned by the
// Sampark API into a small tagged value that the rest of the dashboard can
// sort, classify and export without re-inspecting the raw field.
package cell

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	KindEmpty Kind = iota
	KindNumeric
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindText:
		return "text"
	default:
		return "empty"
	}
}

// sentinel the API uses for "no data".
const notAvailable = "NA"

// Value is a normalized cell. The zero Value is Empty.
type Value struct {
	kind Kind
	num  float64
	text string
}

// Empty returns the empty cell.
func Empty() Value { return Value{} }

// Number returns a numeric cell. Non-finite input becomes Text.
func Number(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{kind: KindText, text: formatNonFinite(f)}
	}
	return Value{kind: KindNumeric, num: f}
}

// Text returns a text cell without attempting numeric parsing.
func Text(s string) Value {
	return Value{kind: KindText, text: s}
}

// Normalize maps any raw field value onto exactly one Value variant.
// It never panics and Normalize(Normalize(v)) == Normalize(v).
func Normalize(raw any) Value {
	switch v := raw.(type) {
	case nil:
		return Value{}
	case Value:
		return v
	case *Value:
		if v == nil {
			return Value{}
		}
		return *v
	case string:
		return fromString(v)
	case *string:
		if v == nil {
			return Value{}
		}
		return fromString(*v)
	case json.Number:
		return fromString(string(v))
	case float64:
		return Number(v)
	case float32:
		return Number(float64(v))
	case int:
		return Number(float64(v))
	case int8:
		return Number(float64(v))
	case int16:
		return Number(float64(v))
	case int32:
		return Number(float64(v))
	case int64:
		return Number(float64(v))
	case uint:
		return Number(float64(v))
	case uint8:
		return Number(float64(v))
	case uint16:
		return Number(float64(v))
	case uint32:
		return Number(float64(v))
	case uint64:
		return Number(float64(v))
	case fmt.Stringer:
		return Text(v.String())
	default:
		return Text(fmt.Sprint(v))
	}
}

func fromString(s string) Value {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" || trimmed == notAvailable {
		return Value{}
	}
	f, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{kind: KindText, text: s}
	}
	// keep the original spelling ("12.50") for display
	return Value{kind: KindNumeric, num: f, text: trimmed}
}

func formatNonFinite(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	default:
		return "-Infinity"
	}
}

// Kind reports the variant.
func (v Value) Kind() Kind { return v.kind }

// IsEmpty reports whether the cell holds no data.
func (v Value) IsEmpty() bool { return v.kind == KindEmpty }

// Float returns the numeric value and whether the cell is numeric.
func (v Value) Float() (float64, bool) {
	if v.kind != KindNumeric {
		return 0, false
	}
	return v.num, true
}

// String is the display form: "NA" for empty cells.
func (v Value) String() string {
	if v.kind == KindEmpty {
		return notAvailable
	}
	return v.Export()
}

// Export is the CSV form: empty cells export as "".
func (v Value) Export() string {
	switch v.kind {
	case KindNumeric:
		if v.text != "" {
			return v.text
		}
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindText:
		return v.text
	default:
		return ""
	}
}

// Equal compares two cells variant-wise. Numeric cells compare by value
// regardless of their original spelling.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNumeric:
		return v.num == o.num
	case KindText:
		return v.text == o.text
	default:
		return true
	}
}

// UnmarshalJSON normalizes the raw JSON token at decode time.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		*v = Text(string(data))
		return nil
	}
	switch r := raw.(type) {
	case map[string]any, []any:
		*v = Text(string(data))
	case bool:
		*v = Text(strconv.FormatBool(r))
	default:
		*v = Normalize(r)
	}
	return nil
}

// MarshalJSON writes null, a JSON number, or a JSON string.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNumeric:
		return []byte(strconv.FormatFloat(v.num, 'f', -1, 64)), nil
	case KindText:
		return json.Marshal(v.text)
	default:
		return []byte("null"), nil
	}
}
