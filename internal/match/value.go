package match

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind identifies what a Value holds.
type Kind uint8

const (
	Missing Kind = iota // key absent or JSON null
	Number
	String
	Bool
	Date
)

// DateLayout is the text form of Date values.
const DateLayout = "2006-01-02"

// Value is a loosely typed scalar read from match JSON. The zero Value is
// Missing, which is distinct from 0 and "".
type Value struct {
	kind Kind
	num  float64
	str  string
	b    bool
	t    time.Time
}

func NumberValue(f float64) Value { return Value{kind: Number, num: f} }

func StringValue(s string) Value { return Value{kind: String, str: s} }

func BoolValue(b bool) Value { return Value{kind: Bool, b: b} }

// DateValue truncates t to its calendar date in UTC.
func DateValue(t time.Time) Value {
	y, m, d := t.Date()
	return Value{kind: Date, t: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

func (v Value) Kind() Kind      { return v.kind }
func (v Value) IsMissing() bool { return v.kind == Missing }

// Float returns the numeric value. Only Number values are numeric; numeric
// looking strings are not.
func (v Value) Float() (float64, bool) {
	if v.kind != Number {
		return 0, false
	}
	return v.num, true
}

// Str returns the value when it holds a String.
func (v Value) Str() (string, bool) {
	if v.kind != String {
		return "", false
	}
	return v.str, true
}

// Bool returns the value when it holds a Bool.
func (v Value) Bool() (bool, bool) {
	if v.kind != Bool {
		return false, false
	}
	return v.b, true
}

// Time returns the calendar date of a Date value.
func (v Value) Time() (time.Time, bool) {
	if v.kind != Date {
		return time.Time{}, false
	}
	return v.t, true
}

// Int coerces the value to an integer the way score fields are read:
// numbers truncate toward zero, strings are trimmed and parsed as base-10,
// booleans count as 1 or 0. Missing and Date values never coerce.
func (v Value) Int() (int, bool) {
	switch v.kind {
	case Number:
		f := math.Trunc(v.num)
		if math.IsNaN(f) || f >= math.MaxInt64 || f < math.MinInt64 {
			return 0, false
		}
		return int(f), true
	case String:
		n, err := strconv.Atoi(strings.TrimSpace(v.str))
		if err != nil {
			return 0, false
		}
		return n, true
	case Bool:
		if v.b {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// Text renders the value for display. Missing renders as "".
func (v Value) Text() string {
	switch v.kind {
	case Number:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case String:
		return v.str
	case Bool:
		return strconv.FormatBool(v.b)
	case Date:
		return v.t.Format(DateLayout)
	default:
		return ""
	}
}

// UnmarshalJSON accepts any JSON value. Objects and arrays are kept as
// their compact JSON text.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		*v = Value{}
		return nil
	}
	switch data[0] {
	case 'n':
		*v = Value{}
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*v = BoolValue(b)
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = StringValue(s)
	case '{', '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, data); err != nil {
			return err
		}
		*v = StringValue(buf.String())
	default:
		f, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			// out of float64 range: keep the literal
			*v = StringValue(string(data))
			return nil
		}
		*v = NumberValue(f)
	}
	return nil
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case Number:
		return json.Marshal(v.num)
	case String:
		return json.Marshal(v.str)
	case Bool:
		return json.Marshal(v.b)
	case Date:
		return json.Marshal(v.t.Format(DateLayout))
	default:
		return []byte("null"), nil
	}
}
