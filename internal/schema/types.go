package schema

// types.go has the casters - one per scalar attribute type - that convert incoming values

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Caster identifies how values of an attribute are converted before being bound as a query parameter
type Caster int

const (
	Text Caster = iota
	Integer
	Float
	Boolean
	Date
	DateTime
)

const dateLayout = "2006-01-02"

// Accepted datetime layouts.  Fractional seconds are accepted after the seconds field when
// parsing even though the layout does not include them.
var (
	awareLayouts = []string{
		"2006-01-02T15:04:05Z07:00",
		"2006-01-02 15:04:05Z07:00",
		"2006-01-02T15:04Z07:00",
		"2006-01-02 15:04Z07:00",
	}
	naiveLayouts = []string{
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04",
		"2006-01-02 15:04",
		"2006-01-02T15",
		dateLayout,
	}
)

// ParseCaster converts the name of a type used in a raw schema to a Caster
func ParseCaster(name string) (Caster, error) {
	switch strings.ToLower(name) {
	case "str", "string", "text":
		return Text, nil
	case "int", "integer":
		return Integer, nil
	case "float":
		return Float, nil
	case "bool", "boolean":
		return Boolean, nil
	case "date":
		return Date, nil
	case "datetime":
		return DateTime, nil
	}
	return Text, fmt.Errorf("unknown attribute type %q", name)
}

func (c Caster) String() string {
	switch c {
	case Text:
		return "string"
	case Integer:
		return "integer"
	case Float:
		return "float"
	case Boolean:
		return "boolean"
	case Date:
		return "date"
	case DateTime:
		return "datetime"
	}
	return "unknown"
}

// GraphQLType returns the name of the GraphQL scalar used to describe the attribute
func (c Caster) GraphQLType() string {
	switch c {
	case Integer:
		return "Int"
	case Float:
		return "Float"
	case Boolean:
		return "Boolean"
	case Date:
		return "Date"
	case DateTime:
		return "DateTime"
	}
	return "String"
}

// Temporal is true for the date and datetime casters (which only accept ISO-8601 text)
func (c Caster) Temporal() bool {
	return c == Date || c == DateTime
}

// Cast converts a (decoded JSON) value to the type of the attribute.
// Dates and datetimes are parsed as ISO-8601 and returned re-serialized as ISO-8601 text.
func (c Caster) Cast(v interface{}) (interface{}, error) {
	switch c {
	case Text:
		return toText(v), nil
	case Integer:
		return toInteger(v)
	case Float:
		return toFloat(v)
	case Boolean:
		return toBoolean(v)
	case Date:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("a date must be a string not %T", v)
		}
		t, err := time.Parse(dateLayout, strings.TrimSpace(s))
		if err != nil {
			return nil, err
		}
		return t.Format(dateLayout), nil
	case DateTime:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("a datetime must be a string not %T", v)
		}
		return ParseISODateTime(s)
	}
	return nil, fmt.Errorf("unknown caster %d", int(c))
}

// ParseISODateTime parses an ISO-8601 date or datetime (with or without an offset) and
// returns it normalized as YYYY-MM-DDTHH:MM:SS[.ffffff][+HH:MM].  The offset is only
// present in the result if one was given.
func ParseISODateTime(s string) (string, error) {
	s = strings.TrimSpace(s)
	for _, layout := range awareLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return FormatISO(t, true), nil
		}
	}
	var firstErr error
	for _, layout := range naiveLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return FormatISO(t, false), nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return "", firstErr
}

// FormatISO writes a time as ISO-8601 with microsecond precision (only if non-zero)
func FormatISO(t time.Time, withOffset bool) string {
	r := t.Format("2006-01-02T15:04:05")
	if micro := t.Nanosecond() / 1000; micro != 0 {
		r += fmt.Sprintf(".%06d", micro)
	}
	if withOffset {
		r += t.Format("-07:00")
	}
	return r
}

func toText(v interface{}) string {
	switch v := v.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(v)
	case json.Number:
		return v.String()
	}
	return fmt.Sprint(v)
}

func toInteger(v interface{}) (int64, error) {
	switch v := v.(type) {
	case string:
		return strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("cannot convert %v to an integer", v)
		}
		return int64(v), nil // truncates
	case float32:
		return toInteger(float64(v))
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i, nil
		}
		f, err := v.Float64()
		if err != nil {
			return 0, err
		}
		return toInteger(f)
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	case int:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case uint:
		return int64(v), nil
	case uint8:
		return int64(v), nil
	case uint16:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case uint64:
		if v > math.MaxInt64 {
			return 0, fmt.Errorf("%d overflows a 64-bit integer", v)
		}
		return int64(v), nil
	}
	return 0, fmt.Errorf("cannot convert %T to an integer", v)
}

func toFloat(v interface{}) (float64, error) {
	switch v := v.(type) {
	case string:
		return strconv.ParseFloat(strings.TrimSpace(v), 64)
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case json.Number:
		return v.Float64()
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	}
	if i, err := toInteger(v); err == nil {
		return float64(i), nil
	}
	return 0, fmt.Errorf("cannot convert %T to a float", v)
}

func toBoolean(v interface{}) (bool, error) {
	switch v := v.(type) {
	case bool:
		return v, nil
	case string:
		return strconv.ParseBool(strings.TrimSpace(v))
	}
	f, err := toFloat(v)
	if err != nil {
		return false, fmt.Errorf("cannot convert %T to a boolean", v)
	}
	return f != 0, nil
}
