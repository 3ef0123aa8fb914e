// Package params splits a mutation payload into cast attribute values and an
// ordered list of relationship target references.
package params

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/dolmen-go/jsonmap"

	"github.com/andrewwphillips/castnet/internal/errs"
	"github.com/andrewwphillips/castnet/internal/schema"
)

type (
	// Ref is one relationship assignment.  An empty ID means "no target" - for a single
	// valued relationship it clears the relationship, for a multi-valued one it is the
	// marker added for an empty list.
	Ref struct {
		Rel    string
		ID     string
		Target string // label the relationship points at
	}

	// Classified is the result of Classify
	Classified struct {
		Refs  []Ref           // in payload key order, then list order within a key
		Attrs jsonmap.Ordered // cast values in payload key order (nil for empty values)
	}
)

// Classify checks each key of the payload against the label's declared attributes and
// relationships.  Attribute values are cast (see schema.Caster) and relationship values
// are flattened into Refs.  The order of Refs is significant: the index of each Ref is
// used as its order_num when the relationships are created.
func Classify(s *schema.Schema, label string, payload jsonmap.Ordered) (Classified, error) {
	l, ok := s.Label(label)
	if !ok {
		return Classified{}, errs.New(errs.Mismatch, "label %q not found in schema", label)
	}

	r := Classified{
		Attrs: jsonmap.Ordered{
			Data:  make(map[string]interface{}, len(payload.Order)),
			Order: make([]string, 0, len(payload.Order)),
		},
	}
	for _, key := range payload.Order {
		value := payload.Data[key]
		if caster, ok := l.Attribute(key); ok {
			v, err := castAttribute(key, caster, value)
			if err != nil {
				return Classified{}, err
			}
			r.Attrs.Order = append(r.Attrs.Order, key)
			r.Attrs.Data[key] = v
			continue
		}

		rel, ok := l.Relationship(key)
		if !ok {
			return Classified{}, errs.New(errs.Mismatch, "couldn't find %s in attributes or relations for %s", key, label)
		}
		if !rel.Many {
			id, err := targetID(key, value)
			if err != nil {
				return Classified{}, err
			}
			r.Refs = append(r.Refs, Ref{Rel: key, ID: id, Target: rel.Target})
			continue
		}

		list, err := targetList(key, value)
		if err != nil {
			return Classified{}, err
		}
		if len(list) == 0 {
			r.Refs = append(r.Refs, Ref{Rel: key, Target: rel.Target}) // keeps the delete step
		}
		for _, elt := range list {
			id, err := targetID(key, elt)
			if err != nil {
				return Classified{}, err
			}
			r.Refs = append(r.Refs, Ref{Rel: key, ID: id, Target: rel.Target})
		}
	}
	return r, nil
}

func castAttribute(key string, caster schema.Caster, value interface{}) (interface{}, error) {
	if IsEmpty(value) {
		return nil, nil
	}
	v, err := caster.Cast(value)
	if err != nil {
		if caster.Temporal() {
			return nil, errs.Wrap(errs.Validation, err, "for attribute %q, '%v' is not suitable, must be YYYY-MM-DD", key, value)
		}
		return nil, errs.Wrap(errs.Validation, err, "for attribute %q, '%v' is not suitable, must be convertible to %s",
			key, value, caster)
	}
	return v, nil
}

// targetID returns the id of a relationship target (an empty string for no target)
func targetID(key string, value interface{}) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case float64, int, int64:
		return fmt.Sprint(v), nil
	case []interface{}:
		if len(v) == 0 {
			return "", nil
		}
	}
	return "", errs.New(errs.Validation, "relationship %s expects a single id, not %T", key, value)
}

func targetList(key string, value interface{}) ([]interface{}, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []interface{}:
		return v, nil
	case []string:
		r := make([]interface{}, len(v))
		for i, s := range v {
			r[i] = s
		}
		return r, nil
	}
	return nil, errs.New(errs.Validation, "relationship %s expects a list of ids, not %T", key, value)
}

// IsEmpty reports whether a value counts as "no value": nil, false, zero, or an empty string, list or map
func IsEmpty(value interface{}) bool {
	if value == nil {
		return true
	}
	if n, ok := value.(json.Number); ok {
		f, err := n.Float64()
		return err == nil && f == 0
	}
	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.String, reflect.Slice, reflect.Map, reflect.Array:
		return v.Len() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Ptr, reflect.Interface:
		return v.IsNil()
	}
	return false
}
