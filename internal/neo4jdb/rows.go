package neo4jdb

// rows.go converts driver records into plain values that can be encoded as JSON

import (
	"sort"
	"time"

	"github.com/dolmen-go/jsonmap"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Rows converts records to ordered maps keyed (in order) by the record's keys
func Rows(records []*neo4j.Record) []jsonmap.Ordered {
	r := make([]jsonmap.Ordered, 0, len(records))
	for _, rec := range records {
		row := jsonmap.Ordered{
			Data:  make(map[string]interface{}, len(rec.Keys)),
			Order: append([]string(nil), rec.Keys...),
		}
		for i, key := range rec.Keys {
			row.Data[key] = Value(rec.Values[i])
		}
		r = append(r, row)
	}
	return r
}

// Value converts a value returned by the driver: nodes and relationships become their
// properties, temporal values become ISO text, and lists and maps are converted recursively.
// Map keys are sorted since the driver does not preserve their order.
func Value(v interface{}) interface{} {
	switch v := v.(type) {
	case neo4j.Node:
		return Value(v.Props)
	case neo4j.Relationship:
		return Value(v.Props)
	case neo4j.Path:
		nodes := make([]interface{}, 0, len(v.Nodes))
		for _, n := range v.Nodes {
			nodes = append(nodes, Value(n))
		}
		return nodes
	case neo4j.Date:
		return v.Time().Format("2006-01-02")
	case neo4j.LocalDateTime:
		return v.Time().Format("2006-01-02T15:04:05.999999999")
	case time.Time:
		return v.Format(time.RFC3339Nano)
	case []interface{}:
		r := make([]interface{}, 0, len(v))
		for _, elt := range v {
			r = append(r, Value(elt))
		}
		return r
	case map[string]interface{}:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		r := jsonmap.Ordered{Data: make(map[string]interface{}, len(v)), Order: keys}
		for k, elt := range v {
			r.Data[k] = Value(elt)
		}
		return r
	}
	return v
}
