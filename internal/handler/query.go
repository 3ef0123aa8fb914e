package handler

// query.go handles the selection-language (read) endpoint

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dolmen-go/jsonmap"

	"github.com/andrewwphillips/castnet/internal/codegen"
)

type (
	// gqlRequest is decoded from the http request body (JSON)
	gqlRequest struct {
		Query     string
		Variables map[string]interface{}
	}

	// gqlResult contains the result of the request to be encoded in JSON
	gqlResult struct {
		Data jsonmap.Ordered `json:"data"`
	}
)

// query compiles the selection, runs it and returns the columns of its result row in
// the order of the top level fields
func (h *Handler) query(r *http.Request) (interface{}, *failure) {
	var g gqlRequest
	decoder := json.NewDecoder(r.Body)
	decoder.UseNumber() // allows us to distinguish ints from floats (see FixNumberVariables() below)
	if err := decoder.Decode(&g); err != nil {
		return nil, &failure{http.StatusBadRequest, fmt.Errorf("error decoding JSON request: %w", err)}
	}
	if g.Variables == nil {
		g.Variables = map[string]interface{}{}
	}
	if err := FixNumberVariables(g.Variables); err != nil {
		return nil, &failure{http.StatusBadRequest, err}
	}

	text, err := codegen.Compile(h.schema, g.Query)
	if err != nil {
		return nil, h.refuse(err)
	}
	rows, err := h.read(r.Context(), text, g.Variables)
	if err != nil {
		return nil, h.storeFailed(err)
	}

	result := gqlResult{Data: jsonmap.Ordered{Data: map[string]interface{}{}}}
	if len(rows) > 0 {
		result.Data = rows[0]
	}
	return result, nil
}

// FixNumberVariables goes through the structure created by the JSON decoder, converting any json.Number values to
// either an int64 or a float64.  This assumes that all the JSON numbers were decoded into a json.Number type, rather
// than int/float, by use of the json.Decode.UseNumber() method.
func FixNumberVariables(m map[string]interface{}) error {
	for key, val := range m {
		v, err := fixNumber(val)
		if err != nil {
			return fmt.Errorf("%w (variable %q)", err, key)
		}
		m[key] = v
	}
	return nil
}

func fixNumber(val interface{}) (interface{}, error) {
	switch v := val.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i, nil
		}
		f, err := v.Float64()
		if err != nil {
			return nil, fmt.Errorf("JSON number %s is out of range", v)
		}
		return f, nil

	case map[string]interface{}:
		return v, FixNumberVariables(v) // recursively handle nested numbers

	case []interface{}:
		for i := range v {
			elt, err := fixNumber(v[i])
			if err != nil {
				return nil, err
			}
			v[i] = elt
		}
	}
	return val, nil
}
