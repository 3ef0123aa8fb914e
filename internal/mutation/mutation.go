// Package mutation compiles create/update/delete requests for a typed node (and
// its typed, ordered relationships) into parameterized Cypher.
//
// Relationship assignments are numbered by their position in the classified
// payload (see params.Classify).  That number names the variables of the
// assignment (target_<i>, target_<i>_r, $target_<i>_id) and is stored as the
// order_num property of the created edge.  Positions are never renumbered: an
// assignment with no target id produces no match and no edge but its number is
// still used up, so gaps in the numbering are expected.
package mutation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dolmen-go/jsonmap"

	"github.com/andrewwphillips/castnet/internal/params"
	"github.com/andrewwphillips/castnet/internal/schema"
)

// Query is generated query text with the values of its parameters
type Query struct {
	Text   string
	Params map[string]interface{}
}

// Compiler compiles mutations for the labels of a schema.  It is safe for concurrent use.
type Compiler struct {
	Schema *schema.Schema
	// NewID returns the id of a node about to be created given its label and name
	NewID func(label, name string) string
}

const sourceIDParam = "source_id"

type mode int

const (
	create mode = iota
	update
)

// Create returns a query that creates a node of the label with the payload's attributes
// and relationships.  The id of the new node comes from NewID.
func (c Compiler) Create(label string, payload jsonmap.Ordered) (Query, error) {
	if c.NewID == nil {
		return Query{}, errors.New("mutation.Compiler has no NewID function")
	}
	return c.compile(label, "", payload, create)
}

// Update returns a query that sets the payload's attributes on an existing node and
// replaces all its relationships named in the payload.
func (c Compiler) Update(label, sourceID string, payload jsonmap.Ordered) (Query, error) {
	return c.compile(label, sourceID, payload, update)
}

func (c Compiler) compile(label, sourceID string, payload jsonmap.Ordered, m mode) (Query, error) {
	classified, err := params.Classify(c.Schema, label, payload)
	if err != nil {
		return Query{}, fmt.Errorf("%w compiling mutation of %s", err, label)
	}
	vars := make(map[string]interface{}, len(classified.Attrs.Order)+len(classified.Refs)+1)

	var sourceMatches, createSource, setSource []string
	switch m {
	case update:
		for _, key := range classified.Attrs.Order {
			vars[key] = classified.Attrs.Data[key]
			setSource = append(setSource, "source."+key+"=$"+key)
		}
		vars[sourceIDParam] = sourceID
		sourceMatches = append(sourceMatches, fmt.Sprintf("(source:%s {id: $%s})", label, sourceIDParam))

	case create:
		var name string
		if s, ok := classified.Attrs.Data["name"].(string); ok {
			name = s
		}
		b := &strings.Builder{}
		fmt.Fprintf(b, "(source:%s {id: $%s", label, sourceIDParam)
		for _, key := range classified.Attrs.Order {
			if key == "id" {
				continue // the generated id is used
			}
			vars[key] = classified.Attrs.Data[key]
			fmt.Fprintf(b, ", %s:$%s", key, key)
		}
		b.WriteString("})")
		createSource = append(createSource, b.String())
		vars[sourceIDParam] = c.NewID(label, name)
	}

	var (
		targetMatches, deleteMatches, deletes, createTargets []string
		deleted                                              = make(map[string]struct{})
	)
	for i, ref := range classified.Refs {
		targetVar := fmt.Sprintf("target_%d", i)

		// When updating, remove the old relationships - once per relationship name
		if m == update {
			if _, ok := deleted[ref.Rel]; !ok {
				deleteMatches = append(deleteMatches, fmt.Sprintf("OPTIONAL MATCH (source)-[%s_r:%s]-()", targetVar, ref.Rel))
				deletes = append(deletes, targetVar+"_r")
				deleted[ref.Rel] = struct{}{}
			}
		}

		if ref.ID == "" {
			continue // no target so no new relationship (but the index is used up)
		}
		vars[targetVar+"_id"] = ref.ID
		targetMatches = append(targetMatches, fmt.Sprintf("(%s:%s {id: $%s_id})", targetVar, ref.Target, targetVar))
		createTargets = append(createTargets, fmt.Sprintf("(source)-[:%s {order_num: %d}]->(%s)", ref.Rel, i, targetVar))
	}

	b := &strings.Builder{}
	block(b, "MATCH\n", sourceMatches, ",\n", "\n")
	block(b, "WITH source\n", deleteMatches, "\n", "\n")
	block(b, "DELETE\n", deletes, ",\n", "\nWITH DISTINCT source\n")
	block(b, "MATCH\n", targetMatches, ",\n", "\n")
	block(b, "CREATE\n", createSource, ",\n", "\n")
	block(b, "CREATE\n", createTargets, ",\n", "\n")
	block(b, "SET\n", setSource, ",\n", "\n")
	b.WriteString("RETURN\nsource")

	return Query{Text: b.String(), Params: vars}, nil
}

// block writes a clause (keyword, lines joined by sep, then tail) - nothing at all if there are no lines
func block(b *strings.Builder, keyword string, lines []string, sep, tail string) {
	if len(lines) == 0 {
		return
	}
	b.WriteString(keyword)
	b.WriteString(strings.Join(lines, sep))
	b.WriteString(tail)
}
