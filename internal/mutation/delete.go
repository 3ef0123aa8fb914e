package mutation

// delete.go has the (soft) delete template and the checks made before a node is deleted or created

import (
	"fmt"
	"strings"

	"github.com/andrewwphillips/castnet/internal/schema"
)

// ArchivedPrefix is prepended to the label of a node when it is deleted
const ArchivedPrefix = "_archived_"

// Delete returns a query that archives a node: its label is replaced by the archived
// label so that it no longer matches but is not destroyed.
func Delete(label, sourceID string) Query {
	return Query{
		Text: fmt.Sprintf("MATCH\n(source:%s {id: $%s})\nREMOVE source:%s\nSET source:%s%s\nRETURN\nsource",
			label, sourceIDParam, label, ArchivedPrefix, label),
		Params: map[string]interface{}{sourceIDParam: sourceID},
	}
}

// Dependencies returns a query that finds the nodes that are IS_IN a node of the label
// (bound as $id), with all dependents returned as "deps".  An empty string is returned
// if no label can be IS_IN the label.
//
// Deletion should be refused if this query returns any rows.  Note that the check is
// not atomic with the delete: a dependent created between the two is not detected.
// Callers that need atomicity must run both in one transaction or hold a lock.
func (c Compiler) Dependencies(label string) string {
	deps := c.Schema.Dependents(label)
	if len(deps) == 0 {
		return ""
	}
	queries := make([]string, 0, len(deps))
	for i, dep := range deps {
		queries = append(queries, fmt.Sprintf("MATCH (main:%s{id: $id})<-[:IS_IN]-(d%d:%s)\nRETURN d%d as deps",
			label, i+1, dep, i+1))
	}
	return strings.Join(queries, "\nUNION ALL\n")
}

// ParentCheck returns a query that matches the node (bound as $id) of the parent label,
// returned as "a", with each of its children of the label as "b".  No rows means there
// is no such parent.
func ParentCheck(label, parent string) string {
	return fmt.Sprintf("MATCH (a:%s {id: $id}) OPTIONAL MATCH (a)-[:%s]-(b:%s) RETURN a, b",
		parent, schema.ParentRelationship, label)
}

// NameCheck returns a query that finds nodes of the label with the name bound as $name
func NameCheck(label string) string {
	return fmt.Sprintf("MATCH (a:%s {name: $name}) RETURN a", label)
}
