// Package codegen lowers a selection tree into a read query.  Every top level node
// becomes an isolated CALL sub-query and every nested node a CALL within its
// parent's, each ending in a COLLECT of a map of the selected fields.  The result
// of the whole query is one row with a column for each top level node.
package codegen

import (
	"fmt"
	"strings"

	"github.com/andrewwphillips/castnet/internal/errs"
	"github.com/andrewwphillips/castnet/internal/schema"
	"github.com/andrewwphillips/castnet/internal/selection"
)

const (
	rootVar   = "a"
	childSfx  = "_1" // appended to the parent's variable to name a node's matches
	elemSfx   = "_s" // appended to a node's variable for one (unwound) match
	queryWord = "query"
)

// StripQuery removes a leading "query(...) {" (or just "{") and the matching final "}"
func StripQuery(text string) string {
	text = strings.Trim(text, "\n\t ")
	if strings.HasPrefix(text, "{") || strings.HasPrefix(text, queryWord) {
		open, close := strings.Index(text, "{"), strings.LastIndex(text, "}")
		if open != -1 && close > open {
			return text[open+1 : close]
		}
	}
	return text
}

// Compile parses selection text and returns the equivalent query
func Compile(s *schema.Schema, text string) (string, error) {
	nodes, err := selection.Build(s, StripQuery(text))
	if err != nil {
		return "", err
	}
	if len(nodes) == 0 {
		return "", errs.New(errs.Syntax, "nothing selected in %q", text)
	}
	return Lower(nodes), nil
}

// Lower generates the query for the top level nodes of a selection
func Lower(nodes []*selection.Node) string {
	b := &strings.Builder{}
	names := make([]string, 0, len(nodes))
	for _, n := range nodes {
		names = append(names, n.Name)
		b.WriteString("CALL {\n")
		lower(b, n, rootVar)
		b.WriteString("\n}\n")
	}
	b.WriteString("RETURN ")
	b.WriteString(strings.Join(names, ","))
	return b.String()
}

// lower writes the sub-query for one node where parent is the variable of the enclosing node
func lower(b *strings.Builder, n *selection.Node, parent string) {
	v := parent + childSfx
	fmt.Fprintf(b, "MATCH (%s:%s", v, n.Label)
	if len(n.Condition) >= 2 {
		b.WriteString(" {" + n.Condition[1:len(n.Condition)-1] + "}")
	}
	b.WriteString(")")

	switch n.Dir {
	case schema.In:
		fmt.Fprintf(b, "-[r:%s]->(%s%s)", n.Rel, parent, elemSfx)
	case schema.Out:
		fmt.Fprintf(b, "<-[r:%s]-(%s%s)", n.Rel, parent, elemSfx)
	}
	fmt.Fprintf(b, "\nUNWIND %s as %s%s", v, v, elemSfx)

	var entries []string
	for _, f := range n.Fields {
		if f.Node == nil {
			entries = append(entries, fmt.Sprintf("%s: %s.%s", f.Name, v, f.Attr))
		}
	}
	for _, child := range n.Nested() {
		fmt.Fprintf(b, "\nCALL {\nWITH %s%s\n", v, elemSfx)
		lower(b, child, v)
		b.WriteString("\n}")
		entries = append(entries, child.Name+": "+child.Name)
	}
	fmt.Fprintf(b, "\nRETURN COLLECT({%s}) as %s", strings.Join(entries, ","), n.Name)
}
