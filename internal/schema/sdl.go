package schema

// sdl.go generates a GraphQL schema document (SDL) describing what the selection language can query

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/andrewwphillips/castnet/internal/errs"
)

const (
	openString  = " {\n"
	closeString = "}\n"
)

// SDL returns a GraphQL schema document with an object type per label and a root query
// field per label.  The document is checked by loading it with gqlparser so an error is
// returned if, for example, a projection targets a label that does not exist.
func (s *Schema) SDL() (string, error) {
	builder := &strings.Builder{}
	builder.Grow(256)

	builder.WriteString("scalar Date\nscalar DateTime\n\n")
	builder.WriteString("schema")
	builder.WriteString(openString)
	builder.WriteString("  query: Query\n")
	builder.WriteString(closeString)

	// We need to always output the types in the same order (eg for consistency in tests)
	names := s.Labels()
	sort.Strings(names)

	builder.WriteString("type Query")
	builder.WriteString(openString)
	for _, name := range names {
		fmt.Fprintf(builder, "  %s: [%s!]!\n", name, name)
	}
	builder.WriteString(closeString)

	for _, name := range names {
		label := s.labels[name]
		builder.WriteString("type ")
		builder.WriteString(name)
		builder.WriteString(openString)

		for _, attr := range label.attrOrder {
			fmt.Fprintf(builder, "  %s: %s\n", attr, label.attributes[attr].GraphQLType())
		}
		for _, fieldName := range label.fieldOrder {
			f := label.fields[fieldName]
			if f.Projection == nil {
				fmt.Fprintf(builder, "  %s: %s\n", f.Name, label.attributes[f.Attribute].GraphQLType())
			} else {
				fmt.Fprintf(builder, "  %s: [%s!]!\n", f.Name, f.Projection.Label)
			}
		}
		builder.WriteString(closeString)
	}

	r := builder.String()
	if _, err := gqlparser.LoadSchema(&ast.Source{Name: "schema", Input: r}); err != nil {
		return "", errs.Wrap(errs.Config, err, "generating GraphQL schema")
	}
	return r, nil
}
