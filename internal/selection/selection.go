// Package selection parses the selection language (a small subset of GraphQL: nested
// field selection with an optional condition on each node) into a tree of Nodes.
// Every name is resolved against the schema as it is parsed, so a tree that is
// returned without error only refers to declared labels, attributes and projections.
package selection

import (
	"fmt"

	"github.com/andrewwphillips/castnet/internal/errs"
	"github.com/andrewwphillips/castnet/internal/schema"
	"github.com/andrewwphillips/castnet/internal/token"
)

const queryKeyword = "query"

type (
	// Node is a selection of (some of) the nodes of a label
	Node struct {
		Name      string // field name, which is also the name of the result
		Label     string
		Rel       string           // relationship followed from the parent (nested nodes only)
		Dir       schema.Direction // NoDirection for a top level node
		Condition string           // raw condition text including the round brackets, eg "(id: $id)"
		Fields    []Field
	}

	// Field is one entry in a node's body - either an attribute or a nested node
	Field struct {
		Name string
		Attr string // attribute name (when Node is nil)
		Node *Node
	}
)

// Attributes returns the attribute fields of the node (in the order given)
func (n *Node) Attributes() []Field {
	var r []Field
	for _, f := range n.Fields {
		if f.Node == nil {
			r = append(r, f)
		}
	}
	return r
}

// Nested returns the nested nodes (in the order given)
func (n *Node) Nested() []*Node {
	var r []*Node
	for _, f := range n.Fields {
		if f.Node != nil {
			r = append(r, f.Node)
		}
	}
	return r
}

// Build parses top-level selection text (without any leading "query(...)") into the
// nodes it selects.  Errors are of kind errs.Syntax for bad brackets or a missing
// body, or errs.Mismatch for a name that can't be resolved.
func Build(s *schema.Schema, text string) ([]*Node, error) {
	fields, err := build(s, text, nil)
	if err != nil {
		return nil, err
	}
	r := make([]*Node, 0, len(fields))
	for _, f := range fields {
		r = append(r, f.Node) // at the top level there are no attributes
	}
	return r, nil
}

// build parses the body of a node of the enclosing label (or the top level if enclosing is nil)
func build(s *schema.Schema, text string, enclosing *schema.Label) ([]Field, error) {
	var fields []Field
	lex := token.New(text)
	for {
		tok, err := lex.Next()
		if err != nil {
			return nil, err
		}
		if tok.Kind == token.EOF {
			return fields, nil
		}

		var node *Node
		switch {
		case tok.Text == queryKeyword:
			// The label comes from the next token
			next, err := lex.Next()
			if err != nil {
				return nil, err
			}
			if next.Kind != token.Word {
				return nil, errs.New(errs.Syntax, "expected a label after %q", queryKeyword)
			}
			node = &Node{Name: next.Text, Label: next.Text}

		case enclosing == nil:
			if _, ok := s.Label(tok.Text); ok {
				node = &Node{Name: tok.Text, Label: tok.Text}
			}

		default:
			if f, ok := enclosing.Field(tok.Text); ok {
				if f.Projection != nil {
					node = &Node{
						Name:  tok.Text,
						Label: f.Projection.Label,
						Rel:   f.Projection.Rel,
						Dir:   f.Projection.Dir,
					}
				} else {
					fields = append(fields, Field{Name: tok.Text, Attr: f.Attribute})
					continue
				}
			} else if _, ok := enclosing.Attribute(tok.Text); ok {
				fields = append(fields, Field{Name: tok.Text, Attr: tok.Text})
				continue
			}
		}

		if node == nil {
			in := "the schema"
			if enclosing != nil {
				in = enclosing.Name
			}
			return nil, errs.New(errs.Mismatch, "%q not found in %s", tok.Text, in)
		}
		label, ok := s.Label(node.Label)
		if !ok {
			return nil, errs.New(errs.Mismatch, "%s label not found in schema", node.Label)
		}

		// Next is the body, unless there is a condition first
		body, err := lex.Next()
		if err != nil {
			return nil, err
		}
		if body.Kind == token.Parens {
			node.Condition = body.Text
			if body, err = lex.Next(); err != nil {
				return nil, err
			}
		}
		if body.Kind != token.Braces {
			return nil, errs.New(errs.Syntax, "expected { after %q", node.Name)
		}
		if node.Fields, err = build(s, body.Text, label); err != nil {
			return nil, fmt.Errorf("%w (in %s)", err, node.Name)
		}
		fields = append(fields, Field{Name: node.Name, Node: node})
	}
}
