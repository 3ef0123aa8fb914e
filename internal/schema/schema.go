// Package schema is the schema registry.  It normalizes raw (configured) label
// declarations into an immutable Schema that the parameter classifier, the
// mutation compiler and the selection parser all depend on.  The Schema is built
// once at startup and only read afterwards so it is safe for concurrent use.
package schema

// schema.go contains the exported functions - Build and MustBuild - and the normalized types

import (
	"fmt"
	"strings"

	"github.com/andrewwphillips/castnet/internal/errs"
)

// Implicit attributes that every label has (in this order)
var implicitAttributes = []string{"id", "name", "description"}

const (
	// ParentRelationship is the name of the relationship added by the IS_IN shorthand
	ParentRelationship = "IS_IN"
	// parentField is the name of the projection added by the IS_IN shorthand
	parentField = "isIn"
)

// Direction says which way a projection traverses its relationship
type Direction int

const (
	NoDirection Direction = iota
	In                    // the related node points at us: (related)-[rel]->(us)
	Out                   // we point at the related node: (us)-[rel]->(related)
)

func (d Direction) String() string {
	switch d {
	case In:
		return "IN"
	case Out:
		return "OUT"
	}
	return ""
}

type (
	// Schema is the normalized, validated set of labels
	Schema struct {
		order  []string          // labels in declaration order
		labels map[string]*Label // key is the label name
	}

	// Label holds everything known about one node label
	Label struct {
		Name   string
		Parent string // label given by the IS_IN shorthand (if any)

		attributes    map[string]Caster
		attrOrder     []string
		relationships map[string]Relationship
		fields        map[string]Field
		fieldOrder    []string
	}

	// Relationship is a typed edge from a label to a target label
	Relationship struct {
		Name   string
		Target string
		Many   bool // declared as a list, ie multi-valued and ordered
	}

	// Field is a name exposed to the selection language.  It is either a plain
	// reference to an attribute or a projection onto a related label.
	Field struct {
		Name       string
		Attribute  string      // non-empty for an attribute reference
		Projection *Projection // non-nil for a projection
	}

	// Projection is a read path from a label to a related label
	Projection struct {
		Rel   string
		Dir   Direction
		Label string
	}
)

// MustBuild is the same as Build but panics on error
func MustBuild(raw Raw) *Schema {
	s, err := Build(raw)
	if err != nil {
		panic(err)
	}
	return s
}

// Build normalizes the raw schema declarations: implicit attributes are added, the
// IS_IN shorthand is expanded, caster names are resolved, and all projections
// are checked to refer to existing relationships.  Any problem is returned as
// an error of kind errs.Config.
func Build(raw Raw) (*Schema, error) {
	s := &Schema{
		order:  make([]string, 0, len(raw)),
		labels: make(map[string]*Label, len(raw)),
	}

	// First pass: build each label in isolation
	for _, rl := range raw {
		if !validName(rl.Name) {
			return nil, errs.New(errs.Config, "label %q is not a valid name", rl.Name)
		}
		if _, ok := s.labels[rl.Name]; ok {
			return nil, errs.New(errs.Config, "label %q is declared more than once", rl.Name)
		}
		label, err := buildLabel(rl)
		if err != nil {
			return nil, fmt.Errorf("%w (label %s)", err, rl.Name)
		}
		s.order = append(s.order, rl.Name)
		s.labels[rl.Name] = label
	}

	// Second pass: cross-reference checks
	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func buildLabel(rl RawLabel) (*Label, error) {
	r := &Label{
		Name:          rl.Name,
		Parent:        rl.IsIn,
		attributes:    make(map[string]Caster, len(implicitAttributes)+len(rl.Attributes)),
		relationships: make(map[string]Relationship, len(rl.Relationships)+1),
		fields:        make(map[string]Field, len(rl.GraphQL)+1),
	}
	for _, name := range implicitAttributes {
		r.addAttribute(name, Text)
	}
	for _, a := range rl.Attributes {
		if !validName(a.Name) {
			return nil, errs.New(errs.Config, "attribute %q is not a valid name", a.Name)
		}
		c, err := ParseCaster(a.Type)
		if err != nil {
			return nil, errs.Wrap(errs.Config, err, "attribute %q", a.Name)
		}
		r.addAttribute(a.Name, c)
	}

	for _, rel := range rl.Relationships {
		if !validName(rel.Name) {
			return nil, errs.New(errs.Config, "relationship %q is not a valid name", rel.Name)
		}
		if !validName(rel.Target) {
			return nil, errs.New(errs.Config, "relationship %q has invalid target %q", rel.Name, rel.Target)
		}
		r.relationships[rel.Name] = Relationship{Name: rel.Name, Target: rel.Target, Many: rel.Many}
	}

	for _, f := range rl.GraphQL {
		if !validName(f.Name) {
			return nil, errs.New(errs.Config, "graphql field %q is not a valid name", f.Name)
		}
		field := Field{Name: f.Name}
		if f.Attribute != "" {
			field.Attribute = f.Attribute
		} else {
			dir, err := parseDirection(f.Dir)
			if err != nil {
				return nil, errs.Wrap(errs.Config, err, "graphql field %q", f.Name)
			}
			field.Projection = &Projection{Rel: f.Rel, Dir: dir, Label: f.Lab}
		}
		r.addField(field)
	}

	// The IS_IN shorthand creates a relationship to the parent and a projection that follows it
	if rl.IsIn != "" {
		if !validName(rl.IsIn) {
			return nil, errs.New(errs.Config, "%s target %q is not a valid name", ParentRelationship, rl.IsIn)
		}
		r.relationships[ParentRelationship] = Relationship{Name: ParentRelationship, Target: rl.IsIn}
		r.addField(Field{
			Name:       parentField,
			Projection: &Projection{Rel: ParentRelationship, Dir: Out, Label: rl.IsIn},
		})
	}
	return r, nil
}

func (l *Label) addAttribute(name string, c Caster) {
	if _, ok := l.attributes[name]; !ok {
		l.attrOrder = append(l.attrOrder, name)
	}
	l.attributes[name] = c
}

func (l *Label) addField(f Field) {
	if _, ok := l.fields[f.Name]; !ok {
		l.fieldOrder = append(l.fieldOrder, f.Name)
	}
	l.fields[f.Name] = f
}

func parseDirection(s string) (Direction, error) {
	switch strings.ToLower(s) {
	case "in":
		return In, nil
	case "out":
		return Out, nil
	}
	return NoDirection, fmt.Errorf("direction %q must be IN or OUT", s)
}

// Label returns the named label (if it exists)
func (s *Schema) Label(name string) (*Label, bool) {
	l, ok := s.labels[name]
	return l, ok
}

// Labels returns all label names in declaration order
func (s *Schema) Labels() []string {
	return append([]string(nil), s.order...)
}

// Dependents returns, in declaration order, the labels whose IS_IN relationship targets the given label
func (s *Schema) Dependents(label string) []string {
	var r []string
	for _, name := range s.order {
		if rel, ok := s.labels[name].relationships[ParentRelationship]; ok && rel.Target == label {
			r = append(r, name)
		}
	}
	return r
}

// Attribute returns the caster of a declared attribute
func (l *Label) Attribute(name string) (Caster, bool) {
	c, ok := l.attributes[name]
	return c, ok
}

// Attributes returns the attribute names (implicit ones first)
func (l *Label) Attributes() []string {
	return append([]string(nil), l.attrOrder...)
}

// Relationship returns a declared relationship
func (l *Label) Relationship(name string) (Relationship, bool) {
	r, ok := l.relationships[name]
	return r, ok
}

// Field returns a field exposed to the selection language
func (l *Label) Field(name string) (Field, bool) {
	f, ok := l.fields[name]
	return f, ok
}

// Fields returns the names of the exposed fields in declaration order
func (l *Label) Fields() []string {
	return append([]string(nil), l.fieldOrder...)
}
