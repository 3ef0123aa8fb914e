package schema

// load.go has the raw (un-normalized) schema declarations and their YAML decoding.
// YAML nodes are walked directly, rather than decoded into Go maps, so that the
// declaration order of labels is kept.

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/andrewwphillips/castnet/internal/errs"
)

type (
	// Raw is the schema as configured - an ordered list of label declarations
	Raw []RawLabel

	// RawLabel is the declaration of one label.  In YAML it looks like:
	//
	//	InjectionSet:
	//	  attributes: {num: int, started: date}
	//	  relationships: {LED_BY: MxpMember, METHODS: [Method]}
	//	  graphql:
	//	    ledBy: {rel: LED_BY, dir: OUT, lab: MxpMember}
	//	    number: num
	//	  IS_IN: SampleSet
	RawLabel struct {
		Name          string
		Attributes    []RawAttribute
		Relationships []RawRelationship
		GraphQL       []RawField
		IsIn          string
	}

	RawAttribute struct {
		Name string
		Type string // caster name, eg "str", "int", "date"
	}

	RawRelationship struct {
		Name   string
		Target string
		Many   bool // declared as a list with one entry, eg [Method]
	}

	// RawField is either an attribute reference (Attribute is set) or a projection
	RawField struct {
		Name      string
		Attribute string
		Rel       string
		Dir       string
		Lab       string
	}
)

// Parse decodes a YAML schema document.  A malformed document is an error of kind errs.Config.
func Parse(data []byte) (Raw, error) {
	var r Raw
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, errs.Wrap(errs.Config, err, "decoding schema")
	}
	return r, nil
}

// Load reads and decodes a YAML schema file
func Load(path string) (Raw, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	r, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w in %s", err, path)
	}
	return r, nil
}

// UnmarshalYAML decodes a mapping of label name to declaration, keeping the order
func (r *Raw) UnmarshalYAML(value *yaml.Node) error {
	return eachPair(value, func(key string, v *yaml.Node) error {
		label := RawLabel{Name: key}
		if err := label.decode(v); err != nil {
			return fmt.Errorf("%w (label %s)", err, key)
		}
		*r = append(*r, label)
		return nil
	})
}

func (l *RawLabel) decode(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode && value.Tag == "!!null" {
		return nil // eg "MxpMember:" or "MxpMember: {}"
	}
	return eachPair(value, func(key string, v *yaml.Node) error {
		switch key {
		case "attributes":
			return eachPair(v, func(name string, t *yaml.Node) error {
				var typeName string
				if err := t.Decode(&typeName); err != nil {
					return err
				}
				l.Attributes = append(l.Attributes, RawAttribute{Name: name, Type: typeName})
				return nil
			})
		case "relationships":
			return eachPair(v, func(name string, t *yaml.Node) error {
				rel := RawRelationship{Name: name}
				switch t.Kind {
				case yaml.ScalarNode:
					rel.Target = t.Value
				case yaml.SequenceNode:
					if len(t.Content) != 1 || t.Content[0].Kind != yaml.ScalarNode {
						return fmt.Errorf("line %d: list relationship %q must have exactly one target label", t.Line, name)
					}
					rel.Target = t.Content[0].Value
					rel.Many = true
				default:
					return fmt.Errorf("line %d: relationship %q must be a label or a list of one label", t.Line, name)
				}
				l.Relationships = append(l.Relationships, rel)
				return nil
			})
		case "graphql":
			return eachPair(v, func(name string, t *yaml.Node) error {
				f := RawField{Name: name}
				switch t.Kind {
				case yaml.ScalarNode:
					f.Attribute = t.Value
				case yaml.MappingNode:
					var p struct {
						Rel string `yaml:"rel"`
						Dir string `yaml:"dir"`
						Lab string `yaml:"lab"`
					}
					if err := t.Decode(&p); err != nil {
						return err
					}
					f.Rel, f.Dir, f.Lab = p.Rel, p.Dir, p.Lab
				default:
					return fmt.Errorf("line %d: graphql field %q must be an attribute name or {rel, dir, lab}", t.Line, name)
				}
				l.GraphQL = append(l.GraphQL, f)
				return nil
			})
		case ParentRelationship:
			return v.Decode(&l.IsIn)
		}
		return fmt.Errorf("line %d: unknown key %q", v.Line, key)
	})
}

// eachPair calls fn for each key/value of a YAML mapping in document order
func eachPair(value *yaml.Node, fn func(key string, v *yaml.Node) error) error {
	if value.Kind == yaml.DocumentNode && len(value.Content) == 1 {
		value = value.Content[0]
	}
	if value.Kind == yaml.ScalarNode && value.Tag == "!!null" {
		return nil
	}
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping", value.Line)
	}
	for i := 0; i+1 < len(value.Content); i += 2 {
		if err := fn(value.Content[i].Value, value.Content[i+1]); err != nil {
			return err
		}
	}
	return nil
}
