package schema

// validate.go has functions to help check that schema values are valid

import (
	"regexp"

	"github.com/andrewwphillips/castnet/internal/errs"
)

var nameRegex = regexp.MustCompile(`^[_a-zA-Z][_a-zA-Z0-9]*$`)

// validName checks that a string can be used as a label, attribute, relationship or field name.
// Names are written into generated query text as-is so anything else is rejected.
func validName(s string) bool {
	return nameRegex.MatchString(s)
}

// validate performs the cross-label checks once all labels have been built.
// Field names must not clash with attribute names.
// For a projection {rel, dir, lab} on label L the relationship must be declared
// on L (dir OUT) or on lab (dir IN).
func (s *Schema) validate() error {
	for _, name := range s.order {
		label := s.labels[name]
		for _, fieldName := range label.fieldOrder {
			if _, ok := label.attributes[fieldName]; ok {
				return errs.New(errs.Config, "graphql field %q of %s has the same name as an attribute", fieldName, name)
			}
			f := label.fields[fieldName]
			if f.Projection == nil {
				if _, ok := label.attributes[f.Attribute]; !ok {
					return errs.New(errs.Config, "graphql field %q of %s refers to unknown attribute %q",
						f.Name, name, f.Attribute)
				}
				continue
			}

			p := f.Projection
			check := name
			if p.Dir == In {
				check = p.Label
			}
			var found bool
			if target, ok := s.labels[check]; ok {
				_, found = target.relationships[p.Rel]
			}
			if !found {
				return errs.New(errs.Config, "relationship %s not found in %s (graphql field %q of %s)",
					p.Rel, check, f.Name, name)
			}
		}
	}
	return nil
}
