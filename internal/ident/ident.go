// Package ident generates the ids of new nodes.  An id is readable - it has the
// label, the creation date and the node's name - but is made unique with a random
// suffix, eg "Project__20210531__MyProject__3f2a9c01".
package ident

import (
	"encoding/hex"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultLocation is the name of the time zone used for the date in ids
const DefaultLocation = "America/New_York"

const (
	sep        = "__"
	disallowed = "\\\n\t/_*?\"<>|.: " // removed from names so ids can be used in paths and bucket keys
	dateLayout = "20060102"
)

// Generator makes ids using the current date in a time zone
type Generator struct {
	Location *time.Location
	Now      func() time.Time // defaults to time.Now
}

// NewGenerator returns a generator that dates ids in the named time zone, or in UTC
// if the zone is not known (eg no tz database is installed)
func NewGenerator(location string) *Generator {
	return &Generator{Location: Location(location)}
}

// Location loads a time zone falling back to UTC
func Location(name string) *time.Location {
	if loc, err := time.LoadLocation(name); err == nil {
		return loc
	}
	return time.UTC
}

// ID returns a new id for a node of the label
func (g *Generator) ID(label, name string) string {
	now := time.Now
	if g.Now != nil {
		now = g.Now
	}
	t := now()
	if g.Location != nil {
		t = t.In(g.Location)
	}
	return New(label, name, t)
}

// New returns an id for a node of the label created at the given time
func New(label, name string, t time.Time) string {
	u := uuid.New()
	return label + sep + t.Format(dateLayout) + sep + Clean(name) + sep + hex.EncodeToString(u[:4])
}

// Clean removes accents and characters that are not allowed in an id from a name
func Clean(name string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), name)
	if err != nil {
		folded = name
	}
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(disallowed, r) {
			return -1
		}
		return r
	}, folded)
}
