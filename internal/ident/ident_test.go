package ident_test

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/andrewwphillips/castnet/internal/ident"
)

func TestClean(t *testing.T) {
	cleanData := map[string]struct{ in, expected string }{
		"Plain":      {"Project", "Project"},
		"Spaces":     {"My Project", "MyProject"},
		"Punctuated": {`a\b/c_d*e?f"g<h>i|j.k:l`, "abcdefghijkl"},
		"Controls":   {"a\nb\tc", "abc"},
		"Accents":    {"Café Müller", "CafeMuller"},
		"Empty":      {"", ""},
		"Dashes":     {"HP-1100", "HP-1100"},
	}
	for name, data := range cleanData {
		assert.Equal(t, data.expected, ident.Clean(data.in), name)
	}
}

func TestNew(t *testing.T) {
	when := time.Date(2021, 6, 1, 12, 0, 0, 0, time.UTC)
	id := ident.New("Project", "My Project: v1.2", when)
	assert.Regexp(t, regexp.MustCompile(`^Project__20210601__MyProjectv12__[0-9a-f]{8}$`), id)

	// Not the same id twice
	assert.NotEqual(t, id, ident.New("Project", "My Project: v1.2", when))
}

func TestGeneratorLocation(t *testing.T) {
	// 03:00 UTC is still the previous day in New York
	g := ident.NewGenerator(ident.DefaultLocation)
	g.Now = func() time.Time { return time.Date(2021, 6, 1, 3, 0, 0, 0, time.UTC) }
	id := g.ID("Sample", "s1")
	if g.Location == time.UTC {
		assert.True(t, strings.HasPrefix(id, "Sample__20210601__s1__"), id) // no tz database
	} else {
		assert.True(t, strings.HasPrefix(id, "Sample__20210531__s1__"), id)
	}
}

func TestLocationFallback(t *testing.T) {
	assert.Equal(t, time.UTC, ident.Location("Nowhere/Special"))
}
