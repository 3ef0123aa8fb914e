package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/andrewwphillips/castnet/internal/errs"
	"github.com/andrewwphillips/castnet/internal/schema"
	"github.com/andrewwphillips/castnet/internal/testutil"
)

func TestSDL(t *testing.T) {
	sdl, err := testutil.MustLabSchema().SDL()
	require.NoError(t, err)

	doc, err := gqlparser.LoadSchema(&ast.Source{Name: "test", Input: sdl})
	require.NoError(t, err)

	project := doc.Types["Project"]
	require.NotNil(t, project)
	assert.NotNil(t, project.Fields.ForName("alias"))
	assert.Equal(t, "String", project.Fields.ForName("alias").Type.Name())
	assert.Equal(t, "SampleSet", project.Fields.ForName("sampleSets").Type.Name())

	injectionSet := doc.Types["InjectionSet"]
	require.NotNil(t, injectionSet)
	assert.Equal(t, "Int", injectionSet.Fields.ForName("num").Type.Name())
	assert.Equal(t, "Date", injectionSet.Fields.ForName("acquisitionStarted").Type.Name())
	assert.Equal(t, "SampleSet", injectionSet.Fields.ForName("isIn").Type.Name())

	assert.NotNil(t, doc.Query.Fields.ForName("Instrument"))
}

func TestSDLUnknownTarget(t *testing.T) {
	s := schema.MustBuild(schema.Raw{{
		Name:          "A",
		Relationships: []schema.RawRelationship{{Name: "R", Target: "Ghost"}},
		GraphQL:       []schema.RawField{{Name: "ghost", Rel: "R", Dir: "OUT", Lab: "Ghost"}},
	}})
	_, err := s.SDL()
	assert.True(t, errs.Is(err, errs.Config), err)
}

// Labels may use names that GraphQL reserves, they just can't be described by the SDL
func TestSDLReservedLabel(t *testing.T) {
	for _, name := range []string{"Query", "Date", "Int"} {
		s, err := schema.Build(schema.Raw{{Name: name}})
		require.NoError(t, err, name)
		_, err = s.SDL()
		assert.True(t, errs.Is(err, errs.Config), "%s: %v", name, err)
	}
}
