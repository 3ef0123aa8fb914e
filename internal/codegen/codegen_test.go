package codegen_test

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrewwphillips/castnet/internal/codegen"
	"github.com/andrewwphillips/castnet/internal/errs"
	"github.com/andrewwphillips/castnet/internal/schema"
	"github.com/andrewwphillips/castnet/internal/selection"
	"github.com/andrewwphillips/castnet/internal/testutil"
)

const labQuery = `


query(ignore) {

Project(id: $id){
                name
        description
        sampleSets{
            id hasSamples      {name}
        }
        ledBy{name}
    }
    Instrument{name injectionSets{name}}
}
    `

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestCompileGolden(t *testing.T) {
	goldenData := map[string]string{
		"lab_query":   labQuery,
		"nested_only": "query(x){ Sample(name: $name){ isIn{ name } } }",
	}
	g := newGoldie(t)
	for name, in := range goldenData {
		got, err := codegen.Compile(testutil.MustLabSchema(), in)
		require.NoError(t, err, name)
		g.Assert(t, name, []byte(got))
	}
}

func TestStripQuery(t *testing.T) {
	stripData := map[string]struct{ in, expected string }{
		"Plain":    {"Project{name}", "Project{name}"},
		"Braces":   {" { Project{name} } ", " Project{name} "},
		"Query":    {"query(ignore) { A{b} }", " A{b} "},
		"Trimmed":  {"\n\t Project{name}\n", "Project{name}"},
		"NoClose":  {"{ Project", "{ Project"},
		"Keyword":  {"query{A{b}}", "A{b}"},
		"Multiple": {"{A{b}} {C{d}}", "A{b}} {C{d}"},
	}
	for name, data := range stripData {
		assert.Equal(t, data.expected, codegen.StripQuery(data.in), name)
	}
}

func TestLowerFieldOrder(t *testing.T) {
	// Attributes come first in the collected map, then nested fields
	n := &selection.Node{Name: "X", Label: "L", Fields: []selection.Field{
		{Name: "kids", Node: &selection.Node{Name: "kids", Label: "K", Rel: "R", Dir: schema.In,
			Fields: []selection.Field{{Name: "id", Attr: "id"}}}},
		{Name: "number", Attr: "n"},
	}}
	assert.Equal(t, `CALL {
MATCH (a_1:L)
UNWIND a_1 as a_1_s
CALL {
WITH a_1_s
MATCH (a_1_1:K)-[r:R]->(a_1_s)
UNWIND a_1_1 as a_1_1_s
RETURN COLLECT({id: a_1_1.id}) as kids
}
RETURN COLLECT({number: a_1.n,kids: kids}) as X
}
RETURN X`, codegen.Lower([]*selection.Node{n}))
}

func TestCompileErrors(t *testing.T) {
	s := testutil.MustLabSchema()

	_, err := codegen.Compile(s, "{ }")
	assert.True(t, errs.Is(err, errs.Syntax), "%v", err)

	_, err = codegen.Compile(s, "{ Project{ name sampleSets{ id } }")
	assert.True(t, errs.Is(err, errs.Syntax), "%v", err)

	_, err = codegen.Compile(s, "{ Project{ colour } }")
	assert.True(t, errs.Is(err, errs.Mismatch), "%v", err)
}

func TestCompileConcurrently(t *testing.T) {
	s := testutil.MustLabSchema()
	expected, err := codegen.Compile(s, labQuery)
	require.NoError(t, err)

	results := make(chan string)
	for i := 0; i < 8; i++ {
		go func() {
			got, _ := codegen.Compile(s, labQuery)
			results <- got
		}()
	}
	for i := 0; i < 8; i++ {
		assert.Equal(t, expected, <-results)
	}
}
