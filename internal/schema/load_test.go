package schema_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrewwphillips/castnet/internal/errs"
	"github.com/andrewwphillips/castnet/internal/schema"
	"github.com/andrewwphillips/castnet/internal/testutil"
)

func TestParse(t *testing.T) {
	raw := testutil.MustLabRaw()
	require.Len(t, raw, 7)

	assert.Equal(t, "Project", raw[0].Name)
	assert.Equal(t, []schema.RawAttribute{{Name: "alias", Type: "str"}}, raw[0].Attributes)
	assert.Equal(t, []schema.RawRelationship{{Name: "LED_BY", Target: "MxpMember"}}, raw[0].Relationships)
	assert.Equal(t, []schema.RawField{
		{Name: "ledBy", Rel: "LED_BY", Dir: "OUT", Lab: "MxpMember"},
		{Name: "sampleSets", Rel: "IS_IN", Dir: "IN", Lab: "SampleSet"},
	}, raw[0].GraphQL)

	assert.Equal(t, "SampleSet", raw[1].Name)
	assert.Equal(t, "Project", raw[1].IsIn)

	injectionSet := raw[2]
	assert.Equal(t, []schema.RawRelationship{
		{Name: "ON_INSTRUMENT", Target: "Instrument"},
		{Name: "LED_BY", Target: "MxpMember"},
		{Name: "USING_METHOD", Target: "Method"},
		{Name: "TEST_LIST1", Target: "Method", Many: true},
		{Name: "TEST_LIST2", Target: "MxpMember", Many: true},
	}, injectionSet.Relationships)

	assert.Equal(t, schema.RawLabel{Name: "MxpMember"}, raw[6])
}

func TestParseErrors(t *testing.T) {
	tests := map[string]string{
		"UnknownKey":   "A:\n  colour: red\n",
		"TwoTargets":   "A:\n  relationships: {R: [B, C]}\n",
		"NotMapping":   "- A\n- B\n",
		"BadGraphQL":   "A:\n  graphql: {x: [1]}\n",
		"BadAttribute": "A:\n  attributes: {x: [int]}\n",
	}
	for name, doc := range tests {
		_, err := schema.Parse([]byte(doc))
		assert.True(t, errs.Is(err, errs.Config), "%s: %v", name, err)
	}
}

func TestParseAttributeReference(t *testing.T) {
	raw, err := schema.Parse([]byte("A:\n  attributes: {n: int}\n  graphql: {number: n}\n"))
	require.NoError(t, err)
	assert.Equal(t, []schema.RawField{{Name: "number", Attribute: "n"}}, raw[0].GraphQL)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testutil.LabSchema), 0o600))

	raw, err := schema.Load(path)
	require.NoError(t, err)
	assert.Len(t, raw, 7)

	_, err = schema.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
