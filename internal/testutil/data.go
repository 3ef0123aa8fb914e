// Package testutil has fixtures shared by the tests of the other packages
package testutil

import (
	"fmt"

	"github.com/dolmen-go/jsonmap"

	"github.com/andrewwphillips/castnet/internal/schema"
)

// LabSchema is a small laboratory schema: projects contain sample sets which
// contain samples and injection sets.  TEST_LIST1/2 are ordered (multi-valued)
// relationships.  Note that Method is a relationship target without a declaration.
const LabSchema = `
Project:
  attributes: {alias: str}
  relationships: {LED_BY: MxpMember}
  graphql:
    ledBy: {rel: LED_BY, dir: OUT, lab: MxpMember}
    sampleSets: {rel: IS_IN, dir: IN, lab: SampleSet}
SampleSet:
  IS_IN: Project
  graphql:
    hasSamples: {rel: IS_IN, dir: IN, lab: Sample}
InjectionSet:
  attributes: {num: int, acquisitionStarted: date, acquired: datetime}
  relationships:
    ON_INSTRUMENT: Instrument
    LED_BY: MxpMember
    USING_METHOD: Method
    TEST_LIST1: [Method]
    TEST_LIST2: [MxpMember]
  IS_IN: SampleSet
Injection:
  relationships: {IS_SAMPLE: Sample}
  IS_IN: InjectionSet
Sample:
  IS_IN: SampleSet
Instrument:
  graphql:
    injectionSets: {rel: ON_INSTRUMENT, dir: IN, lab: InjectionSet}
MxpMember: {}
`

// URLKey maps the path segments used by the HTTP tests to labels of LabSchema
var URLKey = map[string]string{
	"projects":      "Project",
	"samplesets":    "SampleSet",
	"injectionsets": "InjectionSet",
	"samples":       "Sample",
	"instruments":   "Instrument",
}

// MustLabRaw returns the raw (decoded) LabSchema
func MustLabRaw() schema.Raw {
	raw, err := schema.Parse([]byte(LabSchema))
	if err != nil {
		panic(err)
	}
	return raw
}

// MustLabSchema returns the normalized LabSchema
func MustLabSchema() *schema.Schema {
	return schema.MustBuild(MustLabRaw())
}

// Ordered builds an ordered map from alternating keys and values
func Ordered(kv ...interface{}) jsonmap.Ordered {
	if len(kv)%2 != 0 {
		panic(fmt.Sprintf("Ordered needs key/value pairs, got %d values", len(kv)))
	}
	r := jsonmap.Ordered{
		Data:  make(map[string]interface{}, len(kv)/2),
		Order: make([]string, 0, len(kv)/2),
	}
	for i := 0; i < len(kv); i += 2 {
		key := kv[i].(string)
		if _, ok := r.Data[key]; !ok {
			r.Order = append(r.Order, key)
		}
		r.Data[key] = kv[i+1]
	}
	return r
}
