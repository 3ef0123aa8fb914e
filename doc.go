// Package castnet turns a declarative schema of a graph (labels with attributes, relationships
// and selectable fields) into generic create, update and delete endpoints and a small
// GraphQL-like query language, all compiled to Cypher and run against Neo4j.

// A schema is normally written in YAML as a mapping of label to declaration, for example:

//  Project:
//    attributes: {alias: str, started: date}
//    relationships: {LED_BY: Member}
//    graphql:
//      ledBy: {rel: LED_BY, dir: OUT, lab: Member}
//      sampleSets: {rel: IS_IN, dir: IN, lab: SampleSet}
//  SampleSet:
//    IS_IN: Project
//    graphql:
//      samples: {rel: IS_IN, dir: IN, lab: Sample}
//  Sample:
//    attributes: {volume: float, collected: datetime}
//    IS_IN: SampleSet
//  Member:
//    attributes: {email: str}

// (every label implicitly has "id", "name" and "description" attributes).  A server is then just:

//package main
//
//import (
//    "github.com/andrewwphillips/castnet"
//)
//func main() {
//	raw, _ := castnet.LoadSchema("lab.yaml")
//	var db castnet.Database = ... // runs Cypher, eg using the Neo4j driver
//	urlKey := map[string]string{"projects": "Project", "samplesets": "SampleSet", "samples": "Sample", "members": "Member"}
//	http.Handle("/", castnet.MustRun(raw, urlKey, db))
//	http.ListenAndServe(":8080", nil)
//}

// which accepts POST /samples (create), PATCH /samples/<id> (update), DELETE /samples/<id>
// (soft delete) plus queries posted to /graphql like this:
// {
//    Project(name: $name) {
//      name
//      ledBy { name }
//      sampleSets { name samples { name volume } }
//    }
// }

// Nodes are never removed: deleting a node replaces its label with _archived_<Label> so it
// no longer matches.  A node can't be deleted while other nodes are IS_IN it.
// See example/lab for a runnable server and cmd/castnet for one with configuration and metrics.

package castnet
