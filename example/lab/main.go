package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"go.uber.org/zap"

	"github.com/andrewwphillips/castnet"
	"github.com/andrewwphillips/castnet/internal/neo4jdb"
)

// labSchema describes projects that contain sample sets which contain samples.
// The graphql sections say what can be queried below each label.
const labSchema = `
Project:
  attributes: {alias: str, started: date}
  relationships: {LED_BY: Member}
  graphql:
    ledBy: {rel: LED_BY, dir: OUT, lab: Member}
    sampleSets: {rel: IS_IN, dir: IN, lab: SampleSet}
SampleSet:
  IS_IN: Project
  graphql:
    samples: {rel: IS_IN, dir: IN, lab: Sample}
Sample:
  attributes: {volume: float, collected: datetime}
  IS_IN: SampleSet
  graphql:
    label: name
Member:
  attributes: {email: str}
`

var urlKey = map[string]string{
	"projects":   "Project",
	"samplesets": "SampleSet",
	"samples":    "Sample",
	"members":    "Member",
}

func main() {
	raw, err := castnet.ParseSchema([]byte(labSchema))
	if err != nil {
		log.Fatalln(err)
	}
	logger, _ := zap.NewDevelopment()

	db, err := neo4jdb.Open(context.Background(), neo4jdb.Config{
		URI:      "neo4j://localhost:7687",
		User:     "neo4j",
		Password: os.Getenv("NEO4J_PASSWORD"),
	}, logger)
	if err != nil {
		log.Fatalln(err)
	}
	defer db.Close(context.Background())

	// Try:
	//   curl -X POST localhost:8080/members -d '{"name": "courtney"}'
	//   curl -X POST localhost:8080/projects -d '{"name": "p1", "LED_BY": "<id from above>"}'
	//   curl localhost:8080/graphql -d '{"query": "{ Project { name ledBy { name } } }"}'
	http.Handle("/", castnet.MustRun(raw, urlKey, db, castnet.WithLogger(logger)))
	log.Fatalln(http.ListenAndServe(":8080", nil))
}
