// Command castnet serves the generic endpoints of a graph schema and compiles
// requests to Cypher from the command line.
package main

import (
	"fmt"
	"os"
)

// Set using -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "castnet:", err)
		os.Exit(1)
	}
}
