package castnet

// run.go provides the MustRun function for quickly creating an http handler

import (
	"net/http"
)

// MustRun creates an http handler for the generic endpoints of the schema.  It panics if the
// schema or urlKey is invalid.  Use New then Conn.Handler to also compile or run queries directly.
func MustRun(raw Schema, urlKey map[string]string, db Database, options ...func(*Conn)) http.Handler {
	return MustNew(raw, urlKey, db, options...).Handler()
}
