package handler

// options.go handles setting of handler options

// The use of closures for options makes it simple for the caller to add any desired options, but the mechanism
// (which they need not understand) is not simple: The handler.New() function takes as its last (variadic) parameter
// a slice of closures each with the signature func(*Handler).  The option functions below (WithLogger, etc) return
// such a closure which captures any options (parameters passed to the option function) so that the handler can be
// modified when the closure is run.  So for example in this call:
//
//   handler.New(s, urlKey, db, handler.WithGraphQLPath("/gql"))
//
// handler.WithGraphQLPath() is called and the generated closure is returned then passed as the last parameter to
// handler.New().  The SetOptions() method is called within handler.New() which executes all the options
// closures which in the above case will call the closure returned from handler.WithGraphQLPath() which sets the
// graphQLPath field of the handler.
//
// A pitfall is that if the same option function is used more than once then only the last use has any effect.

import (
	"strings"

	"go.uber.org/zap"
)

// DefaultGraphQLPath is where selection-language queries are posted (and the SDL is got)
const DefaultGraphQLPath = "/graphql"

// SetOptions takes a slice of handler options (closures) and executes them
func (h *Handler) SetOptions(options ...func(*Handler)) {
	for _, option := range options {
		option(h)
	}

	// Set any options that still have their unset (zero) value
	if h.log == nil {
		h.log = zap.NewNop()
	}
	if h.newID == nil {
		h.newID = defaultIDGenerator()
	}
	if h.graphQLPath == "" {
		h.graphQLPath = DefaultGraphQLPath
	}
	h.graphQLPath = "/" + strings.Trim(h.graphQLPath, "/")
}

// WithLogger sets the logger for refused requests (Info) and store failures (Error)
func WithLogger(log *zap.Logger) func(*Handler) {
	return func(h *Handler) {
		h.log = log
	}
}

// WithIDGenerator sets the function that makes the ids of created nodes
func WithIDGenerator(newID func(label, name string) string) func(*Handler) {
	return func(h *Handler) {
		h.newID = newID
	}
}

// WithMetrics turns on counting of requests and refused requests
func WithMetrics(m *Metrics) func(*Handler) {
	return func(h *Handler) {
		h.metrics = m
	}
}

// WithGraphQLPath sets the path of the selection-language endpoint
func WithGraphQLPath(path string) func(*Handler) {
	return func(h *Handler) {
		h.graphQLPath = path
	}
}
