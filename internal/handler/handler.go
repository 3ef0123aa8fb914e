// Package handler implements an HTTP handler for the generic endpoints: create, update
// and delete of a node of any label (chosen by the first segment of the URL path) and
// read queries in the selection language.  All queries are compiled from the schema and
// run using a Store.
package handler

// handler.go implements the handler and its ServeHTTP method

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/dolmen-go/jsonmap"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"go.uber.org/zap"

	"github.com/andrewwphillips/castnet/internal/errs"
	"github.com/andrewwphillips/castnet/internal/ident"
	"github.com/andrewwphillips/castnet/internal/mutation"
	"github.com/andrewwphillips/castnet/internal/schema"
)

const forwardSlash = "{forwardSlash}" // stands for a "/" within a path segment

type (
	// Store runs queries.  Rows are keyed by the names in the query's RETURN clause.
	Store interface {
		Read(ctx context.Context, query string, params map[string]interface{}) ([]jsonmap.Ordered, error)
		Write(ctx context.Context, query string, params map[string]interface{}) ([]jsonmap.Ordered, error)
	}

	// Handler stores the invariants (schema, URL keys and store) used by all requests
	Handler struct {
		schema   *schema.Schema
		urlKey   map[string]string // first path segment => label
		store    Store
		compiler mutation.Compiler
		sdl      string
		sdlErr   error // eg a label named Query can't be described

		log         *zap.Logger
		metrics     *Metrics
		newID       func(label, name string) string
		graphQLPath string
	}

	// failure is an error with the HTTP status to return
	failure struct {
		status int
		err    error
	}
)

// New returns an HTTP handler for the labels of the schema.  urlKey maps the first
// segment of a request's path to the label it acts on.  It panics if urlKey refers to
// an unknown label.
func New(s *schema.Schema, urlKey map[string]string, store Store, options ...func(*Handler)) *Handler {
	for key, label := range urlKey {
		if _, ok := s.Label(label); !ok {
			panic(fmt.Sprintf("castnet.handler.New - URL key %q refers to unknown label %q", key, label))
		}
	}
	h := &Handler{schema: s, urlKey: urlKey, store: store}
	h.sdl, h.sdlErr = s.SDL() // only needed to answer GET on the graphql path
	h.SetOptions(options...)
	h.compiler = mutation.Compiler{Schema: s, NewID: h.newID}
	return h
}

// ServeHTTP routes the request on its method and path, runs it and writes the result
// (or an error message) as JSON
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	result, fail := h.serve(r)
	status := http.StatusOK
	if fail != nil {
		status = fail.status
		result = errorResult(fail.err)
	}
	h.metrics.request(r.Method, status)

	if s, ok := result.(sdlResult); ok {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(status)
		w.Write([]byte(s))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	buf, err := json.Marshal(result)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"errors": [{"message": "Error encoding JSON response:` + err.Error() + `"}]}`))
		return
	}
	w.WriteHeader(status)
	w.Write(buf)
}

func (h *Handler) serve(r *http.Request) (interface{}, *failure) {
	if "/"+strings.Trim(r.URL.Path, "/") == h.graphQLPath {
		switch r.Method {
		case http.MethodGet:
			if h.sdlErr != nil {
				return nil, &failure{http.StatusNotImplemented, h.sdlErr}
			}
			return sdlResult(h.sdl), nil
		case http.MethodPost:
			return h.query(r)
		}
		return nil, &failure{http.StatusMethodNotAllowed, fmt.Errorf("method %s not allowed", r.Method)}
	}

	path := getPath(r.URL.Path)
	if len(path) == 0 || len(path) > 2 {
		return nil, &failure{http.StatusNotFound, fmt.Errorf("path %q not found", r.URL.Path)}
	}
	label, ok := h.urlKey[path[0]]
	if !ok {
		return nil, &failure{http.StatusNotFound, fmt.Errorf("unknown resource %q", path[0])}
	}

	switch {
	case r.Method == http.MethodPost && len(path) == 1:
		payload, fail := decodePayload(r)
		if fail != nil {
			return nil, fail
		}
		return h.create(r.Context(), label, payload)
	case r.Method == http.MethodPatch && len(path) == 2:
		payload, fail := decodePayload(r)
		if fail != nil {
			return nil, fail
		}
		return h.update(r.Context(), label, path[1], payload)
	case r.Method == http.MethodDelete && len(path) == 2:
		return h.remove(r.Context(), label, path[1])
	}
	return nil, &failure{http.StatusMethodNotAllowed, fmt.Errorf("method %s not allowed on %q", r.Method, r.URL.Path)}
}

// getPath splits a URL path into its segments, decoding any {forwardSlash} in a segment
func getPath(path string) []string {
	path = strings.Trim(strings.ReplaceAll(path, "//", "/"), "/")
	if path == "" {
		return nil
	}
	r := strings.Split(path, "/")
	for i, p := range r {
		r[i] = strings.ReplaceAll(p, forwardSlash, "/")
	}
	return r
}

func decodePayload(r *http.Request) (jsonmap.Ordered, *failure) {
	var payload jsonmap.Ordered
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		return payload, &failure{http.StatusBadRequest, fmt.Errorf("error decoding JSON request: %w", err)}
	}
	if payload.Data == nil {
		payload.Data = map[string]interface{}{}
	}
	return payload, nil
}

// sdlResult is returned as text rather than JSON
type sdlResult string

// errorResult makes a GraphQL-style error response, with the class of error as the code
func errorResult(err error) interface{} {
	e := &gqlerror.Error{Message: err.Error()}
	if kind, ok := errs.KindOf(err); ok {
		e.Extensions = map[string]interface{}{"code": kind.String()}
	}
	return struct {
		Errors gqlerror.List `json:"errors"`
	}{gqlerror.List{e}}
}

// refuse returns a bad request failure, logging the reason
func (h *Handler) refuse(err error) *failure {
	h.log.Info("request refused", zap.Error(err))
	if kind, ok := errs.KindOf(err); ok {
		h.metrics.compileError(kind)
	}
	return &failure{http.StatusBadRequest, err}
}

// storeFailed returns an internal error failure, logging the error
func (h *Handler) storeFailed(err error) *failure {
	h.log.Error("store failed", zap.Error(err))
	return &failure{http.StatusInternalServerError, err}
}

// defaultIDGenerator dates ids in the default time zone
func defaultIDGenerator() func(label, name string) string {
	return ident.NewGenerator(ident.DefaultLocation).ID
}
