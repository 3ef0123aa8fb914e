package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/dolmen-go/jsonmap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrewwphillips/castnet/internal/handler"
	"github.com/andrewwphillips/castnet/internal/mutation"
	"github.com/andrewwphillips/castnet/internal/schema"
	"github.com/andrewwphillips/castnet/internal/testutil"
)

type (
	call struct {
		mode   string
		query  string
		params map[string]interface{}
	}

	// fakeStore records the queries it is asked to run and returns canned rows
	fakeStore struct {
		mu      sync.Mutex
		calls   []call
		respond func(c call) ([]jsonmap.Ordered, error)
	}
)

func (s *fakeStore) run(mode, query string, params map[string]interface{}) ([]jsonmap.Ordered, error) {
	s.mu.Lock()
	c := call{mode, query, params}
	s.calls = append(s.calls, c)
	s.mu.Unlock()
	if s.respond == nil {
		return nil, nil
	}
	return s.respond(c)
}

func (s *fakeStore) Read(_ context.Context, query string, params map[string]interface{}) ([]jsonmap.Ordered, error) {
	return s.run("read", query, params)
}

func (s *fakeStore) Write(_ context.Context, query string, params map[string]interface{}) ([]jsonmap.Ordered, error) {
	return s.run("write", query, params)
}

// sourceRow is what a store returns for a mutation that returns "source"
func sourceRow(kv ...interface{}) []jsonmap.Ordered {
	return []jsonmap.Ordered{testutil.Ordered("source", testutil.Ordered(kv...))}
}

func newHandler(store handler.Store, options ...func(*handler.Handler)) *handler.Handler {
	options = append([]func(*handler.Handler){
		handler.WithIDGenerator(func(label, name string) string { return label + "__" + name }),
	}, options...)
	return handler.New(testutil.MustLabSchema(), testutil.URLKey, store, options...)
}

func serve(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	request := httptest.NewRequest(method, path, strings.NewReader(body))
	request.Header.Add("Content-Type", "application/json")
	writer := httptest.NewRecorder()
	h.ServeHTTP(writer, request)
	return writer
}

// errorOf decodes the first error message and code from a response
func errorOf(t *testing.T, w *httptest.ResponseRecorder) (message, code string) {
	t.Helper()
	var result struct {
		Errors []struct {
			Message    string
			Extensions map[string]interface{}
		}
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result), w.Body.String())
	require.NotEmpty(t, result.Errors)
	code, _ = result.Errors[0].Extensions["code"].(string)
	return result.Errors[0].Message, code
}

func TestCreateTopLevel(t *testing.T) {
	store := &fakeStore{respond: func(c call) ([]jsonmap.Ordered, error) {
		if c.mode == "write" {
			return sourceRow("id", "Project__p1", "name", "p1"), nil
		}
		return nil, nil // no name clash
	}}
	w := serve(newHandler(store), "POST", "/projects", `{"name": "p1", "alias": "x", "LED_BY": "courtney_id"}`)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `[{"id": "Project__p1", "name": "p1"}]`, w.Body.String())
	require.Len(t, store.calls, 2)
	assert.Equal(t, call{"read", mutation.NameCheck("Project"), map[string]interface{}{"name": "p1"}}, store.calls[0])
	assert.Equal(t, "write", store.calls[1].mode)
	assert.Equal(t, `MATCH
(target_0:MxpMember {id: $target_0_id})
CREATE
(source:Project {id: $source_id, name:$name, alias:$alias})
CREATE
(source)-[:LED_BY {order_num: 0}]->(target_0)
RETURN
source`, store.calls[1].query)
	assert.Equal(t, map[string]interface{}{
		"name":        "p1",
		"alias":       "x",
		"source_id":   "Project__p1",
		"target_0_id": "courtney_id",
	}, store.calls[1].params)
}

func TestCreateChild(t *testing.T) {
	store := &fakeStore{respond: func(c call) ([]jsonmap.Ordered, error) {
		if c.mode == "write" {
			return sourceRow("id", "Sample__s2", "name", "s2"), nil
		}
		return []jsonmap.Ordered{
			testutil.Ordered("a", testutil.Ordered("id", "ss"), "b", testutil.Ordered("name", "s1")),
			testutil.Ordered("a", testutil.Ordered("id", "ss"), "b", nil),
		}, nil
	}}
	w := serve(newHandler(store), "POST", "/samples", `{"name": "s2", "IS_IN": "ss"}`)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Len(t, store.calls, 2)
	assert.Equal(t, call{"read", mutation.ParentCheck("Sample", "SampleSet"), map[string]interface{}{"id": "ss"}}, store.calls[0])
	assert.Equal(t, "ss", store.calls[1].params["target_0_id"])
}

func TestCreateRefused(t *testing.T) {
	parentRows := []jsonmap.Ordered{testutil.Ordered("a", testutil.Ordered("id", "ss"), "b", testutil.Ordered("name", "dup"))}

	refusedData := map[string]struct {
		path, body string
		rows       []jsonmap.Ordered // returned by a read
		problem    string
		code       string
	}{
		"NoName":       {"/projects", `{"alias": "x"}`, nil, "must specify a name", ""},
		"EmptyName":    {"/projects", `{"name": ""}`, nil, "must specify a name", ""},
		"Slash":        {"/projects", `{"name": "a/b"}`, nil, "forward slashes", ""},
		"NameExists":   {"/projects", `{"name": "p1"}`, []jsonmap.Ordered{testutil.Ordered("a", nil)}, "already have a resource", ""},
		"NoParent":     {"/samples", `{"name": "s"}`, nil, "missing the parent", ""},
		"ParentAbsent": {"/samples", `{"name": "s", "IS_IN": "nope"}`, nil, "does not match any node labeled as SampleSet", ""},
		"SiblingName":  {"/samples", `{"name": "dup", "IS_IN": "ss"}`, parentRows, "the name dup already exists", ""},
		"BadKey":       {"/projects", `{"name": "p", "colour": "red"}`, nil, "couldn't find colour", "SCHEMA_MISMATCH"},
		"BadValue":     {"/injectionsets", `{"name": "i", "IS_IN": "ss", "num": "lots"}`, parentRows, "must be convertible to integer", "VALIDATION"},
		"BadJSON":      {"/projects", `{"name": `, nil, "error decoding JSON", ""},
	}
	for name, data := range refusedData {
		store := &fakeStore{respond: func(c call) ([]jsonmap.Ordered, error) { return data.rows, nil }}
		w := serve(newHandler(store), "POST", data.path, data.body)

		require.Equal(t, http.StatusBadRequest, w.Code, name)
		message, code := errorOf(t, w)
		assert.Contains(t, message, data.problem, name)
		assert.Equal(t, data.code, code, name)
		for _, c := range store.calls {
			assert.Equal(t, "read", c.mode, "%s: nothing should be written", name)
		}
	}
}

func TestCreateNothingReturned(t *testing.T) {
	w := serve(newHandler(&fakeStore{}), "POST", "/instruments", `{"name": "hplc"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	message, _ := errorOf(t, w)
	assert.Contains(t, message, "error creating new Instrument")
}

func TestUpdate(t *testing.T) {
	store := &fakeStore{respond: func(c call) ([]jsonmap.Ordered, error) {
		return sourceRow("id", "i1", "num", int64(5)), nil
	}}
	w := serve(newHandler(store), "PATCH", "/injectionsets/i1", `{"num": 5, "TEST_LIST1": ["m1", "m2"]}`)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"id": "i1", "num": 5}`, w.Body.String())
	require.Len(t, store.calls, 1)
	assert.Equal(t, map[string]interface{}{
		"num":         int64(5),
		"source_id":   "i1",
		"target_0_id": "m1",
		"target_1_id": "m2",
	}, store.calls[0].params)
}

func TestUpdateRefused(t *testing.T) {
	for _, body := range []string{`{"name": "x"}`, `{"id": "x"}`, `{"IS_IN": "x"}`} {
		store := &fakeStore{}
		w := serve(newHandler(store), "PATCH", "/samples/s1", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.Empty(t, store.calls, body)
	}

	w := serve(newHandler(&fakeStore{}), "PATCH", "/samples/s1", `{"description": "d"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code) // nothing returned so it does not exist
}

func TestDelete(t *testing.T) {
	store := &fakeStore{}
	w := serve(newHandler(store), "DELETE", "/samplesets/ss1", "")

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, `"Deleted"`, w.Body.String())
	require.Len(t, store.calls, 2)
	c := mutation.Compiler{Schema: testutil.MustLabSchema()}
	assert.Equal(t, call{"read", c.Dependencies("SampleSet"), map[string]interface{}{"id": "ss1"}}, store.calls[0])
	del := mutation.Delete("SampleSet", "ss1")
	assert.Equal(t, call{"write", del.Text, del.Params}, store.calls[1])
}

func TestDeleteWithDependencies(t *testing.T) {
	store := &fakeStore{respond: func(c call) ([]jsonmap.Ordered, error) {
		return []jsonmap.Ordered{testutil.Ordered("deps", testutil.Ordered("id", "s1"))}, nil
	}}
	w := serve(newHandler(store), "DELETE", "/samplesets/ss1", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	message, _ := errorOf(t, w)
	assert.Contains(t, message, "still has 1 dependencies")
	require.Len(t, store.calls, 1)
}

func TestDeleteNoDependents(t *testing.T) {
	store := &fakeStore{}
	w := serve(newHandler(store), "DELETE", "/instruments/a{forwardSlash}b", "")

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, store.calls, 1)
	assert.Equal(t, "write", store.calls[0].mode)
	assert.Equal(t, "a/b", store.calls[0].params["source_id"])
}

func TestQuery(t *testing.T) {
	store := &fakeStore{respond: func(c call) ([]jsonmap.Ordered, error) {
		return []jsonmap.Ordered{testutil.Ordered(
			"Project", []interface{}{testutil.Ordered("name", "p1")},
			"Instrument", []interface{}{},
		)}, nil
	}}
	w := serve(newHandler(store), "POST", "/graphql",
		`{"query": "query(ignore) { Project(id: $id){ name } Instrument{ name } }", "variables": {"id": "p", "n": 3, "f": 1.5, "l": [1, {"x": 2}]}}`)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, `{"data":{"Project":[{"name":"p1"}],"Instrument":[]}}`, w.Body.String())
	require.Len(t, store.calls, 1)
	assert.Equal(t, "read", store.calls[0].mode)
	assert.True(t, strings.HasSuffix(store.calls[0].query, "RETURN Project,Instrument"), store.calls[0].query)
	assert.Equal(t, map[string]interface{}{
		"id": "p",
		"n":  int64(3),
		"f":  1.5,
		"l":  []interface{}{int64(1), map[string]interface{}{"x": int64(2)}},
	}, store.calls[0].params)
}

func TestQueryNoRows(t *testing.T) {
	w := serve(newHandler(&fakeStore{}), "POST", "/graphql/", `{"query": "{ Instrument{ name } }"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, `{"data":{}}`, w.Body.String())
}

func TestQueryRefused(t *testing.T) {
	refusedData := map[string]struct{ query, code string }{
		"Syntax":   {"{ Project{ name }", "SYNTAX"},
		"Mismatch": {"{ Project{ colour } }", "SCHEMA_MISMATCH"},
		"Empty":    {"{ }", "SYNTAX"},
	}
	for name, data := range refusedData {
		store := &fakeStore{}
		body, _ := json.Marshal(map[string]string{"query": data.query})
		w := serve(newHandler(store), "POST", "/graphql", string(body))

		assert.Equal(t, http.StatusBadRequest, w.Code, name)
		_, code := errorOf(t, w)
		assert.Equal(t, data.code, code, name)
		assert.Empty(t, store.calls, name)
	}
}

func TestSDL(t *testing.T) {
	w := serve(newHandler(&fakeStore{}, handler.WithGraphQLPath("gql/")), "GET", "/gql", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "type Project {")
	assert.Contains(t, w.Body.String(), "sampleSets: [SampleSet!]!")
}

func TestSDLReservedLabel(t *testing.T) {
	store := &fakeStore{respond: func(c call) ([]jsonmap.Ordered, error) {
		if c.mode == "write" {
			return sourceRow("id", "Query__q1", "name", "q1"), nil
		}
		return nil, nil
	}}
	h := handler.New(schema.MustBuild(schema.Raw{{Name: "Query"}}), map[string]string{"queries": "Query"}, store)

	w := serve(h, "GET", "/graphql", "")
	require.Equal(t, http.StatusNotImplemented, w.Code)
	_, code := errorOf(t, w)
	assert.Equal(t, "SCHEMA_CONFIG", code)

	// Everything else still works
	w = serve(h, "POST", "/queries", `{"name": "q1"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `[{"id": "Query__q1", "name": "q1"}]`, w.Body.String())
}

func TestRouting(t *testing.T) {
	routingData := map[string]struct {
		method, path string
		status       int
	}{
		"UnknownKey":    {"POST", "/nothing", http.StatusNotFound},
		"Root":          {"GET", "/", http.StatusNotFound},
		"TooDeep":       {"DELETE", "/projects/p/x", http.StatusNotFound},
		"GetResource":   {"GET", "/projects/p", http.StatusMethodNotAllowed},
		"PostWithID":    {"POST", "/projects/p", http.StatusMethodNotAllowed},
		"PatchNoID":     {"PATCH", "/projects", http.StatusMethodNotAllowed},
		"DeleteGraphQL": {"DELETE", "/graphql", http.StatusMethodNotAllowed},
	}
	for name, data := range routingData {
		w := serve(newHandler(&fakeStore{}), data.method, data.path, "{}")
		assert.Equal(t, data.status, w.Code, name)
	}
}

func TestStoreFailure(t *testing.T) {
	store := &fakeStore{respond: func(c call) ([]jsonmap.Ordered, error) { return nil, errors.New("connection refused") }}
	h := newHandler(store)

	w := serve(h, "DELETE", "/projects/p", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	message, code := errorOf(t, w)
	assert.Equal(t, "connection refused", message)
	assert.Equal(t, "", code)

	w = serve(h, "POST", "/graphql", `{"query": "{ Instrument{ name } }"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestNewPanics(t *testing.T) {
	assert.Panics(t, func() {
		handler.New(testutil.MustLabSchema(), map[string]string{"x": "Nope"}, &fakeStore{})
	})
}
