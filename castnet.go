package castnet

// castnet.go provides the Conn type which compiles requests into queries and runs them

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dolmen-go/jsonmap"
	"go.uber.org/zap"

	"github.com/andrewwphillips/castnet/internal/codegen"
	"github.com/andrewwphillips/castnet/internal/errs"
	"github.com/andrewwphillips/castnet/internal/handler"
	"github.com/andrewwphillips/castnet/internal/ident"
	"github.com/andrewwphillips/castnet/internal/mutation"
	"github.com/andrewwphillips/castnet/internal/params"
	"github.com/andrewwphillips/castnet/internal/schema"
)

// ErrNoDatabase is returned when running a query on a Conn created without a database
var ErrNoDatabase = errors.New("castnet.Conn has no database")

// modes of running a query, used in logs and metric labels
const (
	modeRead  = "read"
	modeWrite = "write"
	modeRun   = "run"
)

// HTTP methods accepted by RequestToCypher
const (
	MethodCreate = http.MethodPost
	MethodUpdate = http.MethodPatch
)

type (
	// Database runs queries, returning rows keyed (in order) by the query's RETURN names.
	// It is implemented by neo4jdb.DB.
	Database = handler.Store

	// Conn compiles requests against a schema and runs them using a Database.
	// It is safe for concurrent use.
	Conn struct {
		schema   *schema.Schema
		urlKey   map[string]string
		db       Database
		compiler mutation.Compiler

		log         *zap.Logger
		metrics     *handler.Metrics
		newID       func(label, name string) string
		location    string
		graphQLPath string
		optErr      error // first error from an option
	}
)

// New normalizes and checks the schema and returns a connection that uses db.  urlKey maps
// the first segment of a request path to a label (see Handler).  db may be nil if the
// connection is only used to compile queries, in which case running a query returns
// ErrNoDatabase.  An error of kind ErrConfig is returned if the schema or urlKey is invalid.
func New(raw Schema, urlKey map[string]string, db Database, options ...func(*Conn)) (*Conn, error) {
	s, err := schema.Build(raw)
	if err != nil {
		return nil, err
	}
	for key, label := range urlKey {
		if _, ok := s.Label(label); !ok {
			return nil, errs.New(errs.Config, "URL key %q refers to unknown label %q", key, label)
		}
	}

	c := &Conn{schema: s, urlKey: urlKey, db: db}
	for _, option := range options {
		option(c)
	}
	if c.optErr != nil {
		return nil, c.optErr
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	if c.newID == nil {
		if c.location == "" {
			c.location = ident.DefaultLocation
		}
		c.newID = ident.NewGenerator(c.location).ID
	}
	c.compiler = mutation.Compiler{Schema: s, NewID: c.newID}
	return c, nil
}

// MustNew is the same as New but panics on error
func MustNew(raw Schema, urlKey map[string]string, db Database, options ...func(*Conn)) *Conn {
	c, err := New(raw, urlKey, db, options...)
	if err != nil {
		panic("castnet.MustNew - " + err.Error())
	}
	return c
}

// RequestToCypher compiles a create (MethodCreate) or update (MethodUpdate) of a node
// of the label.  sourceID is the id of the node to update and is ignored for a create.
func (c *Conn) RequestToCypher(label, sourceID string, payload jsonmap.Ordered, method string) (Query, error) {
	switch method {
	case MethodCreate:
		return c.compiler.Create(label, payload)
	case MethodUpdate, "":
		return c.compiler.Update(label, sourceID, payload)
	}
	return Query{}, errs.New(errs.Validation, "method %s can't be compiled (use %s or %s)", method, MethodCreate, MethodUpdate)
}

// DeleteCypher compiles the (soft) delete of a node
func (c *Conn) DeleteCypher(label, sourceID string) Query {
	return mutation.Delete(label, sourceID)
}

// CheckDependencies returns a query that finds nodes that are IS_IN a node of the
// label (with id bound as $id), or an empty string if no label can be
func (c *Conn) CheckDependencies(label string) string {
	return c.compiler.Dependencies(label)
}

// GQLToCypher compiles a selection-language query
func (c *Conn) GQLToCypher(query string) (string, error) {
	return codegen.Compile(c.schema, query)
}

// ParseParams splits a payload into relationship assignments (in order, one per target
// id) and attribute values cast to their declared types
func (c *Conn) ParseParams(label string, payload jsonmap.Ordered) ([]Ref, jsonmap.Ordered, error) {
	r, err := params.Classify(c.schema, label, payload)
	if err != nil {
		return nil, jsonmap.Ordered{}, err
	}
	return r.Refs, r.Attrs, nil
}

// ConvertValue converts a value for an attribute of the label.  Dates and datetimes
// accept the formats of ConvertDateTime.
func (c *Conn) ConvertValue(label, attr string, value interface{}) (interface{}, error) {
	l, ok := c.schema.Label(label)
	if !ok {
		return nil, errs.New(errs.Mismatch, "label %q not found", label)
	}
	caster, ok := l.Attribute(attr)
	if !ok {
		return nil, errs.New(errs.Mismatch, "attribute %q not found in %s", attr, label)
	}
	if caster.Temporal() {
		s, ok := value.(string)
		if !ok {
			return nil, errs.New(errs.Validation, "for attribute %q, %v is not a string", attr, value)
		}
		r, err := ConvertDateTime(s)
		if err != nil {
			return nil, errs.Wrap(errs.Validation, err, "for attribute %q", attr)
		}
		return r, nil
	}
	r, err := caster.Cast(value)
	if err != nil {
		return nil, errs.Wrap(errs.Validation, err, "for attribute %q, '%v' must be convertible to %s", attr, value, caster)
	}
	return r, nil
}

// SDL returns the GraphQL schema describing what can be selected.  An error of kind
// ErrConfig is returned if a label name is reserved by GraphQL (eg Query or Int).
func (c *Conn) SDL() (string, error) {
	return c.schema.SDL()
}

// Read runs a query in a read transaction
func (c *Conn) Read(ctx context.Context, query string, params map[string]interface{}) ([]jsonmap.Ordered, error) {
	return c.run(ctx, modeRead, query, params)
}

// Write runs a query in a write transaction
func (c *Conn) Write(ctx context.Context, query string, params map[string]interface{}) ([]jsonmap.Ordered, error) {
	return c.run(ctx, modeWrite, query, params)
}

// Run runs a query outside a managed transaction (eg for statements that manage their own
// transactions).  If the database has no Run method the query is run as a Write.
func (c *Conn) Run(ctx context.Context, query string, params map[string]interface{}) ([]jsonmap.Ordered, error) {
	return c.run(ctx, modeRun, query, params)
}

// WriteQuery runs a compiled mutation
func (c *Conn) WriteQuery(ctx context.Context, q Query) ([]jsonmap.Ordered, error) {
	return c.Write(ctx, q.Text, q.Params)
}

// runner is implemented by databases that can run a query outside a managed transaction
type runner interface {
	Run(ctx context.Context, query string, params map[string]interface{}) ([]jsonmap.Ordered, error)
}

func (c *Conn) run(ctx context.Context, mode string, query string, params map[string]interface{}) ([]jsonmap.Ordered, error) {
	if c.db == nil {
		return nil, ErrNoDatabase
	}
	f := c.db.Write
	switch mode {
	case modeRead:
		f = c.db.Read
	case modeRun:
		if r, ok := c.db.(runner); ok {
			f = r.Run
		} else {
			mode = modeWrite
		}
	}
	c.log.Debug(mode, zap.String("query", query), zap.Any("params", params))
	start := time.Now()
	rows, err := f(ctx, query, params)
	c.metrics.ObserveDB(mode, time.Since(start))
	if err != nil {
		c.log.Error(mode+" failed", zap.Error(err))
		return nil, err
	}
	return rows, nil
}

// ReadGraphQL compiles and runs a selection-language query.  The result has an entry for
// each top level field, in the order they were selected.
func (c *Conn) ReadGraphQL(ctx context.Context, query string, variables map[string]interface{}) (jsonmap.Ordered, error) {
	text, err := c.GQLToCypher(query)
	if err != nil {
		return jsonmap.Ordered{}, err
	}
	if variables == nil {
		variables = map[string]interface{}{}
	}
	rows, err := c.Read(ctx, text, variables)
	if err != nil {
		return jsonmap.Ordered{}, err
	}
	if len(rows) == 0 {
		return jsonmap.Ordered{Data: map[string]interface{}{}}, nil
	}
	return rows[0], nil
}

// Handler returns an HTTP handler for the generic create/update/delete endpoints
// (routed using the URL keys) and the selection-language endpoint
func (c *Conn) Handler() http.Handler {
	return handler.New(c.schema, c.urlKey, c.db,
		handler.WithLogger(c.log),
		handler.WithIDGenerator(c.newID),
		handler.WithMetrics(c.metrics),
		handler.WithGraphQLPath(c.graphQLPath),
	)
}

// Close closes the database if it can be closed
func (c *Conn) Close(ctx context.Context) error {
	if closer, ok := c.db.(interface{ Close(context.Context) error }); ok {
		return closer.Close(ctx)
	}
	return nil
}
