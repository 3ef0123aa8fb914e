package castnet

// options.go handles options that can be used to control a Conn.
// Most options are just passed on to the handler. (See internal/handler/options.go
// for details on how closures are used to handle options.)

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/andrewwphillips/castnet/internal/handler"
)

// WithLogger sets the logger.  Queries are logged at debug level and database failures at error level.
func WithLogger(log *zap.Logger) func(*Conn) {
	return func(c *Conn) {
		c.log = log
	}
}

// WithIDGenerator replaces the function that makes the id of a new node from its label and name
func WithIDGenerator(newID func(label, name string) string) func(*Conn) {
	return func(c *Conn) {
		c.newID = newID
	}
}

// WithLocation sets the time zone (IANA name) of the date included in generated ids.
// It has no effect if WithIDGenerator is also used.
func WithLocation(name string) func(*Conn) {
	return func(c *Conn) {
		c.location = name
	}
}

// WithMetrics registers request and database metrics with reg
func WithMetrics(reg prometheus.Registerer) func(*Conn) {
	return func(c *Conn) {
		m, err := handler.NewMetrics(reg)
		if err != nil {
			if c.optErr == nil {
				c.optErr = err
			}
			return
		}
		c.metrics = m
	}
}

// WithGraphQLPath sets the path of the selection-language endpoint of the Handler
func WithGraphQLPath(path string) func(*Conn) {
	return func(c *Conn) {
		c.graphQLPath = path
	}
}
