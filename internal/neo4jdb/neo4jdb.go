// Package neo4jdb runs generated queries against a Neo4j database.  Read and Write use
// managed transactions so the driver retries transient failures; Run is a plain
// auto-commit query.  Rows are returned as ordered maps keyed by the query's RETURN
// names, with nodes and relationships reduced to their properties.
package neo4jdb

import (
	"context"
	"fmt"
	"time"

	"github.com/dolmen-go/jsonmap"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
)

// Config says where the database is and how to log in
type Config struct {
	URI      string `yaml:"uri"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"` // empty for the server's default database
}

// DB is a connection pool to one database.  It is safe for concurrent use.
type DB struct {
	driver   neo4j.DriverWithContext
	database string
	log      *zap.Logger
}

// Open creates the driver and checks that the database can be reached
func Open(ctx context.Context, cfg Config, log *zap.Logger) (*DB, error) {
	if log == nil {
		log = zap.NewNop()
	}
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.User, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create driver for %s: %w", cfg.URI, err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.URI, err)
	}
	log.Info("connected to neo4j", zap.String("uri", cfg.URI), zap.String("database", cfg.Database))
	return &DB{driver: driver, database: cfg.Database, log: log}, nil
}

// Close releases all connections
func (db *DB) Close(ctx context.Context) error {
	return db.driver.Close(ctx)
}

// Read runs a query in a read transaction
func (db *DB) Read(ctx context.Context, query string, params map[string]interface{}) ([]jsonmap.Ordered, error) {
	return db.execute(ctx, neo4j.AccessModeRead, query, params)
}

// Write runs a query in a write transaction
func (db *DB) Write(ctx context.Context, query string, params map[string]interface{}) ([]jsonmap.Ordered, error) {
	return db.execute(ctx, neo4j.AccessModeWrite, query, params)
}

// Run runs a query in an auto-commit transaction, which is not retried.  It is needed
// for the few statements that can't run in a managed transaction.
func (db *DB) Run(ctx context.Context, query string, params map[string]interface{}) ([]jsonmap.Ordered, error) {
	session := db.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite, DatabaseName: db.database})
	defer session.Close(ctx)

	start := time.Now()
	result, err := session.Run(ctx, query, params)
	if err != nil {
		return nil, db.failed("run", query, err)
	}
	records, err := result.Collect(ctx)
	if err != nil {
		return nil, db.failed("run", query, err)
	}
	db.log.Debug("query", zap.String("mode", "run"), zap.Int("rows", len(records)), zap.Duration("elapsed", time.Since(start)))
	return Rows(records), nil
}

func (db *DB) execute(ctx context.Context, mode neo4j.AccessMode, query string, params map[string]interface{}) ([]jsonmap.Ordered, error) {
	name := "write"
	if mode == neo4j.AccessModeRead {
		name = "read"
	}
	session := db.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: mode, DatabaseName: db.database})
	defer session.Close(ctx)

	work := func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, query, params)
		if err != nil {
			return nil, err
		}
		return result.Collect(ctx)
	}

	start := time.Now()
	var r any
	var err error
	if mode == neo4j.AccessModeRead {
		r, err = session.ExecuteRead(ctx, work)
	} else {
		r, err = session.ExecuteWrite(ctx, work)
	}
	if err != nil {
		return nil, db.failed(name, query, err)
	}
	records := r.([]*neo4j.Record)
	db.log.Debug("query", zap.String("mode", name), zap.Int("rows", len(records)), zap.Duration("elapsed", time.Since(start)))
	return Rows(records), nil
}

func (db *DB) failed(mode, query string, err error) error {
	db.log.Error("query failed", zap.String("mode", mode), zap.String("query", query), zap.Error(err))
	return fmt.Errorf("%s query failed: %w", mode, err)
}
