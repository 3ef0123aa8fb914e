// Package config loads the settings of the castnet server.  Settings come from
// built-in defaults, then an optional YAML file, then CASTNET_* environment
// variables (and finally command line flags, which are handled by the caller).
package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/andrewwphillips/castnet/internal/handler"
	"github.com/andrewwphillips/castnet/internal/ident"
	"github.com/andrewwphillips/castnet/internal/neo4jdb"
)

// EnvPrefix starts the name of all environment variables that override settings
const EnvPrefix = "CASTNET_"

type (
	// Config holds all the settings
	Config struct {
		Neo4j      neo4jdb.Config    `yaml:"neo4j"`
		Server     Server            `yaml:"server"`
		Log        Log               `yaml:"log"`
		SchemaFile string            `yaml:"schema_file"`
		URLKey     map[string]string `yaml:"url_key"`  // first path segment => label
		Location   string            `yaml:"location"` // time zone of the dates in generated ids
	}

	// Server has the HTTP settings
	Server struct {
		Address     string `yaml:"address"`
		GraphQLPath string `yaml:"graphql_path"`
		MetricsPath string `yaml:"metrics_path"` // empty to not serve metrics
	}

	// Log has the logging settings
	Log struct {
		Level       string `yaml:"level"` // debug, info, warn or error
		Development bool   `yaml:"development"`
	}
)

// Defaults returns the built-in settings
func Defaults() *Config {
	return &Config{
		Neo4j: neo4jdb.Config{URI: "neo4j://localhost:7687", User: "neo4j"},
		Server: Server{
			Address:     ":8080",
			GraphQLPath: handler.DefaultGraphQLPath,
			MetricsPath: "/metrics",
		},
		Log:      Log{Level: "info"},
		Location: ident.DefaultLocation,
	}
}

// Load returns the defaults overridden by the YAML file (if path is not empty) then the
// environment.  Settings are not validated (see Validate).
func Load(path string) (*Config, error) {
	c := Defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, c); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}
	c.applyEnv()
	return c, nil
}

func (c *Config) applyEnv() {
	for name, setting := range map[string]*string{
		"NEO4J_URI":      &c.Neo4j.URI,
		"NEO4J_USER":     &c.Neo4j.User,
		"NEO4J_PASSWORD": &c.Neo4j.Password,
		"NEO4J_DATABASE": &c.Neo4j.Database,
		"ADDRESS":        &c.Server.Address,
		"GRAPHQL_PATH":   &c.Server.GraphQLPath,
		"METRICS_PATH":   &c.Server.MetricsPath,
		"LOG_LEVEL":      &c.Log.Level,
		"SCHEMA_FILE":    &c.SchemaFile,
		"LOCATION":       &c.Location,
	} {
		if v, ok := os.LookupEnv(EnvPrefix + name); ok {
			*setting = v
		}
	}
}

// Validate checks that the settings needed to run a server are present
func (c *Config) Validate() error {
	if c.SchemaFile == "" {
		return fmt.Errorf("no schema file given (set schema_file or %sSCHEMA_FILE)", EnvPrefix)
	}
	if c.Neo4j.URI == "" {
		return fmt.Errorf("no neo4j uri given")
	}
	if len(c.URLKey) == 0 {
		return fmt.Errorf("url_key is empty so no resources can be created")
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	return nil
}

// Logger builds a logger at the configured level
func (l Log) Logger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(l.Level)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	if l.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

// String returns the settings without the password, eg for logging
func (c *Config) String() string {
	keys := make([]string, 0, len(c.URLKey))
	for k := range c.URLKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return fmt.Sprintf("Config{Neo4j: %s@%s, HTTP: %s, Schema: %s, URLKeys: [%s]}",
		c.Neo4j.User, c.Neo4j.URI, c.Server.Address, c.SchemaFile, strings.Join(keys, " "))
}
