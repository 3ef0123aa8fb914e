package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/andrewwphillips/castnet"
	"github.com/andrewwphillips/castnet/internal/config"
	"github.com/andrewwphillips/castnet/internal/neo4jdb"
)

const shutdownTimeout = 10 * time.Second

// ServeOptions holds flags for the serve command
type ServeOptions struct {
	*RootOptions
	Address  string
	LogLevel string
}

// NewServeCommand creates the serve command
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Long: `Run the HTTP server for the generic endpoints (routed by url_key), the
query endpoint (graphql_path) and metrics (metrics_path).  Settings come from
the config file, then CASTNET_* environment variables, then flags.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if opts.Address != "" {
				c.Server.Address = opts.Address
			}
			if opts.LogLevel != "" {
				c.Log.Level = opts.LogLevel
			}
			if err := c.Validate(); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, c)
		},
	}

	cmd.Flags().StringVarP(&opts.Address, "address", "a", "", "address to listen on (eg :8080)")
	cmd.Flags().StringVar(&opts.LogLevel, "log-level", "", "log level (debug, info, warn, error)")
	return cmd
}

func runServe(ctx context.Context, c *config.Config) error {
	log, err := c.Log.Logger()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	log.Info("starting", zap.Stringer("config", c), zap.String("version", version))

	raw, err := castnet.LoadSchema(c.SchemaFile)
	if err != nil {
		return err
	}
	db, err := neo4jdb.Open(ctx, c.Neo4j, log.Named("neo4j"))
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	conn, err := castnet.New(raw, c.URLKey, db,
		castnet.WithLogger(log),
		castnet.WithLocation(c.Location),
		castnet.WithMetrics(reg),
		castnet.WithGraphQLPath(c.Server.GraphQLPath),
	)
	if err != nil {
		_ = db.Close(context.Background())
		return err
	}
	defer func() {
		if err := conn.Close(context.Background()); err != nil {
			log.Warn("closing database", zap.Error(err))
		}
	}()

	mux := http.NewServeMux()
	if c.Server.MetricsPath != "" {
		mux.Handle(c.Server.MetricsPath, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	}
	mux.Handle("/", conn.Handler())

	server := &http.Server{
		Addr:              c.Server.Address,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("address", c.Server.Address))
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
