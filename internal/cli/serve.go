package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/beeswarm/pkg/cache"
	"github.com/matzehuels/beeswarm/pkg/observability"
	"github.com/matzehuels/beeswarm/pkg/pipeline"
	"github.com/matzehuels/beeswarm/pkg/server"
	"github.com/matzehuels/beeswarm/pkg/store"
)

type serveOpts struct {
	addr      string
	maxBody   int64
	timeout   time.Duration
	storeSize int
	storeTTL  time.Duration
	database  string
}

// serveCommand runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{
		addr:      ":8080",
		maxBody:   server.DefaultMaxBodyBytes,
		timeout:   60 * time.Second,
		storeSize: 1000,
		database:  store.DefaultDatabase,
	}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the layout API over HTTP",
		Long: `Serve the layout API over HTTP.

Backends are chosen from the environment:

  BEESWARM_REDIS_URL   shared Redis cache (default: local file cache)
  BEESWARM_MONGO_URI   MongoDB layout store (default: in-memory store)

Prometheus metrics are exposed on /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "listen address")
	cmd.Flags().Int64Var(&opts.maxBody, "max-body", opts.maxBody, "maximum request body size in bytes")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", opts.timeout, "per-request timeout")
	cmd.Flags().IntVar(&opts.storeSize, "store-size", opts.storeSize, "layouts kept by the in-memory store")
	cmd.Flags().DurationVar(&opts.storeTTL, "store-ttl", 0, "expire stored layouts after this long (MongoDB only)")
	cmd.Flags().StringVar(&opts.database, "database", opts.database, "MongoDB database name")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts serveOpts) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	hooks := observability.NewPrometheusHooks(reg)
	observability.SetPipelineHooks(hooks)
	observability.SetCacheHooks(hooks)
	observability.SetHTTPHooks(hooks)
	defer observability.Reset()

	cc, keyer, err := serverCache(ctx)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	runner := pipeline.NewRunner(cache.Instrument(cc), keyer, c.Logger)
	defer runner.Close()

	st, err := c.openStore(ctx, opts)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := st.Close(closeCtx); err != nil {
			c.Logger.Warn("close store", "err", err)
		}
	}()

	srv := server.New(runner, st, c.Logger,
		server.WithGatherer(reg),
		server.WithMaxBodyBytes(opts.maxBody),
		server.WithTimeout(opts.timeout),
	)
	return srv.ListenAndServe(ctx, opts.addr)
}

func (c *CLI) openStore(ctx context.Context, opts serveOpts) (store.Store, error) {
	uri := os.Getenv(envMongoURI)
	if uri == "" {
		c.Logger.Info("using in-memory layout store", "capacity", opts.storeSize)
		return store.NewMemoryStore(opts.storeSize), nil
	}
	var mopts []store.MongoOption
	if opts.storeTTL > 0 {
		mopts = append(mopts, store.WithTTL(opts.storeTTL))
	}
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	st, err := store.NewMongoStore(connectCtx, uri, opts.database, mopts...)
	if err != nil {
		return nil, err
	}
	c.Logger.Info("using MongoDB layout store", "database", opts.database)
	return st, nil
}
