package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/narrative/internal/server"
	"github.com/matzehuels/narrative/pkg/cache"
	"github.com/matzehuels/narrative/pkg/pipeline"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	source   sourceFlags
	engine   engineFlags
	addr     string
	backend  string
	redisURL string
}

// serveCommand creates the serve command, which exposes the engine over
// the corpus of one source as an HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the thread API over HTTP",
		Example: `  narrative serve --sqlite posts.db --addr :8080
  narrative serve --config narrative.toml --cache redis --redis-url redis://localhost:6379/0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), &opts)
		},
	}

	opts.source.register(cmd)
	opts.engine.register(cmd)
	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default "+server.DefaultAddr+")")
	cmd.Flags().StringVar(&opts.backend, "cache", "", "result cache: none, file, redis")
	cmd.Flags().StringVar(&opts.redisURL, "redis-url", "", "Redis URL for the redis cache")
	completeValues(cmd, "cache", cache.BackendNone, cache.BackendFile, cache.BackendRedis)

	return cmd
}

// serverConfig reads the [server] table and applies the flags on top.
func (c *CLI) serverConfig(opts *serveOpts) (server.Config, error) {
	var cfg server.Config
	if c.configPath != "" {
		loaded, err := server.LoadConfig(c.configPath)
		if err != nil {
			return server.Config{}, err
		}
		cfg = loaded
	}
	if opts.addr != "" {
		cfg.Addr = opts.addr
	}
	if opts.backend != "" {
		cfg.CacheBackend = opts.backend
	}
	if opts.redisURL != "" {
		cfg.RedisURL = opts.redisURL
	}
	if cfg.CacheBackend == cache.BackendFile && cfg.CacheDir == "" {
		dir, err := cacheDir()
		if err != nil {
			return server.Config{}, err
		}
		cfg.CacheDir = dir
	}
	cfg.SetDefaults()
	return cfg, cfg.Validate()
}

func (c *CLI) runServe(ctx context.Context, opts *serveOpts) error {
	cfg, err := c.serverConfig(opts)
	if err != nil {
		return err
	}
	engine, err := c.newEngine(ctx, opts.source, opts.engine)
	if err != nil {
		return err
	}

	store, err := cache.Open(ctx, cfg.CacheConfig())
	if err != nil {
		return err
	}
	runner := pipeline.NewRunner(store, nil, c.Logger)
	defer runner.Close()

	srv, err := server.New(engine, runner, cfg, c.Logger)
	if err != nil {
		return err
	}
	return srv.ListenAndServe(ctx)
}
