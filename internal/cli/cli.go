package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/narrative/pkg/buildinfo"
	"github.com/matzehuels/narrative/pkg/cache"
	"github.com/matzehuels/narrative/pkg/narrative"
	"github.com/matzehuels/narrative/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "narrative"

	// defaultResultFile is where threads writes its result when -o is not given.
	defaultResultFile = "result.json"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// configPath is the --config flag. Empty means built-in defaults.
	configPath string
	verbose    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Narrative builds story threads through a stream of posts",
		Long: `Narrative picks an anchor post from a time-ordered stream, gathers the posts
similar to it, links them into a graph that only runs forward in time and
extracts the threads of posts leading to and away from the anchor.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if c.verbose {
				c.SetLogLevel(LogDebug)
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "configuration file (TOML)")

	root.AddCommand(c.threadsCommand())
	root.AddCommand(c.queryCommand())
	root.AddCommand(c.dotCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.importCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	cache, err := newCache(noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cache, nil, c.Logger), nil
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Engine Options
// =============================================================================

// engineFlags are threshold overrides. Flags left unset keep the
// configured value.
type engineFlags struct {
	text    float64
	overall float64
	edge    float64
	cmd     *cobra.Command
}

func (f *engineFlags) register(cmd *cobra.Command) {
	f.cmd = cmd
	cmd.Flags().Float64Var(&f.text, "text-threshold", 0, "minimum textual similarity for a pair to be scored")
	cmd.Flags().Float64Var(&f.overall, "overall-threshold", 0, "minimum similarity to the anchor to join the set")
	cmd.Flags().Float64Var(&f.edge, "edge-threshold", 0, "minimum similarity for two set members to be linked")
}

// apply copies the flags given on the command line into opts. A flag given
// as 0 keeps the threshold at zero.
func (f engineFlags) apply(opts *narrative.Options) {
	for _, fl := range []struct {
		name, key string
		value     float64
		dst       *float64
	}{
		{"text-threshold", "text_similarity_threshold", f.text, &opts.TextSimilarityThreshold},
		{"overall-threshold", "overall_similarity_threshold", f.overall, &opts.OverallSimilarityThreshold},
		{"edge-threshold", "dag_edge_threshold", f.edge, &opts.DAGEdgeThreshold},
	} {
		if f.cmd == nil || !f.cmd.Flags().Changed(fl.name) {
			continue
		}
		*fl.dst = fl.value
		if fl.value == 0 {
			opts.KeepZero(fl.key)
		}
	}
}

// engineOptions reads the [engine] table of the config file, if any, and
// applies the flag overrides on top.
func (c *CLI) engineOptions(f engineFlags) (narrative.Options, error) {
	var opts narrative.Options
	if c.configPath != "" {
		loaded, err := narrative.LoadOptions(c.configPath)
		if err != nil {
			return narrative.Options{}, err
		}
		opts = loaded
	}
	f.apply(&opts)
	opts.Logger = c.Logger
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return narrative.Options{}, err
	}
	return opts, nil
}

// newEngine loads the corpus from src and creates an engine over it.
func (c *CLI) newEngine(ctx context.Context, src sourceFlags, f engineFlags) (*narrative.Engine, error) {
	opts, err := c.engineOptions(f)
	if err != nil {
		return nil, err
	}
	corpus, err := c.loadCorpus(ctx, src)
	if err != nil {
		return nil, err
	}
	return narrative.New(corpus, opts)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/narrative/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
