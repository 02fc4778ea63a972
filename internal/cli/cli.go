// Package cli implements the nodeflow command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/nodeflow/pkg/buildinfo"
	"github.com/matzehuels/nodeflow/pkg/cache"
	"github.com/matzehuels/nodeflow/pkg/engine"
	"github.com/matzehuels/nodeflow/pkg/errors"
	"github.com/matzehuels/nodeflow/pkg/graph"
	"github.com/matzehuels/nodeflow/pkg/node"
	"github.com/matzehuels/nodeflow/pkg/nodes"
	"github.com/matzehuels/nodeflow/pkg/observability"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "nodeflow"
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

	out      io.Writer
	reg      *node.Registry
	cfg      *Config
	cfgPath  string
	verbose  bool
	levelSet bool
}

// New creates a new CLI instance with a default logger. Command output
// goes to stdout; use [CLI.SetOutput] to redirect it.
func New(w io.Writer, level log.Level) *CLI {
	cfg := &Config{}
	cfg.SetDefaults()
	return &CLI{
		Logger: newLogger(w, level),
		out:    os.Stdout,
		reg:    nodes.DefaultRegistry(),
		cfg:    cfg,
	}
}

// SetLogLevel updates the logger's level. An explicit level takes
// precedence over log_level from the config file.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	c.levelSet = true
}

// SetOutput redirects command output.
func (c *CLI) SetOutput(w io.Writer) {
	c.out = w
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           appName,
		Short:         "Nodeflow executes dataflow graphs of processing nodes",
		Long:          `Nodeflow loads node graphs from JSON or YAML documents, executes them in dependency order and renders them as diagrams.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.SetOut(c.out)
	root.PersistentFlags().StringVar(&c.cfgPath, "config", "", "config file (default $XDG_CONFIG_HOME/nodeflow/config.toml)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(c.runCommand())
	root.AddCommand(c.orderCommand())
	root.AddCommand(c.nodesCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.versionCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// setup loads the config file and wires logging before any command runs.
func (c *CLI) setup(cmd *cobra.Command) error {
	cfg, undecoded, err := LoadConfig(c.cfgPath)
	if err != nil {
		return err
	}
	c.cfg = cfg
	for _, key := range undecoded {
		c.Logger.Warn("unknown config key", "key", key)
	}

	switch {
	case c.verbose:
		c.Logger.SetLevel(log.DebugLevel)
	case !c.levelSet:
		level, _ := log.ParseLevel(cfg.LogLevel)
		c.Logger.SetLevel(level)
	}

	observability.SetCacheHooks(logHooks{logger: c.Logger})
	cmd.SetContext(withLogger(cmd.Context(), c.Logger))
	return nil
}

// =============================================================================
// Factories
// =============================================================================

// newEngine creates an engine that logs node progress at debug level.
func (c *CLI) newEngine() *engine.Engine {
	return engine.New(
		engine.WithLogger(c.Logger),
		engine.WithHooks(logHooks{logger: c.Logger}),
	)
}

// newCache opens the configured artifact cache. Backends that fail to
// open degrade to a null cache with a warning; a cache is never required.
func (c *CLI) newCache(ctx context.Context, noCache bool) cache.Cache {
	if noCache || c.cfg.Cache.Backend == BackendNone {
		return cache.NewNullCache()
	}
	var (
		cc  cache.Cache
		err error
	)
	switch c.cfg.Cache.Backend {
	case BackendRedis:
		cc, err = cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     c.cfg.Cache.RedisAddr,
			Password: c.cfg.Cache.RedisPassword,
			DB:       c.cfg.Cache.RedisDB,
		})
	default:
		cc, err = cache.NewFileCache(c.cacheDir())
	}
	if err != nil {
		c.Logger.Warn("cache unavailable, continuing without it", "backend", c.cfg.Cache.Backend, "err", err)
		return cache.NewNullCache()
	}
	return cc
}

// loadGraph reads, validates and deserializes the document at path. Nodes
// that cannot be restored are reported as warnings.
func (c *CLI) loadGraph(path string) (*graph.Graph, graph.Document, error) {
	if err := errors.ValidateDocumentPath(path); err != nil {
		return nil, graph.Document{}, err
	}
	doc, err := graph.ReadFile(path)
	if err != nil {
		return nil, graph.Document{}, errors.FromLoad(err)
	}
	if err := errors.ValidateDocument(doc); err != nil {
		return nil, graph.Document{}, err
	}

	g := graph.New(graph.WithLogger(c.Logger))
	report, err := g.Deserialize(doc, c.reg)
	if err != nil {
		return nil, graph.Document{}, errors.FromLoad(err)
	}
	for _, sk := range report.Skipped {
		printWarning(c.out, "skipped node %s (%s): %s", sk.ID, sk.Name, sk.Reason)
	}
	if n := len(report.DroppedEdges); n > 0 {
		printWarning(c.out, "dropped %d edge(s) with missing endpoints", n)
	}
	for _, issue := range g.UndeclaredPorts() {
		c.Logger.Debug("undeclared port", "issue", issue.String())
	}
	return g, doc, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the configured cache directory, falling back to the XDG
// location (~/.cache/nodeflow/).
func (c *CLI) cacheDir() string {
	if c.cfg.Cache.Dir != "" {
		return c.cfg.Cache.Dir
	}
	dir, err := defaultCacheDir()
	if err != nil {
		return filepath.Join(os.TempDir(), appName)
	}
	return dir
}

func defaultCacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate home directory: %w", err)
	}
	return filepath.Join(home, ".cache", appName), nil
}

func defaultConfigPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate home directory: %w", err)
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}
