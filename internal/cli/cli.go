// Package cli implements the stackflex command-line interface.
//
// # Commands
//
//   - layout: compute node positions for a graph file
//   - tree: print the flexbox hierarchy of a graph as DOT or SVG
//   - serve: run the HTTP API
//   - cache: manage the layout cache
//   - completion: generate shell completion scripts
//
// # Configuration
//
// Every command reads an optional config file given with --config or the
// STACKFLEX_CONFIG environment variable. Flags override file values.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stackflex/pkg/buildinfo"
	"github.com/matzehuels/stackflex/pkg/cache"
	"github.com/matzehuels/stackflex/pkg/config"
	"github.com/matzehuels/stackflex/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "stackflex"

	// configEnv names the environment variable holding a config path.
	configEnv = "STACKFLEX_CONFIG"
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

	out        io.Writer
	configPath string
	verbose    bool
	cfg        *config.File
}

// New creates a CLI that logs to w at the given level.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		out:    os.Stdout,
		cfg:    config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// SetOutput redirects command output, which defaults to stdout.
func (c *CLI) SetOutput(w io.Writer) { c.out = w }

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           appName,
		Short:         "Stackflex lays out hierarchical graphs with flexbox and force simulation",
		Long:          `Stackflex computes node positions for graphs. Flexbox layout nests nodes by their keys ("a,b" is a child of "a"); force layout places nodes with a simulation and resolves overlaps.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig(cmd)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (.toml, .yaml); also $"+configEnv)

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.treeCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file, if any, and applies its log level
// unless --verbose was given.
func (c *CLI) loadConfig(cmd *cobra.Command) error {
	if c.configPath == "" {
		c.configPath = os.Getenv(configEnv)
	}
	if c.configPath != "" {
		f, err := config.Load(c.configPath)
		if err != nil {
			return err
		}
		c.cfg = f
		c.Logger.Debug("loaded config", "path", c.configPath)
	}
	if c.verbose {
		c.SetLogLevel(LogDebug)
	} else if c.configPath != "" {
		c.SetLogLevel(c.cfg.LogLevel())
	}
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner backed by the configured cache.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	store, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	r := pipeline.NewRunner(store, nil, c.Logger)
	r.TTL = c.cfg.Cache.TTL.Duration
	return r, nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch c.cfg.Cache.Backend {
	case config.CacheNone:
		return cache.NewNullCache(), nil
	case config.CacheRedis:
		return cache.NewRedisCache(ctx, cache.RedisOptions{URL: c.cfg.Cache.RedisURL})
	}
	dir, err := c.cacheDir()
	if err != nil {
		c.Logger.Warn("no cache directory, caching disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the configured cache directory, else
// $XDG_CACHE_HOME/stackflex, else the platform user cache directory.
func (c *CLI) cacheDir() (string, error) {
	if c.cfg.Cache.Dir != "" {
		return c.cfg.Cache.Dir, nil
	}
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	return cache.DefaultDir()
}

// =============================================================================
// Options Helpers
// =============================================================================

// layoutOptions overlays flag values on the config file's layout section.
func (c *CLI) layoutOptions(flags pipeline.Options) pipeline.Options {
	opts := flags.Overlay(c.cfg.PipelineOptions())
	opts.Logger = c.Logger
	return opts
}
