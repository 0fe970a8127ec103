package cli

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stackflex/pkg/buildinfo"
	"github.com/matzehuels/stackflex/pkg/config"
	"github.com/matzehuels/stackflex/pkg/observability/prom"
	"github.com/matzehuels/stackflex/pkg/pipeline"
	"github.com/matzehuels/stackflex/pkg/server"
)

// serveCommand creates the serve command for the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
		flags   pipeline.Options
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the layout API over HTTP",
		Long: `Serve the layout API over HTTP.

Endpoints: POST /v1/layout, POST /v1/tree, GET /v1/algorithms, GET /healthz
and GET /metrics (Prometheus). Layout flags set the defaults for requests
that omit an option. With --config, edits to the file's layout section are
applied without a restart.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, noCache, flags)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default :8080)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	addLayoutFlags(cmd, &flags)
	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr string, noCache bool, flags pipeline.Options) error {
	if addr == "" {
		addr = c.cfg.Server.Addr
	}
	c.Logger.Info(buildinfo.String())

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom.New(reg).Install()

	srv := server.New(server.Config{
		Runner:       runner,
		Defaults:     c.layoutOptions(flags),
		Logger:       c.Logger,
		MaxBodyBytes: c.cfg.Server.MaxBodyBytes,
		Timeout:      c.cfg.Server.Timeout.Duration,
		Metrics:      promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	})

	if c.configPath != "" {
		loader, err := config.NewLoader(c.configPath, c.Logger)
		if err != nil {
			return err
		}
		loader.OnChange(func(f *config.File) {
			srv.SetDefaults(flags.Overlay(f.PipelineOptions()))
			c.Logger.Info("request defaults reloaded", "algorithm", f.Layout.Algorithm)
		})
		stop, err := loader.Watch()
		if err != nil {
			c.Logger.Warn("config watcher unavailable, hot reload disabled", "err", err)
		} else {
			defer stop()
		}
	}

	return srv.ListenAndServe(ctx, addr)
}
