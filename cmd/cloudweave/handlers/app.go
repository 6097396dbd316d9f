// Package handlers implements the business logic for CLI commands.
//
// Each handler loads the configuration, builds the backend client and the
// provider adapters, runs one operation and writes the result to the
// command's output. Dependencies that talk to the terminal are package
// variables so tests can replace them.
package handlers

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-logr/logr"
	"github.com/mattn/go-isatty"

	"github.com/jc-discdev/MIauCloudWeave-Proxmox/internal/cluster"
	"github.com/jc-discdev/MIauCloudWeave-Proxmox/internal/config"
	"github.com/jc-discdev/MIauCloudWeave-Proxmox/internal/logging"
	"github.com/jc-discdev/MIauCloudWeave-Proxmox/internal/platform/api"
	"github.com/jc-discdev/MIauCloudWeave-Proxmox/internal/provider"
	"github.com/jc-discdev/MIauCloudWeave-Proxmox/internal/telemetry"
	"github.com/jc-discdev/MIauCloudWeave-Proxmox/internal/wizard"
)

// Globals carries the root command's persistent flags.
type Globals struct {
	ConfigPath    string
	APIURL        string
	Verbosity     int
	LogFormat     string
	MetricsListen string
	Trace         bool
	Output        string

	In     io.Reader
	Out    io.Writer
	ErrOut io.Writer
}

// Factory function variables - can be replaced in tests.
var (
	// isInteractive reports whether the console is attached to a terminal.
	isInteractive = func() bool {
		return isTerminal(os.Stdout) && isTerminal(os.Stdin)
	}

	// confirmPrompt asks a yes/no question.
	confirmPrompt = wizard.Confirm
)

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// app is the runtime shared by every command.
type app struct {
	cfg      *config.Config
	logger   logr.Logger
	api      *api.Client
	registry *provider.Registry
	out      io.Writer
	in       io.Reader
	format   string

	closers []func(context.Context) error
}

// newApp loads the configuration and wires logging, telemetry, the backend
// client and the provider registry.
func newApp(ctx context.Context, g Globals) (*app, error) {
	if g.Out == nil {
		g.Out = os.Stdout
	}
	if g.ErrOut == nil {
		g.ErrOut = os.Stderr
	}
	if g.In == nil {
		g.In = os.Stdin
	}

	format, err := parseOutputFormat(g.Output)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(g.ConfigPath)
	if err != nil {
		return nil, err
	}
	if g.APIURL != "" {
		cfg.API.BaseURL = g.APIURL
	}
	if g.MetricsListen != "" {
		cfg.Metrics.Listen = g.MetricsListen
	}
	if g.Trace {
		cfg.Tracing.Stdout = true
	}

	logFormat := g.LogFormat
	if logFormat == "" {
		logFormat = logging.FormatConsole
	}
	logger, err := logging.New(g.ErrOut, logFormat, g.Verbosity)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:    cfg,
		logger: logger,
		out:    g.Out,
		in:     g.In,
		format: format,
	}

	if cfg.Tracing.Stdout {
		shutdown, err := telemetry.SetupTracing(g.ErrOut)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, shutdown)
	}

	if cfg.Metrics.Listen != "" {
		srv, err := telemetry.ListenMetrics(cfg.Metrics.Listen, logger)
		if err != nil {
			a.close()
			return nil, err
		}
		srvCtx, cancel := context.WithCancel(ctx)
		go func() {
			if err := srv.Serve(srvCtx); err != nil {
				logger.Error(err, "metrics server stopped")
			}
		}()
		a.closers = append(a.closers, func(context.Context) error {
			cancel()
			return nil
		})
		logger.V(1).Info("serving metrics", "addr", srv.Addr())
	}

	opts := []api.ClientOption{api.WithLogger(logger.WithName("api"))}
	if cfg.API.Token != "" {
		opts = append(opts, api.WithToken(cfg.API.Token))
	}
	if cfg.API.Timeout > 0 {
		opts = append(opts, api.WithTimeout(cfg.API.Timeout))
	}
	a.api = api.NewClient(cfg.API.BaseURL, opts...)
	a.registry = provider.NewRegistry(a.api,
		provider.WithGCPZone(cfg.Defaults.GCPZone),
		provider.WithAWSRegion(cfg.Defaults.AWSRegion),
		provider.WithProxmoxVMType(cfg.Defaults.ProxmoxVMType),
	)
	return a, nil
}

// close releases telemetry resources. Errors are logged.
func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			a.logger.Error(err, "shutdown failed")
		}
	}
	a.closers = nil
}

// clusterView builds the cluster view over the cloud providers, plus the
// hypervisor when includeProxmox is set.
func (a *app) clusterView(includeProxmox bool) *cluster.View {
	var sources []cluster.Source
	if includeProxmox || a.cfg.Refresh.IncludeProxmox {
		sources = append(sources, cluster.Source{Lister: a.registry.Proxmox()})
	}
	for _, name := range []provider.Name{provider.GCP, provider.AWS} {
		adapter, err := a.registry.Adapter(name)
		if err != nil {
			continue
		}
		sources = append(sources, cluster.Source{Lister: adapter})
	}
	return cluster.NewView(sources, cluster.WithViewLogger(a.logger.WithName("clusters")))
}

// confirm asks before a destructive action. Without a terminal, only an
// explicit --yes allows it.
func (a *app) confirm(ctx context.Context, yes bool, title, description string) (bool, error) {
	if yes {
		return true, nil
	}
	if !isInteractive() {
		return false, fmt.Errorf("%s: refusing without --yes on a non-interactive terminal", title)
	}
	return confirmPrompt(ctx, title, description)
}

// printf writes user-facing output.
func (a *app) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(a.out, format, args...)
}
