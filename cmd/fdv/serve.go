package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"fdv.tools/internal/config"
	"fdv.tools/internal/logging"
	"fdv.tools/internal/protocol"
	"fdv.tools/internal/query"
	"fdv.tools/internal/transport/httpapi"
	"fdv.tools/internal/transport/mcp"
	"fdv.tools/internal/transport/ws"
)

const shutdownTimeout = 5 * time.Second

type serveOptions struct {
	configPath string
	host       string
	port       int
	portScan   int
	logLevel   string
	devLog     bool
}

func newServeCmd(g *globalOptions) *cobra.Command {
	o := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the local HTTP server and web UI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := o.config(cmd, g)
			if err != nil {
				return err
			}
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()
			return serve(ctx, cfg)
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.configPath, "config", "", "YAML config file (fdv.yaml)")
	f.StringVar(&o.host, "host", "", "listen host (default 127.0.0.1)")
	f.IntVar(&o.port, "port", 0, "listen port (default 8765)")
	f.IntVar(&o.portScan, "port-scan", 0, "how many following ports to try when busy (default 10)")
	f.StringVar(&o.logLevel, "log-level", "", "debug, info, warn or error")
	f.BoolVar(&o.devLog, "dev-log", false, "human readable console logs")
	return cmd
}

// config layers flags over file and environment.
func (o *serveOptions) config(cmd *cobra.Command, g *globalOptions) (config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return cfg, err
	}
	f := cmd.Flags()
	if f.Changed("host") {
		cfg.Host = o.host
	}
	if f.Changed("port") {
		cfg.Port = o.port
	}
	if f.Changed("port-scan") {
		cfg.PortScan = o.portScan
	}
	if f.Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	if f.Changed("dev-log") {
		cfg.DevLog = o.devLog
	}
	if g.theme != "" {
		cfg.Theme = g.theme
	}
	if g.dataset != "" {
		cfg.Dataset = g.dataset
	}
	if g.datasetFile != "" {
		cfg.DatasetFile = g.datasetFile
	}
	if g.verbose {
		cfg.LogLevel = "debug"
	}
	cfg.Normalize()
	return cfg, cfg.Validate()
}

func serve(ctx context.Context, cfg config.Config) error {
	logger, err := logging.New(cfg.LogLevel, cfg.DevLog)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ds, err := loadDataset(cfg.Dataset, cfg.DatasetFile, logger)
	if err != nil {
		logger.Error("load dataset", zap.Error(err))
		return err
	}
	if err := protocol.CheckSchemas(); err != nil {
		logger.Error("compile schemas", zap.Error(err))
		return err
	}

	svc := query.New(ds)
	live := ws.NewServer(svc, logger.Named("ws"))
	api := httpapi.New(svc, httpapi.Options{
		Logger:   logger.Named("http"),
		Theme:    cfg.Theme,
		WS:       live.Handler(),
		WSActive: live.Active,
		MCP:      mcp.NewServer(svc, logger.Named("mcp")).Handler(),
	})

	ln, err := httpapi.Listen(cfg.Host, cfg.Port, cfg.PortScan, logger)
	if err != nil {
		logger.Error("bind", zap.Error(err))
		return err
	}
	srv := &http.Server{
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	logger.Info("listening",
		zap.String("url", "http://"+ln.Addr().String()),
		zap.String("variant", ds.Variant()),
		zap.String("digest", ds.Digest()),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("shutting down")
		return srv.Shutdown(sctx)
	})
	if err := g.Wait(); err != nil {
		logger.Error("server stopped", zap.Error(err))
		return err
	}
	logger.Info("bye")
	return nil
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
