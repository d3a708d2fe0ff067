package cli

import (
	"context"
	stderrors "errors"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/turtacn/dockrmsd/internal/config"
	"github.com/turtacn/dockrmsd/internal/domain/structure"
	"github.com/turtacn/dockrmsd/internal/infrastructure/monitoring/logging"
	httpapi "github.com/turtacn/dockrmsd/internal/interfaces/http"
	"github.com/turtacn/dockrmsd/internal/interfaces/http/handlers"
	"github.com/turtacn/dockrmsd/internal/interfaces/http/middleware"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the scoring HTTP API",
		Long: `Start the HTTP API: POST /api/v1/score, GET /healthz, GET /readyz and
GET /metrics. The server stops gracefully on SIGINT or SIGTERM. When started
from a config file, log.level changes in that file apply without a restart.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default server.host:server.port)")

	return cmd
}

func runServe(cmd *cobra.Command, addr string) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	cfg := cliCtx.Config
	log := cliCtx.Logger
	if addr == "" {
		addr = cfg.Server.Addr()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	gin.SetMode(cfg.Server.Mode)

	deps, err := buildComponents(ctx, cliCtx, wants{cache: true, storage: true})
	if err != nil {
		return err
	}
	defer deps.Close()

	var checkers []handlers.HealthChecker
	scoreOpts := []handlers.ScoreHandlerOption{
		handlers.WithReadOptions(structure.WithStrict(cfg.Scoring.StrictSections)),
	}
	if deps.cache != nil {
		scoreOpts = append(scoreOpts, handlers.WithCache(deps.cache))
		checkers = append(checkers, handlers.NewChecker("redis", deps.redis.Ping))
	}
	if deps.storage != nil {
		storage := deps.storage
		checkers = append(checkers, handlers.NewChecker("minio", func(ctx context.Context) error {
			if st := storage.HealthCheck(ctx); !st.Healthy {
				return stderrors.New(st.Error)
			}
			return nil
		}))
	}

	routerCfg := httpapi.RouterConfig{
		ScoreHandler:  handlers.NewScoreHandler(deps.pipeline, log, scoreOpts...),
		HealthHandler: handlers.NewHealthHandler(Version, checkers...),
		Logging:       middleware.DefaultLoggingConfig(),
		MaxBodySize:   cfg.Server.MaxBodySize,
		Logger:        log,
	}
	if deps.metrics != nil {
		routerCfg.Metrics = deps.metrics
		routerCfg.MetricsHandler = deps.metrics.Handler()
	}

	srv := httpapi.NewServer(httpapi.ServerConfig{
		Addr:            addr,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, httpapi.NewRouter(routerCfg), log)

	if cliCtx.ConfigFile != "" {
		watchConfig(cliCtx.ConfigFile, log)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	if err := srv.Stop(context.Background()); err != nil {
		return err
	}
	return <-errCh
}

// watchConfig applies log.level edits to the running logger.
func watchConfig(path string, log logging.Logger) {
	setter, ok := log.(logging.LevelSetter)
	if !ok {
		return
	}
	err := config.Watch(path, func(cfg *config.Config) {
		if err := setter.SetLevel(cfg.Log.Level); err != nil {
			log.Warn("ignoring reloaded log level", logging.String("level", cfg.Log.Level), logging.Err(err))
			return
		}
		log.Info("configuration reloaded", logging.String("log_level", cfg.Log.Level))
	}, func(err error) {
		log.Warn("configuration reload failed", logging.Err(err))
	})
	if err != nil {
		log.Warn("config watch disabled", logging.String("path", path), logging.Err(err))
	}
}

//Personal.AI order the ending
