package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/amirasaad/axeria/docs"
	"github.com/amirasaad/axeria/infra/initializer"
	"github.com/amirasaad/axeria/infra/scheduler"
	"github.com/amirasaad/axeria/pkg/app"
	"github.com/amirasaad/axeria/pkg/config"
	"github.com/amirasaad/axeria/webapi"
	log "github.com/charmbracelet/log"
	"github.com/gofiber/fiber/v2"
)

const shutdownTimeout = 15 * time.Second

// @title Axeria API
// @version 1.0.0
// @description Trading platform API: funding, portfolios, copy trading, live trades and KYC.
// @contact.name API Support
// @host localhost:3000
// @BasePath /
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description "Enter your Bearer token in the format: `Bearer {token}`"
func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load(".env")
	if err != nil {
		return fmt.Errorf("failed to load application configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := newServer(ctx, cfg)
	if err != nil {
		return err
	}
	defer srv.close()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv.logger.Info("Starting server",
		"env", cfg.Env,
		"address", addr,
		"scheme", cfg.Server.Scheme,
	)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.fiber.Listen(addr) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	srv.logger.Info("Shutting down")
	return srv.fiber.ShutdownWithTimeout(shutdownTimeout)
}

type server struct {
	fiber     *fiber.App
	scheduler *scheduler.Scheduler
	resources *initializer.Resources
	logger    *slog.Logger
}

// newServer wires the dependencies, the services and the HTTP app, and
// starts the scheduler when it is enabled.
func newServer(ctx context.Context, cfg *config.App) (*server, error) {
	res, err := initializer.InitializeDependencies(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	a := app.New(res.Deps, cfg)
	srv := &server{
		fiber:     webapi.SetupApp(a),
		resources: res,
		logger:    res.Deps.Logger,
	}

	if cfg.Scheduler != nil && cfg.Scheduler.Enabled {
		srv.scheduler, err = scheduler.New(cfg.Scheduler, a.LiveTradeService, a.CopyTradeService, srv.logger)
		if err != nil {
			_ = res.Close()
			return nil, err
		}
		srv.scheduler.Start()
	}
	return srv, nil
}

func (s *server) close() {
	if s.scheduler != nil {
		select {
		case <-s.scheduler.Stop().Done():
		case <-time.After(shutdownTimeout):
			s.logger.Warn("Scheduler jobs still running at shutdown")
		}
	}
	if err := s.resources.Close(); err != nil {
		s.logger.Error("Failed to release resources", "error", err)
	}
}
