package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/haf/internal/api/http"
	"github.com/spec-kit/haf/internal/api/http/handlers"
	"github.com/spec-kit/haf/internal/auth"
	"github.com/spec-kit/haf/internal/service"
	"github.com/spec-kit/haf/internal/worker"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Log into the portal and expose the local operator API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()
	logger := a.logger

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	rt, err := a.runtime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	session, err := rt.launch(ctx, cmd.ErrOrStderr())
	if err != nil {
		logger.Error("browser launch failed", zap.Error(err))
		return err
	}
	defer session.Close() //nolint:errcheck

	ticketWorker := worker.NewTicketWorker(ctx, rt.callSvc, session, rt.dispatcher, logger)
	authService := service.NewAuthService(a.cfg.Auth, a.settings)
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), a.settings)

	server := fiber.New(fiber.Config{AppName: a.cfg.App.Name})
	httptransport.RegisterMiddlewares(server, logger, a.metrics, a.cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(server, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(a.cfg.App.Name, a.cfg.App.Version, a.settings, a.templates, rt.postgres, rt.redis),
		Auth:           handlers.NewAuthHandler(authService),
		Templates:      handlers.NewTemplatesHandler(a.templates),
		Calls:          handlers.NewCallsHandler(ticketWorker, rt.callSvc),
		Logs:           handlers.NewLogsHandler(rt.callSvc, rt.sinks),
		Settings:       handlers.NewSettingsHandler(a.settings),
		Metrics:        handlers.NewMetricsHandler(a.metrics),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := server.Listen(a.cfg.App.Addr()); err != nil {
			logger.Error("fiber listen", zap.Error(err))
			cancel()
		}
	}()
	logger.Info("operator api listening", zap.String("addr", a.cfg.App.Addr()))

	waitForShutdown(ctx, logger)

	_ = server.Shutdown()
	ticketWorker.Wait()
	return nil
}

func waitForShutdown(ctx context.Context, logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case <-ctx.Done():
		logger.Info("shutting down", zap.Error(ctx.Err()))
	}
}
