package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"admin-restful/auth"
	"admin-restful/config"
	"admin-restful/controllers"
	"admin-restful/database"
	grpcserver "admin-restful/grpc_server"
	"admin-restful/middleware"
	"admin-restful/registry"
	"admin-restful/repositories"
	"admin-restful/services"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const shutdownTimeout = 10 * time.Second

func newLogger(level string) (*zap.Logger, error) {
	if level == "debug" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func main() {
	fs := config.Flags()
	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	config.InitConfig(fs)
	cfg := &config.AppConfig

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() // Make sure the buffer is flushed before the program exits

	if err := run(cfg, logger); err != nil {
		os.Exit(exitCode(logger, err))
	}
}

// exitCode logs err and flushes logger, since os.Exit skips deferred calls.
func exitCode(logger *zap.Logger, err error) int {
	logger.Error("server stopped", zap.Error(err))
	_ = logger.Sync()
	return 1
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.UsingInsecureSecret() {
		logger.Warn("jwt_secret is not set; using the built-in development secret")
	}

	db, err := database.Open(cfg.Database, cfg.LogLevel == "debug")
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := database.Migrate(db); err != nil {
		return err
	}
	if err := database.Seed(ctx, db, cfg.Seed, logger); err != nil {
		return err
	}

	tokens, err := auth.NewTokenManager([]byte(cfg.JwtSecret))
	if err != nil {
		return err
	}

	userRepo := repositories.NewUserRepository(db)
	roleRepo := repositories.NewRoleRepository(db)
	authn := auth.NewAuthenticator(tokens, userRepo)
	authService := services.NewAuthService(userRepo, tokens)

	svc := controllers.Services{
		Auth:        authService,
		Users:       services.NewUserService(userRepo, roleRepo),
		Roles:       services.NewRoleService(roleRepo),
		Permissions: services.NewPermissionService(repositories.NewPermissionRepository(db)),
		Products:    services.NewProductService(repositories.NewProductRepository(db)),
		Orders:      services.NewOrderService(repositories.NewOrderRepository(db)),
	}
	container, err := controllers.NewContainer(svc, authn, controllers.RouterConfig{
		CookieName:   cfg.CookieName,
		LoginLimiter: middleware.NewRateLimiter(cfg.RateLimit.LoginPerMinute, cfg.RateLimit.LoginBurst),
		Health:       sqlDB.PingContext,
		Logger:       logger,
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           middleware.SecureHeaders(container, cfg.Secure.IsDevelopment),
		ReadHeaderTimeout: 5 * time.Second,
	}

	grpcServer, healthServer := grpcserver.NewServer(
		grpcserver.NewAccessServiceServer(authService, authn, logger),
		authn,
		logger,
	)
	grpcListener, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPCPort))
	if err != nil {
		return fmt.Errorf("listen grpc: %w", err)
	}

	if cfg.Consul.Enabled {
		deregister, err := registerWithConsul(cfg, logger)
		if err != nil {
			grpcListener.Close()
			return err
		}
		defer deregister()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("HTTP server listening", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		logger.Info("gRPC server listening", zap.String("addr", grpcListener.Addr().String()))
		if err := grpcServer.Serve(grpcListener); err != nil {
			return fmt.Errorf("grpc server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		healthServer.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		grpcServer.GracefulStop()
		return httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func registerWithConsul(cfg *config.Config, logger *zap.Logger) (func(), error) {
	reg, err := registry.NewConsulRegistry(cfg.Consul.Address, logger.Sugar())
	if err != nil {
		return nil, err
	}
	return registry.RegisterAll(reg, "/healthz",
		registry.Endpoint{ServiceName: cfg.ServiceName, Protocol: "http", Host: cfg.Consul.Host, Port: cfg.HTTPPort},
		registry.Endpoint{ServiceName: cfg.ServiceName, Protocol: "grpc", Host: cfg.Consul.Host, Port: cfg.GRPCPort},
	)
}
