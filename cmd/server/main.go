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

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"booking-api/internal/auth"
	"booking-api/internal/config"
	"booking-api/internal/handler"
	"booking-api/internal/httpapi"
	"booking-api/internal/logger"
	"booking-api/internal/middleware"
	"booking-api/internal/rpc"
	"booking-api/internal/store"
	"booking-api/internal/store/memory"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "server",
		Short:        "Appointment booking API",
		SilenceUsage: true,
	}
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Serve the REST and gRPC APIs",
		RunE:  func(cmd *cobra.Command, args []string) error { return runServe(cmd.Context()) },
	}
	root.RunE = serve.RunE
	root.AddCommand(serve, migrateCmd(), hashPasswordCmd())
	return root
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			pool, err := store.Open(cmd.Context(), cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer pool.Close()
			applied, err := store.New(pool).Migrate(cmd.Context())
			if err != nil {
				return err
			}
			for _, m := range applied {
				fmt.Fprintln(cmd.OutOrStdout(), "applied", m)
			}
			return nil
		},
	}
}

func hashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print a bcrypt digest for ADMIN_PASSWORD_HASH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := auth.HashPassword(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), h)
			return nil
		},
	}
}

func runServe(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logger.New(logger.Config{Env: cfg.Env, Level: cfg.LogLevel})
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// storage
	var repo store.Repository
	switch cfg.StoreDriver {
	case config.DriverMemory:
		log.Warn("using in-memory store, data is lost on exit")
		repo = memory.New()
	default:
		pool, err := store.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer pool.Close()
		log.Info("connected to postgres")
		if err := migrate(ctx, pool, log); err != nil {
			return err
		}
		if err := httpapi.RegisterPool(reg, pool); err != nil {
			return err
		}
		repo = store.New(pool)
	}
	repo = store.NewCached(repo, cfg.CacheTTL)

	// auth core
	tokens, err := auth.NewTokenService(auth.TokenConfig{
		Secret:    cfg.TokenSecret,
		Algorithm: cfg.TokenAlgorithm,
		TTL:       cfg.TokenTTL(),
	})
	if err != nil {
		return err
	}
	binder, err := auth.NewKeyedBinder([]byte(cfg.TokenSecret), cfg.TokenBindPort)
	if err != nil {
		return err
	}
	var guardOpts []auth.GuardOption
	if cfg.TokenAllowTestingClaim {
		log.Warn("tokens with testing=True skip host binding")
		guardOpts = append(guardOpts, auth.AllowTestingClaim())
	}
	guard := auth.NewGuard(tokens, binder, guardOpts...)
	login := auth.NewLoginService(auth.AdminCredentials{
		Username:     cfg.AdminUsername,
		PasswordHash: cfg.AdminPasswordHash,
	}, repo, tokens, binder)

	h := handler.New(repo, login)
	authn := middleware.NewAuthenticator(guard, repo)

	// transports
	api, err := httpapi.New(h, authn, httpapi.Options{Logger: log, Registry: reg})
	if err != nil {
		return err
	}
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: api.Routes()}
	grpcSrv, healthSrv := rpc.NewServer(h, authn, log)

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("grpc listening", zap.String("addr", cfg.GRPCAddr))
		return grpcSrv.Serve(lis)
	})
	g.Go(func() error {
		log.Info("http listening", zap.String("addr", cfg.HTTPAddr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		healthSrv.Shutdown()
		sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		err := httpSrv.Shutdown(sctx)
		grpcSrv.GracefulStop()
		return err
	})
	return g.Wait()
}

func migrate(ctx context.Context, pool *pgxpool.Pool, log *zap.Logger) error {
	applied, err := store.New(pool).Migrate(ctx)
	if err != nil {
		return err
	}
	log.Info("migrations applied", zap.Strings("files", applied))
	return nil
}
