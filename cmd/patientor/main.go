package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ehr/patientor/internal/config"
	"github.com/ehr/patientor/internal/domain/diagnosis"
	"github.com/ehr/patientor/internal/domain/patient"
	"github.com/ehr/patientor/internal/platform/db"
	"github.com/ehr/patientor/internal/platform/metrics"
	"github.com/ehr/patientor/internal/platform/middleware"
)

var version = "dev"

const shutdownTimeout = 10 * time.Second

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "patientor",
		Short:        "Patient records API with validated entries",
		SilenceUsage: true,
	}

	root.AddCommand(serveCmd())
	root.AddCommand(migrateCmd())
	root.AddCommand(validateCmd())
	root.AddCommand(bmiCmd())
	return root
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the patientor API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func newLogger(cfg *config.Config) zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	return logger.Level(level)
}

// backend is the storage selected by STORE. pool is nil for the memory store.
type backend struct {
	store   patient.Store
	catalog *diagnosis.Catalog
	pool    *pgxpool.Pool
}

func (b *backend) Close() {
	if b.pool != nil {
		b.pool.Close()
	}
}

func openBackend(ctx context.Context, cfg *config.Config) (*backend, error) {
	if !cfg.UsesPostgres() {
		catalog, err := diagnosis.LoadCatalog(ctx, diagnosis.NewStaticRepo(diagnosis.Defaults))
		if err != nil {
			return nil, err
		}
		return &backend{store: patient.NewMemoryStore(), catalog: catalog}, nil
	}

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, err
	}
	catalog, err := diagnosis.LoadCatalog(ctx, diagnosis.NewRepoPG(pool))
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("load diagnoses: %w", err)
	}
	return &backend{store: patient.NewStorePG(pool), catalog: catalog, pool: pool}, nil
}

func newParser(cfg *config.Config, catalog *diagnosis.Catalog) *patient.Parser {
	var opts []patient.Option
	if cfg.StrictDates() {
		opts = append(opts, patient.WithStrictDates())
	}
	return patient.NewParser(catalog, opts...)
}

// newServer wires middleware and routes. reg backs both the service
// collectors and the /metrics endpoint.
func newServer(cfg *config.Config, logger zerolog.Logger, b *backend, reg *prometheus.Registry) *echo.Echo {
	m := metrics.New(reg)
	svc := patient.NewService(newParser(cfg, b.catalog), b.store, m, logger)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger, "/health", "/metrics"))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{"Content-Type", middleware.RequestIDHeader},
	}))
	e.Use(middleware.SecurityHeaders(!cfg.IsDev()))
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))
	e.Use(middleware.WriteRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
	e.Use(m.Middleware())
	e.Use(middleware.PatientAccess(logger, middleware.AccessRecorderFunc(func(a middleware.AccessEntry) error {
		m.IncrementPatientAccess(a.Action, a.Status)
		return nil
	})))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": version,
			"store":   cfg.Store,
		})
	})
	if b.pool != nil {
		e.GET("/health/db", db.HealthHandler(b.pool))
	}
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))

	api := e.Group("/api")
	fhirGroup := e.Group("/fhir")

	diagnosis.NewHandler(b.catalog).RegisterRoutes(api)
	patient.NewHandler(svc, b.catalog).RegisterRoutes(api, fhirGroup)

	return e
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	b, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.Close()
	logger.Info().Str("store", cfg.Store).Int("diagnoses", b.catalog.Len()).Msg("storage ready")

	if cfg.Seed && !cfg.UsesPostgres() {
		n, err := patient.Seed(ctx, newParser(cfg, b.catalog), b.store)
		if err != nil {
			return fmt.Errorf("seed patients: %w", err)
		}
		logger.Info().Int("patients", n).Msg("seeded sample patients")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	e := newServer(cfg, logger, b, reg)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("version", version).Msg("starting server")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("server stopped with error")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}
