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

	"github.com/gin-gonic/gin"
	_ "github.com/pymeboard/backend/docs"
	exportapp "github.com/pymeboard/backend/internal/application/export"
	importapp "github.com/pymeboard/backend/internal/application/import"
	partnerapp "github.com/pymeboard/backend/internal/application/partner"
	"github.com/pymeboard/backend/internal/infrastructure/auth"
	"github.com/pymeboard/backend/internal/infrastructure/cache"
	"github.com/pymeboard/backend/internal/infrastructure/config"
	"github.com/pymeboard/backend/internal/infrastructure/event"
	csvimport "github.com/pymeboard/backend/internal/infrastructure/import"
	"github.com/pymeboard/backend/internal/infrastructure/logger"
	"github.com/pymeboard/backend/internal/infrastructure/persistence"
	"github.com/pymeboard/backend/internal/infrastructure/printing"
	"github.com/pymeboard/backend/internal/infrastructure/storage"
	"github.com/pymeboard/backend/internal/infrastructure/telemetry"
	"github.com/pymeboard/backend/internal/interfaces/http/handler"
	"github.com/pymeboard/backend/internal/interfaces/http/middleware"
	"github.com/pymeboard/backend/internal/interfaces/http/router"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
)

//	@title			PymeBoard API
//	@version		1.0
//	@description	Client registry for Chilean small businesses: RUT and phone normalization, client CRUD, CSV import and export.

//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "pymeboard: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	baseLog, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}, cfg.App.Name)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = baseLog.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tracerProvider, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, baseLog)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, cfg.Telemetry, baseLog)
	if err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}
	loggerProvider, err := telemetry.NewLoggerProvider(ctx, cfg.Telemetry, baseLog)
	if err != nil {
		return fmt.Errorf("failed to initialize OTEL logs: %w", err)
	}
	log := telemetry.Bridge(baseLog, loggerProvider, cfg.Telemetry.ServiceName, zapcore.InfoLevel)
	zap.ReplaceGlobals(log)

	profiler, err := telemetry.NewProfiler(cfg.Telemetry, log)
	if err != nil {
		return fmt.Errorf("failed to start profiler: %w", err)
	}
	if profiler.IsEnabled() {
		if err := tracerProvider.EnableSpanProfiles(); err != nil {
			log.Warn("Span profiles unavailable", zap.Error(err))
		}
	}
	defer shutdownTelemetry(log, tracerProvider, meterProvider, loggerProvider, profiler)

	log.Info("Starting PymeBoard backend",
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	dbSystem := "postgresql"
	if cfg.Database.Driver == "sqlite" {
		dbSystem = "sqlite"
	}
	db, err := persistence.NewDatabase(&cfg.Database,
		persistence.WithLogger(log, cfg.Log.DatabaseLevel, cfg.Log.SlowThreshold),
		persistence.WithTracing(telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
			Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
			DBSystem:        dbSystem,
			SlowQueryThresh: cfg.Log.SlowThreshold,
		}, log)),
	)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if cfg.Database.Driver == "sqlite" {
		if err := db.AutoMigrate(ctx); err != nil {
			return err
		}
	}
	log.Info("Database connected", zap.String("driver", cfg.Database.Driver))

	statsCache, redisClient := cache.NewStatsCache(cfg.Redis, log)
	if redisClient != nil {
		defer redisClient.Close()
	}

	identityMetrics, err := telemetry.NewIdentityMetrics(meterProvider.Meter(telemetry.MeterName))
	if err != nil {
		return fmt.Errorf("failed to create identity metrics: %w", err)
	}

	bus := event.NewInMemoryEventBus(log)
	bus.Subscribe(partnerapp.NewStatsInvalidationHandler(statsCache, log))

	location := cfg.Locale.Location()
	clientService := partnerapp.NewClientService(
		persistence.NewGormClientRepository(db.DB),
		partnerapp.WithEventPublisher(bus),
		partnerapp.WithStatsCache(statsCache),
		partnerapp.WithMetrics(identityMetrics),
		partnerapp.WithLocation(location),
		partnerapp.WithLogger(log),
	)

	importService := importapp.NewClientImportService(clientService, log,
		csvimport.WithMaxFileSize(cfg.HTTP.MaxBodySize))
	importService.SetMetrics(identityMetrics)

	exportOpts := []exportapp.Option{
		exportapp.WithLocation(location),
		exportapp.WithLogger(log),
	}
	if cfg.Storage.Enabled {
		archive, err := storage.NewS3ArchiveStorage(ctx, cfg.Storage,
			storage.WithLogger(log),
			storage.WithPresignExpiration(cfg.Storage.PresignExpiration))
		if err != nil {
			return fmt.Errorf("failed to initialize export storage: %w", err)
		}
		if err := archive.EnsureBucket(ctx); err != nil {
			return fmt.Errorf("failed to prepare export bucket: %w", err)
		}
		exportOpts = append(exportOpts, exportapp.WithArchive(archive))
	}
	if cfg.Printing.Enabled {
		renderer, err := printing.NewChromedpRenderer(&printing.ChromedpConfig{
			DefaultTimeout: cfg.Printing.Timeout,
			RemoteURL:      cfg.Printing.ChromeURL,
			NoSandbox:      cfg.Printing.NoSandbox,
			Logger:         log,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize PDF renderer: %w", err)
		}
		defer renderer.Close()

		paper, _ := printing.PaperSizeByName(cfg.Printing.PaperSize)
		printer, err := printing.NewListingPrinter(renderer,
			printing.WithTemplateEngine(printing.NewTemplateEngine(printing.WithTemplateLocation(location))),
			printing.WithPaper(paper),
			printing.WithCompanyName(cfg.Printing.CompanyName),
			printing.WithPrinterLogger(log),
		)
		if err != nil {
			return fmt.Errorf("failed to initialize listing printer: %w", err)
		}
		exportOpts = append(exportOpts,
			exportapp.WithPrinter(printer),
			exportapp.WithCompanyName(cfg.Printing.CompanyName),
		)
		log.Info("PDF exports enabled", zap.String("chrome_url", cfg.Printing.ChromeURL))
	}
	exportService := exportapp.NewClientExportService(clientService, exportOpts...)

	checks := map[string]handler.HealthCheck{"database": db.Ping}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	var limiter *middleware.RateLimiter
	if cfg.HTTP.RateLimitRPS > 0 {
		limiter = middleware.NewRateLimiter(cfg.HTTP.RateLimitRPS, cfg.HTTP.RateLimitBurst)
	}

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	cors.AllowMethods = cfg.HTTP.CORSAllowMethods
	cors.AllowHeaders = cfg.HTTP.CORSAllowHeaders

	engine, err := router.NewEngine(router.EngineConfig{
		ServiceName:    cfg.Telemetry.ServiceName,
		Logger:         log,
		CORS:           cors,
		TrustedProxies: cfg.HTTP.TrustedProxies,
		MaxBodySize:    cfg.HTTP.MaxBodySize,
		RateLimiter:    limiter,
		Tracing:        tracerProvider.IsEnabled(),
		Profiling:      profiler.IsEnabled(),
		Meter:          meterProvider.Meter(telemetry.MeterName),
		Docs: middleware.DocsConfig{
			Enabled:    cfg.HTTP.DocsEnabled,
			AllowedIPs: cfg.HTTP.DocsAllowedIPs,
		},
		Verifier: auth.NewTokenVerifier(cfg.JWT),
	}, router.Handlers{
		System:   handler.NewSystemHandler(cfg.App.Name, version, checks),
		Identity: handler.NewIdentityHandler(identityMetrics),
		Currency: handler.NewCurrencyHandler(decimal.NewFromFloat(cfg.Locale.UFValue)),
		Client:   handler.NewClientHandler(clientService, importService, exportService),
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if limiter != nil {
		g.Go(func() error {
			sweepRateLimiter(gctx, limiter)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("Server stopped")
	return nil
}

// sweepRateLimiter drops idle visitors until ctx is done
func sweepRateLimiter(ctx context.Context, limiter *middleware.RateLimiter) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			limiter.Sweep()
		}
	}
}

type shutdowner interface {
	Shutdown(ctx context.Context) error
}

func shutdownTelemetry(log *zap.Logger, tp, mp, lp shutdowner, profiler *telemetry.Profiler) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for name, s := range map[string]shutdowner{"tracer": tp, "meter": mp, "logger": lp} {
		if err := s.Shutdown(ctx); err != nil {
			log.Error("Telemetry shutdown failed", zap.String("provider", name), zap.Error(err))
		}
	}
	if err := profiler.Stop(); err != nil {
		log.Error("Profiler shutdown failed", zap.Error(err))
	}
}
