package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pymeboard/backend/internal/infrastructure/config"
	"github.com/pymeboard/backend/internal/infrastructure/logger"
	"github.com/pymeboard/backend/internal/infrastructure/persistence/models"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Database holds the database connection and provides methods for database operations
type Database struct {
	DB     *gorm.DB
	Driver string
}

type databaseOptions struct {
	logger        *zap.Logger
	logLevel      gormlogger.LogLevel
	slowThreshold time.Duration
	tracer        QueryTracer
}

// QueryTracer installs query instrumentation on a connection
type QueryTracer interface {
	Register(db *gorm.DB) error
}

// DatabaseOption configures NewDatabase
type DatabaseOption func(*databaseOptions)

// WithLogger routes SQL logs to zap at the given GORM level
func WithLogger(l *zap.Logger, level string, slowThreshold time.Duration) DatabaseOption {
	return func(o *databaseOptions) {
		o.logger = l
		o.logLevel = logger.MapGormLogLevel(level)
		o.slowThreshold = slowThreshold
	}
}

// WithTracing registers query tracing on the connection once it is open
func WithTracing(tracer QueryTracer) DatabaseOption {
	return func(o *databaseOptions) {
		o.tracer = tracer
	}
}

// NewDatabase opens a connection for the configured driver and applies pool settings
func NewDatabase(cfg *config.DatabaseConfig, opts ...DatabaseOption) (*Database, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN())
	case "postgres", "":
		dialector = postgres.Open(cfg.DSN())
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := Open(dialector, opts...)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Minute)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Database{DB: db, Driver: cfg.Driver}, nil
}

// Open creates a gorm.DB with the settings every repository relies on:
// UTC timestamps and translated driver errors.
func Open(dialector gorm.Dialector, opts ...DatabaseOption) (*gorm.DB, error) {
	o := databaseOptions{logLevel: gormlogger.Silent}
	for _, opt := range opts {
		opt(&o)
	}

	var gl gormlogger.Interface = gormlogger.Discard
	if o.logger != nil {
		gl = logger.NewGormLogger(o.logger, o.logLevel, logger.WithSlowThreshold(o.slowThreshold))
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                 gl,
		SkipDefaultTransaction: true,
		TranslateError:         true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if o.tracer != nil {
		if err := o.tracer.Register(db); err != nil {
			return nil, fmt.Errorf("failed to install tracing plugin: %w", err)
		}
	}
	return db, nil
}

// Close closes the database connection
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// Ping checks if the database connection is alive
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// ConnectionStats holds database connection pool statistics
type ConnectionStats struct {
	MaxOpenConnections int
	OpenConnections    int
	InUse              int
	Idle               int
	WaitCount          int64
	WaitDuration       time.Duration
}

// Stats returns connection pool statistics
func (d *Database) Stats() (ConnectionStats, error) {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return ConnectionStats{}, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	stats := sqlDB.Stats()
	return ConnectionStats{
		MaxOpenConnections: stats.MaxOpenConnections,
		OpenConnections:    stats.OpenConnections,
		InUse:              stats.InUse,
		Idle:               stats.Idle,
		WaitCount:          stats.WaitCount,
		WaitDuration:       stats.WaitDuration,
	}, nil
}

// AutoMigrate creates the schema from the persistence models. Postgres
// deployments use the SQL migrations instead; this is for sqlite.
func (d *Database) AutoMigrate(ctx context.Context) error {
	if err := d.DB.WithContext(ctx).AutoMigrate(&models.ClientModel{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// Transaction executes fn within a database transaction
func (d *Database) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return d.DB.WithContext(ctx).Transaction(fn)
}

// ForOrganization returns a DB scoped to one organization.
// Panics on uuid.Nil, which would otherwise read every organization's rows.
func (d *Database) ForOrganization(ctx context.Context, orgID uuid.UUID) *gorm.DB {
	if orgID == uuid.Nil {
		panic("ForOrganization called with nil organization ID")
	}
	return d.DB.WithContext(ctx).Where("organization_id = ?", orgID)
}
