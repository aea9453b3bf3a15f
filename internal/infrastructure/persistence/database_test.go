package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pymeboard/backend/internal/infrastructure/config"
	"github.com/pymeboard/backend/internal/infrastructure/persistence/models"
	"github.com/pymeboard/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newSQLiteDatabase(t *testing.T) *Database {
	t.Helper()
	db, err := NewDatabase(&config.DatabaseConfig{
		Driver:          "sqlite",
		Path:            "file::memory:",
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: 60,
		ConnMaxIdleTime: 30,
	}, WithLogger(zap.NewNop(), "warn", 200*time.Millisecond), WithTracing(telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:  true,
		DBSystem: "sqlite",
	}, zap.NewNop())))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestNewDatabase_SQLite(t *testing.T) {
	db := newSQLiteDatabase(t)

	assert.Equal(t, "sqlite", db.Driver)
	assert.NoError(t, db.Ping(context.Background()))

	stats, err := db.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.MaxOpenConnections)
}

func TestNewDatabase_UnsupportedDriver(t *testing.T) {
	_, err := NewDatabase(&config.DatabaseConfig{Driver: "oracle"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}

func TestDatabase_NowFuncIsUTC(t *testing.T) {
	db := newSQLiteDatabase(t)
	assert.Equal(t, time.UTC, db.DB.NowFunc().Location())
}

func TestDatabase_Transaction(t *testing.T) {
	db := newSQLiteDatabase(t)
	ctx := context.Background()
	require.NoError(t, db.AutoMigrate(ctx))
	orgID := uuid.New()

	rollback := errors.New("rollback")
	err := db.Transaction(ctx, func(tx *gorm.DB) error {
		repo := NewGormClientRepository(tx)
		if err := repo.Save(ctx, newTestClient(t, orgID, "Temporal", "12345678-5", time.Now())); err != nil {
			return err
		}
		return rollback
	})
	assert.ErrorIs(t, err, rollback)

	var count int64
	require.NoError(t, db.ForOrganization(ctx, orgID).Model(&models.ClientModel{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestDatabase_ForOrganization_PanicsOnNil(t *testing.T) {
	db := newSQLiteDatabase(t)
	assert.Panics(t, func() {
		db.ForOrganization(context.Background(), uuid.Nil)
	})
}
