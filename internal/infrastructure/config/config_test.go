package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnvKeys = []string{
	"PYME_APP_NAME",
	"PYME_APP_ENV",
	"PYME_APP_PORT",
	"PYME_DATABASE_DRIVER",
	"PYME_DATABASE_HOST",
	"PYME_DATABASE_PORT",
	"PYME_DATABASE_USER",
	"PYME_DATABASE_PASSWORD",
	"PYME_DATABASE_DBNAME",
	"PYME_DATABASE_SSLMODE",
	"PYME_DATABASE_PATH",
	"PYME_DATABASE_MAX_OPEN_CONNS",
	"PYME_DATABASE_MAX_IDLE_CONNS",
	"PYME_REDIS_ENABLED",
	"PYME_REDIS_STATS_TTL",
	"PYME_JWT_SECRET",
	"PYME_JWT_ORGANIZATION_CLAIM",
	"PYME_LOCALE_TIMEZONE",
	"PYME_LOCALE_UF_VALUE",
	"PYME_HTTP_CORS_ALLOW_ORIGINS",
	"PYME_HTTP_RATE_LIMIT_RPS",
	"PYME_HTTP_RATE_LIMIT_BURST",
	"PYME_HTTP_DOCS_ENABLED",
	"PYME_TELEMETRY_ENABLED",
	"PYME_TELEMETRY_SAMPLING_RATIO",
	"PYME_STORAGE_ENABLED",
	"PYME_STORAGE_BUCKET",
	"PYME_STORAGE_ACCESS_KEY",
	"PYME_STORAGE_SECRET_KEY",
	"PYME_PRINTING_ENABLED",
	"PYME_PRINTING_CHROME_URL",
	"PYME_PRINTING_PAPER_SIZE",
	"PYME_PRINTING_COMPANY_NAME",
}

// isolateEnv clears every key the tests touch and restores the originals afterwards
func isolateEnv(t *testing.T) func() {
	t.Helper()
	original := make(map[string]string, len(configEnvKeys))
	for _, k := range configEnvKeys {
		original[k] = os.Getenv(k)
	}
	t.Cleanup(func() {
		for k, v := range original {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	})
	return func() {
		for _, k := range configEnvKeys {
			os.Unsetenv(k)
		}
	}
}

func TestLoad(t *testing.T) {
	clearEnv := isolateEnv(t)

	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv()

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "pymeboard-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "postgres", cfg.Database.Driver)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "postgres", cfg.Database.User)
		assert.Equal(t, "", cfg.Database.Password)
		assert.Equal(t, "pymeboard", cfg.Database.DBName)
		assert.Equal(t, "disable", cfg.Database.SSLMode)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
		assert.False(t, cfg.Redis.Enabled)
		assert.Equal(t, 10*time.Minute, cfg.Redis.StatsTTL)
		assert.Equal(t, "organization_id", cfg.JWT.OrganizationClaim)
		assert.Equal(t, "America/Santiago", cfg.Locale.Timezone)
		assert.Equal(t, 38500.0, cfg.Locale.UFValue)
		assert.Equal(t, "warn", cfg.Log.DatabaseLevel)
		assert.False(t, cfg.Telemetry.Enabled)
		assert.Equal(t, "pymeboard-backend", cfg.Telemetry.ServiceName)
		assert.Equal(t, "localhost:4317", cfg.Telemetry.CollectorEndpoint)
		assert.False(t, cfg.Storage.Enabled)
		assert.Equal(t, 15*time.Minute, cfg.Storage.PresignExpiration)
		assert.False(t, cfg.Printing.Enabled)
		assert.Equal(t, 30*time.Second, cfg.Printing.Timeout)
		assert.Equal(t, "Mi Empresa SpA", cfg.Printing.CompanyName)
		assert.Equal(t, "A4", cfg.Printing.PaperSize)
	})

	t.Run("loads values from environment variables with PYME prefix", func(t *testing.T) {
		clearEnv()
		os.Setenv("PYME_APP_NAME", "test-app")
		os.Setenv("PYME_APP_ENV", "testing")
		os.Setenv("PYME_APP_PORT", "9000")
		os.Setenv("PYME_DATABASE_HOST", "testdb.local")
		os.Setenv("PYME_DATABASE_PORT", "5433")
		os.Setenv("PYME_DATABASE_USER", "testuser")
		os.Setenv("PYME_DATABASE_PASSWORD", "testpass")
		os.Setenv("PYME_DATABASE_DBNAME", "testdb")
		os.Setenv("PYME_DATABASE_SSLMODE", "require")
		os.Setenv("PYME_DATABASE_MAX_OPEN_CONNS", "50")
		os.Setenv("PYME_DATABASE_MAX_IDLE_CONNS", "10")
		os.Setenv("PYME_REDIS_ENABLED", "true")
		os.Setenv("PYME_REDIS_STATS_TTL", "2m")
		os.Setenv("PYME_JWT_ORGANIZATION_CLAIM", "org")
		os.Setenv("PYME_LOCALE_UF_VALUE", "39123.45")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "testing", cfg.App.Env)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, "testuser", cfg.Database.User)
		assert.Equal(t, "testpass", cfg.Database.Password)
		assert.Equal(t, "testdb", cfg.Database.DBName)
		assert.Equal(t, "require", cfg.Database.SSLMode)
		assert.Equal(t, 50, cfg.Database.MaxOpenConns)
		assert.Equal(t, 10, cfg.Database.MaxIdleConns)
		assert.True(t, cfg.Redis.Enabled)
		assert.Equal(t, 2*time.Minute, cfg.Redis.StatsTTL)
		assert.Equal(t, "org", cfg.JWT.OrganizationClaim)
		assert.Equal(t, 39123.45, cfg.Locale.UFValue)
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		clearEnv()
		os.Setenv("PYME_DATABASE_MAX_OPEN_CONNS", "10")
		os.Setenv("PYME_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns")
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("zero MaxOpenConns uses default", func(t *testing.T) {
		clearEnv()
		os.Setenv("PYME_DATABASE_MAX_OPEN_CONNS", "0")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	})

	t.Run("validates MaxIdleConns cannot be negative", func(t *testing.T) {
		clearEnv()
		os.Setenv("PYME_DATABASE_MAX_IDLE_CONNS", "-1")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns cannot be negative")
	})

	t.Run("rejects unknown database driver", func(t *testing.T) {
		clearEnv()
		os.Setenv("PYME_DATABASE_DRIVER", "mysql")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.driver")
	})

	t.Run("rejects negative UF value", func(t *testing.T) {
		clearEnv()
		os.Setenv("PYME_LOCALE_UF_VALUE", "-1")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "locale.uf_value must be positive")
	})

	t.Run("rejects unknown timezone", func(t *testing.T) {
		clearEnv()
		os.Setenv("PYME_LOCALE_TIMEZONE", "Mars/Olympus_Mons")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "locale.timezone")
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	clearEnv := isolateEnv(t)

	setValidProductionBase := func() {
		os.Setenv("PYME_APP_ENV", "production")
		os.Setenv("PYME_JWT_SECRET", "this-is-a-very-secure-jwt-secret-key-32chars")
		os.Setenv("PYME_DATABASE_PASSWORD", "secure-password")
		os.Setenv("PYME_DATABASE_SSLMODE", "require")
	}

	t.Run("requires jwt.secret in production", func(t *testing.T) {
		clearEnv()
		setValidProductionBase()
		os.Unsetenv("PYME_JWT_SECRET")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt.secret is required in production")
	})

	t.Run("requires jwt.secret at least 32 characters in production", func(t *testing.T) {
		clearEnv()
		setValidProductionBase()
		os.Setenv("PYME_JWT_SECRET", "short-secret")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt.secret must be at least 32 characters")
	})

	t.Run("requires database.password in production", func(t *testing.T) {
		clearEnv()
		setValidProductionBase()
		os.Unsetenv("PYME_DATABASE_PASSWORD")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password is required in production")
	})

	t.Run("requires SSL enabled in production", func(t *testing.T) {
		clearEnv()
		setValidProductionBase()
		os.Setenv("PYME_DATABASE_SSLMODE", "disable")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.sslmode cannot be 'disable' in production")
	})

	t.Run("rejects sqlite in production", func(t *testing.T) {
		clearEnv()
		setValidProductionBase()
		os.Setenv("PYME_DATABASE_DRIVER", "sqlite")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot be sqlite in production")
	})

	t.Run("rejects wildcard CORS origin in production", func(t *testing.T) {
		clearEnv()
		setValidProductionBase()
		os.Setenv("PYME_HTTP_CORS_ALLOW_ORIGINS", "*")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cors_allow_origins")
	})

	t.Run("passes validation with valid production config", func(t *testing.T) {
		clearEnv()
		setValidProductionBase()

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.App.Env)
		assert.True(t, cfg.App.IsProduction())
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Run("generates valid DSN", func(t *testing.T) {
		cfg := DatabaseConfig{
			Driver:   "postgres",
			Host:     "localhost",
			Port:     5432,
			User:     "testuser",
			Password: "testpass",
			DBName:   "testdb",
			SSLMode:  "disable",
		}

		dsn := cfg.DSN()
		assert.Contains(t, dsn, "localhost")
		assert.Contains(t, dsn, "5432")
		assert.Contains(t, dsn, "testuser")
		assert.Contains(t, dsn, "testdb")
		assert.Contains(t, dsn, "sslmode=disable")
	})

	t.Run("escapes special characters in password", func(t *testing.T) {
		cfg := DatabaseConfig{
			Driver:   "postgres",
			Host:     "localhost",
			Port:     5432,
			User:     "user",
			Password: "pass@word#123",
			DBName:   "db",
			SSLMode:  "disable",
		}

		assert.Contains(t, cfg.DSN(), "pass%40word%23123")
	})

	t.Run("sqlite uses the file path", func(t *testing.T) {
		cfg := DatabaseConfig{Driver: "sqlite", Path: "/tmp/pyme.db"}
		assert.Equal(t, "/tmp/pyme.db", cfg.DSN())
	})
}

func TestLocaleConfig_Location(t *testing.T) {
	loc := (&LocaleConfig{Timezone: "America/Santiago"}).Location()
	assert.Equal(t, "America/Santiago", loc.String())

	assert.Equal(t, time.UTC, (&LocaleConfig{Timezone: "Nowhere/Land"}).Location())
}

func TestRedisConfig_Addr(t *testing.T) {
	assert.Equal(t, "cache:6380", (&RedisConfig{Host: "cache", Port: 6380}).RedisAddr())
}

func TestLoad_TelemetryAndStorageValidation(t *testing.T) {
	clearEnv := isolateEnv(t)

	t.Run("sampling ratio out of range", func(t *testing.T) {
		clearEnv()
		os.Setenv("PYME_TELEMETRY_SAMPLING_RATIO", "1.5")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "telemetry.sampling_ratio")
	})

	t.Run("storage requires bucket", func(t *testing.T) {
		clearEnv()
		os.Setenv("PYME_STORAGE_ENABLED", "true")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "storage.bucket")
	})

	t.Run("storage requires credentials", func(t *testing.T) {
		clearEnv()
		os.Setenv("PYME_STORAGE_ENABLED", "true")
		os.Setenv("PYME_STORAGE_BUCKET", "exports")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "storage.access_key")
	})

	t.Run("storage fully configured", func(t *testing.T) {
		clearEnv()
		os.Setenv("PYME_STORAGE_ENABLED", "true")
		os.Setenv("PYME_STORAGE_BUCKET", "exports")
		os.Setenv("PYME_STORAGE_ACCESS_KEY", "key")
		os.Setenv("PYME_STORAGE_SECRET_KEY", "secret")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "exports", cfg.Storage.Bucket)
		assert.Equal(t, "us-east-1", cfg.Storage.Region)
	})
}

func TestLoad_RateLimitBurstDefault(t *testing.T) {
	clearEnv := isolateEnv(t)
	clearEnv()

	cfg, err := Load()
	require.NoError(t, err)
	assert.Zero(t, cfg.HTTP.RateLimitRPS)
	assert.Zero(t, cfg.HTTP.RateLimitBurst)

	os.Setenv("PYME_HTTP_RATE_LIMIT_RPS", "5")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, 5.0, cfg.HTTP.RateLimitRPS)
	assert.Equal(t, 10, cfg.HTTP.RateLimitBurst)

	os.Setenv("PYME_HTTP_RATE_LIMIT_BURST", "3")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.HTTP.RateLimitBurst)
}

func TestLoad_DocsEnabled(t *testing.T) {
	clearEnv := isolateEnv(t)
	clearEnv()

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.HTTP.DocsEnabled)

	os.Setenv("PYME_HTTP_DOCS_ENABLED", "false")
	cfg, err = Load()
	require.NoError(t, err)
	assert.False(t, cfg.HTTP.DocsEnabled)
}

func TestLoad_DotEnv(t *testing.T) {
	clearEnv := isolateEnv(t)
	clearEnv()

	dir := t.TempDir()
	nested := filepath.Join(dir, "cmd", "server")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("PYME_APP_NAME=from-dotenv\nPYME_LOCALE_UF_VALUE=40000\n"), 0o600))
	t.Chdir(nested)

	os.Setenv("PYME_LOCALE_UF_VALUE", "39000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.App.Name)
	assert.Equal(t, 39000.0, cfg.Locale.UFValue, "process environment wins over .env")
}

func TestLoad_Printing(t *testing.T) {
	clearEnv := isolateEnv(t)

	t.Run("from env", func(t *testing.T) {
		clearEnv()
		os.Setenv("PYME_PRINTING_ENABLED", "true")
		os.Setenv("PYME_PRINTING_CHROME_URL", "ws://chrome:9222")
		os.Setenv("PYME_PRINTING_PAPER_SIZE", "letter")
		os.Setenv("PYME_PRINTING_COMPANY_NAME", "Comercial Andes SpA")

		cfg, err := Load()
		require.NoError(t, err)
		assert.True(t, cfg.Printing.Enabled)
		assert.Equal(t, "ws://chrome:9222", cfg.Printing.ChromeURL)
		assert.Equal(t, "letter", cfg.Printing.PaperSize)
		assert.Equal(t, "Comercial Andes SpA", cfg.Printing.CompanyName)
	})

	t.Run("unknown paper size", func(t *testing.T) {
		clearEnv()
		os.Setenv("PYME_PRINTING_PAPER_SIZE", "A3")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "printing.paper_size")
	})
}
