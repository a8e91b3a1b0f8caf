package config

import (
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var managedEnv = []string{
	"STORE_APP_NAME",
	"STORE_APP_ENV",
	"STORE_APP_PORT",
	"STORE_DATABASE_DRIVER",
	"STORE_DATABASE_HOST",
	"STORE_DATABASE_PORT",
	"STORE_DATABASE_PASSWORD",
	"STORE_DATABASE_SSLMODE",
	"STORE_DATABASE_MAX_OPEN_CONNS",
	"STORE_DATABASE_MAX_IDLE_CONNS",
	"STORE_DATABASE_SLOW_QUERY_MS",
	"STORE_SHIPPING_DELIVERY_FEE",
	"STORE_SHIPPING_FREE_DELIVERY_THRESHOLD",
	"STORE_EMAIL_FROM_EMAIL",
	"STORE_EMAIL_IS_ACTIVE",
	"STORE_EMAIL_SEND_CART_REMINDER",
	"STORE_EMAIL_MAX_EMAILS_PER_HOUR",
	"STORE_RECONCILIATION_LOCK_TTL",
	"STORE_JWT_SECRET",
	"STORE_JWT_REFRESH_SECRET",
	"STORE_JWT_ACCESS_TOKEN_EXPIRATION",
	"STORE_SWAGGER_ENABLED",
	"STORE_SWAGGER_ALLOWED_IPS",
	"STORE_TELEMETRY_SAMPLING_RATIO",
	"STORE_TELEMETRY_DB_LOG_FULL_SQL",
	"STORE_INVOICE_PDF_ENABLED",
}

func withCleanEnv(t *testing.T) {
	t.Helper()
	original := make(map[string]string, len(managedEnv))
	for _, k := range managedEnv {
		original[k] = os.Getenv(k)
		os.Unsetenv(k)
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
}

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		withCleanEnv(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "storefront", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "postgres", cfg.Database.Driver)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "storefront", cfg.Database.DBName)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
		assert.Equal(t, 200, cfg.Database.SlowQueryMs)
		assert.Equal(t, 10, cfg.HTTP.LoginAttempts)
		assert.Equal(t, time.Minute, cfg.HTTP.LoginWindow)
		assert.False(t, cfg.Redis.Enabled)
	})

	t.Run("shipping and email defaults", func(t *testing.T) {
		withCleanEnv(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.True(t, decimal.NewFromInt(1000).Equal(cfg.Shipping.DeliveryFee))
		assert.True(t, decimal.NewFromInt(25000).Equal(cfg.Shipping.FreeDeliveryThreshold))
		assert.Equal(t, "smtp.gmail.com", cfg.Email.SMTPHost)
		assert.Equal(t, 587, cfg.Email.SMTPPort)
		assert.Equal(t, "Maillots Football", cfg.Email.FromName)
		assert.True(t, cfg.Email.UseTLS)
		assert.True(t, cfg.Email.IsActive)
		assert.True(t, cfg.Email.SendOrderConfirmation)
		assert.True(t, cfg.Email.SendPaymentConfirmation)
		assert.True(t, cfg.Email.SendShippingNotification)
		assert.True(t, cfg.Email.SendCartReminder)
		assert.True(t, cfg.Email.SendStockAlert)
		assert.Equal(t, 100, cfg.Email.MaxEmailsPerHour)
		assert.Equal(t, 24, cfg.Email.CartReminderDelayHours)
		assert.Equal(t, 5, cfg.Catalog.LowStockThreshold)
		assert.Equal(t, 5*time.Minute, cfg.Reconciliation.LockTTL)
	})

	t.Run("auth telemetry and invoice defaults", func(t *testing.T) {
		withCleanEnv(t)
		os.Setenv("STORE_JWT_SECRET", "local-secret")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "local-secret", cfg.JWT.RefreshSecret)
		assert.Equal(t, 15*time.Minute, cfg.JWT.AccessTokenExpiration)
		assert.Equal(t, 168*time.Hour, cfg.JWT.RefreshTokenExpiration)
		assert.Equal(t, "storefront", cfg.JWT.Issuer)
		assert.Equal(t, 10, cfg.JWT.MaxRefreshCount)
		assert.False(t, cfg.Telemetry.Enabled)
		assert.Equal(t, "localhost:4317", cfg.Telemetry.CollectorEndpoint)
		assert.Equal(t, 1.0, cfg.Telemetry.SamplingRatio)
		assert.Equal(t, "storefront", cfg.Telemetry.ServiceName)
		assert.False(t, cfg.Invoice.PDFEnabled)
		assert.Equal(t, 30*time.Second, cfg.Invoice.Timeout)
		assert.Equal(t, 2, cfg.Invoice.MaxConcurrent)
		assert.True(t, cfg.Swagger.Enabled)
	})

	t.Run("rejects sampling ratio above one", func(t *testing.T) {
		withCleanEnv(t)
		os.Setenv("STORE_TELEMETRY_SAMPLING_RATIO", "1.5")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "telemetry.sampling_ratio")
	})

	t.Run("loads values from environment variables with STORE prefix", func(t *testing.T) {
		withCleanEnv(t)
		os.Setenv("STORE_APP_NAME", "test-app")
		os.Setenv("STORE_APP_PORT", "9000")
		os.Setenv("STORE_DATABASE_DRIVER", "sqlite")
		os.Setenv("STORE_DATABASE_MAX_OPEN_CONNS", "50")
		os.Setenv("STORE_DATABASE_MAX_IDLE_CONNS", "10")
		os.Setenv("STORE_SHIPPING_DELIVERY_FEE", "1500")
		os.Setenv("STORE_SHIPPING_FREE_DELIVERY_THRESHOLD", "30000.50")
		os.Setenv("STORE_EMAIL_SEND_CART_REMINDER", "false")
		os.Setenv("STORE_EMAIL_MAX_EMAILS_PER_HOUR", "20")
		os.Setenv("STORE_RECONCILIATION_LOCK_TTL", "90s")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "sqlite", cfg.Database.Driver)
		assert.Equal(t, 50, cfg.Database.MaxOpenConns)
		assert.Equal(t, 10, cfg.Database.MaxIdleConns)
		assert.True(t, decimal.NewFromInt(1500).Equal(cfg.Shipping.DeliveryFee))
		assert.Equal(t, "30000.5", cfg.Shipping.FreeDeliveryThreshold.String())
		assert.False(t, cfg.Email.SendCartReminder)
		assert.True(t, cfg.Email.SendStockAlert)
		assert.Equal(t, 20, cfg.Email.MaxEmailsPerHour)
		assert.Equal(t, 90*time.Second, cfg.Reconciliation.LockTTL)
	})

	t.Run("rejects unknown database driver", func(t *testing.T) {
		withCleanEnv(t)
		os.Setenv("STORE_DATABASE_DRIVER", "mysql")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.driver")
	})

	t.Run("rejects malformed delivery fee", func(t *testing.T) {
		withCleanEnv(t)
		os.Setenv("STORE_SHIPPING_DELIVERY_FEE", "mille")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "shipping.delivery_fee")
	})

	t.Run("rejects negative delivery fee", func(t *testing.T) {
		withCleanEnv(t)
		os.Setenv("STORE_SHIPPING_DELIVERY_FEE", "-1")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot be negative")
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		withCleanEnv(t)
		os.Setenv("STORE_DATABASE_MAX_OPEN_CONNS", "10")
		os.Setenv("STORE_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns")
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("validates MaxIdleConns cannot be negative", func(t *testing.T) {
		withCleanEnv(t)
		os.Setenv("STORE_DATABASE_MAX_IDLE_CONNS", "-1")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns cannot be negative")
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	setValidProductionBase := func() {
		os.Setenv("STORE_APP_ENV", "production")
		os.Setenv("STORE_DATABASE_PASSWORD", "secure-password")
		os.Setenv("STORE_DATABASE_SSLMODE", "require")
		os.Setenv("STORE_EMAIL_FROM_EMAIL", "boutique@example.com")
		os.Setenv("STORE_JWT_SECRET", "0123456789abcdef0123456789abcdef")
	}

	t.Run("requires a long jwt secret in production", func(t *testing.T) {
		withCleanEnv(t)
		setValidProductionBase()
		os.Setenv("STORE_JWT_SECRET", "short")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "jwt.secret must be at least 32 characters")
	})

	t.Run("swagger stays off in production unless restricted", func(t *testing.T) {
		withCleanEnv(t)
		setValidProductionBase()

		cfg, err := Load()
		require.NoError(t, err)
		assert.False(t, cfg.Swagger.Enabled)

		os.Setenv("STORE_SWAGGER_ENABLED", "true")
		_, err = Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "swagger")

		os.Setenv("STORE_SWAGGER_ALLOWED_IPS", "10.0.0.1")
		cfg, err = Load()
		require.NoError(t, err)
		assert.True(t, cfg.Swagger.Enabled)
	})

	t.Run("rejects full SQL in traces in production", func(t *testing.T) {
		withCleanEnv(t)
		setValidProductionBase()
		os.Setenv("STORE_TELEMETRY_DB_LOG_FULL_SQL", "true")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "db_log_full_sql")
	})

	t.Run("requires database.password in production", func(t *testing.T) {
		withCleanEnv(t)
		setValidProductionBase()
		os.Unsetenv("STORE_DATABASE_PASSWORD")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password is required in production")
	})

	t.Run("requires SSL enabled in production", func(t *testing.T) {
		withCleanEnv(t)
		setValidProductionBase()
		os.Setenv("STORE_DATABASE_SSLMODE", "disable")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.sslmode cannot be 'disable' in production")
	})

	t.Run("requires postgres in production", func(t *testing.T) {
		withCleanEnv(t)
		setValidProductionBase()
		os.Setenv("STORE_DATABASE_DRIVER", "sqlite")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must be postgres in production")
	})

	t.Run("requires a sender address when email is active", func(t *testing.T) {
		withCleanEnv(t)
		setValidProductionBase()
		os.Unsetenv("STORE_EMAIL_FROM_EMAIL")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "email.from_email")
	})

	t.Run("no sender needed when email is inactive", func(t *testing.T) {
		withCleanEnv(t)
		setValidProductionBase()
		os.Unsetenv("STORE_EMAIL_FROM_EMAIL")
		os.Setenv("STORE_EMAIL_IS_ACTIVE", "false")

		cfg, err := Load()
		require.NoError(t, err)
		assert.False(t, cfg.Email.IsActive)
	})

	t.Run("passes validation with valid production config", func(t *testing.T) {
		withCleanEnv(t)
		setValidProductionBase()

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.App.Env)
	})
}

func TestShippingConfig_CostFor(t *testing.T) {
	cfg := ShippingConfig{
		DeliveryFee:           decimal.NewFromInt(1000),
		FreeDeliveryThreshold: decimal.NewFromInt(25000),
	}

	tests := []struct {
		name     string
		subtotal int64
		want     int64
	}{
		{"below threshold pays delivery", 24999, 1000},
		{"at threshold ships free", 25000, 0},
		{"above threshold ships free", 40000, 0},
		{"empty subtotal pays delivery", 0, 1000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cfg.CostFor(decimal.NewFromInt(tt.subtotal))
			assert.True(t, decimal.NewFromInt(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Run("generates valid postgres DSN", func(t *testing.T) {
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
		cfg := DatabaseConfig{Driver: "sqlite", SQLitePath: "/tmp/store.db"}
		assert.Equal(t, "/tmp/store.db", cfg.DSN())
	})
}
