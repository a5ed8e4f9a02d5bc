package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Store:  Store{Driver: StoreDriverMemory},
		Blob:   Blob{Driver: "memory"},
		Upload: Upload{MaxBytes: 1024},
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "defaults are valid", mutate: func(c *Config) {}},
		{name: "postgres store", mutate: func(c *Config) { c.Store.Driver = StoreDriverPostgres }},
		{
			name:    "unknown store driver",
			mutate:  func(c *Config) { c.Store.Driver = "mongo" },
			wantErr: "STORE_DRIVER",
		},
		{
			name:    "unknown blob driver",
			mutate:  func(c *Config) { c.Blob.Driver = "gcs" },
			wantErr: "BLOB_DRIVER",
		},
		{
			name:    "s3 without bucket",
			mutate:  func(c *Config) { c.Blob.Driver = "s3" },
			wantErr: "BLOB_S3_BUCKET",
		},
		{
			name: "s3 with bucket",
			mutate: func(c *Config) {
				c.Blob.Driver = "s3"
				c.Blob.S3.Bucket = "uploads"
			},
		},
		{
			name:    "zero upload limit",
			mutate:  func(c *Config) { c.Upload.MaxBytes = 0 },
			wantErr: "UPLOAD_MAX_BYTES",
		},
		{
			name:    "negative fixture delay",
			mutate:  func(c *Config) { c.Fixtures.Delay = -time.Second },
			wantErr: "FIXTURE_DELAY",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewConfig_FromEnvironment(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("STORE_DRIVER", StoreDriverPostgres)
	t.Setenv("ALLOWED_ORIGINS", "http://a.local,http://b.local")
	t.Setenv("FIXTURE_DELAY", "250ms")
	t.Setenv("DATABASE_USER", "app")
	t.Setenv("DATABASE_PASSWORD", "secret")
	t.Setenv("DATABASE_URL", "db:5432/receivables")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, StoreDriverPostgres, cfg.Store.Driver)
	assert.Equal(t, []string{"http://a.local", "http://b.local"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 250*time.Millisecond, cfg.Fixtures.Delay)
	assert.Equal(t, "postgres://app:secret@db:5432/receivables", cfg.Database.DSN)
	assert.Equal(t, int64(10<<20), cfg.Upload.MaxBytes)
	assert.Equal(t, "*/15 * * * *", cfg.ReceivablesSummary.CronSchedule)
}

func TestNewConfig_RejectsUnknownDriver(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("STORE_DRIVER", "sqlite")

	_, err := NewConfig()
	assert.Error(t, err)
}
