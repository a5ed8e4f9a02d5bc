package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	App                App                `mapstructure:",squash"`
	Server             Server             `mapstructure:",squash"`
	Store              Store              `mapstructure:",squash"`
	Database           Database           `mapstructure:",squash"`
	Upload             Upload             `mapstructure:",squash"`
	Blob               Blob               `mapstructure:",squash"`
	AMQP               AMQP               `mapstructure:",squash"`
	Fixtures           Fixtures           `mapstructure:",squash"`
	ReceivablesSummary ReceivablesSummary `mapstructure:",squash"`
	SecretKey          string             `mapstructure:"secret_key"`
}

type App struct {
	LogLevel string `mapstructure:"log_level"`
}

type Server struct {
	Host           string   `mapstructure:"host"`
	Port           string   `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

const (
	StoreDriverMemory   = "memory"
	StoreDriverPostgres = "postgres"
)

type Store struct {
	Driver string `mapstructure:"store_driver"`
}

type Database struct {
	DSN           string `mapstructure:"-"`
	Driver        string `mapstructure:"database_driver"`
	Password      string `mapstructure:"database_password"`
	URL           string `mapstructure:"database_url"`
	User          string `mapstructure:"database_user"`
	MigrateOnBoot bool   `mapstructure:"database_migrate"`
}

type Upload struct {
	MaxBytes       int64 `mapstructure:"upload_max_bytes"`
	ArchiveEnabled bool  `mapstructure:"upload_archive_enabled"`
}

type Blob struct {
	Driver string `mapstructure:"blob_driver"`
	FSRoot string `mapstructure:"blob_fs_root"`
	S3     S3     `mapstructure:",squash"`
}

type S3 struct {
	Bucket       string `mapstructure:"blob_s3_bucket"`
	Region       string `mapstructure:"blob_s3_region"`
	Endpoint     string `mapstructure:"blob_s3_endpoint"`
	UsePathStyle bool   `mapstructure:"blob_s3_use_path_style"`
}

type AMQP struct {
	URL      string `mapstructure:"amqp_url"`
	Exchange string `mapstructure:"amqp_exchange"`
	Queue    string `mapstructure:"amqp_queue"`
}

type Fixtures struct {
	Delay time.Duration `mapstructure:"fixture_delay"`
	Seed  int64         `mapstructure:"fixture_seed"`
}

type ReceivablesSummary struct {
	CronSchedule string `mapstructure:"receivables_summary_cron"`
	Enabled      bool   `mapstructure:"receivables_summary_enabled"`
}

func SetDefaults() {
	viper.SetDefault("HOST", "localhost")
	viper.SetDefault("PORT", 8000)
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000")

	viper.SetDefault("LOG_LEVEL", "debug")
	viper.SetDefault("SECRET_KEY", "your_secret_key")

	viper.SetDefault("STORE_DRIVER", StoreDriverMemory)

	viper.SetDefault("DATABASE_DRIVER", "postgres")
	viper.SetDefault("DATABASE_URL", "localhost:5432/receivables?sslmode=disable")
	viper.SetDefault("DATABASE_USER", "postgres")
	viper.SetDefault("DATABASE_PASSWORD", "root")
	viper.SetDefault("DATABASE_MIGRATE", true)

	viper.SetDefault("UPLOAD_MAX_BYTES", 10<<20) // 10 MiB
	viper.SetDefault("UPLOAD_ARCHIVE_ENABLED", true)

	viper.SetDefault("BLOB_DRIVER", "memory")
	viper.SetDefault("BLOB_FS_ROOT", "./data/blobs")
	viper.SetDefault("BLOB_S3_BUCKET", "")
	viper.SetDefault("BLOB_S3_REGION", "us-east-1")
	viper.SetDefault("BLOB_S3_ENDPOINT", "")
	viper.SetDefault("BLOB_S3_USE_PATH_STYLE", false)

	viper.SetDefault("AMQP_URL", "")
	viper.SetDefault("AMQP_EXCHANGE", "receivables")
	viper.SetDefault("AMQP_QUEUE", "receivables.notifications")

	viper.SetDefault("FIXTURE_DELAY", "0s")
	viper.SetDefault("FIXTURE_SEED", 42)

	viper.SetDefault("RECEIVABLES_SUMMARY_CRON", "*/15 * * * *") // every 15 minutes
	viper.SetDefault("RECEIVABLES_SUMMARY_ENABLED", true)
}

func NewConfig() (*Config, error) {
	loadEnvFile() // ONLY LOCAL

	config := &Config{}

	SetDefaults()

	viper.SetConfigType("env")
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logrus.Debug("config: using environment loaded by godotenv: ", err)
	} else {
		logrus.Info("config: .env read by viper")
	}

	err := viper.Unmarshal(&config, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	config.Database.DSN = fmt.Sprintf(
		"%s://%s:%s@%s",
		config.Database.Driver,
		config.Database.User,
		config.Database.Password,
		config.Database.URL,
	)

	return config, nil
}

// Validate rejects driver names and limits the service cannot run with
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case StoreDriverMemory, StoreDriverPostgres:
	default:
		return fmt.Errorf("config: unknown STORE_DRIVER %q", c.Store.Driver)
	}

	switch c.Blob.Driver {
	case "memory", "fs", "s3":
	default:
		return fmt.Errorf("config: unknown BLOB_DRIVER %q", c.Blob.Driver)
	}

	if c.Blob.Driver == "s3" && c.Blob.S3.Bucket == "" {
		return fmt.Errorf("config: BLOB_S3_BUCKET is required for the s3 driver")
	}

	if c.Upload.MaxBytes <= 0 {
		return fmt.Errorf("config: UPLOAD_MAX_BYTES must be positive")
	}

	if c.Fixtures.Delay < 0 {
		return fmt.Errorf("config: FIXTURE_DELAY must not be negative")
	}

	return nil
}

func loadEnvFile() {
	cwd, err := os.Getwd()
	if err != nil {
		logrus.Warn("config: could not resolve working directory: ", err)
		return
	}

	locations := []string{
		filepath.Join(cwd, ".env"),
		filepath.Join(filepath.Dir(cwd), ".env"),
		filepath.Join(cwd, "../../.env"),
	}

	for _, location := range locations {
		if err := godotenv.Load(location); err == nil {
			logrus.Info("config: .env loaded from ", location)
			return
		}
	}

	logrus.Debug("config: no .env file found")
}
