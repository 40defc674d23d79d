package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. AUCTION_DB_DSN
const EnvPrefix = "AUCTION"

type Config struct {
	Server  ServerConfig
	DB      DBConfig
	Auth    AuthConfig
	Log     LogConfig
	Storage StorageConfig
	AMQP    AMQPConfig
}

type ServerConfig struct {
	Addr string
}

type DBConfig struct {
	Driver string // sqlite or postgres
	DSN    string
	Debug  bool
}

type AuthConfig struct {
	JWTSecret string
	Issuer    string
	TokenTTL  time.Duration
}

type LogConfig struct {
	Level string
}

type StorageConfig struct {
	Backend       string // local or s3
	LocalPath     string
	PublicBaseURL string
	MaxImageBytes int64
	S3            S3Config
}

type S3Config struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
}

type AMQPConfig struct {
	URL      string
	Exchange string
}

// Load parses command line flags and AUCTION_* environment variables.
// Flags take precedence over the environment.
func Load(args []string) (*Config, error) {
	fs := pflag.NewFlagSet("auction-manager", pflag.ContinueOnError)

	// server config
	fs.String("server-addr", ":8080", "listen address")

	// db config
	fs.String("db-driver", "sqlite", "sqlite or postgres")
	fs.String("db-dsn", "file:auction.db?_foreign_keys=on", "database connection string")
	fs.Bool("db-debug", false, "log every SQL statement")

	// auth config
	fs.String("auth-jwt-secret", "", "HMAC secret for access tokens")
	fs.String("auth-issuer", "auction-manager", "")
	fs.Duration("auth-token-ttl", 3*time.Hour, "")

	// log config
	fs.String("log-level", "info", "")

	// storage config
	fs.String("storage-backend", "local", "local or s3")
	fs.String("storage-local-path", "./media", "")
	fs.String("storage-public-base-url", "http://localhost:8080/media", "")
	fs.Int64("storage-max-image-bytes", 5<<20, "")
	fs.String("s3-endpoint", "", "")
	fs.String("s3-region", "auto", "")
	fs.String("s3-bucket", "", "")
	fs.String("s3-access-key-id", "", "")
	fs.String("s3-secret-access-key", "", "")

	// amqp config
	fs.String("amqp-url", "", "broker url, events are only logged when empty")
	fs.String("amqp-exchange", "auction_events", "")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	// bind pflag to viper
	v := viper.New()
	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	return &Config{
		Server: ServerConfig{
			Addr: v.GetString("server-addr"),
		},
		DB: DBConfig{
			Driver: v.GetString("db-driver"),
			DSN:    v.GetString("db-dsn"),
			Debug:  v.GetBool("db-debug"),
		},
		Auth: AuthConfig{
			JWTSecret: v.GetString("auth-jwt-secret"),
			Issuer:    v.GetString("auth-issuer"),
			TokenTTL:  v.GetDuration("auth-token-ttl"),
		},
		Log: LogConfig{
			Level: v.GetString("log-level"),
		},
		Storage: StorageConfig{
			Backend:       v.GetString("storage-backend"),
			LocalPath:     v.GetString("storage-local-path"),
			PublicBaseURL: v.GetString("storage-public-base-url"),
			MaxImageBytes: v.GetInt64("storage-max-image-bytes"),
			S3: S3Config{
				Endpoint:        v.GetString("s3-endpoint"),
				Region:          v.GetString("s3-region"),
				Bucket:          v.GetString("s3-bucket"),
				AccessKeyID:     v.GetString("s3-access-key-id"),
				SecretAccessKey: v.GetString("s3-secret-access-key"),
			},
		},
		AMQP: AMQPConfig{
			URL:      v.GetString("amqp-url"),
			Exchange: v.GetString("amqp-exchange"),
		},
	}, nil
}

// Validate reports the first missing or inconsistent setting
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server address is required"))
	}
	switch c.DB.Driver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Errorf("unsupported db driver %q", c.DB.Driver))
	}
	if c.DB.DSN == "" {
		errs = append(errs, errors.New("db dsn is required"))
	}
	if len(c.Auth.JWTSecret) < 16 {
		errs = append(errs, errors.New("jwt secret must be at least 16 characters"))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("token ttl must be positive"))
	}
	switch c.Storage.Backend {
	case "local":
		if c.Storage.LocalPath == "" {
			errs = append(errs, errors.New("local storage path is required"))
		}
	case "s3":
		if c.Storage.S3.Bucket == "" || c.Storage.S3.AccessKeyID == "" || c.Storage.S3.SecretAccessKey == "" {
			errs = append(errs, errors.New("s3 bucket and credentials are required"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported storage backend %q", c.Storage.Backend))
	}
	return errors.Join(errs...)
}
