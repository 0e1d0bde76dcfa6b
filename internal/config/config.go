package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Auth     AuthConfig     `mapstructure:"auth"`
	S3       S3Config       `mapstructure:"s3"`
	Session  SessionConfig  `mapstructure:"session"`
	Feedback FeedbackConfig `mapstructure:"feedback"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Address     string   `mapstructure:"address"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// Database drivers.
const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	URI    string `mapstructure:"uri"`
	Name   string `mapstructure:"name"`
}

// RedisConfig enables cross-instance change notifications and shared
// sessions. When disabled both stay in process.
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// Identity providers.
const (
	ProviderLocal    = "local"
	ProviderFirebase = "firebase"
)

type AuthConfig struct {
	Provider                string        `mapstructure:"provider"`
	JWTSecret               string        `mapstructure:"jwt_secret"`
	JWTExpiration           time.Duration `mapstructure:"jwt_expiration"`
	FirebaseCredentialsPath string        `mapstructure:"firebase_credentials_path"`
	// AdminEmails may pick the admin role during onboarding.
	AdminEmails []string `mapstructure:"admin_emails"`
}

type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

// Enabled is true when enough is configured to talk to a bucket.
func (s S3Config) Enabled() bool {
	return s.BucketName != "" && s.Region != ""
}

type SessionConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// FeedbackConfig throttles message sends per user.
type FeedbackConfig struct {
	SendRate  float64 `mapstructure:"send_rate"` // messages per second
	SendBurst int     `mapstructure:"send_burst"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // text or json
}

// LoadConfig reads configuration from file or environment variables.
// A .env file in path is loaded into the environment first when present.
func LoadConfig(path string) (config Config, err error) {
	_ = godotenv.Load(path + "/.env")

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// server.address -> SERVER_ADDRESS, auth.jwt_secret -> AUTH_JWT_SECRET
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	setDefaults(v)

	err = v.ReadInConfig()
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		err = nil
	} else if err != nil {
		return
	}

	if err = v.Unmarshal(&config); err != nil {
		return
	}
	if err = config.Validate(); err != nil {
		return
	}
	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.cors_origins", []string{"http://localhost:3000"})
	v.SetDefault("database.driver", DriverMongo)
	v.SetDefault("database.uri", "mongodb://localhost:27017/?replicaSet=rs0")
	v.SetDefault("database.name", "coachhub")
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "coachhub:")
	v.SetDefault("auth.provider", ProviderLocal)
	v.SetDefault("auth.jwt_expiration", "24h")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.firebase_credentials_path", "")
	v.SetDefault("auth.admin_emails", []string{})
	v.SetDefault("s3.region", "")
	v.SetDefault("s3.bucket_name", "")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.access_key_id", "")
	v.SetDefault("s3.secret_access_key", "")
	v.SetDefault("s3.use_ssl", true)
	v.SetDefault("session.ttl", "24h")
	v.SetDefault("feedback.send_rate", 1.0)
	v.SetDefault("feedback.send_burst", 5)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Validate checks the combinations LoadConfig cannot express as defaults.
func (c Config) Validate() error {
	var errs []error
	switch c.Database.Driver {
	case DriverMongo:
		if c.Database.URI == "" {
			errs = append(errs, errors.New("database.uri is required for the mongo driver"))
		}
	case DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown database.driver %q", c.Database.Driver))
	}
	if c.Database.Name == "" {
		errs = append(errs, errors.New("database.name is required"))
	}
	switch c.Auth.Provider {
	case ProviderLocal:
		if c.Auth.JWTSecret == "" {
			errs = append(errs, errors.New("auth.jwt_secret is required for the local provider"))
		}
		if c.Auth.JWTExpiration <= 0 {
			errs = append(errs, errors.New("auth.jwt_expiration must be positive"))
		}
	case ProviderFirebase:
		if c.Auth.FirebaseCredentialsPath == "" {
			errs = append(errs, errors.New("auth.firebase_credentials_path is required for the firebase provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown auth.provider %q", c.Auth.Provider))
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		errs = append(errs, errors.New("redis.addr is required when redis is enabled"))
	}
	if c.Session.TTL <= 0 {
		errs = append(errs, errors.New("session.ttl must be positive"))
	}
	if c.Feedback.SendRate <= 0 || c.Feedback.SendBurst <= 0 {
		errs = append(errs, errors.New("feedback.send_rate and feedback.send_burst must be positive"))
	}
	return errors.Join(errs...)
}
