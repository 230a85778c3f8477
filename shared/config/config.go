package config

import (
	"fmt"
	"os"
	"path"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

const (
	AttachmentBackendFS = "fs"
	AttachmentBackendS3 = "s3"
)

type Config struct {
	Public  Public
	Private Private
}

type Public struct {
	HttpPort int    `yaml:"http_port" env:"FEED_HTTP_PORT" validate:"required,gt=0"`
	LogLevel string `yaml:"log_level" env:"FEED_LOG_LEVEL"`
	LogJSON  bool   `yaml:"log_json" env:"FEED_LOG_JSON"`

	JwtTTL     time.Duration `yaml:"jwt_ttl" validate:"required"`
	BcryptCost int           `yaml:"bcrypt_cost" validate:"omitempty,min=4,max=31"`

	PostsPerPage int `yaml:"posts_per_page" validate:"required,gt=0"`
	MaxPerPage   int `yaml:"max_per_page" validate:"required,gtefield=PostsPerPage"`

	MaxAttachmentSize      int64    `yaml:"max_attachment_size" validate:"required,gt=0"`
	AllowedAttachmentMimes []string `yaml:"allowed_attachment_mime_types" validate:"required,min=1"`

	Attachments Attachments `yaml:"attachments"`

	AllowedOrigins []string `yaml:"allowed_origins"`
	SecureHeaders  bool     `yaml:"secure_headers" env:"FEED_SECURE_HEADERS"`
}

type Attachments struct {
	Backend string `yaml:"backend" env:"FEED_ATTACHMENTS_BACKEND" validate:"required,oneof=fs s3"`
	FsRoot  string `yaml:"fs_root" env:"FEED_ATTACHMENTS_FS_ROOT" validate:"required_if=Backend fs"`
	S3      S3     `yaml:"s3"`
}

type S3 struct {
	Bucket   string `yaml:"bucket" env:"FEED_S3_BUCKET"`
	Region   string `yaml:"region" env:"FEED_S3_REGION"`
	Endpoint string `yaml:"endpoint" env:"FEED_S3_ENDPOINT"` // empty for AWS, set for R2/MinIO
	Prefix   string `yaml:"prefix"`
}

type Pg struct {
	Host     string `yaml:"host" env:"FEED_PG_HOST" validate:"required"`
	Port     int    `yaml:"port" env:"FEED_PG_PORT" validate:"required"`
	User     string `yaml:"user" env:"FEED_PG_USER" validate:"required"`
	Password string `yaml:"password" env:"FEED_PG_PASSWORD"`
	Dbname   string `yaml:"dbname" env:"FEED_PG_DBNAME" validate:"required"`
}

type Private struct {
	JwtKey string `yaml:"jwt_key" env:"FEED_JWT_KEY" validate:"required"`
	Pg     Pg     `yaml:"pg"`

	S3AccessKeyId     string `yaml:"s3_access_key_id" env:"FEED_S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `yaml:"s3_secret_access_key" env:"FEED_S3_SECRET_ACCESS_KEY"`
}

func (c *Config) JwtKey() string {
	return c.Private.JwtKey
}

func (c *Config) JwtTTL() time.Duration {
	return c.Public.JwtTTL
}

func mustLoadPath(configPath string, output interface{}) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		panic("can't read config file: " + configPath)
	}

	if err := yaml.Unmarshal(configFile, output); err != nil {
		panic("can't unmarshal config file: " + configPath)
	}
}

// MustLoad reads public.yaml and private.yaml from configFolder, overlays
// FEED_* environment variables (a .env file in the working directory is
// loaded first when present) and validates the result. Panics on failure.
func MustLoad(configFolder string) *Config {
	cfg := &Config{Public: defaultPublic()}
	mustLoadPath(path.Join(configFolder, "public.yaml"), &cfg.Public)
	mustLoadPath(path.Join(configFolder, "private.yaml"), &cfg.Private)

	if err := applyEnv(cfg); err != nil {
		panic(err.Error())
	}
	if err := Validate(cfg); err != nil {
		panic(err.Error())
	}
	return cfg
}

func applyEnv(cfg *Config) error {
	// .env is optional, a missing file is not an error
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("load .env: %w", err)
	}
	if err := env.Parse(&cfg.Public); err != nil {
		return fmt.Errorf("parse public env: %w", err)
	}
	if err := env.Parse(&cfg.Private); err != nil {
		return fmt.Errorf("parse private env: %w", err)
	}
	return nil
}

// Validate checks required fields and cross-field rules.
func Validate(cfg *Config) error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(cfg.Public); err != nil {
		return fmt.Errorf("invalid public config: %w", err)
	}
	if err := validate.Struct(cfg.Private); err != nil {
		return fmt.Errorf("invalid private config: %w", err)
	}
	if cfg.Public.Attachments.Backend == AttachmentBackendS3 {
		if cfg.Public.Attachments.S3.Bucket == "" || cfg.Private.S3AccessKeyId == "" || cfg.Private.S3SecretAccessKey == "" {
			return fmt.Errorf("invalid config: s3 backend needs bucket and access keys")
		}
	}
	return nil
}

func defaultPublic() Public {
	return Public{
		HttpPort:     8080,
		LogLevel:     "info",
		JwtTTL:       20 * time.Hour,
		BcryptCost:   12,
		PostsPerPage: 5,
		MaxPerPage:   100,
	}
}
