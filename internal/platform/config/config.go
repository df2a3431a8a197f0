package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPath = "config/config.yaml"

	ModeDev     = "dev"
	ModeRelease = "release"

	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"

	StorageLocal = "local"
	StorageOSS   = "oss"
)

type DatabaseConfig struct {
	Driver   string `yaml:"driver" env:"DB_DRIVER"`
	Host     string `yaml:"host" env:"DB_HOST"`
	Port     int    `yaml:"port" env:"DB_PORT"`
	Username string `yaml:"user" env:"DB_USER"`
	Password string `yaml:"password" env:"DB_PASSWORD"`
	DBName   string `yaml:"dbname" env:"DB_NAME"`
	// sqlite のみ
	Path string `yaml:"path" env:"DB_PATH"`
}

type AuthConfig struct {
	JWTSecret     string        `yaml:"jwt_secret" env:"JWT_SECRET"`
	TokenTTL      time.Duration `yaml:"token_ttl" env:"TOKEN_TTL"`
	AdminUser     string        `yaml:"admin_user" env:"ADMIN_USER"`
	AdminPassword string        `yaml:"admin_password" env:"ADMIN_PASSWORD"`
	AdminName     string        `yaml:"admin_name" env:"ADMIN_NAME"`
}

type OSSConfig struct {
	Endpoint   string `yaml:"endpoint" env:"OSS_ENDPOINT"`
	AccessKey  string `yaml:"access_key" env:"OSS_ACCESS_KEY"`
	SecretKey  string `yaml:"secret_key" env:"OSS_SECRET_KEY"`
	Bucket     string `yaml:"bucket" env:"OSS_BUCKET"`
	Prefix     string `yaml:"prefix" env:"OSS_PREFIX"`
	PublicBase string `yaml:"public_base" env:"OSS_PUBLIC_BASE"`
}

type StorageConfig struct {
	Backend        string    `yaml:"backend" env:"STORAGE_BACKEND"`
	LocalDir       string    `yaml:"local_dir" env:"STORAGE_LOCAL_DIR"`
	PublicPrefix   string    `yaml:"public_prefix" env:"STORAGE_PUBLIC_PREFIX"`
	MaxUploadBytes int64     `yaml:"max_upload_bytes" env:"STORAGE_MAX_UPLOAD_BYTES"`
	MaxPhotoPx     int       `yaml:"max_photo_px" env:"STORAGE_MAX_PHOTO_PX"`
	OSS            OSSConfig `yaml:"oss"`
}

type ServerConfig struct {
	Addr           string   `yaml:"addr" env:"SERVER_ADDR"`
	AllowedOrigins []string `yaml:"allowed_origins" env:"SERVER_ALLOWED_ORIGINS" envSeparator:","`
	// フロントのビルド出力。空なら配信しない
	PublicDir string `yaml:"public_dir" env:"SERVER_PUBLIC_DIR"`
}

type Certs struct {
	Cert string `yaml:"cert" env:"TLS_CERT"`
	Key  string `yaml:"key" env:"TLS_KEY"`
}

type Config struct {
	Version     string         `yaml:"version"`
	Mode        string         `yaml:"mode" env:"MODE"`
	Server      ServerConfig   `yaml:"server"`
	DB          DatabaseConfig `yaml:"database"`
	Auth        AuthConfig     `yaml:"auth"`
	Storage     StorageConfig  `yaml:"storage"`
	Certificate Certs          `yaml:"certificate"`
}

// Default は設定ファイルが無くても起動できる開発用の値
func Default() Config {
	return Config{
		Mode: ModeDev,
		Server: ServerConfig{
			Addr:           ":3000",
			AllowedOrigins: []string{"http://localhost:5173"},
			PublicDir:      "public",
		},
		DB: DatabaseConfig{
			Driver: DriverSQLite,
			Port:   3306,
			Path:   "asistencia.db",
		},
		Auth: AuthConfig{
			TokenTTL:  8 * time.Hour,
			AdminUser: "admin",
			AdminName: "Administrador",
		},
		Storage: StorageConfig{
			Backend:        StorageLocal,
			LocalDir:       "public/uploads",
			PublicPrefix:   "/uploads",
			MaxUploadBytes: 5 << 20,
			MaxPhotoPx:     1600,
		},
	}
}

// Load: YAML（任意）→ 環境変数 ASISTENCIA_* の順に上書きして検証する
func Load(path string) (*Config, error) {
	cfg := Default()

	buf, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(buf, &cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
		// 環境変数だけで動かす
	default:
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "ASISTENCIA_"}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	c.Mode = strings.ToLower(strings.TrimSpace(c.Mode))
	if c.Mode != ModeDev && c.Mode != ModeRelease {
		return fmt.Errorf("mode must be %q or %q, got %q", ModeDev, ModeRelease, c.Mode)
	}

	switch c.DB.Driver {
	case DriverMySQL:
		if c.DB.Host == "" || c.DB.DBName == "" {
			return errors.New("database.host and database.dbname are required for mysql")
		}
	case DriverSQLite:
		if c.DB.Path == "" {
			return errors.New("database.path is required for sqlite")
		}
	default:
		return fmt.Errorf("unsupported database.driver %q", c.DB.Driver)
	}

	if c.Auth.JWTSecret == "" {
		if c.Mode == ModeRelease {
			return errors.New("auth.jwt_secret is required in release mode")
		}
		c.Auth.JWTSecret = "dev-only-secret"
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("auth.token_ttl must be > 0")
	}

	switch c.Storage.Backend {
	case StorageLocal:
		if c.Storage.LocalDir == "" {
			return errors.New("storage.local_dir is required for local backend")
		}
	case StorageOSS:
		o := c.Storage.OSS
		if o.Endpoint == "" || o.AccessKey == "" || o.SecretKey == "" || o.Bucket == "" {
			return errors.New("storage.oss endpoint/access_key/secret_key/bucket are required")
		}
	default:
		return fmt.Errorf("unsupported storage.backend %q", c.Storage.Backend)
	}
	if c.Storage.MaxUploadBytes <= 0 {
		return errors.New("storage.max_upload_bytes must be > 0")
	}
	return nil
}

// TLSEnabled: cert/key が両方指定されていれば HTTPS で起動
func (c *Config) TLSEnabled() bool {
	return c.Certificate.Cert != "" && c.Certificate.Key != ""
}
