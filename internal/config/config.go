package config

import (
	"errors"
	"log"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port     string
	DBDSN    string
	LogFile  string
	Storage  string // local | remote
	Uploads  UploadConfig
	Remote   RemoteConfig
	AdminKey string // bcrypt hash guarding catalog writes
	Workers  int
}

type UploadConfig struct {
	Dir          string
	PublicPath   string
	MaxBytes     int64
	AllowedTypes []string
}

// RemoteConfig addresses the object storage account. Secrets come only from the
// environment; there are no built-in fallbacks.
type RemoteConfig struct {
	CloudName string
	APIKey    string
	APISecret string
	Namespace string
}

var ErrRemoteCredentials = errors.New("remote storage credentials are not configured")

// Validate reports whether all three credentials are present.
func (r RemoteConfig) Validate() error {
	if r.CloudName == "" || r.APIKey == "" || r.APISecret == "" {
		return ErrRemoteCredentials
	}
	return nil
}

func defaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("DB_DSN", "catalog.db") // sqlite file in project root
	v.SetDefault("LOG_FILE", "")
	v.SetDefault("STORAGE_BACKEND", "local")
	v.SetDefault("UPLOAD_DIR", "./uploads")
	v.SetDefault("UPLOAD_PUBLIC_PATH", "/uploads")
	v.SetDefault("MAX_UPLOAD_BYTES", 5<<20)
	v.SetDefault("ALLOWED_IMAGE_TYPES", "jpeg,png,gif,webp")
	v.SetDefault("CLOUDINARY_NAMESPACE", "di-wholesale")
	v.SetDefault("MIGRATE_WORKERS", 1)
}

// Load reads configuration from the environment.
func Load() (Config, error) {
	v := viper.New()
	defaults(v)
	v.AutomaticEnv()

	backend := strings.ToLower(strings.TrimSpace(v.GetString("STORAGE_BACKEND")))
	if backend != "local" && backend != "remote" {
		return Config{}, errors.New("STORAGE_BACKEND must be local or remote")
	}
	maxBytes := v.GetInt64("MAX_UPLOAD_BYTES")
	if maxBytes <= 0 {
		return Config{}, errors.New("MAX_UPLOAD_BYTES must be positive")
	}
	workers := v.GetInt("MIGRATE_WORKERS")
	if workers < 1 {
		workers = 1
	}

	cfg := Config{
		Port:    v.GetString("PORT"),
		DBDSN:   v.GetString("DB_DSN"),
		LogFile: v.GetString("LOG_FILE"),
		Storage: backend,
		Uploads: UploadConfig{
			Dir:          v.GetString("UPLOAD_DIR"),
			PublicPath:   strings.TrimRight(v.GetString("UPLOAD_PUBLIC_PATH"), "/"),
			MaxBytes:     maxBytes,
			AllowedTypes: splitList(v.GetString("ALLOWED_IMAGE_TYPES")),
		},
		Remote: RemoteConfig{
			CloudName: v.GetString("CLOUDINARY_CLOUD_NAME"),
			APIKey:    v.GetString("CLOUDINARY_API_KEY"),
			APISecret: v.GetString("CLOUDINARY_API_SECRET"),
			Namespace: strings.Trim(v.GetString("CLOUDINARY_NAMESPACE"), "/"),
		},
		AdminKey: v.GetString("ADMIN_KEY_HASH"),
		Workers:  workers,
	}
	if cfg.Storage == "remote" {
		if err := cfg.Remote.Validate(); err != nil {
			return Config{}, err
		}
	}
	log.Printf("[config] PORT=%s DB_DSN=%s STORAGE_BACKEND=%s UPLOAD_DIR=%s LOG_FILE=%s",
		cfg.Port, cfg.DBDSN, cfg.Storage, cfg.Uploads.Dir, cfg.LogFile)
	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			out = append(out, p)
		}
	}
	return out
}
