package storage

import (
	"context"
	"fmt"
)

// Storage drivers.
const (
	DriverLocal = "local"
	DriverS3    = "s3"
)

// Config selects and configures the storage driver.
type Config struct {
	Driver string `env:"STORAGE_DRIVER" envDefault:"local"`

	// BaseURL prefixes public object URLs. Empty means "/uploads" for the
	// local driver and the bucket endpoint for S3.
	BaseURL string `env:"STORAGE_BASE_URL"`

	LocalDir string `env:"STORAGE_LOCAL_DIR" envDefault:"./uploads"`

	S3Bucket         string `env:"STORAGE_S3_BUCKET"`
	S3Region         string `env:"STORAGE_S3_REGION"`
	S3AccessKeyID    string `env:"STORAGE_S3_ACCESS_KEY_ID"`
	S3SecretKey      string `env:"STORAGE_S3_SECRET_KEY"`
	S3Endpoint       string `env:"STORAGE_S3_ENDPOINT"`
	S3ForcePathStyle bool   `env:"STORAGE_S3_FORCE_PATH_STYLE" envDefault:"false"`
}

// New builds the storage selected by cfg.Driver.
func New(ctx context.Context, cfg Config, opts ...S3Option) (Storage, error) {
	switch cfg.Driver {
	case DriverLocal:
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "/uploads"
		}
		return NewLocalStorage(cfg.LocalDir, baseURL)
	case DriverS3:
		return NewS3Storage(ctx, S3Config{
			Bucket:         cfg.S3Bucket,
			Region:         cfg.S3Region,
			AccessKeyID:    cfg.S3AccessKeyID,
			SecretKey:      cfg.S3SecretKey,
			Endpoint:       cfg.S3Endpoint,
			BaseURL:        cfg.BaseURL,
			ForcePathStyle: cfg.S3ForcePathStyle,
		}, opts...)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}
