package sink

import (
	"context"
	"fmt"

	"drivemeta/internal/config"
	"drivemeta/internal/export"
)

// NewSinkFromConfig creates a Sink implementation based on the sink config type.
func NewSinkFromConfig(ctx context.Context, cfg config.SinkConfig) (export.Sink, error) {
	switch cfg.Type {
	case "memory":
		return NewMemorySink(), nil
	case "s3":
		return NewS3Sink(ctx, S3Options{
			Bucket:    cfg.S3Bucket,
			Prefix:    cfg.S3Prefix,
			Region:    cfg.S3Region,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	case "filesystem", "":
		if cfg.FSRoot == "" {
			return nil, fmt.Errorf("filesystem sink requires fs_root to be set")
		}
		return NewFileSystemSink(cfg.FSRoot)
	default:
		return nil, fmt.Errorf("unknown sink type: %s", cfg.Type)
	}
}
