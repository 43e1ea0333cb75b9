package objectstore

import (
	"context"
	"io"
	"time"

	"go.uber.org/fx"

	"github.com/polkiloo/shoutout/internal/config"
)

// Store keeps video files and hands out download links.
type Store interface {
	Put(ctx context.Context, key string, body io.ReadSeeker, size int64, contentType string) error
	URL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// Module provides the configured object store.
var Module = fx.Provide(newStore)

type storeParams struct {
	fx.In

	Config *config.Config
}

func newStore(p storeParams) (Store, error) {
	if p.Config.StorageDriver == config.StorageDriverS3 {
		return NewS3Store(p.Config.S3Region, p.Config.S3Bucket, p.Config.S3Endpoint)
	}
	return NewLocalStore(p.Config.StorageDir)
}
