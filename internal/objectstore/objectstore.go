package objectstore

import (
	"context"
	"fmt"
	"io"

	"github.com/safar/go-storefront/internal/config"
)

// Bucket is one named namespace of the object store. Objects are written with
// Put and then addressed through PublicURL.
type Bucket interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string) error
	PublicURL(key string) string
	Delete(ctx context.Context, key string) error
}

type Buckets struct {
	BlogMedia     Bucket
	ProductImages Bucket
}

func Open(ctx context.Context, cfg config.StorageConfig) (Buckets, error) {
	switch cfg.Driver {
	case config.StorageDriverLocal:
		return Buckets{
			BlogMedia:     NewLocal(cfg.LocalDir, cfg.LocalURL, cfg.BlogBucket),
			ProductImages: NewLocal(cfg.LocalDir, cfg.LocalURL, cfg.ProductBucket),
		}, nil

	case config.StorageDriverS3:
		client, err := NewS3Client(ctx, cfg)
		if err != nil {
			return Buckets{}, err
		}
		return Buckets{
			BlogMedia:     NewS3(client, cfg, cfg.BlogBucket),
			ProductImages: NewS3(client, cfg, cfg.ProductBucket),
		}, nil

	default:
		return Buckets{}, fmt.Errorf("unknown storage driver: %s", cfg.Driver)
	}
}
