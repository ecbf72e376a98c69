package media

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/safar/go-storefront/internal/models"
	"github.com/safar/go-storefront/internal/objectstore"
)

type Uploader struct {
	bucket objectstore.Bucket
	now    func() time.Time
}

func NewUploader(bucket objectstore.Bucket) *Uploader {
	return &Uploader{bucket: bucket, now: time.Now}
}

// Batch is what UploadAll wrote. Keys lets the caller remove the objects
// again when its own write fails.
type Batch struct {
	Media models.MediaList
	Keys  []string
}

// Upload stores a single file under owner and returns its public URL and kind.
func (u *Uploader) Upload(ctx context.Context, owner string, f File) (models.Media, error) {
	m, _, err := u.put(ctx, owner, f)
	return m, err
}

func (u *Uploader) put(ctx context.Context, owner string, f File) (models.Media, string, error) {
	src, err := f.Open()
	if err != nil {
		return models.Media{}, "", fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer src.Close()

	contentType, body, err := DetectContentType(f.ContentType, src)
	if err != nil {
		return models.Media{}, "", err
	}

	key := ObjectKey(owner, f.Name, u.now())
	if err := u.bucket.Put(ctx, key, body, contentType); err != nil {
		return models.Media{}, "", err
	}

	return models.Media{Type: Classify(contentType), URL: u.bucket.PublicURL(key)}, key, nil
}

// UploadAll uploads files one after another. The first failure stops the
// batch; objects already written are removed and the failure is returned.
func (u *Uploader) UploadAll(ctx context.Context, owner string, files []File) (Batch, error) {
	batch := Batch{
		Media: make(models.MediaList, 0, len(files)),
		Keys:  make([]string, 0, len(files)),
	}
	for _, f := range files {
		m, key, err := u.put(ctx, owner, f)
		if err != nil {
			if rmErr := u.Remove(ctx, batch.Keys); rmErr != nil {
				return Batch{}, errors.Join(err, rmErr)
			}
			return Batch{}, err
		}
		batch.Media = append(batch.Media, m)
		batch.Keys = append(batch.Keys, key)
	}
	return batch, nil
}

// Remove deletes every key and reports all failures together.
func (u *Uploader) Remove(ctx context.Context, keys []string) error {
	var errs []error
	for _, key := range keys {
		if err := u.bucket.Delete(ctx, key); err != nil {
			errs = append(errs, fmt.Errorf("delete %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}
