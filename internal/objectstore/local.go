package objectstore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Local stores objects under <baseDir>/<bucket> and serves them from
// <urlPrefix>/<bucket>. It is meant for development.
type Local struct {
	dir       string
	urlPrefix string
}

func NewLocal(baseDir, urlPrefix, bucket string) *Local {
	return &Local{
		dir:       filepath.Join(baseDir, bucket),
		urlPrefix: strings.TrimRight(urlPrefix, "/") + "/" + bucket,
	}
}

func (l *Local) path(key string) (string, error) {
	clean := filepath.Clean("/" + key)
	if clean == "/" {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return filepath.Join(l.dir, clean), nil
}

func (l *Local) Put(ctx context.Context, key string, body io.Reader, _ string) error {
	dst, err := l.path(key)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	f, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}

	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		return err
	}

	if err := ctx.Err(); err != nil {
		f.Close()
		os.Remove(dst)
		return err
	}

	return f.Close()
}

func (l *Local) PublicURL(key string) string {
	return l.urlPrefix + "/" + escapeKey(strings.TrimLeft(key, "/"))
}

func (l *Local) Delete(_ context.Context, key string) error {
	dst, err := l.path(key)
	if err != nil {
		return err
	}
	return os.Remove(dst)
}
