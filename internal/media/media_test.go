package media

import (
	"bytes"
	"context"
	"errors"
	"io"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/safar/go-storefront/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func memFile(name, contentType string, body []byte) File {
	return File{
		Name:        name,
		ContentType: contentType,
		Size:        int64(len(body)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(string(body))), nil
		},
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		in   string
		want models.MediaType
	}{
		{"video/mp4", models.MediaVideo},
		{"VIDEO/quicktime", models.MediaVideo},
		{"audio/mpeg", models.MediaAudio},
		{"image/png", models.MediaImage},
		{"application/pdf", models.MediaImage},
		{"", models.MediaImage},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.in))
		})
	}
}

func TestDetectContentTypeKeepsDeclared(t *testing.T) {
	ct, r, err := DetectContentType("video/mp4", strings.NewReader("abc"))
	require.NoError(t, err)
	assert.Equal(t, "video/mp4", ct)

	body, _ := io.ReadAll(r)
	assert.Equal(t, "abc", string(body))
}

func TestDetectContentTypeSniffs(t *testing.T) {
	ct, r, err := DetectContentType("application/octet-stream", strings.NewReader(string(pngHeader)))
	require.NoError(t, err)
	assert.Equal(t, "image/png", ct)

	body, _ := io.ReadAll(r)
	assert.Equal(t, pngHeader, body)
}

func TestDetectContentTypeKeepsSeekableBody(t *testing.T) {
	src := bytes.NewReader(pngHeader)

	ct, r, err := DetectContentType("", src)
	require.NoError(t, err)
	assert.Equal(t, "image/png", ct)

	_, seekable := r.(io.ReadSeeker)
	assert.True(t, seekable)

	body, _ := io.ReadAll(r)
	assert.Equal(t, pngHeader, body)
}

func TestDetectContentTypeStreamsUnseekableBody(t *testing.T) {
	ct, r, err := DetectContentType("", io.MultiReader(bytes.NewReader(pngHeader)))
	require.NoError(t, err)
	assert.Equal(t, "image/png", ct)

	body, _ := io.ReadAll(r)
	assert.Equal(t, pngHeader, body)
}

func TestObjectKey(t *testing.T) {
	now := time.UnixMilli(1700000000123)

	key := ObjectKey("user-1", "Photo.JPG", now)
	assert.Regexp(t, regexp.MustCompile(`^user-1/1700000000123-[0-9a-f]{8}\.jpg$`), key)

	bare := ObjectKey("user-1", "README", now)
	assert.Regexp(t, regexp.MustCompile(`^user-1/1700000000123-[0-9a-f]{8}$`), bare)

	assert.NotEqual(t, key, ObjectKey("user-1", "Photo.JPG", now))
}

func TestApplyImageCap(t *testing.T) {
	existing := models.MediaList{
		{Type: models.MediaImage, URL: "a"},
		{Type: models.MediaImage, URL: "b"},
		{Type: models.MediaImage, URL: "c"},
		{Type: models.MediaVideo, URL: "d"},
	}
	staged := []File{
		memFile("1.jpg", "image/jpeg", nil),
		memFile("2.jpg", "image/jpeg", nil),
	}

	res := ApplyImageCap(existing, staged)

	require.Len(t, res.Accepted, 1)
	assert.Equal(t, "1.jpg", res.Accepted[0].Name)
	assert.Equal(t, 1, res.Rejected)
	assert.NotEmpty(t, res.Notice)
}

func TestApplyImageCapNeverCapsOtherMedia(t *testing.T) {
	existing := models.MediaList{
		{Type: models.MediaImage, URL: "a"},
		{Type: models.MediaImage, URL: "b"},
		{Type: models.MediaImage, URL: "c"},
		{Type: models.MediaImage, URL: "d"},
	}
	staged := []File{
		memFile("clip.mp4", "video/mp4", nil),
		memFile("x.png", "image/png", nil),
		memFile("y.png", "image/png", nil),
		memFile("song.mp3", "audio/mpeg", nil),
	}

	res := ApplyImageCap(existing, staged)

	require.Len(t, res.Accepted, 2)
	assert.Equal(t, "clip.mp4", res.Accepted[0].Name)
	assert.Equal(t, "song.mp3", res.Accepted[1].Name)
	assert.Equal(t, 2, res.Rejected)
	assert.Contains(t, res.Notice, "2 image(s)")
}

func TestApplyImageCapNoNoticeWhenUnderLimit(t *testing.T) {
	res := ApplyImageCap(nil, []File{memFile("1.jpg", "image/jpeg", nil)})

	assert.Len(t, res.Accepted, 1)
	assert.Zero(t, res.Rejected)
	assert.Empty(t, res.Notice)
}

type putCall struct {
	key         string
	contentType string
	body        string
}

type recordingBucket struct {
	calls   []putCall
	deleted []string
	failAt  int
	err     error
}

func (b *recordingBucket) Put(_ context.Context, key string, body io.Reader, contentType string) error {
	data, _ := io.ReadAll(body)
	b.calls = append(b.calls, putCall{key: key, contentType: contentType, body: string(data)})
	if b.failAt > 0 && len(b.calls) == b.failAt {
		return b.err
	}
	return nil
}

func (b *recordingBucket) PublicURL(key string) string { return "https://cdn.test/" + key }

func (b *recordingBucket) Delete(_ context.Context, key string) error {
	b.deleted = append(b.deleted, key)
	return nil
}

func TestUploadAllInOrder(t *testing.T) {
	bucket := &recordingBucket{}
	up := NewUploader(bucket)

	got, err := up.UploadAll(context.Background(), "user-1", []File{
		memFile("a.jpg", "image/jpeg", []byte("a")),
		memFile("b.mp4", "video/mp4", []byte("b")),
		memFile("c", "", pngHeader),
	})
	require.NoError(t, err)

	require.Len(t, got.Media, 3)
	assert.Equal(t, models.MediaImage, got.Media[0].Type)
	assert.Equal(t, models.MediaVideo, got.Media[1].Type)
	assert.Equal(t, models.MediaImage, got.Media[2].Type)

	require.Len(t, bucket.calls, 3)
	assert.Equal(t, "a", bucket.calls[0].body)
	assert.Equal(t, "image/png", bucket.calls[2].contentType)
	assert.Equal(t, string(pngHeader), bucket.calls[2].body)
	assert.Equal(t, "https://cdn.test/"+bucket.calls[1].key, got.Media[1].URL)
	assert.True(t, strings.HasPrefix(bucket.calls[0].key, "user-1/"))
	assert.Equal(t, []string{bucket.calls[0].key, bucket.calls[1].key, bucket.calls[2].key}, got.Keys)
	assert.Empty(t, bucket.deleted)
}

func TestUploadAllAbortsOnFirstFailure(t *testing.T) {
	storeErr := errors.New("bucket quota exceeded")
	bucket := &recordingBucket{failAt: 2, err: storeErr}
	up := NewUploader(bucket)

	got, err := up.UploadAll(context.Background(), "user-1", []File{
		memFile("a.jpg", "image/jpeg", []byte("a")),
		memFile("b.jpg", "image/jpeg", []byte("b")),
		memFile("c.jpg", "image/jpeg", []byte("c")),
	})

	assert.Same(t, storeErr, err)
	assert.Empty(t, got.Media)
	require.Len(t, bucket.calls, 2)
	assert.Equal(t, []string{bucket.calls[0].key}, bucket.deleted)
}

func TestUploaderRemove(t *testing.T) {
	bucket := &recordingBucket{}
	up := NewUploader(bucket)

	require.NoError(t, up.Remove(context.Background(), []string{"u/1.jpg", "u/2.jpg"}))
	assert.Equal(t, []string{"u/1.jpg", "u/2.jpg"}, bucket.deleted)
}

func TestUploadOpenFailure(t *testing.T) {
	up := NewUploader(&recordingBucket{})
	f := File{Name: "x.jpg", Open: func() (io.ReadCloser, error) { return nil, errors.New("gone") }}

	_, err := up.Upload(context.Background(), "u", f)
	assert.ErrorContains(t, err, "open x.jpg")
}
