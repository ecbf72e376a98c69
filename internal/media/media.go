// Package media prepares uploaded files for the object store: it classifies
// them, names them, caps images per post and uploads them in order.
package media

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/safar/go-storefront/internal/models"
)

const MaxImagesPerPost = 4

const sniffLen = 3072

// File is an upload that has not been stored yet.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

func FromMultipart(fh *multipart.FileHeader) File {
	return File{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

func FromMultipartList(fhs []*multipart.FileHeader) []File {
	files := make([]File, 0, len(fhs))
	for _, fh := range fhs {
		files = append(files, FromMultipart(fh))
	}
	return files
}

// Classify maps a MIME type onto a media kind. Anything that is not video or
// audio is treated as an image.
func Classify(contentType string) models.MediaType {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	switch {
	case strings.HasPrefix(ct, "video/"):
		return models.MediaVideo
	case strings.HasPrefix(ct, "audio/"):
		return models.MediaAudio
	default:
		return models.MediaImage
	}
}

func needsSniff(declared string) bool {
	ct := strings.ToLower(strings.TrimSpace(declared))
	return ct == "" || strings.HasPrefix(ct, "application/octet-stream")
}

// DetectContentType returns the declared type, or the type sniffed from the
// first bytes of r when nothing useful was declared. The returned reader
// yields the full content including any bytes consumed for sniffing. A
// seekable r is rewound and returned as is so it stays seekable.
func DetectContentType(declared string, r io.Reader) (string, io.Reader, error) {
	if !needsSniff(declared) {
		return declared, r, nil
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", nil, fmt.Errorf("sniff content type: %w", err)
	}
	head = head[:n]
	contentType := mimetype.Detect(head).String()

	if seeker, ok := r.(io.Seeker); ok {
		if _, err := seeker.Seek(0, io.SeekStart); err != nil {
			return "", nil, fmt.Errorf("rewind after sniff: %w", err)
		}
		return contentType, r, nil
	}

	return contentType, io.MultiReader(bytes.NewReader(head), r), nil
}

// ObjectKey names an object as <owner>/<unix-millis>-<8 hex>.<ext>.
func ObjectKey(owner, filename string, now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	key := fmt.Sprintf("%s/%d-%s", owner, now.UnixMilli(), suffix)

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if ext == "" {
		return key
	}
	return key + "." + ext
}

type CapResult struct {
	Accepted []File
	Rejected int
	Notice   string
}

// ApplyImageCap keeps at most MaxImagesPerPost images across the saved media
// and the staged files. Videos and audio always pass.
func ApplyImageCap(existing models.MediaList, staged []File) CapResult {
	room := MaxImagesPerPost - existing.CountType(models.MediaImage)
	if room < 0 {
		room = 0
	}

	res := CapResult{Accepted: make([]File, 0, len(staged))}
	for _, f := range staged {
		if Classify(f.ContentType) != models.MediaImage {
			res.Accepted = append(res.Accepted, f)
			continue
		}
		if room == 0 {
			res.Rejected++
			continue
		}
		room--
		res.Accepted = append(res.Accepted, f)
	}

	if res.Rejected > 0 {
		res.Notice = fmt.Sprintf("a post can hold at most %d images; %d image(s) were not added", MaxImagesPerPost, res.Rejected)
	}

	return res
}
