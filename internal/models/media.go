package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
	MediaAudio MediaType = "audio"
)

func (t MediaType) Valid() bool {
	switch t {
	case MediaImage, MediaVideo, MediaAudio:
		return true
	}
	return false
}

type Media struct {
	Type MediaType `json:"type"`
	URL  string    `json:"url"`
}

// MediaList is the ordered media of a blog post, stored as a jsonb array.
type MediaList []Media

func (l MediaList) CountType(t MediaType) int {
	n := 0
	for _, m := range l {
		if m.Type == t {
			n++
		}
	}
	return n
}

// ParseMedia normalizes a stored media value into a list. It accepts an
// already structured list, JSON bytes, or a JSON string (including a JSON
// string that wraps an encoded array). Anything it cannot read becomes an
// empty list; it never fails.
func ParseMedia(value any) MediaList {
	switch v := value.(type) {
	case nil:
		return MediaList{}
	case MediaList:
		return normalizeMedia(v)
	case []Media:
		return normalizeMedia(v)
	case []any:
		raw, err := json.Marshal(v)
		if err != nil {
			return MediaList{}
		}
		return decodeMedia(raw, 0)
	case []map[string]any:
		raw, err := json.Marshal(v)
		if err != nil {
			return MediaList{}
		}
		return decodeMedia(raw, 0)
	case json.RawMessage:
		return decodeMedia(v, 0)
	case []byte:
		return decodeMedia(v, 0)
	case string:
		return decodeMedia([]byte(v), 0)
	default:
		return MediaList{}
	}
}

// decodeMedia unwraps at most one level of string encoding.
func decodeMedia(raw []byte, depth int) MediaList {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return MediaList{}
	}

	switch raw[0] {
	case '[':
		var items []Media
		if err := json.Unmarshal(raw, &items); err != nil {
			return MediaList{}
		}
		return normalizeMedia(items)
	case '"':
		if depth > 0 {
			return MediaList{}
		}
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return MediaList{}
		}
		return decodeMedia([]byte(inner), depth+1)
	default:
		return MediaList{}
	}
}

func normalizeMedia(items []Media) MediaList {
	out := make(MediaList, 0, len(items))
	for _, m := range items {
		url := strings.TrimSpace(m.URL)
		if url == "" {
			continue
		}
		t := MediaType(strings.ToLower(string(m.Type)))
		if !t.Valid() {
			t = MediaImage
		}
		out = append(out, Media{Type: t, URL: url})
	}
	return out
}

func (l *MediaList) Scan(src any) error {
	*l = ParseMedia(src)
	return nil
}

func (l MediaList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	raw, err := json.Marshal([]Media(l))
	if err != nil {
		return nil, fmt.Errorf("encode media: %w", err)
	}
	return string(raw), nil
}

func (l *MediaList) UnmarshalJSON(data []byte) error {
	*l = decodeMedia(data, 0)
	return nil
}
