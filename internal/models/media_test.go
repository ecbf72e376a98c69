package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sampleMedia = MediaList{
	{Type: MediaImage, URL: "https://cdn.example.com/a.jpg"},
	{Type: MediaVideo, URL: "https://cdn.example.com/b.mp4"},
	{Type: MediaAudio, URL: "https://cdn.example.com/c.mp3"},
}

func TestParseMediaStructuredPassThrough(t *testing.T) {
	assert.Equal(t, sampleMedia, ParseMedia(sampleMedia))
	assert.Equal(t, sampleMedia, ParseMedia([]Media(sampleMedia)))
}

func TestParseMediaGenericList(t *testing.T) {
	value := []any{
		map[string]any{"type": "image", "url": "https://cdn.example.com/a.jpg"},
		map[string]any{"type": "video", "url": "https://cdn.example.com/b.mp4"},
		map[string]any{"type": "audio", "url": "https://cdn.example.com/c.mp3"},
	}

	assert.Equal(t, sampleMedia, ParseMedia(value))
}

func TestParseMediaJSONString(t *testing.T) {
	raw, err := json.Marshal(sampleMedia)
	require.NoError(t, err)

	assert.Equal(t, sampleMedia, ParseMedia(string(raw)))
	assert.Equal(t, sampleMedia, ParseMedia(raw))
	assert.Equal(t, sampleMedia, ParseMedia(json.RawMessage(raw)))
}

func TestParseMediaDoubleEncoded(t *testing.T) {
	raw, err := json.Marshal(sampleMedia)
	require.NoError(t, err)
	wrapped, err := json.Marshal(string(raw))
	require.NoError(t, err)

	assert.Equal(t, sampleMedia, ParseMedia(wrapped))
}

func TestParseMediaMalformedYieldsEmpty(t *testing.T) {
	inputs := []any{
		nil,
		"",
		"not json",
		"[{\"type\":\"image\",",
		`{"type":"image","url":"x"}`,
		[]byte("42"),
		`"\"\\\"nested\\\"\""`,
		12345,
		struct{}{},
	}

	for _, in := range inputs {
		assert.NotPanics(t, func() {
			got := ParseMedia(in)
			assert.NotNil(t, got)
			assert.Empty(t, got)
		})
	}
}

func TestParseMediaNormalizesEntries(t *testing.T) {
	got := ParseMedia(`[{"type":"VIDEO","url":" https://x/v.mp4 "},{"type":"gif","url":"https://x/g.gif"},{"type":"image","url":""}]`)

	assert.Equal(t, MediaList{
		{Type: MediaVideo, URL: "https://x/v.mp4"},
		{Type: MediaImage, URL: "https://x/g.gif"},
	}, got)
}

func TestMediaListScanAndValue(t *testing.T) {
	value, err := sampleMedia.Value()
	require.NoError(t, err)

	var scanned MediaList
	require.NoError(t, scanned.Scan(value))
	assert.Equal(t, sampleMedia, scanned)

	require.NoError(t, scanned.Scan([]byte("garbage")))
	assert.Empty(t, scanned)

	empty, err := MediaList(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", empty)
}

func TestMediaListUnmarshalJSONTolerant(t *testing.T) {
	var post Blog
	require.NoError(t, json.Unmarshal([]byte(`{"title":"t","media":"oops"}`), &post))

	assert.Equal(t, "t", post.Title)
	assert.Empty(t, post.Media)
}

func TestMediaListCountType(t *testing.T) {
	assert.Equal(t, 1, sampleMedia.CountType(MediaImage))
	assert.Equal(t, 0, MediaList{}.CountType(MediaVideo))
}
