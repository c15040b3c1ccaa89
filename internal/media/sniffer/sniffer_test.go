package sniffer

import (
	"bytes"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectHead(t *testing.T) {
	cases := []struct {
		name string
		head []byte
		want MediaType
	}{
		{"jpeg", []byte{0xff, 0xd8, 0xff, 0xe0, 0x00}, TypeJPEG},
		{"png", []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0}, TypePNG},
		{"gif", []byte("GIF89a...."), TypeGIF},
		{"webp", []byte("RIFF\x00\x00\x00\x00WEBPVP8 "), TypeWEBP},
		{"avif", []byte("\x00\x00\x00\x1cftypavif\x00\x00\x00\x00"), TypeAVIF},
		{"mp4", []byte("\x00\x00\x00\x18ftypisom\x00\x00\x02\x00"), TypeMP4},
		{"svg", []byte("  <svg xmlns=\"http://www.w3.org/2000/svg\"/>"), TypeSVG},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := DetectHead(tc.head)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.Type)
		})
	}
}

func TestDetectUnknown(t *testing.T) {
	_, _, err := Detect(bytes.NewReader([]byte("plain text")))
	assert.ErrorIs(t, err, ErrUnknownType)

	_, err = DetectHead(nil)
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestMimeTypeFromHTTP(t *testing.T) {
	h := http.Header{}
	h.Set("Content-Type", "image/png; charset=binary")
	assert.Equal(t, "image/png", MimeTypeFromHTTP(h))
	assert.Equal(t, "", MimeTypeFromHTTP(http.Header{}))
}
