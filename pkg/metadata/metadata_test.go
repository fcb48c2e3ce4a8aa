package metadata

import (
	"bytes"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// decode reads back a document written by Encode
func decode(r io.Reader) (*PostMetadata, error) {
	var meta PostMetadata
	if err := json.NewDecoder(r).Decode(&meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func TestEncodeRoundTrip(t *testing.T) {
	meta := &PostMetadata{
		ID:        "1",
		Shortcode: "ABC123",
		TakenAt:   time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		Caption:   "hello",
		Owner:     Owner{ID: "42", Username: "nasa"},
		Files:     []string{"2024-03-01_12-00-00_UTC.jpg"},
	}

	var buf bytes.Buffer
	require.NoError(t, meta.Encode(&buf))
	assert.Contains(t, buf.String(), `"shortcode": "ABC123"`)
	assert.NotContains(t, buf.String(), "location")

	decoded, err := decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, meta.Owner, decoded.Owner)
	assert.True(t, meta.TakenAt.Equal(decoded.TakenAt))
}

func TestFormattedCaption(t *testing.T) {
	meta := &PostMetadata{Caption: "a very long caption indeed"}

	assert.Equal(t, "a very...", meta.FormattedCaption(9))
	assert.Equal(t, meta.Caption, meta.FormattedCaption(100))

	meta.Caption = "ünïcödé caption"
	assert.Equal(t, "ünïc...", meta.FormattedCaption(7))
}
