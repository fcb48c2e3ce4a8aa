package metadata

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// PostMetadata is the JSON document written next to every downloaded post
type PostMetadata struct {
	ID        string `json:"id"`
	Shortcode string `json:"shortcode"`
	URL       string `json:"url"`
	Typename  string `json:"typename,omitempty"`

	Width   int  `json:"width,omitempty"`
	Height  int  `json:"height,omitempty"`
	IsVideo bool `json:"is_video"`

	TakenAt      time.Time `json:"taken_at"`
	DownloadedAt time.Time `json:"downloaded_at"`

	Caption              string    `json:"caption,omitempty"`
	AccessibilityCaption string    `json:"accessibility_caption,omitempty"`
	Location             *Location `json:"location,omitempty"`

	LikesCount    int `json:"likes_count"`
	CommentsCount int `json:"comments_count"`
	VideoViews    int `json:"video_views,omitempty"`

	Owner            Owner    `json:"owner"`
	Files            []string `json:"files"`
	CommentsDisabled bool     `json:"comments_disabled"`
}

// Location represents geographic location
type Location struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Owner represents the media owner
type Owner struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Encode writes the metadata as indented JSON
func (m *PostMetadata) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}
	return nil
}

// FormattedCaption returns the caption truncated to maxLength runes
func (m *PostMetadata) FormattedCaption(maxLength int) string {
	runes := []rune(m.Caption)
	if maxLength <= 3 || len(runes) <= maxLength {
		return m.Caption
	}
	return string(runes[:maxLength-3]) + "..."
}
