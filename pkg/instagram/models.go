package instagram

import (
	"encoding/json"
	"strings"
	"time"

	"igmenu/pkg/metadata"
)

// Profile is a resolved Instagram account
type Profile struct {
	ID               string
	Username         string
	FullName         string
	IsPrivate        bool
	FollowedByViewer bool
	MediaCount       int
	FollowerCount    int
	FolloweeCount    int
}

// MediaItem is a single image or video belonging to a post
type MediaItem struct {
	IsVideo    bool
	DisplayURL string
	VideoURL   string
}

// URL returns the address of the item's best rendition
func (m MediaItem) URL() string {
	if m.IsVideo && m.VideoURL != "" {
		return m.VideoURL
	}
	return m.DisplayURL
}

// Extension returns the file extension for the item
func (m MediaItem) Extension() string {
	if m.IsVideo && m.VideoURL != "" {
		return ".mp4"
	}
	return ".jpg"
}

// Post is one timeline entry
type Post struct {
	MediaItem
	ID        string
	Shortcode string
	Typename  string
	TakenAt   time.Time
	Caption   string
	Children  []MediaItem

	node *Node
}

// Metadata builds the JSON document stored next to the post's files
func (p *Post) Metadata(files []string) *metadata.PostMetadata {
	meta := &metadata.PostMetadata{
		ID:           p.ID,
		Shortcode:    p.Shortcode,
		URL:          PostURL(p.Shortcode),
		Typename:     p.Typename,
		IsVideo:      p.IsVideo,
		TakenAt:      p.TakenAt,
		DownloadedAt: time.Now().UTC(),
		Caption:      p.Caption,
		Files:        files,
	}

	if n := p.node; n != nil {
		meta.Width = n.Dimensions.Width
		meta.Height = n.Dimensions.Height
		meta.AccessibilityCaption = n.AccessibilityCaption
		meta.LikesCount = n.likes()
		meta.CommentsCount = n.EdgeMediaToComment.Count
		meta.CommentsDisabled = n.CommentsDisabled
		meta.Owner = metadata.Owner{ID: n.Owner.ID, Username: n.Owner.Username}
		if n.Location != nil {
			meta.Location = &metadata.Location{
				ID:   n.Location.ID,
				Name: n.Location.Name,
				Slug: n.Location.Slug,
			}
		}
		if n.VideoViewCount != nil {
			meta.VideoViews = *n.VideoViewCount
		}
	}

	return meta
}

// StoryItem is one current story entry
type StoryItem struct {
	MediaItem
	ID      string
	TakenAt time.Time
}

// Transfer summarizes what a download call wrote
type Transfer struct {
	Files int
	Bytes int64
}

// Add accumulates another transfer
func (t *Transfer) Add(other Transfer) {
	t.Files += other.Files
	t.Bytes += other.Bytes
}

// fileStamp is the UTC timestamp prefix used for downloaded file names
func fileStamp(t time.Time) string {
	return t.UTC().Format("2006-01-02_15-04-05") + "_UTC"
}

// apiStatus is embedded in every private API response
type apiStatus struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// sharedDataResponse carries the CSRF token and password encryption key
type sharedDataResponse struct {
	Config struct {
		CSRFToken string `json:"csrf_token"`
	} `json:"config"`
	Encryption struct {
		KeyID     string `json:"key_id"`
		PublicKey string `json:"public_key"`
		Version   string `json:"version"`
	} `json:"encryption"`
}

// loginResponse is the body returned by the login endpoint
type loginResponse struct {
	apiStatus
	Authenticated     bool   `json:"authenticated"`
	User              bool   `json:"user"`
	UserID            string `json:"userId"`
	TwoFactorRequired bool   `json:"two_factor_required"`
	CheckpointURL     string `json:"checkpoint_url"`
	ErrorType         string `json:"error_type"`
}

// profileResponse represents the web_profile_info response
type profileResponse struct {
	apiStatus
	RequiresToLogin bool `json:"requires_to_login"`
	Data            struct {
		User *User `json:"user"`
	} `json:"data"`
}

// User represents an Instagram user profile node
type User struct {
	ID                       string          `json:"id"`
	Username                 string          `json:"username"`
	FullName                 string          `json:"full_name"`
	IsPrivate                bool            `json:"is_private"`
	FollowedByViewer         bool            `json:"followed_by_viewer"`
	HasPublicStory           bool            `json:"has_public_story"`
	EdgeFollowedBy           countEdge       `json:"edge_followed_by"`
	EdgeFollow               countEdge       `json:"edge_follow"`
	EdgeOwnerToTimelineMedia MediaConnection `json:"edge_owner_to_timeline_media"`
}

func (u *User) toProfile() *Profile {
	return &Profile{
		ID:               u.ID,
		Username:         u.Username,
		FullName:         u.FullName,
		IsPrivate:        u.IsPrivate,
		FollowedByViewer: u.FollowedByViewer,
		MediaCount:       u.EdgeOwnerToTimelineMedia.Count,
		FollowerCount:    u.EdgeFollowedBy.Count,
		FolloweeCount:    u.EdgeFollow.Count,
	}
}

// mediaResponse represents one page of the timeline query
type mediaResponse struct {
	apiStatus
	Data struct {
		User *struct {
			EdgeOwnerToTimelineMedia MediaConnection `json:"edge_owner_to_timeline_media"`
		} `json:"user"`
	} `json:"data"`
}

// storyFlagResponse represents the has_public_story query
type storyFlagResponse struct {
	apiStatus
	Data struct {
		User *struct {
			HasPublicStory bool `json:"has_public_story"`
		} `json:"user"`
	} `json:"data"`
}

// MediaConnection contains a page of the user's media
type MediaConnection struct {
	Count    int      `json:"count"`
	PageInfo PageInfo `json:"page_info"`
	Edges    []Edge   `json:"edges"`
}

// PageInfo contains pagination information
type PageInfo struct {
	HasNextPage bool   `json:"has_next_page"`
	EndCursor   string `json:"end_cursor"`
}

// Edge wraps a single media node
type Edge struct {
	Node Node `json:"node"`
}

type countEdge struct {
	Count int `json:"count"`
}

// Node represents a single timeline media item
type Node struct {
	ID                   string `json:"id"`
	Typename             string `json:"__typename"`
	Shortcode            string `json:"shortcode"`
	DisplayURL           string `json:"display_url"`
	VideoURL             string `json:"video_url"`
	IsVideo              bool   `json:"is_video"`
	TakenAtTimestamp     int64  `json:"taken_at_timestamp"`
	AccessibilityCaption string `json:"accessibility_caption"`
	CommentsDisabled     bool   `json:"comments_disabled"`
	VideoViewCount       *int   `json:"video_view_count"`

	Dimensions struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	} `json:"dimensions"`

	Owner struct {
		ID       string `json:"id"`
		Username string `json:"username"`
	} `json:"owner"`

	Location *struct {
		ID   string `json:"id"`
		Name string `json:"name"`
		Slug string `json:"slug"`
	} `json:"location"`

	EdgeMediaToCaption struct {
		Edges []struct {
			Node struct {
				Text string `json:"text"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"edge_media_to_caption"`

	EdgeLikedBy          countEdge `json:"edge_liked_by"`
	EdgeMediaPreviewLike countEdge `json:"edge_media_preview_like"`
	EdgeMediaToComment   countEdge `json:"edge_media_to_comment"`

	EdgeSidecarToChildren *struct {
		Edges []struct {
			Node struct {
				DisplayURL string `json:"display_url"`
				VideoURL   string `json:"video_url"`
				IsVideo    bool   `json:"is_video"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"edge_sidecar_to_children"`
}

func (n *Node) likes() int {
	if n.EdgeLikedBy.Count > 0 {
		return n.EdgeLikedBy.Count
	}
	return n.EdgeMediaPreviewLike.Count
}

func (n *Node) toPost() *Post {
	post := &Post{
		MediaItem: MediaItem{
			IsVideo:    n.IsVideo,
			DisplayURL: n.DisplayURL,
			VideoURL:   n.VideoURL,
		},
		ID:        n.ID,
		Shortcode: n.Shortcode,
		Typename:  n.Typename,
		TakenAt:   time.Unix(n.TakenAtTimestamp, 0).UTC(),
		node:      n,
	}

	if len(n.EdgeMediaToCaption.Edges) > 0 {
		post.Caption = n.EdgeMediaToCaption.Edges[0].Node.Text
	}

	if n.EdgeSidecarToChildren != nil {
		for _, edge := range n.EdgeSidecarToChildren.Edges {
			post.Children = append(post.Children, MediaItem{
				IsVideo:    edge.Node.IsVideo,
				DisplayURL: edge.Node.DisplayURL,
				VideoURL:   edge.Node.VideoURL,
			})
		}
	}

	return post
}

// followResponse is one page of a friendships listing
type followResponse struct {
	apiStatus
	Users []struct {
		PK       flexString `json:"pk"`
		Username string     `json:"username"`
		FullName string     `json:"full_name"`
	} `json:"users"`
	NextMaxID flexString `json:"next_max_id"`
}

// reelsMediaResponse is the body of the reels_media endpoint
type reelsMediaResponse struct {
	apiStatus
	Reels map[string]struct {
		ID    flexString  `json:"id"`
		Items []storyNode `json:"items"`
	} `json:"reels"`
}

type storyNode struct {
	ID             string `json:"id"`
	TakenAt        int64  `json:"taken_at"`
	MediaType      int    `json:"media_type"`
	ImageVersions2 struct {
		Candidates []struct {
			URL    string `json:"url"`
			Width  int    `json:"width"`
			Height int    `json:"height"`
		} `json:"candidates"`
	} `json:"image_versions2"`
	VideoVersions []struct {
		URL string `json:"url"`
	} `json:"video_versions"`
}

const mediaTypeVideo = 2

func (s *storyNode) toStoryItem() StoryItem {
	item := StoryItem{
		ID:      s.ID,
		TakenAt: time.Unix(s.TakenAt, 0).UTC(),
	}
	if len(s.ImageVersions2.Candidates) > 0 {
		item.DisplayURL = s.ImageVersions2.Candidates[0].URL
	}
	if s.MediaType == mediaTypeVideo && len(s.VideoVersions) > 0 {
		item.IsVideo = true
		item.VideoURL = s.VideoVersions[0].URL
	}
	return item
}

// flexString decodes a JSON string or number into a string
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*f = ""
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	*f = flexString(raw)
	return nil
}
