package instagram

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

const (
	// BaseURL is the base URL for Instagram
	BaseURL = "https://www.instagram.com"

	// SharedDataEndpoint returns the CSRF token and password encryption key
	SharedDataEndpoint = "/data/shared_data/"

	// LoginEndpoint accepts the web login form
	LoginEndpoint = "/api/v1/web/accounts/login/ajax/"

	// ProfileEndpoint is the endpoint pattern for user profiles
	ProfileEndpoint = "/api/v1/users/web_profile_info/"

	// GraphQLEndpoint serves the timeline and story-flag queries
	GraphQLEndpoint = "/graphql/query/"

	// ReelsMediaEndpoint returns current story items for a set of users
	ReelsMediaEndpoint = "/api/v1/feed/reels_media/"

	// MediaQueryHash is the query hash for fetching user media
	MediaQueryHash = "e769aa130647d2354c40ea6a439bfc08"

	// StoryFlagQueryHash is the query hash exposing has_public_story
	StoryFlagQueryHash = "9ca88e465c3f866a76f7adee3871bdd8"

	// MediaPageSize is the number of posts requested per timeline page
	MediaPageSize = 50

	// FollowPageSize is the number of users requested per follow-list page
	FollowPageSize = 50
)

// FollowKind selects one side of a follow relation
type FollowKind string

const (
	Followers FollowKind = "followers"
	Followees FollowKind = "followees"
)

// endpointSegment maps a FollowKind to its friendships path segment
func (k FollowKind) endpointSegment() string {
	if k == Followees {
		return "following"
	}
	return "followers"
}

// profileURL constructs the URL for fetching a user's profile
func profileURL(base, username string) string {
	params := url.Values{}
	params.Set("username", username)

	return fmt.Sprintf("%s%s?%s", base, ProfileEndpoint, params.Encode())
}

// graphQLURL constructs a GraphQL query URL with JSON-encoded variables
func graphQLURL(base, queryHash string, variables map[string]interface{}) (string, error) {
	encoded, err := json.Marshal(variables)
	if err != nil {
		return "", fmt.Errorf("failed to encode query variables: %w", err)
	}

	params := url.Values{}
	params.Set("query_hash", queryHash)
	params.Set("variables", string(encoded))

	return fmt.Sprintf("%s%s?%s", base, GraphQLEndpoint, params.Encode()), nil
}

// mediaURL constructs the URL for one page of a user's timeline
func mediaURL(base, userID, after string) (string, error) {
	variables := map[string]interface{}{
		"id":    userID,
		"first": MediaPageSize,
	}
	if after != "" {
		variables["after"] = after
	}
	return graphQLURL(base, MediaQueryHash, variables)
}

// storyFlagURL constructs the URL of the query reporting has_public_story
func storyFlagURL(base, userID string) (string, error) {
	return graphQLURL(base, StoryFlagQueryHash, map[string]interface{}{
		"user_id":                   userID,
		"include_chaining":          false,
		"include_reel":              false,
		"include_suggested_users":   false,
		"include_logged_out_extras": true,
		"include_highlight_reels":   false,
	})
}

// followURL constructs the URL for one page of a follow list
func followURL(base, userID string, kind FollowKind, maxID string) string {
	params := url.Values{}
	params.Set("count", fmt.Sprintf("%d", FollowPageSize))
	if maxID != "" {
		params.Set("max_id", maxID)
	}

	return fmt.Sprintf("%s/api/v1/friendships/%s/%s/?%s",
		base, url.PathEscape(userID), kind.endpointSegment(), params.Encode())
}

// reelsMediaURL constructs the URL for the current stories of userIDs
func reelsMediaURL(base string, userIDs []string) string {
	params := url.Values{}
	for _, id := range userIDs {
		params.Add("reel_ids", id)
	}
	return fmt.Sprintf("%s%s?%s", base, ReelsMediaEndpoint, params.Encode())
}

// PostURL constructs the URL for a specific post
func PostURL(shortcode string) string {
	if shortcode == "" {
		return ""
	}
	return fmt.Sprintf("%s/p/%s/", BaseURL, shortcode)
}

// SanitizeUsername strips a leading @, a profile URL prefix and trailing
// slashes or spaces from user input.
func SanitizeUsername(username string) string {
	username = strings.TrimSpace(username)
	username = strings.TrimPrefix(username, BaseURL+"/")
	username = strings.TrimPrefix(username, "@")
	return strings.TrimRight(username, "/ ")
}

// IsValidUsername checks if a username is valid according to Instagram rules
func IsValidUsername(username string) bool {
	if username == "" || len(username) > 30 {
		return false
	}

	for _, char := range username {
		if !((char >= 'a' && char <= 'z') ||
			(char >= 'A' && char <= 'Z') ||
			(char >= '0' && char <= '9') ||
			char == '.' || char == '_') {
			return false
		}
	}

	return true
}
