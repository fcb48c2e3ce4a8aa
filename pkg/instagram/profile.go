package instagram

import (
	"context"
	"fmt"

	errs "igmenu/pkg/errors"
)

// Profile looks up a user by name. Every call goes to the network; results
// are never cached.
func (c *Client) Profile(ctx context.Context, username string) (*Profile, error) {
	if !IsValidUsername(username) {
		return nil, errs.New(errs.ErrorTypeNotFound, 0, "profile %q does not exist", username)
	}

	c.logger.DebugWithFields("fetching profile", map[string]interface{}{
		"username": username,
	})

	var resp profileResponse
	if err := c.getJSON(ctx, profileURL(c.baseURL, username), &resp); err != nil {
		return nil, err
	}

	if resp.RequiresToLogin {
		return nil, errs.New(errs.ErrorTypeLoginRequired, 0, "profile %q requires login", username)
	}
	if resp.Data.User == nil || resp.Data.User.ID == "" {
		return nil, errs.New(errs.ErrorTypeNotFound, 0, "profile %q does not exist", username)
	}

	profile := resp.Data.User.toProfile()
	c.logger.DebugWithFields("profile resolved", map[string]interface{}{
		"username":   profile.Username,
		"user_id":    profile.ID,
		"is_private": profile.IsPrivate,
		"posts":      profile.MediaCount,
	})

	return profile, nil
}

// HasPublicStory reports whether the profile currently has a story visible
// to the session
func (c *Client) HasPublicStory(ctx context.Context, p *Profile) (bool, error) {
	rawURL, err := storyFlagURL(c.baseURL, p.ID)
	if err != nil {
		return false, err
	}

	var resp storyFlagResponse
	if err := c.getJSON(ctx, rawURL, &resp); err != nil {
		return false, fmt.Errorf("failed to check stories of %s: %w", p.Username, err)
	}
	if resp.Data.User == nil {
		return false, nil
	}

	return resp.Data.User.HasPublicStory, nil
}
