package instagram

import (
	"context"
	"fmt"
	"iter"
)

// Followers enumerates the usernames following p
func (c *Client) Followers(ctx context.Context, p *Profile) iter.Seq2[string, error] {
	return c.follows(ctx, p, Followers)
}

// Followees enumerates the usernames p follows
func (c *Client) Followees(ctx context.Context, p *Profile) iter.Seq2[string, error] {
	return c.follows(ctx, p, Followees)
}

func (c *Client) follows(ctx context.Context, p *Profile, kind FollowKind) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		maxID := ""
		for page := 1; ; page++ {
			var resp followResponse
			if err := c.getJSON(ctx, followURL(c.baseURL, p.ID, kind, maxID), &resp); err != nil {
				yield("", fmt.Errorf("failed to fetch %s of %s: %w", kind, p.Username, err))
				return
			}

			c.logger.DebugWithFields("follow page fetched", map[string]interface{}{
				"username": p.Username,
				"kind":     string(kind),
				"page":     page,
				"users":    len(resp.Users),
			})

			for _, user := range resp.Users {
				if !yield(user.Username, nil) {
					return
				}
			}

			next := string(resp.NextMaxID)
			if next == "" || next == maxID {
				return
			}
			maxID = next
		}
	}
}
