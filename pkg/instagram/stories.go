package instagram

import (
	"context"
	"fmt"
	"sort"
)

// DownloadStories saves every current story item of userIDs into dir, named
// by the item's UTC timestamp. Items from the same second are numbered
// from _2 on in posting order.
func (c *Client) DownloadStories(ctx context.Context, userIDs []string, dir string) (Transfer, error) {
	var transfer Transfer
	if len(userIDs) == 0 {
		return transfer, nil
	}

	var resp reelsMediaResponse
	if err := c.getJSON(ctx, reelsMediaURL(c.baseURL, userIDs), &resp); err != nil {
		return transfer, fmt.Errorf("failed to fetch stories: %w", err)
	}

	// items sharing a second get _2, _3, ... so none overwrites another
	seen := make(map[string]int)

	for _, id := range userIDs {
		reel, ok := resp.Reels[id]
		if !ok {
			continue
		}

		items := make([]StoryItem, 0, len(reel.Items))
		for i := range reel.Items {
			items = append(items, reel.Items[i].toStoryItem())
		}
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].TakenAt.Before(items[j].TakenAt)
		})

		for _, item := range items {
			base := fileStamp(item.TakenAt)
			seen[base]++
			if n := seen[base]; n > 1 {
				base = fmt.Sprintf("%s_%d", base, n)
			}

			_, written, err := c.saveMedia(ctx, dir, base, item.MediaItem)
			if err != nil {
				return transfer, err
			}
			transfer.Add(Transfer{Files: 1, Bytes: written})
		}

		c.logger.DebugWithFields("stories downloaded", map[string]interface{}{
			"user_id": id,
			"items":   len(items),
		})
	}

	return transfer, nil
}
