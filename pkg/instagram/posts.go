package instagram

import (
	"context"
	"fmt"
	"iter"
	"strings"

	errs "igmenu/pkg/errors"
)

// Posts enumerates the profile's timeline, newest first, fetching pages
// lazily as the caller consumes them. Iteration stops after the first error.
func (c *Client) Posts(ctx context.Context, p *Profile) iter.Seq2[*Post, error] {
	return func(yield func(*Post, error) bool) {
		after := ""
		for page := 1; ; page++ {
			conn, err := c.mediaPage(ctx, p, after)
			if err != nil {
				yield(nil, err)
				return
			}

			c.logger.DebugWithFields("timeline page fetched", map[string]interface{}{
				"username": p.Username,
				"page":     page,
				"posts":    len(conn.Edges),
				"has_next": conn.PageInfo.HasNextPage,
			})

			for i := range conn.Edges {
				if !yield(conn.Edges[i].Node.toPost(), nil) {
					return
				}
			}

			if !conn.PageInfo.HasNextPage || conn.PageInfo.EndCursor == "" {
				return
			}
			after = conn.PageInfo.EndCursor
		}
	}
}

func (c *Client) mediaPage(ctx context.Context, p *Profile, after string) (*MediaConnection, error) {
	rawURL, err := mediaURL(c.baseURL, p.ID, after)
	if err != nil {
		return nil, err
	}

	var resp mediaResponse
	if err := c.getJSON(ctx, rawURL, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch posts of %s: %w", p.Username, err)
	}
	if resp.Data.User == nil {
		return nil, errs.New(errs.ErrorTypeNotFound, 0, "profile %q does not exist", p.Username)
	}

	return &resp.Data.User.EdgeOwnerToTimelineMedia, nil
}

// DownloadPost writes the post's media, caption and metadata into dir. File
// names start with the post's UTC timestamp; sidecar items get _1, _2, ...
// suffixes. Existing files are overwritten.
func (c *Client) DownloadPost(ctx context.Context, post *Post, dir string) (Transfer, error) {
	var transfer Transfer
	stamp := fileStamp(post.TakenAt)

	var files []string
	if len(post.Children) > 0 {
		for i, child := range post.Children {
			name, written, err := c.saveMedia(ctx, dir, fmt.Sprintf("%s_%d", stamp, i+1), child)
			if err != nil {
				return transfer, err
			}
			files = append(files, name)
			transfer.Add(Transfer{Files: 1, Bytes: written})
		}
	} else {
		name, written, err := c.saveMedia(ctx, dir, stamp, post.MediaItem)
		if err != nil {
			return transfer, err
		}
		files = append(files, name)
		transfer.Add(Transfer{Files: 1, Bytes: written})
	}

	if post.Caption != "" {
		written, err := c.sink.SaveFile(dir, stamp+".txt", strings.NewReader(post.Caption))
		if err != nil {
			return transfer, errs.Wrap(errs.ErrorTypeStorage, err, "failed to save caption")
		}
		transfer.Add(Transfer{Files: 1, Bytes: written})
	}

	meta := post.Metadata(files)
	var doc strings.Builder
	if err := meta.Encode(&doc); err != nil {
		return transfer, errs.Wrap(errs.ErrorTypeParsing, err, "failed to encode metadata")
	}
	written, err := c.sink.SaveFile(dir, stamp+".json", strings.NewReader(doc.String()))
	if err != nil {
		return transfer, errs.Wrap(errs.ErrorTypeStorage, err, "failed to save metadata")
	}
	transfer.Add(Transfer{Files: 1, Bytes: written})

	c.logger.DebugWithFields("post downloaded", map[string]interface{}{
		"shortcode": post.Shortcode,
		"caption":   meta.FormattedCaption(40),
		"files":     transfer.Files,
		"bytes":     transfer.Bytes,
	})

	return transfer, nil
}
