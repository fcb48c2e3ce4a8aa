package fetch

import (
	"context"
	"errors"
	"fmt"
	"iter"

	errs "igmenu/pkg/errors"
	"igmenu/pkg/instagram"
	"igmenu/pkg/logger"
	"igmenu/pkg/storage"
	"igmenu/pkg/ui"
)

// Messages shown when an action cannot run
const (
	MsgProfileNotFound      = "The profile for username '%s' does not exist."
	MsgLoginRequired        = "Error: You need to be logged in to access this information."
	MsgLoginRequiredStories = "Error: You need to be logged in to access stories."
)

// Platform is the subset of the Instagram client the fetchers use
type Platform interface {
	Profile(ctx context.Context, username string) (*instagram.Profile, error)
	Posts(ctx context.Context, p *instagram.Profile) iter.Seq2[*instagram.Post, error]
	DownloadPost(ctx context.Context, post *instagram.Post, dir string) (instagram.Transfer, error)
	Followers(ctx context.Context, p *instagram.Profile) iter.Seq2[string, error]
	Followees(ctx context.Context, p *instagram.Profile) iter.Seq2[string, error]
	HasPublicStory(ctx context.Context, p *instagram.Profile) (bool, error)
	DownloadStories(ctx context.Context, userIDs []string, dir string) (instagram.Transfer, error)
}

// Service runs downloads for one authenticated platform session
type Service struct {
	platform Platform
	store    *storage.Manager
	term     *ui.Terminal
	logger   logger.Logger
}

// NewService creates a fetch service
func NewService(platform Platform, store *storage.Manager, term *ui.Terminal, log logger.Logger) *Service {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Service{
		platform: platform,
		store:    store,
		term:     term,
		logger:   log,
	}
}

// resolve looks the profile up. A nil profile with a nil error means the
// outcome was already reported and the action should stop.
func (s *Service) resolve(ctx context.Context, username, loginMsg string) (*instagram.Profile, error) {
	profile, err := s.platform.Profile(ctx, username)
	if err == nil {
		return profile, nil
	}
	if s.reportHandled(err, username, loginMsg) {
		return nil, nil
	}
	return nil, err
}

// reportHandled prints the message for not-found and login-required errors
// and reports whether err was one of them
func (s *Service) reportHandled(err error, username, loginMsg string) bool {
	if !errs.IsHandled(err) {
		return false
	}

	if errors.Is(err, errs.ErrProfileNotFound) {
		s.term.PrintError(MsgProfileNotFound, username)
	} else {
		s.term.PrintError("%s", loginMsg)
	}

	s.logger.WithError(err).InfoWithFields("action aborted", map[string]interface{}{
		"username": username,
		"type":     string(errs.TypeOf(err)),
	})
	return true
}

// DownloadPosts saves every post of username into its own folder under
// posts/. The first failure stops the download; posts already written stay.
func (s *Service) DownloadPosts(ctx context.Context, username string) error {
	profile, err := s.resolve(ctx, username, MsgLoginRequired)
	if profile == nil {
		return err
	}

	postsDir := s.store.Path(username, storage.KindPosts)
	if err := s.store.EnsureDir(postsDir); err != nil {
		return err
	}

	var (
		total instagram.Transfer
		count int
	)
	for post, err := range s.platform.Posts(ctx, profile) {
		if err != nil {
			if s.reportHandled(err, username, MsgLoginRequired) {
				return nil
			}
			return fmt.Errorf("post %d: %w", count+1, err)
		}

		dir := s.store.Path(username, storage.KindPosts, post.Shortcode)
		if err := s.store.EnsureDir(dir); err != nil {
			return err
		}

		transfer, err := s.platform.DownloadPost(ctx, post, dir)
		if err != nil {
			return fmt.Errorf("post %s: %w", post.Shortcode, err)
		}
		total.Add(transfer)
		count++

		s.logger.DebugWithFields("post saved", map[string]interface{}{
			"username":  profile.Username,
			"shortcode": post.Shortcode,
			"index":     count,
		})
	}

	s.term.PrintSuccess("Downloaded %s. %s", ui.Count(count, "post"), ui.TransferSummary(total.Files, total.Bytes))
	s.logger.InfoWithFields("posts downloaded", map[string]interface{}{
		"username": profile.Username,
		"posts":    count,
		"files":    total.Files,
		"bytes":    total.Bytes,
	})
	return nil
}

// DownloadStories saves the current stories of username under stories/.
// A profile without a public story yields an empty folder and no output.
func (s *Service) DownloadStories(ctx context.Context, username string) error {
	profile, err := s.resolve(ctx, username, MsgLoginRequiredStories)
	if profile == nil {
		return err
	}

	dir := s.store.Path(username, storage.KindStories)
	if err := s.store.EnsureDir(dir); err != nil {
		return err
	}

	hasStory, err := s.platform.HasPublicStory(ctx, profile)
	if err != nil {
		if s.reportHandled(err, username, MsgLoginRequiredStories) {
			return nil
		}
		return err
	}
	if !hasStory {
		s.logger.DebugWithFields("no public story", map[string]interface{}{
			"username": profile.Username,
		})
		return nil
	}

	transfer, err := s.platform.DownloadStories(ctx, []string{profile.ID}, dir)
	if err != nil {
		if s.reportHandled(err, username, MsgLoginRequiredStories) {
			return nil
		}
		return err
	}

	s.term.PrintSuccess("Downloaded %s. %s", ui.Count(transfer.Files, "story item"),
		ui.TransferSummary(transfer.Files, transfer.Bytes))
	return nil
}

// DownloadFollowList writes the usernames of the profile's followers or
// followees to <kind>/<kind>.txt, one per line, replacing any earlier list
func (s *Service) DownloadFollowList(ctx context.Context, username string, kind instagram.FollowKind) error {
	profile, err := s.resolve(ctx, username, MsgLoginRequired)
	if profile == nil {
		return err
	}

	storageKind := storage.KindFollowers
	list := s.platform.Followers
	if kind == instagram.Followees {
		storageKind = storage.KindFollowees
		list = s.platform.Followees
	}

	dir := s.store.Path(username, storageKind)
	if err := s.store.EnsureDir(dir); err != nil {
		return err
	}

	// The first page must arrive before the previous list is truncated.
	next, stop := iter.Pull2(list(ctx, profile))
	defer stop()

	name, err, ok := next()
	if ok && err != nil {
		if s.reportHandled(err, username, MsgLoginRequired) {
			return nil
		}
		return err
	}

	w, err := s.store.CreateLines(dir, string(kind)+".txt")
	if err != nil {
		return err
	}

	for ; ok; name, err, ok = next() {
		if err != nil {
			w.Close()
			if s.reportHandled(err, username, MsgLoginRequired) {
				return nil
			}
			return err
		}
		if err := w.WriteLine(name); err != nil {
			w.Close()
			return err
		}
	}

	if err := w.Close(); err != nil {
		return err
	}

	s.term.PrintSuccess("Saved %s to %s", ui.Count(w.Lines(), "username"), string(kind)+".txt")
	s.logger.InfoWithFields("follow list saved", map[string]interface{}{
		"username": profile.Username,
		"kind":     string(kind),
		"count":    w.Lines(),
	})
	return nil
}
