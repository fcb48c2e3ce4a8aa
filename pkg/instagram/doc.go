// Package instagram is a small client for the Instagram web endpoints the
// downloader needs.
//
// A Client carries its own cookie jar. After Login succeeds the jar holds
// the session cookies and the same Client is passed to every later call:
//
//	client, err := instagram.NewClient(&cfg.Instagram, store, log)
//	if err := client.Login(ctx, username, password); err != nil {
//	    // errors.Is(err, errs.ErrBadCredentials), errs.ErrTwoFactorRequired, ...
//	}
//
//	profile, err := client.Profile(ctx, "someone")
//	for post, err := range client.Posts(ctx, profile) {
//	    if err != nil {
//	        break
//	    }
//	    client.DownloadPost(ctx, post, dir)
//	}
//
// Failures are *errors.Error values from igmenu/pkg/errors. A missing
// account maps to ErrorTypeNotFound and a rejected session to
// ErrorTypeLoginRequired.
package instagram
