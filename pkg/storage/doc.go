// Package storage lays out the data tree igmenu writes to:
//
//	<base>/<username>/posts/<shortcode>/...
//	<base>/<username>/stories/...
//	<base>/<username>/followers/followers.txt
//	<base>/<username>/followees/followees.txt
//
// Directories are created on demand and never cleaned up. Files are
// truncated and rewritten on every run. The Manager works on an afero.Fs so
// tests can run against an in-memory filesystem.
package storage
