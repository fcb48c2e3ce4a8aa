// Package logger provides structured logging for igmenu on top of zerolog.
//
// Console output goes to stderr so it never interleaves with the menu's
// prompts on stdout. Set LoggingConfig.File to also append entries to a file.
//
//	if err := logger.Initialize(&cfg.Logging); err != nil {
//	    return err
//	}
//	logger.WithField("username", "nasa").Info("fetching followers")
//
// Tests use NewTestLogger to capture entries instead of writing them.
package logger
