// Package menu runs the interactive loop: one login, then repeated choices
// until the user exits or input ends.
package menu

import (
	"context"
	"errors"
	"io"

	errs "igmenu/pkg/errors"
	"igmenu/pkg/instagram"
	"igmenu/pkg/logger"
	"igmenu/pkg/ui"
)

// Prompts and messages
const (
	MsgWelcome       = "Welcome to the Instagram Downloader Menu!"
	MsgMenuTitle     = "Instagram Downloader Menu:"
	PromptLoginUser  = "Please enter your Instagram username for login: "
	PromptLoginPass  = "Please enter your Instagram password: "
	PromptChoice     = "Enter your choice (1-5): "
	PromptTargetUser = "Enter the Instagram username: "
	MsgExit          = "Exiting program."
	MsgInvalidChoice = "Invalid choice. Please try again."
	ChoiceExit       = "5"
)

var options = []string{
	"1. Download Profile Posts",
	"2. Download Profile Stories",
	"3. Download Profile Followers List",
	"4. Download Profile Followees List",
	"5. Exit",
}

// Session authenticates once at startup
type Session interface {
	Login(ctx context.Context, username, password string) bool
}

// Fetcher runs the download actions
type Fetcher interface {
	DownloadPosts(ctx context.Context, username string) error
	DownloadStories(ctx context.Context, username string) error
	DownloadFollowList(ctx context.Context, username string, kind instagram.FollowKind) error
}

type action func(ctx context.Context, username string) error

// Menu is the interactive loop
type Menu struct {
	session  Session
	prompter *Prompter
	term     *ui.Terminal
	logger   logger.Logger
	actions  map[string]action
}

// New creates a menu reading from in and writing to term
func New(session Session, fetcher Fetcher, in io.Reader, term *ui.Terminal, log logger.Logger) *Menu {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Menu{
		session:  session,
		prompter: NewPrompter(in, term),
		term:     term,
		logger:   log,
		actions: map[string]action{
			"1": fetcher.DownloadPosts,
			"2": fetcher.DownloadStories,
			"3": func(ctx context.Context, username string) error {
				return fetcher.DownloadFollowList(ctx, username, instagram.Followers)
			},
			"4": func(ctx context.Context, username string) error {
				return fetcher.DownloadFollowList(ctx, username, instagram.Followees)
			},
		},
	}
}

// Run logs in and serves menu choices. It returns nil when the user exits,
// login fails or input ends, and ctx.Err() when ctx is cancelled.
func (m *Menu) Run(ctx context.Context) error {
	m.term.Println(MsgWelcome)

	username, err := m.prompter.Prompt(ctx, PromptLoginUser)
	if err != nil {
		return m.stop(err)
	}
	password, err := m.prompter.Password(ctx, PromptLoginPass)
	if err != nil {
		return m.stop(err)
	}

	if !m.session.Login(ctx, username, password) {
		return nil
	}

	for {
		m.printOptions()

		choice, err := m.prompter.Prompt(ctx, PromptChoice)
		if err != nil {
			return m.stop(err)
		}

		if choice == ChoiceExit {
			m.term.Println(MsgExit)
			return nil
		}

		run, ok := m.actions[choice]
		if !ok {
			m.term.PrintWarning(MsgInvalidChoice)
			continue
		}

		target, err := m.prompter.Prompt(ctx, PromptTargetUser)
		if err != nil {
			return m.stop(err)
		}
		target = instagram.SanitizeUsername(target)

		m.logger.DebugWithFields("dispatching", map[string]interface{}{
			"choice":   choice,
			"username": target,
		})

		if err := run(ctx, target); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			m.logger.WithError(err).ErrorWithFields("action failed", map[string]interface{}{
				"choice":   choice,
				"username": target,
				"type":     string(errs.TypeOf(err)),
			})
			m.term.PrintError("Error: %s", errs.UserMessage(err))
		}
	}
}

func (m *Menu) printOptions() {
	m.term.Println("")
	m.term.Title(MsgMenuTitle)
	for _, option := range options {
		m.term.Println(option)
	}
}

// stop ends the loop on a read error. End of input is a normal exit.
func (m *Menu) stop(err error) error {
	if errors.Is(err, io.EOF) {
		m.term.Println("")
		m.logger.Debug("input closed")
		return nil
	}
	return err
}
