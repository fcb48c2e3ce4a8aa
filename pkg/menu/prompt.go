package menu

import (
	"bufio"
	"context"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"igmenu/pkg/ui"
)

// Prompter reads answers to prompts from an input stream
type Prompter struct {
	out    *ui.Terminal
	reader *bufio.Reader

	fd         int
	isTerminal bool
}

// NewPrompter creates a Prompter reading from in. Passwords are read
// without echo when in is a terminal.
func NewPrompter(in io.Reader, out *ui.Terminal) *Prompter {
	p := &Prompter{
		out:    out,
		reader: bufio.NewReader(in),
	}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.fd = int(f.Fd())
		p.isTerminal = true
	}
	return p
}

// Prompt prints msg and returns the next input line with surrounding
// whitespace removed. At end of input it returns io.EOF.
func (p *Prompter) Prompt(ctx context.Context, msg string) (string, error) {
	p.out.Print(msg)
	line, err := p.await(ctx, p.readLine, nil)
	return strings.TrimSpace(line), err
}

// Password prints msg and reads a secret. On a terminal the input is not
// echoed; otherwise only the line ending is removed.
func (p *Prompter) Password(ctx context.Context, msg string) (string, error) {
	p.out.Print(msg)
	if !p.isTerminal {
		return p.await(ctx, p.readLine, nil)
	}

	state, err := term.GetState(p.fd)
	if err != nil {
		return "", err
	}
	restore := func() { _ = term.Restore(p.fd, state) }

	secret, err := p.await(ctx, func() (string, error) {
		b, err := term.ReadPassword(p.fd)
		return string(b), err
	}, restore)
	p.out.Println("")
	return secret, err
}

// readLine returns one line without its terminator. A final line without
// a newline is returned before io.EOF.
func (p *Prompter) readLine() (string, error) {
	line, err := p.reader.ReadString('\n')
	if err == io.EOF && line != "" {
		err = nil
	}
	return strings.TrimRight(line, "\r\n"), err
}

type readResult struct {
	text string
	err  error
}

// await runs read in its own goroutine so a cancelled ctx unblocks the
// caller. onCancel runs when the read is abandoned.
func (p *Prompter) await(ctx context.Context, read func() (string, error), onCancel func()) (string, error) {
	done := make(chan readResult, 1)
	go func() {
		text, err := read()
		done <- readResult{text: text, err: err}
	}()

	select {
	case r := <-done:
		return r.text, r.err
	case <-ctx.Done():
		if onCancel != nil {
			onCancel()
		}
		return "", ctx.Err()
	}
}
