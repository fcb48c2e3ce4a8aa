package storage

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// Kind names one of the per-profile output folders
type Kind string

const (
	KindPosts     Kind = "posts"
	KindStories   Kind = "stories"
	KindFollowers Kind = "followers"
	KindFollowees Kind = "followees"
)

// Manager owns the data tree: <base>/<username>/<kind>/...
type Manager struct {
	fs      afero.Fs
	baseDir string
}

// NewManager creates a storage manager rooted at baseDir. Nothing is
// created on disk until a directory is first needed.
func NewManager(fs afero.Fs, baseDir string) *Manager {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Manager{
		fs:      fs,
		baseDir: baseDir,
	}
}

// BaseDir returns the root of the data tree
func (m *Manager) BaseDir() string {
	return m.baseDir
}

// Fs returns the filesystem the manager writes to
func (m *Manager) Fs() afero.Fs {
	return m.fs
}

// Path joins elements below the folder of kind for username
func (m *Manager) Path(username string, kind Kind, elem ...string) string {
	parts := append([]string{m.baseDir, username, string(kind)}, elem...)
	return filepath.Join(parts...)
}

// EnsureDir creates dir and its parents. It is a no-op when dir exists.
func (m *Manager) EnsureDir(dir string) error {
	if err := m.fs.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// SaveFile writes r to dir/name, replacing any existing file
func (m *Manager) SaveFile(dir, name string, r io.Reader) (int64, error) {
	path := filepath.Join(dir, name)

	out, err := m.fs.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return 0, fmt.Errorf("failed to create file %s: %w", path, err)
	}

	written, err := io.Copy(out, r)
	closeErr := out.Close()

	if err != nil {
		return written, fmt.Errorf("failed to write file %s: %w", path, err)
	}
	if closeErr != nil {
		return written, fmt.Errorf("failed to close file %s: %w", path, closeErr)
	}

	return written, nil
}

// LineWriter writes newline-terminated lines to a truncated file
type LineWriter struct {
	file  afero.File
	buf   *bufio.Writer
	lines int
}

// CreateLines opens dir/name for writing, truncating previous content
func (m *Manager) CreateLines(dir, name string) (*LineWriter, error) {
	path := filepath.Join(dir, name)

	file, err := m.fs.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create file %s: %w", path, err)
	}

	return &LineWriter{
		file: file,
		buf:  bufio.NewWriter(file),
	}, nil
}

// WriteLine appends line followed by a newline
func (w *LineWriter) WriteLine(line string) error {
	if _, err := w.buf.WriteString(line); err != nil {
		return err
	}
	if err := w.buf.WriteByte('\n'); err != nil {
		return err
	}
	w.lines++
	return nil
}

// Lines returns how many lines have been written
func (w *LineWriter) Lines() int {
	return w.lines
}

// Close flushes buffered lines and closes the file
func (w *LineWriter) Close() error {
	flushErr := w.buf.Flush()
	closeErr := w.file.Close()
	if flushErr != nil {
		return fmt.Errorf("failed to flush %s: %w", w.file.Name(), flushErr)
	}
	if closeErr != nil {
		return fmt.Errorf("failed to close %s: %w", w.file.Name(), closeErr)
	}
	return nil
}

// Exists reports whether path exists
func (m *Manager) Exists(path string) bool {
	ok, err := afero.Exists(m.fs, path)
	return err == nil && ok
}
