// Package library stores generated EPUBs per user on the local file system.
//
// Each user owns a directory below the library root holding <name>.epub files
// next to <name>.json metadata sidecars. Writes go through a temporary file
// and a rename, and every mutation holds an advisory lock on the user
// directory so a CLI and a running server can share one data directory.
package library

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"github.com/yuanying/linkpub/internal/article"
	"github.com/yuanying/linkpub/internal/epub"
)

const (
	epubExt      = ".epub"
	sidecarExt   = ".json"
	lockName     = ".lock"
	dirPerm      = 0o755
	filePerm     = 0o644
	maxNameTries = 100
)

var (
	ErrNotFound    = errors.New("library entry not found")
	ErrInvalidName = errors.New("invalid library name")
)

var (
	userPattern     = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	filenamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+\.epub$`)
)

// Content describes one article inside a stored book.
type Content struct {
	Title    string `json:"title"`
	URL      string `json:"url"`
	SiteName string `json:"siteName"`
}

// Entry is the metadata kept alongside each stored EPUB.
type Entry struct {
	Filename    string    `json:"filename"`
	Title       string    `json:"title"`
	Author      string    `json:"author,omitempty"`
	Description string    `json:"description,omitempty"`
	Variant     string    `json:"variant,omitempty"`
	Contents    []Content `json:"contents"`
	WordCount   int       `json:"wordCount,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	Size        int64     `json:"size"`
}

// Store is a file-backed EPUB library.
type Store struct {
	root   string
	now    func() time.Time
	logger *slog.Logger
}

func NewStore(root string, logger *slog.Logger) (*Store, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("library root is empty")
	}
	if err := os.MkdirAll(root, dirPerm); err != nil {
		return nil, fmt.Errorf("create library root: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{root: root, now: time.Now, logger: logger}, nil
}

// Root returns the library root directory.
func (s *Store) Root() string {
	return s.root
}

func (s *Store) userDir(user string) (string, error) {
	if !userPattern.MatchString(user) {
		return "", fmt.Errorf("%w: user %q", ErrInvalidName, user)
	}
	return filepath.Join(s.root, user), nil
}

// ValidFilename reports whether name is a library filename.
func ValidFilename(name string) bool {
	return filenamePattern.MatchString(name) && filepath.Base(name) == name
}

func (s *Store) entryPaths(user, filename string) (string, string, error) {
	dir, err := s.userDir(user)
	if err != nil {
		return "", "", err
	}
	if !ValidFilename(filename) {
		return "", "", fmt.Errorf("%w: file %q", ErrInvalidName, filename)
	}
	epubPath := filepath.Join(dir, filename)
	return epubPath, strings.TrimSuffix(epubPath, epubExt) + sidecarExt, nil
}

func (s *Store) lock(dir string) (*flock.Flock, error) {
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, fmt.Errorf("create user library: %w", err)
	}
	l := flock.New(filepath.Join(dir, lockName))
	if err := l.Lock(); err != nil {
		return nil, fmt.Errorf("lock user library: %w", err)
	}
	return l, nil
}

// Save writes an EPUB built from c into user's library.
func (s *Store) Save(user string, c article.Collection, variant string, data []byte) (Entry, error) {
	dir, err := s.userDir(user)
	if err != nil {
		return Entry{}, err
	}
	l, err := s.lock(dir)
	if err != nil {
		return Entry{}, err
	}
	defer l.Unlock()

	created := s.now().UTC()
	filename, err := s.uniqueFilename(dir, c.ResolvedTitle(), created)
	if err != nil {
		return Entry{}, err
	}

	entry := Entry{
		Filename:    filename,
		Title:       c.ResolvedTitle(),
		Author:      c.ResolvedAuthor(),
		Description: c.Description(),
		Variant:     variant,
		Contents:    contentsOf(c),
		WordCount:   c.TotalWords(),
		CreatedAt:   created,
		Size:        int64(len(data)),
	}
	sidecar, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return Entry{}, fmt.Errorf("encode metadata: %w", err)
	}

	epubPath := filepath.Join(dir, filename)
	if err := writeFileAtomic(epubPath, data); err != nil {
		return Entry{}, err
	}
	if err := writeFileAtomic(strings.TrimSuffix(epubPath, epubExt)+sidecarExt, sidecar); err != nil {
		_ = os.Remove(epubPath)
		return Entry{}, err
	}

	s.logger.Info("saved to library", "user", user, "file", filename, "bytes", len(data))
	return entry, nil
}

func (s *Store) uniqueFilename(dir, title string, created time.Time) (string, error) {
	base := article.SanitizeFilename(title)
	millis := created.UnixMilli()
	for i := 0; i < maxNameTries; i++ {
		name := fmt.Sprintf("%s_%d%s", base, millis+int64(i), epubExt)
		if _, err := os.Stat(filepath.Join(dir, name)); errors.Is(err, fs.ErrNotExist) {
			return name, nil
		}
	}
	return "", fmt.Errorf("no free filename for %q", base)
}

func contentsOf(c article.Collection) []Content {
	out := make([]Content, len(c.Articles))
	for i, a := range c.Articles {
		out[i] = Content{Title: a.ResolvedTitle(), URL: a.URL, SiteName: a.ResolvedSiteName()}
	}
	return out
}

// List returns user's entries, newest first. Books without a sidecar are
// described by inspecting the EPUB itself.
func (s *Store) List(user string) ([]Entry, error) {
	dir, err := s.userDir(user)
	if err != nil {
		return nil, err
	}
	files, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []Entry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read user library: %w", err)
	}

	entries := make([]Entry, 0, len(files))
	for _, f := range files {
		if f.IsDir() || !ValidFilename(f.Name()) {
			continue
		}
		entry, err := s.readEntry(dir, f.Name())
		if err != nil {
			s.logger.Warn("skipping unreadable library entry", "user", user, "file", f.Name(), "error", err)
			continue
		}
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].Filename > entries[j].Filename
		}
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	return entries, nil
}

func (s *Store) readEntry(dir, filename string) (Entry, error) {
	epubPath := filepath.Join(dir, filename)
	info, err := os.Stat(epubPath)
	if err != nil {
		return Entry{}, err
	}

	sidecar, err := os.ReadFile(strings.TrimSuffix(epubPath, epubExt) + sidecarExt)
	if err == nil {
		var entry Entry
		if err := json.Unmarshal(sidecar, &entry); err == nil {
			entry.Filename = filename
			entry.Size = info.Size()
			return entry, nil
		}
		s.logger.Debug("ignoring corrupt sidecar", "file", filename)
	}
	return inspectEntry(epubPath, info)
}

func inspectEntry(epubPath string, info fs.FileInfo) (Entry, error) {
	data, err := os.ReadFile(epubPath)
	if err != nil {
		return Entry{}, err
	}
	book, err := epub.Inspect(data)
	if err != nil {
		return Entry{}, err
	}
	entry := Entry{
		Filename:    filepath.Base(epubPath),
		Title:       book.Title(),
		Description: book.OPF.Metadata.Description,
		CreatedAt:   info.ModTime().UTC(),
		Size:        info.Size(),
		Contents:    make([]Content, 0, len(book.Chapters)),
	}
	if len(book.OPF.Metadata.Creators) > 0 {
		entry.Author = book.OPF.Metadata.Creators[0]
	}
	for _, ch := range book.Chapters {
		entry.Contents = append(entry.Contents, Content{Title: ch.Title, URL: ch.URL, SiteName: ch.SiteName})
	}
	return entry, nil
}

// Open returns the entry and the EPUB bytes.
func (s *Store) Open(user, filename string) (Entry, []byte, error) {
	epubPath, _, err := s.entryPaths(user, filename)
	if err != nil {
		return Entry{}, nil, err
	}
	data, err := os.ReadFile(epubPath)
	if errors.Is(err, fs.ErrNotExist) {
		return Entry{}, nil, fmt.Errorf("%w: %s", ErrNotFound, filename)
	}
	if err != nil {
		return Entry{}, nil, fmt.Errorf("read %s: %w", filename, err)
	}
	entry, err := s.readEntry(filepath.Dir(epubPath), filename)
	if err != nil {
		return Entry{}, nil, err
	}
	return entry, data, nil
}

// Delete removes an EPUB and its sidecar.
func (s *Store) Delete(user, filename string) error {
	epubPath, sidecarPath, err := s.entryPaths(user, filename)
	if err != nil {
		return err
	}
	l, err := s.lock(filepath.Dir(epubPath))
	if err != nil {
		return err
	}
	defer l.Unlock()

	if err := os.Remove(epubPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, filename)
		}
		return fmt.Errorf("delete %s: %w", filename, err)
	}
	if err := os.Remove(sidecarPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete metadata for %s: %w", filename, err)
	}
	s.logger.Info("deleted from library", "user", user, "file", filename)
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close %s: %w", filepath.Base(path), err)
	}
	if err := os.Chmod(tmpName, filePerm); err != nil {
		cleanup()
		return fmt.Errorf("chmod %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("rename %s: %w", filepath.Base(path), err)
	}
	return nil
}
