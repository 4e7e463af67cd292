// Package uploads stores files attached to listings under generated unique names.
package uploads

import (
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// Store writes uploads into a single directory of fs.
type Store struct {
	fs  afero.Fs
	dir string
}

// NewStore creates the upload directory if needed.
func NewStore(fs afero.Fs, dir string) (*Store, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", dir, err)
	}
	return &Store{fs: fs, dir: dir}, nil
}

// NewOSStore is a Store on the local filesystem.
func NewOSStore(dir string) (*Store, error) {
	return NewStore(afero.NewOsFs(), dir)
}

// HTTPFileSystem exposes the upload directory for static serving.
func (s *Store) HTTPFileSystem() http.FileSystem {
	return afero.NewHttpFs(afero.NewBasePathFs(s.fs, s.dir))
}

// Save writes every non-empty file and returns the stored names in the same
// order. If any file fails, the files already written by this call are removed.
func (s *Store) Save(files []*multipart.FileHeader) ([]string, error) {
	names := []string{}
	for _, fh := range files {
		if fh == nil || fh.Filename == "" || fh.Size == 0 {
			continue
		}

		name := uuid.New().String() + "_" + SanitizeFilename(fh.Filename)
		if err := s.write(fh, name); err != nil {
			s.Remove(names)
			return nil, fmt.Errorf("failed to save upload %q: %w", fh.Filename, err)
		}
		names = append(names, name)
	}
	return names, nil
}

func (s *Store) write(fh *multipart.FileHeader, name string) error {
	src, err := fh.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	path := filepath.Join(s.dir, name)
	dst, err := s.fs.Create(path)
	if err != nil {
		return err
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		s.fs.Remove(path)
		return err
	}
	if err := dst.Close(); err != nil {
		s.fs.Remove(path)
		return err
	}
	return nil
}

// Remove deletes stored files. Failures are logged only.
func (s *Store) Remove(names []string) {
	for _, name := range names {
		if err := s.fs.Remove(filepath.Join(s.dir, filepath.Base(name))); err != nil {
			log.Printf("Failed to remove upload %s: %v", name, err)
		}
	}
}

// SanitizeFilename reduces a client supplied name to a safe single path
// element made of ASCII letters, digits, '.', '-' and '_'.
func SanitizeFilename(name string) string {
	name = strings.NewReplacer("/", " ", "\\", " ").Replace(name)
	name = strings.Join(strings.Fields(name), "_")

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		}
	}

	cleaned := strings.Trim(b.String(), "._")
	if cleaned == "" {
		return "upload"
	}
	return cleaned
}
