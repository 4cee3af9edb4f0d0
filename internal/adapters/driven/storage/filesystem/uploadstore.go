// Package filesystem keeps uploaded PDFs on local disk.
package filesystem

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/insight/internal/core/domain"
	"github.com/custodia-labs/insight/internal/core/ports/driven"
)

// Ensure UploadStore implements the interface.
var _ driven.UploadStore = (*UploadStore)(nil)

// UploadsDir is the directory name under the data directory.
const UploadsDir = "uploads"

// UploadStore stores each payload as <dir>/<document id>.pdf.
type UploadStore struct {
	dir string
}

// NewUploadStore creates the uploads directory under dataDir.
func NewUploadStore(dataDir string) (*UploadStore, error) {
	dir := filepath.Join(dataDir, UploadsDir)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create uploads directory: %w", err)
	}
	return &UploadStore{dir: dir}, nil
}

// Dir returns the uploads directory.
func (s *UploadStore) Dir() string {
	return s.dir
}

// Save writes content through a temporary file so a crash never leaves a
// partial upload under the final name.
func (s *UploadStore) Save(documentID string, content []byte) (string, error) {
	path, err := s.pathFor(documentID)
	if err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("write upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("close upload: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("store upload: %w", err)
	}

	return path, nil
}

// Remove deletes the payload. Missing files are not an error.
func (s *UploadStore) Remove(documentID string) error {
	path, err := s.pathFor(documentID)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove upload: %w", err)
	}
	return nil
}

// Path returns the file for a stored payload.
func (s *UploadStore) Path(documentID string) (string, error) {
	path, err := s.pathFor(documentID)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("upload %s: %w", documentID, domain.ErrNotFound)
		}
		return "", fmt.Errorf("stat upload: %w", err)
	}
	return path, nil
}

func (s *UploadStore) pathFor(documentID string) (string, error) {
	if documentID == "" || documentID == "." || documentID == ".." ||
		strings.ContainsAny(documentID, `/\`) {
		return "", fmt.Errorf("%w: document id %q", domain.ErrInvalidInput, documentID)
	}
	return filepath.Join(s.dir, documentID+".pdf"), nil
}
