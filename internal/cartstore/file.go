package cartstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	"storefront/internal/domain"
)

var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,128}$`)

// ErrInvalidSession is returned for session ids that cannot name a file.
var ErrInvalidSession = errors.New("cartstore: invalid session id")

// FileStore keeps each session's cart lines as a JSON array in its own file.
type FileStore struct {
	dir string
}

// NewFileStore creates dir if needed and returns a store rooted there.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cart store dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Load returns the stored lines of a session, or an empty slice when the
// session has never been saved.
func (s *FileStore) Load(ctx context.Context, sessionID string) ([]domain.CartLine, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.path(sessionID)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []domain.CartLine{}, nil
		}
		return nil, err
	}
	var lines []domain.CartLine
	if err := json.Unmarshal(data, &lines); err != nil {
		return nil, fmt.Errorf("decode cart %s: %w", sessionID, err)
	}
	if lines == nil {
		lines = []domain.CartLine{}
	}
	return lines, nil
}

// Save replaces the session's lines. The write goes to a temp file that is
// renamed over the previous one.
func (s *FileStore) Save(ctx context.Context, sessionID string, lines []domain.CartLine) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.path(sessionID)
	if err != nil {
		return err
	}
	if lines == nil {
		lines = []domain.CartLine{}
	}
	data, err := json.MarshalIndent(lines, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, sessionID+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// Delete removes a session's file. Deleting an unknown session is not an error.
func (s *FileStore) Delete(ctx context.Context, sessionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.path(sessionID)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (s *FileStore) path(sessionID string) (string, error) {
	if !sessionIDPattern.MatchString(sessionID) {
		return "", ErrInvalidSession
	}
	return filepath.Join(s.dir, sessionID+".json"), nil
}
