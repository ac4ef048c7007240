package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"campus-connect-backend/internal/domain"
)

// LocalResumeStorage writes resumes below a root directory on disk.
type LocalResumeStorage struct {
	root string
	now  func() time.Time
}

var _ domain.ResumeStorage = (*LocalResumeStorage)(nil)

func NewLocalResumeStorage(root string) (*LocalResumeStorage, error) {
	if err := os.MkdirAll(filepath.Join(root, ResumePrefix), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create resume directory: %w", err)
	}
	return &LocalResumeStorage{root: root, now: time.Now}, nil
}

func (s *LocalResumeStorage) Store(ctx context.Context, data []byte, originalName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ref := objectName(s.now(), originalName)
	target := filepath.Join(s.root, filepath.FromSlash(ref))

	// O_EXCL so two uploads landing on the same nanosecond never clobber each other
	f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", errors.Join(domain.ErrStorage, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(target)
		return "", errors.Join(domain.ErrStorage, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(target)
		return "", errors.Join(domain.ErrStorage, err)
	}
	return ref, nil
}

func (s *LocalResumeStorage) Delete(ctx context.Context, ref string) error {
	if !validRef(ref) {
		return fmt.Errorf("invalid resume reference %q: %w", ref, domain.ErrStorage)
	}
	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(ref)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errors.Join(domain.ErrStorage, err)
	}
	return nil
}
