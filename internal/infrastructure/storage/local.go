package storage

import (
	"context"
	"io"
	"path"

	"github.com/spf13/afero"

	"github.com/csvflow/backend/internal/core/ports"
	"github.com/csvflow/backend/internal/infrastructure/logger"
)

// LocalStore keeps dataset blobs on a filesystem under a base
// directory. The afero abstraction lets tests run against an in-memory
// filesystem.
type LocalStore struct {
	fs      afero.Fs
	baseDir string
	log     *logger.Logger
}

func NewLocalStore(fs afero.Fs, baseDir string, log *logger.Logger) *LocalStore {
	return &LocalStore{fs: fs, baseDir: baseDir, log: log}
}

func (s *LocalStore) fullPath(p string) string {
	return path.Join(s.baseDir, p)
}

func (s *LocalStore) Open(_ context.Context, p string) (io.ReadCloser, error) {
	f, err := s.fs.Open(s.fullPath(p))
	if err != nil {
		s.log.Warnw("store_open_failed", "path", p, "error", err)
		return nil, err
	}
	return f, nil
}

func (s *LocalStore) Write(_ context.Context, p string, r io.Reader) (int64, error) {
	full := s.fullPath(p)
	if err := s.fs.MkdirAll(path.Dir(full), 0o755); err != nil {
		return 0, err
	}
	f, err := s.fs.Create(full)
	if err != nil {
		s.log.Errorw("store_write_failed", "path", p, "error", err)
		return 0, err
	}
	defer f.Close()

	n, err := io.Copy(f, r)
	if err != nil {
		s.log.Errorw("store_write_failed", "path", p, "error", err)
		return n, err
	}
	s.log.Infow("store_write_ok", "path", p, "bytes", n)
	return n, nil
}

func (s *LocalStore) Size(_ context.Context, p string) (int64, error) {
	info, err := s.fs.Stat(s.fullPath(p))
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

var _ ports.DatasetStore = (*LocalStore)(nil)
