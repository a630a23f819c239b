// Package filestore persists the memory stores to a single JSON file.
//
// Every committed write rewrites the snapshot atomically: the new state is
// encoded to a temp file in the same directory, fsynced and renamed over the
// previous file. If any step fails the write is rejected with
// store.ErrStorage and the in-memory state is left as it was.
package filestore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/phrazzld/lingua-api/internal/platform/memory"
)

// Store owns the file and the memory DB it feeds.
type Store struct {
	path   string
	db     *memory.DB
	logger *slog.Logger
}

// Open loads path, creating its directory if needed. A missing or empty file
// starts an empty store.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	snap, err := load(path)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}

	s := &Store{
		path:   path,
		logger: logger.With(slog.String("component", "filestore")),
	}
	s.db = memory.NewDBFromSnapshot(snap, s.write)

	s.logger.Info("file store opened",
		slog.String("path", path),
		slog.Int("users", len(snap.Users)),
		slog.Int("words", len(snap.Words)))
	return s, nil
}

// DB returns the memory DB to build stores from.
func (s *Store) DB() *memory.DB {
	return s.db
}

// Path returns the snapshot file location.
func (s *Store) Path() string {
	return s.path
}

func load(path string) (memory.Snapshot, error) {
	var snap memory.Snapshot

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return snap, nil
		}
		return snap, err
	}
	defer func() { _ = f.Close() }()

	if err := json.NewDecoder(f).Decode(&snap); err != nil {
		if errors.Is(err, io.EOF) {
			return memory.Snapshot{}, nil
		}
		return snap, err
	}
	return snap, nil
}

func (s *Store) write(snap memory.Snapshot) error {
	if err := atomicWriteFileJSON(s.path, snap); err != nil {
		s.logger.Error("failed to write snapshot",
			slog.String("path", s.path),
			slog.String("error", err.Error()))
		return err
	}
	return nil
}

func atomicWriteFileJSON(path string, data any) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}
