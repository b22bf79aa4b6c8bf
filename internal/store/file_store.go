package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

// Decoder turns a non-empty document into records.
type Decoder[T any] func(data []byte) ([]T, error)

type Option[T any] func(*FileStore[T])

// WithDecoder replaces the default JSON array decoder.
func WithDecoder[T any](d Decoder[T]) Option[T] {
	return func(s *FileStore[T]) { s.decode = d }
}

// FileStore keeps a collection as a JSON array in a single file.
type FileStore[T any] struct {
	mu     sync.RWMutex
	path   string
	decode   Decoder[T]
	logger   *zap.Logger
	rejected []T
}

func NewFileStore[T any](path string, logger *zap.Logger, opts ...Option[T]) *FileStore[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &FileStore[T]{
		path:   path,
		decode: decodeArray[T],
		logger: logger.With(zap.String("path", path)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *FileStore[T]) Path() string {
	return s.path
}

// Rejected returns the records the last Load dropped as invalid.
func (s *FileStore[T]) Rejected() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]T(nil), s.rejected...)
}

func (s *FileStore[T]) Load() ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rejected = nil

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []T{}, nil
	}
	if err != nil {
		return nil, &StorageError{Op: "load", Path: s.path, Err: err}
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return []T{}, nil
	}

	records, err := s.decode(data)
	if err != nil {
		s.logger.Warn("discarding unreadable store contents", zap.Error(err))
		return []T{}, nil
	}

	valid := records[:0]
	for i, rec := range records {
		if v, ok := any(rec).(Validator); ok {
			if err := v.Validate(); err != nil {
				s.logger.Warn("dropping invalid record", zap.Int("index", i), zap.Error(err))
				s.rejected = append(s.rejected, rec)
				continue
			}
		}
		valid = append(valid, rec)
	}
	return valid, nil
}

// Save replaces the file contents with records. The new document is written
// to a temporary file and renamed into place.
func (s *FileStore[T]) Save(records []T) error {
	if records == nil {
		records = []T{}
	}
	data, err := json.MarshalIndent(records, "", "    ")
	if err != nil {
		return &StorageError{Op: "encode", Path: s.path, Err: err}
	}
	data = append(data, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := writeFileAtomic(s.path, data); err != nil {
		return &StorageError{Op: "save", Path: s.path, Err: err}
	}
	return nil
}

func decodeArray[T any](data []byte) ([]T, error) {
	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	if records == nil {
		records = []T{}
	}
	return records, nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	err = os.Rename(tmpName, path)
	return err
}
