package services

import (
	"errors"
	"path/filepath"
	"testing"

	"counter_pos/internal/models"
	"counter_pos/internal/store"
)

var errDiskFull = errors.New("disk full")

// memStore is an in-memory store.Store whose saves can be made to fail.
type memStore[T any] struct {
	records  []T
	failSave bool
	saves    int
}

func (m *memStore[T]) Load() ([]T, error) {
	return append([]T(nil), m.records...), nil
}

func (m *memStore[T]) Save(records []T) error {
	if m.failSave {
		return &store.StorageError{Op: "save", Path: "mem", Err: errDiskFull}
	}
	m.saves++
	m.records = append([]T(nil), records...)
	return nil
}

type recordedEvent struct {
	event OrderEvent
	order models.Order
}

type recordingNotifier struct {
	events []recordedEvent
	err    error
}

func (r *recordingNotifier) Notify(event OrderEvent, order models.Order) error {
	r.events = append(r.events, recordedEvent{event: event, order: order})
	return r.err
}

func orderStorePath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "orders.json")
}

func userStorePath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "users.json")
}
