package store

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func (r record) Validate() error {
	if r.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

func TestFileStoreLoadTolerant(t *testing.T) {
	tests := []struct {
		name    string
		content *string
	}{
		{name: "missing file", content: nil},
		{name: "empty file", content: strPtr("")},
		{name: "whitespace only", content: strPtr("  \n\t ")},
		{name: "malformed json", content: strPtr(`[{"name": "tea",`)},
		{name: "wrong shape", content: strPtr(`{"name": "tea"}`)},
		{name: "null document", content: strPtr("null")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "records.json")
			if tt.content != nil {
				require.NoError(t, os.WriteFile(path, []byte(*tt.content), 0o644))
			}

			got, err := NewFileStore[record](path, nil).Load()
			require.NoError(t, err)
			assert.NotNil(t, got)
			assert.Empty(t, got)
		})
	}
}

func TestFileStoreSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.json")
	s := NewFileStore[record](path, nil)

	want := []record{{Name: "tea", Count: 2}, {Name: "muffin", Count: 1}}
	require.NoError(t, s.Save(want))

	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// A second store on the same path sees the same document.
	got, err = NewFileStore[record](path, nil).Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFileStoreSaveNilWritesEmptyArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.json")
	require.NoError(t, NewFileStore[record](path, nil).Save(nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}

func TestFileStoreDropsInvalidRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.json")
	doc := `[{"name": "tea", "count": 1}, {"name": "", "count": 4}, {"name": "scone", "count": 2}]`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	s := NewFileStore[record](path, nil)
	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, []record{{Name: "tea", Count: 1}, {Name: "scone", Count: 2}}, got)
	assert.Equal(t, []record{{Name: "", Count: 4}}, s.Rejected())

	require.NoError(t, os.WriteFile(path, []byte(`[{"name": "tea", "count": 1}]`), 0o644))
	_, err = s.Load()
	require.NoError(t, err)
	assert.Empty(t, s.Rejected())
}

func TestFileStoreSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore[record](filepath.Join(dir, "records.json"), nil)

	for i := 0; i < 3; i++ {
		require.NoError(t, s.Save([]record{{Name: "tea", Count: i + 1}}))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "records.json", entries[0].Name())
}

func TestFileStoreSaveUnwritableDestination(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing-dir", "records.json")

	err := NewFileStore[record](path, nil).Save([]record{{Name: "tea", Count: 1}})
	require.Error(t, err)

	var storageErr *StorageError
	require.ErrorAs(t, err, &storageErr)
	assert.Equal(t, "save", storageErr.Op)
	assert.Equal(t, path, storageErr.Path)
}

func TestFileStoreLoadUnreadableFile(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced")
	}
	path := filepath.Join(t.TempDir(), "records.json")
	require.NoError(t, os.WriteFile(path, []byte(`[]`), 0o000))

	_, err := NewFileStore[record](path, nil).Load()
	var storageErr *StorageError
	require.ErrorAs(t, err, &storageErr)
	assert.Equal(t, "load", storageErr.Op)
}

func TestFileStoreCustomDecoder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.json")
	require.NoError(t, os.WriteFile(path, []byte(`anything`), 0o644))

	s := NewFileStore[record](path, nil, WithDecoder[record](func(data []byte) ([]record, error) {
		return []record{{Name: string(data), Count: 1}}, nil
	}))

	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, []record{{Name: "anything", Count: 1}}, got)
}

func strPtr(s string) *string { return &s }
