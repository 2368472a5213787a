package customplan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/spf13/afero"
)

// FileStore keeps plans as a JSON array in a single file. Writes go to a
// temp file that is renamed over the original.
type FileStore struct {
	fs   afero.Fs
	path string
}

func NewFileStore(fsys afero.Fs, path string) *FileStore {
	return &FileStore{fs: fsys, path: path}
}

// Load returns an empty list when the file does not exist yet.
func (s *FileStore) Load(_ context.Context) ([]Plan, error) {
	data, err := afero.ReadFile(s.fs, s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []Plan{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read custom plans: %w", err)
	}
	plans := []Plan{}
	if len(data) == 0 {
		return plans, nil
	}
	if err := json.Unmarshal(data, &plans); err != nil {
		return nil, fmt.Errorf("decode custom plans: %w", err)
	}
	return plans, nil
}

func (s *FileStore) Save(_ context.Context, plans []Plan) error {
	if plans == nil {
		plans = []Plan{}
	}
	data, err := json.MarshalIndent(plans, "", "  ")
	if err != nil {
		return fmt.Errorf("encode custom plans: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create plan dir: %w", err)
	}
	tmp, err := afero.TempFile(s.fs, dir, ".custom-plans-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		s.fs.Remove(tmpName) //nolint:errcheck
		return fmt.Errorf("write custom plans: %w", err)
	}
	if err := tmp.Close(); err != nil {
		s.fs.Remove(tmpName) //nolint:errcheck
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := s.fs.Rename(tmpName, s.path); err != nil {
		s.fs.Remove(tmpName) //nolint:errcheck
		return fmt.Errorf("replace custom plans: %w", err)
	}
	return nil
}
