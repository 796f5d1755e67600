package replay

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"tokenSwap/internal/model"
	"tokenSwap/internal/storage/postgres"
)

// StateStore persists replay sessions between runs.
type StateStore interface {
	Load(ctx context.Context) (model.State, bool, error)
	Save(ctx context.Context, state model.State) error
}

// FileStateStore stores state in a local JSON file, replaced atomically.
type FileStateStore struct {
	Path string
}

func (s *FileStateStore) Load(ctx context.Context) (model.State, bool, error) {
	if s == nil || s.Path == "" {
		return model.State{}, false, nil
	}
	stat, err := os.Stat(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.State{}, false, nil
		}
		return model.State{}, false, fmt.Errorf("stat state: %w", err)
	}
	if stat.IsDir() {
		return model.State{}, false, fmt.Errorf("state path is a directory")
	}

	data, err := os.ReadFile(s.Path)
	if err != nil {
		return model.State{}, false, fmt.Errorf("read state: %w", err)
	}
	var state model.State
	if err := json.Unmarshal(data, &state); err != nil {
		return model.State{}, false, fmt.Errorf("parse state: %w", err)
	}
	return state, true, nil
}

func (s *FileStateStore) Save(ctx context.Context, state model.State) error {
	if s == nil || s.Path == "" {
		return nil
	}
	dir := filepath.Dir(s.Path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create state dir: %w", err)
		}
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	tmp := s.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write state tmp: %w", err)
	}
	if err := os.Rename(tmp, s.Path); err != nil {
		return fmt.Errorf("rename state: %w", err)
	}
	return nil
}

// DBStateStore stores state in the replay_state table.
type DBStateStore struct {
	Store *postgres.Store
	Name  string
}

func (s *DBStateStore) Load(ctx context.Context) (model.State, bool, error) {
	if s == nil || s.Store == nil {
		return model.State{}, false, nil
	}
	return s.Store.LoadState(ctx, s.Name)
}

func (s *DBStateStore) Save(ctx context.Context, state model.State) error {
	if s == nil || s.Store == nil {
		return nil
	}
	return s.Store.SaveState(ctx, s.Name, state)
}
