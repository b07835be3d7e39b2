// internal/wizard/file.go
package wizard

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileStorage keeps each section as a JSON file under a state directory.
type FileStorage struct {
	dir string
}

func NewFileStorage(dir string) (*FileStorage, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create state dir: %w", err)
	}
	return &FileStorage{dir: dir}, nil
}

func (f *FileStorage) path(key string) string {
	return filepath.Join(f.dir, key+".json")
}

func (f *FileStorage) readBlob(key string, out interface{}) error {
	data, err := os.ReadFile(f.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", key, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return nil
}

func (f *FileStorage) writeBlob(key string, in interface{}) error {
	data, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := os.WriteFile(f.path(key), data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (f *FileStorage) Load(ctx context.Context) (State, error) {
	state := NewState()

	if err := f.readBlob(keyInitial, &state.Identity); err != nil {
		return State{}, err
	}
	if err := f.readBlob(keyBasic, &state.BasicInfo); err != nil {
		return State{}, err
	}
	if err := f.readBlob(keyContact, &state.Contact); err != nil {
		return State{}, err
	}
	if err := f.readBlob(keyPersonal, &state.Personal); err != nil {
		return State{}, err
	}
	if err := f.readBlob(keyAccount, &state.Account); err != nil {
		return State{}, err
	}

	var global globalBlob
	if err := f.readBlob(keyGlobal, &global); err != nil {
		return State{}, err
	}
	state.CurrentStep = global.CurrentStep

	return state, nil
}

func (f *FileStorage) Save(ctx context.Context, state State) error {
	if err := f.writeBlob(keyInitial, state.Identity); err != nil {
		return err
	}
	if err := f.writeBlob(keyBasic, state.BasicInfo); err != nil {
		return err
	}
	if err := f.writeBlob(keyContact, state.Contact); err != nil {
		return err
	}
	if err := f.writeBlob(keyPersonal, state.Personal); err != nil {
		return err
	}
	if err := f.writeBlob(keyAccount, state.Account); err != nil {
		return err
	}
	return f.writeBlob(keyGlobal, globalBlob{CurrentStep: state.CurrentStep})
}

func (f *FileStorage) Clear(ctx context.Context) error {
	for _, key := range allKeys {
		if err := os.Remove(f.path(key)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove %s: %w", key, err)
		}
	}
	return nil
}
