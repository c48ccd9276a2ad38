package settings

import (
	"errors"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// FileStore keeps the settings in a YAML file. Targets without a
// filesystem plug a flash-backed Store in instead.
type FileStore struct {
	Path string
}

func NewFileStore(path string) *FileStore { return &FileStore{Path: path} }

func (f *FileStore) Save(v Values) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	return os.WriteFile(f.Path, data, 0o644)
}

// Load reads the file, layering stored keys over Defaults so absent keys
// keep their default values.
func (f *FileStore) Load() (Values, bool, error) {
	v := Defaults()
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return v, false, nil
	}
	if err != nil {
		return v, false, err
	}
	if err := yaml.Unmarshal(data, &v); err != nil {
		return Defaults(), false, err
	}
	return v, true, nil
}

func (f *FileStore) Clear() error {
	err := os.Remove(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
