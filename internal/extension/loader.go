package extension

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load parses a .json, .yaml or .yml extension file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading extension %s: %w", path, err)
	}

	var f File
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(data, &f)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &f)
	default:
		return nil, fmt.Errorf("extension %s: unsupported file type %q", path, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing extension %s: %w", path, err)
	}
	f.Path = path

	if err := f.validate(); err != nil {
		return nil, fmt.Errorf("extension %s: %w", path, err)
	}
	return &f, nil
}

func (f *File) validate() error {
	if f.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(f.Steps) == 0 {
		return fmt.Errorf("at least one step is required")
	}
	for i, s := range f.Steps {
		if s.Name == "" {
			return fmt.Errorf("step %d: name is required", i+1)
		}
		if s.Request.Method == "" || s.Request.Path == "" {
			return fmt.Errorf("step %q: request method and path are required", s.Name)
		}
	}
	return nil
}

func isExtensionFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

// LoadDir loads every extension file in dir, ordered by file name.
func LoadDir(dir string) ([]*File, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading extension directory %s: %w", dir, err)
	}

	var files []*File
	for _, entry := range entries {
		if entry.IsDir() || !isExtensionFile(entry.Name()) {
			continue
		}
		f, err := Load(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}
