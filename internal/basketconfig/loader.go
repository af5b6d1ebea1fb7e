package basketconfig

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Load reads a basket YAML file and returns it with the raw bytes
// Unknown fields fail the decode so typos never pass silently
func Load(path string) (*File, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	f, err := Parse(data)
	if err != nil {
		return nil, data, fmt.Errorf("%s: %w", path, err)
	}
	return f, data, nil
}

// Parse decodes and validates one basket document
func Parse(data []byte) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, err
	}

	if err := Validate(&f); err != nil {
		return nil, err
	}
	return &f, nil
}

// LoadDir loads every *.yaml and *.yml file in dir, sorted by file name
func LoadDir(dir string) ([]*File, error) {
	var paths []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		paths = append(paths, matches...)
	}
	sort.Strings(paths)

	files := make([]*File, 0, len(paths))
	seen := make(map[string]string, len(paths))
	for _, path := range paths {
		f, _, err := Load(path)
		if err != nil {
			return nil, err
		}
		if prev, ok := seen[f.ID]; ok {
			return nil, fmt.Errorf("duplicate basket id %q in %s and %s", f.ID, prev, path)
		}
		seen[f.ID] = path
		files = append(files, f)
	}
	return files, nil
}

// Hash returns the sha256 of the canonical JSON form
// Struct fields keep a fixed order, so equal files hash equally
func Hash(f *File) (string, error) {
	jsonBytes, err := json.Marshal(f)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(jsonBytes)
	return hex.EncodeToString(sum[:]), nil
}
