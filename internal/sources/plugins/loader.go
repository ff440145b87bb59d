// Package plugins loads user-defined launcher commands from the plugin
// directory.
package plugins

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Extensions lists the file types read from the plugin directory.
var Extensions = []string{".json", ".yaml", ".yml"}

// FileError reports one plugin file that could not be used.
type FileError struct {
	File string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.File, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// Loader reads plugin descriptors from a directory
type Loader struct {
	dir string
}

// NewLoader creates a loader for dir
func NewLoader(dir string) *Loader {
	return &Loader{dir: dir}
}

// Dir returns the plugin directory
func (l *Loader) Dir() string {
	return l.dir
}

// Load decodes every plugin file, sorted by file name. A missing directory
// yields no descriptors. Files that fail to read or decode are reported in
// the returned slice of errors and skipped; err is only set when the
// directory itself cannot be listed.
func (l *Loader) Load() ([]Descriptor, []*FileError, error) {
	entries, err := os.ReadDir(l.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read plugin dir: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var (
		out []Descriptor
		bad []*FileError
	)
	for _, e := range entries {
		if e.IsDir() || !isPluginFile(e.Name()) {
			continue
		}
		d, err := l.loadFile(filepath.Join(l.dir, e.Name()))
		if err != nil {
			bad = append(bad, &FileError{File: e.Name(), Err: err})
			continue
		}
		out = append(out, d)
	}
	return out, bad, nil
}

func (l *Loader) loadFile(path string) (Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Descriptor{}, fmt.Errorf("failed to read plugin file: %w", err)
	}

	data = expandTemplateVariables(data)

	var d Descriptor
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &d)
	} else {
		err = yaml.Unmarshal(data, &d)
	}
	if err != nil {
		return Descriptor{}, fmt.Errorf("failed to parse plugin file: %w", err)
	}
	return d, nil
}

func isPluginFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

var templateVar = regexp.MustCompile(`\{\{\s*(MRUNNER_VAR_[A-Z0-9_]+)\s*\}\}`)

// expandTemplateVariables replaces {{MRUNNER_VAR_...}} with the value of
// the environment variable of the same name.
// Example: "url: https://{{MRUNNER_VAR_HOST}}" -> "url: https://git.lan"
func expandTemplateVariables(data []byte) []byte {
	return templateVar.ReplaceAllFunc(data, func(m []byte) []byte {
		name := templateVar.FindSubmatch(m)[1]
		return []byte(os.Getenv(string(name)))
	})
}
