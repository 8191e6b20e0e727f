// Package workspace manages the ordered list of root folders open for editing.
//
// The list is kept in a small YAML file so that every djhelper front end (web
// panel, terminal form, one-shot command) sees the same workspace:
//
//	folders:
//	  - path: /home/me/src/blog
//	    name: blog
package workspace

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"
)

// DefaultFile is the workspace file location relative to the project root.
const DefaultFile = ".djhelper/workspace.yaml"

// Folder is one workspace root.
type Folder struct {
	Path string `yaml:"path"`
	Name string `yaml:"name,omitempty"`
}

type document struct {
	Folders []Folder `yaml:"folders"`
}

// Store is a workspace folder list backed by a YAML file.
// A Store with an empty path lives only in memory.
type Store struct {
	path   string
	logger *slog.Logger

	mu      sync.RWMutex
	folders []Folder
}

// Open loads the workspace file at path. A missing file yields an empty
// workspace; the file is created on the first write.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Store{path: path, logger: logger}
	if path == "" {
		return s, nil
	}
	if _, err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// NewMemory returns an in-memory store seeded with folders.
func NewMemory(folders ...string) *Store {
	s := &Store{logger: slog.New(slog.DiscardHandler)}
	for _, f := range folders {
		s.folders = append(s.folders, newFolder(f))
	}
	return s
}

// Path returns the backing file path, or "" for in-memory stores.
func (s *Store) Path() string {
	return s.path
}

// Folders returns the folder paths in workspace order.
func (s *Store) Folders() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	paths := make([]string, len(s.folders))
	for i, f := range s.folders {
		paths[i] = f.Path
	}
	return paths
}

// Entries returns a copy of the folder entries.
func (s *Store) Entries() []Folder {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.folders)
}

// First returns the first workspace folder, if any.
func (s *Store) First() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.folders) == 0 {
		return "", false
	}
	return s.folders[0].Path, true
}

// AddFolder appends path after the current last entry (index 0 for an empty
// workspace). Existing entries are never removed or reordered. Adding a folder
// that is already present is a no-op and reports false.
func (s *Store) AddFolder(path string) (bool, error) {
	if path == "" {
		return false, errors.New("folder path is required")
	}
	f := newFolder(path)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.loadLocked(); err != nil {
		return false, err
	}
	if s.indexLocked(f.Path) >= 0 {
		return false, nil
	}
	index := len(s.folders)
	s.folders = slices.Insert(s.folders, index, f)
	if err := s.saveLocked(); err != nil {
		s.folders = slices.Delete(s.folders, index, index+1)
		return false, err
	}
	s.logger.Info("workspace folder added", "path", f.Path, "index", index)
	return true, nil
}

// RemoveFolder drops path from the workspace and reports whether it was present.
func (s *Store) RemoveFolder(path string) (bool, error) {
	key := absPath(path)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.loadLocked(); err != nil {
		return false, err
	}
	i := s.indexLocked(key)
	if i < 0 {
		return false, nil
	}
	removed := s.folders[i]
	s.folders = slices.Delete(s.folders, i, i+1)
	if err := s.saveLocked(); err != nil {
		s.folders = slices.Insert(s.folders, i, removed)
		return false, err
	}
	s.logger.Info("workspace folder removed", "path", key)
	return true, nil
}

// Reload re-reads the workspace file and reports whether the folder list changed.
func (s *Store) Reload() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

// loadLocked replaces the cached list with the file's current contents.
// Writers call it first so entries saved by other processes survive.
func (s *Store) loadLocked() (bool, error) {
	if s.path == "" {
		return false, nil
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		data = nil
	} else if err != nil {
		return false, fmt.Errorf("failed to read workspace file %s: %w", s.path, err)
	}

	var doc document
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return false, fmt.Errorf("failed to parse workspace file %s: %w", s.path, err)
		}
	}
	for i := range doc.Folders {
		doc.Folders[i] = newFolderNamed(doc.Folders[i].Path, doc.Folders[i].Name)
	}

	changed := !slices.Equal(s.folders, doc.Folders)
	s.folders = doc.Folders
	return changed, nil
}

func (s *Store) indexLocked(path string) int {
	return slices.IndexFunc(s.folders, func(f Folder) bool { return f.Path == path })
}

// saveLocked writes the file through a temp file and rename.
func (s *Store) saveLocked() error {
	if s.path == "" {
		return nil
	}

	data, err := yaml.Marshal(document{Folders: s.folders})
	if err != nil {
		return fmt.Errorf("failed to encode workspace: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create workspace directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".workspace-*.yaml")
	if err != nil {
		return fmt.Errorf("failed to write workspace file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to write workspace file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to write workspace file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to write workspace file: %w", err)
	}
	return nil
}

func newFolder(path string) Folder {
	return newFolderNamed(path, "")
}

func newFolderNamed(path, name string) Folder {
	p := absPath(path)
	if name == "" {
		name = filepath.Base(p)
	}
	return Folder{Path: p, Name: name}
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}
