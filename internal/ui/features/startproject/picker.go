package startproject

import (
	"os"
	"path/filepath"
	"strings"
)

// maxPickerEntries caps the number of directories listed at once.
const maxPickerEntries = 500

// pickerStart returns the directory a new folder dialog opens at.
func pickerStart(start string) string {
	if start != "" {
		if info, err := os.Stat(start); err == nil && info.IsDir() {
			return filepath.Clean(start)
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	if cwd, err := os.Getwd(); err == nil {
		return cwd
	}
	return string(filepath.Separator)
}

// listDirs returns the visible subdirectories of dir, sorted by name.
func listDirs(dir string) ([]DirEntry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	dirs := make([]DirEntry, 0, len(entries))
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if !e.IsDir() {
			continue
		}
		dirs = append(dirs, DirEntry{Name: e.Name(), Path: filepath.Join(dir, e.Name())})
		if len(dirs) == maxPickerEntries {
			break
		}
	}
	return dirs, nil
}

// parentDir returns the parent of dir, or "" at the filesystem root.
func parentDir(dir string) string {
	parent := filepath.Dir(dir)
	if parent == dir {
		return ""
	}
	return parent
}
