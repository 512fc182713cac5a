// Package files discovers the legacy per-tetrode directory layout: a session
// root holds one TT<N> subdirectory per tetrode, each with spike (.CEL/.CELL)
// and binary map (.RMA) files.
package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

// FileInfo represents information about a discovered file
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// TetrodeDir is one per-tetrode subdirectory of a session root.
type TetrodeDir struct {
	Name   string // e.g. "TT0"
	Path   string
	Number int // numeric suffix, used for ordering
}

// Discovery provides file discovery operations rooted at a base path.
type Discovery struct {
	basePath string
}

// NewDiscovery creates a new file discovery instance
func NewDiscovery(basePath string) *Discovery {
	return &Discovery{basePath: basePath}
}

// ListTetrodeDirs lists the TT<N> subdirectories of dir, ordered by numeric
// suffix (TT2 before TT10). Directories with a non-numeric suffix are skipped.
func (d *Discovery) ListTetrodeDirs(dir string) ([]TetrodeDir, error) {
	fullPath := d.resolve(dir)

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	var dirs []TetrodeDir
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasPrefix(strings.ToUpper(name), "TT") {
			continue
		}
		num, err := strconv.Atoi(name[2:])
		if err != nil {
			continue
		}
		dirs = append(dirs, TetrodeDir{
			Name:   name,
			Path:   filepath.Join(fullPath, name),
			Number: num,
		})
	}

	sort.Slice(dirs, func(i, j int) bool {
		return dirs[i].Number < dirs[j].Number
	})

	return dirs, nil
}

// FindSpikeFiles finds the .CEL/.CELL spike files in dir, sorted by name.
func (d *Discovery) FindSpikeFiles(dir string) ([]FileInfo, error) {
	return d.findByExtension(dir, ".cel", ".cell")
}

// FindMapFiles finds the .RMA binary map files in dir, sorted by name.
func (d *Discovery) FindMapFiles(dir string) ([]FileInfo, error) {
	return d.findByExtension(dir, ".rma")
}

// findByExtension lists regular files in dir whose extension matches one of
// exts (case-insensitive), sorted by filename so traversal order is stable.
func (d *Discovery) findByExtension(dir string, exts ...string) ([]FileInfo, error) {
	fullPath := d.resolve(dir)

	entries, err := os.ReadDir(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", fullPath, err)
	}

	var files []FileInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		ext := strings.ToLower(filepath.Ext(name))
		matched := false
		for _, want := range exts {
			if ext == want {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		files = append(files, FileInfo{
			Path:    filepath.Join(fullPath, name),
			Name:    name,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name < files[j].Name
	})

	return files, nil
}

// resolve joins dir onto the base path unless it is already absolute.
func (d *Discovery) resolve(dir string) string {
	if filepath.IsAbs(dir) || d.basePath == "" {
		return dir
	}
	return filepath.Join(d.basePath, dir)
}
