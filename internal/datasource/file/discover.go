// Package file implements the local filesystem input side of ingestion:
// discovering article files in a directory and reading them.
package file

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Ext is the file extension matched by Discover.
const Ext = ".json"

// Discover returns the regular files directly inside dir whose names end in
// ".json", sorted lexically by full path so repeated runs see a stable order.
// Subdirectories are not descended into.
func Discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("discover %s: %w", dir, err)
	}

	var out []string
	for _, e := range entries {
		if !strings.HasSuffix(e.Name(), Ext) {
			continue
		}
		if !e.Type().IsRegular() {
			// Follow symlinks, skip anything that is not a plain file.
			info, err := os.Stat(filepath.Join(dir, e.Name()))
			if err != nil || !info.Mode().IsRegular() {
				continue
			}
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}
	sort.Strings(out)
	return out, nil
}
