// Package discover finds input files under a root directory.
package discover

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// Ext is the extension JSONFiles matches.
const Ext = ".json"

// JSONFiles walks root recursively and returns the absolute paths of every
// regular file whose name ends in ".json". Hidden files (name starting with
// ".", such as macOS "._x.json" resource forks) are skipped.
//
// Order is whatever filepath.WalkDir yields (lexical within a directory).
// Callers must not rely on it. A root with no matching files, or a root that
// does not exist, returns an empty non-nil slice and no error. Any other walk
// failure is an error.
func JSONFiles(root string) ([]string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("discover: resolve %s: %w", root, err)
	}

	files := []string{}
	err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == abs && errors.Is(err, fs.ErrNotExist) {
				return fs.SkipAll
			}
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		name := d.Name()
		if strings.HasPrefix(name, ".") || !strings.HasSuffix(name, Ext) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discover: walk %s: %w", root, err)
	}
	return files, nil
}
