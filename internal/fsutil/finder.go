// Package fsutil locates sweep definition files on disk.
package fsutil

import (
	"errors"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
)

// FindFiles walks root and returns every regular file whose name ends in ext,
// sorted so that definitions merge in a stable order. Directories whose name
// starts with a dot are not descended into.
func FindFiles(root, ext string) ([]string, error) {
	if ext == "" {
		return nil, errors.New("fsutil: empty file extension")
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		switch {
		case err != nil:
			return err
		case d.IsDir() && path != root && strings.HasPrefix(d.Name(), "."):
			return filepath.SkipDir
		case d.Type().IsRegular() && strings.HasSuffix(d.Name(), ext):
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(files)
	return files, nil
}
