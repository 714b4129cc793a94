package tool

import (
	"fmt"
	"github.com/otiai10/copy"
	"os"
	"path/filepath"
)

// ReplaceDir removes any previous tree at dst and copies src in its place.
// The removal is deliberately destructive; re-running with the same
// suffix replaces the previous output wholesale, no backup is kept.
func replaceDir(src, dst, suffix string) error {
	err := removeGenerated(dst, suffix)
	if err != nil {
		return err
	}

	fi, err := os.Stat(src)
	if err != nil || !fi.IsDir() {
		return fmt.Errorf("template directory not found: %s", src)
	}

	err = copy.Copy(src, dst)
	if err != nil {
		return fmt.Errorf("copy %s to %s: %w", src, dst, err)
	}

	return nil
}

// RemoveGenerated deletes path recursively.
// It refuses any path whose base name is not the generated-directory name
// for suffix, so a misconfigured path can not broaden the delete.
func removeGenerated(path, suffix string) error {
	if want := OutBase + "." + suffix; filepath.Base(path) != want {
		return fmt.Errorf("refusing to remove %s: base name is not %s", path, want)
	}

	err := os.RemoveAll(path)
	if err != nil {
		return fmt.Errorf("remove %s: %w", path, err)
	}

	return nil
}
