package disc

import (
	"fmt"
	"os"
	"path/filepath"
)

// ResolveBDMVRoot accepts either a BDMV directory itself or a parent
// directory containing BDMV/, and returns the directory that holds PLAYLIST/.
func ResolveBDMVRoot(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", abs, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", abs)
	}

	if isDir(filepath.Join(abs, "PLAYLIST")) {
		return abs, nil
	}
	nested := filepath.Join(abs, "BDMV")
	if isDir(filepath.Join(nested, "PLAYLIST")) {
		return nested, nil
	}
	return "", fmt.Errorf("no BDMV structure at %s: expected a PLAYLIST/ directory or a BDMV/PLAYLIST/ subtree", abs)
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
