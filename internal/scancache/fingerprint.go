package scancache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Fingerprint derives a stable identity for a BDMV backup from its root path
// and the names and sizes of its playlist and clip info files. Adding,
// removing, renaming or resizing one of those files changes the fingerprint
// and invalidates the cached analysis; an edit that keeps a file's size, or a
// change to any other file, leaves the fingerprint as it was.
func Fingerprint(bdmvRoot string) (string, error) {
	h := sha256.New()
	fmt.Fprintln(h, filepath.Clean(bdmvRoot))

	for _, sub := range []string{"PLAYLIST", "CLIPINF"} {
		dir := filepath.Join(bdmvRoot, sub)
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return "", fmt.Errorf("read %s: %w", dir, err)
		}
		names := make([]string, 0, len(entries))
		for _, entry := range entries {
			if !entry.IsDir() {
				names = append(names, entry.Name())
			}
		}
		sort.Strings(names)
		for _, name := range names {
			info, err := os.Stat(filepath.Join(dir, name))
			if err != nil {
				continue
			}
			fmt.Fprintf(h, "%s/%s:%d\n", sub, strings.ToLower(name), info.Size())
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
