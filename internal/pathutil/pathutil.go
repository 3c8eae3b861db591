package pathutil

import (
	"path/filepath"
	"runtime"
	"strings"
)

// winLongPrefix is the Windows extended-length path prefix.
const winLongPrefix = `\\?\`

// caseInsensitive reports whether the host filesystem folds case for path
// comparison. Windows (NTFS) and macOS (APFS/HFS+) do by default.
var caseInsensitive = runtime.GOOS == "windows" || runtime.GOOS == "darwin"

// Normalize returns the canonical absolute form of path, suitable for
// storage and display. Any long-path prefix is stripped first so the
// escaped form never leaks into persisted state.
func Normalize(path string) string {
	path = CleanPath(path)
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}

// Key returns the comparison key for path: the normalized form, case-folded
// when the host filesystem is case-insensitive. Two paths that differ only
// in case or long-path prefixing produce equal keys on such systems.
func Key(path string) string {
	p := Normalize(path)
	if caseInsensitive {
		return strings.ToLower(p)
	}
	return p
}

// LongPath returns path escaped for OS calls. On Windows it prepends the
// \\?\ prefix to the absolute path; elsewhere it returns path unchanged.
func LongPath(path string) string {
	if runtime.GOOS != "windows" || strings.HasPrefix(path, winLongPrefix) {
		return path
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return winLongPrefix + abs
}

// CleanPath strips the \\?\ prefix if present, reversing LongPath.
func CleanPath(path string) string {
	return strings.TrimPrefix(path, winLongPrefix)
}

// HasPrefix reports whether the comparison key of path falls under the
// comparison key of dir. It matches dir itself and anything below it, and
// never matches sibling directories that merely share a name prefix.
func HasPrefix(path, dir string) bool {
	p := Key(path)
	d := Key(dir)
	if p == d {
		return true
	}
	if !strings.HasSuffix(d, string(filepath.Separator)) {
		d += string(filepath.Separator)
	}
	return strings.HasPrefix(p, d)
}
