// Package paths resolves user-supplied directory arguments against the
// session's working directory. Nothing here touches the filesystem; callers
// check existence themselves.
package paths

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var envRef = regexp.MustCompile(`\$(\w+|\{[^}]*\})`)

// ExpandHome replaces a leading "~" or "~/" with the user's home directory.
// Other forms ("~user") are returned unchanged.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~"+string(filepath.Separator)) && !strings.HasPrefix(path, "~/") {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return home
	}
	return filepath.Join(home, path[2:])
}

// ExpandVars substitutes $NAME and ${NAME} references with their environment
// values. References to unset variables are left as written, so a directory
// literally named "a$b" survives expansion.
func ExpandVars(path string) string {
	if !strings.Contains(path, "$") {
		return path
	}
	return envRef.ReplaceAllStringFunc(path, func(ref string) string {
		name := strings.TrimSuffix(strings.TrimPrefix(ref[1:], "{"), "}")
		if value, ok := os.LookupEnv(name); ok {
			return value
		}
		return ref
	})
}

// Normalize expands the home shorthand and collapses ".", ".." and
// redundant separators.
func Normalize(path string) string {
	return filepath.Clean(ExpandHome(path))
}

// Resolve turns raw into an absolute, cleaned path. Environment variables and
// the home shorthand are expanded first; a relative result is joined onto
// currentDir. Unset variables stay literal (see ExpandVars).
func Resolve(raw, currentDir string) string {
	expanded := ExpandVars(ExpandHome(strings.TrimSpace(raw)))

	if filepath.IsAbs(expanded) {
		return filepath.Clean(expanded)
	}
	return filepath.Clean(filepath.Join(currentDir, expanded))
}

// Within reports whether path equals root or lies below it. The comparison is
// bounded by the path separator, so "/home/userx" is not within "/home/user".
func Within(path, root string) bool {
	if path == root {
		return true
	}
	if strings.HasSuffix(root, string(filepath.Separator)) {
		// root is "/" (or a volume root); Clean never leaves another trailing separator
		return strings.HasPrefix(path, root)
	}
	return strings.HasPrefix(path, root+string(filepath.Separator))
}
