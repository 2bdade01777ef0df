package internal

import (
	"path/filepath"
	"regexp"
	"strings"
)

var sep = regexp.MustCompile(`[\\/]`)

// RootDir can be used to remove the root prefix of an entry name.
//
// A non-empty RootDir always ends with "/".
type RootDir string

// Join trims the root directory from name then joins the paths with filepath.Join.
func (r RootDir) Join(base, name string) string {
	if r != "" {
		name = strings.TrimPrefix(strings.TrimPrefix(name, "./"), ".\\")
		if rest, ok := strings.CutPrefix(name, string(r[:len(r)-1])); ok && rest != "" && (rest[0] == '/' || rest[0] == '\\') {
			name = rest[1:]
		}
	}

	return filepath.Join(base, name)
}

// FindRootDir returns the common root directory of the given entry names.
//
// Given these three names:
//
//	test/a.txt
//	test/path/b.txt
//	test/another/path/c.txt
//
// The common root directory of those files is `test/`. The returned value is empty if the given names have no common
// root directory.
func FindRootDir(names []string) (rootDir RootDir) {
	fn := NewRootDirFinder()

	var ok bool
	for _, name := range names {
		if rootDir, ok = fn(name); !ok {
			break
		}
	}

	return
}

// NewRootDirFinder returns a function that can be passed the entry names to compute the common root.
//
// It returns the current root dir and a boolean indicating whether there is a common root so far. As soon as the
// returned boolean value is false, the search can stop since there is no common root and subsequent calls will keep
// returning `"", false`.
//
// A leading "./" is not a root since it does not name a directory inside the archive.
func NewRootDirFinder() func(string) (rootDir RootDir, hasRoot bool) {
	noRoot, root := false, ""

	return func(name string) (RootDir, bool) {
		if noRoot {
			return "", false
		}

		paths := sep.Split(strings.TrimPrefix(strings.TrimPrefix(name, "./"), ".\\"), 2)
		if len(paths) == 1 || paths[0] == "" || paths[0] == ".." {
			noRoot = true
			return "", false
		}

		switch root {
		case paths[0]:
		case "":
			root = paths[0]
		default:
			noRoot = true
			return "", false
		}

		return RootDir(root + "/"), true
	}
}
