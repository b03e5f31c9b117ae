// Package fspath teaches the Go type system about two kinds of path used
// throughout pacm: an AbsolutePath (rooted, usable directly with os.*) and
// an AnchoredPath (relative to some root that the caller already knows,
// such as a project directory or the cache root). Keeping them distinct
// catches an entire class of "joined the wrong root" bugs at compile time.
package fspath

import (
	"path/filepath"

	"github.com/yookoala/realpath"
)

// AbsolutePath is a fully-qualified filesystem path.
type AbsolutePath string

// AnchoredPath is a path relative to a root the caller tracks separately.
// It is stored without a leading separator.
type AnchoredPath string

// ToString returns the plain string form of the path.
func (p AbsolutePath) ToString() string { return string(p) }

// ToString returns the plain string form of the path.
func (p AnchoredPath) ToString() string { return string(p) }

// Join appends path segments and returns a new AbsolutePath.
func (p AbsolutePath) Join(segments ...string) AbsolutePath {
	return AbsolutePath(filepath.Join(append([]string{string(p)}, segments...)...))
}

// Join appends path segments and returns a new AnchoredPath.
func (p AnchoredPath) Join(segments ...string) AnchoredPath {
	return AnchoredPath(filepath.Join(append([]string{string(p)}, segments...)...))
}

// RestoreAnchor resolves this AnchoredPath against the given root.
func (p AnchoredPath) RestoreAnchor(root AbsolutePath) AbsolutePath {
	return root.Join(string(p))
}

// Dir returns the parent directory of this path.
func (p AbsolutePath) Dir() AbsolutePath {
	return AbsolutePath(filepath.Dir(string(p)))
}

// Base returns the final path element.
func (p AbsolutePath) Base() string {
	return filepath.Base(string(p))
}

// New validates and returns path as an AbsolutePath, making it absolute
// against the current working directory if it is not already.
func New(path string) (AbsolutePath, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return AbsolutePath(abs), nil
}

// EvalSymlinks resolves symlinks in the path (e.g. macOS /tmp -> /private/tmp)
// so two paths that refer to the same file compare equal as strings.
func (p AbsolutePath) EvalSymlinks() (AbsolutePath, error) {
	resolved, err := realpath.Realpath(string(p))
	if err != nil {
		// A path that doesn't exist yet can't be resolved; that's fine,
		// callers use EvalSymlinks opportunistically before comparisons.
		return p, nil
	}
	return AbsolutePath(resolved), nil
}
