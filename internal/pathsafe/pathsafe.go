// Package pathsafe decides whether a requested relative path stays inside a
// base directory once normalized, without ever touching the filesystem
// beyond resolving the base itself.
package pathsafe

import (
	"os"
	"path/filepath"
	"strings"
)

// IsSafe reports whether requested, interpreted as a path relative to
// baseDir, normalizes to somewhere inside baseDir. requested is expected to
// use forward slashes on the wire; it is converted to the host's separator
// before joining.
//
// The target file need not exist. baseDir must already be an absolute,
// canonicalized directory - CanonicalBase (below) produces one.
func IsSafe(requested string, baseDir string) bool {
	if baseDir == "" {
		return false
	}
	if filepath.IsAbs(requested) {
		return false
	}

	hostPath := filepath.FromSlash(requested)
	joined := filepath.Join(baseDir, hostPath)
	rel, err := filepath.Rel(baseDir, joined)
	if err != nil {
		return false
	}

	if rel == "." {
		return true
	}
	if filepath.IsAbs(rel) {
		return false
	}
	first := strings.SplitN(rel, string(filepath.Separator), 2)[0]
	return first != ".."
}

// CanonicalBase resolves baseDir to an absolute, symlink-free directory.
// Used once at construction time so every later IsSafe check compares
// against the real path, not a symlinked alias of it.
func CanonicalBase(baseDir string) (string, error) {
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return "", err
	}
	real, symErr := filepath.EvalSymlinks(abs)
	if symErr == nil {
		return real, nil
	}
	// base need not exist yet (the receiver creates it on first use); fall
	// back to the absolute, uncanonicalized form.
	if os.IsNotExist(symErr) {
		return abs, nil
	}
	return "", symErr
}

// Resolve canonicalizes baseDir to an absolute path suitable for repeated
// IsSafe checks, and joins requested onto it. It returns ok=false if
// requested escapes baseDir; callers must not use target when ok is false.
func Resolve(baseDir, requested string) (target string, ok bool) {
	absBase, err := CanonicalBase(baseDir)
	if err != nil {
		return "", false
	}
	if !IsSafe(requested, absBase) {
		return "", false
	}
	return filepath.Join(absBase, filepath.FromSlash(requested)), true
}
