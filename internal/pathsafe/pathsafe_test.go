package pathsafe

import (
	"path/filepath"
	"testing"
)

func TestAllowsSimpleFilename(t *testing.T) {
	base := t.TempDir()
	if !IsSafe("test.txt", base) {
		t.Error("expected simple filename to be safe")
	}
}

func TestAllowsSubdirectory(t *testing.T) {
	base := t.TempDir()
	if !IsSafe("subdir/nested/test.txt", base) {
		t.Error("expected nested subdirectory path to be safe")
	}
}

func TestAllowsDottedInteriorSegments(t *testing.T) {
	base := t.TempDir()
	if !IsSafe("a/../b", base) {
		t.Error("expected a/../b (normalizes to b) to be safe")
	}
	if !IsSafe(".", base) {
		t.Error("expected '.' to be safe")
	}
}

func TestBlocksParentTraversal(t *testing.T) {
	base := t.TempDir()
	if IsSafe("../test.txt", base) {
		t.Error("expected ../test.txt to be unsafe")
	}
}

func TestBlocksDeepTraversal(t *testing.T) {
	base := t.TempDir()
	if IsSafe("../../../etc/passwd", base) {
		t.Error("expected deep traversal to be unsafe")
	}
}

func TestBlocksHiddenTraversal(t *testing.T) {
	base := t.TempDir()
	if IsSafe("subdir/../../test.txt", base) {
		t.Error("expected subdir/../../test.txt to be unsafe")
	}
}

func TestBlocksAbsolutePathOutsideBase(t *testing.T) {
	base := t.TempDir()
	outside := filepath.Join(filepath.Dir(base), "outside.txt")
	if IsSafe(outside, base) {
		t.Error("expected absolute path outside base to be unsafe")
	}
}

func TestResolveProducesJoinedPath(t *testing.T) {
	base := t.TempDir()
	target, ok := Resolve(base, "subdir/file.txt")
	if !ok {
		t.Fatal("expected Resolve to accept subdir/file.txt")
	}
	want := filepath.Join(base, "subdir", "file.txt")
	if target != want {
		t.Errorf("Resolve target = %q, want %q", target, want)
	}
}

func TestResolveRejectsTraversal(t *testing.T) {
	base := t.TempDir()
	if _, ok := Resolve(base, "../escape.txt"); ok {
		t.Error("expected Resolve to reject a traversal path")
	}
}
