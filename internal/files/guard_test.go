package files

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func skipWithoutSymlinks(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("symlink not permitted on Windows")
	}
}

func TestRejectSymlinkPath(t *testing.T) {
	skipWithoutSymlinks(t)
	tmp := t.TempDir()
	target := filepath.Join(tmp, "target.txt")
	if err := os.WriteFile(target, []byte("origineel"), 0600); err != nil {
		t.Fatalf("write target: %v", err)
	}
	realDir := filepath.Join(tmp, "real", "nested")
	if err := os.MkdirAll(realDir, 0700); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.Symlink(target, filepath.Join(tmp, "link.txt")); err != nil {
		t.Fatalf("symlink: %v", err)
	}
	if err := os.Symlink(filepath.Join(tmp, "real"), filepath.Join(tmp, "linkdir")); err != nil {
		t.Fatalf("symlink dir: %v", err)
	}

	cases := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{name: "regular_new_file", path: filepath.Join(tmp, "out.txt")},
		{name: "missing_dirs", path: filepath.Join(tmp, "a", "b", "out.txt")},
		{name: "symlink_target", path: filepath.Join(tmp, "link.txt"), wantErr: true},
		{name: "symlink_parent", path: filepath.Join(tmp, "linkdir", "out.txt"), wantErr: true},
		{name: "symlink_ancestor", path: filepath.Join(tmp, "linkdir", "nested", "out.txt"), wantErr: true},
		{name: "empty", path: " ", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := RejectSymlinkPath(tc.path)
			if (err != nil) != tc.wantErr {
				t.Fatalf("RejectSymlinkPath(%q) error = %v, wantErr %v", tc.path, err, tc.wantErr)
			}
		})
	}
}

func TestAtomicWrite_RejectsSymlinkTarget(t *testing.T) {
	skipWithoutSymlinks(t)
	tmp := t.TempDir()
	target := filepath.Join(tmp, "target.txt")
	if err := os.WriteFile(target, []byte("origineel"), 0600); err != nil {
		t.Fatalf("write target: %v", err)
	}
	link := filepath.Join(tmp, "out.txt")
	if err := os.Symlink(target, link); err != nil {
		t.Fatalf("symlink: %v", err)
	}

	if err := AtomicWrite(link, []byte("nieuw"), 0600); err == nil {
		t.Fatalf("expected AtomicWrite to reject symlink")
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read target: %v", err)
	}
	if string(data) != "origineel" {
		t.Fatalf("target modified via symlink: %s", string(data))
	}
}

func TestCheckOutputPath(t *testing.T) {
	tmp := t.TempDir()
	in := filepath.Join(tmp, "in.txt")
	if err := os.WriteFile(in, []byte("hallo\n"), 0600); err != nil {
		t.Fatalf("write input: %v", err)
	}

	if err := CheckOutputPath(in, filepath.Join(tmp, "out.txt")); err != nil {
		t.Fatalf("new output rejected: %v", err)
	}
	if err := CheckOutputPath(in, filepath.Join(tmp, ".", "in.txt")); !errors.Is(err, ErrSamePath) {
		t.Fatalf("expected ErrSamePath, got %v", err)
	}
	if err := CheckOutputPath(filepath.Join(tmp, "missing.txt"), filepath.Join(tmp, "out.txt")); err == nil {
		t.Fatalf("expected error for missing input")
	}
}
