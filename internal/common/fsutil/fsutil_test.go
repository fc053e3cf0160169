package fsutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestExpandHome(t *testing.T) {
	// Set a deterministic HOME for the duration of this test so we never skip.
	home := t.TempDir()
	t.Setenv("HOME", home)
	if runtime.GOOS == "windows" {
		t.Setenv("USERPROFILE", home)
	}
	// raw path unaffected
	if got, err := ExpandHome("/tmp"); err != nil || got != "/tmp" {
		t.Fatalf("got %q err=%v", got, err)
	}
	// empty path
	if got, err := ExpandHome(""); err != nil || got != "" {
		t.Fatalf("got %q err=%v", got, err)
	}
	// ~ expansion
	p, err := ExpandHome("~")
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if p != home {
		t.Fatalf("expected %q, got %q", home, p)
	}
	// ~/subdir
	sub := "loras"
	exp, err := ExpandHome("~/" + sub)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if filepath.Base(exp) != sub {
		t.Fatalf("unexpected expanded path: %q", exp)
	}
}

func TestPathExists(t *testing.T) {
	dir := t.TempDir()
	if !PathExists(dir) {
		t.Fatalf("expected %q to exist", dir)
	}
	if PathExists(filepath.Join(dir, "missing")) {
		t.Fatalf("expected missing path to not exist")
	}
	if PathExists("") {
		t.Fatalf("empty path must not exist")
	}
}

func TestIsDirAndSymlink(t *testing.T) {
	dir := t.TempDir()
	real := filepath.Join(dir, "real")
	if err := os.Mkdir(real, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	f := filepath.Join(dir, "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !IsDir(real) || IsDir(f) {
		t.Fatalf("IsDir misreported")
	}
	link := filepath.Join(dir, "link")
	if err := os.Symlink(real, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	if !IsSymlink(link) || IsSymlink(real) {
		t.Fatalf("IsSymlink misreported")
	}
	if !IsDir(link) {
		t.Fatalf("IsDir should follow symlinks")
	}
}

func TestNormalize(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("posix paths")
	}
	cases := map[string]string{
		"":                   "",
		"/models/loras":      "/models/loras",
		"/models/loras/":     "/models/loras",
		`\models\loras`:      "/models/loras",
		"/models/./a/../b":   "/models/b",
		"/models//ckpt":      "/models/ckpt",
		`/models\mixed/path`: "/models/mixed/path",
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Fatalf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if got := Normalize("rel/dir"); got != filepath.ToSlash(filepath.Join(wd, "rel", "dir")) {
		t.Fatalf("relative path not made absolute: %q", got)
	}
}
