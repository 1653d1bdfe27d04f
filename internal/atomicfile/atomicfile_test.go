// Copyright (c) 2026 Hostwarden Team
// Hostwarden - GitHub SSH known_hosts synchronization
// This source code is licensed under the MIT license found in the LICENSE file.

package atomicfile

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestWriteFile_CreatesFileAndDirectory(t *testing.T) {
	tmp := t.TempDir()
	target := filepath.Join(tmp, "sub", "known_hosts")

	if err := WriteFile(target, []byte("github.com ssh-ed25519 AAAA\n"), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read target: %v", err)
	}
	if string(data) != "github.com ssh-ed25519 AAAA\n" {
		t.Errorf("unexpected content: %q", data)
	}

	if runtime.GOOS != "windows" {
		fi, err := os.Stat(target)
		if err != nil {
			t.Fatalf("stat target: %v", err)
		}
		if fi.Mode().Perm() != 0o600 {
			t.Errorf("expected file mode 0600, got %v", fi.Mode().Perm())
		}

		di, err := os.Stat(filepath.Dir(target))
		if err != nil {
			t.Fatalf("stat dir: %v", err)
		}
		if di.Mode().Perm() != 0o700 {
			t.Errorf("expected created dir mode 0700, got %v", di.Mode().Perm())
		}
	}
}

func TestWriteFile_ReplacesExisting(t *testing.T) {
	tmp := t.TempDir()
	target := filepath.Join(tmp, "known_hosts")

	if err := os.WriteFile(target, []byte("old content\n"), 0o644); err != nil {
		t.Fatalf("seed target: %v", err)
	}

	if err := WriteFile(target, []byte("new content\n"), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read target: %v", err)
	}
	if string(data) != "new content\n" {
		t.Errorf("unexpected content after replace: %q", data)
	}

	if runtime.GOOS != "windows" {
		fi, _ := os.Stat(target)
		if fi.Mode().Perm() != 0o600 {
			t.Errorf("expected replaced file mode 0600, got %v", fi.Mode().Perm())
		}
	}
}

func TestWriteFile_ParentIsFile(t *testing.T) {
	tmp := t.TempDir()
	parent := filepath.Join(tmp, "blocker")
	if err := os.WriteFile(parent, []byte("i am a file"), 0o600); err != nil {
		t.Fatalf("seed blocker: %v", err)
	}

	target := filepath.Join(parent, "known_hosts")
	if err := WriteFile(target, []byte("data\n"), 0o600); err == nil {
		t.Fatal("expected error when parent path is a regular file")
	}

	// The blocker must be untouched.
	data, err := os.ReadFile(parent)
	if err != nil || string(data) != "i am a file" {
		t.Fatalf("blocker file was modified: %q err=%v", data, err)
	}
}

func TestWriteFile_RenameFailureLeavesTargetAndNoResidue(t *testing.T) {
	tmp := t.TempDir()

	// A non-empty directory at the target path makes the final rename
	// fail after the temp file was fully staged.
	target := filepath.Join(tmp, "known_hosts")
	if err := os.MkdirAll(target, 0o755); err != nil {
		t.Fatalf("mkdir target: %v", err)
	}
	sentinel := filepath.Join(target, "keep")
	if err := os.WriteFile(sentinel, []byte("x"), 0o600); err != nil {
		t.Fatalf("seed sentinel: %v", err)
	}

	if err := WriteFile(target, []byte("data\n"), 0o600); err == nil {
		t.Fatal("expected rename onto non-empty directory to fail")
	}

	if _, err := os.Stat(sentinel); err != nil {
		t.Errorf("target contents were disturbed: %v", err)
	}

	entries, err := os.ReadDir(tmp)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".hostwarden-") {
			t.Errorf("temporary file left behind: %s", e.Name())
		}
	}
}

func TestWriteFile_NoTempResidueOnSuccess(t *testing.T) {
	tmp := t.TempDir()
	target := filepath.Join(tmp, "known_hosts")

	if err := WriteFile(target, []byte("data\n"), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	entries, err := os.ReadDir(tmp)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "known_hosts" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("expected only the target file, found: %v", names)
	}
}
