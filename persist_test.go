package undokv

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPersistence_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	head := NewMemHead()
	put(t, head, "committed", "base")
	put(t, head, "doomed", "base")

	u, err := New(head, Options{Dir: dir})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	u.Push()
	put(t, u.Top(), "a", "1")
	del(t, u.Top(), "doomed")
	u.Push()
	put(t, u.Top(), "a", "2")
	put(t, u.Top(), "b", "binary\x00value")
	u.Push()
	del(t, u.Top(), "a")
	put(t, u.Top(), "c", "3")

	if err := u.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if u.Size() != 0 {
		t.Fatalf("Size after Close = %d, wanted 0", u.Size())
	}
	if _, err := os.Stat(filepath.Join(dir, recoveryFileName)); err != nil {
		t.Fatalf("recovery file missing after Close: %v", err)
	}

	v, err := New(head, Options{Dir: dir})
	if err != nil {
		t.Fatalf("New (reopen) failed: %v", err)
	}
	if v.Revision() != 3 {
		t.Fatalf("Revision = %d, wanted 3", v.Revision())
	}
	if v.Size() != 3 {
		t.Fatalf("Size = %d, wanted 3", v.Size())
	}

	wantAbsent(t, v.Top(), "a")
	wantValue(t, v.Top(), "b", "binary\x00value")
	wantValue(t, v.Top(), "c", "3")
	wantValue(t, v.Top(), "committed", "base")
	wantAbsent(t, v.Top(), "doomed")
	wantValue(t, v.Bottom(), "a", "1")
	wantAbsent(t, v.Bottom(), "doomed")

	if _, err := os.Stat(filepath.Join(dir, recoveryFileName)); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("recovery file still exists after load: err=%v", err)
	}

	// The file was consumed; a third open starts empty but keeps no
	// revision history to restore.
	w, err := New(head, Options{Dir: dir})
	if err != nil {
		t.Fatalf("New (third open) failed: %v", err)
	}
	if w.Size() != 0 || w.Revision() != 0 {
		t.Fatalf("third open: size=%d revision=%d, wanted 0, 0", w.Size(), w.Revision())
	}
}

func TestPersistence_ReplayedStackSupportsFurtherCommits(t *testing.T) {
	dir := t.TempDir()
	head := NewMemHead()

	u, err := New(head, Options{Dir: dir})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	u.Push()
	put(t, u.Top(), "a", "1")
	u.Push()
	put(t, u.Top(), "b", "2")
	if err := u.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	v, err := New(head, Options{Dir: dir})
	if err != nil {
		t.Fatalf("New (reopen) failed: %v", err)
	}
	if err := v.Commit(v.Revision()); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	wantValue(t, head, "a", "1")
	wantValue(t, head, "b", "2")
}

func TestPersistence_EmptyStackRoundTrip(t *testing.T) {
	dir := t.TempDir()
	head := NewMemHead()

	u, err := New(head, Options{Dir: dir})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	u.SetRevision(42)
	if err := u.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	v, err := New(head, Options{Dir: dir})
	if err != nil {
		t.Fatalf("New (reopen) failed: %v", err)
	}
	if v.Revision() != 42 || v.Size() != 0 {
		t.Fatalf("reopen: revision=%d size=%d, wanted 42, 0", v.Revision(), v.Size())
	}
}

func TestPersistence_MissingFileIsNoop(t *testing.T) {
	u, err := New(NewMemHead(), Options{Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if u.Size() != 0 || u.Revision() != 0 {
		t.Fatalf("size=%d revision=%d, wanted 0, 0", u.Size(), u.Revision())
	}
}

func closeStackWithOneSession(t *testing.T, dir string) string {
	t.Helper()
	u, err := New(NewMemHead(), Options{Dir: dir})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	u.Push()
	put(t, u.Top(), "k", "v")
	if err := u.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	return filepath.Join(dir, recoveryFileName)
}

func TestPersistence_MagicValidation(t *testing.T) {
	dir := t.TempDir()
	path := closeStackWithOneSession(t, dir)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	binary.LittleEndian.PutUint32(data[0:], 0xDEADBEEF)
	if err := os.WriteFile(path, data, 0o666); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	_, err = New(NewMemHead(), Options{Dir: dir})
	if !errors.Is(err, ErrIncompatible) {
		t.Fatalf("New err = %v, wanted ErrIncompatible", err)
	}
	for _, want := range []string{path, "DEADBEEF", "30510ABC"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q does not mention %q", err, want)
		}
	}
}

func TestPersistence_VersionValidation(t *testing.T) {
	dir := t.TempDir()
	path := closeStackWithOneSession(t, dir)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	binary.LittleEndian.PutUint32(data[4:], 99)
	if err := os.WriteFile(path, data, 0o666); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	_, err = New(NewMemHead(), Options{Dir: dir})
	if !errors.Is(err, ErrUnsupportedVersion) {
		t.Fatalf("New err = %v, wanted ErrUnsupportedVersion", err)
	}
	for _, want := range []string{path, "99", "[1,1]"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q does not mention %q", err, want)
		}
	}
}

func TestPersistence_TruncatedFileFailsWithPath(t *testing.T) {
	dir := t.TempDir()
	path := closeStackWithOneSession(t, dir)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if err := os.WriteFile(path, data[:len(data)-3], 0o666); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	_, err = New(NewMemHead(), Options{Dir: dir})
	if err == nil {
		t.Fatalf("New on truncated file = nil, wanted error")
	}
	if !strings.Contains(err.Error(), path) {
		t.Fatalf("error %q does not mention %q", err, path)
	}

	// A failed load must not consume the file.
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("recovery file gone after failed load: %v", err)
	}
}

func TestPersistence_CloseCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "sub", "dir")
	u, err := New(NewMemHead(), Options{Dir: dir})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	u.Push()
	put(t, u.Top(), "k", "v")
	if err := u.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, recoveryFileName)); err != nil {
		t.Fatalf("recovery file missing: %v", err)
	}
}
