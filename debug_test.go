package undokv

import (
	"strings"
	"testing"
)

func TestDump(t *testing.T) {
	u, _ := newTestStack(t)
	u.SetRevision(10)
	u.Push()
	put(t, u.Top(), "a", "1")
	u.Push()
	del(t, u.Top(), "a")

	dump := u.Dump()
	if !strings.Contains(dump, "revision=12 sessions=2") {
		t.Fatalf("dump missing summary:\n%s", dump)
	}
	if !strings.Contains(dump, "[0] revision=11 updated=1 deleted=0") {
		t.Fatalf("dump missing bottom session:\n%s", dump)
	}
	if !strings.Contains(dump, "[1] revision=12 updated=0 deleted=1") {
		t.Fatalf("dump missing top session:\n%s", dump)
	}
}

func TestSessionFingerprint(t *testing.T) {
	a := NewSession(nil)
	put(t, a, "k1", "v1")
	del(t, a, "k2")

	b := NewSession(NewMemHead())
	del(t, b, "k2")
	put(t, b, "k1", "v1")

	if a.fingerprint() != b.fingerprint() {
		t.Fatalf("fingerprints differ for identical diffs: %016x vs %016x", a.fingerprint(), b.fingerprint())
	}

	put(t, b, "k1", "v2")
	if a.fingerprint() == b.fingerprint() {
		t.Fatalf("fingerprints equal for different diffs")
	}
}
