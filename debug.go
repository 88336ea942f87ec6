package undokv

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Dump returns a human-readable description of the pending session chain,
// for debugging and logging.
func (u *UndoStack) Dump() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "UndoStack: revision=%d sessions=%d\n", u.revision, len(u.sessions))
	initialRevision := u.revision - int64(len(u.sessions)) + 1
	for i, s := range u.sessions {
		fmt.Fprintf(&buf, "  [%d] revision=%d updated=%d deleted=%d fingerprint=%016x\n",
			i, initialRevision+int64(i), len(s.writes), len(s.deletes), s.fingerprint())
	}
	return buf.String()
}

// fingerprint hashes the session's own diff; two sessions with the same
// pending writes and deletions hash equal.
func (s *Session) fingerprint() uint64 {
	var h xxhash.Digest
	h.Reset()
	for _, key := range s.UpdatedKeys() {
		h.Write(appendVarbytes(nil, key))
		h.Write(appendVarbytes(nil, s.writes[string(key)]))
	}
	for _, key := range s.DeletedKeys() {
		h.Write(appendVarbytes(nil, key))
	}
	return h.Sum64()
}
