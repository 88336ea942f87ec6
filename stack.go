package undokv

import (
	"log/slog"
	"slices"
)

type Options struct {
	// Dir enables crash recovery: pending sessions are snapshotted into
	// this directory on Close and replayed exactly once by New. Leave
	// empty to disable persistence.
	Dir string

	Logger *slog.Logger
}

// UndoStack owns an ordered chain of pending sessions over a head store.
// Index 0 is the oldest session (the next to be committed), the last index
// is the newest. Session i is attached to session i-1, session 0 to the
// head store.
//
// The head store is referenced, never owned, and must outlive the stack.
// All methods must be called from a single goroutine.
type UndoStack struct {
	head     Store
	sessions []*Session
	revision int64
	dir      string
	logger   *slog.Logger
}

// New creates an undo stack over head. If opt.Dir is set and contains a
// recovery file from a previous Close, the pending sessions are replayed
// and the file is deleted.
func New(head Store, opt Options) (*UndoStack, error) {
	if opt.Logger == nil {
		opt.Logger = slog.Default()
	}
	u := &UndoStack{
		head:   head,
		dir:    opt.Dir,
		logger: opt.Logger,
	}
	if err := u.load(); err != nil {
		return nil, err
	}
	return u, nil
}

// Push adds a new session to the top of the stack and assigns it the next
// revision number.
func (u *UndoStack) Push() {
	if n := len(u.sessions); n == 0 {
		u.sessions = append(u.sessions, NewSession(u.head))
	} else {
		u.sessions = append(u.sessions, NewSession(u.sessions[n-1]))
	}
	u.revision++
}

// Squash merges the top session into the session below it (or into the
// head store when it is the only session) and drops it from the stack.
// No-op on an empty stack.
func (u *UndoStack) Squash() error {
	n := len(u.sessions)
	if n == 0 {
		return nil
	}
	top := u.sessions[n-1]
	if err := top.Commit(); err != nil {
		return err
	}
	top.Detach()
	u.sessions[n-1] = nil // ensure it gets collected
	u.sessions = u.sessions[:n-1]
	u.revision--
	return nil
}

// Undo pops the top session off the stack and discards its pending diff.
// No-op on an empty stack.
func (u *UndoStack) Undo() {
	n := len(u.sessions)
	if n == 0 {
		return
	}
	u.sessions[n-1].Detach()
	u.sessions[n-1] = nil // ensure it gets collected
	u.sessions = u.sessions[:n-1]
	u.revision--
}

// Commit permanently applies the sessions at the bottom of the stack up to
// and including the given revision into the head store and drops them.
// Revisions beyond the top are clamped (commit everything); revisions below
// the bottom session are a no-op. The revision counter is unchanged.
func (u *UndoStack) Commit(revision int64) error {
	if len(u.sessions) == 0 {
		return nil
	}

	revision = min(revision, u.revision)
	initialRevision := u.revision - int64(len(u.sessions)) + 1
	if initialRevision > revision {
		return nil
	}

	// Commit top-down within the range so later diffs fold into earlier
	// sessions before those fold into the head, preserving last-writer-wins
	// for keys touched at multiple levels.
	startIndex := int(revision - initialRevision)
	for i := startIndex; i >= 0; i-- {
		if err := u.sessions[i].Commit(); err != nil {
			return err
		}
	}
	for i := 0; i <= startIndex; i++ {
		u.sessions[i].Detach()
	}
	u.sessions = slices.Delete(u.sessions, 0, startIndex+1)
	if len(u.sessions) > 0 {
		u.sessions[0].Attach(u.head)
	}
	return nil
}

func (u *UndoStack) Empty() bool {
	return len(u.sessions) == 0
}

func (u *UndoStack) Size() int {
	return len(u.sessions)
}

// Revision returns the revision number of the most recently pushed session
// (or the base revision when no sessions exist).
func (u *UndoStack) Revision() int64 {
	return u.revision
}

// SetRevision resumes revision numbering after an external commit point.
// It only takes effect when the stack is empty and revision is greater
// than the current value; otherwise it is silently ignored.
func (u *UndoStack) SetRevision(revision int64) {
	if len(u.sessions) != 0 {
		return
	}
	if revision <= u.revision {
		return
	}
	u.revision = revision
}

// Top returns a frontier handle to the newest session, or to the head
// store when the stack is empty.
func (u *UndoStack) Top() Frontier {
	if n := len(u.sessions); n > 0 {
		return Frontier{session: u.sessions[n-1]}
	}
	return Frontier{head: u.head}
}

// Bottom returns a frontier handle to the oldest session (the next to be
// committed), or to the head store when the stack is empty.
func (u *UndoStack) Bottom() Frontier {
	if len(u.sessions) > 0 {
		return Frontier{session: u.sessions[0]}
	}
	return Frontier{head: u.head}
}

// Close snapshots all pending sessions into the recovery file and empties
// the stack. Without a configured directory it discards the pending
// sessions instead.
func (u *UndoStack) Close() error {
	if u.dir == "" {
		for _, s := range u.sessions {
			s.Detach()
		}
		u.sessions = nil
		return nil
	}
	return u.save()
}
