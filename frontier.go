package undokv

// Frontier is a handle to either a session or the head store, returned by
// UndoStack.Top and UndoStack.Bottom. It lets callers read and write the
// current frontier without branching on whether any speculative session
// exists.
type Frontier struct {
	session *Session
	head    Store
}

// IsHead reports whether the frontier designates the head store rather
// than a session.
func (f Frontier) IsHead() bool {
	return f.session == nil
}

// Session returns the designated session, or nil when the frontier is the
// head store.
func (f Frontier) Session() *Session {
	return f.session
}

func (f Frontier) target() Store {
	if f.session != nil {
		return f.session
	}
	return f.head
}

func (f Frontier) Get(key []byte) ([]byte, bool, error) {
	return f.target().Get(key)
}

func (f Frontier) Put(key, value []byte) error {
	return f.target().Put(key, value)
}

func (f Frontier) Delete(key []byte) error {
	return f.target().Delete(key)
}

var _ Store = Frontier{}
