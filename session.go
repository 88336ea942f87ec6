package undokv

import (
	"fmt"
	"slices"
	"sort"
)

// Session is a single speculative diff layer. It records pending writes and
// deletions relative to its parent, which is either another session or a
// head store. Reads resolve locally first and fall through to the parent.
//
// A session's own diff remains queryable after Detach; only fall-through
// reads require a parent.
type Session struct {
	parent  Store
	writes  map[string][]byte
	deletes map[string]struct{}
}

// NewSession creates a session chained to parent. A nil parent is valid and
// can be fixed up later via Attach.
func NewSession(parent Store) *Session {
	return &Session{
		parent:  parent,
		writes:  make(map[string][]byte),
		deletes: make(map[string]struct{}),
	}
}

func (s *Session) Get(key []byte) ([]byte, bool, error) {
	k := string(key)
	if v, ok := s.writes[k]; ok {
		return slices.Clone(v), true, nil
	}
	if _, ok := s.deletes[k]; ok {
		return nil, false, nil
	}
	if s.parent == nil {
		return nil, false, nil
	}
	return s.parent.Get(key)
}

func (s *Session) Put(key, value []byte) error {
	k := string(key)
	delete(s.deletes, k)
	s.writes[k] = slices.Clone(value)
	return nil
}

func (s *Session) Delete(key []byte) error {
	k := string(key)
	delete(s.writes, k)
	s.deletes[k] = struct{}{}
	return nil
}

// Commit folds the session's pending diff into its current parent and
// clears the diff. The session stays attached and stays wherever it is
// held; it does not remove itself from any container.
func (s *Session) Commit() error {
	if s.parent == nil {
		return fmt.Errorf("undokv: cannot commit a detached session")
	}
	for k, v := range s.writes {
		if err := s.parent.Put([]byte(k), v); err != nil {
			return err
		}
	}
	for k := range s.deletes {
		if err := s.parent.Delete([]byte(k)); err != nil {
			return err
		}
	}
	clear(s.writes)
	clear(s.deletes)
	return nil
}

// Attach sets or replaces the parent link.
func (s *Session) Attach(parent Store) {
	s.parent = parent
}

// Detach severs the parent link.
func (s *Session) Detach() {
	s.parent = nil
}

// UpdatedKeys returns this session's own pending written keys in sorted
// order, not including keys inherited from parents.
func (s *Session) UpdatedKeys() [][]byte {
	keys := make([]string, 0, len(s.writes))
	for k := range s.writes {
		keys = append(keys, k)
	}
	return sortedKeyBytes(keys)
}

// DeletedKeys returns this session's own pending deleted keys in sorted
// order.
func (s *Session) DeletedKeys() [][]byte {
	keys := make([]string, 0, len(s.deletes))
	for k := range s.deletes {
		keys = append(keys, k)
	}
	return sortedKeyBytes(keys)
}

var _ Store = (*Session)(nil)

func sortedKeyBytes(keys []string) [][]byte {
	sort.Strings(keys)
	result := make([][]byte, len(keys))
	for i, k := range keys {
		result[i] = []byte(k)
	}
	return result
}
