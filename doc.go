/*
Package undokv implements an undo stack: an ordered chain of speculative
diff layers (“sessions”) over a base key-value store, with crash recovery
for pending layers.

We implement:

1. Sessions, parent-chained overlay layers recording pending writes and
deletions relative to whatever they are attached to.

2. The UndoStack, which owns the chain of sessions, assigns a revision
number to each pushed session, and supports push, squash, undo and
commit-up-to-revision.

3. Head stores, the durable key-value targets that committed changes land
in (in-memory, Bolt-backed and Pebble-backed implementations).

4. A recovery file that snapshots all pending sessions on Close and replays
them exactly once on the next open.

# Technical Details

**Chaining.**
Session i is attached to session i-1; session 0 is attached to the head
store. Reads resolve locally first and fall through to the parent.
Committing a session folds its diff into its parent, so committing from a
given session down to session 0 folds everything into the head in
last-writer-wins order.

**Revisions.**
Each Push assigns the next revision number. The session at index i holds
revision Revision()-Size()+1+i. Commit(rev) permanently applies every
session up to and including rev into the head store and drops them from
the chain; Revision() itself is unchanged by commit.

## Recovery file encoding

Single file “undo_stack.dat” in the configured directory. Fixed-width
integers are little-endian; counts are uvarints; byte strings are
length-prefixed (uvarint length, then bytes).

**Header**:
1. Magic number (uint32).
2. Format version (uint32); readers accept [1,1], writers emit 1.
3. Revision counter (int64).
4. Session count (uvarint).

**Sessions** follow, bottom to top:
1. Updated key count (uvarint), then (key, value) byte string pairs.
2. Deleted key count (uvarint), then key byte strings.

The file is written once on Close and deleted after the first successful
load, so a recovery record is never replayed twice.
*/
package undokv
