// Package skiplist implements the ordered priority structure used by the
// airtime scheduler: a probabilistic skip list with O(1) pop-minimum and
// O(log n) expected insert and delete.
//
// The structure is chosen over a balanced tree because the scheduler
// re-keys an element after nearly every dequeue; delete-then-insert on a
// skip list never triggers a rebalancing cascade.
//
// # Nodes
//
// Elements are handles created by [List.NewNode]. A node carries an opaque
// payload and belongs to the list that created it; it is either queued or
// not, reported by [Node.InList]. Re-keying is expressed as Remove followed
// by Insert.
//
// # Ordering
//
// The caller supplies a comparator over payloads. Ties are broken by node
// identity (creation order), so ordering is total and stable: for every
// level the chain is a strictly increasing subsequence of the level-0
// chain, and level 0 is fully sorted.
//
// # Concurrency
//
// A List is not safe for concurrent use. The scheduler serializes all
// access under its per-category mutex; callers embedding a List elsewhere
// must do their own locking.
package skiplist
