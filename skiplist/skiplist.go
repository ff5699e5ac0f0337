package skiplist

import "math/rand/v2"

// MaxLevel bounds the number of forward-pointer levels per node. A list
// stays efficient up to roughly 2^MaxLevel elements; beyond that the
// expected costs degrade gracefully rather than failing.
const MaxLevel = 16

// Comparator orders two payloads. It returns a negative value if a sorts
// before b, zero if they compare equal, and a positive value otherwise.
// Equal payloads are tie-broken by node identity.
type Comparator[T any] func(a, b T) int

// Node is a handle to one element of a List. A node is created by
// [List.NewNode], belongs to that list for its lifetime, and participates
// in a geometrically distributed number of levels while queued.
type Node[T any] struct {
	item    T
	owner   *List[T]
	seq     uint64
	forward [MaxLevel]*Node[T]
	// levels is the number of levels this node currently occupies.
	// Zero marks a node that is not queued.
	levels int
}

// Item returns the payload the node was created with.
func (n *Node[T]) Item() T { return n.item }

// InList reports whether the node is currently queued.
func (n *Node[T]) InList() bool { return n != nil && n.levels > 0 }

// List is a probabilistic skip list ordered by a caller comparator with
// node identity as tie-break. The zero value is not usable; create lists
// with [New].
type List[T any] struct {
	cmp     Comparator[T]
	head    Node[T]
	level   int
	length  int
	nextSeq uint64
	rng     *rand.Rand
}

// New creates an empty list ordered by cmp.
func New[T any](cmp Comparator[T]) *List[T] {
	if cmp == nil {
		panic("skiplist: nil comparator")
	}
	return &List[T]{
		cmp: cmp,
		rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
}

// NewNode creates an unqueued node owned by this list. The node's creation
// order doubles as the ordering tie-break.
func (l *List[T]) NewNode(item T) *Node[T] {
	l.nextSeq++
	return &Node[T]{item: item, owner: l, seq: l.nextSeq}
}

// Len returns the number of queued nodes.
func (l *List[T]) Len() int { return l.length }

// Contains reports whether n is queued in this list.
func (l *List[T]) Contains(n *Node[T]) bool {
	return n != nil && n.owner == l && n.levels > 0
}

// Front returns the minimum node without removing it, or nil if the list
// is empty.
func (l *List[T]) Front() *Node[T] {
	return l.head.forward[0]
}

// PopFront removes and returns the minimum node, or nil if the list is
// empty. The minimum is reachable from the head at every level it
// occupies, so unlinking follows the node's own forward pointers.
func (l *List[T]) PopFront() *Node[T] {
	n := l.head.forward[0]
	if n == nil {
		return nil
	}
	for i := 0; i < n.levels; i++ {
		l.head.forward[i] = n.forward[i]
		n.forward[i] = nil
	}
	n.levels = 0
	l.length--
	l.trim()
	return n
}

// Insert queues n at the position given by the comparator. Inserting a
// node that is already queued is a contract violation; the call reports
// false and leaves the list unchanged.
func (l *List[T]) Insert(n *Node[T]) bool {
	if n == nil || n.owner != l || n.levels > 0 {
		return false
	}

	var update [MaxLevel]*Node[T]
	x := &l.head
	for i := l.level - 1; i >= 0; i-- {
		for x.forward[i] != nil && l.less(x.forward[i], n) {
			x = x.forward[i]
		}
		update[i] = x
	}

	levels := l.randomLevels()
	if levels > l.level {
		for i := l.level; i < levels; i++ {
			update[i] = &l.head
		}
		l.level = levels
	}
	for i := 0; i < levels; i++ {
		n.forward[i] = update[i].forward[i]
		update[i].forward[i] = n
	}
	n.levels = levels
	l.length++
	return true
}

// Remove unlinks n from every level it participates in. Removing a node
// that is not queued reports false and leaves the list unchanged.
func (l *List[T]) Remove(n *Node[T]) bool {
	if n == nil || n.owner != l || n.levels == 0 {
		return false
	}

	x := &l.head
	for i := l.level - 1; i >= 0; i-- {
		for x.forward[i] != nil && x.forward[i] != n && !l.less(n, x.forward[i]) {
			x = x.forward[i]
		}
		if x.forward[i] == n {
			x.forward[i] = n.forward[i]
			n.forward[i] = nil
		}
	}
	n.levels = 0
	l.length--
	l.trim()
	return true
}

// less applies the comparator with node identity as tie-break.
func (l *List[T]) less(a, b *Node[T]) bool {
	if c := l.cmp(a.item, b.item); c != 0 {
		return c < 0
	}
	return a.seq < b.seq
}

// randomLevels draws from a geometric distribution: each extra level is
// half as likely, capped by MaxLevel and by one more than the highest
// level currently in use.
func (l *List[T]) randomLevels() int {
	limit := l.level + 1
	if limit > MaxLevel {
		limit = MaxLevel
	}
	levels := 1
	for levels < limit && l.rng.Uint64()&1 == 0 {
		levels++
	}
	return levels
}

// trim drops empty top levels after a removal.
func (l *List[T]) trim() {
	for l.level > 0 && l.head.forward[l.level-1] == nil {
		l.level--
	}
}
