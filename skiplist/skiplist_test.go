package skiplist

import (
	"math/rand/v2"
	"testing"
)

func intList() *List[int] {
	return New(func(a, b int) int { return a - b })
}

// checkInvariants walks every level and verifies that each chain is
// strictly increasing (comparator, then identity) and a subsequence of
// the level-0 chain, and that the level-0 length matches Len.
func checkInvariants(t *testing.T, l *List[int]) {
	t.Helper()

	// Level 0 is fully sorted and has Len elements.
	count := 0
	for x := l.head.forward[0]; x != nil; x = x.forward[0] {
		count++
		if next := x.forward[0]; next != nil && !l.less(x, next) {
			t.Fatalf("level 0 out of order: %d !< %d", x.item, next.item)
		}
	}
	if count != l.Len() {
		t.Fatalf("level 0 has %d nodes, Len() = %d", count, l.Len())
	}

	// Index of every node in the level-0 chain.
	pos := make(map[*Node[int]]int, count)
	i := 0
	for x := l.head.forward[0]; x != nil; x = x.forward[0] {
		pos[x] = i
		i++
	}

	for lvl := 1; lvl < l.level; lvl++ {
		prev := -1
		for x := l.head.forward[lvl]; x != nil; x = x.forward[lvl] {
			p, ok := pos[x]
			if !ok {
				t.Fatalf("level %d contains node %d missing from level 0", lvl, x.item)
			}
			if p <= prev {
				t.Fatalf("level %d is not an increasing subsequence of level 0", lvl)
			}
			prev = p
			if x.levels <= lvl {
				t.Fatalf("node %d linked at level %d but occupies only %d levels", x.item, lvl, x.levels)
			}
		}
	}

	if l.level > 0 && l.head.forward[l.level-1] == nil {
		t.Fatalf("top level %d is empty, should have been trimmed", l.level)
	}
}

// ---------------------------------------------------------------------------
// Basics
// ---------------------------------------------------------------------------

func TestList_Empty(t *testing.T) {
	l := intList()
	if l.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", l.Len())
	}
	if l.Front() != nil {
		t.Fatal("Front() on empty list should be nil")
	}
	if l.PopFront() != nil {
		t.Fatal("PopFront() on empty list should be nil")
	}
}

func TestInsert_Ordering(t *testing.T) {
	l := intList()
	for _, v := range []int{5, 1, 4, 2, 3} {
		if !l.Insert(l.NewNode(v)) {
			t.Fatalf("Insert(%d) failed", v)
		}
		checkInvariants(t, l)
	}

	for want := 1; want <= 5; want++ {
		n := l.PopFront()
		if n == nil || n.Item() != want {
			t.Fatalf("PopFront() = %v, want %d", n, want)
		}
		if n.InList() {
			t.Fatal("popped node still reports InList")
		}
		checkInvariants(t, l)
	}
}

func TestInsert_AlreadyQueued(t *testing.T) {
	l := intList()
	n := l.NewNode(1)
	if !l.Insert(n) {
		t.Fatal("first Insert failed")
	}
	if l.Insert(n) {
		t.Fatal("second Insert of the same node should report false")
	}
	if l.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", l.Len())
	}
}

func TestInsert_ForeignNode(t *testing.T) {
	a := intList()
	b := intList()
	n := a.NewNode(1)
	if b.Insert(n) {
		t.Fatal("Insert should reject a node owned by another list")
	}
}

func TestContains(t *testing.T) {
	l := intList()
	n := l.NewNode(7)
	if l.Contains(n) {
		t.Fatal("unqueued node reported as contained")
	}
	l.Insert(n)
	if !l.Contains(n) {
		t.Fatal("queued node not reported as contained")
	}
	l.Remove(n)
	if l.Contains(n) {
		t.Fatal("removed node reported as contained")
	}
}

// ---------------------------------------------------------------------------
// Ties and stability
// ---------------------------------------------------------------------------

func TestInsert_EqualKeysBreakTiesByIdentity(t *testing.T) {
	l := intList()
	first := l.NewNode(42)
	second := l.NewNode(42)
	// Insert in reverse creation order; pop order must follow identity.
	l.Insert(second)
	l.Insert(first)
	checkInvariants(t, l)

	if got := l.PopFront(); got != first {
		t.Fatal("tie should be won by the earlier-created node")
	}
	if got := l.PopFront(); got != second {
		t.Fatal("second pop should return the later-created node")
	}
}

// ---------------------------------------------------------------------------
// Removal
// ---------------------------------------------------------------------------

func TestRemove_Arbitrary(t *testing.T) {
	l := intList()
	nodes := make([]*Node[int], 0, 10)
	for v := 0; v < 10; v++ {
		n := l.NewNode(v)
		l.Insert(n)
		nodes = append(nodes, n)
	}

	// Remove from the middle, the front, and the back.
	for _, i := range []int{5, 0, 9, 3} {
		if !l.Remove(nodes[i]) {
			t.Fatalf("Remove(%d) failed", i)
		}
		checkInvariants(t, l)
	}
	if l.Len() != 6 {
		t.Fatalf("Len() = %d, want 6", l.Len())
	}

	if l.Remove(nodes[5]) {
		t.Fatal("Remove of an unqueued node should report false")
	}
}

// snapshotChains records the forward chain at every level, by payload.
func snapshotChains(l *List[int]) [][]*Node[int] {
	chains := make([][]*Node[int], MaxLevel)
	for lvl := 0; lvl < MaxLevel; lvl++ {
		for x := l.head.forward[lvl]; x != nil; x = x.forward[lvl] {
			chains[lvl] = append(chains[lvl], x)
		}
	}
	return chains
}

func TestInsertThenRemove_RestoresStructure(t *testing.T) {
	l := intList()
	for v := 0; v < 64; v += 2 {
		l.Insert(l.NewNode(v))
	}
	before := snapshotChains(l)
	levelBefore := l.level

	n := l.NewNode(33)
	l.Insert(n)
	l.Remove(n)

	after := snapshotChains(l)
	if l.level != levelBefore {
		t.Fatalf("list level changed: %d -> %d", levelBefore, l.level)
	}
	for lvl := range before {
		if len(before[lvl]) != len(after[lvl]) {
			t.Fatalf("level %d length changed: %d -> %d", lvl, len(before[lvl]), len(after[lvl]))
		}
		for i := range before[lvl] {
			if before[lvl][i] != after[lvl][i] {
				t.Fatalf("level %d node %d changed", lvl, i)
			}
		}
	}
}

// ---------------------------------------------------------------------------
// Randomized soak
// ---------------------------------------------------------------------------

func TestRandomOps_InvariantsHold(t *testing.T) {
	l := intList()
	live := make([]*Node[int], 0, 256)

	for i := 0; i < 4000; i++ {
		switch {
		case len(live) == 0 || rand.IntN(3) != 0:
			n := l.NewNode(rand.IntN(1000))
			l.Insert(n)
			live = append(live, n)
		case rand.IntN(2) == 0:
			j := rand.IntN(len(live))
			l.Remove(live[j])
			live = append(live[:j], live[j+1:]...)
		default:
			n := l.PopFront()
			for j, x := range live {
				if x == n {
					live = append(live[:j], live[j+1:]...)
					break
				}
			}
		}
		if i%97 == 0 {
			checkInvariants(t, l)
		}
	}
	checkInvariants(t, l)
}

func TestPopFront_NonDecreasing(t *testing.T) {
	l := intList()
	for i := 0; i < 500; i++ {
		l.Insert(l.NewNode(rand.IntN(100)))
	}

	prev := -1
	for {
		n := l.PopFront()
		if n == nil {
			break
		}
		if n.Item() < prev {
			t.Fatalf("PopFront went backwards: %d after %d", n.Item(), prev)
		}
		prev = n.Item()
	}
	if l.Len() != 0 {
		t.Fatalf("Len() = %d after draining, want 0", l.Len())
	}
}

func TestRandomLevels_Capped(t *testing.T) {
	l := intList()
	// An empty list must only ever draw level 1.
	for i := 0; i < 100; i++ {
		if got := l.randomLevels(); got != 1 {
			t.Fatalf("randomLevels() on empty list = %d, want 1", got)
		}
	}

	for i := 0; i < 1000; i++ {
		l.Insert(l.NewNode(i))
		if got := l.randomLevels(); got > l.level+1 || got > MaxLevel {
			t.Fatalf("randomLevels() = %d exceeds cap (level %d)", got, l.level)
		}
	}
}
