package tree

import (
	"sync"
)

var (
	_ AVLCursor[int] = (*avlCursor[int])(nil)
)

// avlCursor keeps (pos, gen) instead of a node reference, so a recycled
// slot is detected rather than silently followed.
type avlCursor[T any] struct {
	lock      sync.Mutex
	tree      *avlTree[T]
	id        uint64
	gen       uint32
	pos       nodeIdx
	closed    bool
	isDefault bool
}

// moveTo must be called with both the tree lock and the cursor lock held.
func (c *avlCursor[T]) moveTo(idx nodeIdx) {
	c.pos = idx
	if idx == nilIdx {
		c.gen = 0
		return
	}
	c.gen = c.tree.node(idx).gen
}

// acquire takes the tree lock, then the cursor lock.
func (c *avlCursor[T]) acquire(op string) *avlTree[T] {
	tree := c.tree
	tree.lock.Lock()
	c.lock.Lock()
	if c.closed {
		c.lock.Unlock()
		tree.lock.Unlock()
		tree.violate(op, ErrAVLCursorClosed, "cursor %d", c.id)
	}
	return tree
}

func (c *avlCursor[T]) release() {
	c.lock.Unlock()
	c.tree.lock.Unlock()
}

// current validates the position against the arena generation.
func (c *avlCursor[T]) current(op string) nodeIdx {
	if c.pos == nilIdx {
		return nilIdx
	}
	if !c.tree.arena.live(c.pos, c.gen) {
		c.tree.violate(op, ErrAVLCursorStale, "cursor %d at slot %d gen %d", c.id, c.pos, c.gen)
	}
	return c.pos
}

func (c *avlCursor[T]) Start() {
	tree := c.acquire("Start")
	defer c.release()
	c.moveTo(tree.minimum(tree.root))
}

func (c *avlCursor[T]) Finish() {
	tree := c.acquire("Finish")
	defer c.release()
	c.moveTo(tree.maximum(tree.root))
}

func (c *avlCursor[T]) Forth() {
	tree := c.acquire("Forth")
	defer c.release()
	if x := c.current("Forth"); x != nilIdx {
		c.moveTo(tree.succ(x))
	}
}

func (c *avlCursor[T]) Back() {
	tree := c.acquire("Back")
	defer c.release()
	if x := c.current("Back"); x != nilIdx {
		c.moveTo(tree.pred(x))
	}
}

func (c *avlCursor[T]) Off() bool {
	c.acquire("Off")
	defer c.release()
	return c.current("Off") == nilIdx
}

func (c *avlCursor[T]) IsFirst() bool {
	tree := c.acquire("IsFirst")
	defer c.release()
	x := c.current("IsFirst")
	return x != nilIdx && x == tree.minimum(tree.root)
}

func (c *avlCursor[T]) IsLast() bool {
	tree := c.acquire("IsLast")
	defer c.release()
	x := c.current("IsLast")
	return x != nilIdx && x == tree.maximum(tree.root)
}

func (c *avlCursor[T]) Item() T {
	tree := c.acquire("Item")
	defer c.release()
	x := c.current("Item")
	if x == nilIdx {
		tree.violate("Item", ErrAVLCursorOff, "cursor %d", c.id)
	}
	return tree.node(x).value
}

func (c *avlCursor[T]) Go(index int64) {
	tree := c.acquire("Go")
	defer c.release()
	tree.checkIndex("Go", index)
	c.moveTo(tree.nodeAt(index))
}

// Index counts the steps from the smallest node.
func (c *avlCursor[T]) Index() int64 {
	tree := c.acquire("Index")
	defer c.release()
	x := c.current("Index")
	if x == nilIdx {
		return -1
	}
	idx := int64(0)
	for aux := tree.minimum(tree.root); aux != nilIdx && aux != x; aux = tree.succ(aux) {
		idx++
	}
	return idx
}

func (c *avlCursor[T]) GoToValue(v T) {
	tree := c.acquire("GoToValue")
	defer c.release()
	c.moveTo(tree.ceiling(v))
}

func (c *avlCursor[T]) SearchForth(v T) {
	tree := c.acquire("SearchForth")
	defer c.release()
	x := c.current("SearchForth")
	for x != nilIdx && !tree.equal(tree.node(x).value, v) {
		x = tree.succ(x)
	}
	c.moveTo(x)
}

func (c *avlCursor[T]) SearchBack(v T) {
	tree := c.acquire("SearchBack")
	defer c.release()
	x := c.current("SearchBack")
	for x != nilIdx && !tree.equal(tree.node(x).value, v) {
		x = tree.pred(x)
	}
	c.moveTo(x)
}

func (c *avlCursor[T]) Remove() {
	tree := c.acquire("Remove")
	defer c.release()
	x := c.current("Remove")
	if x == nilIdx {
		tree.violate("Remove", ErrAVLCursorOff, "cursor %d", c.id)
	}
	tree.verify("Remove")
	tree.removeNode(x, c)
	tree.verify("Remove")
}

// Close is idempotent.
func (c *avlCursor[T]) Close() {
	tree := c.tree
	tree.lock.Lock()
	c.lock.Lock()
	defer c.release()
	if c.closed {
		return
	}
	if c.isDefault {
		tree.violate("Close", ErrAVLDefaultCursorClose, "cursor %d", c.id)
	}
	delete(tree.cursors, c.id)
	c.closed = true
	c.pos, c.gen = nilIdx, 0
	tree.stats.RecordCursorCount(-1)
}
