package tree

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/benz9527/xavl/lib/infra"
)

var (
	_ AVLTree[int] = (*avlTree[int])(nil)
)

// Locking discipline: the tree lock is always taken before any cursor
// lock, never the reverse.
type avlTree[T any] struct {
	lock                     sync.Mutex
	arena                    *nodeArena[T]
	less                     infra.LessFunc[T]
	equal                    infra.EqualFunc[T]
	cloner                   func(T) T
	disposer                 func(T)
	cursors                  map[uint64]*avlCursor[T]
	defaultCursor            *avlCursor[T]
	logger                   *zap.Logger
	stats                    *avlStats
	name                     string
	opts                     []AVLTreeOpt[T]
	count                    int64
	nextCursorID             uint64
	root                     nodeIdx
	isStatsEnabled           bool
	isInvariantChecksEnabled bool
}

func (tree *avlTree[T]) node(idx nodeIdx) *avlNode[T] {
	return tree.arena.at(idx)
}

func (tree *avlTree[T]) minimum(x nodeIdx) nodeIdx {
	if x == nilIdx {
		return nilIdx
	}
	for l := tree.node(x).left; l != nilIdx; l = tree.node(x).left {
		x = l
	}
	return x
}

func (tree *avlTree[T]) maximum(x nodeIdx) nodeIdx {
	if x == nilIdx {
		return nilIdx
	}
	for r := tree.node(x).right; r != nilIdx; r = tree.node(x).right {
		x = r
	}
	return x
}

// succ is the next node in sorted order. Without a right subtree it
// climbs until it leaves a left child, so no extra state is needed.
func (tree *avlTree[T]) succ(x nodeIdx) nodeIdx {
	if x == nilIdx {
		return nilIdx
	}
	if r := tree.node(x).right; r != nilIdx {
		return tree.minimum(r)
	}
	p := tree.node(x).parent
	for p != nilIdx && x == tree.node(p).right {
		x, p = p, tree.node(p).parent
	}
	return p
}

// pred is the previous node in sorted order.
func (tree *avlTree[T]) pred(x nodeIdx) nodeIdx {
	if x == nilIdx {
		return nilIdx
	}
	if l := tree.node(x).left; l != nilIdx {
		return tree.maximum(l)
	}
	p := tree.node(x).parent
	for p != nilIdx && x == tree.node(p).left {
		x, p = p, tree.node(p).parent
	}
	return p
}

func (tree *avlTree[T]) direction(x nodeIdx) AVLDirection {
	p := tree.node(x).parent
	if p == nilIdx {
		return Root
	}
	if tree.node(p).left == x {
		return Left
	}
	return Right
}

func (tree *avlTree[T]) Len() int64 {
	return atomic.LoadInt64(&tree.count)
}

func (tree *avlTree[T]) IsEmpty() bool {
	return tree.Len() == 0
}

// Height is the edge count of the longest root-to-leaf path.
// Both the empty tree and a single node tree have height 0.
func (tree *avlTree[T]) Height() int {
	tree.lock.Lock()
	defer tree.lock.Unlock()
	if tree.root == nilIdx {
		return 0
	}
	return tree.heightOf(tree.root)
}

// heightOf follows the balance factors down the taller side, so it costs
// O(log n) instead of a full traversal.
func (tree *avlTree[T]) heightOf(x nodeIdx) int {
	h := -1
	for x != nilIdx {
		h++
		xn := tree.node(x)
		if xn.balance < 0 {
			x = xn.left
		} else if xn.balance > 0 {
			x = xn.right
		} else if xn.left != nilIdx {
			x = xn.left
		} else {
			x = xn.right
		}
	}
	return h
}

func (tree *avlTree[T]) Put(val T) {
	tree.lock.Lock()
	defer tree.lock.Unlock()
	tree.verify("Put")
	tree.put(val)
	tree.verify("Put")
}

func (tree *avlTree[T]) PutAll(vals ...T) {
	tree.lock.Lock()
	defer tree.lock.Unlock()
	tree.verify("PutAll")
	for _, val := range vals {
		tree.put(val)
	}
	tree.verify("PutAll")
}

// put places equal values after the existing ones, so they come out in
// insertion order.
func (tree *avlTree[T]) put(val T) {
	if tree.root == nilIdx {
		tree.root = tree.arena.allocate(val, nilIdx)
		atomic.AddInt64(&tree.count, 1)
		tree.stats.IncreasePutCount()
		return
	}

	var (
		x, y  = tree.root, nilIdx
		delta int8
	)
	for x != nilIdx {
		y = x
		if tree.less(val, tree.node(x).value) {
			x, delta = tree.node(x).left, -1
		} else {
			x, delta = tree.node(x).right, 1
		}
	}

	z := tree.arena.allocate(val, y)
	if delta < 0 {
		tree.node(y).left = z
	} else {
		tree.node(y).right = z
	}
	atomic.AddInt64(&tree.count, 1)
	tree.stats.IncreasePutCount()
	tree.insertRebalance(y, delta)
}

// find descends by the order and stops at the first equal node. If the
// equality predicate is looser than the order it falls back to a scan.
func (tree *avlTree[T]) find(val T) nodeIdx {
	for x := tree.root; x != nilIdx; {
		xn := tree.node(x)
		if tree.equal(xn.value, val) {
			return x
		}
		if tree.less(val, xn.value) {
			x = xn.left
		} else {
			x = xn.right
		}
	}
	found := nilIdx
	tree.inorder(func(_ int64, x nodeIdx) bool {
		if tree.equal(tree.node(x).value, val) {
			found = x
			return false
		}
		return true
	})
	return found
}

// ceiling lands on a node equal to val if the descent meets one, otherwise
// on the smallest node strictly greater than val.
func (tree *avlTree[T]) ceiling(val T) nodeIdx {
	candidate := nilIdx
	for x := tree.root; x != nilIdx; {
		xn := tree.node(x)
		if tree.equal(xn.value, val) {
			return x
		}
		if tree.less(val, xn.value) {
			candidate = x
			x = xn.left
		} else {
			x = xn.right
		}
	}
	return candidate
}

// nodeAt walks index steps from the smallest node.
func (tree *avlTree[T]) nodeAt(index int64) nodeIdx {
	x := tree.minimum(tree.root)
	for i := int64(0); i < index && x != nilIdx; i++ {
		x = tree.succ(x)
	}
	return x
}

func (tree *avlTree[T]) checkIndex(op string, index int64) {
	if n := atomic.LoadInt64(&tree.count); index < 0 || index >= n {
		tree.violate(op, ErrAVLIndexOutOfRange, "index %d not in [0, %d)", index, n)
	}
}

func (tree *avlTree[T]) Item(index int64) T {
	tree.lock.Lock()
	defer tree.lock.Unlock()
	tree.checkIndex("Item", index)
	return tree.node(tree.nodeAt(index)).value
}

func (tree *avlTree[T]) pickEqual(equal []func(a, b T) bool) func(a, b T) bool {
	if len(equal) > 0 && equal[0] != nil {
		return equal[0]
	}
	return tree.equal
}

// Has scans the whole tree, the equality override may disagree with the order.
func (tree *avlTree[T]) Has(val T, equal ...func(a, b T) bool) bool {
	eq := tree.pickEqual(equal)
	tree.lock.Lock()
	defer tree.lock.Unlock()
	found := false
	tree.inorder(func(_ int64, x nodeIdx) bool {
		found = eq(tree.node(x).value, val)
		return !found
	})
	return found
}

func (tree *avlTree[T]) Occurrences(val T, equal ...func(a, b T) bool) int64 {
	eq := tree.pickEqual(equal)
	tree.lock.Lock()
	defer tree.lock.Unlock()
	n := int64(0)
	tree.inorder(func(_ int64, x nodeIdx) bool {
		if eq(tree.node(x).value, val) {
			n++
		}
		return true
	})
	return n
}

func (tree *avlTree[T]) RemoveAt(index int64) {
	tree.lock.Lock()
	defer tree.lock.Unlock()
	tree.checkIndex("RemoveAt", index)
	tree.verify("RemoveAt")
	tree.removeNode(tree.nodeAt(index), nil)
	tree.verify("RemoveAt")
}

func (tree *avlTree[T]) RemoveValue(val T) {
	tree.lock.Lock()
	defer tree.lock.Unlock()
	z := tree.find(val)
	if z == nilIdx {
		tree.violate("RemoveValue", ErrAVLValueNotFound, "remove absent value %v", val)
	}
	tree.verify("RemoveValue")
	tree.removeNode(z, nil)
	tree.verify("RemoveValue")
}

// notifyRemoval moves every cursor sitting on z to z's successor before z
// is unlinked. held is the cursor whose lock the caller already owns.
func (tree *avlTree[T]) notifyRemoval(z nodeIdx, held *avlCursor[T]) {
	s := tree.succ(z)
	tree.forEachCursor(held, func(c *avlCursor[T]) {
		if c.pos == z {
			c.moveTo(s)
		}
	})
}

// retargetCursors moves cursors from a slot that is about to be freed to
// the slot that received its content.
func (tree *avlTree[T]) retargetCursors(from, to nodeIdx, held *avlCursor[T]) {
	tree.forEachCursor(held, func(c *avlCursor[T]) {
		if c.pos == from {
			c.moveTo(to)
		}
	})
}

func (tree *avlTree[T]) forEachCursor(held *avlCursor[T], fn func(c *avlCursor[T])) {
	for _, c := range tree.cursors {
		if c != held {
			c.lock.Lock()
		}
		fn(c)
		if c != held {
			c.lock.Unlock()
		}
	}
}

/*
r1: Z has no child, unlink it. The parent's side shrank.

r2: Z has one child C (a leaf by the balance bound). Copy C into Z's slot,
so Z's identity is kept, and free C. Z's slot shrank.

	  |            |
	  Z            C'
	   \   ====>
	    C

r3: Z has two children and its successor S is Z's right child.
S takes Z's left subtree and balance. S's right side shrank.

	  |              |
	  Z              S
	 / \   ====>    / \
	L   S          L   Sr
	     \
	      Sr

r4: Z has two children and its successor S is deeper. Detach S from
its parent P (P.left = S.right), then S takes Z's place. P's left side shrank.

	  |                |
	  Z                S
	 / \              / \
	L   R   ====>    L   R
	   /                /
	  P                P
	 /                /
	S                Sr
	 \
	  Sr
*/
func (tree *avlTree[T]) removeNode(z nodeIdx, held *avlCursor[T]) T {
	tree.notifyRemoval(z, held)

	zn := tree.node(z)
	val := zn.value
	switch {
	case /* r1 */ zn.left == nilIdx && zn.right == nilIdx:
		p := zn.parent
		if p == nilIdx {
			tree.root = nilIdx
			tree.arena.recycle(z)
			break
		}
		delta := -tree.sideDelta(z)
		tree.replaceChild(p, z, nilIdx)
		tree.arena.recycle(z)
		tree.removeRebalance(p, delta)
	case /* r2 */ zn.left == nilIdx || zn.right == nilIdx:
		c := zn.left
		if c == nilIdx {
			c = zn.right
		}
		cn := tree.node(c)
		zn.value, zn.balance, zn.left, zn.right = cn.value, cn.balance, cn.left, cn.right
		tree.setParent(zn.left, z)
		tree.setParent(zn.right, z)
		tree.retargetCursors(c, z, held)
		tree.arena.recycle(c)
		tree.removeRebalance(z, 0)
	default:
		s := tree.minimum(zn.right)
		sn := tree.node(s)
		if /* r3 */ s == zn.right {
			sn.left = zn.left
			tree.setParent(sn.left, s)
			sn.balance = zn.balance
			tree.replaceChild(zn.parent, z, s)
			tree.arena.recycle(z)
			tree.removeRebalance(s, -1)
			break
		}
		/* r4 */
		p := sn.parent
		tree.node(p).left = sn.right
		tree.setParent(sn.right, p)
		sn.left, sn.right, sn.balance = zn.left, zn.right, zn.balance
		tree.setParent(sn.left, s)
		tree.setParent(sn.right, s)
		tree.replaceChild(zn.parent, z, s)
		tree.arena.recycle(z)
		tree.removeRebalance(p, 1)
	}

	atomic.AddInt64(&tree.count, -1)
	tree.stats.IncreaseRemoveCount()
	return val
}

// inorder is the stack based DFS used by full traversals.
func (tree *avlTree[T]) inorder(action func(idx int64, x nodeIdx) bool) {
	size := atomic.LoadInt64(&tree.count)
	aux := tree.root
	if size <= 0 || aux == nilIdx {
		return
	}

	stack := make([]nodeIdx, 0, tree.heightOf(aux)+1)
	defer func() {
		clear(stack)
	}()

	for ; aux != nilIdx; aux = tree.node(aux).left {
		stack = append(stack, aux)
	}

	idx := int64(0)
	for l := len(stack); l > 0; l = len(stack) {
		aux = stack[l-1]
		stack = stack[:l-1]
		if !action(idx, aux) {
			return
		}
		idx++
		for aux = tree.node(aux).right; aux != nilIdx; aux = tree.node(aux).left {
			stack = append(stack, aux)
		}
	}
}

// Foreach visits values in ascending order. The action must not call
// back into the tree.
func (tree *avlTree[T]) Foreach(action func(idx int64, val T) bool) {
	tree.lock.Lock()
	defer tree.lock.Unlock()
	tree.inorder(func(idx int64, x nodeIdx) bool {
		return action(idx, tree.node(x).value)
	})
}

// ReverseForeach visits values in descending order, idx counts from 0.
func (tree *avlTree[T]) ReverseForeach(action func(idx int64, val T) bool) {
	tree.lock.Lock()
	defer tree.lock.Unlock()
	idx := int64(0)
	for x := tree.maximum(tree.root); x != nilIdx; x = tree.pred(x) {
		if !action(idx, tree.node(x).value) {
			return
		}
		idx++
	}
}

func (tree *avlTree[T]) asArray() []T {
	arr := make([]T, 0, atomic.LoadInt64(&tree.count))
	tree.inorder(func(_ int64, x nodeIdx) bool {
		arr = append(arr, tree.node(x).value)
		return true
	})
	return arr
}

func (tree *avlTree[T]) AsArray() []T {
	tree.lock.Lock()
	defer tree.lock.Unlock()
	return tree.asArray()
}

func (tree *avlTree[T]) Cursor() AVLCursor[T] {
	return tree.defaultCursor
}

func (tree *avlTree[T]) NewCursor() AVLCursor[T] {
	tree.lock.Lock()
	defer tree.lock.Unlock()
	return tree.newCursor(false)
}

func (tree *avlTree[T]) newCursor(isDefault bool) *avlCursor[T] {
	tree.nextCursorID++
	c := &avlCursor[T]{
		tree:      tree,
		id:        tree.nextCursorID,
		isDefault: isDefault,
	}
	tree.cursors[c.id] = c
	tree.stats.RecordCursorCount(1)
	return c
}

// Release wipes the tree and closes every cursor but the default one.
func (tree *avlTree[T]) Release() {
	tree.lock.Lock()
	defer tree.lock.Unlock()
	tree.wipeOut()
	for id, c := range tree.cursors {
		if c.isDefault {
			continue
		}
		c.lock.Lock()
		c.closed = true
		c.lock.Unlock()
		delete(tree.cursors, id)
		tree.stats.RecordCursorCount(-1)
	}
}

func (tree *avlTree[T]) verify(op string) {
	if !tree.isInvariantChecksEnabled {
		return
	}
	if err := tree.validate(); err != nil {
		tree.violate(op, ErrAVLCorrupted, "%v", err)
	}
}

func NewAVLTree[T any](less infra.LessFunc[T], equal infra.EqualFunc[T], opts ...AVLTreeOpt[T]) AVLTree[T] {
	return newAVLTree[T](less, equal, opts...)
}

// NewAVLTreeFrom puts the values in sequence order.
func NewAVLTreeFrom[T any](less infra.LessFunc[T], equal infra.EqualFunc[T], vals []T, opts ...AVLTreeOpt[T]) AVLTree[T] {
	tree := newAVLTree[T](less, equal, opts...)
	tree.PutAll(vals...)
	return tree
}

// NewOrderedAVLTree orders values by their natural order.
func NewOrderedAVLTree[T infra.OrderedKey](opts ...AVLTreeOpt[T]) AVLTree[T] {
	return newAVLTree[T](infra.OrderedLess[T], infra.OrderedEqual[T], opts...)
}

func newAVLTree[T any](less infra.LessFunc[T], equal infra.EqualFunc[T], opts ...AVLTreeOpt[T]) *avlTree[T] {
	tree := &avlTree[T]{
		less:                     less,
		equal:                    equal,
		cursors:                  make(map[uint64]*avlCursor[T], 4),
		logger:                   zap.NewNop(),
		opts:                     opts,
		isInvariantChecksEnabled: defaultInvariantChecks,
	}
	for _, o := range opts {
		o(tree)
	}
	if tree.less == nil || tree.equal == nil {
		tree.violate("NewAVLTree", ErrAVLMissingComparator, "less and equal are both required")
	}
	if tree.arena == nil {
		tree.arena = newNodeArena[T](0)
	}
	if tree.isStatsEnabled {
		tree.stats = newAVLStats(tree.name)
	}
	tree.defaultCursor = tree.newCursor(true)
	return tree
}
