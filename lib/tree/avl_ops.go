package tree

import (
	"reflect"
	"sync/atomic"
)

// Whole tree operations never hold two tree locks at once. The source is
// snapshotted under its own lock first, so copying a tree into itself works.

func (tree *avlTree[T]) other(op string, t AVLTree[T]) *avlTree[T] {
	o, ok := t.(*avlTree[T])
	if !ok || o == nil {
		tree.violate(op, ErrAVLForeignTree, "got %T", t)
	}
	return o
}

func (tree *avlTree[T]) snapshot() []T {
	tree.lock.Lock()
	defer tree.lock.Unlock()
	return tree.asArray()
}

func (tree *avlTree[T]) deepCloneAll(op string, vals []T) []T {
	if tree.cloner == nil {
		tree.violate(op, ErrAVLMissingCloner, "no cloner configured")
	}
	for i := range vals {
		vals[i] = tree.cloner(vals[i])
	}
	return vals
}

// rebuild replaces the content with vals.
func (tree *avlTree[T]) rebuild(op string, vals []T) {
	tree.verify(op)
	tree.wipeOut()
	for _, v := range vals {
		tree.put(v)
	}
	tree.verify(op)
}

func (tree *avlTree[T]) ShallowCopyFrom(src AVLTree[T]) {
	vals := tree.other("ShallowCopyFrom", src).snapshot()
	tree.lock.Lock()
	defer tree.lock.Unlock()
	tree.rebuild("ShallowCopyFrom", vals)
}

func (tree *avlTree[T]) DeepCopyFrom(src AVLTree[T]) {
	vals := tree.deepCloneAll("DeepCopyFrom", tree.other("DeepCopyFrom", src).snapshot())
	tree.lock.Lock()
	defer tree.lock.Unlock()
	tree.rebuild("DeepCopyFrom", vals)
}

func (tree *avlTree[T]) clone(vals []T) *avlTree[T] {
	c := newAVLTree[T](tree.less, tree.equal, tree.opts...)
	c.lock.Lock()
	defer c.lock.Unlock()
	for _, v := range vals {
		c.put(v)
	}
	return c
}

// ShallowClone builds a new tree with the same options and the same values.
func (tree *avlTree[T]) ShallowClone() AVLTree[T] {
	return tree.clone(tree.snapshot())
}

func (tree *avlTree[T]) DeepClone() AVLTree[T] {
	return tree.clone(tree.deepCloneAll("DeepClone", tree.snapshot()))
}

// shallowEqual compares the stored values with ==, which is identity for
// pointers. Comparability is decided on the values themselves, so an
// interface field holding a slice falls back to the equality function.
func (tree *avlTree[T]) shallowEqual(a, b T) bool {
	va, vb := reflect.ValueOf(any(a)), reflect.ValueOf(any(b))
	if !va.IsValid() || !vb.IsValid() {
		if va.IsValid() == vb.IsValid() {
			return true
		}
		return tree.equal(a, b)
	}
	if va.Type() == vb.Type() && va.Comparable() && vb.Comparable() {
		return va.Equal(vb)
	}
	return tree.equal(a, b)
}

func (tree *avlTree[T]) sequenceEqual(op string, other AVLTree[T], eq func(a, b T) bool) bool {
	o := tree.other(op, other)
	if o == tree {
		return true
	}
	lhs, rhs := tree.snapshot(), o.snapshot()
	if len(lhs) != len(rhs) {
		return false
	}
	for i := range lhs {
		if !eq(lhs[i], rhs[i]) {
			return false
		}
	}
	return true
}

func (tree *avlTree[T]) ShallowEqual(other AVLTree[T]) bool {
	return tree.sequenceEqual("ShallowEqual", other, tree.shallowEqual)
}

func (tree *avlTree[T]) DeepEqual(other AVLTree[T]) bool {
	return tree.sequenceEqual("DeepEqual", other, tree.equal)
}

// wipeOut turns every cursor off before the nodes go away.
func (tree *avlTree[T]) wipeOut() {
	for _, c := range tree.cursors {
		c.lock.Lock()
		c.moveTo(nilIdx)
		c.lock.Unlock()
	}
	n := atomic.SwapInt64(&tree.count, 0)
	tree.stats.RecordNodeCount(-n)
	tree.root = nilIdx
	tree.arena.reset()
}

func (tree *avlTree[T]) WipeOut() {
	tree.lock.Lock()
	defer tree.lock.Unlock()
	tree.wipeOut()
}

// WipeOutAndDispose wipes the tree and then hands every former value, in
// ascending order, to the disposer if one is set. The disposer runs after
// the tree lock is released and sees an empty tree.
func (tree *avlTree[T]) WipeOutAndDispose() {
	tree.lock.Lock()
	var vals []T
	if tree.disposer != nil {
		vals = tree.asArray()
	}
	tree.wipeOut()
	tree.lock.Unlock()

	for _, v := range vals {
		tree.disposer(v)
	}
}
