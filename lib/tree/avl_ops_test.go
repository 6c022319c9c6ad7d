package tree

import (
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type box struct {
	v int
}

func newBoxTree(opts ...AVLTreeOpt[*box]) *avlTree[*box] {
	opts = append([]AVLTreeOpt[*box]{WithAVLInvariantChecks[*box]()}, opts...)
	return newAVLTree[*box](
		func(a, b *box) bool { return a.v < b.v },
		func(a, b *box) bool { return a.v == b.v },
		opts...,
	)
}

func cloneBox(b *box) *box {
	return &box{v: b.v}
}

func boxes(vals ...int) []*box {
	return lo.Map(vals, func(v int, _ int) *box { return &box{v: v} })
}

func TestAVLTree_ShallowCopyFrom(t *testing.T) {
	src := newIntTree()
	src.PutAll(3, 1, 2)
	dst := newIntTree()
	dst.Put(9)
	c := dst.NewCursor()
	c.Start()

	dst.ShallowCopyFrom(src)
	require.Equal(t, []int{1, 2, 3}, dst.AsArray())
	require.Equal(t, []int{1, 2, 3}, src.AsArray())
	require.True(t, c.Off())
	require.NoError(t, dst.Validate())

	dst.ShallowCopyFrom(dst)
	require.Equal(t, []int{1, 2, 3}, dst.AsArray())
}

func TestAVLTree_ShallowAndDeepClone(t *testing.T) {
	tree := newBoxTree(WithAVLValueCloner[*box](cloneBox))
	tree.PutAll(boxes(5, 1, 4, 2, 3)...)

	shallow := tree.ShallowClone()
	require.True(t, tree.ShallowEqual(shallow))
	require.True(t, tree.DeepEqual(shallow))

	deep := tree.DeepClone()
	require.True(t, tree.DeepEqual(deep))
	require.False(t, tree.ShallowEqual(deep))

	// clones are independent
	deep.RemoveAt(0)
	require.Equal(t, int64(5), tree.Len())
	require.False(t, tree.DeepEqual(deep))
	require.True(t, deep.(*avlTree[*box]).isInvariantChecksEnabled)
}

func TestAVLTree_DeepCopyFrom(t *testing.T) {
	src := newBoxTree()
	src.PutAll(boxes(2, 1)...)
	dst := newBoxTree(WithAVLValueCloner[*box](cloneBox))
	dst.DeepCopyFrom(src)
	require.True(t, dst.DeepEqual(src))
	require.False(t, dst.ShallowEqual(src))

	// mutating the source values does not reach the copies
	src.Item(1).v = 100
	require.Equal(t, 2, dst.Item(1).v)

	dst.ShallowCopyFrom(src)
	require.True(t, dst.ShallowEqual(src))
}

func TestAVLTree_DeepOpsRequireCloner(t *testing.T) {
	tree := newBoxTree()
	tree.PutAll(boxes(1, 2)...)
	requireViolation(t, ErrAVLMissingCloner, func() {
		tree.DeepClone()
	})
	dst := newBoxTree()
	dst.Put(&box{v: 7})
	requireViolation(t, ErrAVLMissingCloner, func() {
		dst.DeepCopyFrom(tree)
	})
	require.Equal(t, 7, dst.Item(0).v)
}

func TestAVLTree_Equality(t *testing.T) {
	lhs, rhs := newIntTree(), newIntTree()
	require.True(t, lhs.ShallowEqual(rhs))
	require.True(t, lhs.DeepEqual(rhs))

	lhs.PutAll(1, 2, 3)
	rhs.PutAll(3, 2)
	require.False(t, lhs.ShallowEqual(rhs))
	require.False(t, lhs.DeepEqual(rhs))

	rhs.Put(1)
	require.True(t, lhs.ShallowEqual(rhs))
	require.True(t, lhs.DeepEqual(rhs))
	require.True(t, lhs.DeepEqual(lhs))

	rhs.RemoveValue(3)
	rhs.Put(4)
	require.False(t, lhs.DeepEqual(rhs))
}

func TestAVLTree_ShallowEqualNonComparable(t *testing.T) {
	newSliceTree := func() AVLTree[[]int] {
		return NewAVLTree[[]int](
			func(a, b []int) bool { return len(a) < len(b) },
			func(a, b []int) bool { return assert.ObjectsAreEqual(a, b) },
		)
	}
	lhs, rhs := newSliceTree(), newSliceTree()
	lhs.PutAll([]int{1}, []int{1, 2})
	rhs.PutAll([]int{1, 2}, []int{1})
	require.True(t, lhs.ShallowEqual(rhs))
	rhs.RemoveAt(0)
	rhs.Put([]int{2})
	require.False(t, lhs.ShallowEqual(rhs))
}

type tagged struct {
	key     int
	payload any
}

func TestAVLTree_ShallowEqualDynamicPayload(t *testing.T) {
	newTaggedTree := func() AVLTree[tagged] {
		return NewAVLTree[tagged](
			func(a, b tagged) bool { return a.key < b.key },
			func(a, b tagged) bool { return a.key == b.key && assert.ObjectsAreEqual(a.payload, b.payload) },
		)
	}
	lhs, rhs := newTaggedTree(), newTaggedTree()
	lhs.PutAll(tagged{key: 1, payload: []int{1}}, tagged{key: 2, payload: "x"})
	rhs.PutAll(tagged{key: 2, payload: "x"}, tagged{key: 1, payload: []int{1}})
	require.NotPanics(t, func() {
		require.True(t, lhs.ShallowEqual(rhs))
	})

	rhs.RemoveAt(0)
	rhs.Put(tagged{key: 1, payload: []int{2}})
	require.NotPanics(t, func() {
		require.False(t, lhs.ShallowEqual(rhs))
	})

	// comparable payloads still compare with ==
	ptr := &box{v: 1}
	lhs.WipeOut()
	rhs.WipeOut()
	lhs.Put(tagged{key: 1, payload: ptr})
	rhs.Put(tagged{key: 1, payload: &box{v: 1}})
	require.False(t, lhs.ShallowEqual(rhs))
	require.True(t, lhs.DeepEqual(rhs))
	rhs.WipeOut()
	rhs.Put(tagged{key: 1, payload: ptr})
	require.True(t, lhs.ShallowEqual(rhs))

	// nil interface values
	anyTree := func() AVLTree[any] {
		return NewAVLTree[any](
			func(a, b any) bool { return false },
			func(a, b any) bool { return assert.ObjectsAreEqual(a, b) },
		)
	}
	l, r := anyTree(), anyTree()
	l.Put(nil)
	r.Put(nil)
	require.True(t, l.ShallowEqual(r))
	r.WipeOut()
	r.Put([]int{1})
	require.False(t, l.ShallowEqual(r))
}

func TestAVLTree_ForeignTree(t *testing.T) {
	tree := newIntTree()
	requireViolation(t, ErrAVLForeignTree, func() {
		tree.ShallowCopyFrom(nil)
	})
	requireViolation(t, ErrAVLForeignTree, func() {
		tree.DeepEqual((*avlTree[int])(nil))
	})
}

func TestAVLTree_WipeOut(t *testing.T) {
	tree := newIntTree()
	tree.PutAll(lo.Range(32)...)
	slots := tree.arena.slots()

	tree.WipeOut()
	require.True(t, tree.IsEmpty())
	require.Equal(t, 0, tree.Height())
	require.Empty(t, tree.AsArray())
	require.NoError(t, tree.Validate())

	// the arena is reused
	tree.PutAll(lo.Range(32)...)
	require.Equal(t, slots, tree.arena.slots())
	require.Equal(t, lo.Range(32), tree.AsArray())
	require.NoError(t, tree.Validate())
}

func TestAVLTree_WipeOutAndDispose(t *testing.T) {
	disposed := make([]int, 0, 8)
	tree := newIntTree(WithAVLValueDisposer[int](func(v int) {
		disposed = append(disposed, v)
	}))
	tree.PutAll(4, 2, 3, 1)
	tree.WipeOutAndDispose()
	require.Equal(t, []int{1, 2, 3, 4}, disposed)
	require.True(t, tree.IsEmpty())

	// the disposer may call back into the tree
	var reentrant AVLTree[int]
	lens := make([]int64, 0, 4)
	reentrant = NewOrderedAVLTree[int](WithAVLValueDisposer[int](func(v int) {
		lens = append(lens, reentrant.Len())
		if v == 3 {
			reentrant.Put(v * 10)
		}
	}))
	reentrant.PutAll(3, 1, 2)
	reentrant.WipeOutAndDispose()
	require.Equal(t, []int64{0, 0, 0}, lens)
	require.Equal(t, []int{30}, reentrant.AsArray())

	// no disposer configured
	plain := newIntTree()
	plain.PutAll(1, 2)
	plain.WipeOutAndDispose()
	require.True(t, plain.IsEmpty())
}
