package tree

type AVLDirection int8

const (
	Left AVLDirection = -1 + iota
	Root
	Right
)

func (dir AVLDirection) String() string {
	switch dir {
	case Left:
		return "left"
	case Right:
		return "right"
	case Root:
		return "root"
	default:
	}
	return "unknown"
}

type AVLRotation uint8

const (
	RotateLeft AVLRotation = iota
	RotateRight
	RotateLeftRight
	RotateRightLeft
)

func (r AVLRotation) String() string {
	switch r {
	case RotateLeft:
		return "left"
	case RotateRight:
		return "right"
	case RotateLeftRight:
		return "left-right"
	case RotateRightLeft:
		return "right-left"
	default:
	}
	return "unknown"
}

// AVLCursor is an external iteration position over a live tree.
// A cursor is either on a node or off. It starts off.
type AVLCursor[T any] interface {
	// Start moves to the smallest value, or off if the tree is empty.
	Start()
	// Finish moves to the largest value, or off if the tree is empty.
	Finish()
	// Forth moves to the in-order successor. No-op when off.
	Forth()
	// Back moves to the in-order predecessor. No-op when off.
	Back()
	Off() bool
	IsFirst() bool
	IsLast() bool
	// Item returns the value under the cursor. Panics when off.
	Item() T
	// Go moves to the value at the in-order index, index in [0, Len()).
	Go(index int64)
	// Index returns the in-order index of the cursor, or -1 when off.
	Index() int64
	// GoToValue lands on a value equal to v if present, otherwise on the
	// smallest value greater than v, otherwise off.
	GoToValue(v T)
	// SearchForth walks forth from the current position (included) until
	// a value equal to v is found or the cursor goes off.
	SearchForth(v T)
	// SearchBack is the mirror of SearchForth.
	SearchBack(v T)
	// Remove removes the value under the cursor. The cursor then sits on
	// the removed value's in-order successor, or off.
	Remove()
	// Close deregisters the cursor from its tree.
	Close()
}

type Iterable[T any] interface {
	Foreach(action func(idx int64, val T) bool)
	AsArray() []T
	Cursor() AVLCursor[T]
	NewCursor() AVLCursor[T]
}

type BidirectionalIterable[T any] interface {
	Iterable[T]
	ReverseForeach(action func(idx int64, val T) bool)
}

type AVLTree[T any] interface {
	BidirectionalIterable[T]

	Len() int64
	IsEmpty() bool
	Height() int
	Put(val T)
	PutAll(vals ...T)
	Item(index int64) T
	Has(val T, equal ...func(a, b T) bool) bool
	Occurrences(val T, equal ...func(a, b T) bool) int64
	RemoveAt(index int64)
	RemoveValue(val T)

	ShallowCopyFrom(src AVLTree[T])
	DeepCopyFrom(src AVLTree[T])
	ShallowClone() AVLTree[T]
	DeepClone() AVLTree[T]
	ShallowEqual(other AVLTree[T]) bool
	DeepEqual(other AVLTree[T]) bool
	WipeOut()
	WipeOutAndDispose()

	Validate() error
	Release()
}
