package tree

import (
	"go.uber.org/zap"
)

type AVLTreeOpt[T any] func(*avlTree[T])

// WithAVLLogger attaches a zap logger. Rotations are logged at debug level,
// contract violations at error level.
func WithAVLLogger[T any](logger *zap.Logger) AVLTreeOpt[T] {
	return func(tree *avlTree[T]) {
		if logger != nil {
			tree.logger = logger.Named("avl")
		}
	}
}

// WithAVLStats enables the otel metrics of the tree.
func WithAVLStats[T any](name string) AVLTreeOpt[T] {
	return func(tree *avlTree[T]) {
		tree.isStatsEnabled = true
		tree.name = name
	}
}

// WithAVLValueCloner sets the deep clone function used by DeepCopyFrom
// and DeepClone.
func WithAVLValueCloner[T any](cloner func(T) T) AVLTreeOpt[T] {
	return func(tree *avlTree[T]) {
		tree.cloner = cloner
	}
}

// WithAVLValueDisposer sets the function WipeOutAndDispose applies to
// every stored value. It is called without the tree lock once the tree is
// already empty, so it may call back into the tree.
func WithAVLValueDisposer[T any](disposer func(T)) AVLTreeOpt[T] {
	return func(tree *avlTree[T]) {
		tree.disposer = disposer
	}
}

// WithAVLInvariantChecks validates the whole tree before and after every
// mutating operation. Expensive, meant for tests.
func WithAVLInvariantChecks[T any]() AVLTreeOpt[T] {
	return func(tree *avlTree[T]) {
		tree.isInvariantChecksEnabled = true
	}
}

// WithAVLArenaCapacity preallocates node slots.
func WithAVLArenaCapacity[T any](capacity int) AVLTreeOpt[T] {
	return func(tree *avlTree[T]) {
		tree.arena = newNodeArena[T](capacity)
	}
}
