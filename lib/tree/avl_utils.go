package tree

import (
	"github.com/cockroachdb/errors"
	"go.uber.org/multierr"
)

// avl tree rule validation utilities.
// p1. Binary-search order: in-order neighbours never step back.
// p2. Balance: every balance equals height(right) - height(left), in {-1, 0, 1}.
// p3. Links: every child reports its parent, the root has none.
// p4. Count: the counter equals the number of reachable nodes.
// p5. Cursors: every cursor that is on names a live, reachable node.

func corrupted(format string, args ...any) error {
	return errors.Wrapf(ErrAVLCorrupted, format, args...)
}

// linkViolationValidate runs a DFS over child links. A node reached twice
// means a cycle or a shared child, then the other checks are skipped.
func (tree *avlTree[T]) linkViolationValidate() (reachable []bool, err error) {
	reachable = make([]bool, tree.arena.slots())
	count := int64(0)
	if tree.root != nilIdx && tree.node(tree.root).parent != nilIdx {
		err = multierr.Append(err, corrupted("root %d has parent %d", tree.root, tree.node(tree.root).parent))
	}

	stack := make([]nodeIdx, 0, 64)
	if tree.root != nilIdx {
		stack = append(stack, tree.root)
	}
	for l := len(stack); l > 0; l = len(stack) {
		x := stack[l-1]
		stack = stack[:l-1]
		if int(x) >= len(reachable) || reachable[x] {
			return nil, multierr.Append(err, corrupted("node %d reached twice or out of arena", x))
		}
		reachable[x] = true
		count++

		xn := tree.node(x)
		if !xn.inUse {
			err = multierr.Append(err, corrupted("node %d is linked but recycled", x))
		}
		for _, child := range [2]nodeIdx{xn.left, xn.right} {
			if child == nilIdx {
				continue
			}
			if int(child) < len(reachable) && tree.node(child).parent != x {
				err = multierr.Append(err, corrupted("node %d parent is %d, want %d", child, tree.node(child).parent, x))
			}
			stack = append(stack, child)
		}
	}

	if n := tree.Len(); n != count {
		err = multierr.Append(err, corrupted("count is %d, reachable nodes are %d", n, count))
	}
	return reachable, err
}

// balanceViolationValidate recomputes the real heights bottom-up.
func (tree *avlTree[T]) balanceViolationValidate() (err error) {
	var height func(x nodeIdx) int
	height = func(x nodeIdx) int {
		if x == nilIdx {
			return -1
		}
		xn := tree.node(x)
		hl, hr := height(xn.left), height(xn.right)
		if b := hr - hl; b < -1 || b > 1 {
			err = multierr.Append(err, corrupted("node %d is unbalanced, heights %d/%d", x, hl, hr))
		} else if int(xn.balance) != b {
			err = multierr.Append(err, corrupted("node %d balance is %d, want %d", x, xn.balance, b))
		}
		return max(hl, hr) + 1
	}
	height(tree.root)
	return err
}

func (tree *avlTree[T]) orderViolationValidate() (err error) {
	prev := nilIdx
	tree.inorder(func(idx int64, x nodeIdx) bool {
		if prev != nilIdx && tree.less(tree.node(x).value, tree.node(prev).value) {
			err = multierr.Append(err, corrupted("value at index %d precedes its predecessor", idx))
		}
		prev = x
		return true
	})
	return err
}

func (tree *avlTree[T]) cursorViolationValidate(reachable []bool) (err error) {
	for id, c := range tree.cursors {
		if c.pos == nilIdx {
			continue
		}
		if !tree.arena.live(c.pos, c.gen) {
			err = multierr.Append(err, corrupted("cursor %d references recycled slot %d", id, c.pos))
		} else if int(c.pos) >= len(reachable) || !reachable[c.pos] {
			err = multierr.Append(err, corrupted("cursor %d references unreachable node %d", id, c.pos))
		}
	}
	return err
}

// validate must be called with the tree lock held. Cursor positions are
// read without their locks, every writer of a position holds the tree lock.
func (tree *avlTree[T]) validate() error {
	if (tree.root == nilIdx) != (tree.Len() == 0) {
		return corrupted("root %d with count %d", tree.root, tree.Len())
	}
	reachable, err := tree.linkViolationValidate()
	if reachable == nil {
		return err
	}
	if err != nil {
		return multierr.Append(err, tree.cursorViolationValidate(reachable))
	}
	return multierr.Combine(
		tree.balanceViolationValidate(),
		tree.orderViolationValidate(),
		tree.cursorViolationValidate(reachable),
	)
}

// Validate checks every structural invariant with a full traversal.
func (tree *avlTree[T]) Validate() error {
	tree.lock.Lock()
	defer tree.lock.Unlock()
	return tree.validate()
}
