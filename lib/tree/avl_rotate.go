package tree

import (
	"go.uber.org/zap"
)

// References:
// https://en.wikipedia.org/wiki/AVL_tree#Rebalancing
// N. Wirth, Algorithms and Data Structures, 4.5 Balanced Trees.

// replaceChild links n into the slot old occupied under p.
// A nil p means old was the root.
func (tree *avlTree[T]) replaceChild(p, old, n nodeIdx) {
	if p == nilIdx {
		tree.root = n
	} else if pn := tree.node(p); pn.left == old {
		pn.left = n
	} else {
		pn.right = n
	}
	if n != nilIdx {
		tree.node(n).parent = p
	}
}

func (tree *avlTree[T]) setParent(idx, p nodeIdx) {
	if idx != nilIdx {
		tree.node(idx).parent = p
	}
}

func (tree *avlTree[T]) traceRotation(kind AVLRotation, risen nodeIdx) {
	tree.stats.IncreaseRotationCount(kind)
	if ce := tree.logger.Check(zap.DebugLevel, "avl rotation"); ce != nil {
		ce.Write(
			zap.Stringer("kind", kind),
			zap.Uint32("risen", uint32(risen)),
			zap.Stringer("side", tree.direction(risen)),
			zap.Int8("balance", tree.node(risen).balance),
		)
	}
}

/*
	   |                         |
	   X                         Y
	  / \     rotateLeft(X)     / \
	 L   Y    ============>    X   Yr
	    / \                   / \
	  Yl   Yr                L   Yl
*/
func (tree *avlTree[T]) rotateLeft(x nodeIdx) nodeIdx {
	xn := tree.node(x)
	y := xn.right
	if y == nilIdx {
		// impossible run to here
		panic( /* debug assertion */ "[avl] left rotate node x without right child")
	}
	yn := tree.node(y)

	p := xn.parent
	xn.right = yn.left
	tree.setParent(yn.left, x)
	yn.left = x
	tree.replaceChild(p, x, y)
	xn.parent = y

	xb := xn.balance - 1 - max(yn.balance, 0)
	yb := yn.balance - 1 + min(xb, 0)
	xn.balance, yn.balance = xb, yb

	tree.traceRotation(RotateLeft, y)
	return y
}

/*
	     |                         |
	     X                         Y
	    / \    rotateRight(X)     / \
	   Y   R   =============>   Yl   X
	  / \                           / \
	Yl   Yr                       Yr   R
*/
func (tree *avlTree[T]) rotateRight(x nodeIdx) nodeIdx {
	xn := tree.node(x)
	y := xn.left
	if y == nilIdx {
		// impossible run to here
		panic( /* debug assertion */ "[avl] right rotate node x without left child")
	}
	yn := tree.node(y)

	p := xn.parent
	xn.left = yn.right
	tree.setParent(yn.right, x)
	yn.right = x
	tree.replaceChild(p, x, y)
	xn.parent = y

	xb := xn.balance + 1 - min(yn.balance, 0)
	yb := yn.balance + 1 + max(xb, 0)
	xn.balance, yn.balance = xb, yb

	tree.traceRotation(RotateRight, y)
	return y
}

/*
	       |                       |
	       X                       G
	      / \                    /   \
	     L   R   rotateLR(X)    L     X
	    / \      ==========>   / \   / \
	  Ll   G                 Ll  Gl Gr  R
	      / \
	    Gl   Gr
*/
func (tree *avlTree[T]) rotateLeftRight(x nodeIdx) nodeIdx {
	xn := tree.node(x)
	l := xn.left
	ln := tree.node(l)
	g := ln.right
	if l == nilIdx || g == nilIdx {
		// impossible run to here
		panic( /* debug assertion */ "[avl] left-right rotate without pivot")
	}
	gn := tree.node(g)

	p := xn.parent
	ln.right = gn.left
	tree.setParent(gn.left, l)
	xn.left = gn.right
	tree.setParent(gn.right, x)
	gn.left, gn.right = l, x
	tree.replaceChild(p, x, g)
	ln.parent, xn.parent = g, g

	switch gn.balance {
	case 1:
		ln.balance, xn.balance = -1, 0
	case -1:
		ln.balance, xn.balance = 0, 1
	default:
		ln.balance, xn.balance = 0, 0
	}
	gn.balance = 0

	tree.traceRotation(RotateLeftRight, g)
	return g
}

/*
	     |                          |
	     X                          G
	    / \                       /   \
	   L   R      rotateRL(X)    X     R
	      / \     ==========>   / \   / \
	     G   Rr                L  Gl Gr  Rr
	    / \
	  Gl   Gr
*/
func (tree *avlTree[T]) rotateRightLeft(x nodeIdx) nodeIdx {
	xn := tree.node(x)
	r := xn.right
	rn := tree.node(r)
	g := rn.left
	if r == nilIdx || g == nilIdx {
		// impossible run to here
		panic( /* debug assertion */ "[avl] right-left rotate without pivot")
	}
	gn := tree.node(g)

	p := xn.parent
	rn.left = gn.right
	tree.setParent(gn.right, r)
	xn.right = gn.left
	tree.setParent(gn.left, x)
	gn.left, gn.right = x, r
	tree.replaceChild(p, x, g)
	xn.parent, rn.parent = g, g

	switch gn.balance {
	case 1:
		xn.balance, rn.balance = -1, 0
	case -1:
		xn.balance, rn.balance = 0, 1
	default:
		xn.balance, rn.balance = 0, 0
	}
	gn.balance = 0

	tree.traceRotation(RotateRightLeft, g)
	return g
}

// rebalance fixes a node whose balance reached ±2 and returns the node
// that took its structural position.
func (tree *avlTree[T]) rebalance(x nodeIdx) nodeIdx {
	xn := tree.node(x)
	if xn.balance > 1 {
		if tree.node(xn.right).balance >= 0 {
			return tree.rotateLeft(x)
		}
		return tree.rotateRightLeft(x)
	}
	if tree.node(xn.left).balance <= 0 {
		return tree.rotateRight(x)
	}
	return tree.rotateLeftRight(x)
}

// sideDelta is the balance change of x's parent when the subtree rooted
// at x grows: -1 on the left side, +1 on the right side, 0 for the root.
func (tree *avlTree[T]) sideDelta(x nodeIdx) int8 {
	return int8(tree.direction(x))
}

// insertRebalance walks up from x after one of its subtrees grew by one.
// At most one rotation happens, after it the subtree height is restored.
func (tree *avlTree[T]) insertRebalance(x nodeIdx, delta int8) {
	for x != nilIdx {
		xn := tree.node(x)
		xn.balance += delta
		switch xn.balance {
		case 0:
			return
		case 2, -2:
			tree.rebalance(x)
			return
		default:
		}
		p := xn.parent
		if p == nilIdx {
			return
		}
		delta = tree.sideDelta(x)
		x = p
	}
}

// removeRebalance walks up from x after one of its subtrees shrank by one.
// delta is the balance change of x. Zero means x itself already carries the
// shrunk subtree and only its ancestors need fixing.
// Unlike insertion, a rotation may leave the subtree one level shorter, so
// the walk continues while the risen node is perfectly balanced.
func (tree *avlTree[T]) removeRebalance(x nodeIdx, delta int8) {
	for x != nilIdx {
		xn := tree.node(x)
		xn.balance += delta
		switch xn.balance {
		case 1, -1:
			return
		case 2, -2:
			x = tree.rebalance(x)
			if tree.node(x).balance != 0 {
				return
			}
		default:
		}
		p := tree.node(x).parent
		if p == nilIdx {
			return
		}
		delta = -tree.sideDelta(x)
		x = p
	}
}
