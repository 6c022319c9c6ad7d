package tree_test

import (
	"fmt"

	"github.com/benz9527/xavl/lib/tree"
)

func ExampleNewOrderedAVLTree() {
	avl := tree.NewOrderedAVLTree[int]()
	avl.PutAll(5, 3, 8, 1, 4)

	c := avl.NewCursor()
	defer c.Close()
	for c.Start(); !c.Off(); c.Forth() {
		fmt.Println(c.Item())
	}

	walker := avl.NewCursor()
	defer walker.Close()
	walker.GoToValue(4)
	c.GoToValue(4)
	c.Remove()
	fmt.Println(walker.Item(), avl.AsArray(), avl.Height())
	// Output:
	// 1
	// 3
	// 4
	// 5
	// 8
	// 5 [1 3 5 8] 2
}
