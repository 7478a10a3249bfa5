package tree_test

import (
	"fmt"

	"github.com/matzehuels/narrative/pkg/dag"
	"github.com/matzehuels/narrative/pkg/item"
	"github.com/matzehuels/narrative/pkg/tree"
)

func ExampleBuild() {
	// Two threads share the anchor 2: 0 -> 2 -> 3 and 1 -> 2 -> 4.
	threads := []dag.Thread{{0, 2, 3}, {1, 2, 4}}
	t := tree.Build(threads, 2)

	fmt.Println("Anchor parents:", t.Anchor.Parents)
	fmt.Println("Anchor children:", t.Anchor.Children)
	fmt.Println("Width:", t.Width(), "Height:", t.Height())
	// Output:
	// Anchor parents: [0 1]
	// Anchor children: [3 4]
	// Width: 3 Height: 3
}

func ExampleBuildThreadList() {
	threads := []dag.Thread{{0, 2, 3}, {1, 2, 4}}
	g := dag.New()
	for id := item.ID(0); id < 5; id++ {
		_ = g.AddVertex(id)
	}
	_ = g.AddEdge(0, 2, 0.5)
	_ = g.AddEdge(1, 2, 0.5)
	_ = g.AddEdge(2, 3, 0.5)
	_ = g.AddEdge(2, 4, 0.5)

	t := tree.Build(threads, 2)
	edge, _ := tree.ParseEdgeKey("2->4")
	through, _ := tree.BuildThreadList(t, g, threads, edge)
	fmt.Println(through)
	// Output:
	// [[1 2 4]]
}
