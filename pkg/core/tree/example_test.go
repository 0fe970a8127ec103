package tree_test

import (
	"fmt"
	"strings"

	"github.com/matzehuels/stackflex/pkg/core/address"
	"github.com/matzehuels/stackflex/pkg/core/layout"
	"github.com/matzehuels/stackflex/pkg/core/tree"
)

func ExampleBuild() {
	nodes := []*layout.Node{
		layout.NewNode("app,api"),
		layout.NewNode("app,web"),
		layout.NewNode("db"),
	}
	root, err := tree.Build(nodes, address.Default)
	if err != nil {
		fmt.Println(err)
		return
	}
	created := tree.EnsureInteriorNodes(root)

	tree.Walk(root, func(t *tree.Node) {
		indent := strings.Repeat("  ", len(t.Address))
		fmt.Printf("%s%q synthetic=%v\n", indent, t.Payload.Key, t.Payload.Synthetic)
	})
	fmt.Println("placeholders:", created)
	// Output:
	// "" synthetic=true
	//   "app" synthetic=true
	//     "app,api" synthetic=false
	//     "app,web" synthetic=false
	//   "db" synthetic=false
	// placeholders: 2
}

func ExampleKeys() {
	root, _ := tree.Build([]*layout.Node{layout.NewNode("a,b,c")}, nil)
	fmt.Println(tree.Keys(root, nil))
	// Output:
	// [ a a,b a,b,c]
}
