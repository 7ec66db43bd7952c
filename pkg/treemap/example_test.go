package treemap_test

import (
	"fmt"
	"strings"

	"github.com/matzehuels/proteomap/pkg/treemap"
)

func ExampleBuildTree() {
	h := treemap.Hierarchy{"cog_class", "cog_category", "gene_name"}
	items := []treemap.Item{
		{Labels: []string{"metabolism", "energy", "atpA"}, Mass: 60},
		{Labels: []string{"metabolism", "amino acids", "glnA"}, Mass: 30},
		{Labels: []string{"", "", "yqaE"}, Mass: 10},
	}

	tree, err := treemap.BuildTree(h, items, treemap.DefaultRules())
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	tree.Walk(func(t *treemap.Tree) {
		if t.Level < 0 {
			return
		}
		fmt.Printf("%s%s %.2f\n", strings.Repeat("  ", t.Level), t.Label, t.Weight)
	})
	// Output:
	// metabolism 0.90
	//   energy 0.67
	//     atpA 1.00
	//   amino acids 0.33
	//     glnA 1.00
	// Not Assigned 0.10
	//     yqaE 1.00
}
