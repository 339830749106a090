// Package genre holds the static genre catalog and the pure selection
// logic for the bounded genre picker: a flat stored label list is split
// into catalog leaves plus one free-text label on edit, and merged back
// on save.
package genre

// Category groups an ordered list of leaf genre labels under a display
// heading.
type Category struct {
	Name   string
	Leaves []string
}

// catalog is the fixed two-level genre taxonomy. Order matters: it is
// the display order of the picker.
var catalog = []Category{
	{
		Name: "ポピュラー",
		Leaves: []string{
			"ポップス",
			"ロック",
			"ジャズ",
			"クラシック",
			"EDM",
			"ヒップホップ",
			"R&B",
		},
	},
	{
		Name: "アコースティック・アンビエント系",
		Leaves: []string{
			"アコースティック",
			"アンビエント",
		},
	},
}

// leafSet is the flattened membership index over catalog.
var leafSet = func() map[string]struct{} {
	set := make(map[string]struct{})
	for _, category := range catalog {
		for _, leaf := range category.Leaves {
			set[leaf] = struct{}{}
		}
	}

	return set
}()

// Categories returns the catalog in display order.
func Categories() []Category {
	out := make([]Category, len(catalog))
	for i, category := range catalog {
		out[i] = Category{
			Name:   category.Name,
			Leaves: append([]string(nil), category.Leaves...),
		}
	}

	return out
}

// AllLeaves returns every leaf label in catalog order.
func AllLeaves() []string {
	leaves := make([]string, 0, len(leafSet))
	for _, category := range catalog {
		leaves = append(leaves, category.Leaves...)
	}

	return leaves
}

// IsLeaf reports whether label is a catalog leaf.
func IsLeaf(label string) bool {
	_, ok := leafSet[label]

	return ok
}
