package genre

import (
	"slices"
	"strings"
)

// MaxLeaves is the upper bound on catalog leaves in one selection.
const MaxLeaves = 3

// Selection is the tagged form of a stored genre list: the catalog
// leaves in first-seen order, plus at most one free-text label.
type Selection struct {
	Leaves []string
	Other  string
}

// Reconstruct splits a stored flat genre list into its tagged form.
// Every label that is a catalog leaf goes into Leaves in first-seen
// order, with repeated labels collapsed; the first label that is not a
// leaf becomes Other; any further non-leaf labels are dropped.
func Reconstruct(stored []string) Selection {
	sel := Selection{Leaves: make([]string, 0, MaxLeaves)}
	for _, label := range stored {
		if IsLeaf(label) {
			if !slices.Contains(sel.Leaves, label) {
				sel.Leaves = append(sel.Leaves, label)
			}
			continue
		}
		if sel.Other == "" {
			sel.Other = label
		}
	}

	return sel
}

// Toggle returns the selection with leaf removed if present, or
// appended if absent and the selection is not yet at MaxLeaves. At the
// cap, selecting a new leaf is a no-op; deselection always works.
func Toggle(current []string, leaf string) []string {
	if idx := slices.Index(current, leaf); idx >= 0 {
		return slices.Delete(slices.Clone(current), idx, idx+1)
	}
	if len(current) >= MaxLeaves {
		return slices.Clone(current)
	}

	return append(slices.Clone(current), leaf)
}

// Finalize merges a tagged selection back into the flat stored form:
// the leaves followed by the trimmed free-text label, if any.
func Finalize(sel Selection) []string {
	merged := slices.Clone(sel.Leaves)
	if other := strings.TrimSpace(sel.Other); other != "" {
		merged = append(merged, other)
	}

	return merged
}
