// Package ui holds the tree-drawing helpers used by console output.
package ui

import "strings"

// Tree hierarchy symbols using box drawing characters
const (
	TreeBranch     = "├── " // Branch connector
	TreeLastBranch = "└── " // Last branch connector
	TreeContinue   = "│   " // Parent has more siblings below
	TreeIndent     = "    " // Parent was last, no vertical line needed
)

// BuildTreePrefix returns the prefix for a node at depth. parentIsLast holds,
// for each ancestor level below the root, whether that ancestor was the last
// of its siblings. Depth zero has no prefix.
func BuildTreePrefix(depth int, isLast bool, parentIsLast []bool) string {
	if depth <= 0 {
		return ""
	}

	var b strings.Builder
	for i := 0; i < depth-1; i++ {
		if i < len(parentIsLast) && parentIsLast[i] {
			b.WriteString(TreeIndent)
		} else {
			b.WriteString(TreeContinue)
		}
	}
	if isLast {
		b.WriteString(TreeLastBranch)
	} else {
		b.WriteString(TreeBranch)
	}
	return b.String()
}
