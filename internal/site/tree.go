package site

import (
	"sort"
	"strings"
	"time"
)

// TreeNode is one level of the derived file hierarchy. Folders carry
// children; leaves carry the full relative path plus size and mtime. The tree
// is rebuilt from a flat listing on every read and never persisted.
type TreeNode struct {
	Name         string     `json:"name"`
	Path         string     `json:"path,omitempty"`
	IsDir        bool       `json:"is_dir"`
	SizeBytes    int64      `json:"size_bytes,omitempty"`
	LastModified time.Time  `json:"last_modified,omitempty"`
	Children     []TreeNode `json:"children,omitempty"`
}

// BuildTree converts a flat file listing into an ordered hierarchy. Folder
// nodes are synthesized from leaf paths since no directory objects exist in
// storage. At every level folders sort before files, both groups
// lexicographically by name; the result is deterministic regardless of the
// input order.
func BuildTree(files []StoredFile) []TreeNode {
	root := &TreeNode{IsDir: true}
	for _, file := range files {
		insert(root, strings.Split(file.Path, "/"), file)
	}
	sortChildren(root)
	return root.Children
}

func insert(node *TreeNode, segments []string, file StoredFile) {
	if len(segments) == 1 {
		node.Children = append(node.Children, TreeNode{
			Name:         segments[0],
			Path:         file.Path,
			SizeBytes:    file.SizeBytes,
			LastModified: file.LastModified,
		})
		return
	}

	child := findFolder(node, segments[0])
	if child == nil {
		node.Children = append(node.Children, TreeNode{Name: segments[0], IsDir: true})
		child = &node.Children[len(node.Children)-1]
	}
	insert(child, segments[1:], file)
}

func findFolder(node *TreeNode, name string) *TreeNode {
	for i := range node.Children {
		if node.Children[i].IsDir && node.Children[i].Name == name {
			return &node.Children[i]
		}
	}
	return nil
}

func sortChildren(node *TreeNode) {
	sort.SliceStable(node.Children, func(i, j int) bool {
		a, b := node.Children[i], node.Children[j]
		if a.IsDir != b.IsDir {
			return a.IsDir
		}
		return a.Name < b.Name
	})
	for i := range node.Children {
		if node.Children[i].IsDir {
			sortChildren(&node.Children[i])
		}
	}
}
