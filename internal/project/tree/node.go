// Package tree builds the browser's file tree over a go-billy filesystem.
//
// Directories are read lazily on expansion. Archives are container assets:
// a leaf in the project view, and expanded into member nodes when the tree
// is built with WithArchiveMembers. Members have no on-disk identity and
// report the archive as their container owner.
package tree

import (
	"github.com/dshills/statusicons/internal/overlay"
)

// Node is one entry of the tree.
type Node struct {
	name  string
	path  string
	dir   bool
	depth int

	archive bool  // container root
	owner   *Node // archive that stores this member

	parent   *Node
	children []*Node
	loaded   bool
	expanded bool
}

// Name returns the last path element.
func (n *Node) Name() string { return n.name }

// Path returns the slash-separated path relative to the filesystem root.
// Archive members extend the archive's path.
func (n *Node) Path() string { return n.path }

// IsDir reports whether the node can hold children, including archives
// whose members are listed.
func (n *Node) IsDir() bool { return n.dir }

// IsArchive reports whether the node is an archive file.
func (n *Node) IsArchive() bool { return n.archive }

// IsMember reports whether the node lives inside an archive.
func (n *Node) IsMember() bool { return n.owner != nil }

// Depth returns the nesting level below the tree root.
func (n *Node) Depth() int { return n.depth }

// Expanded reports whether the node's children are shown.
func (n *Node) Expanded() bool { return n.expanded }

// Children returns the loaded children. Nil until the node is expanded.
func (n *Node) Children() []*Node { return n.children }

// ParentNode returns the parent node, nil for the root.
func (n *Node) ParentNode() *Node { return n.parent }

// AssetPath implements overlay.Item.
func (n *Node) AssetPath() string { return n.path }

// Parent implements overlay.Item.
func (n *Node) Parent() overlay.Item {
	if n.parent == nil {
		return nil
	}
	return n.parent
}

// IsContainer implements overlay.Item.
func (n *Node) IsContainer() bool { return n.archive || n.owner != nil }

// IsContainerRoot implements overlay.Item.
func (n *Node) IsContainerRoot() bool { return n.archive }

// ContainerOwner implements overlay.Item.
func (n *Node) ContainerOwner() overlay.Item {
	if n.owner == nil {
		return nil
	}
	return n.owner
}

func (n *Node) child(name string) *Node {
	for _, c := range n.children {
		if c.name == name {
			return c
		}
	}
	return nil
}
