package overlay

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func archiveTree() (dir, archive, member, nested *fakeItem) {
	dir = &fakeItem{path: "assets"}
	archive = &fakeItem{path: "assets/lib.zip", parent: dir, container: true, root: true}
	member = &fakeItem{path: "assets/lib.zip/docs", parent: archive, container: true, owner: archive}
	nested = &fakeItem{path: "assets/lib.zip/docs/a.txt", parent: member, container: true, owner: archive}
	return
}

func TestIdentityResolver(t *testing.T) {
	r := NewResolver(nil)
	item := &fakeItem{path: "a"}
	assert.Same(t, item, r.Resolve(item))
	assert.Nil(t, r.Resolve(nil))
}

func TestContainerResolver(t *testing.T) {
	_, archive, member, nested := archiveTree()
	r := NewResolver(ContainerResolver{})

	assert.Same(t, archive, r.Resolve(archive))
	assert.Same(t, archive, r.Resolve(member))
	assert.Same(t, archive, r.Resolve(nested))

	orphan := &fakeItem{path: "x", container: true}
	assert.Same(t, orphan, r.Resolve(orphan))
}

func TestIsChild(t *testing.T) {
	dir, archive, member, nested := archiveTree()
	r := NewResolver(ContainerResolver{})

	assert.False(t, r.IsChild(dir), "top level is never a child")
	assert.False(t, r.IsChild(archive), "archive has its own path")
	assert.True(t, r.IsChild(member))
	assert.True(t, r.IsChild(nested))
	assert.False(t, r.IsChild(nil))

	// With identity every member has its own path.
	r.SetPersistentOwnerResolver(nil)
	assert.False(t, r.IsChild(member))
}

func TestIsChildRecomputedEachCall(t *testing.T) {
	_, archive, member, _ := archiveTree()
	r := NewResolver(ContainerResolver{})
	assert.True(t, r.IsChild(member))

	// Reparent outside the archive.
	other := &fakeItem{path: "elsewhere"}
	member.parent = other
	assert.False(t, r.IsChild(member))
	member.parent = archive
	assert.True(t, r.IsChild(member))
}

func TestIsChildNilOwner(t *testing.T) {
	parent := &fakeItem{path: "p"}
	child := &fakeItem{path: "p", parent: parent}
	r := NewResolver(OwnerResolverFunc(func(item Item) Item {
		if item.AssetPath() == "p" && item.Parent() == nil {
			return nil
		}
		return item
	}))
	assert.False(t, r.IsChild(child))
}
