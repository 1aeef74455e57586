package overlay

// OwnerResolver maps a displayed item to the persistent item its changes
// belong to.
type OwnerResolver interface {
	Resolve(item Item) Item
}

// OwnerResolverFunc adapts a function to OwnerResolver.
type OwnerResolverFunc func(item Item) Item

// Resolve implements OwnerResolver.
func (f OwnerResolverFunc) Resolve(item Item) Item {
	return f(item)
}

// IdentityResolver resolves every item to itself.
type IdentityResolver struct{}

// Resolve implements OwnerResolver.
func (IdentityResolver) Resolve(item Item) Item {
	return item
}

// ContainerResolver resolves container members to their container root.
type ContainerResolver struct{}

// Resolve implements OwnerResolver.
func (ContainerResolver) Resolve(item Item) Item {
	if item == nil || !item.IsContainer() || item.IsContainerRoot() {
		return item
	}
	if owner := item.ContainerOwner(); owner != nil {
		return owner
	}
	return item
}

// Resolver answers relationship questions about displayed items. Results
// are recomputed on every call because the tree may change between
// redraws.
type Resolver struct {
	strategy OwnerResolver
}

// NewResolver creates a Resolver. A nil strategy means identity.
func NewResolver(strategy OwnerResolver) *Resolver {
	r := &Resolver{}
	r.SetPersistentOwnerResolver(strategy)
	return r
}

// SetPersistentOwnerResolver replaces the resolution strategy. Nil
// restores identity.
func (r *Resolver) SetPersistentOwnerResolver(strategy OwnerResolver) {
	if strategy == nil {
		strategy = IdentityResolver{}
	}
	r.strategy = strategy
}

// Resolve returns the persistent item for item, or nil.
func (r *Resolver) Resolve(item Item) Item {
	if item == nil {
		return nil
	}
	return r.strategy.Resolve(item)
}

// IsChild reports whether item shares its persistent owner with its
// structural parent, meaning it has no on-disk identity of its own.
// Top-level items are never children.
func (r *Resolver) IsChild(item Item) bool {
	if item == nil {
		return false
	}
	parent := item.Parent()
	if parent == nil {
		return false
	}
	owner, parentOwner := r.Resolve(item), r.Resolve(parent)
	if owner == nil || parentOwner == nil {
		return false
	}
	return owner.AssetPath() == parentOwner.AssetPath()
}
