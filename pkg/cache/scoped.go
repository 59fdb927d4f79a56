package cache

// ScopedKeyer wraps a Keyer with a prefix so that several tools, or
// several versions of the algorithm, can share one cache without reading
// each other's entries.
//
// Example usage:
//
//	k := NewScopedKeyer(NewDefaultKeyer(), "v"+buildinfo.Version+":")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// SkeletonKey generates a prefixed skeleton key.
func (k *ScopedKeyer) SkeletonKey(boundaryHash string, opts SkeletonKeyOpts) string {
	return k.prefix + k.inner.SkeletonKey(boundaryHash, opts)
}

// PruneKey generates a prefixed pruning key.
func (k *ScopedKeyer) PruneKey(skeletonHash string, opts PruneKeyOpts) string {
	return k.prefix + k.inner.PruneKey(skeletonHash, opts)
}
