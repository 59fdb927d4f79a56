package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strconv"
)

// Hash returns the hex SHA-256 of data. Boundaries and skeletons are
// hashed in their serialized form to address cache entries.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// hashKey returns "<kind>:<sha256 of the JSON-encoded parts>".
func hashKey(kind string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return kind + ":" + Hash(data)
}

// Keyer derives cache keys.
type Keyer interface {
	// SkeletonKey addresses the propagation result for a boundary.
	SkeletonKey(boundaryHash string, opts SkeletonKeyOpts) string

	// PruneKey addresses a pruned skeleton.
	PruneKey(skeletonHash string, opts PruneKeyOpts) string
}

// SkeletonKeyOpts lists the propagation options that change the skeleton.
type SkeletonKeyOpts struct {
	Alpha        float64 `json:"alpha"`
	TargetNodes  int     `json:"target_nodes,omitempty"`
	NormalWindow int     `json:"normal_window,omitempty"`
}

// PruneKeyOpts identifies a pruning operator and its parameter.
type PruneKeyOpts struct {
	Method string  `json:"method"`
	Param  float64 `json:"param"`
}

// DefaultKeyer hashes the inputs into "<kind>:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// SkeletonKey implements Keyer.
func (DefaultKeyer) SkeletonKey(boundaryHash string, opts SkeletonKeyOpts) string {
	return hashKey("skeleton", boundaryHash, opts)
}

// PruneKey implements Keyer.
func (DefaultKeyer) PruneKey(skeletonHash string, opts PruneKeyOpts) string {
	return hashKey("prune", skeletonHash, opts.Method, strconv.FormatFloat(opts.Param, 'g', -1, 64))
}
