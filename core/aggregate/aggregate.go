// Package aggregate folds per-block, per-raster sample values into the two
// run outputs: a node-keyed field dictionary for updating node records, and
// the flat ordered list of sample points for the detail table.
package aggregate

import (
	"lcsample-core/raster"
	"lcsample-core/schema"
	"lcsample-core/transect"
)

// Key identifies one node across the whole run.
type Key struct {
	StreamID string
	NodeID   int
}

// Results accumulates merged sampling output. It is not safe for concurrent
// writers; the pipeline funnels all merges through a single collector
// goroutine.
type Results struct {
	fields map[Key]map[string]float64
	points []*transect.Point
}

// New creates an empty result set.
func New() *Results {
	return &Results{fields: make(map[Key]map[string]float64)}
}

// MergeBlock folds one fully sampled block into the results: every sampled
// role on every point becomes a (node, field) entry, and the block's points
// are appended to the detail list in generation order. Merges are idempotent
// per (stream, node, field); a duplicate node in the source overwrites
// earlier values, last write wins.
func (r *Results) MergeBlock(blk *transect.Block, roles []raster.Role) {
	for _, p := range blk.Points {
		k := Key{StreamID: p.StreamID, NodeID: p.NodeID}
		m, ok := r.fields[k]
		if !ok {
			m = make(map[string]float64)
			r.fields[k] = m
		}
		for _, role := range roles {
			v, sampled := p.Values[role]
			if !sampled {
				continue
			}
			m[schema.FieldName(role, p.Transect, p.Zone)] = v
		}
	}
	r.points = append(r.points, blk.Points...)
}

// FieldsFor returns the merged field map for one node, or nil if the node
// was never sampled. The returned map is the live store; callers must not
// mutate it.
func (r *Results) FieldsFor(k Key) map[string]float64 {
	return r.fields[k]
}

// Nodes returns every node key with merged fields, in unspecified order.
func (r *Results) Nodes() []Key {
	keys := make([]Key, 0, len(r.fields))
	for k := range r.fields {
		keys = append(keys, k)
	}
	return keys
}

// Points returns the flat detail list in generation order.
func (r *Results) Points() []*transect.Point {
	return r.points
}

// Len reports how many sample points were merged.
func (r *Results) Len() int { return len(r.points) }
