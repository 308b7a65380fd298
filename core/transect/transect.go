// Package transect generates the star-pattern sample geometry for stream
// nodes and partitions it into memory-bounded blocks along stream distance.
package transect

import (
	"fmt"
	"math"
	"sort"

	"lcsample-core/raster"
	"lcsample-core/schema"
)

// Node is one point along a stream centerline. Identity fields are never
// mutated after load; sampling only derives data from them.
type Node struct {
	StreamID string
	NodeID   int
	StreamKM float64 // distance from the stream mouth, non-decreasing in node order
	X, Y     float64 // planar coordinates in the node source's spatial reference
}

// Point is one generated sample location. Azimuth 0 / transect 0 / zone 0 is
// the emergent sample at the node's own position. Values is filled in
// incrementally as each raster is processed.
type Point struct {
	StreamID string
	NodeID   int
	Azimuth  float64
	Transect int
	Zone     int
	X, Y     float64
	Values   map[raster.Role]float64
}

// Block is a contiguous run of one stream's sample points, bounded at fixed
// stream-distance checkpoints so its coordinate extent stays small enough to
// materialize as a dense raster window. Node samples are never split across
// blocks.
type Block struct {
	StreamID string
	Index    int
	Points   []*Point
}

// SortNodes orders nodes by (StreamID, StreamKM) ascending. The checkpoint
// partitioning below is only correct on sorted input.
func SortNodes(nodes []Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		if nodes[i].StreamID != nodes[j].StreamID {
			return nodes[i].StreamID < nodes[j].StreamID
		}
		return nodes[i].StreamKM < nodes[j].StreamKM
	})
}

// GroupByStream splits sorted nodes into per-stream slices, preserving order.
// Stream order follows first appearance in the sorted input.
func GroupByStream(nodes []Node) (ids []string, byStream map[string][]Node) {
	byStream = make(map[string][]Node)
	for _, n := range nodes {
		if _, ok := byStream[n.StreamID]; !ok {
			ids = append(ids, n.StreamID)
		}
		byStream[n.StreamID] = append(byStream[n.StreamID], n)
	}
	return ids, byStream
}

// CheckOrder verifies that one stream's km-sorted nodes also ascend by
// NodeID. Disagreement means the node source's ordering is inconsistent and
// blocking would silently misgroup samples, so it is treated as a
// configuration error.
func CheckOrder(streamID string, nodes []Node) error {
	for i := 1; i < len(nodes); i++ {
		if nodes[i].NodeID < nodes[i-1].NodeID {
			return fmt.Errorf("stream %s: node %d at km %.3f precedes node %d at km %.3f, node order disagrees with stream km: %w",
				streamID, nodes[i-1].NodeID, nodes[i-1].StreamKM, nodes[i].NodeID, nodes[i].StreamKM, schema.ErrInvalidConfig)
		}
	}
	return nil
}

// Config controls geometry generation for one stream.
type Config struct {
	Directions          []float64 // transect azimuths, degrees clockwise from north
	ZoneCount           int       // samples per transect
	Spacing             float64   // meters between consecutive zones
	UnitFactor          float64   // planar units per meter of the node source CRS
	IncludeStreamSample bool      // emit the emergent zone-0 sample
	CheckpointKM        float64   // block boundary increment along stream km
}

// nodePoints emits the emergent sample (if configured) followed by every
// direction/zone sample for one node, using compass-bearing trigonometry:
// azimuths are measured clockwise from north, so sin maps to easting and cos
// to northing.
func nodePoints(n Node, cfg Config) []*Point {
	pts := make([]*Point, 0, 1+len(cfg.Directions)*cfg.ZoneCount)
	if cfg.IncludeStreamSample {
		pts = append(pts, &Point{
			StreamID: n.StreamID, NodeID: n.NodeID,
			X: n.X, Y: n.Y,
			Values: make(map[raster.Role]float64),
		})
	}
	for d, az := range cfg.Directions {
		rad := az * math.Pi / 180
		for z := 1; z <= cfg.ZoneCount; z++ {
			dist := float64(z) * cfg.Spacing * cfg.UnitFactor
			pts = append(pts, &Point{
				StreamID: n.StreamID, NodeID: n.NodeID,
				Azimuth:  az,
				Transect: d + 1,
				Zone:     z,
				X:        n.X + dist*math.Sin(rad),
				Y:        n.Y + dist*math.Cos(rad),
				Values:   make(map[raster.Role]float64),
			})
		}
	}
	return pts
}

// StreamBlocks walks one stream's ordered nodes and emits blocks of sample
// points. A moving checkpoint starts at CheckpointKM and advances by the
// same increment whenever a node's StreamKM meets or exceeds it; each
// advance closes the accumulating block. The final partial block is always
// flushed. No block is retained after emit returns, so the sequence is
// memory-bounded and restartable.
func StreamBlocks(streamID string, nodes []Node, cfg Config, emit func(*Block) error) error {
	if cfg.CheckpointKM <= 0 {
		return fmt.Errorf("block checkpoint distance %g must be > 0: %w", cfg.CheckpointKM, schema.ErrInvalidConfig)
	}
	if err := CheckOrder(streamID, nodes); err != nil {
		return err
	}

	checkpoint := cfg.CheckpointKM
	idx := 0
	cur := &Block{StreamID: streamID, Index: idx}

	for _, n := range nodes {
		if n.StreamKM >= checkpoint {
			if len(cur.Points) > 0 {
				if err := emit(cur); err != nil {
					return err
				}
				idx++
				cur = &Block{StreamID: streamID, Index: idx}
			}
			for n.StreamKM >= checkpoint {
				checkpoint += cfg.CheckpointKM
			}
		}
		cur.Points = append(cur.Points, nodePoints(n, cfg)...)
	}
	if len(cur.Points) > 0 {
		return emit(cur)
	}
	return nil
}

// CollectBlocks materializes the full block sequence for one stream. The
// pipeline needs blocks in hand because each raster is swept over all blocks
// before the next raster is opened.
func CollectBlocks(streamID string, nodes []Node, cfg Config) ([]*Block, error) {
	var blocks []*Block
	err := StreamBlocks(streamID, nodes, cfg, func(b *Block) error {
		blocks = append(blocks, b)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return blocks, nil
}
