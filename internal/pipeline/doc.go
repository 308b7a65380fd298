// Package pipeline fans independent streams out to worker goroutines, sweeps
// each stream's blocks across every configured raster, and funnels sampled
// blocks into a single collector that owns the aggregate.
//
// Streams are the unit of parallelism; blocks bound peak memory. Rasters
// for one stream are processed in role order, each swept over all blocks
// before the next raster opens, so the elevation conversion factor is chosen
// exactly once per raster.
package pipeline
