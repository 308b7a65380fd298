package pipeline

import (
	"context"
	"sync"

	"lcsample-core/aggregate"
	"lcsample-core/engine"
	"lcsample-core/raster"
	"lcsample-core/transect"
)

// Config controls the sampling pipeline.
type Config struct {
	Workers         int              // stream worker goroutines (>=1)
	Geometry        transect.Config  // star-pattern and block parameters
	ElevationFactor float64          // elevation z units to meters
}

// job is one stream's worth of km-sorted nodes.
type job struct {
	streamID string
	nodes    []transect.Node
}

// result carries one fully sampled stream back to the collector.
type result struct {
	blocks []*transect.Block
	err    error
}

// Run samples every stream in nodes against every raster input and merges
// the output into res. Streams run concurrently on cfg.Workers goroutines;
// within a stream, each raster is swept over all blocks before the next
// raster starts. The single collector goroutine is the only writer into res,
// so results merged before a failure remain valid.
func Run(ctx context.Context, cfg Config, nodes []transect.Node, inputs []raster.Input, eng *engine.Engine, res *aggregate.Results) error {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}

	transect.SortNodes(nodes)
	ids, byStream := transect.GroupByStream(nodes)

	roles := make([]raster.Role, len(inputs))
	for i, in := range inputs {
		roles[i] = in.Role
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan job, cfg.Workers)
	results := make(chan result, cfg.Workers)

	var wg sync.WaitGroup
	wg.Add(cfg.Workers)
	for w := 0; w < cfg.Workers; w++ {
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case j, ok := <-jobs:
					if !ok {
						return
					}
					blocks, err := sampleStream(ctx, cfg, j, inputs, eng)
					select {
					case results <- result{blocks: blocks, err: err}:
					case <-ctx.Done():
						return
					}
				}
			}
		}()
	}

	// Collector: sole writer into the aggregate. The first error cancels
	// outstanding work but keeps everything already merged.
	var (
		cerr error
		cwg  sync.WaitGroup
	)
	cwg.Add(1)
	go func() {
		defer cwg.Done()
		for r := range results {
			if r.err != nil {
				if cerr == nil {
					cerr = r.err
					cancel()
				}
				continue
			}
			for _, b := range r.blocks {
				res.MergeBlock(b, roles)
			}
		}
	}()

feed:
	for _, id := range ids {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- job{streamID: id, nodes: byStream[id]}:
		}
	}

	close(jobs)
	wg.Wait()
	close(results)
	cwg.Wait()

	if cerr != nil {
		return cerr
	}
	return ctx.Err()
}

// sampleStream generates one stream's blocks and sweeps every raster over
// them. Cancellation is honored between blocks, never inside one.
func sampleStream(ctx context.Context, cfg Config, j job, inputs []raster.Input, eng *engine.Engine) ([]*transect.Block, error) {
	blocks, err := transect.CollectBlocks(j.streamID, j.nodes, cfg.Geometry)
	if err != nil {
		return nil, err
	}
	for _, in := range inputs {
		factor := 1.0
		if in.Role.IsElevation() {
			factor = cfg.ElevationFactor
		}
		for _, b := range blocks {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
			if err := eng.SampleBlock(in, factor, b); err != nil {
				return nil, err
			}
		}
	}
	return blocks, nil
}
