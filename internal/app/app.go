// internal/app/app.go
package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"lcsample-core/aggregate"
	"lcsample-core/engine"
	"lcsample-core/raster"
	"lcsample-core/schema"
	"lcsample-core/transect"
	"lcsample-core/units"
	"lcsample/internal/cmdutil"
	"lcsample/internal/nodes"
	"lcsample/internal/nodestore"
	"lcsample/internal/pipeline"
	"lcsample/internal/profile"
	"lcsample/internal/rasterio"
	"lcsample/internal/writers"
)

// Options is the fully resolved run configuration after flag, env, and
// config-file merging. Zero values for the sampling overrides mean "use the
// profile".
type Options struct {
	NodesPath   string // .csv node table, or a .db/.sqlite node store
	ProfilePath string
	PointsOut   string // detail table destination; "" or "-" is stdout
	NodesOut    string // per-node table for CSV sources; "" derives from NodesPath
	Format      string

	Workers        int
	BlockKM        float64
	BlockKMSet     bool // flag was given; wins over the profile's block_km
	MaxWindowCells int
	PadCells       float64
	Overwrite      bool
	Quiet          bool

	CRSUnits       string // linear unit of the node coordinates
	ElevationUnits string // overrides the profile's elevation raster units

	Transects        int
	Zones            int
	Spacing          float64
	DataKind         string
	StreamSample     bool // enable-only; or'd with the profile
	LegacyDirections bool // enable-only; or'd with the profile
}

// RunContext executes one sampling run. Exit codes: 0 success (including a
// run with nothing to do), 2 configuration error, 3 runtime failure, 130
// interrupted.
func RunContext(ctx context.Context, opts Options, stdout, stderr io.Writer) int {
	fail := func(code int, err error) int {
		_, _ = fmt.Fprintln(stderr, err)
		return code
	}

	prof, err := profile.Load(opts.ProfilePath)
	if err != nil {
		return fail(2, err)
	}

	spec := specFrom(prof, opts)
	if err := spec.Validate(); err != nil {
		return fail(2, err)
	}
	fields, err := spec.FieldNames()
	if err != nil {
		return fail(2, err)
	}

	unitFactor, err := units.UnitsPerMeter(opts.CRSUnits)
	if err != nil {
		return fail(2, err)
	}

	inputs, elevUnits, err := prof.Resolve(spec.DataKind, func(path string) (raster.Store, error) {
		g, err := rasterio.Open(path)
		if err != nil {
			return nil, err
		}
		return g, nil
	})
	if err != nil {
		if errors.Is(err, schema.ErrInvalidConfig) {
			return fail(2, err)
		}
		return fail(3, err)
	}

	if opts.ElevationUnits != "" {
		elevUnits = opts.ElevationUnits
	}
	if elevUnits == "" {
		elevUnits = "Meters"
	}
	elevFactor, err := units.ElevationToMeters(elevUnits)
	if err != nil {
		return fail(2, err)
	}

	blockKM := prof.Sampling.BlockKM
	if blockKM <= 0 || opts.BlockKMSet {
		blockKM = opts.BlockKM
	}

	var store *nodestore.Store
	var nodeList []transect.Node
	switch strings.ToLower(filepath.Ext(opts.NodesPath)) {
	case ".db", ".sqlite", ".sqlite3":
		store, err = nodestore.Open(ctx, opts.NodesPath)
		if err != nil {
			return fail(3, err)
		}
		defer func() { _ = store.Close() }()

		// The last schema field is written last, so a node that has it is
		// fully sampled and can be skipped on an incremental rerun.
		var full bool
		nodeList, full, err = store.LoadNodes(ctx, fields[len(fields)-1], opts.Overwrite)
		if err != nil {
			return fail(3, err)
		}
		if !full {
			cmdutil.Warnf(stderr, opts.Quiet, "incremental rerun: %d nodes still unsampled", len(nodeList))
		}
	default:
		nodeList, err = nodes.ReadCSV(opts.NodesPath)
		if err != nil && !errors.Is(err, nodes.ErrNoNodes) {
			return fail(2, err)
		}
	}
	if len(nodeList) == 0 {
		cmdutil.Warnf(stderr, opts.Quiet, "no nodes to process")
		return 0
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	pcfg := pipeline.Config{
		Workers: workers,
		Geometry: transect.Config{
			Directions:          spec.Directions(),
			ZoneCount:           spec.ZoneCount,
			Spacing:             spec.SampleSpacing,
			UnitFactor:          unitFactor,
			IncludeStreamSample: spec.IncludeStreamSample,
			CheckpointKM:        blockKM,
		},
		ElevationFactor: elevFactor,
	}
	eng := engine.New(engine.Config{PadCells: opts.PadCells, MaxWindowCells: opts.MaxWindowCells})

	res := aggregate.New()
	if err := pipeline.Run(ctx, pcfg, nodeList, inputs, eng, res); err != nil {
		switch {
		case errors.Is(err, context.Canceled):
			return 130
		case errors.Is(err, schema.ErrInvalidConfig):
			return fail(2, err)
		default:
			return fail(3, err)
		}
	}

	if code := writePoints(opts, inputs, res, stdout, stderr); code != 0 {
		return code
	}

	if store != nil {
		if err := updateStore(ctx, store, fields, res); err != nil {
			return fail(3, err)
		}
	} else {
		// pipeline.Run sorted nodeList in place, so the table comes out in
		// (stream, km) order.
		if err := writeNodeTable(opts, nodeList, fields, res); err != nil {
			return fail(3, err)
		}
	}
	return 0
}

// Run is RunContext with a background context.
func Run(opts Options, stdout, stderr io.Writer) int {
	return RunContext(context.Background(), opts, stdout, stderr)
}

// specFrom merges the profile's sampling section with CLI overrides.
func specFrom(prof *profile.Profile, opts Options) schema.Spec {
	s := prof.Sampling
	spec := schema.Spec{
		TransectCount:       s.Transects,
		ZoneCount:           s.Zones,
		IncludeStreamSample: s.StreamSample || opts.StreamSample,
		SampleSpacing:       s.Spacing,
		DataKind:            schema.DataKind(s.DataKind),
		LegacyDirections:    s.LegacyDirections || opts.LegacyDirections,
	}
	if opts.Transects > 0 {
		spec.TransectCount = opts.Transects
	}
	if opts.Zones > 0 {
		spec.ZoneCount = opts.Zones
	}
	if opts.Spacing > 0 {
		spec.SampleSpacing = opts.Spacing
	}
	if opts.DataKind != "" {
		spec.DataKind = schema.DataKind(opts.DataKind)
	}
	return spec
}

func writePoints(opts Options, inputs []raster.Input, res *aggregate.Results, stdout, stderr io.Writer) int {
	out := stdout
	if opts.PointsOut != "" && opts.PointsOut != "-" {
		f, err := os.Create(opts.PointsOut)
		if err != nil {
			_, _ = fmt.Fprintln(stderr, err)
			return 3
		}
		defer func() { _ = f.Close() }()
		out = f
	}
	bw := bufio.NewWriter(out)

	roles := make([]raster.Role, len(inputs))
	for i, in := range inputs {
		roles[i] = in.Role
	}
	ch, errCh := writers.StartPointWriter(bw, opts.Format, roles, true, 0)
	for _, p := range res.Points() {
		ch <- p
	}
	close(ch)
	if err := <-errCh; err != nil && !writers.IsBrokenPipe(err) {
		_, _ = fmt.Fprintln(stderr, err)
		return 3
	}
	if err := bw.Flush(); err != nil && !writers.IsBrokenPipe(err) {
		_, _ = fmt.Fprintln(stderr, err)
		return 3
	}
	return 0
}

// updateStore writes aggregated values back into the node store, restricted
// to the schema's field list. The emergent elevation sample is recorded
// during aggregation but has no schema field, so it is dropped here.
func updateStore(ctx context.Context, store *nodestore.Store, fields []string, res *aggregate.Results) error {
	if err := store.EnsureFields(ctx, fields); err != nil {
		return err
	}
	allowed := make(map[string]bool, len(fields))
	for _, f := range fields {
		allowed[f] = true
	}
	for _, k := range res.Nodes() {
		vals := make(map[string]float64)
		for name, v := range res.FieldsFor(k) {
			if allowed[name] {
				vals[name] = v
			}
		}
		if len(vals) == 0 {
			continue
		}
		if err := store.UpdateFields(ctx, k.StreamID, k.NodeID, vals); err != nil {
			return err
		}
	}
	return nil
}

func writeNodeTable(opts Options, nodeList []transect.Node, fields []string, res *aggregate.Results) error {
	path := opts.NodesOut
	if path == "" {
		ext := filepath.Ext(opts.NodesPath)
		path = strings.TrimSuffix(opts.NodesPath, ext) + "_fields.csv"
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := writers.WriteNodeFields(f, nodeList, fields, res); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
