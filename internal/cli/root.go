// Package cli builds the lcsample command tree and merges flag, environment,
// and config-file settings into a run configuration.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"lcsample/internal/app"
	"lcsample/internal/config"
	"lcsample/internal/writers"
)

// version is stamped at build time via -ldflags "-X lcsample/internal/cli.version=...".
var version = "dev"

const longHelp = `Sample landcover and elevation rasters at star-pattern transect points
around stream nodes.

Nodes come from a CSV table or a SQLite node store; rasters and the sampling
layout come from a TOML profile. Aggregated per-node values are written back
to the node store (or to a wide CSV next to a CSV source), and the flat
sample-point detail table goes to stdout or --points-out.`

// Execute parses argv, runs the sampling command, and returns the process
// exit code.
func Execute(ctx context.Context, argv []string, stdout, stderr io.Writer) int {
	code := 0
	root := newRoot(&code, stdout, stderr)
	root.SetArgs(argv)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintln(stderr, err)
		return 2
	}
	return code
}

// newRoot builds a fresh command so tests can run Execute concurrently
// without shared flag state.
func newRoot(code *int, stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "lcsample",
		Version:       version,
		Short:         "Sample rasters around stream nodes",
		Long:          longHelp,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			initConfig(cmd)
			opts, err := optionsFrom(cmd, config.Load())
			if err != nil {
				return err
			}
			*code = app.RunContext(cmd.Context(), opts, stdout, stderr)
			return nil
		},
	}

	fl := root.Flags()
	fl.String("config", "", "config file (default .lcsample.toml)")
	fl.StringP("nodes", "n", "", "stream node source: .csv table or .db/.sqlite store (required)")
	fl.StringP("profile", "p", "", "raster profile TOML (required)")
	fl.StringP("points-out", "o", "", "sample-point detail output path (default stdout)")
	fl.String("nodes-out", "", "per-node field table path for CSV node sources")
	fl.String("format", "", "detail output format: csv or jsonl")
	fl.Int("workers", 0, "stream worker goroutines (default NumCPU)")
	fl.Float64("block-km", 0, "stream-km interval between sampling blocks")
	fl.Int("max-window-cells", 0, "abort when a raster window exceeds this many cells (0 = unbounded)")
	fl.Float64("pad-cells", 0, "window bounding-box padding in cell widths")
	fl.Bool("overwrite", false, "resample nodes that already have values")
	fl.BoolP("quiet", "q", false, "suppress warnings")
	fl.String("crs-units", "", "linear unit of the node coordinate system")
	fl.String("elevation-units", "", "elevation raster z units (overrides profile)")
	fl.Int("transects", 0, "transect count (overrides profile)")
	fl.Int("zones", 0, "samples per transect (overrides profile)")
	fl.Float64("spacing", 0, "sample spacing in meters (overrides profile)")
	fl.String("data-kind", "", "data kind: Codes, CanopyCover, or LAI (overrides profile)")
	fl.Bool("stream-sample", false, "sample the stream surface at the node itself")
	fl.Bool("legacy-directions", false, "use the seven fixed heatsource 8 azimuths")

	_ = root.MarkFlagRequired("nodes")
	_ = root.MarkFlagRequired("profile")
	return root
}

func initConfig(cmd *cobra.Command) {
	if cfgFile, _ := cmd.Flags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".lcsample")
		viper.SetConfigType("toml")
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
	}

	viper.SetEnvPrefix("LCSAMPLE")
	viper.AutomaticEnv()

	// No config file is fine; defaults apply.
	_ = viper.ReadInConfig()
}

// optionsFrom starts from the config-file/env layer and applies any flags
// the user actually set on top.
func optionsFrom(cmd *cobra.Command, cfg config.Config) (app.Options, error) {
	fl := cmd.Flags()
	opts := app.Options{
		Format:         cfg.Format,
		Workers:        cfg.Workers,
		BlockKM:        cfg.BlockKM,
		MaxWindowCells: cfg.MaxWindowCells,
		PadCells:       cfg.PadCells,
		Overwrite:      cfg.Overwrite,
		Quiet:          cfg.Quiet,
		CRSUnits:       cfg.CRSUnits,
	}

	opts.NodesPath, _ = fl.GetString("nodes")
	opts.ProfilePath, _ = fl.GetString("profile")
	opts.PointsOut, _ = fl.GetString("points-out")
	opts.NodesOut, _ = fl.GetString("nodes-out")
	opts.ElevationUnits, _ = fl.GetString("elevation-units")

	if fl.Changed("format") {
		opts.Format, _ = fl.GetString("format")
	}
	if fl.Changed("workers") {
		opts.Workers, _ = fl.GetInt("workers")
	}
	if fl.Changed("block-km") {
		opts.BlockKM, _ = fl.GetFloat64("block-km")
		opts.BlockKMSet = true
	}
	if fl.Changed("max-window-cells") {
		opts.MaxWindowCells, _ = fl.GetInt("max-window-cells")
	}
	if fl.Changed("pad-cells") {
		opts.PadCells, _ = fl.GetFloat64("pad-cells")
	}
	if fl.Changed("overwrite") {
		opts.Overwrite, _ = fl.GetBool("overwrite")
	}
	if fl.Changed("quiet") {
		opts.Quiet, _ = fl.GetBool("quiet")
	}
	if fl.Changed("crs-units") {
		opts.CRSUnits, _ = fl.GetString("crs-units")
	}

	opts.Transects, _ = fl.GetInt("transects")
	opts.Zones, _ = fl.GetInt("zones")
	opts.Spacing, _ = fl.GetFloat64("spacing")
	opts.DataKind, _ = fl.GetString("data-kind")
	opts.StreamSample, _ = fl.GetBool("stream-sample")
	opts.LegacyDirections, _ = fl.GetBool("legacy-directions")

	if !writers.ValidFormat(opts.Format) {
		return opts, fmt.Errorf("unsupported detail format %q (want csv or jsonl)", opts.Format)
	}
	if opts.Workers < 0 {
		return opts, fmt.Errorf("--workers must be >= 0, got %d", opts.Workers)
	}
	if opts.BlockKMSet && opts.BlockKM <= 0 {
		return opts, fmt.Errorf("--block-km must be > 0, got %g", opts.BlockKM)
	}
	return opts, nil
}
