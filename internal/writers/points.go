// Package writers streams the flat sample-point detail table to an output
// sink. Each writer runs in its own goroutine fed by a channel; the caller
// closes the channel and then reads the single error result.
package writers

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"lcsample-core/raster"
	"lcsample-core/transect"
	"lcsample/internal/jsonlutil"
	"lcsample/pkg/api"
)

// Output formats for the detail table.
const (
	FormatCSV   = "csv"
	FormatJSONL = "jsonl"
)

// ValidFormat reports whether the named detail format is supported.
func ValidFormat(format string) bool {
	return format == FormatCSV || format == FormatJSONL
}

// StartPointWriter spins up a writer goroutine for sample points. roles
// fixes the value-column layout; header controls the CSV header row.
func StartPointWriter(out io.Writer, format string, roles []raster.Role, header bool, bufSize int) (chan<- *transect.Point, <-chan error) {
	if bufSize <= 0 {
		bufSize = 64
	}
	if format == FormatJSONL {
		return jsonlutil.Start(out, bufSize, func(enc *json.Encoder, p *transect.Point) error {
			return enc.Encode(pointV1(p, roles))
		}, IsBrokenPipe)
	}

	in := make(chan *transect.Point, bufSize)
	errCh := make(chan error, 1)

	go func() {
		var err error
		switch format {
		case FormatCSV:
			err = writeCSV(out, in, roles, header)
		default:
			err = fmt.Errorf("unsupported detail format %q", format)
		}
		// Drain so producers never block after a write failure.
		for range in {
		}
		errCh <- err
	}()

	return in, errCh
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func writeCSV(out io.Writer, in <-chan *transect.Point, roles []raster.Role, header bool) error {
	w := csv.NewWriter(out)
	if header {
		rec := []string{"x", "y", "stream_id", "node_id", "azimuth", "transect", "zone"}
		for _, r := range roles {
			rec = append(rec, r.Prefix())
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	for p := range in {
		rec := []string{
			formatFloat(p.X), formatFloat(p.Y),
			p.StreamID, strconv.Itoa(p.NodeID),
			formatFloat(p.Azimuth), strconv.Itoa(p.Transect), strconv.Itoa(p.Zone),
		}
		for _, r := range roles {
			if v, ok := p.Values[r]; ok {
				rec = append(rec, formatFloat(v))
			} else {
				rec = append(rec, "")
			}
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// pointV1 maps a sample point onto the stable JSONL wire schema.
func pointV1(p *transect.Point, roles []raster.Role) api.PointV1 {
	rec := api.PointV1{
		X: p.X, Y: p.Y,
		StreamID: p.StreamID, NodeID: p.NodeID,
		Azimuth: p.Azimuth, Transect: p.Transect, Zone: p.Zone,
		Values: make(map[string]float64, len(roles)),
	}
	for _, r := range roles {
		if v, ok := p.Values[r]; ok {
			rec.Values[r.Prefix()] = v
		}
	}
	return rec
}
