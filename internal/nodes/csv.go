// Package nodes loads stream node records from CSV sources.
package nodes

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"lcsample-core/transect"
)

// ErrNoNodes signals that the node source yielded nothing to process. It is
// "nothing to do", not a crash: callers warn and exit cleanly.
var ErrNoNodes = errors.New("no nodes to process")

// csvHeader is the required column layout, in order.
var csvHeader = []string{"stream_id", "node_id", "stream_km", "x", "y"}

// ReadCSV loads nodes from a headered CSV file.
func ReadCSV(path string) ([]transect.Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("nodes: %w", err)
	}
	defer f.Close()
	ns, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("nodes: %s: %w", path, err)
	}
	return ns, nil
}

// Read parses node records from r. The header row must match
// stream_id,node_id,stream_km,x,y exactly (case-insensitive).
func Read(r io.Reader) ([]transect.Node, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrNoNodes
	}
	if err != nil {
		return nil, err
	}
	if len(header) != len(csvHeader) {
		return nil, fmt.Errorf("header has %d columns, want %v", len(header), csvHeader)
	}
	for i, h := range header {
		if !strings.EqualFold(strings.TrimSpace(h), csvHeader[i]) {
			return nil, fmt.Errorf("header column %d is %q, want %q", i, h, csvHeader[i])
		}
	}

	var out []transect.Node
	line := 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++
		n, err := parseRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, n)
	}
	if len(out) == 0 {
		return nil, ErrNoNodes
	}
	return out, nil
}

func parseRecord(rec []string) (transect.Node, error) {
	var n transect.Node
	n.StreamID = strings.TrimSpace(rec[0])
	if n.StreamID == "" {
		return n, fmt.Errorf("empty stream_id")
	}
	id, err := strconv.Atoi(strings.TrimSpace(rec[1]))
	if err != nil {
		return n, fmt.Errorf("bad node_id %q", rec[1])
	}
	n.NodeID = id
	for _, f := range []struct {
		name string
		val  string
		dst  *float64
	}{
		{"stream_km", rec[2], &n.StreamKM},
		{"x", rec[3], &n.X},
		{"y", rec[4], &n.Y},
	} {
		v, err := strconv.ParseFloat(strings.TrimSpace(f.val), 64)
		if err != nil {
			return n, fmt.Errorf("bad %s %q", f.name, f.val)
		}
		*f.dst = v
	}
	return n, nil
}
