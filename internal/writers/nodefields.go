package writers

import (
	"encoding/csv"
	"io"
	"strconv"

	"lcsample-core/aggregate"
	"lcsample-core/transect"
)

// WriteNodeFields writes the per-node wide table: one row per node in the
// given order, with one column per aggregated field. Fields with no sampled
// value are left empty. Used when the node source is a CSV and there is no
// store to update in place.
func WriteNodeFields(out io.Writer, nodes []transect.Node, fields []string, res *aggregate.Results) error {
	w := csv.NewWriter(out)

	rec := []string{"stream_id", "node_id", "stream_km"}
	rec = append(rec, fields...)
	if err := w.Write(rec); err != nil {
		return err
	}

	for _, n := range nodes {
		vals := res.FieldsFor(aggregate.Key{StreamID: n.StreamID, NodeID: n.NodeID})
		rec = rec[:0]
		rec = append(rec, n.StreamID, strconv.Itoa(n.NodeID), formatFloat(n.StreamKM))
		for _, f := range fields {
			if v, ok := vals[f]; ok {
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
