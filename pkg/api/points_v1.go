// pkg/api/points_v1.go
package api

// PointV1 is the stable JSONL schema for sample-point detail records.
// Keep fields, names, and types stable. Add new fields only with ",omitempty".
// Values is keyed by raster role prefix (LC, ELE, HT, CAN, LAI, k, OH);
// transect 0 / zone 0 is the emergent sample at the node itself.
type PointV1 struct {
	X        float64            `json:"x"`
	Y        float64            `json:"y"`
	StreamID string             `json:"stream_id"`
	NodeID   int                `json:"node_id"`
	Azimuth  float64            `json:"azimuth"`
	Transect int                `json:"transect"`
	Zone     int                `json:"zone"`
	Values   map[string]float64 `json:"values"`
}
