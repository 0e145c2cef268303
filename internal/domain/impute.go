package domain

// Point is a (lat, lon) pair in decimal degrees.
type Point struct {
	Lat float64
	Lon float64
}

// LabeledPoint is a reference observation for nearest-neighbor lookup.
type LabeledPoint struct {
	Point
	Label string
}

// NearestNeighbor is a brute-force 1-NN classifier over planar Euclidean
// distance in degrees. The study area is small enough that the distortion of
// treating degrees as a plane does not change which sample is closest.
type NearestNeighbor struct {
	refs []LabeledPoint
}

// NewNearestNeighbor builds a classifier over refs. The slice is copied.
func NewNearestNeighbor(refs []LabeledPoint) *NearestNeighbor {
	cp := make([]LabeledPoint, len(refs))
	copy(cp, refs)
	return &NearestNeighbor{refs: cp}
}

// Len returns the number of reference points.
func (nn *NearestNeighbor) Len() int {
	return len(nn.refs)
}

// Predict returns the label of the reference closest to p. On equal distance
// the earliest reference wins. It returns false when there are no references.
func (nn *NearestNeighbor) Predict(p Point) (string, bool) {
	if len(nn.refs) == 0 {
		return "", false
	}

	best := 0
	bestDist := sqDist(p, nn.refs[0].Point)
	for i := 1; i < len(nn.refs); i++ {
		if d := sqDist(p, nn.refs[i].Point); d < bestDist {
			best, bestDist = i, d
		}
	}
	return nn.refs[best].Label, true
}

func sqDist(a, b Point) float64 {
	dLat := a.Lat - b.Lat
	dLon := a.Lon - b.Lon
	return dLat*dLat + dLon*dLon
}

// ImputeWaterBodies fills empty water-body names from the geographically
// nearest record that has one. Records with a name form the reference set;
// records without one are the targets. When either set is empty the input is
// returned unchanged. It returns a new slice and the number of records filled.
// A name that normalizes to "" (e.g. whitespace only) counts as missing, so
// such a record is a target and never a reference.
func ImputeWaterBodies(records []Record) ([]Record, int) {
	var refs []LabeledPoint
	missing := 0
	for _, r := range records {
		if r.WaterBody == "" {
			missing++
			continue
		}
		refs = append(refs, LabeledPoint{Point: Point{Lat: r.Lat, Lon: r.Lon}, Label: r.WaterBody})
	}

	out := make([]Record, len(records))
	copy(out, records)
	if missing == 0 || len(refs) == 0 {
		return out, 0
	}

	nn := NewNearestNeighbor(refs)
	imputed := 0
	for i := range out {
		if out[i].WaterBody != "" {
			continue
		}
		label, ok := nn.Predict(Point{Lat: out[i].Lat, Lon: out[i].Lon})
		if !ok {
			continue
		}
		out[i].WaterBody = label
		out[i].Imputed = true
		imputed++
	}
	return out, imputed
}
