package domain

// AxisBand is the coarse plausibility band for one coordinate axis. Bounds are
// exclusive. Ceiling is the magnitude above which a value is assumed to have
// lost its decimal point and is divided by ten.
type AxisBand struct {
	Min     float64
	Max     float64
	Ceiling float64
}

// Contains reports whether v lies strictly inside the band.
func (b AxisBand) Contains(v float64) bool {
	return b.Min < v && v < b.Max
}

// Box is the fine geofence. Bounds are inclusive on both ends, so a record
// exactly on the boundary is kept.
type Box struct {
	MinLat float64
	MaxLat float64
	MinLon float64
	MaxLon float64
}

// Contains reports whether (lat, lon) lies inside the box.
func (b Box) Contains(lat, lon float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat &&
		lon >= b.MinLon && lon <= b.MaxLon
}

// Region bundles everything that scopes a run to one study area.
type Region struct {
	// Locality is the municipality name records must match after normalization.
	Locality string

	CoarseLat AxisBand
	CoarseLon AxisBand

	// Floor stops the rescaling loop for values that are already tiny.
	Floor float64

	Fine Box
}

// DefaultRegion covers São Luís island, Maranhão.
func DefaultRegion() Region {
	return Region{
		Locality:  "SAO LUIS",
		CoarseLat: AxisBand{Min: -4.0, Max: -1.0, Ceiling: 4.0},
		CoarseLon: AxisBand{Min: -46.0, Max: -42.0, Ceiling: 46.0},
		Floor:     0.1,
		Fine: Box{
			MinLat: -2.80, MaxLat: -2.30,
			MinLon: -44.50, MaxLon: -44.00,
		},
	}
}

// WithLocality returns a copy of r targeting another municipality.
// The name is normalized so callers can pass it as typed.
func (r Region) WithLocality(name string) Region {
	r.Locality = NormalizeText(name)
	return r
}

// MatchesLocality reports whether an already normalized municipality is the
// region's target.
func (r Region) MatchesLocality(municipality string) bool {
	return municipality != "" && municipality == NormalizeText(r.Locality)
}

func (r Region) band(axis Axis) AxisBand {
	if axis == AxisLongitude {
		return r.CoarseLon
	}
	return r.CoarseLat
}
