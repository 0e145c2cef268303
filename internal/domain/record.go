package domain

import "time"

// Parameter is the canonical short name of a measured water-quality parameter.
type Parameter string

const (
	ParamPH              Parameter = "ph"
	ParamDissolvedOxygen Parameter = "od"
	ParamTurbidity       Parameter = "turbidez"
	ParamTemperature     Parameter = "temperatura"
	ParamConductivity    Parameter = "condutividade"
	ParamDissolvedSolids Parameter = "std"
	ParamPhosphorus      Parameter = "fosforo"
	ParamNitrogen        Parameter = "nitrogenio"
	ParamSalinity        Parameter = "salinidade"
)

// Parameters lists every measurement in output column order.
var Parameters = []Parameter{
	ParamPH,
	ParamDissolvedOxygen,
	ParamTurbidity,
	ParamTemperature,
	ParamConductivity,
	ParamDissolvedSolids,
	ParamPhosphorus,
	ParamNitrogen,
	ParamSalinity,
}

// Canonical names of the non-measurement source columns.
const (
	ColMunicipality   = "municipio"
	ColWaterBody      = "rio"
	ColCollectionDate = "data"
	ColLatitude       = "latitude"
	ColLongitude      = "longitude"
)

// SourceColumn pairs a header of the survey spreadsheet with its canonical name.
type SourceColumn struct {
	Header string
	Name   string
}

// SourceColumns lists the recognized spreadsheet headers in export order.
// Headers are matched byte for byte, including the embedded line breaks some
// exports carry.
var SourceColumns = []SourceColumn{
	{"Nome Municipio", ColMunicipality},
	{"Nome do Corpo D'Água", ColWaterBody},
	{"Data da Coleta (dd/mm/aaaa)", ColCollectionDate},
	{"Posição horizontal da coleta (latitude)", ColLatitude},
	{"Posição vertical da coleta (longitude)", ColLongitude},
	{"pH", string(ParamPH)},
	{"Oxigênio dissolvido (mg/L 02)", string(ParamDissolvedOxygen)},
	{"Turbidez (NTU)", string(ParamTurbidity)},
	{"Temperatura da água (°C)", string(ParamTemperature)},
	{"Condutividade Elétrica Específica (25°C) (µS/cm a 25°C)", string(ParamConductivity)},
	{"Sólidos Dissolvidos (mg/L)", string(ParamDissolvedSolids)},
	{"Fósforo Total\n (mg/L de P)", string(ParamPhosphorus)},
	{"Nitrogênio Amoniacal\n (mg/L de N)", string(ParamNitrogen)},
	{"Salinidade (‰)", string(ParamSalinity)},
}

// SourceHeaders maps each recognized header to its canonical name.
var SourceHeaders = func() map[string]string {
	m := make(map[string]string, len(SourceColumns))
	for _, c := range SourceColumns {
		m[c.Header] = c.Name
	}
	return m
}()

// RawRecord is one survey row as read from the source, before any correction.
// Blank cells are empty strings. Measurements only holds the parameters whose
// column exists in the source.
type RawRecord struct {
	Row            int
	Municipality   string
	WaterBody      string
	CollectionDate string
	Latitude       string
	Longitude      string
	Measurements   map[Parameter]string
}

// Measurements holds coerced readings keyed by parameter. A missing key and a
// Sentinel value both mean "not measured".
type Measurements map[Parameter]float64

// Value returns the reading for p, or Sentinel when absent.
func (m Measurements) Value(p Parameter) float64 {
	if v, ok := m[p]; ok {
		return v
	}
	return Sentinel
}

// Record is a cleaned survey observation.
type Record struct {
	Municipality string
	WaterBody    string
	CollectedOn  time.Time
	Lat          float64
	Lon          float64
	Measurements Measurements
	Outcome      Outcome

	// Imputed is true when WaterBody was filled from the nearest neighbor.
	Imputed bool

	Raw RawRecord
}

// Year returns the collection year, the dashboard's primary filter.
func (r Record) Year() int {
	return r.CollectedOn.Year()
}
