package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/water-quality-etl/internal/domain"
	"github.com/couchcryptid/water-quality-etl/internal/observability"
)

// coordinateSampleSize is how many rows are logged before and after
// coordinate correction to help spot new data-entry patterns.
const coordinateSampleSize = 3

// SurveyTransformer runs the cleaning stages that turn raw survey rows into
// classified records for one study region.
type SurveyTransformer struct {
	region  domain.Region
	rules   domain.Ruleset
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewTransformer creates a SurveyTransformer for the given region and ruleset.
func NewTransformer(region domain.Region, rules domain.Ruleset, logger *slog.Logger, metrics *observability.Metrics) *SurveyTransformer {
	return &SurveyTransformer{
		region:  region,
		rules:   rules,
		logger:  logger,
		metrics: metrics,
	}
}

// Region returns the study region the transformer filters on.
func (t *SurveyTransformer) Region() domain.Region {
	return t.region
}

// Transform cleans raw rows in a single forward pass and records per-stage
// counts in summary. It fails with domain.ErrNoLocalityRecords when no row
// belongs to the target municipality.
func (t *SurveyTransformer) Transform(ctx context.Context, raws []domain.RawRecord, summary *domain.RunSummary) ([]domain.Record, error) {
	summary.RowsRead = len(raws)
	t.metrics.RowsRead.Add(float64(len(raws)))

	records := t.parseDates(raws, summary)
	records = t.filterLocality(records, summary)
	if len(records) == 0 {
		return nil, fmt.Errorf("filter municipality %q: %w", t.region.Locality, domain.ErrNoLocalityRecords)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	records = t.correctCoordinates(records, summary)
	records = t.geofence(records, summary)

	records, imputed := domain.ImputeWaterBodies(records)
	summary.Imputed = imputed
	t.metrics.RowsImputed.Add(float64(imputed))
	if imputed > 0 {
		t.logger.Info("water bodies imputed", "count", imputed)
	}

	for i := range records {
		records[i].Measurements = domain.CoerceMeasurements(records[i].Raw.Measurements)
		records[i].Outcome = t.rules.Classify(records[i].Measurements)
	}
	return records, nil
}

func (t *SurveyTransformer) parseDates(raws []domain.RawRecord, summary *domain.RunSummary) []domain.Record {
	out := make([]domain.Record, 0, len(raws))
	for _, raw := range raws {
		date, ok := domain.ParseCollectionDate(raw.CollectionDate)
		if !ok {
			t.logger.Debug("dropping row with invalid date", "row", raw.Row, "value", raw.CollectionDate)
			summary.DroppedDate++
			continue
		}
		out = append(out, domain.Record{
			Municipality: domain.NormalizeText(raw.Municipality),
			WaterBody:    domain.NormalizeText(raw.WaterBody),
			CollectedOn:  date,
			Raw:          raw,
		})
	}
	t.metrics.RowsDropped.WithLabelValues(observability.DropDate).Add(float64(summary.DroppedDate))
	return out
}

func (t *SurveyTransformer) filterLocality(records []domain.Record, summary *domain.RunSummary) []domain.Record {
	out := records[:0]
	for _, r := range records {
		if !t.region.MatchesLocality(r.Municipality) {
			summary.DroppedLocality++
			continue
		}
		out = append(out, r)
	}
	t.metrics.RowsDropped.WithLabelValues(observability.DropLocality).Add(float64(summary.DroppedLocality))
	return out
}

func (t *SurveyTransformer) correctCoordinates(records []domain.Record, summary *domain.RunSummary) []domain.Record {
	t.logCoordinateSample("coordinates before correction", records, true)

	out := records[:0]
	for _, r := range records {
		lat, okLat := domain.CorrectCoordinate(r.Raw.Latitude, domain.AxisLatitude, t.region)
		lon, okLon := domain.CorrectCoordinate(r.Raw.Longitude, domain.AxisLongitude, t.region)
		if !okLat || !okLon {
			t.logger.Debug("dropping row with unrecoverable coordinates",
				"row", r.Raw.Row, "latitude", r.Raw.Latitude, "longitude", r.Raw.Longitude)
			summary.DroppedCoordinate++
			continue
		}
		r.Lat, r.Lon = lat, lon
		out = append(out, r)
	}
	t.metrics.RowsDropped.WithLabelValues(observability.DropCoordinate).Add(float64(summary.DroppedCoordinate))

	t.logCoordinateSample("coordinates after correction", out, false)
	return out
}

func (t *SurveyTransformer) geofence(records []domain.Record, summary *domain.RunSummary) []domain.Record {
	before := len(records)
	out := records[:0]
	for _, r := range records {
		if t.region.Fine.Contains(r.Lat, r.Lon) {
			out = append(out, r)
		}
	}
	summary.DroppedGeofence = before - len(out)
	t.metrics.RowsDropped.WithLabelValues(observability.DropGeofence).Add(float64(summary.DroppedGeofence))
	t.logger.Info("records within geofence", "kept", len(out), "of", before)
	return out
}

func (t *SurveyTransformer) logCoordinateSample(msg string, records []domain.Record, raw bool) {
	if !t.logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	for i := 0; i < len(records) && i < coordinateSampleSize; i++ {
		r := records[i]
		if raw {
			t.logger.Debug(msg, "row", r.Raw.Row, "latitude", r.Raw.Latitude, "longitude", r.Raw.Longitude)
			continue
		}
		t.logger.Debug(msg, "row", r.Raw.Row, "latitude", r.Lat, "longitude", r.Lon)
	}
}
