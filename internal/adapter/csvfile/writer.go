package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/couchcryptid/water-quality-etl/internal/domain"
)

// Derived output columns.
const (
	ColProblemCount   = "indice_problemas"
	ColProblemList    = "lista_problemas"
	ColVerdict        = "resultado_final"
	ColStatusPH       = "status_ph"
	ColStatusOD       = "status_od"
	ColStatusTurbidez = "status_turbidez"
	ColYear           = "ano"
)

// Header is the fixed column order consumed by the dashboard.
var Header = func() []string {
	h := []string{
		domain.ColMunicipality,
		domain.ColWaterBody,
		domain.ColCollectionDate,
		domain.ColLatitude,
		domain.ColLongitude,
	}
	for _, p := range domain.Parameters {
		h = append(h, string(p))
	}
	return append(h,
		ColProblemCount,
		ColProblemList,
		ColVerdict,
		ColStatusPH,
		ColStatusOD,
		ColStatusTurbidez,
		ColYear,
	)
}()

// Writer persists cleaned records as a comma-delimited file, replacing any
// previous artifact at the same path.
type Writer struct {
	path   string
	logger *slog.Logger
}

// NewWriter creates a Writer targeting path.
func NewWriter(path string, logger *slog.Logger) *Writer {
	return &Writer{path: path, logger: logger}
}

// Destination returns the artifact path.
func (w *Writer) Destination() string {
	return w.path
}

// Load writes records to a temporary file next to the artifact and renames it
// into place, so readers never observe a partially written file.
func (w *Writer) Load(ctx context.Context, records []domain.Record) error {
	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(w.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // no-op once renamed

	if err := writeRecords(ctx, tmp, records); err != nil {
		tmp.Close() //nolint:errcheck,gosec // write error takes precedence
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, w.path); err != nil {
		return fmt.Errorf("replace artifact: %w", err)
	}

	w.logger.Info("artifact written", "path", w.path, "rows", len(records))
	return nil
}

func writeRecords(ctx context.Context, f *os.File, records []domain.Record) error {
	cw := csv.NewWriter(f)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i := range records {
		if i%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if err := cw.Write(row(records[i])); err != nil {
			return fmt.Errorf("write row %d: %w", records[i].Raw.Row, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func row(r domain.Record) []string {
	out := make([]string, 0, len(Header))
	out = append(out,
		r.Municipality,
		r.WaterBody,
		r.CollectedOn.Format(domain.DateLayout),
		FormatFloat(r.Lat),
		FormatFloat(r.Lon),
	)
	for _, p := range domain.Parameters {
		out = append(out, FormatFloat(r.Measurements.Value(p)))
	}
	return append(out,
		strconv.Itoa(r.Outcome.ProblemCount()),
		r.Outcome.ProblemList(),
		string(r.Outcome.Verdict),
		string(r.Outcome.Status(domain.ParamPH)),
		string(r.Outcome.Status(domain.ParamDissolvedOxygen)),
		string(r.Outcome.Status(domain.ParamTurbidity)),
		strconv.Itoa(r.Year()),
	)
}

// FormatFloat renders v in its shortest form, always with a decimal point,
// so the sentinel is written as "0.0" and never as a blank or integer.
func FormatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
