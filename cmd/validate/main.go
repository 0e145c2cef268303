// Command validate checks a cleaned survey artifact against the contract the
// dashboard relies on: fixed header, normalized text, parseable dates that
// agree with the year column, coordinates inside the geofence, measurements
// with a decimal point, and classification columns that match a fresh
// evaluation of the compliance rules. With -source it also re-runs the
// transformer on the raw workbook and compares the results row by row.
//
// Usage:
//
//	go run ./cmd/validate -csv data/processed/dados_tratados_tcc.csv
//	go run ./cmd/validate -csv data/processed/dados_tratados_tcc.csv -source data/raw/dados_brutos.xlsx
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/water-quality-etl/internal/adapter/csvfile"
	"github.com/couchcryptid/water-quality-etl/internal/adapter/excel"
	"github.com/couchcryptid/water-quality-etl/internal/domain"
	"github.com/couchcryptid/water-quality-etl/internal/observability"
	"github.com/couchcryptid/water-quality-etl/internal/pipeline"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

// maxErrors caps the detail printed per phase.
const maxErrors = 25

func main() {
	csvPath := flag.String("csv", "", "path to the cleaned CSV artifact")
	sourcePath := flag.String("source", "", "optional raw survey workbook to re-run and compare against")
	sheet := flag.String("sheet", "", "worksheet of -source (default: first sheet)")
	locality := flag.String("locality", "SAO LUIS", "municipality every row must belong to")
	flag.Parse()

	if *csvPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	os.Exit(run(*csvPath, *sourcePath, *sheet, *locality))
}

func run(csvPath, sourcePath, sheet, locality string) int {
	fmt.Println("=== Water Quality Artifact Validation ===")
	fmt.Println()

	header, rows, err := loadCSV(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load artifact: %v\n", err)
		return 1
	}

	region := domain.DefaultRegion().WithLocality(locality)
	phases := []*phase{
		validateSchema(header, rows),
		validateRecords(rows, region),
		validateMeasurements(rows),
		validateClassification(rows, domain.DefaultRuleset()),
	}
	if sourcePath != "" {
		phases = append(phases, validateSourceParity(rows, sourcePath, sheet, region))
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Rows: %d in %s\n", len(rows), csvPath)

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			if i == maxErrors {
				fmt.Printf("  ... %d more\n", len(p.errors)-maxErrors)
				break
			}
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Data loading ──

// csvRow is a parsed CSV row with field values keyed by header name.
type csvRow struct {
	lineNum int
	width   int
	fields  map[string]string
}

func loadCSV(path string) ([]string, []csvRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	all, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(all) == 0 {
		return nil, nil, fmt.Errorf("empty file %s", path)
	}

	header := all[0]
	rows := make([]csvRow, 0, len(all)-1)
	for i, row := range all[1:] {
		fields := make(map[string]string, len(header))
		for j, h := range header {
			if j < len(row) {
				fields[h] = row[j]
			}
		}
		rows = append(rows, csvRow{lineNum: i + 2, width: len(row), fields: fields})
	}
	return header, rows, nil
}

// ── Phase 1: Schema ──

func validateSchema(header []string, rows []csvRow) *phase {
	p := &phase{name: "Phase 1: Schema (header, row width)"}

	if !slices.Equal(header, csvfile.Header) {
		p.errorf("header mismatch:\n      got  %s\n      want %s",
			strings.Join(header, ","), strings.Join(csvfile.Header, ","))
	}
	for _, row := range rows {
		if row.width != len(csvfile.Header) {
			p.errorf("line %d: %d fields, want %d", row.lineNum, row.width, len(csvfile.Header))
		}
	}
	return p
}

// ── Phase 2: Records ──
// Text is normalized, the date parses and agrees with ano, and the position
// lies inside the fine geofence.

func validateRecords(rows []csvRow, region domain.Region) *phase {
	p := &phase{name: "Phase 2: Records (text, dates, geofence)"}

	for _, row := range rows {
		f := row.fields
		ln := row.lineNum

		if m := f[domain.ColMunicipality]; !region.MatchesLocality(m) {
			p.errorf("line %d: municipio %q, want %q", ln, m, region.Locality)
		}
		if rio := f[domain.ColWaterBody]; domain.NormalizeText(rio) != rio {
			p.errorf("line %d: rio %q is not normalized", ln, rio)
		}

		checkDate(p, ln, f[domain.ColCollectionDate], f[csvfile.ColYear])
		checkPosition(p, ln, f[domain.ColLatitude], f[domain.ColLongitude], region.Fine)
	}
	return p
}

func checkDate(p *phase, ln int, date, year string) {
	d, err := time.Parse(domain.DateLayout, date)
	if err != nil {
		p.errorf("line %d: data %q is not %s", ln, date, domain.DateLayout)
		return
	}
	y, err := strconv.Atoi(year)
	if err != nil {
		p.errorf("line %d: ano %q is not an integer", ln, year)
		return
	}
	if d.Year() != y {
		p.errorf("line %d: ano %d does not match data %s", ln, y, date)
	}
}

func checkPosition(p *phase, ln int, latS, lonS string, fence domain.Box) {
	lat, err1 := strconv.ParseFloat(latS, 64)
	lon, err2 := strconv.ParseFloat(lonS, 64)
	if err1 != nil || err2 != nil {
		p.errorf("line %d: unparseable position (%q, %q)", ln, latS, lonS)
		return
	}
	if !fence.Contains(lat, lon) {
		p.errorf("line %d: position (%g, %g) outside geofence", ln, lat, lon)
	}
}

// ── Phase 3: Measurements ──

func validateMeasurements(rows []csvRow) *phase {
	p := &phase{name: "Phase 3: Measurements (numeric, decimal)"}

	for _, row := range rows {
		for _, param := range domain.Parameters {
			s := row.fields[string(param)]
			v, err := strconv.ParseFloat(s, 64)
			switch {
			case err != nil:
				p.errorf("line %d: %s %q is not numeric", row.lineNum, param, s)
			case math.IsNaN(v) || math.IsInf(v, 0):
				p.errorf("line %d: %s %q is not finite", row.lineNum, param, s)
			case !strings.Contains(s, "."):
				p.errorf("line %d: %s %q has no decimal point", row.lineNum, param, s)
			}
		}
	}
	return p
}

// ── Phase 4: Classification ──
// Re-evaluates the rules from the written measurements and compares every
// derived column.

func validateClassification(rows []csvRow, rules domain.Ruleset) *phase {
	p := &phase{name: "Phase 4: Classification (rules, verdict)"}

	for _, row := range rows {
		f := row.fields
		m := make(domain.Measurements, len(domain.Parameters))
		for _, param := range domain.Parameters {
			m[param] = domain.ParseMeasurement(f[string(param)])
		}
		want := rules.Classify(m)

		if got := f[csvfile.ColProblemCount]; got != strconv.Itoa(want.ProblemCount()) {
			p.errorf("line %d: indice_problemas %q, want %d", row.lineNum, got, want.ProblemCount())
		}
		if got := f[csvfile.ColProblemList]; got != want.ProblemList() {
			p.errorf("line %d: lista_problemas %q, want %q", row.lineNum, got, want.ProblemList())
		}
		if got := f[csvfile.ColVerdict]; got != string(want.Verdict) {
			p.errorf("line %d: resultado_final %q, want %q", row.lineNum, got, want.Verdict)
		}

		statusCols := []struct {
			col   string
			param domain.Parameter
		}{
			{csvfile.ColStatusPH, domain.ParamPH},
			{csvfile.ColStatusOD, domain.ParamDissolvedOxygen},
			{csvfile.ColStatusTurbidez, domain.ParamTurbidity},
		}
		for _, sc := range statusCols {
			if got := f[sc.col]; got != string(want.Status(sc.param)) {
				p.errorf("line %d: %s %q, want %q", row.lineNum, sc.col, got, want.Status(sc.param))
			}
		}
	}
	return p
}

// ── Phase 5: Source Parity ──
// Re-runs extraction and transformation on the raw workbook and checks that
// the artifact holds the same rows in the same order.

func validateSourceParity(rows []csvRow, sourcePath, sheet string, region domain.Region) *phase {
	p := &phase{name: "Phase 5: Source Parity (re-run transform)"}

	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	raws, err := excel.NewReader(sourcePath, sheet, quiet).Extract(context.Background())
	if err != nil {
		p.errorf("extract %s: %v", sourcePath, err)
		return p
	}
	transformer := pipeline.NewTransformer(region, domain.DefaultRuleset(), quiet, observability.NewMetricsForTesting())
	var summary domain.RunSummary
	records, err := transformer.Transform(context.Background(), raws, &summary)
	if err != nil {
		p.errorf("transform: %v", err)
		return p
	}

	if len(records) != len(rows) {
		p.errorf("row count: artifact has %d, source yields %d", len(rows), len(records))
	}

	for i := range min(len(records), len(rows)) {
		r, f, ln := records[i], rows[i].fields, rows[i].lineNum
		pairs := []struct{ col, want string }{
			{domain.ColMunicipality, r.Municipality},
			{domain.ColWaterBody, r.WaterBody},
			{domain.ColCollectionDate, r.CollectedOn.Format(domain.DateLayout)},
			{domain.ColLatitude, csvfile.FormatFloat(r.Lat)},
			{domain.ColLongitude, csvfile.FormatFloat(r.Lon)},
			{csvfile.ColVerdict, string(r.Outcome.Verdict)},
		}
		for _, pr := range pairs {
			if f[pr.col] != pr.want {
				p.errorf("line %d (source row %d): %s %q, want %q", ln, r.Raw.Row, pr.col, f[pr.col], pr.want)
			}
		}
	}
	return p
}
