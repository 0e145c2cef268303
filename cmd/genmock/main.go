// Command genmock writes a synthetic survey workbook with the defects real
// exports carry: shifted decimal points, missing signs, comma separators,
// mixed date formats, impossible dates, blank water bodies and rows from
// other municipalities. It then runs the workbook through the real extractor
// and transformer and prints what a pipeline run would keep.
//
// Usage:
//
//	go run ./cmd/genmock -out data/raw/dados_brutos.xlsx -rows 500 -seed 7
//	go run ./cmd/genmock -out /tmp/survey.xlsx -json internal/pipeline/testdata/generated.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/water-quality-etl/internal/adapter/excel"
	"github.com/couchcryptid/water-quality-etl/internal/domain"
	"github.com/couchcryptid/water-quality-etl/internal/observability"
	"github.com/couchcryptid/water-quality-etl/internal/pipeline"
	"github.com/xuri/excelize/v2"
)

var (
	firstDate = time.Date(2016, time.January, 1, 0, 0, 0, 0, time.UTC)
	excelZero = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)
)

var (
	targetSpellings = []string{"São Luís", "SAO LUIS", "Sao Luis ", "são luís", "SÃO LUÍS"}
	otherTowns      = []string{"Paço do Lumiar", "São José de Ribamar", "Raposa", "Alcântara"}
	waterBodies     = []string{"Rio Anil", "Rio Bacanga", "Rio Paciência", "Rio Calhau", "Rio Tibiri", "Igarapé do Jaracati"}
)

// rowKind tags how a generated row is expected to fare in the pipeline.
type rowKind int

const (
	kindClean rowKind = iota
	kindBadDate
	kindOtherTown
	kindBadCoordinate
	kindOutsideFence
)

type generator struct {
	rng   *rand.Rand
	kinds map[rowKind]int
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path for the generated xlsx workbook")
	jsonOut := flag.String("json", "", "optional output path for the same rows as a header-keyed JSON fixture")
	sheet := flag.String("sheet", "Planilha1", "worksheet name")
	rows := flag.Int("rows", 200, "number of data rows")
	seed := flag.Uint64("seed", 42, "random seed")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}
	if *rows <= 0 {
		return fmt.Errorf("-rows must be positive, got %d", *rows)
	}

	g := &generator{
		rng:   rand.New(rand.NewPCG(*seed, *seed^0x9e3779b97f4a7c15)),
		kinds: make(map[rowKind]int),
	}
	data := make([][]any, 0, *rows)
	for range *rows {
		data = append(data, g.row())
	}

	if err := writeWorkbook(*out, *sheet, data); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	log.Printf("wrote workbook: %s (%d rows)", *out, len(data))

	if *jsonOut != "" {
		if err := writeJSON(*jsonOut, data); err != nil {
			return fmt.Errorf("writing JSON fixture: %w", err)
		}
		log.Printf("wrote JSON fixture: %s", *jsonOut)
	}

	return printStats(*out, *sheet, g.kinds)
}

// row returns one spreadsheet row in SourceColumns order.
func (g *generator) row() []any {
	kind := g.pickKind()
	g.kinds[kind]++

	town := targetSpellings[g.rng.IntN(len(targetSpellings))]
	if kind == kindOtherTown {
		town = otherTowns[g.rng.IntN(len(otherTowns))]
	}

	river := waterBodies[g.rng.IntN(len(waterBodies))]
	if g.rng.Float64() < 0.12 {
		river = ""
	}

	lat := -2.35 - g.rng.Float64()*0.40
	lon := -44.05 - g.rng.Float64()*0.40
	if kind == kindOutsideFence {
		// Inside the coarse band but beyond the island.
		lat = -3.2 - g.rng.Float64()*0.6
	}

	latCell := g.mangleCoordinate(lat)
	lonCell := g.mangleCoordinate(lon)
	if kind == kindBadCoordinate {
		if g.rng.IntN(2) == 0 {
			latCell = "n/d"
		} else {
			lonCell = "sem GPS"
		}
	}

	row := []any{town, river, g.date(kind == kindBadDate), latCell, lonCell}
	row = append(row,
		g.measurement(7.0, 1.1, 1),   // pH
		g.measurement(5.8, 1.6, 1),   // OD
		g.measurement(45, 40, 0),     // turbidez
		g.measurement(28.5, 1.5, 1),  // temperatura
		g.measurement(350, 200, 0),   // condutividade
		g.measurement(180, 90, 0),    // STD
		g.measurement(0.12, 0.08, 3), // fósforo
		g.measurement(0.6, 0.4, 2),   // nitrogênio
		g.measurement(0.3, 0.4, 2),   // salinidade
	)
	return row
}

func (g *generator) pickKind() rowKind {
	switch p := g.rng.Float64(); {
	case p < 0.04:
		return kindBadDate
	case p < 0.20:
		return kindOtherTown
	case p < 0.24:
		return kindBadCoordinate
	case p < 0.32:
		return kindOutsideFence
	default:
		return kindClean
	}
}

// mangleCoordinate renders v the way field teams tend to type it.
func (g *generator) mangleCoordinate(v float64) any {
	s := strconv.FormatFloat(v, 'f', 4, 64)
	switch g.rng.IntN(8) {
	case 0: // decimal point dropped
		return strings.Replace(s, ".", "", 1)
	case 1: // sign omitted
		return strings.TrimPrefix(s, "-")
	case 2: // comma decimal separator
		return strings.Replace(s, ".", ",", 1)
	case 3: // hemisphere suffix
		return strings.TrimPrefix(s, "-") + " S"
	case 4: // stored as a number cell
		return v
	default:
		return s
	}
}

// date returns a collection date as an Excel serial, ISO text or day-first
// text. When invalid is set it returns a day-first string with month > 12.
func (g *generator) date(invalid bool) any {
	d := firstDate.AddDate(0, 0, g.rng.IntN(365*6))
	if invalid {
		return fmt.Sprintf("%02d/%02d/%d", d.Day(), 13+g.rng.IntN(18), d.Year())
	}
	switch g.rng.IntN(3) {
	case 0:
		return d.Sub(excelZero).Hours() / 24
	case 1:
		return d.Format("2006-01-02")
	default:
		return d.Format("02/01/2006")
	}
}

// measurement draws around mean, occasionally blank or unreadable.
func (g *generator) measurement(mean, spread float64, decimals int) any {
	switch p := g.rng.Float64(); {
	case p < 0.10:
		return ""
	case p < 0.12:
		return "<LQ"
	}
	v := math.Max(0.01, mean+g.rng.NormFloat64()*spread)
	scale := math.Pow(10, float64(decimals))
	v = math.Round(v*scale) / scale
	if g.rng.IntN(5) == 0 {
		return strings.Replace(strconv.FormatFloat(v, 'f', decimals, 64), ".", ",", 1)
	}
	return v
}

func writeWorkbook(path, sheet string, data [][]any) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return err
	}

	header := make([]any, 0, len(domain.SourceColumns))
	for _, c := range domain.SourceColumns {
		header = append(header, c.Header)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, row := range data {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("row %d: %w", i+2, err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return f.SaveAs(path)
}

// writeJSON stores rows keyed by header text, the shape of the pipeline
// test fixtures. Serial dates are converted to ISO since JSON has no date cells.
func writeJSON(path string, data [][]any) error {
	rows := make([]map[string]string, 0, len(data))
	for _, row := range data {
		m := make(map[string]string, len(row))
		for i, v := range row {
			col := domain.SourceColumns[i]
			s := cellString(v)
			if col.Name == domain.ColCollectionDate {
				if serial, ok := v.(float64); ok {
					s = excelZero.Add(time.Duration(serial*24) * time.Hour).Format(domain.DateLayout)
				}
			}
			m[col.Header] = s
		}
		rows = append(rows, m)
	}

	b, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, append(b, '\n'), 0o600)
}

func cellString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

// printStats reads the workbook back through the real extractor and
// transformer so the printed counts match what a pipeline run would do.
func printStats(path, sheet string, kinds map[rowKind]int) error {
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	raws, err := excel.NewReader(path, sheet, quiet).Extract(context.Background())
	if err != nil {
		return fmt.Errorf("re-reading workbook: %w", err)
	}

	transformer := pipeline.NewTransformer(domain.DefaultRegion(), domain.DefaultRuleset(), quiet, observability.NewMetricsForTesting())
	var summary domain.RunSummary
	records, err := transformer.Transform(context.Background(), raws, &summary)
	if err != nil {
		return fmt.Errorf("transforming: %w", err)
	}
	summary = summary.Finish(records)

	fmt.Println("\n=== Generated ===")
	fmt.Printf("  clean:              %d\n", kinds[kindClean])
	fmt.Printf("  impossible date:    %d\n", kinds[kindBadDate])
	fmt.Printf("  other municipality: %d\n", kinds[kindOtherTown])
	fmt.Printf("  unusable position:  %d\n", kinds[kindBadCoordinate])
	fmt.Printf("  outside geofence:   %d\n", kinds[kindOutsideFence])

	fmt.Println("\n=== Pipeline ===")
	fmt.Printf("  rows read:          %d\n", summary.RowsRead)
	fmt.Printf("  dropped date:       %d\n", summary.DroppedDate)
	fmt.Printf("  dropped locality:   %d\n", summary.DroppedLocality)
	fmt.Printf("  dropped coordinate: %d\n", summary.DroppedCoordinate)
	fmt.Printf("  dropped geofence:   %d\n", summary.DroppedGeofence)
	fmt.Printf("  imputed rivers:     %d\n", summary.Imputed)
	fmt.Printf("  written:            %d (%d Aprovado, %d Reprovado)\n", summary.RowsWritten, summary.Approved, summary.Rejected)

	if len(summary.Violations) > 0 {
		fmt.Println("\n=== Violations ===")
		params := make([]string, 0, len(summary.Violations))
		for p := range summary.Violations {
			params = append(params, string(p))
		}
		sort.Strings(params)
		for _, p := range params {
			fmt.Printf("  %-12s %d\n", p, summary.Violations[domain.Parameter(p)])
		}
	}
	return nil
}
