package excel

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/couchcryptid/water-quality-etl/internal/domain"
	"github.com/xuri/excelize/v2"
)

// Reader extracts raw survey rows from an xlsx workbook.
type Reader struct {
	path   string
	sheet  string
	logger *slog.Logger
}

// NewReader creates a Reader for the workbook at path. An empty sheet name
// selects the first sheet.
func NewReader(path, sheet string, logger *slog.Logger) *Reader {
	return &Reader{path: path, sheet: sheet, logger: logger}
}

// Source returns the workbook path.
func (r *Reader) Source() string {
	return r.path
}

// Extract reads every non-blank data row. Recognized headers are mapped to
// canonical names; unrecognized columns are ignored and missing ones are
// skipped. It fails with domain.ErrSourceNotFound if the workbook does not exist.
func (r *Reader) Extract(ctx context.Context) ([]domain.RawRecord, error) {
	if _, err := os.Stat(r.path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", r.path, domain.ErrSourceNotFound)
		}
		return nil, fmt.Errorf("stat source: %w", err)
	}

	f, err := excelize.OpenFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			r.logger.Warn("close workbook failed", "path", r.path, "error", err)
		}
	}()

	sheet := r.sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}

	// Raw values keep numbers and date serials free of display formatting.
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		r.logger.Warn("sheet is empty", "sheet", sheet)
		return nil, nil
	}

	columns, duplicates := mapHeader(rows[0])
	for _, h := range duplicates {
		r.logger.Warn("duplicate source column ignored", "header", h)
	}
	r.logger.Info("source columns mapped", "sheet", sheet, "recognized", len(columns), "total", len(rows[0]))
	for _, c := range domain.SourceColumns {
		if !hasColumn(columns, c.Name) {
			r.logger.Debug("source column absent", "header", c.Header)
		}
	}

	date1904 := uses1904(f)
	dateCol := columnIndex(columns, domain.ColCollectionDate)
	records := make([]domain.RawRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		raw := toRawRecord(i+2, row, columns)
		if dateCol >= 0 && isNumericCell(f, sheet, dateCol, raw.Row) {
			raw.CollectionDate = dateCell(raw.CollectionDate, date1904)
		}
		records = append(records, raw)
	}
	return records, nil
}

// mapHeader returns canonical column names keyed by column index. When a
// header repeats, the leftmost column is used and the others are returned as
// duplicates.
func mapHeader(header []string) (map[int]string, []string) {
	columns := make(map[int]string, len(header))
	seen := make(map[string]bool, len(header))
	var duplicates []string
	for i, h := range header {
		name, ok := domain.SourceHeaders[h]
		if !ok {
			continue
		}
		if seen[name] {
			duplicates = append(duplicates, h)
			continue
		}
		seen[name] = true
		columns[i] = name
	}
	return columns, duplicates
}

func hasColumn(columns map[int]string, name string) bool {
	return columnIndex(columns, name) >= 0
}

// columnIndex returns the index of the column mapped to name, or -1.
func columnIndex(columns map[int]string, name string) int {
	for i, n := range columns {
		if n == name {
			return i
		}
	}
	return -1
}

func toRawRecord(rowNum int, row []string, columns map[int]string) domain.RawRecord {
	raw := domain.RawRecord{Row: rowNum, Measurements: make(map[domain.Parameter]string)}
	for idx, name := range columns {
		var value string
		if idx < len(row) {
			value = row[idx]
		}
		switch name {
		case domain.ColMunicipality:
			raw.Municipality = value
		case domain.ColWaterBody:
			raw.WaterBody = value
		case domain.ColCollectionDate:
			raw.CollectionDate = value
		case domain.ColLatitude:
			raw.Latitude = value
		case domain.ColLongitude:
			raw.Longitude = value
		default:
			raw.Measurements[domain.Parameter(name)] = value
		}
	}
	return raw
}

// isNumericCell reports whether the cell at (col, rowNum) holds a number or
// date value rather than text. Numbers written by Excel carry no type
// attribute, which excelize reports as CellTypeUnset.
func isNumericCell(f *excelize.File, sheet string, col, rowNum int) bool {
	cell, err := excelize.CoordinatesToCellName(col+1, rowNum)
	if err != nil {
		return false
	}
	typ, err := f.GetCellType(sheet, cell)
	if err != nil {
		return false
	}
	switch typ {
	case excelize.CellTypeUnset, excelize.CellTypeNumber, excelize.CellTypeDate:
		return true
	default:
		return false
	}
}

// dateCell converts an Excel serial date to ISO text. Anything else is
// returned as typed for the domain parser to handle. Callers only pass
// numeric cells; text such as "2018" must never be read as a serial.
func dateCell(value string, date1904 bool) string {
	serial, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || serial <= 0 {
		return value
	}
	t, err := excelize.ExcelDateToTime(serial, date1904)
	if err != nil {
		return value
	}
	return t.Format(domain.DateLayout)
}

func uses1904(f *excelize.File) bool {
	props, err := f.GetWorkbookProps()
	if err != nil || props.Date1904 == nil {
		return false
	}
	return *props.Date1904
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
