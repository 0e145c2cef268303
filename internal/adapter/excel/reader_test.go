package excel

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/couchcryptid/water-quality-etl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const (
	hdrMunicipio = "Nome Municipio"
	hdrRio       = "Nome do Corpo D'Água"
	hdrData      = "Data da Coleta (dd/mm/aaaa)"
	hdrLat       = "Posição horizontal da coleta (latitude)"
	hdrLon       = "Posição vertical da coleta (longitude)"
	hdrFosforo   = "Fósforo Total\n (mg/L de P)"
)

// writeWorkbook saves rows to a fresh workbook. configure runs before any
// cell is written.
func writeWorkbook(t *testing.T, sheet string, rows [][]any, configure func(f *excelize.File)) string {
	t.Helper()

	f := excelize.NewFile()
	t.Cleanup(func() { _ = f.Close() })
	if configure != nil {
		configure(f)
	}
	if sheet != "Sheet1" {
		require.NoError(t, f.SetSheetName("Sheet1", sheet))
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	path := filepath.Join(t.TempDir(), "survey.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestReader_Extract(t *testing.T) {
	collected := time.Date(2018, 3, 15, 0, 0, 0, 0, time.UTC)
	path := writeWorkbook(t, "Sheet1", [][]any{
		{hdrMunicipio, hdrRio, hdrData, hdrLat, hdrLon, "pH", "Turbidez (NTU)", hdrFosforo, "Observações"},
		{"São Luís", "Rio Anil", collected, "-2,53", -44.27, 7.1, "", 0.02, "ok"},
		{},
		{"São Luís", "", "30/28/2018", "25431", "-4427", "ND"},
	}, nil)

	r := NewReader(path, "", slog.Default())
	assert.Equal(t, path, r.Source())

	raws, err := r.Extract(context.Background())
	require.NoError(t, err)
	require.Len(t, raws, 2)

	first := raws[0]
	assert.Equal(t, 2, first.Row)
	assert.Equal(t, "São Luís", first.Municipality)
	assert.Equal(t, "Rio Anil", first.WaterBody)
	assert.Equal(t, "2018-03-15", first.CollectionDate)
	assert.Equal(t, "-2,53", first.Latitude)
	assert.Equal(t, "-44.27", first.Longitude)
	assert.Equal(t, map[domain.Parameter]string{
		domain.ParamPH:         "7.1",
		domain.ParamTurbidity:  "",
		domain.ParamPhosphorus: "0.02",
	}, first.Measurements)

	second := raws[1]
	assert.Equal(t, 4, second.Row, "blank rows keep spreadsheet numbering")
	assert.Empty(t, second.WaterBody)
	assert.Equal(t, "30/28/2018", second.CollectionDate)
	assert.Equal(t, "ND", second.Measurements[domain.ParamPH])
	assert.Empty(t, second.Measurements[domain.ParamPhosphorus], "short rows read as blank")
	_, hasOD := second.Measurements[domain.ParamDissolvedOxygen]
	assert.False(t, hasOD, "absent columns are skipped")
}

func TestReader_Extract_1904Workbook(t *testing.T) {
	collected := time.Date(2020, 1, 14, 0, 0, 0, 0, time.UTC)
	path := writeWorkbook(t, "Sheet1", [][]any{
		{hdrMunicipio, hdrData},
		{"São Luís", collected},
	}, func(f *excelize.File) {
		on := true
		require.NoError(t, f.SetWorkbookProps(&excelize.WorkbookPropsOptions{Date1904: &on}))
	})

	raws, err := NewReader(path, "", slog.Default()).Extract(context.Background())
	require.NoError(t, err)
	require.Len(t, raws, 1)
	assert.Equal(t, "2020-01-14", raws[0].CollectionDate)
}

func TestReader_Extract_NamedSheet(t *testing.T) {
	path := writeWorkbook(t, "Coletas", [][]any{
		{hdrMunicipio},
		{"Raposa"},
	}, nil)

	raws, err := NewReader(path, "Coletas", slog.Default()).Extract(context.Background())
	require.NoError(t, err)
	require.Len(t, raws, 1)
	assert.Equal(t, "Raposa", raws[0].Municipality)

	_, err = NewReader(path, "Missing", slog.Default()).Extract(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Missing")
}

func TestReader_Extract_HeaderOnly(t *testing.T) {
	path := writeWorkbook(t, "Sheet1", [][]any{{hdrMunicipio, hdrRio}}, nil)

	raws, err := NewReader(path, "", slog.Default()).Extract(context.Background())
	require.NoError(t, err)
	assert.Empty(t, raws)
}

func TestReader_Extract_SourceNotFound(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.xlsx")

	_, err := NewReader(path, "", slog.Default()).Extract(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSourceNotFound)
	assert.Contains(t, err.Error(), "missing.xlsx")
}

func TestDateCell(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		date1904 bool
		want     string
	}{
		{"1900 serial", "43174", false, "2018-03-15"},
		{"serial with time fraction", "43174.75", false, "2018-03-15"},
		{"1904 serial", "41712", true, "2018-03-15"},
		{"day first text untouched", "15/03/2018", false, "15/03/2018"},
		{"iso text untouched", "2018-03-15", false, "2018-03-15"},
		{"blank", "", false, ""},
		{"negative untouched", "-5", false, "-5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, dateCell(tt.value, tt.date1904))
		})
	}
}

func TestReader_Extract_TextDateCellsAreNotSerials(t *testing.T) {
	f := excelize.NewFile()
	t.Cleanup(func() { _ = f.Close() })
	const sheet = "Sheet1"
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{hdrMunicipio, hdrData}))
	require.NoError(t, f.SetCellStr(sheet, "A2", "São Luís"))
	require.NoError(t, f.SetCellStr(sheet, "B2", "2018"))
	require.NoError(t, f.SetCellStr(sheet, "A3", "São Luís"))
	require.NoError(t, f.SetCellStr(sheet, "B3", "15.03"))
	require.NoError(t, f.SetCellStr(sheet, "A4", "São Luís"))
	require.NoError(t, f.SetCellFloat(sheet, "B4", 43174, -1, 64))
	path := filepath.Join(t.TempDir(), "survey.xlsx")
	require.NoError(t, f.SaveAs(path))

	raws, err := NewReader(path, "", slog.Default()).Extract(context.Background())
	require.NoError(t, err)
	require.Len(t, raws, 3)

	assert.Equal(t, "2018", raws[0].CollectionDate)
	assert.Equal(t, "15.03", raws[1].CollectionDate)
	assert.Equal(t, "2018-03-15", raws[2].CollectionDate, "numeric cells are serial dates")

	for _, raw := range raws[:2] {
		_, ok := domain.ParseCollectionDate(raw.CollectionDate)
		assert.False(t, ok, "row %d: text %q must not become a date", raw.Row, raw.CollectionDate)
	}
}

func TestReader_Extract_DuplicateHeaderKeepsFirst(t *testing.T) {
	path := writeWorkbook(t, "Sheet1", [][]any{
		{hdrMunicipio, hdrRio, hdrRio},
		{"São Luís", "Rio Anil", "Rio Bacanga"},
	}, nil)

	for range 5 {
		raws, err := NewReader(path, "", slog.Default()).Extract(context.Background())
		require.NoError(t, err)
		require.Len(t, raws, 1)
		assert.Equal(t, "Rio Anil", raws[0].WaterBody)
	}
}

func TestMapHeader(t *testing.T) {
	columns, duplicates := mapHeader([]string{hdrMunicipio, "Observações", hdrRio, hdrMunicipio})

	assert.Equal(t, map[int]string{0: domain.ColMunicipality, 2: domain.ColWaterBody}, columns)
	assert.Equal(t, []string{hdrMunicipio}, duplicates)
}
