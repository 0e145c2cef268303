package csvfile

import (
	"context"
	"encoding/csv"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/couchcryptid/water-quality-etl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func classified(m domain.Measurements) domain.Record {
	return domain.Record{
		Municipality: "SAO LUIS",
		WaterBody:    "RIO ANIL",
		CollectedOn:  time.Date(2018, 3, 15, 0, 0, 0, 0, time.UTC),
		Lat:          -2.5431,
		Lon:          -44.3,
		Measurements: m,
		Outcome:      domain.DefaultRuleset().Classify(m),
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWriter_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processed", "dados_tratados_tcc.csv")
	w := NewWriter(path, slog.Default())
	assert.Equal(t, path, w.Destination())

	records := []domain.Record{
		classified(domain.CoerceMeasurements(map[domain.Parameter]string{
			domain.ParamPH: "7", domain.ParamDissolvedOxygen: "6.5", domain.ParamTurbidity: "10",
		})),
		classified(domain.CoerceMeasurements(map[domain.Parameter]string{
			domain.ParamPH: "5.5", domain.ParamDissolvedOxygen: "3",
		})),
	}
	require.NoError(t, w.Load(context.Background(), records))

	rows := readCSV(t, path)
	require.Len(t, rows, 3)
	assert.Equal(t, Header, rows[0])
	assert.Equal(t, []string{
		"SAO LUIS", "RIO ANIL", "2018-03-15", "-2.5431", "-44.3",
		"7.0", "6.5", "10.0", "0.0", "0.0", "0.0", "0.0", "0.0", "0.0",
		"0", "", "Aprovado", "OK", "OK", "OK", "2018",
	}, rows[1])
	assert.Equal(t, []string{
		"SAO LUIS", "RIO ANIL", "2018-03-15", "-2.5431", "-44.3",
		"5.5", "3.0", "0.0", "0.0", "0.0", "0.0", "0.0", "0.0", "0.0",
		"2", "pH, OD", "Reprovado", "Fora", "Fora", "Sem dado", "2018",
	}, rows[2])
}

func TestWriter_Load_OverwritesPreviousArtifact(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")
	require.NoError(t, os.WriteFile(path, []byte("stale\n"), 0o600))

	w := NewWriter(path, slog.Default())
	require.NoError(t, w.Load(context.Background(), nil))

	rows := readCSV(t, path)
	require.Len(t, rows, 1)
	assert.Equal(t, Header, rows[0])

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasSuffix(e.Name(), ".tmp"), "temp file left behind: %s", e.Name())
	}
}

func TestWriter_Load_CancelledKeepsPreviousArtifact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, os.WriteFile(path, []byte("previous\n"), 0o600))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewWriter(path, slog.Default()).Load(ctx, []domain.Record{classified(domain.Measurements{})})
	require.ErrorIs(t, err, context.Canceled)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "previous\n", string(data))
}

func TestHeader(t *testing.T) {
	assert.Equal(t, "municipio,rio,data,latitude,longitude,ph,od,turbidez,temperatura,condutividade,std,fosforo,nitrogenio,salinidade,indice_problemas,lista_problemas,resultado_final,status_ph,status_od,status_turbidez,ano",
		strings.Join(Header, ","))
}

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.0"},
		{7, "7.0"},
		{-43, "-43.0"},
		{7.25, "7.25"},
		{-2.5431, "-2.5431"},
		{1e21, "1000000000000000000000.0"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatFloat(tt.in))
		})
	}
}
