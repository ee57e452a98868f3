package extract

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hazop-ai/pidsym/errors"
	"github.com/hazop-ai/pidsym/raster"
	"github.com/hazop-ai/pidsym/symbol"
)

const valvesFamily = `
families:
  - name: valves
    names:
      0: "Gate Valve"
`

func customValves(t *testing.T) *symbol.Family {
	t.Helper()
	reg, err := symbol.DefaultRegistry("dev")
	require.NoError(t, err)
	require.NoError(t, reg.Load([]byte(valvesFamily), "valves.yaml"))
	f, err := reg.Get("valves")
	require.NoError(t, err)
	return f
}

func builtin(t *testing.T, name string) *symbol.Family {
	t.Helper()
	reg, err := symbol.DefaultRegistry("dev")
	require.NoError(t, err)
	f, err := reg.Get(name)
	require.NoError(t, err)
	return f
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestRun_GateValveScenario(t *testing.T) {
	dir := t.TempDir()
	jsonPath := writeFile(t, filepath.Join(dir, "catalog.json"),
		`{"0": "<svg viewBox=\"0 0 10 10\"><path d=\"M0 0L5 5Z\" stroke-width=\"1\"/></svg>"}`)

	res, err := Run(context.Background(), Options{
		Family:    customValves(t),
		JSONPath:  jsonPath,
		SVGPath:   filepath.Join(dir, "missing.svg"),
		OutputDir: filepath.Join(dir, "svg"),
		Names:     true,
		CSV:       true,
		CSVPath:   filepath.Join(dir, "valves_reference.csv"),
		Workers:   2,
	})
	require.NoError(t, err)
	require.Len(t, res.Symbols, 1)
	assert.NotEmpty(t, res.RunID)
	assert.Len(t, res.Warnings, 1, "missing companion svg is a warning")

	out := filepath.Join(dir, "svg", "pid_family_valves_000_gate_valve.svg")
	assert.Equal(t, out, res.Symbols[0].Path)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	content := string(data)

	assert.True(t, strings.HasPrefix(content, `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.Equal(t, 1, strings.Count(content, `xmlns="http://www.w3.org/2000/svg"`))
	assert.Contains(t, content, `stroke="#000000"`)
	assert.Contains(t, content, `fill="white"`)

	records := readCSV(t, res.CSVPath)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"0", "pid_family_valves_000_gate_valve.svg", "Gate Valve"}, records[1][:3])
}

func TestRun_CSVRowsMatchCatalog(t *testing.T) {
	dir := t.TempDir()
	f := builtin(t, "iso-valves")

	var b strings.Builder
	b.WriteString("{")
	for i := 0; i < 30; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(`"` + string(rune('0'+i/10)) + string(rune('0'+i%10)) + `": "<svg viewBox=\"0 0 10 10\"><circle r=\"4\" stroke=\"#000\"/></svg>"`)
	}
	b.WriteString("}")
	writeFile(t, filepath.Join(dir, f.CatalogFile), b.String())
	writeFile(t, filepath.Join(dir, f.CompanionFile),
		`<svg><svg viewBox="0 0 1 1"><title>Ignored Scraped</title></svg></svg>`)

	for _, names := range []bool{true, false} {
		out := t.TempDir()
		res, err := Run(context.Background(), Options{
			Family:    f,
			JSONPath:  filepath.Join(dir, f.CatalogFile),
			SVGPath:   filepath.Join(dir, f.CompanionFile),
			OutputDir: out,
			CSVPath:   filepath.Join(out, f.CSVFile),
			Names:     names,
			CSV:       true,
			Analyze:   true,
		})
		require.NoError(t, err)
		assert.Len(t, res.Symbols, 30)
		assert.Len(t, readCSV(t, res.CSVPath), 31)
		require.NotNil(t, res.Report)
		assert.Equal(t, 30, res.Report.Total)

		entries, err := os.ReadDir(out)
		require.NoError(t, err)
		assert.Len(t, entries, 31) // 30 svgs and the csv

		for i, s := range res.Symbols {
			assert.Equal(t, i, s.Index, "results are ordered by index")
		}
		if names {
			assert.Equal(t, "pid_iso_valves_000_gate_valve.svg", res.Symbols[0].Filename)
		} else {
			assert.Equal(t, "pid_iso_valves_000.svg", res.Symbols[0].Filename)
			assert.Equal(t, symbol.UnnamedCategory, res.Symbols[0].Category)
			assert.Equal(t, "Valve 1", res.Symbols[0].Name)
		}
	}
}

func TestRun_CatalogFailureIsFatal(t *testing.T) {
	dir := t.TempDir()
	_, err := Run(context.Background(), Options{
		Family:    customValves(t),
		JSONPath:  filepath.Join(dir, "nope.json"),
		OutputDir: filepath.Join(dir, "svg"),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCatalogLoad))
	assert.True(t, errors.IsFatal(err))
	assert.NoDirExists(t, filepath.Join(dir, "svg"))
}

type unavailable struct{}

func (unavailable) Name() string    { return "rsvg-convert" }
func (unavailable) Available() bool { return false }
func (unavailable) Convert(context.Context, string, string, int) error {
	return errors.New("not installed")
}

func TestRun_MissingConverter(t *testing.T) {
	dir := t.TempDir()
	jsonPath := writeFile(t, filepath.Join(dir, "c.json"), `{"0": "<svg viewBox=\"0 0 10 10\"/>"}`)

	res, err := Run(context.Background(), Options{
		Family:     customValves(t),
		JSONPath:   jsonPath,
		OutputDir:  filepath.Join(dir, "svg"),
		PNG:        true,
		PNGDir:     filepath.Join(dir, "png"),
		Converters: []raster.Converter{unavailable{}},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, res.PNGCount())
	assert.NotEmpty(t, res.Warnings)
	assert.NoDirExists(t, filepath.Join(dir, "png"))
}

func TestRun_BuiltinRasterizer(t *testing.T) {
	dir := t.TempDir()
	jsonPath := writeFile(t, filepath.Join(dir, "c.json"),
		`{"0": "<svg viewBox=\"0 0 10 10\"><path d=\"M0 0L5 5Z\" stroke-width=\"1\"/></svg>"}`)

	res, err := Run(context.Background(), Options{
		Family:     customValves(t),
		JSONPath:   jsonPath,
		OutputDir:  filepath.Join(dir, "svg"),
		Names:      true,
		SVGPath:    filepath.Join(dir, "none.svg"),
		PNG:        true,
		PNGDir:     filepath.Join(dir, "png"),
		PNGSize:    32,
		Converters: []raster.Converter{unavailable{}, raster.OksvgConverter{}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.PNGCount())
	assert.Equal(t, raster.BuiltinName, res.PNG.Converter)
	assert.FileExists(t, filepath.Join(dir, "png", "pid_family_valves_000_gate_valve.png"))
}

func TestOptions_Defaults(t *testing.T) {
	f := builtin(t, "pip-fittings")
	o := Options{Family: f, Root: "lib"}.withDefaults()

	base := filepath.Join("lib", "PIP", f.Folder)
	assert.Equal(t, filepath.Join(base, f.CatalogFile), o.JSONPath)
	assert.Equal(t, filepath.Join(base, f.CompanionFile), o.SVGPath)
	assert.Equal(t, filepath.Join(base, "svg"), o.OutputDir)
	assert.Equal(t, filepath.Join(base, "png"), o.PNGDir)
	assert.Equal(t, 256, o.PNGSize)
	assert.Positive(t, o.Workers)

	abs := Options{Family: f, OutputDir: "/tmp/out"}.withDefaults()
	assert.Equal(t, "/tmp/out", abs.OutputDir)
	assert.Equal(t, f.CatalogFile, abs.JSONPath)
}

func TestOptions_Inputs(t *testing.T) {
	f := builtin(t, "pip-fittings")
	base := filepath.Join("lib", "PIP", f.Folder)
	assert.Equal(t, []string{
		filepath.Join(base, f.CatalogFile),
		filepath.Join(base, f.CompanionFile),
	}, Options{Family: f, Root: "lib"}.Inputs())

	assert.Equal(t, []string{"/x/a.json", "/x/a.svg"},
		Options{Family: f, JSONPath: "/x/a.json", SVGPath: "/x/a.svg"}.Inputs())
}
