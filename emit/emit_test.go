package emit

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/hazop-ai/pidsym/symbol"
)

func sampleRows() []Row {
	return []Row{
		{Index: 0, Filename: "pid_iso_valves_000_gate_valve.svg", Description: "Gate Valve", Category: "Gate Valve"},
		{Index: 1, Filename: "pid_iso_valves_001_check_valve_spring_loaded.svg", Description: "Check Valve - Spring Loaded", Category: "Check Valve"},
		{Index: 7, Filename: "pid_iso_valves_007.svg", Description: "Valve 8", Category: "Unknown"},
	}
}

func TestWriteSVG(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out", "svg")
	path, err := WriteSVG(dir, "a.svg", "<svg/>")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "a.svg"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "<svg/>", string(data))
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "valves_reference.csv")
	require.NoError(t, WriteCSV(path, sampleRows()))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, records, 4)
	assert.Equal(t, Header, records[0])
	assert.Equal(t, []string{"1", "pid_iso_valves_001_check_valve_spring_loaded.svg", "Check Valve - Spring Loaded", "Check Valve"}, records[2])
	assert.Equal(t, "7", records[3][0])
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "valves.xlsx")
	require.NoError(t, WriteXLSX(path, "ISO Valves", sampleRows()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"ISO Valves"}, f.GetSheetList())
	rows, err := f.GetRows("ISO Valves")
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, Header, rows[0])
	assert.Equal(t, "Gate Valve", rows[1][2])
}

func TestSheetName(t *testing.T) {
	assert.Equal(t, "ISO Pipes and Signal Lines", SheetName("ISO Pipes and Signal Lines"))
	assert.Equal(t, "A-B", SheetName("A/B"))
	assert.Equal(t, "Symbols", SheetName("  "))
	assert.Len(t, []rune(SheetName(strings.Repeat("x", 40))), 31)
}

func mustFamily(t *testing.T, name string) *symbol.Family {
	t.Helper()
	reg, err := symbol.DefaultRegistry("dev")
	require.NoError(t, err)
	f, err := reg.Get(name)
	require.NoError(t, err)
	return f
}

func TestAnalyze_Valves(t *testing.T) {
	f := mustFamily(t, "iso-valves")
	symbols := []Symbol{
		{Index: 0, Name: "Gate Valve", SVG: `<svg><path stroke="#FF0000"/></svg>`},
		{Index: 1, Name: "Control Valve - Pneumatic", SVG: `<svg/>`},
		{Index: 2, Name: "Check Valve", SVG: `<svg/>`},
		{Index: 3, Name: "Safety Valve", SVG: `<svg/>`},
		{Index: 4, Name: "Solenoid Valve", SVG: `<svg/>`},
	}

	r := Analyze(f, symbols)
	assert.Equal(t, 5, r.Total)
	assert.Equal(t, "VALVES SYMBOL ANALYSIS REPORT", r.Title)

	counts := map[string]int{}
	for _, c := range r.Categories {
		counts[c.Name] = c.Count
	}
	assert.Equal(t, map[string]int{
		"Check Valves":         1,
		"Control Valves":       1,
		"Safety/Relief Valves": 1,
		"Standard Valves":      2,
	}, counts)
	assert.Equal(t, 2, r.Stats["actuated"])
	assert.Equal(t, 3, r.Stats["manual"])
}

func TestCountHelpers(t *testing.T) {
	symbols := []Symbol{
		{SVG: `<path stroke="#ff0000" stroke-dasharray="4,2"/>`},
		{SVG: `<path stroke-dasharray="2"/>`},
		{SVG: `<path style="stroke-dasharray: 3 1"/>`},
		{SVG: `<path d="M1,1 L2,2"/>`},
	}
	assert.Equal(t, 1, CountMarkers(symbols, symbol.DefaultMarkerStroke))

	dashed, special := CountLineStyles(symbols)
	assert.Equal(t, 1, dashed)
	assert.Equal(t, 2, special)
}

func TestRender(t *testing.T) {
	pterm.DisableColor()
	defer pterm.EnableColor()

	f := mustFamily(t, "iso-pipes")
	r := Analyze(f, []Symbol{
		{Index: 0, Name: "Process Line - Solid", SVG: `<svg/>`},
		{Index: 1, Name: "Process Line - Dashed", SVG: `<line stroke-dasharray="4,2"/>`},
		{Index: 2, Name: "Signal Line", SVG: `<svg/>`},
	})

	var buf bytes.Buffer
	Render(&buf, r)
	out := buf.String()

	assert.Contains(t, out, strings.Repeat("=", 70))
	assert.Contains(t, out, "PIPES AND SIGNAL LINES SYMBOL ANALYSIS REPORT")
	assert.Contains(t, out, "  Process Line                  :   2 symbols")
	assert.Contains(t, out, "  Signal Line                   :   1 symbols")
	assert.Contains(t, out, "  • Process Lines (solid, dashed, various weights)")
	assert.Contains(t, out, "  1 symbols use dashed/dotted patterns")
	assert.Contains(t, out, "  2 symbols use solid lines")
}
