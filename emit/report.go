package emit

import (
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"

	"github.com/pterm/pterm"

	"github.com/hazop-ai/pidsym/symbol"
)

const (
	rule       = 70
	maxSamples = 3
)

// ActuatorTypes are the name keywords counted as actuated valves.
var ActuatorTypes = []string{"Pneumatic", "Electric", "Hydraulic", "Solenoid"}

var dasharrayPattern = regexp.MustCompile(`stroke-dasharray\s*[=:]\s*"?([^";>]*)`)

// Symbol is the report input for one emitted symbol.
type Symbol struct {
	Index int
	Name  string
	SVG   string
}

// CategoryCount is one line of the category table.
type CategoryCount struct {
	Name    string   `json:"name"`
	Count   int      `json:"count"`
	Samples []string `json:"samples,omitempty"`
}

// Section is a titled list of report lines.
type Section struct {
	Heading string   `json:"heading"`
	Lines   []string `json:"lines"`
	Bullets bool     `json:"-"`
}

// Report is the analysis of one extraction run.
type Report struct {
	Family     string          `json:"family"`
	Title      string          `json:"title"`
	Heading    string          `json:"heading"`
	Total      int             `json:"total"`
	Categories []CategoryCount `json:"categories"`
	Sections   []Section       `json:"sections,omitempty"`
	Stats      map[string]int  `json:"stats,omitempty"`
}

// Analyze groups symbols by the family's report categories and computes the
// statistics its report blocks ask for.
func Analyze(f *symbol.Family, symbols []Symbol) Report {
	r := Report{
		Family:  f.Name,
		Title:   f.Report.Title,
		Heading: f.Report.Heading,
		Total:   len(symbols),
		Stats:   make(map[string]int),
	}

	byName := make(map[string]*CategoryCount)
	for _, s := range symbols {
		cat := f.ReportCategory(s.Name)
		c, ok := byName[cat]
		if !ok {
			c = &CategoryCount{Name: cat}
			byName[cat] = c
		}
		c.Count++
		if len(c.Samples) < maxSamples {
			c.Samples = append(c.Samples, s.Name)
		}
	}
	for _, c := range byName {
		r.Categories = append(r.Categories, *c)
	}
	sort.Slice(r.Categories, func(i, j int) bool { return r.Categories[i].Name < r.Categories[j].Name })

	for _, b := range f.Report.Blocks {
		if b.Stat == "" {
			r.Sections = append(r.Sections, Section{Heading: b.Heading, Lines: b.Bullets, Bullets: true})
			continue
		}
		sec := statSection(b, symbols, f.Policy.Marker(), r.Stats)
		if b.Note != "" {
			sec.Lines = append(sec.Lines, b.Note)
		}
		r.Sections = append(r.Sections, sec)
	}
	return r
}

func statSection(b symbol.Block, symbols []Symbol, marker string, stats map[string]int) Section {
	total := len(symbols)
	heading := func(def string) string {
		if b.Heading != "" {
			return b.Heading
		}
		return def
	}

	switch b.Stat {
	case symbol.StatMarkers:
		n := CountMarkers(symbols, marker)
		stats["markers"] = n
		return Section{Heading: heading("Connection Points"), Lines: []string{
			fmt.Sprintf("%d symbols have red connection markers", n),
		}}

	case symbol.StatActuators:
		n := CountActuated(symbols)
		stats["actuated"] = n
		stats["manual"] = total - n
		return Section{Heading: heading("Actuated Valves"), Lines: []string{
			fmt.Sprintf("%d valves with actuators", n),
			fmt.Sprintf("%d manual valves", total-n),
		}}

	case symbol.StatDashed:
		dashed, special := CountLineStyles(symbols)
		n := dashed + special
		stats["dashed"] = n
		stats["solid"] = total - n
		return Section{Heading: heading("Line Styles"), Lines: []string{
			fmt.Sprintf("%d symbols use dashed/dotted patterns", n),
			fmt.Sprintf("%d symbols use solid lines", total-n),
		}}

	case symbol.StatLineStyles:
		dashed, special := CountLineStyles(symbols)
		stats["solid"] = total - dashed - special
		stats["dashed"] = dashed
		stats["special"] = special
		return Section{Heading: heading("Line Styles"), Lines: []string{
			fmt.Sprintf("Solid lines: %d symbols", total-dashed-special),
			fmt.Sprintf("Dashed lines: %d symbols", dashed),
			fmt.Sprintf("Special patterns: %d symbols", special),
		}}
	}
	return Section{Heading: heading(b.Stat), Lines: []string{"unknown statistic " + b.Stat}}
}

// CountMarkers counts symbols with at least one marker-stroked element.
func CountMarkers(symbols []Symbol, marker string) int {
	needle := `stroke="` + strings.ToLower(marker) + `"`
	n := 0
	for _, s := range symbols {
		if strings.Contains(strings.ToLower(s.SVG), needle) {
			n++
		}
	}
	return n
}

// CountActuated counts names mentioning one of ActuatorTypes.
func CountActuated(symbols []Symbol) int {
	n := 0
	for _, s := range symbols {
		for _, a := range ActuatorTypes {
			if strings.Contains(s.Name, a) {
				n++
				break
			}
		}
	}
	return n
}

// CountLineStyles splits symbols using stroke-dasharray into dashed
// (comma-separated patterns) and special (anything else).
func CountLineStyles(symbols []Symbol) (dashed, special int) {
	for _, s := range symbols {
		m := dasharrayPattern.FindStringSubmatch(s.SVG)
		if m == nil {
			continue
		}
		if strings.Contains(m[1], ",") {
			dashed++
		} else {
			special++
		}
	}
	return dashed, special
}

// Render prints r in the console report layout.
func Render(w io.Writer, r Report) {
	banner := strings.Repeat("=", rule)

	pterm.Fprintln(w)
	pterm.Fprintln(w, banner)
	pterm.Fprintln(w, pterm.LightCyan(r.Title))
	pterm.Fprintln(w, banner)

	pterm.Fprintln(w)
	pterm.Fprintln(w, r.Heading+":")
	for _, c := range r.Categories {
		pterm.Fprintln(w, fmt.Sprintf("  %-30s: %3d symbols", c.Name, c.Count))
	}

	for _, s := range r.Sections {
		pterm.Fprintln(w)
		pterm.Fprintln(w, s.Heading+":")
		for _, line := range s.Lines {
			if s.Bullets {
				pterm.Fprintln(w, "  • "+line)
			} else {
				pterm.Fprintln(w, "  "+line)
			}
		}
	}

	pterm.Fprintln(w)
	pterm.Fprintln(w, banner)
}
