// Package manifest generates the editor's TypeScript symbol list from the
// extracted SVG tree.
package manifest

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/hazop-ai/pidsym/am"
	"github.com/hazop-ai/pidsym/errors"
)

// Standards are scanned in this order.
var Standards = []string{"ISO", "PIP"}

// folderCategories maps a folder-name fragment to a category. Checked in
// order; the first fragment found in the lowercased folder name wins.
var folderCategories = []struct{ fragment, category string }{
	{"equipment", "equipment"},
	{"equipments", "equipment"},
	{"valves", "valves"},
	{"instruments", "instruments"},
	{"fittings", "fittings"},
	{"pipes-and-signal-lines", "pipes"},
	{"pipes_and_signal_lines", "pipes"},
}

var namedFile = regexp.MustCompile(`^pid_(iso|pip)_[a-z_]+_\d{3}_(.+)$`)

// Entry is one symbol in the manifest.
type Entry struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Standard string `json:"standard"`
	Path     string `json:"path"`
}

// Manifest is the ordered symbol list.
type Manifest struct {
	Symbols []Entry `json:"symbols"`
}

// Count returns the number of symbols of a standard.
func (m *Manifest) Count(standard string) int {
	n := 0
	for _, s := range m.Symbols {
		if s.Standard == standard {
			n++
		}
	}
	return n
}

// Breakdown counts symbols per "STD - category".
func (m *Manifest) Breakdown() map[string]int {
	out := make(map[string]int)
	for _, s := range m.Symbols {
		out[s.Standard+" - "+s.Category]++
	}
	return out
}

// Category returns the manifest category of a family folder name, or "".
func Category(folder string) string {
	lower := strings.ToLower(folder)
	for _, fc := range folderCategories {
		if strings.Contains(lower, fc.fragment) {
			return fc.category
		}
	}
	return ""
}

// DisplayName derives a human name from an emitted symbol file name.
func DisplayName(filename string) string {
	stem := strings.TrimSuffix(filename, ".svg")
	titler := cases.Title(language.English)
	if m := namedFile.FindStringSubmatch(stem); m != nil {
		return titler.String(strings.ReplaceAll(m[2], "_", " "))
	}
	parts := strings.Split(stem, "_")
	return titler.String(parts[len(parts)-1])
}

// Scan walks root/{ISO,PIP}/PID-*-Symbols/svg/*.svg. Folders whose name maps
// to no category are skipped. Ids number symbols by manifest position.
func Scan(root, urlPrefix string) (*Manifest, error) {
	return ScanFS(os.DirFS(root), urlPrefix)
}

// ScanFS is Scan over an fs.FS.
func ScanFS(fsys fs.FS, urlPrefix string) (*Manifest, error) {
	m := &Manifest{}
	urlPrefix = strings.TrimSuffix(urlPrefix, "/")

	for _, std := range Standards {
		matches, err := doublestar.Glob(fsys, std+"/PID-*-Symbols/svg/*.svg")
		if err != nil {
			return nil, errors.Wrapf(err, "failed to scan %s symbols", std)
		}
		sort.Strings(matches)

		for _, match := range matches {
			folder := strings.Split(match, "/")[1]
			category := Category(folder)
			if category == "" {
				continue
			}
			file := path.Base(match)
			m.Symbols = append(m.Symbols, Entry{
				ID:       fmt.Sprintf("%s_%s_%d", strings.ToLower(std), category, len(m.Symbols)),
				Name:     DisplayName(file),
				Category: category,
				Standard: std,
				Path:     strings.Join([]string{urlPrefix, std, folder, "svg", file}, "/"),
			})
		}
	}
	return m, nil
}

func quote(s string) string {
	return "'" + strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(s) + "'"
}

// Render returns the TypeScript module source.
func Render(m *Manifest) string {
	var sb strings.Builder

	sb.WriteString("// Auto-generated symbol definitions\n")
	sb.WriteString("// Generated from actual symbol files in assests/Symbols/PID-Symbols\n\n")
	sb.WriteString("export const allSymbols = [\n")
	for _, s := range m.Symbols {
		sb.WriteString(fmt.Sprintf("  { id: %s, name: %s, category: %s, standard: %s, path: %s },\n",
			quote(s.ID), quote(s.Name), quote(s.Category), quote(s.Standard), quote(s.Path)))
	}
	sb.WriteString("];\n")

	sb.WriteString(fmt.Sprintf("\n// Total symbols: %d\n", len(m.Symbols)))
	for _, std := range Standards {
		sb.WriteString(fmt.Sprintf("// %s symbols: %d\n", std, m.Count(std)))
	}
	return sb.String()
}

// Write renders m to out, creating parent directories.
func Write(out string, m *Manifest) error {
	if err := os.MkdirAll(filepath.Dir(out), am.DefaultDirPermissions); err != nil {
		return errors.Wrapf(err, "failed to create directory for %s", out)
	}
	if err := os.WriteFile(out, []byte(Render(m)), am.DefaultFilePermissions); err != nil {
		return errors.Wrapf(err, "failed to write %s", out)
	}
	return nil
}
