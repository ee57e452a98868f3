package symbol

import (
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// UnnamedCategory is the CSV category of symbols written without a name.
const UnnamedCategory = "Unknown"

// Report statistics understood by the analysis report.
const (
	StatMarkers    = "markers"     // symbols containing a marker stroke
	StatActuators  = "actuators"   // names mentioning an actuator type
	StatDashed     = "dashed"      // dasharray vs solid
	StatLineStyles = "line_styles" // solid, dashed and special patterns
)

// Family is one symbol catalog with its fill policy and naming data.
type Family struct {
	Name     string   `yaml:"name" json:"name"`
	Aliases  []string `yaml:"aliases,omitempty" json:"aliases,omitempty"`
	Title    string   `yaml:"title,omitempty" json:"title,omitempty"`
	Standard string   `yaml:"standard,omitempty" json:"standard,omitempty"` // ISO, PIP, or empty
	Folder   string   `yaml:"folder,omitempty" json:"folder,omitempty"`
	Prefix   string   `yaml:"prefix,omitempty" json:"prefix"`

	CatalogFile   string `yaml:"catalog,omitempty" json:"catalog"`
	CompanionFile string `yaml:"companion,omitempty" json:"companion"`
	CSVFile       string `yaml:"csv,omitempty" json:"csv"`

	PolicyName   string         `yaml:"policy,omitempty" json:"policy"`
	Placeholders []Placeholder  `yaml:"placeholders,omitempty" json:"-"`
	Titles       TitleFilter    `yaml:"titles,omitempty" json:"-"`
	Names        map[int]string `yaml:"names,omitempty" json:"-"`
	Categories   []Rule         `yaml:"categories,omitempty" json:"-"`
	Report       ReportSpec     `yaml:"report,omitempty" json:"-"`

	// Requires is a semver constraint on the running pidsym version.
	Requires string `yaml:"requires,omitempty" json:"requires,omitempty"`

	// Policy is resolved from PolicyName at registration.
	Policy Policy `yaml:"-" json:"-"`

	// Source is the file the family was loaded from ("builtin" for embedded).
	Source string `yaml:"-" json:"source"`
}

// ReportSpec describes the analysis report of a family.
type ReportSpec struct {
	Title   string `yaml:"title,omitempty"`
	Heading string `yaml:"heading,omitempty"`
	// Rules groups names for the report; empty means use the CSV categories.
	Rules  []Rule  `yaml:"rules,omitempty"`
	Blocks []Block `yaml:"blocks,omitempty"`
}

// Block is a report section: a bullet list or a computed statistic.
type Block struct {
	Heading string   `yaml:"heading,omitempty"`
	Bullets []string `yaml:"bullets,omitempty"`
	Stat    string   `yaml:"stat,omitempty"`
	Note    string   `yaml:"note,omitempty"`
}

// Filename is the output file name of the symbol at index.
func (f *Family) Filename(index int, name string) string {
	return Filename(f.Prefix, index, name)
}

// Placeholder is the generated name used when nothing better is known.
func (f *Family) Placeholder(index int) string {
	return PlaceholderName(f.Placeholders, index)
}

// Category is the CSV category of a display name.
func (f *Family) Category(name string) string {
	return Categorize(f.Categories, name)
}

// ReportCategory is the analysis-report grouping of a display name.
func (f *Family) ReportCategory(name string) string {
	if len(f.Report.Rules) == 0 {
		return f.Category(name)
	}
	return Categorize(f.Report.Rules, name)
}

// Dir returns the family folder below root: {root}/{standard}/{folder}.
// Families without a standard or folder live directly in root. An empty
// root means the working directory is the family folder.
func (f *Family) Dir(root string) string {
	if root == "" || f.Standard == "" || f.Folder == "" {
		return root
	}
	return filepath.Join(root, f.Standard, f.Folder)
}

// applyDefaults fills derived fields of a family loaded from YAML.
func (f *Family) applyDefaults() {
	slug := Slugify(f.Name)
	if f.Prefix == "" {
		if f.Standard == "" {
			f.Prefix = "pid_family_" + slug
		} else {
			f.Prefix = "pid_" + strings.ToLower(f.Standard) + "_" + slug
		}
	}
	base := strings.ReplaceAll(f.Prefix, "_", "-")
	if f.CatalogFile == "" {
		f.CatalogFile = base + ".json"
	}
	if f.CompanionFile == "" {
		f.CompanionFile = base + ".svg"
	}
	if f.CSVFile == "" {
		f.CSVFile = slug + "_reference.csv"
	}
	if f.PolicyName == "" {
		f.PolicyName = "body"
	}
	if f.Title == "" {
		f.Title = cases.Title(language.English).String(strings.ReplaceAll(f.Name, "-", " "))
	}
	if len(f.Placeholders) == 0 {
		f.Placeholders = []Placeholder{{Template: f.Title + " {n}"}}
	}
	if f.Report.Title == "" {
		f.Report.Title = strings.ToUpper(f.Title) + " SYMBOL ANALYSIS REPORT"
	}
	if f.Report.Heading == "" {
		f.Report.Heading = "Symbol Categories"
	}
}
