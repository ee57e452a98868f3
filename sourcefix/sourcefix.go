// Package sourcefix applies one-off text substitutions to generated editor
// sources: cleaning auto-generated symbol names and stripping debug logging.
package sourcefix

import (
	"os"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/hazop-ai/pidsym/am"
	"github.com/hazop-ai/pidsym/errors"
)

// consoleCall matches console.log(...) with one level of nested parentheses.
const consoleCall = `console\.log\((?:[^;()]|\([^()]*\))*\);?`

// Marker selects the manifest lines FixNames rewrites.
const Marker = "name: 'Pid Iso Pipes Signal"

var (
	namePattern     = regexp.MustCompile(`name: '([^']+)'`)
	pipesPrefix     = regexp.MustCompile(`^Pid Iso Pipes Signal \d{3} `)
	familyPrefix    = regexp.MustCompile(`^Pid Iso \w+ \d{3} `)
	consoleLine     = regexp.MustCompile("(?m)^[ \t]*" + consoleCall + "[ \t]*\r?\n")
	consoleInline   = regexp.MustCompile(consoleCall)
	extraBlankLines = regexp.MustCompile(`\n\s*\n\s*\n`)
)

// CleanName strips the generated "Pid Iso <Family> NNN " prefix and
// capitalizes each word: first rune upper, the rest lower, so "T-JOINT"
// becomes "T-joint" rather than "T-Joint".
func CleanName(name string) string {
	name = pipesPrefix.ReplaceAllString(name, "")
	name = familyPrefix.ReplaceAllString(name, "")

	// Casers keep state and must not be shared across goroutines.
	lower := cases.Lower(language.English)
	words := strings.Fields(name)
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + lower.String(w[size:])
	}
	return strings.Join(words, " ")
}

// FixNames rewrites the quoted name on every line containing Marker.
// It returns the new content and the number of lines changed.
func FixNames(content string) (string, int) {
	lines := strings.Split(content, "\n")
	changed := 0
	for i, line := range lines {
		if !strings.Contains(line, Marker) {
			continue
		}
		m := namePattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		fixed := CleanName(m[1])
		if fixed == m[1] {
			continue
		}
		lines[i] = strings.Replace(line, "name: '"+m[1]+"'", "name: '"+fixed+"'", 1)
		changed++
	}
	return strings.Join(lines, "\n"), changed
}

// StripLogs removes console.log statements and collapses the blank lines
// they leave behind. It returns the new content and the number removed.
func StripLogs(content string) (string, int) {
	n := len(consoleLine.FindAllStringIndex(content, -1))
	content = consoleLine.ReplaceAllString(content, "")
	n += len(consoleInline.FindAllStringIndex(content, -1))
	content = consoleInline.ReplaceAllString(content, "")
	content = extraBlankLines.ReplaceAllString(content, "\n\n")
	return content, n
}

// Transform is a whole-file rewrite.
type Transform func(content string) (string, int)

// Result reports a rewrite.
type Result struct {
	Path    string `json:"path"`
	Changes int    `json:"changes"`
	Written bool   `json:"written"`
}

// Options control Apply.
type Options struct {
	// Force rewrites files with uncommitted changes.
	Force bool
	// DryRun reports the changes without writing.
	DryRun bool
}

// Apply runs fn over the file at path and writes the result back when it
// changed. Files with uncommitted changes are refused unless opts.Force.
func Apply(path string, fn Transform, opts Options) (*Result, error) {
	if !opts.Force {
		if err := CheckClean(path); err != nil {
			return nil, err
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to stat %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}

	out, n := fn(string(data))
	res := &Result{Path: path, Changes: n}
	if out == string(data) || opts.DryRun {
		return res, nil
	}

	mode := info.Mode().Perm()
	if mode == 0 {
		mode = am.DefaultFilePermissions
	}
	if err := os.WriteFile(path, []byte(out), mode); err != nil {
		return nil, errors.Wrapf(err, "failed to write %s", path)
	}
	res.Written = true
	return res, nil
}
