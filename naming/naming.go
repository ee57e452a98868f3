// Package naming assigns display names to catalog symbols.
//
// Precedence is fixed: a predefined table entry, then a title scraped from
// the companion SVG, then the family placeholder. Every index gets a name.
package naming

import (
	"fmt"
	"html"
	"os"
	"regexp"
	"strings"

	"github.com/hazop-ai/pidsym/errors"
)

// Table maps a catalog index to a display name.
type Table map[int]string

// Filter accepts or rejects scraped titles.
type Filter interface {
	Accept(title string) bool
}

var (
	symbolDelimiter = regexp.MustCompile(`<svg viewBox`)
	titlePattern    = regexp.MustCompile(`<title>([^<]+)</title>`)
)

// ScrapeTitles reads the companion SVG at path and returns the accepted
// titles by position. Read failures are marked errors.ErrNameScrape.
func ScrapeTitles(path string, filter Filter) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Table{}, errors.Mark(errors.Wrapf(err, "failed to read companion svg %s", path), errors.ErrNameScrape)
	}
	return ParseTitles(string(data), filter), nil
}

// ParseTitles splits content on repeated "<svg viewBox" openings, ignores
// the text before the first one, and takes the first <title> of each chunk.
// The chunk position is the symbol index.
func ParseTitles(content string, filter Filter) Table {
	chunks := symbolDelimiter.Split(content, -1)
	titles := make(Table)
	for i, chunk := range chunks[1:] {
		m := titlePattern.FindStringSubmatch(chunk)
		if m == nil {
			continue
		}
		title := strings.TrimSpace(html.UnescapeString(m[1]))
		if title == "" || (filter != nil && !filter.Accept(title)) {
			continue
		}
		titles[i] = title
	}
	return titles
}

// Resolve returns the display name of index. It never returns "".
func Resolve(index int, predefined, scraped Table, placeholder string) string {
	if name := strings.TrimSpace(predefined[index]); name != "" {
		return name
	}
	if name := strings.TrimSpace(scraped[index]); name != "" {
		return name
	}
	if placeholder = strings.TrimSpace(placeholder); placeholder != "" {
		return placeholder
	}
	return fmt.Sprintf("Symbol %d", index+1)
}

// Merge returns the names of indices, resolved with Resolve.
// placeholder produces the fallback name of an index.
func Merge(indices []int, predefined, scraped Table, placeholder func(int) string) Table {
	out := make(Table, len(indices))
	for _, i := range indices {
		fallback := ""
		if placeholder != nil {
			fallback = placeholder(i)
		}
		out[i] = Resolve(i, predefined, scraped, fallback)
	}
	return out
}
