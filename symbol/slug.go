package symbol

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	slugStrip    = regexp.MustCompile(`[^\p{L}\p{M}\p{N}_\s-]`)
	slugCollapse = regexp.MustCompile(`[-\s]+`)
)

// Slugify renders a display name as a lowercase, underscore-separated file
// name fragment: "Gate Valve - Wedge" becomes "gate_valve_wedge".
func Slugify(name string) string {
	s := slugStrip.ReplaceAllString(name, "")
	s = slugCollapse.ReplaceAllString(s, "_")
	return strings.ToLower(s)
}

// Filename returns {prefix}_{index:03d}_{slug}.svg, dropping the slug part
// when name is empty or slugifies to nothing.
func Filename(prefix string, index int, name string) string {
	return Stem(prefix, index, name) + ".svg"
}

// Stem is Filename without the extension.
func Stem(prefix string, index int, name string) string {
	if slug := Slugify(name); slug != "" {
		return fmt.Sprintf("%s_%03d_%s", prefix, index, slug)
	}
	return fmt.Sprintf("%s_%03d", prefix, index)
}
