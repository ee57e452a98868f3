// Package symbol turns raw P&ID symbol fragments into standalone SVG files.
//
// Normalize is a pure text pass: it never builds a document tree. The input is
// split on '>' and each segment's trailing tag is classified on its own, so
// the decision for one element never depends on its parent or siblings.
package symbol

import (
	"regexp"
	"strings"
	"sync"
)

const (
	svgNamespace   = `xmlns="http://www.w3.org/2000/svg"`
	xlinkNamespace = `xmlns:xlink="http://www.w3.org/1999/xlink"`
	xmlDeclaration = `<?xml version="1.0" encoding="UTF-8"?>` + "\n"
)

// ShapeTags are the elements that receive stroke and fill defaults.
var ShapeTags = []string{"path", "rect", "circle", "ellipse", "polygon", "polyline", "line"}

var shapeSet = func() map[string]bool {
	m := make(map[string]bool, len(ShapeTags))
	for _, t := range ShapeTags {
		m[t] = true
	}
	return m
}()

var vendorPatterns sync.Map // joined prefixes -> *regexp.Regexp

func vendorPattern(prefixes []string) *regexp.Regexp {
	key := strings.Join(prefixes, "|")
	if re, ok := vendorPatterns.Load(key); ok {
		return re.(*regexp.Regexp)
	}
	quoted := make([]string, len(prefixes))
	for i, p := range prefixes {
		quoted[i] = regexp.QuoteMeta(p)
	}
	re := regexp.MustCompile(`\s+(?:` + strings.Join(quoted, "|") + `):[\w-]+="[^"]*"`)
	vendorPatterns.Store(key, re)
	return re
}

// Normalize rewrites one symbol fragment into a self-contained SVG document.
//
// Steps, in order: strip vendor attributes, unescape &quot;, declare the SVG
// and xlink namespaces, add stroke and fill defaults to shape elements, and
// prepend an XML declaration. Only the first step removes text; everything
// after it only inserts attributes. Normalize(Normalize(s, p), p) equals
// Normalize(s, p).
func Normalize(raw string, p Policy) string {
	s := vendorPattern(p.vendorPrefixes()).ReplaceAllString(raw, "")
	s = strings.ReplaceAll(s, "&quot;", `"`)

	root := rootTag(s)
	if !strings.Contains(root, "xmlns=") {
		s = strings.Replace(s, "<svg", "<svg "+svgNamespace, 1)
	}
	if strings.Contains(s, "xlink:href") && !strings.Contains(root, "xmlns:xlink") {
		s = strings.Replace(s, "<svg", "<svg "+xlinkNamespace, 1)
	}

	segments := strings.Split(s, ">")
	for i, seg := range segments {
		segments[i] = fixSegment(seg, p)
	}
	s = strings.Join(segments, ">")

	if !strings.HasPrefix(s, "<?xml") {
		s = xmlDeclaration + s
	}
	return s
}

// rootTag returns the opening <svg ...> tag, or "" when there is none.
// Namespace declarations on nested elements (an XHTML div inside a
// foreignObject) do not count for the root.
func rootTag(s string) string {
	start := strings.Index(s, "<svg")
	if start < 0 {
		return ""
	}
	end := strings.IndexByte(s[start:], '>')
	if end < 0 {
		return s[start:]
	}
	return s[start : start+end]
}

// fixSegment applies the stroke and fill defaults to the tag that ends seg.
func fixSegment(seg string, p Policy) string {
	lt := strings.LastIndexByte(seg, '<')
	if lt < 0 {
		return seg
	}
	head, text := seg[:lt], seg[lt:]

	el, ok := parseElement(text)
	if !ok || !shapeSet[el.tag] {
		return seg
	}

	marker := p.markerStroke()
	stroke, stroked := el.get("stroke")
	if !stroked && el.has("stroke-width") {
		at := el.offset("stroke-width")
		text = text[:at] + `stroke="` + FillBlack + `" ` + text[at:]
		stroke, stroked = FillBlack, true
	}

	if !el.has("fill") {
		fill := resolveFill(el, stroke, marker, p)
		if !stroked && p.MarkerRefFill != "" && el.referencesMarker() && closedShape(el, p) {
			fill = p.MarkerRefFill
		}
		if fill != "" {
			cut := 1 + len(el.tag)
			text = text[:cut] + ` fill="` + fill + `"` + text[cut:]
		}
	}

	return head + text
}

// resolveFill is the per-element decision table.
func resolveFill(el element, stroke, marker string, p Policy) string {
	if strings.EqualFold(stroke, marker) {
		return FillNone
	}

	switch el.tag {
	case "path":
		d, _ := el.get("d")
		if !strings.ContainsAny(d, p.closers()) {
			return orNone(p.OpenPath)
		}
		if p.ArrowPath && !(strings.Contains(d, "M") && strings.ContainsAny(d, "Ll")) {
			return orNone(p.OpenPath)
		}
		return orNone(p.ClosedPath)

	case "circle":
		if sc := p.SmallCircle; sc != nil {
			if r, ok := el.number("r"); ok && r <= sc.MaxRadius {
				return sc.Fill
			}
		}

	case "rect":
		if br := p.BodyRect; br != nil {
			w, okW := el.number("width")
			h, okH := el.number("height")
			if !okW || !okH || (w <= br.MinSize && h <= br.MinSize) {
				return orNone(br.SmallFill)
			}
		}
	}

	return p.fillFor(el.tag)
}

func closedShape(el element, p Policy) bool {
	switch el.tag {
	case "polygon":
		return true
	case "path":
		d, _ := el.get("d")
		return strings.ContainsAny(d, p.closers())
	}
	return false
}
