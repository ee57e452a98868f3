package symbol

import (
	"regexp"
	"strconv"
	"strings"
)

var attrPattern = regexp.MustCompile(`([A-Za-z_][\w:.-]*)\s*=\s*(?:"([^"]*)"|'([^']*)')`)

// attribute is one name="value" pair and the byte offset of its name
// inside the element text.
type attribute struct {
	name  string
	value string
	start int
}

// element is the tag that ends one '>'-delimited segment.
type element struct {
	tag   string
	attrs []attribute
}

// parseElement returns the element opened by the last '<' in text.
// Closing tags, comments and processing instructions yield ok=false.
func parseElement(text string) (el element, ok bool) {
	if !strings.HasPrefix(text, "<") || len(text) < 2 {
		return element{}, false
	}
	end := 1
	for end < len(text) {
		c := text[end]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '/' {
			break
		}
		end++
	}
	el.tag = text[1:end]
	if el.tag == "" || strings.ContainsAny(el.tag[:1], "/!?") {
		return element{}, false
	}

	for _, m := range attrPattern.FindAllStringSubmatchIndex(text[end:], -1) {
		value := ""
		if m[4] >= 0 {
			value = text[end+m[4] : end+m[5]]
		} else if m[6] >= 0 {
			value = text[end+m[6] : end+m[7]]
		}
		el.attrs = append(el.attrs, attribute{
			name:  text[end+m[2] : end+m[3]],
			value: value,
			start: end + m[2],
		})
	}
	return el, true
}

func (el element) get(name string) (string, bool) {
	for _, a := range el.attrs {
		if a.name == name {
			return a.value, true
		}
	}
	return "", false
}

func (el element) has(name string) bool {
	_, ok := el.get(name)
	return ok
}

func (el element) offset(name string) int {
	for _, a := range el.attrs {
		if a.name == name {
			return a.start
		}
	}
	return -1
}

func (el element) referencesMarker() bool {
	for _, a := range el.attrs {
		if strings.HasPrefix(a.name, "marker-") {
			return true
		}
	}
	return false
}

func (el element) number(name string) (float64, bool) {
	raw, ok := el.get(name)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(raw, "px")), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
