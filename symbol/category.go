package symbol

import (
	"strconv"
	"strings"
)

// FallbackCategory is returned when no rule matches.
const FallbackCategory = "Other"

// Rule is one step of a keyword-based categorizer. Rules are evaluated in
// order and the first one that produces a value wins. Exactly one of Split,
// Keep, Contains, FirstWord or Default should be set.
type Rule struct {
	// Split: when the name contains Split, use the text before it with every
	// occurrence of Trim removed, then append Suffix.
	Split string `yaml:"split,omitempty" json:"split,omitempty"`
	Trim  string `yaml:"trim,omitempty" json:"trim,omitempty"`

	// Keep: when the name contains Keep, use the text before it plus Keep.
	Keep string `yaml:"keep,omitempty" json:"keep,omitempty"`

	// Contains: the first keyword found in the name yields Value, or the
	// keyword plus Suffix when Value is empty.
	Contains []string `yaml:"contains,omitempty" json:"contains,omitempty"`
	Value    string   `yaml:"value,omitempty" json:"value,omitempty"`

	// FirstWord: the first word plus Suffix. A single-word name is returned
	// unchanged when Suffix is set.
	FirstWord bool `yaml:"first_word,omitempty" json:"first_word,omitempty"`

	Suffix  string `yaml:"suffix,omitempty" json:"suffix,omitempty"`
	Default string `yaml:"default,omitempty" json:"default,omitempty"`
}

func (r Rule) apply(name string) (string, bool) {
	switch {
	case r.Split != "":
		before, _, found := strings.Cut(name, r.Split)
		if !found {
			return "", false
		}
		if r.Trim != "" {
			before = strings.ReplaceAll(before, r.Trim, "")
		}
		return before + r.Suffix, true

	case r.Keep != "":
		before, _, found := strings.Cut(name, r.Keep)
		if !found {
			return "", false
		}
		return before + r.Keep, true

	case len(r.Contains) > 0:
		for _, kw := range r.Contains {
			if strings.Contains(name, kw) {
				if r.Value != "" {
					return r.Value, true
				}
				return kw + r.Suffix, true
			}
		}
		return "", false

	case r.FirstWord:
		words := strings.Fields(name)
		if len(words) == 0 {
			return "", false
		}
		if r.Suffix != "" && len(words) == 1 {
			return name, true
		}
		return words[0] + r.Suffix, true

	case r.Default != "":
		return r.Default, true
	}
	return "", false
}

// Categorize runs rules against name and returns the first match, or
// FallbackCategory.
func Categorize(rules []Rule, name string) string {
	for _, r := range rules {
		if c, ok := r.apply(name); ok {
			return c
		}
	}
	return FallbackCategory
}

// TitleFilter decides which scraped <title> texts are usable as names.
type TitleFilter struct {
	// Contains accepts titles containing any of these (case-sensitive).
	Contains []string `yaml:"contains,omitempty" json:"contains,omitempty"`
	// ContainsFold accepts titles containing any of these, ignoring case.
	ContainsFold []string `yaml:"contains_fold,omitempty" json:"contains_fold,omitempty"`
	// Exclude rejects titles containing any of these (document titles).
	Exclude []string `yaml:"exclude,omitempty" json:"exclude,omitempty"`
}

// Accept reports whether title passes the filter. A filter with no
// Contains/ContainsFold entries accepts everything not excluded.
func (f TitleFilter) Accept(title string) bool {
	for _, ex := range f.Exclude {
		if strings.Contains(title, ex) {
			return false
		}
	}
	if len(f.Contains) == 0 && len(f.ContainsFold) == 0 {
		return true
	}
	for _, kw := range f.Contains {
		if strings.Contains(title, kw) {
			return true
		}
	}
	lower := strings.ToLower(title)
	for _, kw := range f.ContainsFold {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// Placeholder generates a name for indices with no predefined or scraped
// name. {n} in Template is replaced by index-From+1; the placeholder with the
// greatest From not above the index is used.
type Placeholder struct {
	From     int    `yaml:"from,omitempty" json:"from,omitempty"`
	Template string `yaml:"template" json:"template"`
}

// PlaceholderName renders the placeholder for index. An empty list yields
// "Symbol {n}".
func PlaceholderName(placeholders []Placeholder, index int) string {
	chosen := Placeholder{Template: "Symbol {n}"}
	found := false
	for _, p := range placeholders {
		if p.From <= index && (!found || p.From >= chosen.From) {
			chosen, found = p, true
		}
	}
	n := index - chosen.From + 1
	return strings.ReplaceAll(chosen.Template, "{n}", strconv.Itoa(n))
}
