package naming

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hazop-ai/pidsym/errors"
)

type containsFilter string

func (c containsFilter) Accept(title string) bool {
	return strings.Contains(strings.ToLower(title), string(c))
}

const companion = `<?xml version="1.0"?>
<svg xmlns="http://www.w3.org/2000/svg"><title>P&amp;ID ISO Valves</title>
<svg viewBox="0 0 40 40"><title>Gate Valve</title><path d="M0 0"/></svg>
<svg viewBox="0 0 40 40"><path d="M0 0"/></svg>
<svg viewBox="0 0 40 40"><title>Strainer</title><title>Second</title></svg>
<svg viewBox="0 0 40 40"><title> Ball Valve &amp; Actuator </title></svg>
</svg>`

func TestParseTitles(t *testing.T) {
	titles := ParseTitles(companion, nil)
	assert.Equal(t, Table{
		0: "Gate Valve",
		2: "Strainer",
		3: "Ball Valve & Actuator",
	}, titles)

	filtered := ParseTitles(companion, containsFilter("valve"))
	assert.Equal(t, Table{0: "Gate Valve", 3: "Ball Valve & Actuator"}, filtered)
}

func TestScrapeTitles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pid-iso-valves.svg")
	require.NoError(t, os.WriteFile(path, []byte(companion), 0o644))

	titles, err := ScrapeTitles(path, nil)
	require.NoError(t, err)
	assert.Len(t, titles, 3)

	titles, err = ScrapeTitles(filepath.Join(t.TempDir(), "missing.svg"), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNameScrape))
	assert.False(t, errors.IsFatal(err))
	assert.NotNil(t, titles)
	assert.Empty(t, titles)
}

func TestResolve_Precedence(t *testing.T) {
	predefined := Table{0: "Gate Valve", 2: "  "}
	scraped := Table{0: "Scraped Gate", 1: "Globe Valve", 2: "Check Valve"}

	assert.Equal(t, "Gate Valve", Resolve(0, predefined, scraped, "Valve 1"))
	assert.Equal(t, "Globe Valve", Resolve(1, predefined, scraped, "Valve 2"))
	assert.Equal(t, "Check Valve", Resolve(2, predefined, scraped, "Valve 3"))
	assert.Equal(t, "Valve 4", Resolve(3, predefined, scraped, "Valve 4"))
	assert.Equal(t, "Symbol 5", Resolve(4, nil, nil, ""))
}

func TestMerge(t *testing.T) {
	names := Merge([]int{0, 1, 7}, Table{0: "Gate Valve"}, Table{1: "Globe"}, func(i int) string {
		return "Valve " + string(rune('1'+i))
	})
	assert.Equal(t, Table{0: "Gate Valve", 1: "Globe", 7: "Valve 8"}, names)
	for _, n := range names {
		assert.NotEmpty(t, n)
	}
}
