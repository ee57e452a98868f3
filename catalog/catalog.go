// Package catalog loads the JSON symbol catalogs exported by the drawing tool.
//
// A catalog is a single JSON object whose keys are decimal symbol indices and
// whose values are raw SVG fragments:
//
//	{"0": "<svg viewBox=\"0 0 40 40\">...</svg>", "1": "..."}
package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"os"
	"sort"
	"strconv"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/tidwall/gjson"

	"github.com/hazop-ai/pidsym/errors"
)

//go:embed schema.json
var schemaJSON []byte

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

// Record is one symbol of a catalog.
type Record struct {
	Index       int    `json:"index"`
	RawSVG      string `json:"-"`
	DisplayName string `json:"name,omitempty"`
}

// Load reads and parses the catalog at path.
// Every failure is marked errors.ErrCatalogLoad.
func Load(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithHint(
			loadError(err, "failed to read catalog %s", path),
			"pass --json or run from the family folder")
	}
	return Parse(data, path)
}

// Parse validates data against the catalog schema and returns its records
// sorted by index. source names the input in error messages.
func Parse(data []byte, source string) ([]Record, error) {
	data = bytes.TrimSpace(data)
	if !gjson.ValidBytes(data) {
		return nil, errors.Wrapf(errors.ErrCatalogLoad, "%s: invalid JSON", source)
	}

	if err := validate(data); err != nil {
		return nil, loadError(err, "%s", source)
	}

	root := gjson.ParseBytes(data)
	records := make([]Record, 0, 64)
	var walkErr error
	root.ForEach(func(key, value gjson.Result) bool {
		index, err := strconv.Atoi(key.String())
		if err != nil {
			walkErr = loadError(err, "%s: key %q is not an index", source, key.String())
			return false
		}
		records = append(records, Record{Index: index, RawSVG: value.String()})
		return true
	})
	if walkErr != nil {
		return nil, walkErr
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Index < records[j].Index
	})
	return records, nil
}

// validate checks the catalog shape: an object of decimal keys to non-empty strings.
func validate(data []byte) error {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("catalog.json", bytes.NewReader(schemaJSON)); err != nil {
			schemaErr = errors.Wrap(err, "add catalog schema")
			return
		}
		schema, schemaErr = compiler.Compile("catalog.json")
	})
	if schemaErr != nil {
		return errors.Wrap(schemaErr, "compile catalog schema")
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return errors.Wrap(err, "unmarshal catalog")
	}
	if err := schema.Validate(v); err != nil {
		return errors.Wrap(err, "catalog does not match schema")
	}
	return nil
}

func loadError(err error, format string, args ...interface{}) error {
	return errors.Mark(errors.Wrapf(err, format, args...), errors.ErrCatalogLoad)
}
