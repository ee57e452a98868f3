// Package emit writes extraction artifacts: symbol SVG files, the CSV and
// XLSX reference indexes and the analysis report.
package emit

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"

	"github.com/hazop-ai/pidsym/am"
	"github.com/hazop-ai/pidsym/errors"
)

// Header is the column row of the reference indexes.
var Header = []string{"Index", "Filename", "Description", "Category"}

// Row is one symbol in a reference index.
type Row struct {
	Index       int    `json:"index"`
	Filename    string `json:"filename"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

func (r Row) record() []string {
	return []string{strconv.Itoa(r.Index), r.Filename, r.Description, r.Category}
}

// WriteSVG writes content to dir/filename, creating dir when needed.
// It returns the written path.
func WriteSVG(dir, filename, content string) (string, error) {
	if err := os.MkdirAll(dir, am.DefaultDirPermissions); err != nil {
		return "", errors.Wrapf(err, "failed to create output directory %s", dir)
	}
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, []byte(content), am.DefaultFilePermissions); err != nil {
		return "", errors.Wrapf(err, "failed to write %s", path)
	}
	return path, nil
}

// WriteCSV writes rows under Header to path.
func WriteCSV(path string, rows []Row) error {
	if err := os.MkdirAll(filepath.Dir(path), am.DefaultDirPermissions); err != nil {
		return errors.Wrapf(err, "failed to create directory for %s", path)
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", path)
	}

	w := csv.NewWriter(f)
	if err := w.Write(Header); err != nil {
		f.Close()
		return errors.Wrapf(err, "failed to write %s", path)
	}
	for _, r := range rows {
		if err := w.Write(r.record()); err != nil {
			f.Close()
			return errors.Wrapf(err, "failed to write %s", path)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return f.Close()
}
