package emit

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/hazop-ai/pidsym/am"
	"github.com/hazop-ai/pidsym/errors"
)

const maxSheetName = 31

// SheetName turns a family title into a valid worksheet name.
func SheetName(title string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '-'
		}
		return r
	}, strings.TrimSpace(title))
	if name == "" {
		name = "Symbols"
	}
	if r := []rune(name); len(r) > maxSheetName {
		name = string(r[:maxSheetName])
	}
	return name
}

// WriteXLSX writes rows to a workbook at path with one sheet named after
// the family title.
func WriteXLSX(path, title string, rows []Row) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := SheetName(title)
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return errors.Wrapf(err, "failed to name sheet %q", sheet)
	}

	for i, h := range Header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for n, r := range rows {
		row := n + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
		write(1, r.Index)
		write(2, r.Filename)
		write(3, r.Description)
		write(4, r.Category)
	}

	_ = f.SetColWidth(sheet, "A", "A", 8)  // index
	_ = f.SetColWidth(sheet, "B", "B", 56) // filename
	_ = f.SetColWidth(sheet, "C", "C", 40) // description
	_ = f.SetColWidth(sheet, "D", "D", 24) // category

	if err := os.MkdirAll(filepath.Dir(path), am.DefaultDirPermissions); err != nil {
		return errors.Wrapf(err, "failed to create directory for %s", path)
	}
	if err := f.SaveAs(path); err != nil {
		return errors.Wrapf(err, "xlsx write %s", path)
	}
	return nil
}
