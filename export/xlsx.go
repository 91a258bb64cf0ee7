package export

import (
	"fmt"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

const defaultSheet = "Sheet1"

// writeXLSX writes one workbook with a sheet per frame. Missing values are
// left blank.
func writeXLSX(dir string, frames []Frame, _ Meta) ([]string, error) {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, err
	}

	for _, frame := range frames {
		if err := writeSheet(f, frame, headerStyle); err != nil {
			return nil, fmt.Errorf("sheet %s: %w", frame.Title, err)
		}
	}
	if err := f.DeleteSheet(defaultSheet); err != nil {
		return nil, err
	}
	f.SetActiveSheet(0)

	path := filepath.Join(dir, "doped.xlsx")
	if err := f.SaveAs(path); err != nil {
		return nil, err
	}
	return []string{path}, nil
}

func writeSheet(f *excelize.File, frame Frame, headerStyle int) error {
	sheet := frame.Title
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	headers := frame.Headers()
	for j, h := range headers {
		cell, err := excelize.CoordinatesToCellName(j+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
		return err
	}

	for i := 0; i < frame.Len(); i++ {
		for j := range frame.Columns {
			v := frame.Columns[j].Value(i)
			if v == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}

	lastCol, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", lastCol, 16)
}
