package export

import (
	"encoding/csv"
	"fmt"
	"os"
)

// writeCSV writes one file per frame. Missing values are empty cells.
func writeCSV(dir string, frames []Frame, _ Meta) ([]string, error) {
	paths := make([]string, 0, len(frames))
	for _, f := range frames {
		path := framePath(dir, f, FormatCSV)
		if err := writeCSVFile(path, f); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeCSVFile(path string, f Frame) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(f.Headers()); err != nil {
		return err
	}
	record := make([]string, len(f.Columns))
	for i := 0; i < f.Len(); i++ {
		for j := range f.Columns {
			record[j] = f.Columns[j].Text(i)
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return file.Close()
}
