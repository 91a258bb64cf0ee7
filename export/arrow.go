package export

import (
	"fmt"
	"os"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/ipc"
	"github.com/apache/arrow/go/v17/arrow/memory"
)

// ArrowSchema returns the Arrow schema of a frame. Every column is
// nullable; ints are int64.
func ArrowSchema(f Frame) *arrow.Schema {
	fields := make([]arrow.Field, 0, len(f.Columns))
	for _, c := range f.Columns {
		fields = append(fields, arrow.Field{Name: c.Name, Type: arrowType(c.Kind), Nullable: true})
	}
	return arrow.NewSchema(fields, nil)
}

func arrowType(k Kind) arrow.DataType {
	switch k {
	case KindInt:
		return arrow.PrimitiveTypes.Int64
	case KindFloat:
		return arrow.PrimitiveTypes.Float64
	default:
		return arrow.BinaryTypes.String
	}
}

// NewArrowRecord builds an Arrow record from a frame. The caller releases it.
func NewArrowRecord(f Frame, pool memory.Allocator) arrow.Record {
	schema := ArrowSchema(f)
	b := array.NewRecordBuilder(pool, schema)
	defer b.Release()

	for j := range f.Columns {
		col := &f.Columns[j]
		switch fb := b.Field(j).(type) {
		case *array.StringBuilder:
			fb.AppendValues(col.Strings, nil)
		case *array.Int64Builder:
			for i := 0; i < f.Len(); i++ {
				if col.Missing(i) {
					fb.AppendNull()
					continue
				}
				fb.Append(int64(col.Ints[i]))
			}
		case *array.Float64Builder:
			for i := 0; i < f.Len(); i++ {
				if col.Missing(i) {
					fb.AppendNull()
					continue
				}
				fb.Append(col.Floats[i])
			}
		}
	}
	return b.NewRecord()
}

// writeArrow writes one Arrow IPC file per frame.
func writeArrow(dir string, frames []Frame, _ Meta) ([]string, error) {
	pool := memory.NewGoAllocator()
	paths := make([]string, 0, len(frames))
	for _, f := range frames {
		path := framePath(dir, f, FormatArrow)
		if err := writeArrowFile(path, f, pool); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeArrowFile(path string, f Frame, pool memory.Allocator) error {
	rec := NewArrowRecord(f, pool)
	defer rec.Release()

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	w, err := ipc.NewFileWriter(file, ipc.WithSchema(rec.Schema()), ipc.WithAllocator(pool))
	if err != nil {
		return fmt.Errorf("failed to open arrow writer: %w", err)
	}
	if err := w.Write(rec); err != nil {
		w.Close()
		return fmt.Errorf("failed to write arrow record: %w", err)
	}
	if err := w.Close(); err != nil {
		return err
	}
	return file.Close()
}
