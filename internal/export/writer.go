package export

import (
	"fmt"
	"os"

	"github.com/parquet-go/parquet-go"

	"github.com/gyeh/mrfingest/internal/model"
)

// flushInterval bounds writer memory by closing a row group every so
// many rows.
const flushInterval = 50_000

// Writer streams ChargeRows into a Snappy-compressed Parquet file.
type Writer struct {
	file       *os.File
	writer     *parquet.GenericWriter[ChargeRow]
	count      int64
	sinceFlush int64
}

// Create opens a new Parquet file for writing.
func Create(path string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create parquet file: %w", err)
	}
	w := parquet.NewGenericWriter[ChargeRow](f,
		parquet.Compression(&parquet.Snappy),
	)
	return &Writer{file: f, writer: w}, nil
}

// WriteDocument fans one stored document out into payer rows and
// appends them.
func (w *Writer) WriteDocument(doc model.StoredChargeDocument, hospitalName string) error {
	rows := DocumentRows(doc, hospitalName)
	if _, err := w.writer.Write(rows); err != nil {
		return fmt.Errorf("write parquet rows: %w", err)
	}
	w.count += int64(len(rows))
	w.sinceFlush += int64(len(rows))

	if w.sinceFlush >= flushInterval {
		if err := w.writer.Flush(); err != nil {
			return fmt.Errorf("flush parquet row group: %w", err)
		}
		w.sinceFlush = 0
	}
	return nil
}

// Count returns the number of rows written so far.
func (w *Writer) Count() int64 {
	return w.count
}

// Close flushes the footer and closes the file.
func (w *Writer) Close() error {
	if err := w.writer.Close(); err != nil {
		w.file.Close()
		return fmt.Errorf("close parquet writer: %w", err)
	}
	return w.file.Close()
}
