// Package tsfile implements a columnar, self-describing time-series file
// format: tagged devices grouped into tables, each measurement stored in its
// own chunk/page hierarchy with per-chunk statistics and a bloom-filtered
// index tree for O(log n) lookup without a full scan.
//
// # Basic usage
//
// Writing:
//
//	w, err := tsfile.NewWriter(f, nil)
//	table, _ := schema.NewTableSchema("sensors", []schema.ColumnSchema{...})
//	w.RegisterTable(table)
//	w.WriteRecord(schema.Record{DeviceID: dev, Time: ts, Values: values})
//	w.Close()
//
// Reading:
//
//	r, err := tsfile.Open(f, size, nil)
//	ts, err := r.Lookup(dev, "temperature")
//	blocks, err := r.NewBlockReader("sensors", []string{"temperature"}, nil, nil, false)
//
// This package re-exports the most common entry points from writer and
// reader; for anything beyond construction and top-level navigation, use
// those packages directly.
package tsfile

import (
	"io"

	"github.com/tsfile-go/tsfile/config"
	"github.com/tsfile-go/tsfile/reader"
	"github.com/tsfile-go/tsfile/writer"
)

// NewWriter creates a Writer that streams a TsFile to out. A nil cfg uses
// config.NewWriter's defaults.
func NewWriter(out io.Writer, cfg *config.Writer) (*writer.Writer, error) {
	return writer.New(out, cfg)
}

// Open discovers a TsFile's footer from ra and returns a Reader positioned
// to answer Lookup/NewSeriesScan/NewBlockReader calls. size is the total
// byte length backing ra. A nil cfg uses config.NewReader's defaults.
func Open(ra io.ReaderAt, size int64, cfg *config.Reader) (*reader.Reader, error) {
	return reader.Open(ra, size, cfg)
}
