// Package writer implements the file writer orchestrator (spec.md's
// File writer orchestrator, C6): registration of tables and
// timeseries, row/tablet ingestion, memory-threshold flushing, and the
// final close sequence that emits the index tree, bloom filter, and
// footer.
//
// A Writer owns an append-only io.Writer and never seeks: every byte
// it emits lands at the current running offset, so offsets recorded
// for later index construction are always correct without a second
// pass over the file.
package writer

import (
	"io"
	"sort"

	"github.com/tsfile-go/tsfile/chunk"
	"github.com/tsfile-go/tsfile/config"
	"github.com/tsfile-go/tsfile/errs"
	"github.com/tsfile-go/tsfile/format"
	"github.com/tsfile-go/tsfile/metaindex"
	"github.com/tsfile-go/tsfile/schema"
)

// deviceKind distinguishes how a device's columns are chunked: as one
// shared time-chunk plus per-column value-chunks (aligned), or as
// independent per-measurement chunks each carrying its own time stream
// (unaligned). A device's kind is fixed by whichever registration call
// touches it first.
type deviceKind int

const (
	deviceKindUnset deviceKind = iota
	deviceKindUnaligned
	deviceKindAligned
)

// deviceState holds the open chunk writers for one device, reset after
// every flush.
type deviceState struct {
	id   schema.DeviceID
	kind deviceKind

	timeWriter *chunk.TimeWriter

	valueWriters map[string]*chunk.ValueWriter
	valueSchema  map[string]schema.MeasurementSchema
	valueOrder   []string

	chunkWriters map[string]*chunk.Writer
	chunkSchema  map[string]schema.MeasurementSchema
	chunkOrder   []string
}

func (ds *deviceState) empty() bool {
	switch ds.kind {
	case deviceKindAligned:
		if !ds.timeWriter.Empty() {
			return false
		}
		for _, vw := range ds.valueWriters {
			if !vw.Empty() {
				return false
			}
		}

		return true
	case deviceKindUnaligned:
		for _, cw := range ds.chunkWriters {
			if !cw.Empty() {
				return false
			}
		}

		return true
	default:
		return true
	}
}

// Writer assembles one TsFile. Callers must not use it from more than
// one goroutine at a time, per spec.md's single-threaded cooperative
// concurrency model.
type Writer struct {
	out    io.Writer
	offset int64
	cfg    *config.Writer

	tables  map[string]*schema.TableSchema
	devices map[string]*deviceState
	groups  []metaindex.ChunkGroupMeta

	recordsSinceFlush          int64
	recordCountForNextMemCheck int64

	closed bool
}

// New constructs a Writer that appends to out. A nil cfg builds one
// from defaults.
func New(out io.Writer, cfg *config.Writer) (*Writer, error) {
	if cfg == nil {
		var err error
		cfg, err = config.NewWriter()
		if err != nil {
			return nil, err
		}
	}

	w := &Writer{
		out:                        out,
		cfg:                        cfg,
		tables:                     make(map[string]*schema.TableSchema),
		devices:                    make(map[string]*deviceState),
		recordCountForNextMemCheck: 1,
	}

	if err := w.write([]byte(format.Magic)); err != nil {
		return nil, err
	}
	if err := w.write([]byte{format.Version}); err != nil {
		return nil, err
	}

	return w, nil
}

func (w *Writer) write(p []byte) error {
	n, err := w.out.Write(p)
	w.offset += int64(n)
	if err != nil {
		return errs.Wrap(errs.KindFileWriteErr, "tsfile: write failed", err)
	}

	return nil
}

func fillDefaults(ms schema.MeasurementSchema) schema.MeasurementSchema {
	if ms.Encoding == 0 {
		ms.Encoding = format.Plain
	}
	if ms.Compression == 0 {
		ms.Compression = format.Uncompressed
	}

	return ms
}

// RegisterTable registers a table schema, rejecting a duplicate name.
func (w *Writer) RegisterTable(ts *schema.TableSchema) error {
	if w.closed {
		return errs.New(errs.KindInvalidState, "tsfile: writer is closed")
	}
	if _, dup := w.tables[ts.TableName]; dup {
		return errs.New(errs.KindAlreadyExists, "tsfile: table "+ts.TableName+" already registered")
	}
	w.tables[ts.TableName] = ts

	return nil
}

func (w *Writer) deviceFor(id schema.DeviceID) *deviceState {
	key := id.String()
	ds, ok := w.devices[key]
	if !ok {
		ds = &deviceState{id: id}
		w.devices[key] = ds
	}

	return ds
}

// RegisterTimeseries registers one unaligned measurement for deviceID.
// A device already registered as aligned cannot also register an
// unaligned measurement.
func (w *Writer) RegisterTimeseries(deviceID schema.DeviceID, ms schema.MeasurementSchema) error {
	if w.closed {
		return errs.New(errs.KindInvalidState, "tsfile: writer is closed")
	}
	if _, ok := w.tables[deviceID.TableName]; !ok {
		return errs.New(errs.KindTableNotExist, "tsfile: table "+deviceID.TableName+" not registered")
	}

	ds := w.deviceFor(deviceID)
	switch ds.kind {
	case deviceKindUnset:
		ds.kind = deviceKindUnaligned
		ds.chunkWriters = make(map[string]*chunk.Writer)
		ds.chunkSchema = make(map[string]schema.MeasurementSchema)
	case deviceKindAligned:
		return errs.New(errs.KindInvalidState, "tsfile: device "+deviceID.String()+" already registered as aligned")
	}

	if _, dup := ds.chunkWriters[ms.Name]; dup {
		return errs.New(errs.KindAlreadyExists, "tsfile: measurement "+ms.Name+" already registered")
	}

	ms = fillDefaults(ms)
	cw, err := chunk.NewWriter(ms.Name, ms.DataType, w.cfg.TimeEncoding, ms.Encoding, ms.Compression, w.cfg.PageMaxPointCount, w.cfg.PageMaxMemoryBytes)
	if err != nil {
		return err
	}

	ds.chunkWriters[ms.Name] = cw
	ds.chunkSchema[ms.Name] = ms
	ds.chunkOrder = append(ds.chunkOrder, ms.Name)
	sort.Strings(ds.chunkOrder)

	return nil
}

// RegisterAligned registers deviceID as an aligned chunk group sharing
// one time-chunk across every column in mss.
func (w *Writer) RegisterAligned(deviceID schema.DeviceID, mss []schema.MeasurementSchema) error {
	if w.closed {
		return errs.New(errs.KindInvalidState, "tsfile: writer is closed")
	}
	if len(mss) == 0 {
		return errs.New(errs.KindInvalidArg, "tsfile: registerAligned requires at least one column")
	}
	if _, ok := w.tables[deviceID.TableName]; !ok {
		return errs.New(errs.KindTableNotExist, "tsfile: table "+deviceID.TableName+" not registered")
	}

	ds := w.deviceFor(deviceID)
	switch ds.kind {
	case deviceKindUnset:
		tw, err := chunk.NewTimeWriter(w.cfg.TimeEncoding, w.cfg.TimeCompression, w.cfg.PageMaxPointCount, w.cfg.PageMaxMemoryBytes)
		if err != nil {
			return err
		}
		ds.kind = deviceKindAligned
		ds.timeWriter = tw
		ds.valueWriters = make(map[string]*chunk.ValueWriter)
		ds.valueSchema = make(map[string]schema.MeasurementSchema)
	case deviceKindUnaligned:
		return errs.New(errs.KindInvalidState, "tsfile: device "+deviceID.String()+" already registered as unaligned")
	}

	for _, ms := range mss {
		if _, dup := ds.valueWriters[ms.Name]; dup {
			return errs.New(errs.KindAlreadyExists, "tsfile: measurement "+ms.Name+" already registered")
		}

		ms = fillDefaults(ms)
		vw, err := chunk.NewValueWriter(ms.Name, ms.DataType, ms.Encoding, ms.Compression, w.cfg.PageMaxPointCount, w.cfg.PageMaxMemoryBytes)
		if err != nil {
			return err
		}

		ds.valueWriters[ms.Name] = vw
		ds.valueSchema[ms.Name] = ms
		ds.valueOrder = append(ds.valueOrder, ms.Name)
	}
	sort.Strings(ds.valueOrder)

	return nil
}

// WriteRecord writes one row, routed by rec.DeviceID to an already
// registered device.
func (w *Writer) WriteRecord(rec schema.Record) error {
	if w.closed {
		return errs.New(errs.KindInvalidState, "tsfile: writer is closed")
	}

	ds, ok := w.devices[rec.DeviceID.String()]
	if !ok || ds.kind == deviceKindUnset {
		return errs.New(errs.KindDeviceNotExist, "tsfile: device "+rec.DeviceID.String()+" not registered")
	}

	switch ds.kind {
	case deviceKindAligned:
		rotated, err := ds.timeWriter.Write(rec.Time)
		if err != nil {
			return err
		}
		for _, name := range ds.valueOrder {
			if err := ds.valueWriters[name].WriteRow(rec.Time, rec.Values[name]); err != nil {
				return err
			}
		}
		if rotated {
			for _, name := range ds.valueOrder {
				if err := ds.valueWriters[name].ForceRotate(); err != nil {
					return err
				}
			}
		}
	case deviceKindUnaligned:
		for name, val := range rec.Values {
			if col, ok := w.tables[rec.DeviceID.TableName].Column(name); ok && col.Category == format.CategoryTag {
				continue
			}
			cw, ok := ds.chunkWriters[name]
			if !ok {
				return errs.New(errs.KindMeasurementNotExist, "tsfile: measurement "+name+" not registered")
			}
			if err := cw.Write(rec.Time, val); err != nil {
				return err
			}
		}
	}

	w.recordsSinceFlush++

	return w.maybeFlush()
}

// WriteTablet writes a columnar batch, splitting it into contiguous
// same-device runs (a single-device tablet is one run).
func (w *Writer) WriteTablet(tablet *schema.Tablet) error {
	return w.writeTabletRows(tablet)
}

// WriteTable is an alias for WriteTablet: both split by device using
// schema.Tablet.DeviceIDAt, so a tablet spanning one device or many is
// handled identically.
func (w *Writer) WriteTable(tablet *schema.Tablet) error {
	return w.writeTabletRows(tablet)
}

func (w *Writer) writeTabletRows(tablet *schema.Tablet) error {
	if w.closed {
		return errs.New(errs.KindInvalidState, "tsfile: writer is closed")
	}
	if tablet.RowCount == 0 {
		return nil
	}

	runStart := 0
	runID, err := tablet.DeviceIDAt(0)
	if err != nil {
		return err
	}

	for i := 1; i <= tablet.RowCount; i++ {
		var curID schema.DeviceID
		sameRun := i < tablet.RowCount
		if sameRun {
			curID, err = tablet.DeviceIDAt(i)
			if err != nil {
				return err
			}
			sameRun = curID.Equal(runID)
		}
		if sameRun {
			continue
		}

		if err := w.writeTabletRun(tablet, runStart, i, runID); err != nil {
			return err
		}
		runStart = i
		runID = curID
	}

	w.recordsSinceFlush += int64(tablet.RowCount)

	return w.maybeFlush()
}

func (w *Writer) writeTabletRun(tablet *schema.Tablet, start, end int, deviceID schema.DeviceID) error {
	ds, ok := w.devices[deviceID.String()]
	if !ok || ds.kind == deviceKindUnset {
		return errs.New(errs.KindDeviceNotExist, "tsfile: device "+deviceID.String()+" not registered")
	}

	switch ds.kind {
	case deviceKindAligned:
		for i := start; i < end; i++ {
			t := tablet.Times[i]
			rotated, err := ds.timeWriter.Write(t)
			if err != nil {
				return err
			}
			for _, name := range ds.valueOrder {
				var val any
				if vs, ok := tablet.Values[name]; ok && i < len(vs) {
					val = vs[i]
				}
				if err := ds.valueWriters[name].WriteRow(t, val); err != nil {
					return err
				}
			}
			if rotated {
				for _, name := range ds.valueOrder {
					if err := ds.valueWriters[name].ForceRotate(); err != nil {
						return err
					}
				}
			}
		}
	case deviceKindUnaligned:
		for i := start; i < end; i++ {
			t := tablet.Times[i]
			for _, col := range tablet.Columns {
				cw, ok := ds.chunkWriters[col]
				if !ok {
					continue
				}
				vs, ok := tablet.Values[col]
				if !ok || i >= len(vs) {
					continue
				}
				if err := cw.Write(t, vs[i]); err != nil {
					return err
				}
			}
		}
	}

	return nil
}

// maybeFlush implements spec.md §4.6's memory-threshold flush
// extrapolation: re-estimate how many more records fit before the next
// check is due, and flush once the open chunks' estimated size crosses
// the configured threshold.
func (w *Writer) maybeFlush() error {
	if w.recordsSinceFlush < w.recordCountForNextMemCheck {
		return nil
	}

	memSize := w.estimateOpenSize()
	if memSize <= 0 {
		return nil
	}

	w.recordCountForNextMemCheck = w.recordsSinceFlush * w.cfg.ChunkGroupSizeThreshold / int64(memSize)
	if w.recordCountForNextMemCheck < 1 {
		w.recordCountForNextMemCheck = 1
	}

	if int64(memSize) > w.cfg.ChunkGroupSizeThreshold {
		return w.Flush()
	}

	return nil
}

func (w *Writer) estimateOpenSize() int {
	total := 0
	for _, ds := range w.devices {
		switch ds.kind {
		case deviceKindAligned:
			total += ds.timeWriter.EstimateSize()
			for _, vw := range ds.valueWriters {
				total += vw.EstimateSize()
			}
		case deviceKindUnaligned:
			for _, cw := range ds.chunkWriters {
				total += cw.EstimateSize()
			}
		}
	}

	return total
}
