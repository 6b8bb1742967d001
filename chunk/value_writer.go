package chunk

import (
	"github.com/tsfile-go/tsfile/errs"
	"github.com/tsfile-go/tsfile/format"
	"github.com/tsfile-go/tsfile/page"
	"github.com/tsfile-go/tsfile/stats"
)

// ValueWriter assembles one FIELD column's chunk within an aligned
// chunk group: no time stream of its own (the group's TimeWriter owns
// it), rows may be null, and it shares the deferred-first-page-stats
// FSM with Writer.
type ValueWriter struct {
	measurementName string
	dataType        format.DataType
	valueEncoding   format.EncodingKind
	compression     format.CompressionKind

	pageMaxPointCount  int
	pageMaxMemoryBytes int

	cur   *page.ValueWriter
	state chunkState

	body       []byte
	numPages   int
	totalRows  int
	chunkStats *stats.Statistics
}

// NewValueWriter constructs a value-chunk writer for one FIELD
// measurement of an aligned chunk group.
func NewValueWriter(
	measurementName string,
	dataType format.DataType,
	valueEncoding format.EncodingKind,
	compression format.CompressionKind,
	pageMaxPointCount, pageMaxMemoryBytes int,
) (*ValueWriter, error) {
	cur, err := page.NewValueWriter(dataType, valueEncoding, compression)
	if err != nil {
		return nil, err
	}

	return &ValueWriter{
		measurementName:    measurementName,
		dataType:           dataType,
		valueEncoding:      valueEncoding,
		compression:        compression,
		pageMaxPointCount:  pageMaxPointCount,
		pageMaxMemoryBytes: pageMaxMemoryBytes,
		cur:                cur,
		state:              chunkStateFirstPage,
		chunkStats:         stats.New(dataType),
	}, nil
}

// WriteRow appends one row (value == nil marks the row null for this
// column). Unlike TimeWriter, it never rotates pages on its own: within
// an aligned chunk group every value chunk must share the shared time
// chunk's page boundaries, since a value page's row count can only be
// recovered at read time from its paired time page's row count (a
// value page's own Stats.Count only counts non-null rows). Callers
// drive rotation via ForceRotate whenever the group's TimeWriter.Write
// reports it rotated.
func (w *ValueWriter) WriteRow(time int64, value any) error {
	if err := w.cur.WriteRow(time, value); err != nil {
		return err
	}
	w.totalRows++

	return nil
}

// ForceRotate seals the current page regardless of its size, so an
// aligned chunk group's value chunks stay page-aligned with the
// group's shared time chunk. A no-op when the current page holds no
// rows.
func (w *ValueWriter) ForceRotate() error {
	if w.cur.Rows() == 0 {
		return nil
	}

	return w.rotatePage()
}

func (w *ValueWriter) rotatePage() error {
	if err := w.sealCurrent(true); err != nil {
		return err
	}

	cur, err := page.NewValueWriter(w.dataType, w.valueEncoding, w.compression)
	if err != nil {
		return err
	}
	w.cur = cur

	return nil
}

func (w *ValueWriter) sealCurrent(includeStats bool) error {
	if err := w.chunkStats.Merge(w.cur.Statistics()); err != nil {
		return err
	}

	sealed, err := w.cur.Seal(nil, includeStats)
	if err != nil {
		return err
	}
	w.body = append(w.body, sealed...)
	w.numPages++
	w.state = chunkStateSealed

	return nil
}

// Rows reports the total number of rows (including nulls) written so
// far.
func (w *ValueWriter) Rows() int { return w.totalRows }

// EstimateSize returns a conservative byte upper bound, used to decide
// chunk-group flush timing.
func (w *ValueWriter) EstimateSize() int {
	return len(w.body) + w.cur.EstimateSize() + len(w.measurementName) + 32
}

// Empty reports whether this chunk has never received a row.
func (w *ValueWriter) Empty() bool {
	return w.totalRows == 0
}

// EndEncodeChunk finalizes the value-chunk and returns its on-disk bytes
// (header + body) along with its merged statistics.
func (w *ValueWriter) EndEncodeChunk() ([]byte, *stats.Statistics, error) {
	if w.Empty() {
		return nil, nil, errs.New(errs.KindInvalidState, "cannot finalize an empty value chunk")
	}

	includeStats := w.state == chunkStateSealed
	if err := w.sealCurrent(includeStats); err != nil {
		return nil, nil, err
	}

	marker := format.ChunkHeaderMarkerMulti
	if w.numPages == 1 {
		marker = format.ChunkHeaderMarkerSingle
	}

	out := []byte{marker}
	out = format.AppendString(out, w.measurementName)
	out = format.AppendUvarint(out, uint64(len(w.body)))
	out = append(out, byte(w.dataType), byte(w.compression), byte(w.valueEncoding))
	out = append(out, w.body...)

	return out, w.chunkStats, nil
}

// NumPages reports how many pages have been sealed into this chunk.
func (w *ValueWriter) NumPages() int { return w.numPages }
