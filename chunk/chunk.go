// Package chunk assembles a measurement's pages into a sealed, on-disk
// chunk: a sequence of pages sharing one (dataType, encoding,
// compression) triple, prefixed by a chunk header.
package chunk

import (
	"github.com/tsfile-go/tsfile/errs"
	"github.com/tsfile-go/tsfile/format"
	"github.com/tsfile-go/tsfile/page"
	"github.com/tsfile-go/tsfile/stats"
)

// chunkState names the two explicit states the deferred-first-page-stats
// rule needs: whether a second page has already started (at which point
// the first page is known to need its own statistics header) or not.
type chunkState int

const (
	chunkStateFirstPage chunkState = iota
	chunkStateSealed
)

// Metadata describes one sealed chunk for the owning device's
// chunk-group accumulator: where its header begins in the file, and its
// merged statistics (always present; whether the TimeseriesIndex elides
// it because the measurement has exactly one chunk is decided at the
// metaindex layer, not here).
type Metadata struct {
	OffsetOfChunkHeader int64
	Statistics          *stats.Statistics
}

// Writer assembles pages for one measurement of one device into a
// sealed chunk. All pages it produces share (dataType, encoding,
// compression).
type Writer struct {
	measurementName string
	dataType        format.DataType
	timeEncoding    format.EncodingKind
	valueEncoding   format.EncodingKind
	compression     format.CompressionKind

	pageMaxPointCount  int
	pageMaxMemoryBytes int

	cur   *page.Writer
	state chunkState

	body       []byte
	numPages   int
	chunkStats *stats.Statistics
}

// NewWriter constructs a chunk writer for one measurement.
func NewWriter(
	measurementName string,
	dataType format.DataType,
	timeEncoding, valueEncoding format.EncodingKind,
	compression format.CompressionKind,
	pageMaxPointCount, pageMaxMemoryBytes int,
) (*Writer, error) {
	cur, err := page.NewWriter(dataType, timeEncoding, valueEncoding, compression)
	if err != nil {
		return nil, err
	}

	return &Writer{
		measurementName:    measurementName,
		dataType:           dataType,
		timeEncoding:       timeEncoding,
		valueEncoding:      valueEncoding,
		compression:        compression,
		pageMaxPointCount:  pageMaxPointCount,
		pageMaxMemoryBytes: pageMaxMemoryBytes,
		cur:                cur,
		state:              chunkStateFirstPage,
		chunkStats:         stats.New(dataType),
	}, nil
}

// Write appends one (time, value) point, sealing the in-progress page
// (and starting a fresh one) if it has grown past the configured
// thresholds.
func (w *Writer) Write(time int64, value any) error {
	if err := w.cur.Write(time, value); err != nil {
		return err
	}

	if w.cur.Len() >= w.pageMaxPointCount || w.cur.EstimateSize() >= w.pageMaxMemoryBytes {
		return w.rotatePage()
	}

	return nil
}

// rotatePage seals the current page — always WITH statistics, since a
// page sealed here is guaranteed not to be the chunk's only page — and
// starts a fresh one.
func (w *Writer) rotatePage() error {
	if err := w.sealCurrent(true); err != nil {
		return err
	}

	cur, err := page.NewWriter(w.dataType, w.timeEncoding, w.valueEncoding, w.compression)
	if err != nil {
		return err
	}
	w.cur = cur

	return nil
}

func (w *Writer) sealCurrent(includeStats bool) error {
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

// Len reports the total number of points written across all pages,
// sealed or pending. chunkStats already covers every sealed page; cur
// holds the in-progress tail not yet merged.
func (w *Writer) Len() int {
	return int(w.chunkStats.Count) + w.cur.Len()
}

// EstimateSize returns a conservative upper bound including sealed page
// bytes and the in-progress page, used to decide chunk-group flush
// timing.
func (w *Writer) EstimateSize() int {
	return len(w.body) + w.cur.EstimateSize() + len(w.measurementName) + 32
}

// Empty reports whether this chunk has never received a value — callers
// skip writing it entirely, per the "skip empty chunk groups" rule.
func (w *Writer) Empty() bool {
	return w.numPages == 0 && w.cur.Len() == 0
}

// EndEncodeChunk finalizes the chunk: seals the last pending page (with
// or without statistics, depending on whether it's the chunk's only
// page), and returns the full on-disk chunk bytes (header + body) along
// with the chunk's merged statistics.
func (w *Writer) EndEncodeChunk() ([]byte, *stats.Statistics, error) {
	if w.Empty() {
		return nil, nil, errs.New(errs.KindInvalidState, "cannot finalize an empty chunk")
	}

	// The sole remaining page omits its own statistics iff it is the
	// chunk's only page (state never left chunkStateFirstPage).
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

// NumPages reports how many pages have been sealed into this chunk so
// far, including the pending one once EndEncodeChunk has run.
func (w *Writer) NumPages() int { return w.numPages }
