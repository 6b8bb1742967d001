package chunk

import (
	"github.com/tsfile-go/tsfile/errs"
	"github.com/tsfile-go/tsfile/format"
	"github.com/tsfile-go/tsfile/page"
	"github.com/tsfile-go/tsfile/stats"
)

// timeChunkMeasurementName is the on-disk measurement name for an
// aligned chunk group's time-chunk: empty, since the time column has no
// user-assigned name.
const timeChunkMeasurementName = ""

// TimeWriter assembles the single time-chunk of an aligned chunk group.
// It shares the deferred-first-page-stats FSM with Writer but has no
// value stream: pages carry VECTOR statistics (count and time range
// only).
type TimeWriter struct {
	timeEncoding    format.EncodingKind
	timeCompression format.CompressionKind

	pageMaxPointCount  int
	pageMaxMemoryBytes int

	cur   *page.TimeWriter
	state chunkState

	body       []byte
	numPages   int
	chunkStats *stats.Statistics
}

// NewTimeWriter constructs a time-chunk writer for one aligned chunk
// group.
func NewTimeWriter(
	timeEncoding format.EncodingKind,
	timeCompression format.CompressionKind,
	pageMaxPointCount, pageMaxMemoryBytes int,
) (*TimeWriter, error) {
	cur, err := page.NewTimeWriter(timeEncoding, timeCompression)
	if err != nil {
		return nil, err
	}

	return &TimeWriter{
		timeEncoding:       timeEncoding,
		timeCompression:    timeCompression,
		pageMaxPointCount:  pageMaxPointCount,
		pageMaxMemoryBytes: pageMaxMemoryBytes,
		cur:                cur,
		state:              chunkStateFirstPage,
		chunkStats:         stats.New(format.Vector),
	}, nil
}

// Write appends one timestamp, rotating pages past the configured
// thresholds. The bool result reports whether this call just rotated a
// page, so an aligned chunk group's value writers can be forced to
// rotate in lockstep — see ValueWriter.ForceRotate.
func (w *TimeWriter) Write(time int64) (bool, error) {
	if err := w.cur.Write(time); err != nil {
		return false, err
	}

	if w.cur.Len() >= w.pageMaxPointCount || w.cur.EstimateSize() >= w.pageMaxMemoryBytes {
		return true, w.rotatePage()
	}

	return false, nil
}

func (w *TimeWriter) rotatePage() error {
	if err := w.sealCurrent(true); err != nil {
		return err
	}

	cur, err := page.NewTimeWriter(w.timeEncoding, w.timeCompression)
	if err != nil {
		return err
	}
	w.cur = cur

	return nil
}

func (w *TimeWriter) sealCurrent(includeStats bool) error {
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

// Len reports the total number of timestamps written so far.
func (w *TimeWriter) Len() int {
	return int(w.chunkStats.Count) + w.cur.Len()
}

// EstimateSize returns a conservative byte upper bound, used to decide
// chunk-group flush timing.
func (w *TimeWriter) EstimateSize() int {
	return len(w.body) + w.cur.EstimateSize() + 16
}

// Empty reports whether this chunk has never received a timestamp.
func (w *TimeWriter) Empty() bool {
	return w.numPages == 0 && w.cur.Len() == 0
}

// EndEncodeChunk finalizes the time-chunk and returns its on-disk bytes
// (header + body) along with its merged statistics.
func (w *TimeWriter) EndEncodeChunk() ([]byte, *stats.Statistics, error) {
	if w.Empty() {
		return nil, nil, errs.New(errs.KindInvalidState, "cannot finalize an empty time chunk")
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
	out = format.AppendString(out, timeChunkMeasurementName)
	out = format.AppendUvarint(out, uint64(len(w.body)))
	out = append(out, byte(format.Vector), byte(w.timeCompression), byte(w.timeEncoding))
	out = append(out, w.body...)

	return out, w.chunkStats, nil
}

// NumPages reports how many pages have been sealed into this chunk.
func (w *TimeWriter) NumPages() int { return w.numPages }
