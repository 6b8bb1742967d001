package reader

import (
	"github.com/tsfile-go/tsfile/chunk"
	"github.com/tsfile-go/tsfile/errs"
	"github.com/tsfile-go/tsfile/metaindex"
	"github.com/tsfile-go/tsfile/page"
	"github.com/tsfile-go/tsfile/schema"
	"github.com/tsfile-go/tsfile/stats"
)

// TimeRange bounds a scan to [Start, End] inclusive. A nil *TimeRange
// means unbounded.
type TimeRange struct {
	Start, End int64
}

// NewTimeRange builds a TimeRange covering [start, end].
func NewTimeRange(start, end int64) *TimeRange {
	return &TimeRange{Start: start, End: end}
}

func (t *TimeRange) contains(time int64) bool {
	return t == nil || (time >= t.Start && time <= t.End)
}

func (t *TimeRange) beyond(time int64) bool {
	return t != nil && time > t.End
}

type scanState int

const (
	scanNew scanState = iota
	scanReady
	scanChunkOpen
	scanPageOpen
	scanExhausted
	scanClosed
)

// SeriesScan iterates one measurement column's points for one device,
// in ascending time order, driven chunk by chunk and page by page: a
// literal [New]->[Ready]->[ChunkOpen]->[PageOpen]->...->[Closed] state
// machine over the chunk metas a Lookup returned.
//
// A FIELD column within an aligned chunk group carries no time stream
// of its own — pairedTime is a second SeriesScan over the device's
// shared time-index ("" measurement name), advanced in lockstep one
// chunk/page at a time, which supplies both the row times and the true
// per-page row count (a value page's own statistics only count
// non-null rows, so they can never be used to recover the page's row
// count — see chunk.TimeWriter.Write/ValueWriter.ForceRotate, which
// guarantee the two chunks stay page-aligned).
type SeriesScan struct {
	r          *Reader
	ts         metaindex.TimeseriesIndex
	pairedTime *SeriesScan
	filter     *TimeRange

	state    scanState
	chunkIdx int

	curHeader     chunk.Header
	curChunkStats *stats.Statistics
	pageHeaders   []page.Header
	pageBodies    [][]byte
	pageIdx       int

	blockTimes  []int64
	blockValues []any
	blockPos    int
}

// NewSeriesScan looks up deviceID/measurementName and returns a scan
// positioned before its first row. Call Advance once to position on
// the first in-range row (if any), then alternate Head/Advance.
func (r *Reader) NewSeriesScan(deviceID schema.DeviceID, measurementName string, filter *TimeRange) (*SeriesScan, error) {
	ts, err := r.Lookup(deviceID, measurementName)
	if err != nil {
		return nil, err
	}

	s := &SeriesScan{r: r, ts: ts, filter: filter, state: scanNew}

	if ts.IsAlignedValue() {
		timeTS, err := r.Lookup(deviceID, "")
		if err != nil {
			return nil, err
		}
		s.pairedTime = &SeriesScan{r: r, ts: timeTS, filter: filter, state: scanNew}
	}

	return s, nil
}

// init transitions [New]->[Ready] and positions the scan at its first
// in-range row, if any.
func (s *SeriesScan) init() error {
	if s.state != scanNew {
		return nil
	}
	s.state = scanReady

	if err := s.nextPage(); err != nil {
		return err
	}

	return s.skipOutOfRange()
}

// loadNextChunk advances to the next chunk with data, per-chunk
// metadata and all, but defers decoding any individual page's bytes
// until nextBlock. Transitions to [Exhausted] once every chunk has
// been visited.
func (s *SeriesScan) loadNextChunk() (bool, error) {
	if s.chunkIdx >= len(s.ts.ChunkMetas) {
		s.state = scanExhausted
		s.blockTimes = nil
		s.blockValues = nil

		return false, nil
	}

	cm := s.ts.ChunkMetas[s.chunkIdx]
	s.chunkIdx++

	raw, h, n, err := s.r.readChunk(cm.OffsetOfChunkHeader)
	if err != nil {
		return false, err
	}
	if n+h.DataSize > len(raw) {
		return false, errs.New(errs.KindCorrupted, "tsfile: truncated chunk body")
	}
	body := raw[n : n+h.DataSize]

	headers, bodies, err := chunk.SplitPages(h, body)
	if err != nil {
		return false, err
	}

	s.curHeader = h
	s.curChunkStats = cm.Statistics
	s.pageHeaders = headers
	s.pageBodies = bodies
	s.pageIdx = 0
	s.state = scanChunkOpen

	if s.pairedTime != nil {
		ok, err := s.pairedTime.loadNextChunk()
		if err != nil {
			return false, err
		}
		if !ok {
			return false, errs.New(errs.KindCorrupted, "tsfile: aligned value chunk missing its paired time chunk")
		}
	}

	return true, nil
}

// pageRowCount recovers a page's row count: its own statistics when it
// carries them (multi-page chunk), else the owning chunk's per-chunk
// statistics. Never used for an aligned value page — see nextBlock.
func (s *SeriesScan) pageRowCount(ph page.Header) int {
	if ph.Stats != nil {
		return int(ph.Stats.Count)
	}

	return int(s.curChunkStats.Count)
}

// nextPage advances to the next page, opening a new chunk first if the
// current one is exhausted, then decodes it via nextBlock.
func (s *SeriesScan) nextPage() error {
	for {
		if s.pageIdx >= len(s.pageHeaders) {
			ok, err := s.loadNextChunk()
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}

			continue
		}

		ok, err := s.nextBlock()
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		// nextBlock can decode a genuinely empty page (the chunk writers
		// seal an empty trailing page when a chunk's points exactly fill
		// its earlier pages) — loop to the next page rather than
		// reporting rows that don't exist.
	}
}

// nextBlock decompresses and decodes the page at pageIdx into
// blockTimes/blockValues, resetting blockPos to its first row.
func (s *SeriesScan) nextBlock() (bool, error) {
	ph := s.pageHeaders[s.pageIdx]
	body := s.pageBodies[s.pageIdx]
	s.pageIdx++

	switch {
	case s.ts.IsAlignedTime():
		count := s.pageRowCount(ph)
		times, err := page.DecodeTimePage(s.curHeader.Encoding, s.curHeader.Compression, ph, body, count)
		if err != nil {
			return false, err
		}
		s.blockTimes = times
		s.blockValues = nil

	case s.ts.IsAlignedValue():
		if s.pairedTime.pageIdx >= len(s.pairedTime.pageHeaders) {
			return false, errs.New(errs.KindCorrupted, "tsfile: aligned value page missing its paired time page")
		}
		if _, err := s.pairedTime.nextBlock(); err != nil {
			return false, err
		}
		rowCount := len(s.pairedTime.blockTimes)
		values, err := page.DecodeValuePage(s.ts.DataType, s.curHeader.Encoding, s.curHeader.Compression, ph, body, rowCount)
		if err != nil {
			return false, err
		}
		s.blockTimes = s.pairedTime.blockTimes
		s.blockValues = values

	default:
		count := s.pageRowCount(ph)
		times, values, err := page.Decode(s.ts.DataType, s.r.meta.TimeEncoding, s.curHeader.Encoding, s.curHeader.Compression, ph, body, count)
		if err != nil {
			return false, err
		}
		s.blockTimes = times
		s.blockValues = values
	}

	s.blockPos = 0
	s.state = scanPageOpen

	return len(s.blockTimes) > 0, nil
}

// skipOutOfRange advances past any leading rows before the filter's
// start, and declares the scan exhausted the moment a row lands past
// the filter's end (chunks and pages are always time-ascending).
func (s *SeriesScan) skipOutOfRange() error {
	for {
		t, _, ok := s.Head()
		if !ok {
			return nil
		}
		if s.filter.beyond(t) {
			s.state = scanExhausted
			s.blockTimes = nil
			s.blockValues = nil

			return nil
		}
		if s.filter.contains(t) {
			return nil
		}
		if err := s.advanceRaw(); err != nil {
			return err
		}
	}
}

// advanceRaw moves to the next row without applying the time filter.
func (s *SeriesScan) advanceRaw() error {
	s.blockPos++
	if s.blockPos < len(s.blockTimes) {
		return nil
	}

	return s.nextPage()
}

// Head returns the current row's (time, value) without advancing.
// value is nil for a time-only scan (an aligned device's "" column)
// and may be nil for a FIELD column's null entry.
func (s *SeriesScan) Head() (int64, any, bool) {
	if s.blockPos >= len(s.blockTimes) {
		return 0, nil, false
	}

	var v any
	if s.blockValues != nil {
		v = s.blockValues[s.blockPos]
	}

	return s.blockTimes[s.blockPos], v, true
}

// Advance moves to the next in-range row. Call after NewSeriesScan and
// after every row consumed via Head.
func (s *SeriesScan) Advance() error {
	if s.state == scanNew {
		return s.init()
	}
	if s.state == scanExhausted {
		return nil
	}

	if err := s.advanceRaw(); err != nil {
		return err
	}

	return s.skipOutOfRange()
}

// Close releases the scan (and its paired time scan, if any).
// Idempotent.
func (s *SeriesScan) Close() error {
	if s.state == scanClosed {
		return nil
	}
	s.state = scanClosed
	if s.pairedTime != nil {
		return s.pairedTime.Close()
	}

	return nil
}
