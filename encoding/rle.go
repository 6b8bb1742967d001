package encoding

import (
	"encoding/binary"

	"github.com/tsfile-go/tsfile/internal/pool"
)

// RLEInt64Encoder implements RLE for int64 columns as packed
// (value, run-length) pairs: each run is {zigzag-varint value,
// uvarint run-length}. Long runs of identical values (common for
// dictionary id streams and constant tags) collapse to a handful of
// bytes regardless of run length.
type RLEInt64Encoder struct {
	buf      *pool.Buffer
	pending  int64
	runLen   uint64
	hasRun   bool
	count    int
}

func NewRLEInt64Encoder() *RLEInt64Encoder { return &RLEInt64Encoder{buf: pool.Get()} }

func (e *RLEInt64Encoder) Write(v int64) { e.WriteSlice([]int64{v}) }

func (e *RLEInt64Encoder) WriteSlice(vs []int64) {
	for _, v := range vs {
		if e.hasRun && v == e.pending {
			e.runLen++

			continue
		}

		e.flushRun()
		e.pending = v
		e.runLen = 1
		e.hasRun = true
	}
	e.count += len(vs)
}

func (e *RLEInt64Encoder) flushRun() {
	if !e.hasRun {
		return
	}

	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], zigzagEncode(e.pending))
	e.buf.Write(tmp[:n])
	n = binary.PutUvarint(tmp[:], e.runLen)
	e.buf.Write(tmp[:n])
	e.hasRun = false
}

func (e *RLEInt64Encoder) Bytes() []byte {
	e.flushRun()

	return e.buf.Bytes()
}

func (e *RLEInt64Encoder) Len() int  { return e.count }
func (e *RLEInt64Encoder) Size() int { return e.buf.Len() }

func (e *RLEInt64Encoder) Reset() {
	e.count = 0
	e.hasRun = false
	e.runLen = 0
	e.buf.Reset()
}

// RLEInt64Decoder decodes RLE-encoded int64 columns.
type RLEInt64Decoder struct{}

func (RLEInt64Decoder) Decode(data []byte, count int) ([]int64, error) {
	out := make([]int64, 0, count)
	offset := 0
	for len(out) < count && offset < len(data) {
		zz, n := binary.Uvarint(data[offset:])
		if n <= 0 {
			break
		}
		offset += n

		runLen, n := binary.Uvarint(data[offset:])
		if n <= 0 {
			break
		}
		offset += n

		v := zigzagDecode(zz)
		for i := uint64(0); i < runLen && len(out) < count; i++ {
			out = append(out, v)
		}
	}

	return out, nil
}
