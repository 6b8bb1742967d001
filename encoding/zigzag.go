package encoding

import (
	"encoding/binary"

	"github.com/tsfile-go/tsfile/internal/pool"
)

// ZigzagEncoder implements ZIGZAG: signed integers mapped to unsigned
// via zigzag, then varint-encoded. Unlike TS_2DIFF/DIFF this encodes
// the raw value, not a delta — useful for columns that are signed but
// not monotonic.
type ZigzagEncoder struct {
	buf   *pool.Buffer
	tmp   [binary.MaxVarintLen64]byte
	count int
}

func NewZigzagEncoder() *ZigzagEncoder { return &ZigzagEncoder{buf: pool.Get()} }

func (e *ZigzagEncoder) Write(v int64) { e.WriteSlice([]int64{v}) }

func (e *ZigzagEncoder) WriteSlice(vs []int64) {
	e.buf.Grow(2 * len(vs))
	for _, v := range vs {
		n := binary.PutUvarint(e.tmp[:], zigzagEncode(v))
		e.buf.Write(e.tmp[:n])
	}
	e.count += len(vs)
}

func (e *ZigzagEncoder) Bytes() []byte { return e.buf.Bytes() }
func (e *ZigzagEncoder) Len() int      { return e.count }
func (e *ZigzagEncoder) Size() int     { return e.buf.Len() }
func (e *ZigzagEncoder) Reset()        { e.count = 0; e.buf.Reset() }

// ZigzagDecoder decodes ZIGZAG-encoded int64 columns.
type ZigzagDecoder struct{}

func (ZigzagDecoder) Decode(data []byte, count int) ([]int64, error) {
	out := make([]int64, 0, count)
	offset := 0
	for i := 0; i < count && offset < len(data); i++ {
		zz, n := binary.Uvarint(data[offset:])
		if n <= 0 {
			break
		}
		offset += n
		out = append(out, zigzagDecode(zz))
	}

	return out, nil
}
