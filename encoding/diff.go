package encoding

import (
	"encoding/binary"

	"github.com/tsfile-go/tsfile/internal/pool"
)

// DiffEncoder implements DIFF: single-level delta encoding. The first
// value is a full varint, every subsequent value is a zigzag-varint
// delta from its predecessor. Simpler and slightly larger on-disk than
// TS_2DIFF for regular-interval data, but cheaper to decode randomly
// since there is only one running accumulator instead of two.
type DiffEncoder struct {
	prev  int64
	buf   *pool.Buffer
	tmp   [binary.MaxVarintLen64]byte
	count int
}

func NewDiffEncoder() *DiffEncoder { return &DiffEncoder{buf: pool.Get()} }

func (e *DiffEncoder) Write(v int64) { e.WriteSlice([]int64{v}) }

func (e *DiffEncoder) WriteSlice(vs []int64) {
	e.buf.Grow(5 + 2*len(vs))
	for i, v := range vs {
		if e.count == 0 && i == 0 {
			n := binary.PutUvarint(e.tmp[:], uint64(v)) //nolint:gosec
			e.buf.Write(e.tmp[:n])
		} else {
			n := binary.PutUvarint(e.tmp[:], zigzagEncode(v-e.prev))
			e.buf.Write(e.tmp[:n])
		}
		e.prev = v
	}
	e.count += len(vs)
}

func (e *DiffEncoder) Bytes() []byte { return e.buf.Bytes() }
func (e *DiffEncoder) Len() int      { return e.count }
func (e *DiffEncoder) Size() int     { return e.buf.Len() }
func (e *DiffEncoder) Reset()        { e.count = 0; e.prev = 0; e.buf.Reset() }

// DiffDecoder decodes DIFF-encoded values.
type DiffDecoder struct{}

func (DiffDecoder) Decode(data []byte, count int) ([]int64, error) {
	out := make([]int64, 0, count)
	if count <= 0 || len(data) == 0 {
		return out, nil
	}

	offset := 0
	first, n := binary.Uvarint(data[offset:])
	if n <= 0 {
		return out, nil
	}
	offset += n
	cur := int64(first) //nolint:gosec
	out = append(out, cur)

	for i := 1; i < count && offset < len(data); i++ {
		zz, n := binary.Uvarint(data[offset:])
		if n <= 0 {
			break
		}
		offset += n
		cur += zigzagDecode(zz)
		out = append(out, cur)
	}

	return out, nil
}
