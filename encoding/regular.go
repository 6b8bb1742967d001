package encoding

import (
	"encoding/binary"

	"github.com/tsfile-go/tsfile/errs"
)

// RegularEncoder implements REGULAR: a constant-interval run stored as
// {first int64, interval int64}, 16 bytes regardless of point count.
// Only valid when every consecutive gap equals the first observed gap;
// Write records a violation in a sticky invalid flag (reported by Valid)
// rather than panicking mid-batch, and regularAdapter.WriteAny turns it
// into an error. Bytes itself has no error result.
type RegularEncoder struct {
	first, interval int64
	last            int64
	count           int
	valid           bool
}

func NewRegularEncoder() *RegularEncoder { return &RegularEncoder{valid: true} }

func (e *RegularEncoder) Write(v int64) { e.WriteSlice([]int64{v}) }

func (e *RegularEncoder) WriteSlice(vs []int64) {
	for _, v := range vs {
		switch e.count {
		case 0:
			e.first = v
		case 1:
			e.interval = v - e.first
		default:
			if v-e.last != e.interval {
				e.valid = false
			}
		}
		e.last = v
		e.count++
	}
}

func (e *RegularEncoder) Bytes() []byte {
	buf := make([]byte, 16)
	binary.LittleEndian.PutUint64(buf[0:8], uint64(e.first))    //nolint:gosec
	binary.LittleEndian.PutUint64(buf[8:16], uint64(e.interval)) //nolint:gosec

	return buf
}

func (e *RegularEncoder) Len() int  { return e.count }
func (e *RegularEncoder) Size() int { return 16 }

// Valid reports whether every written value fit the constant-interval
// constraint; callers must check this before sealing a REGULAR page.
func (e *RegularEncoder) Valid() bool { return e.valid }

func (e *RegularEncoder) Reset() {
	e.first, e.interval, e.last, e.count = 0, 0, 0, 0
	e.valid = true
}

// RegularDecoder decodes a REGULAR-encoded constant-interval run.
type RegularDecoder struct{}

func (RegularDecoder) Decode(data []byte, count int) ([]int64, error) {
	if len(data) < 16 {
		return nil, errs.Wrap(errs.KindCorrupted, "regular encoding payload too short", nil)
	}

	first := int64(binary.LittleEndian.Uint64(data[0:8]))    //nolint:gosec
	interval := int64(binary.LittleEndian.Uint64(data[8:16])) //nolint:gosec

	out := make([]int64, count)
	for i := range out {
		out[i] = first + int64(i)*interval
	}

	return out, nil
}
