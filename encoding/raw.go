package encoding

import (
	"encoding/binary"
	"math"

	"github.com/tsfile-go/tsfile/internal/pool"
)

// RawInt64Encoder implements PLAIN encoding for int64/timestamp columns:
// each value is stored as 8 bytes, little-endian.
type RawInt64Encoder struct {
	buf   *pool.Buffer
	count int
}

func NewRawInt64Encoder() *RawInt64Encoder {
	return &RawInt64Encoder{buf: pool.Get()}
}

func (e *RawInt64Encoder) Write(v int64) {
	e.WriteSlice([]int64{v})
}

func (e *RawInt64Encoder) WriteSlice(vs []int64) {
	e.buf.Grow(8 * len(vs))
	for _, v := range vs {
		var tmp [8]byte
		binary.LittleEndian.PutUint64(tmp[:], uint64(v)) //nolint:gosec
		e.buf.Write(tmp[:])
	}
	e.count += len(vs)
}

func (e *RawInt64Encoder) Bytes() []byte { return e.buf.Bytes() }
func (e *RawInt64Encoder) Len() int      { return e.count }
func (e *RawInt64Encoder) Size() int     { return e.buf.Len() }
func (e *RawInt64Encoder) Reset()        { e.count = 0; e.buf.Reset() }

// RawInt64Decoder decodes PLAIN-encoded int64/timestamp columns.
type RawInt64Decoder struct{}

func (RawInt64Decoder) Decode(data []byte, count int) ([]int64, error) {
	out := make([]int64, 0, count)
	for i := 0; i < count && (i+1)*8 <= len(data); i++ {
		out = append(out, int64(binary.LittleEndian.Uint64(data[i*8:i*8+8]))) //nolint:gosec
	}

	return out, nil
}

// RawFloat64Encoder implements PLAIN encoding for double columns: each
// value is stored as its IEEE-754 bit pattern, 8 bytes little-endian.
type RawFloat64Encoder struct {
	buf   *pool.Buffer
	count int
}

func NewRawFloat64Encoder() *RawFloat64Encoder {
	return &RawFloat64Encoder{buf: pool.Get()}
}

func (e *RawFloat64Encoder) Write(v float64) {
	e.WriteSlice([]float64{v})
}

func (e *RawFloat64Encoder) WriteSlice(vs []float64) {
	e.buf.Grow(8 * len(vs))
	for _, v := range vs {
		var tmp [8]byte
		binary.LittleEndian.PutUint64(tmp[:], math.Float64bits(v))
		e.buf.Write(tmp[:])
	}
	e.count += len(vs)
}

func (e *RawFloat64Encoder) Bytes() []byte { return e.buf.Bytes() }
func (e *RawFloat64Encoder) Len() int      { return e.count }
func (e *RawFloat64Encoder) Size() int     { return e.buf.Len() }
func (e *RawFloat64Encoder) Reset()        { e.count = 0; e.buf.Reset() }

// RawFloat64Decoder decodes PLAIN-encoded double columns.
type RawFloat64Decoder struct{}

func (RawFloat64Decoder) Decode(data []byte, count int) ([]float64, error) {
	out := make([]float64, 0, count)
	for i := 0; i < count && (i+1)*8 <= len(data); i++ {
		out = append(out, math.Float64frombits(binary.LittleEndian.Uint64(data[i*8:i*8+8])))
	}

	return out, nil
}

// RawFloat32Encoder implements PLAIN encoding for float columns: 4 bytes
// little-endian IEEE-754 per value.
type RawFloat32Encoder struct {
	buf   *pool.Buffer
	count int
}

func NewRawFloat32Encoder() *RawFloat32Encoder {
	return &RawFloat32Encoder{buf: pool.Get()}
}

func (e *RawFloat32Encoder) Write(v float32) { e.WriteSlice([]float32{v}) }

func (e *RawFloat32Encoder) WriteSlice(vs []float32) {
	e.buf.Grow(4 * len(vs))
	for _, v := range vs {
		var tmp [4]byte
		binary.LittleEndian.PutUint32(tmp[:], math.Float32bits(v))
		e.buf.Write(tmp[:])
	}
	e.count += len(vs)
}

func (e *RawFloat32Encoder) Bytes() []byte { return e.buf.Bytes() }
func (e *RawFloat32Encoder) Len() int      { return e.count }
func (e *RawFloat32Encoder) Size() int     { return e.buf.Len() }
func (e *RawFloat32Encoder) Reset()        { e.count = 0; e.buf.Reset() }

type RawFloat32Decoder struct{}

func (RawFloat32Decoder) Decode(data []byte, count int) ([]float32, error) {
	out := make([]float32, 0, count)
	for i := 0; i < count && (i+1)*4 <= len(data); i++ {
		out = append(out, math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:i*4+4])))
	}

	return out, nil
}

// RawInt32Encoder implements PLAIN encoding for int32/date columns: 4
// bytes little-endian per value.
type RawInt32Encoder struct {
	buf   *pool.Buffer
	count int
}

func NewRawInt32Encoder() *RawInt32Encoder {
	return &RawInt32Encoder{buf: pool.Get()}
}

func (e *RawInt32Encoder) Write(v int32) { e.WriteSlice([]int32{v}) }

func (e *RawInt32Encoder) WriteSlice(vs []int32) {
	e.buf.Grow(4 * len(vs))
	for _, v := range vs {
		var tmp [4]byte
		binary.LittleEndian.PutUint32(tmp[:], uint32(v)) //nolint:gosec
		e.buf.Write(tmp[:])
	}
	e.count += len(vs)
}

func (e *RawInt32Encoder) Bytes() []byte { return e.buf.Bytes() }
func (e *RawInt32Encoder) Len() int      { return e.count }
func (e *RawInt32Encoder) Size() int     { return e.buf.Len() }
func (e *RawInt32Encoder) Reset()        { e.count = 0; e.buf.Reset() }

type RawInt32Decoder struct{}

func (RawInt32Decoder) Decode(data []byte, count int) ([]int32, error) {
	out := make([]int32, 0, count)
	for i := 0; i < count && (i+1)*4 <= len(data); i++ {
		out = append(out, int32(binary.LittleEndian.Uint32(data[i*4:i*4+4]))) //nolint:gosec
	}

	return out, nil
}

// RawBoolEncoder implements PLAIN encoding for boolean columns: one
// byte per value (0x00/0x01), simplest and matching the spec's
// "fixed-width LE for numerics" rule treating bool as a 1-byte numeric.
type RawBoolEncoder struct {
	buf   *pool.Buffer
	count int
}

func NewRawBoolEncoder() *RawBoolEncoder {
	return &RawBoolEncoder{buf: pool.Get()}
}

func (e *RawBoolEncoder) Write(v bool) { e.WriteSlice([]bool{v}) }

func (e *RawBoolEncoder) WriteSlice(vs []bool) {
	e.buf.Grow(len(vs))
	for _, v := range vs {
		if v {
			e.buf.Write([]byte{1})
		} else {
			e.buf.Write([]byte{0})
		}
	}
	e.count += len(vs)
}

func (e *RawBoolEncoder) Bytes() []byte { return e.buf.Bytes() }
func (e *RawBoolEncoder) Len() int      { return e.count }
func (e *RawBoolEncoder) Size() int     { return e.buf.Len() }
func (e *RawBoolEncoder) Reset()        { e.count = 0; e.buf.Reset() }

type RawBoolDecoder struct{}

func (RawBoolDecoder) Decode(data []byte, count int) ([]bool, error) {
	out := make([]bool, 0, count)
	for i := 0; i < count && i < len(data); i++ {
		out = append(out, data[i] != 0)
	}

	return out, nil
}

// RawStringEncoder implements PLAIN encoding for STRING/TEXT/BLOB
// columns: each value is {len uvarint, bytes}.
type RawStringEncoder struct {
	buf   *pool.Buffer
	tmp   [binary.MaxVarintLen64]byte
	count int
}

func NewRawStringEncoder() *RawStringEncoder {
	return &RawStringEncoder{buf: pool.Get()}
}

func (e *RawStringEncoder) Write(v []byte) {
	n := binary.PutUvarint(e.tmp[:], uint64(len(v)))
	e.buf.Grow(n + len(v))
	e.buf.Write(e.tmp[:n])
	e.buf.Write(v)
	e.count++
}

func (e *RawStringEncoder) WriteSlice(vs [][]byte) {
	for _, v := range vs {
		e.Write(v)
	}
}

func (e *RawStringEncoder) Bytes() []byte { return e.buf.Bytes() }
func (e *RawStringEncoder) Len() int      { return e.count }
func (e *RawStringEncoder) Size() int     { return e.buf.Len() }
func (e *RawStringEncoder) Reset()        { e.count = 0; e.buf.Reset() }

type RawStringDecoder struct{}

func (RawStringDecoder) Decode(data []byte, count int) ([][]byte, error) {
	out := make([][]byte, 0, count)
	offset := 0
	for i := 0; i < count; i++ {
		if offset >= len(data) {
			break
		}
		length, n := binary.Uvarint(data[offset:])
		if n <= 0 {
			break
		}
		offset += n
		end := offset + int(length)
		if end > len(data) {
			break
		}
		out = append(out, data[offset:end])
		offset = end
	}

	return out, nil
}
