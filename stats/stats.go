// Package stats implements the per-page/per-chunk/per-series value
// summaries (count, time range, min/max/first/last/sum) used both to
// seal pages and to drive predicate pushdown at query time.
//
// Statistics is a tagged variant keyed by format.DataType rather than an
// interface-per-type hierarchy: a single struct carries every variant's
// fields, and the active one is selected by the dataType tag already
// carried on every chunk/page. This mirrors the one-byte-tag dispatch
// used throughout the wire format (format.DataType, format.EncodingKind,
// format.CompressionKind).
package stats

import (
	"encoding/binary"
	"math"

	"github.com/tsfile-go/tsfile/errs"
	"github.com/tsfile-go/tsfile/format"
)

// Statistics is the per-page/chunk/series value summary for one column.
// Only the fields relevant to DataType are meaningful; others are zero.
type Statistics struct {
	DataType format.DataType

	Count     int64
	StartTime int64
	EndTime   int64

	// boolean
	FirstBool bool
	LastBool  bool
	SumTrue   int64

	// int32/int64/date/timestamp/float/double
	Min, Max, First, Last float64
	SumFloat              float64
	MinInt, MaxInt        int64
	FirstInt, LastInt     int64
	SumInt                int64

	// binary/string/blob
	FirstBytes []byte
	LastBytes  []byte
}

// New returns an empty Statistics for dataType, ready for Update.
func New(dataType format.DataType) *Statistics {
	return &Statistics{DataType: dataType}
}

// Update extends the range and value summary with one (time, value)
// point. value's concrete type must match DataType (int32, int64,
// float32, float64, bool, or []byte), matching the types accepted by
// encoding.ValueEncoder.WriteAny.
func (s *Statistics) Update(time int64, value any) error {
	if s.Count == 0 {
		s.StartTime = time
		s.EndTime = time
	} else {
		if time < s.StartTime {
			s.StartTime = time
		}
		if time > s.EndTime {
			s.EndTime = time
		}
	}

	switch s.DataType {
	case format.Boolean:
		v, ok := value.(bool)
		if !ok {
			return errs.New(errs.KindInvalidDataPoint, "expected bool")
		}
		if s.Count == 0 {
			s.FirstBool = v
		}
		s.LastBool = v
		if v {
			s.SumTrue++
		}
	case format.Int32, format.Date:
		v, ok := value.(int32)
		if !ok {
			return errs.New(errs.KindInvalidDataPoint, "expected int32")
		}
		s.updateInt(int64(v))
	case format.Int64, format.Timestamp:
		v, ok := value.(int64)
		if !ok {
			return errs.New(errs.KindInvalidDataPoint, "expected int64")
		}
		s.updateInt(v)
	case format.Float:
		v, ok := value.(float32)
		if !ok {
			return errs.New(errs.KindInvalidDataPoint, "expected float32")
		}
		s.updateFloat(float64(v))
	case format.Double:
		v, ok := value.(float64)
		if !ok {
			return errs.New(errs.KindInvalidDataPoint, "expected float64")
		}
		s.updateFloat(v)
	case format.Text, format.String, format.Blob:
		v, ok := value.([]byte)
		if !ok {
			return errs.New(errs.KindInvalidDataPoint, "expected []byte")
		}
		if s.Count == 0 {
			s.FirstBytes = append([]byte(nil), v...)
		}
		s.LastBytes = append([]byte(nil), v...)
	case format.Vector:
		// time-only: no value fields.
	default:
		return errs.New(errs.KindInvalidDataPoint, "unsupported statistics data type")
	}

	s.Count++

	return nil
}

func (s *Statistics) updateInt(v int64) {
	if s.Count == 0 {
		s.MinInt, s.MaxInt = v, v
		s.FirstInt = v
	} else {
		if v < s.MinInt {
			s.MinInt = v
		}
		if v > s.MaxInt {
			s.MaxInt = v
		}
	}
	s.LastInt = v
	s.SumInt += v
}

func (s *Statistics) updateFloat(v float64) {
	if s.Count == 0 {
		s.Min, s.Max = v, v
		s.First = v
	} else {
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
	}
	s.Last = v
	s.SumFloat += v
}

// CanMerge reports whether two statistics representations are
// compatible, per the explicit TEXT->STRING merge prohibition: a chunk
// written with TEXT stats cannot be merged into a STRING series index
// because existing TEXT chunks never carried STRING's optional min/max.
func CanMerge(from, to format.DataType) bool {
	if from == to {
		return true
	}

	if from == format.Text && to == format.String {
		return false
	}

	return false
}

// Merge combines other into s. The two statistics' time ranges must be
// disjoint or adjacent; Merge does not itself detect overlap (the
// caller's contract, per spec, is to avoid double counting) but it does
// refuse to merge incompatible representations.
func (s *Statistics) Merge(other *Statistics) error {
	if other == nil || other.Count == 0 {
		return nil
	}
	if !CanMerge(other.DataType, s.DataType) {
		return errs.Wrap(errs.KindStatisticsClassMismatch,
			"cannot merge "+other.DataType.String()+" statistics into "+s.DataType.String(), nil)
	}

	if s.Count == 0 {
		*s = *other
		s.FirstBytes = append([]byte(nil), other.FirstBytes...)
		s.LastBytes = append([]byte(nil), other.LastBytes...)

		return nil
	}

	if other.StartTime < s.StartTime {
		s.StartTime = other.StartTime
		switch s.DataType {
		case format.Boolean:
			s.FirstBool = other.FirstBool
		case format.Text, format.String, format.Blob:
			s.FirstBytes = append([]byte(nil), other.FirstBytes...)
		case format.Int32, format.Int64, format.Date, format.Timestamp:
			s.FirstInt = other.FirstInt
		case format.Float, format.Double:
			s.First = other.First
		}
	}
	if other.EndTime > s.EndTime {
		s.EndTime = other.EndTime
		switch s.DataType {
		case format.Boolean:
			s.LastBool = other.LastBool
		case format.Text, format.String, format.Blob:
			s.LastBytes = append([]byte(nil), other.LastBytes...)
		case format.Int32, format.Int64, format.Date, format.Timestamp:
			s.LastInt = other.LastInt
		case format.Float, format.Double:
			s.Last = other.Last
		}
	}

	switch s.DataType {
	case format.Boolean:
		s.SumTrue += other.SumTrue
	case format.Int32, format.Int64, format.Date, format.Timestamp:
		if other.MinInt < s.MinInt {
			s.MinInt = other.MinInt
		}
		if other.MaxInt > s.MaxInt {
			s.MaxInt = other.MaxInt
		}
		s.SumInt += other.SumInt
	case format.Float, format.Double:
		if other.Min < s.Min {
			s.Min = other.Min
		}
		if other.Max > s.Max {
			s.Max = other.Max
		}
		s.SumFloat += other.SumFloat
	}

	s.Count += other.Count

	return nil
}

// Serialize appends the wire form of s to out and returns the result.
// Layout: {count uvarint, startTime i64 LE, endTime i64 LE, typed
// payload}. The typed payload's field order is fixed per data type and
// must never change, for forward on-disk compatibility.
func (s *Statistics) Serialize(out []byte) []byte {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], uint64(s.Count)) //nolint:gosec
	out = append(out, tmp[:n]...)
	out = appendInt64(out, s.StartTime)
	out = appendInt64(out, s.EndTime)

	switch s.DataType {
	case format.Boolean:
		out = append(out, boolByte(s.FirstBool), boolByte(s.LastBool))
		out = appendInt64(out, s.SumTrue)
	case format.Int32, format.Int64, format.Date, format.Timestamp:
		out = appendInt64(out, s.MinInt)
		out = appendInt64(out, s.MaxInt)
		out = appendInt64(out, s.FirstInt)
		out = appendInt64(out, s.LastInt)
		out = appendInt64(out, s.SumInt)
	case format.Float, format.Double:
		out = appendFloat64(out, s.Min)
		out = appendFloat64(out, s.Max)
		out = appendFloat64(out, s.First)
		out = appendFloat64(out, s.Last)
		out = appendFloat64(out, s.SumFloat)
	case format.Text, format.String, format.Blob:
		n = binary.PutUvarint(tmp[:], uint64(len(s.FirstBytes)))
		out = append(out, tmp[:n]...)
		out = append(out, s.FirstBytes...)
		n = binary.PutUvarint(tmp[:], uint64(len(s.LastBytes)))
		out = append(out, tmp[:n]...)
		out = append(out, s.LastBytes...)
	case format.Vector:
		// time-only, no payload.
	}

	return out
}

// Deserialize parses the wire form written by Serialize for dataType,
// returning the statistics and the number of bytes consumed.
func Deserialize(dataType format.DataType, data []byte) (*Statistics, int, error) {
	s := New(dataType)
	offset := 0

	count, n := binary.Uvarint(data[offset:])
	if n <= 0 {
		return nil, 0, errs.Wrap(errs.KindCorrupted, "truncated statistics count", nil)
	}
	offset += n
	s.Count = int64(count) //nolint:gosec

	if offset+16 > len(data) {
		return nil, 0, errs.Wrap(errs.KindCorrupted, "truncated statistics time range", nil)
	}
	s.StartTime = readInt64(data[offset:])
	offset += 8
	s.EndTime = readInt64(data[offset:])
	offset += 8

	switch dataType {
	case format.Boolean:
		if offset+1+8 > len(data) {
			return nil, 0, errs.Wrap(errs.KindCorrupted, "truncated boolean statistics", nil)
		}
		s.FirstBool = data[offset] != 0
		offset++
		s.LastBool = data[offset] != 0
		offset++
		s.SumTrue = readInt64(data[offset:])
		offset += 8
	case format.Int32, format.Int64, format.Date, format.Timestamp:
		if offset+40 > len(data) {
			return nil, 0, errs.Wrap(errs.KindCorrupted, "truncated integer statistics", nil)
		}
		s.MinInt = readInt64(data[offset:])
		offset += 8
		s.MaxInt = readInt64(data[offset:])
		offset += 8
		s.FirstInt = readInt64(data[offset:])
		offset += 8
		s.LastInt = readInt64(data[offset:])
		offset += 8
		s.SumInt = readInt64(data[offset:])
		offset += 8
	case format.Float, format.Double:
		if offset+40 > len(data) {
			return nil, 0, errs.Wrap(errs.KindCorrupted, "truncated float statistics", nil)
		}
		s.Min = readFloat64(data[offset:])
		offset += 8
		s.Max = readFloat64(data[offset:])
		offset += 8
		s.First = readFloat64(data[offset:])
		offset += 8
		s.Last = readFloat64(data[offset:])
		offset += 8
		s.SumFloat = readFloat64(data[offset:])
		offset += 8
	case format.Text, format.String, format.Blob:
		flen, n := binary.Uvarint(data[offset:])
		if n <= 0 || offset+n+int(flen) > len(data) {
			return nil, 0, errs.Wrap(errs.KindCorrupted, "truncated binary statistics", nil)
		}
		offset += n
		s.FirstBytes = append([]byte(nil), data[offset:offset+int(flen)]...)
		offset += int(flen)

		llen, n := binary.Uvarint(data[offset:])
		if n <= 0 || offset+n+int(llen) > len(data) {
			return nil, 0, errs.Wrap(errs.KindCorrupted, "truncated binary statistics", nil)
		}
		offset += n
		s.LastBytes = append([]byte(nil), data[offset:offset+int(llen)]...)
		offset += int(llen)
	case format.Vector:
		// time-only, no payload.
	}

	return s, offset, nil
}

func appendInt64(out []byte, v int64) []byte {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], uint64(v)) //nolint:gosec
	return append(out, tmp[:]...)
}

func appendFloat64(out []byte, v float64) []byte {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], math.Float64bits(v))
	return append(out, tmp[:]...)
}

func readInt64(data []byte) int64 {
	return int64(binary.LittleEndian.Uint64(data)) //nolint:gosec
}

func readFloat64(data []byte) float64 {
	return math.Float64frombits(binary.LittleEndian.Uint64(data))
}

func boolByte(v bool) byte {
	if v {
		return 1
	}

	return 0
}
