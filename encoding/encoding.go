// Package encoding implements the value encoders and decoders behind
// the format.EncodingKind tags: PLAIN, DICTIONARY, RLE, DIFF, TS_2DIFF,
// BITMAP, GORILLA / GORILLA_V1, REGULAR, ZIGZAG. FREQ has a reserved
// tag but no implementation (see DESIGN.md, C2).
package encoding

import "github.com/tsfile-go/tsfile/format"

// TimeEncoder encodes a column of int64 timestamps.
type TimeEncoder interface {
	Write(ts int64)
	WriteSlice(ts []int64)
	Bytes() []byte
	Len() int
	Size() int
	Reset()
}

// TimeDecoder decodes a column of int64 timestamps encoded by the
// matching TimeEncoder.
type TimeDecoder interface {
	// Decode returns the count timestamps encoded in data.
	Decode(data []byte, count int) ([]int64, error)
}

// NewTimeEncoder returns the encoder for the given time encoding kind.
func NewTimeEncoder(kind format.EncodingKind) (TimeEncoder, error) {
	switch kind {
	case format.Plain:
		return NewRawInt64Encoder(), nil
	case format.TS2Diff:
		return NewTS2DiffEncoder(), nil
	case format.Diff:
		return NewDiffEncoder(), nil
	case format.Regular:
		return NewRegularEncoder(), nil
	default:
		return nil, unsupportedEncoding(kind)
	}
}

// NewTimeDecoder returns the decoder for the given time encoding kind.
func NewTimeDecoder(kind format.EncodingKind) (TimeDecoder, error) {
	switch kind {
	case format.Plain:
		return RawInt64Decoder{}, nil
	case format.TS2Diff:
		return TS2DiffDecoder{}, nil
	case format.Diff:
		return DiffDecoder{}, nil
	case format.Regular:
		return RegularDecoder{}, nil
	default:
		return nil, unsupportedEncoding(kind)
	}
}
