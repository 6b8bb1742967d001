package page

import (
	"encoding/binary"

	"github.com/tsfile-go/tsfile/compress"
	"github.com/tsfile-go/tsfile/encoding"
	"github.com/tsfile-go/tsfile/errs"
	"github.com/tsfile-go/tsfile/format"
	"github.com/tsfile-go/tsfile/stats"
)

// Header is a parsed page header, with Stats nil when the page omitted
// its own statistics (single-page chunks reuse the chunk's statistics).
type Header struct {
	UncompressedSize int
	CompressedSize   int
	Stats            *stats.Statistics
}

// ParseHeader reads {uncompressedSize uvarint, compressedSize uvarint,
// [statistics]} from data and returns the header plus the number of
// bytes consumed. hasStats tells ParseHeader whether a Statistics blob
// follows (known from the chunk's page count, not self-describing).
func ParseHeader(dataType format.DataType, data []byte, hasStats bool) (Header, int, error) {
	offset := 0

	uncompressedSize, n := binary.Uvarint(data[offset:])
	if n <= 0 {
		return Header{}, 0, errs.Wrap(errs.KindCorrupted, "truncated page header", nil)
	}
	offset += n

	compressedSize, n := binary.Uvarint(data[offset:])
	if n <= 0 {
		return Header{}, 0, errs.Wrap(errs.KindCorrupted, "truncated page header", nil)
	}
	offset += n

	h := Header{UncompressedSize: int(uncompressedSize), CompressedSize: int(compressedSize)} //nolint:gosec

	if hasStats {
		st, consumed, err := stats.Deserialize(dataType, data[offset:])
		if err != nil {
			return Header{}, 0, err
		}
		offset += consumed
		h.Stats = st
	}

	return h, offset, nil
}

// Decode decompresses and decodes one unaligned page body (following
// its header) into parallel time/value slices.
func Decode(
	dataType format.DataType,
	timeEncoding, valueEncoding format.EncodingKind,
	compression format.CompressionKind,
	h Header,
	body []byte,
	count int,
) ([]int64, []any, error) {
	codec, err := compress.GetCodec(compression)
	if err != nil {
		return nil, nil, err
	}

	raw, err := codec.Decompress(body[:h.CompressedSize], h.UncompressedSize)
	if err != nil {
		return nil, nil, err
	}

	timeLen, n := binary.Uvarint(raw)
	if n <= 0 {
		return nil, nil, errs.Wrap(errs.KindCorrupted, "truncated page time length", nil)
	}
	offset := n
	if offset+int(timeLen) > len(raw) {
		return nil, nil, errs.Wrap(errs.KindCorrupted, "truncated page time stream", nil)
	}
	timeBytes := raw[offset : offset+int(timeLen)]
	valueBytes := raw[offset+int(timeLen):]

	timeDec, err := encoding.NewValueDecoder(format.Timestamp, timeEncoding)
	if err != nil {
		return nil, nil, err
	}
	valueDec, err := encoding.NewValueDecoder(dataType, valueEncoding)
	if err != nil {
		return nil, nil, err
	}

	timeVals, err := timeDec.DecodeAny(timeBytes, count)
	if err != nil {
		return nil, nil, err
	}
	valueVals, err := valueDec.DecodeAny(valueBytes, count)
	if err != nil {
		return nil, nil, err
	}

	times := make([]int64, len(timeVals))
	for i, v := range timeVals {
		times[i], _ = v.(int64)
	}

	return times, valueVals, nil
}

// DecodeValuePage decompresses and decodes one aligned value-page body
// (null bitmap prefix + value stream, no time stream of its own).
// rowCount is the number of rows in the owning chunk group (the null
// bitmap's bit length); the returned slice has length rowCount with nil
// entries for rows the bitmap marks absent.
func DecodeValuePage(
	dataType format.DataType,
	valueEncoding format.EncodingKind,
	compression format.CompressionKind,
	h Header,
	body []byte,
	rowCount int,
) ([]any, error) {
	codec, err := compress.GetCodec(compression)
	if err != nil {
		return nil, err
	}

	raw, err := codec.Decompress(body[:h.CompressedSize], h.UncompressedSize)
	if err != nil {
		return nil, err
	}

	bitmapLen := encoding.BitmapByteLen(rowCount)
	if bitmapLen > len(raw) {
		return nil, errs.Wrap(errs.KindCorrupted, "truncated null bitmap", nil)
	}
	present, err := encoding.BitmapDecoder{}.Decode(raw[:bitmapLen], rowCount)
	if err != nil {
		return nil, err
	}

	nonNull := 0
	for _, p := range present {
		if p {
			nonNull++
		}
	}

	valueDec, err := encoding.NewValueDecoder(dataType, valueEncoding)
	if err != nil {
		return nil, err
	}
	decoded, err := valueDec.DecodeAny(raw[bitmapLen:], nonNull)
	if err != nil {
		return nil, err
	}

	out := make([]any, rowCount)
	di := 0
	for i, p := range present {
		if p {
			out[i] = decoded[di]
			di++
		}
	}

	return out, nil
}
