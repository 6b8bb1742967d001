package page

import (
	"encoding/binary"

	"github.com/tsfile-go/tsfile/compress"
	"github.com/tsfile-go/tsfile/encoding"
	"github.com/tsfile-go/tsfile/format"
	"github.com/tsfile-go/tsfile/stats"
)

// ValueWriter is the aligned-column counterpart of Writer: it belongs to
// one value-chunk within an aligned chunk group, does not encode its own
// time column (the group's TimeChunkWriter owns that), and additionally
// tracks a per-row null bitmap (bit 1 means present) that is prepended
// to the encoded payload before compression.
type ValueWriter struct {
	dataType    format.DataType
	valueEnc    encoding.ValueEncoder
	nullBitmap  *encoding.BitmapEncoder
	codec       compress.Codec
	compression format.CompressionKind
	st          *stats.Statistics
	rows        int
}

// NewValueWriter constructs an aligned value-page writer.
func NewValueWriter(
	dataType format.DataType,
	valueEncoding format.EncodingKind,
	compression format.CompressionKind,
) (*ValueWriter, error) {
	valueEnc, err := encoding.NewValueEncoder(dataType, valueEncoding)
	if err != nil {
		return nil, err
	}
	codec, err := compress.GetCodec(compression)
	if err != nil {
		return nil, err
	}

	return &ValueWriter{
		dataType:    dataType,
		valueEnc:    valueEnc,
		nullBitmap:  encoding.NewBitmapEncoder(),
		codec:       codec,
		compression: compression,
		st:          stats.New(dataType),
	}, nil
}

// WriteRow appends one row. value == nil marks the row null for this
// column: the bitmap records absence and the row is skipped in the
// encoder and statistics, matching the aligned group's shared row count
// with per-column nullability.
func (w *ValueWriter) WriteRow(time int64, value any) error {
	w.rows++
	if value == nil {
		w.nullBitmap.Write(false)

		return nil
	}
	w.nullBitmap.Write(true)

	if err := w.valueEnc.WriteAny(value); err != nil {
		return err
	}

	return w.st.Update(time, value)
}

// Rows reports the number of rows written, including nulls.
func (w *ValueWriter) Rows() int { return w.rows }

// Statistics returns the page's accumulated statistics (covering only
// the non-null rows).
func (w *ValueWriter) Statistics() *stats.Statistics { return w.st }

// EstimateSize returns a conservative byte upper bound for the current
// unsealed contents.
func (w *ValueWriter) EstimateSize() int {
	return w.valueEnc.Size() + encoding.BitmapByteLen(w.rows) + 64
}

// Seal writes the page header, null bitmap, and compressed value stream
// to out and returns the extended slice.
func (w *ValueWriter) Seal(out []byte, includeStats bool) ([]byte, error) {
	bitmap := w.nullBitmap.Bytes()
	uncompressed := append(append([]byte(nil), bitmap...), w.valueEnc.Bytes()...)

	compressed, err := w.codec.Compress(uncompressed)
	if err != nil {
		return nil, err
	}

	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], uint64(len(uncompressed)))
	out = append(out, tmp[:n]...)
	n = binary.PutUvarint(tmp[:], uint64(len(compressed)))
	out = append(out, tmp[:n]...)

	if includeStats {
		out = w.st.Serialize(out)
	}

	out = append(out, compressed...)

	return out, nil
}

// Reset clears the value page writer for reuse by a following page
// within the same value-chunk.
func (w *ValueWriter) Reset() {
	w.valueEnc.Reset()
	w.nullBitmap.Reset()
	w.st = stats.New(w.dataType)
	w.rows = 0
}
