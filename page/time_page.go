package page

import (
	"encoding/binary"

	"github.com/tsfile-go/tsfile/compress"
	"github.com/tsfile-go/tsfile/encoding"
	"github.com/tsfile-go/tsfile/format"
	"github.com/tsfile-go/tsfile/stats"
)

// TimeWriter accumulates timestamps for the time-chunk of an aligned
// chunk group: VECTOR dataType, no value stream, statistics carry only
// count and time range.
type TimeWriter struct {
	enc         encoding.ValueEncoder
	codec       compress.Codec
	compression format.CompressionKind
	st          *stats.Statistics
}

// NewTimeWriter constructs a time-only page writer using timeEncoding
// (default TS_2DIFF) and timeCompression (default UNCOMPRESSED).
func NewTimeWriter(timeEncoding format.EncodingKind, timeCompression format.CompressionKind) (*TimeWriter, error) {
	enc, err := encoding.NewValueEncoder(format.Timestamp, timeEncoding)
	if err != nil {
		return nil, err
	}
	codec, err := compress.GetCodec(timeCompression)
	if err != nil {
		return nil, err
	}

	return &TimeWriter{
		enc:         enc,
		codec:       codec,
		compression: timeCompression,
		st:          stats.New(format.Vector),
	}, nil
}

// Write appends one timestamp.
func (w *TimeWriter) Write(time int64) error {
	if err := w.enc.WriteAny(time); err != nil {
		return err
	}

	return w.st.Update(time, nil)
}

// Len reports the number of timestamps written so far.
func (w *TimeWriter) Len() int { return int(w.st.Count) }

// Statistics returns the page's accumulated (time-only) statistics.
func (w *TimeWriter) Statistics() *stats.Statistics { return w.st }

// EstimateSize returns a conservative byte upper bound for the current
// unsealed contents.
func (w *TimeWriter) EstimateSize() int { return w.enc.Size() + 32 }

// Seal writes the page header and compressed time stream to out.
func (w *TimeWriter) Seal(out []byte, includeStats bool) ([]byte, error) {
	uncompressed := w.enc.Bytes()

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

	return append(out, compressed...), nil
}

// Reset clears the time page writer for reuse by the next page.
func (w *TimeWriter) Reset() {
	w.enc.Reset()
	w.st = stats.New(format.Vector)
}

// DecodeTimePage decompresses and decodes one time-page body into a
// slice of timestamps.
func DecodeTimePage(
	timeEncoding format.EncodingKind,
	compression format.CompressionKind,
	h Header,
	body []byte,
	count int,
) ([]int64, error) {
	codec, err := compress.GetCodec(compression)
	if err != nil {
		return nil, err
	}

	raw, err := codec.Decompress(body[:h.CompressedSize], h.UncompressedSize)
	if err != nil {
		return nil, err
	}

	dec, err := encoding.NewValueDecoder(format.Timestamp, timeEncoding)
	if err != nil {
		return nil, err
	}
	vals, err := dec.DecodeAny(raw, count)
	if err != nil {
		return nil, err
	}

	out := make([]int64, len(vals))
	for i, v := range vals {
		out[i], _ = v.(int64)
	}

	return out, nil
}
