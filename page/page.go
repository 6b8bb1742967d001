// Package page implements the smallest sealed unit of a chunk: a
// buffer of (time, value) pairs under one encoder, with its own
// Statistics, compressed independently of its siblings.
package page

import (
	"encoding/binary"

	"github.com/tsfile-go/tsfile/compress"
	"github.com/tsfile-go/tsfile/encoding"
	"github.com/tsfile-go/tsfile/format"
	"github.com/tsfile-go/tsfile/stats"
)

// Writer accumulates (time, value) pairs for one unaligned column page.
type Writer struct {
	dataType    format.DataType
	timeEnc     encoding.ValueEncoder
	valueEnc    encoding.ValueEncoder
	codec       compress.Codec
	compression format.CompressionKind
	st          *stats.Statistics
}

// NewWriter constructs a page writer for dataType using the given time
// and value encodings and page-body compression.
func NewWriter(
	dataType format.DataType,
	timeEncoding, valueEncoding format.EncodingKind,
	compression format.CompressionKind,
) (*Writer, error) {
	timeEnc, err := encoding.NewValueEncoder(format.Timestamp, timeEncoding)
	if err != nil {
		return nil, err
	}
	valueEnc, err := encoding.NewValueEncoder(dataType, valueEncoding)
	if err != nil {
		return nil, err
	}
	codec, err := compress.GetCodec(compression)
	if err != nil {
		return nil, err
	}

	return &Writer{
		dataType:    dataType,
		timeEnc:     timeEnc,
		valueEnc:    valueEnc,
		codec:       codec,
		compression: compression,
		st:          stats.New(dataType),
	}, nil
}

// Write appends one (time, value) point, updating the page's running
// statistics. A type-mismatched value is a recoverable, non-fatal error
// the caller decides whether to skip or abort on.
func (w *Writer) Write(time int64, value any) error {
	if err := w.timeEnc.WriteAny(time); err != nil {
		return err
	}
	if err := w.valueEnc.WriteAny(value); err != nil {
		return err
	}

	return w.st.Update(time, value)
}

// Len reports the number of points written so far.
func (w *Writer) Len() int { return int(w.st.Count) }

// Statistics returns the page's accumulated (not yet necessarily
// sealed) statistics.
func (w *Writer) Statistics() *stats.Statistics { return w.st }

// EstimateSize returns a conservative byte upper bound for the current
// unsealed contents, used to decide when to force a flush.
func (w *Writer) EstimateSize() int {
	return w.timeEnc.Size() + w.valueEnc.Size() + 64
}

// Seal writes the page header and (compressed) body to out and returns
// the extended slice. includeStats controls whether the page header
// carries its own Statistics (false when the chunk has exactly one page
// and the chunk-level Statistics already equals this page's — the
// single-page-elides-stats rule lives in the chunk writer, not here).
func (w *Writer) Seal(out []byte, includeStats bool) ([]byte, error) {
	timeBytes := w.timeEnc.Bytes()

	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], uint64(len(timeBytes)))

	uncompressed := make([]byte, 0, n+len(timeBytes)+len(w.valueEnc.Bytes()))
	uncompressed = append(uncompressed, tmp[:n]...)
	uncompressed = append(uncompressed, timeBytes...)
	uncompressed = append(uncompressed, w.valueEnc.Bytes()...)

	compressed, err := w.codec.Compress(uncompressed)
	if err != nil {
		return nil, err
	}

	n = binary.PutUvarint(tmp[:], uint64(len(uncompressed)))
	out = append(out, tmp[:n]...)
	n = binary.PutUvarint(tmp[:], uint64(len(compressed)))
	out = append(out, tmp[:n]...)

	if includeStats {
		out = w.st.Serialize(out)
	}

	out = append(out, compressed...)

	return out, nil
}

// Reset clears the page writer for reuse by a following page within the
// same chunk.
func (w *Writer) Reset() {
	w.timeEnc.Reset()
	w.valueEnc.Reset()
	w.st = stats.New(w.dataType)
}
