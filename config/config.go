// Package config holds the tunable knobs that govern how a writer pages,
// chunks, and flushes data, and how a reader caches and validates what
// it reads back. Both sides are built with the same functional-options
// pattern used throughout the module (see internal/options).
package config

import (
	"github.com/tsfile-go/tsfile/format"
	"github.com/tsfile-go/tsfile/internal/options"
)

// Default tunables, per spec.md's ConfigValue table.
const (
	DefaultPageMaxPointCount       = 10240
	DefaultPageMaxMemoryBytes      = 64 * 1024
	DefaultChunkGroupSizeThreshold = 128 * 1024 * 1024
	DefaultMaxDegreeOfIndexNode    = 256
	DefaultBloomFilterErrorRate    = 0.05
	DefaultTimeEncoding            = format.TS2Diff
	DefaultTimeCompression         = format.Uncompressed
	DefaultChunkCacheCapacity      = 256
)

// Writer collects every tunable that affects how a Writer pages,
// chunks, and flushes.
type Writer struct {
	PageMaxPointCount       int
	PageMaxMemoryBytes      int
	ChunkGroupSizeThreshold int64
	MaxDegreeOfIndexNode    int
	BloomFilterErrorRate    float64
	TimeEncoding            format.EncodingKind
	TimeCompression         format.CompressionKind
}

// WriterOption configures a Writer config.
type WriterOption = options.Option[*Writer]

// NewWriter builds a Writer config from its defaults, applying opts in
// order.
func NewWriter(opts ...WriterOption) (*Writer, error) {
	w := &Writer{
		PageMaxPointCount:       DefaultPageMaxPointCount,
		PageMaxMemoryBytes:      DefaultPageMaxMemoryBytes,
		ChunkGroupSizeThreshold: DefaultChunkGroupSizeThreshold,
		MaxDegreeOfIndexNode:    DefaultMaxDegreeOfIndexNode,
		BloomFilterErrorRate:    DefaultBloomFilterErrorRate,
		TimeEncoding:            DefaultTimeEncoding,
		TimeCompression:         DefaultTimeCompression,
	}
	if err := options.Apply[*Writer](w, opts...); err != nil {
		return nil, err
	}

	return w, nil
}

// WithPageMaxPointCount overrides the row count that forces a page
// seal.
func WithPageMaxPointCount(n int) WriterOption {
	return options.NoError[*Writer](func(w *Writer) { w.PageMaxPointCount = n })
}

// WithPageMaxMemoryBytes overrides the estimated byte size that forces
// a page seal.
func WithPageMaxMemoryBytes(n int) WriterOption {
	return options.NoError[*Writer](func(w *Writer) { w.PageMaxMemoryBytes = n })
}

// WithChunkGroupSizeThreshold overrides the pending-bytes threshold
// that triggers an automatic flush.
func WithChunkGroupSizeThreshold(n int64) WriterOption {
	return options.NoError[*Writer](func(w *Writer) { w.ChunkGroupSizeThreshold = n })
}

// WithMaxDegreeOfIndexNode overrides the fan-out cap of every
// MetaIndexNode.
func WithMaxDegreeOfIndexNode(n int) WriterOption {
	return options.NoError[*Writer](func(w *Writer) { w.MaxDegreeOfIndexNode = n })
}

// WithBloomFilterErrorRate overrides the footer bloom filter's target
// false-positive rate.
func WithBloomFilterErrorRate(p float64) WriterOption {
	return options.NoError[*Writer](func(w *Writer) { w.BloomFilterErrorRate = p })
}

// WithTimeEncoding overrides the encoding kind used for every
// time-chunk.
func WithTimeEncoding(enc format.EncodingKind) WriterOption {
	return options.NoError[*Writer](func(w *Writer) { w.TimeEncoding = enc })
}

// WithTimeCompression overrides the compression kind used for every
// time-chunk.
func WithTimeCompression(c format.CompressionKind) WriterOption {
	return options.NoError[*Writer](func(w *Writer) { w.TimeCompression = c })
}

// Reader collects the tunables that affect how a Reader caches chunk
// data and validates what it reads.
type Reader struct {
	ChunkCacheCapacity int
	StrictValidation   bool
}

// ReaderOption configures a Reader config.
type ReaderOption = options.Option[*Reader]

// NewReader builds a Reader config from its defaults, applying opts in
// order.
func NewReader(opts ...ReaderOption) (*Reader, error) {
	r := &Reader{
		ChunkCacheCapacity: DefaultChunkCacheCapacity,
		StrictValidation:   true,
	}
	if err := options.Apply[*Reader](r, opts...); err != nil {
		return nil, err
	}

	return r, nil
}

// WithChunkCacheCapacity overrides the number of chunks the reader
// keeps in its LRU cache, each held as its raw on-disk (still
// compressed) bytes.
func WithChunkCacheCapacity(n int) ReaderOption {
	return options.NoError[*Reader](func(r *Reader) { r.ChunkCacheCapacity = n })
}

// WithStrictValidation toggles whether the reader rejects a file whose
// header version byte differs from format.Version; when false, the
// version byte is not checked. No other check depends on it.
func WithStrictValidation(strict bool) ReaderOption {
	return options.NoError[*Reader](func(r *Reader) { r.StrictValidation = strict })
}
