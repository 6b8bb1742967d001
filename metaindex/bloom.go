package metaindex

import (
	"bytes"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/cespare/xxhash/v2"

	"github.com/tsfile-go/tsfile/errs"
	"github.com/tsfile-go/tsfile/format"
	"github.com/tsfile-go/tsfile/schema"
)

// BloomFilter guards the reader's descent with a fast negative check
// over (tableName, deviceID, measurementName) triples, sized from the
// expected insertion count n and target false-positive rate p.
type BloomFilter struct {
	filter *bloom.BloomFilter
}

// NewBloomFilter sizes a filter for n expected entries at false-positive
// rate p (default 0.05 per spec.md §3).
func NewBloomFilter(n int, p float64) *BloomFilter {
	if n < 1 {
		n = 1
	}

	return &BloomFilter{filter: bloom.NewWithEstimates(uint(n), p)} //nolint:gosec
}

// key builds the composite digest key tableName || deviceID ||
// measurementName, pre-hashed with xxhash so the bloom filter's own
// hashing always sees a fixed-length 8-byte key.
func key(tableName string, deviceID schema.DeviceID, measurementName string) []byte {
	h := xxhash.New()
	_, _ = h.WriteString(tableName)
	for _, seg := range deviceID.Segments {
		_, _ = h.WriteString(seg)
	}
	_, _ = h.WriteString(measurementName)

	return h.Sum(nil)
}

// Add records one (table, device, measurement) triple.
func (b *BloomFilter) Add(tableName string, deviceID schema.DeviceID, measurementName string) {
	b.filter.Add(key(tableName, deviceID, measurementName))
}

// MightContain reports whether the triple may have been added (false
// means definitely not present; true may be a false positive).
func (b *BloomFilter) MightContain(tableName string, deviceID schema.DeviceID, measurementName string) bool {
	return b.filter.Test(key(tableName, deviceID, measurementName))
}

// Serialize appends the length-prefixed on-disk form of the filter to
// out.
func (b *BloomFilter) Serialize(out []byte) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := b.filter.WriteTo(&buf); err != nil {
		return nil, errs.Wrap(errs.KindCorrupted, "bloom filter encode failed", err)
	}

	return format.AppendBytes(out, buf.Bytes()), nil
}

// DeserializeBloomFilter parses a filter written by Serialize, returning
// it and the number of bytes consumed.
func DeserializeBloomFilter(data []byte) (*BloomFilter, int, error) {
	raw, n, err := format.ReadBytes(data)
	if err != nil {
		return nil, 0, errs.Wrap(errs.KindCorrupted, "truncated bloom filter", err)
	}

	f := &bloom.BloomFilter{}
	if _, err := f.ReadFrom(bytes.NewReader(raw)); err != nil {
		return nil, 0, errs.Wrap(errs.KindCorrupted, "bloom filter decode failed", err)
	}

	return &BloomFilter{filter: f}, n, nil
}
