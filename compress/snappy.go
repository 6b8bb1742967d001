package compress

import "github.com/klauspost/compress/s2"

// SnappyCodec implements the SNAPPY compression kind using S2, a
// format-compatible superset of Snappy with better throughput and a
// streaming block API. s2.Encode/Decode round-trip plain Snappy data too.
type SnappyCodec struct{}

var _ Codec = SnappyCodec{}

func (SnappyCodec) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return s2.Encode(nil, data), nil
}

func (SnappyCodec) Decompress(data []byte, _ int) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return s2.Decode(nil, data)
}
