package compress

import (
	"sync"

	"github.com/pierrec/lz4/v4"
)

// lz4CompressorPool pools lz4.Compressor instances; the type carries
// internal state that benefits from reuse across Compress calls.
var lz4CompressorPool = sync.Pool{
	New: func() any { return &lz4.Compressor{} },
}

// LZ4Codec implements the LZ4 compression kind.
//
// CompressBlock returns n == 0 when the input does not compress (rare
// for delta/gorilla-encoded payloads but possible for short pages), so
// the wire format is prefixed with one marker byte: 0x00 = stored raw,
// 0x01 = lz4 block follows.
type LZ4Codec struct{}

var _ Codec = LZ4Codec{}

const (
	lz4MarkerRaw   = 0x00
	lz4MarkerBlock = 0x01
)

func (LZ4Codec) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	dst := make([]byte, 1+lz4.CompressBlockBound(len(data)))

	lc, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(lc)

	n, err := lc.CompressBlock(data, dst[1:])
	if err != nil {
		return nil, err
	}
	if n == 0 {
		out := make([]byte, 1+len(data))
		out[0] = lz4MarkerRaw
		copy(out[1:], data)

		return out, nil
	}

	dst[0] = lz4MarkerBlock

	return dst[:1+n], nil
}

func (LZ4Codec) Decompress(data []byte, uncompressedSize int) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	marker, body := data[0], data[1:]
	if marker == lz4MarkerRaw {
		return body, nil
	}

	dst := make([]byte, uncompressedSize)
	n, err := lz4.UncompressBlock(body, dst)
	if err != nil {
		return nil, err
	}

	return dst[:n], nil
}
