// Package compress provides block compressors for already-encoded page
// bodies, identified by the stable tag bytes in format.CompressionKind.
package compress

import (
	"fmt"

	"github.com/tsfile-go/tsfile/errs"
	"github.com/tsfile-go/tsfile/format"
)

// Compressor compresses an encoded page body.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
}

// Decompressor decompresses a page body previously produced by the
// matching Compressor. uncompressedSize is the exact original length,
// taken from the page header, so implementations can preallocate.
type Decompressor interface {
	Decompress(data []byte, uncompressedSize int) ([]byte, error)
}

// Codec combines both directions behind one compression tag.
type Codec interface {
	Compressor
	Decompressor
}

var builtinCodecs = map[format.CompressionKind]Codec{
	format.Uncompressed: NoOpCodec{},
	format.Snappy:       SnappyCodec{},
	format.Gzip:         GzipCodec{},
	format.LZ4:          LZ4Codec{},
	format.Zstd:         ZstdCodec{},
}

// GetCodec retrieves the built-in Codec for kind.
//
// LZO, SDT, PAA, and PLA have reserved tags but no decoding: the spec
// leaves their byte layout undefined (write-side emission is
// undefined), so returning a codec for them would mean inventing a
// format. Callers get errs.ErrNotSupported instead.
func GetCodec(kind format.CompressionKind) (Codec, error) {
	if codec, ok := builtinCodecs[kind]; ok {
		return codec, nil
	}

	switch kind {
	case format.LZO, format.SDT, format.PAA, format.PLA:
		return nil, errs.Wrap(errs.KindNotSupported, "compression kind "+kind.String()+" has no decoder", nil)
	default:
		return nil, errs.New(errs.KindInvalidArg, fmt.Sprintf("unknown compression kind %d", kind))
	}
}
