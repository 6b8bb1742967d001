package chunk

import (
	"encoding/binary"

	"github.com/tsfile-go/tsfile/errs"
	"github.com/tsfile-go/tsfile/format"
	"github.com/tsfile-go/tsfile/page"
)

// Header is a parsed chunk header.
type Header struct {
	Marker          byte
	MeasurementName string
	DataSize        int
	DataType        format.DataType
	Compression     format.CompressionKind
	Encoding        format.EncodingKind
}

// ParseHeader reads a chunk header from data and returns it along with
// the number of bytes consumed.
func ParseHeader(data []byte) (Header, int, error) {
	if len(data) < 1 {
		return Header{}, 0, errs.Wrap(errs.KindCorrupted, "truncated chunk header", nil)
	}

	marker := data[0]
	if marker != format.ChunkHeaderMarkerMulti && marker != format.ChunkHeaderMarkerSingle {
		return Header{}, 0, errs.Wrap(errs.KindCorrupted, "invalid chunk header marker", nil)
	}
	offset := 1

	name, n, err := format.ReadString(data[offset:])
	if err != nil {
		return Header{}, 0, errs.Wrap(errs.KindCorrupted, "truncated chunk measurement name", err)
	}
	offset += n

	dataSize, n := binary.Uvarint(data[offset:])
	if n <= 0 {
		return Header{}, 0, errs.Wrap(errs.KindCorrupted, "truncated chunk data size", nil)
	}
	offset += n

	if offset+3 > len(data) {
		return Header{}, 0, errs.Wrap(errs.KindCorrupted, "truncated chunk type/compression/encoding", nil)
	}
	h := Header{
		Marker:          marker,
		MeasurementName: name,
		DataSize:        int(dataSize), //nolint:gosec
		DataType:        format.DataType(data[offset]),
		Compression:     format.CompressionKind(data[offset+1]),
		Encoding:        format.EncodingKind(data[offset+2]),
	}
	offset += 3

	return h, offset, nil
}

// SplitPages splits a chunk body into its constituent page byte ranges. Since
// pages 2..N always carry statistics and only a single-page chunk's sole
// page omits them, the split must walk pages sequentially using
// page.ParseHeader with the right hasStats flag per position — but that
// flag itself depends on total page count, which isn't known up front
// for a streamed body. TsFile works around this the same way we build
// it: a single-page chunk (Marker == ChunkHeaderMarkerSingle) has
// exactly one page with no statistics; a multi-page chunk
// (ChunkHeaderMarkerMulti) has every page carrying statistics.
func SplitPages(h Header, body []byte) ([]page.Header, [][]byte, error) {
	hasStats := h.Marker == format.ChunkHeaderMarkerMulti

	var headers []page.Header
	var bodies [][]byte

	offset := 0
	for offset < len(body) {
		ph, n, err := page.ParseHeader(h.DataType, body[offset:], hasStats)
		if err != nil {
			return nil, nil, err
		}
		offset += n
		if offset+ph.CompressedSize > len(body) {
			return nil, nil, errs.Wrap(errs.KindCorrupted, "truncated page body", nil)
		}
		headers = append(headers, ph)
		bodies = append(bodies, body[offset:offset+ph.CompressedSize])
		offset += ph.CompressedSize
	}

	return headers, bodies, nil
}
