package format

import "encoding/binary"

// Magic is the ASCII marker that opens and closes every TsFile.
const Magic = "TsFile"

// Version is the current on-disk format version byte.
const Version byte = 0x04

// Section markers, persisted ahead of the byte ranges they introduce.
const (
	ChunkGroupHeaderMarker  byte = 0x00
	ChunkHeaderMarkerMulti  byte = 0x01
	SeparatorMarker         byte = 0x02
	ChunkHeaderMarkerSingle byte = 0x05
	OperationIndexRangeMark byte = 0x04
)

// AppendString appends a length-prefixed UTF-8 string: {length uvarint,
// bytes}. This is the framing used for every self-describing string
// field (measurement names, table names, device id segments, ...).
func AppendString(out []byte, s string) []byte {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], uint64(len(s)))
	out = append(out, tmp[:n]...)

	return append(out, s...)
}

// ReadString reads one AppendString-framed string from data, returning
// the string and the number of bytes consumed.
func ReadString(data []byte) (string, int, error) {
	length, n := binary.Uvarint(data)
	if n <= 0 {
		return "", 0, errFramingTruncated
	}
	end := n + int(length)
	if end > len(data) {
		return "", 0, errFramingTruncated
	}

	return string(data[n:end]), end, nil
}

// AppendBytes appends a length-prefixed byte sequence: {length uvarint,
// bytes}.
func AppendBytes(out []byte, b []byte) []byte {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], uint64(len(b)))
	out = append(out, tmp[:n]...)

	return append(out, b...)
}

// ReadBytes reads one AppendBytes-framed byte sequence from data.
func ReadBytes(data []byte) ([]byte, int, error) {
	length, n := binary.Uvarint(data)
	if n <= 0 {
		return nil, 0, errFramingTruncated
	}
	end := n + int(length)
	if end > len(data) {
		return nil, 0, errFramingTruncated
	}

	return data[n:end], end, nil
}

// AppendUvarint appends v as an unsigned varint.
func AppendUvarint(out []byte, v uint64) []byte {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)

	return append(out, tmp[:n]...)
}

// AppendUint32LE appends v as 4 bytes, little-endian — used for the
// file-trailing tsfileMetaSize field.
func AppendUint32LE(out []byte, v uint32) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)

	return append(out, tmp[:]...)
}

// errFramingTruncated is a package-local sentinel kept unexported since
// every caller immediately rewraps it with errs.Wrap and the operation
// it was attempting.
type framingError string

func (e framingError) Error() string { return string(e) }

const errFramingTruncated = framingError("format: truncated data")
