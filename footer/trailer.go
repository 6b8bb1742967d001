package footer

import "github.com/tsfile-go/tsfile/format"

// TrailerSize is the fixed width of the footer-size + magic suffix that
// closes every TsFile: a uint32 LE byte count followed by the magic
// string.
const TrailerSize = 4 + len(format.Magic)

// AppendTrailer appends the {tsfileMetaSize uint32 LE, MAGIC} suffix
// that lets a reader locate TsFileMeta from the end of the file.
func AppendTrailer(out []byte, metaSize uint32) []byte {
	out = format.AppendUint32LE(out, metaSize)

	return append(out, format.Magic...)
}
