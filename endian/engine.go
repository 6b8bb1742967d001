// Package endian provides byte order utilities for binary encoding and
// decoding of TsFile sections.
//
// It combines the standard library's ByteOrder and AppendByteOrder
// interfaces into a single EndianEngine so every section writer in this
// module can share one append-friendly type instead of juggling two.
package endian

import (
	"encoding/binary"
	"unsafe"
)

// EndianEngine combines ByteOrder and AppendByteOrder from encoding/binary
// into a single interface. binary.LittleEndian and binary.BigEndian both
// satisfy it already.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// CheckEndianness uses a fixed integer value to determine the host's byte order.
func CheckEndianness() binary.ByteOrder {
	var i uint16 = 0x0100

	b := (*[2]byte)(unsafe.Pointer(&i))
	if b[0] == 0x01 {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

// IsNativeLittleEndian reports whether the host is little-endian.
func IsNativeLittleEndian() bool {
	return CheckEndianness() == binary.LittleEndian
}

// GetLittleEndianEngine returns the little-endian engine.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}

// PutInt64 writes v as 8 bytes using engine's byte order, reinterpreting
// the signed value bitwise (no range check, matches on-disk timestamps).
func PutInt64(engine EndianEngine, b []byte, v int64) {
	engine.PutUint64(b, *(*uint64)(unsafe.Pointer(&v)))
}

// Int64 reads 8 bytes using engine's byte order and reinterprets them as a signed value.
func Int64(engine EndianEngine, b []byte) int64 {
	u := engine.Uint64(b)

	return *(*int64)(unsafe.Pointer(&u))
}
