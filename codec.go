package permkit

import (
	"encoding/binary"
	"errors"
)

const maskRecordVersionV1 = 1

var errMaskRecordInvalid = errors.New("invalid mask record")

// encodeMaskRecord packs a computed mask into the cache wire form:
// one record-version byte followed by the big-endian 64-bit mask.
func encodeMaskRecord(mask Mask) []byte {
	buf := make([]byte, 9)
	buf[0] = maskRecordVersionV1
	binary.BigEndian.PutUint64(buf[1:], uint64(mask))
	return buf
}

func decodeMaskRecord(data []byte) (Mask, error) {
	if len(data) != 9 || data[0] != maskRecordVersionV1 {
		return 0, errMaskRecordInvalid
	}
	return Mask(binary.BigEndian.Uint64(data[1:])), nil
}

// EncodeMask serializes a mask as 8 big-endian bytes, the form embedded in
// grant-token claims.
func EncodeMask(mask Mask) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(mask))
	return buf
}

// DecodeMask reverses [EncodeMask].
func DecodeMask(data []byte) (Mask, error) {
	if len(data) != 8 {
		return 0, errMaskRecordInvalid
	}
	return Mask(binary.BigEndian.Uint64(data)), nil
}
