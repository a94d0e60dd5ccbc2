package midifile

import (
	"errors"
	"fmt"
)

// MaxVLQ is the largest value a four-byte variable-length quantity can hold
const MaxVLQ = 0x0FFFFFFF

var ErrVLQ = errors.New("malformed variable-length quantity")

// AppendVLQ appends v as a variable-length quantity: 7 bits per byte, most
// significant group first, continuation bit set on all but the last byte.
// Zero encodes as a single 0x00.
func AppendVLQ(b []byte, v uint32) []byte {
	var tmp [5]byte
	i := len(tmp) - 1
	tmp[i] = byte(v & 0x7F)
	for v >>= 7; v > 0; v >>= 7 {
		i--
		tmp[i] = byte(v&0x7F) | 0x80
	}
	return append(b, tmp[i:]...)
}

// DecodeVLQ reads a variable-length quantity from the start of b and
// returns the value and the number of bytes consumed.
func DecodeVLQ(b []byte) (uint32, int, error) {
	var v uint32
	for i := 0; i < len(b) && i < 4; i++ {
		v = v<<7 | uint32(b[i]&0x7F)
		if b[i]&0x80 == 0 {
			return v, i + 1, nil
		}
	}
	if len(b) < 4 {
		return 0, 0, fmt.Errorf("%w: truncated after %d bytes", ErrVLQ, len(b))
	}
	return 0, 0, fmt.Errorf("%w: longer than 4 bytes", ErrVLQ)
}
