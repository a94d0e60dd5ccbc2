package midifile

import (
	"bytes"
	"errors"
	"testing"
)

func TestVLQRoundTrip(t *testing.T) {
	for _, v := range []uint32{0, 63, 64, 127, 128, 16383, 16384, 2097151, 2097152, MaxVLQ} {
		enc := AppendVLQ(nil, v)
		got, n, err := DecodeVLQ(enc)
		if err != nil {
			t.Fatalf("DecodeVLQ(%x): %v", enc, err)
		}
		if got != v || n != len(enc) {
			t.Errorf("round trip %d: got %d (%d of %d bytes)", v, got, n, len(enc))
		}
	}
}

func TestVLQEncoding(t *testing.T) {
	tests := []struct {
		v    uint32
		want []byte
	}{
		{0, []byte{0x00}},
		{64, []byte{0x40}},
		{127, []byte{0x7F}},
		{128, []byte{0x81, 0x00}},
		{192, []byte{0x81, 0x40}},
		{16383, []byte{0xFF, 0x7F}},
		{16384, []byte{0x81, 0x80, 0x00}},
		{MaxVLQ, []byte{0xFF, 0xFF, 0xFF, 0x7F}},
	}
	for _, tt := range tests {
		if got := AppendVLQ(nil, tt.v); !bytes.Equal(got, tt.want) {
			t.Errorf("AppendVLQ(%d) = % X, want % X", tt.v, got, tt.want)
		}
	}
}

func TestVLQAppends(t *testing.T) {
	got := AppendVLQ([]byte{0xAA}, 128)
	if !bytes.Equal(got, []byte{0xAA, 0x81, 0x00}) {
		t.Errorf("got % X", got)
	}
}

func TestDecodeVLQErrors(t *testing.T) {
	if _, _, err := DecodeVLQ([]byte{0x81, 0x80}); !errors.Is(err, ErrVLQ) {
		t.Errorf("truncated: err = %v", err)
	}
	if _, _, err := DecodeVLQ([]byte{0x81, 0x80, 0x80, 0x80, 0x00}); !errors.Is(err, ErrVLQ) {
		t.Errorf("too long: err = %v", err)
	}
	if _, _, err := DecodeVLQ(nil); !errors.Is(err, ErrVLQ) {
		t.Errorf("empty: err = %v", err)
	}
}
