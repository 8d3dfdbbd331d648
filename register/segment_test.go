package register

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustSegment(t *testing.T, start, end uint) *Segment {
	t.Helper()
	seg, err := newSegment("TEST", start, end)
	require.NoError(t, err)
	return seg
}

func TestSegment_RoundTripUnsigned(t *testing.T) {
	tests := []struct {
		start, end uint
		size       int
	}{
		{0, 0, 1},
		{0, 1, 1},
		{2, 4, 1},
		{0, 7, 1},
		{5, 12, 2},
		{3, 13, 2},
		{0, 15, 2},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("bits_%d_%d", tt.start, tt.end), func(t *testing.T) {
			seg := mustSegment(t, tt.start, tt.end)
			buf := make([]byte, tt.size)
			for v := uint64(0); v < 1<<seg.Width(); v++ {
				out, err := seg.Encode(buf, v)
				require.NoError(t, err)
				got, err := seg.Decode(out)
				require.NoError(t, err)
				if !assert.Equal(t, v, got) {
					return
				}
			}
		})
	}
}

func TestSegment_RoundTripSigned(t *testing.T) {
	for _, width := range []uint{1, 3, 8, 12} {
		t.Run(fmt.Sprintf("width_%d", width), func(t *testing.T) {
			seg := mustSegment(t, 2, 2+width-1)
			buf := make([]byte, 2)
			lo, hi := -(int64(1) << (width - 1)), int64(1)<<(width-1)-1
			for v := lo; v <= hi; v++ {
				out, err := seg.EncodeSigned(buf, v)
				require.NoError(t, err)
				got, err := seg.DecodeSigned(out)
				require.NoError(t, err)
				if !assert.Equal(t, v, got) {
					return
				}
			}
		})
	}
}

func TestSegment_Full64Bits(t *testing.T) {
	seg := mustSegment(t, 0, 63)
	buf := make([]byte, 8)
	out, err := seg.Encode(buf, ^uint64(0))
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}, out)
	s, err := seg.DecodeSigned(out)
	require.NoError(t, err)
	assert.Equal(t, int64(-1), s)
}

func TestSegment_DecodeSigned(t *testing.T) {
	seg := mustSegment(t, 0, 7)
	tests := []struct {
		given    byte
		expected int64
	}{
		{0x00, 0},
		{0x7f, 127},
		{0x80, -128},
		{0xff, -1},
		{0xf6, -10},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%#x", tt.given), func(t *testing.T) {
			v, err := seg.DecodeSigned([]byte{tt.given})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, v)
		})
	}
}

func TestSegment_EncodePreservesOtherBits(t *testing.T) {
	seg := mustSegment(t, 5, 10)
	buf := []byte{0b10101010, 0b01010101}
	out, err := seg.Encode(buf, 0)
	require.NoError(t, err)
	assert.Equal(t, []byte{0b10101000, 0b00010101}, out)
	out, err = seg.Encode(buf, 0b111111)
	require.NoError(t, err)
	assert.Equal(t, []byte{0b10101111, 0b11110101}, out)
	// input buffer untouched
	assert.Equal(t, []byte{0b10101010, 0b01010101}, buf)
}

func TestSegment_BigEndianLayout(t *testing.T) {
	seg := mustSegment(t, 0, 15)
	v, err := seg.Decode([]byte{0x01, 0x2c})
	require.NoError(t, err)
	assert.Equal(t, uint64(300), v)

	high := mustSegment(t, 8, 15)
	v, err = high.Decode([]byte{0x01, 0x2c})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), v)
}

func TestSegment_TwoBitExample(t *testing.T) {
	low := mustSegment(t, 0, 1)
	third := mustSegment(t, 2, 2)
	out, err := low.Encode([]byte{0b00000000}, 0b11)
	require.NoError(t, err)
	assert.Equal(t, []byte{0b00000011}, out)
	v, err := third.Decode(out)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), v)
}

func TestSegment_Bits(t *testing.T) {
	seg := mustSegment(t, 1, 4)
	bits, err := seg.Bits([]byte{0b00010110})
	require.NoError(t, err)
	assert.Equal(t, []uint8{1, 0, 1, 1}, bits)

	out, err := seg.EncodeBits([]byte{0b11100001}, []uint8{0, 1, 1, 0})
	require.NoError(t, err)
	assert.Equal(t, []byte{0b11101101}, out)
}

func TestSegment_Errors(t *testing.T) {
	byteSeg := mustSegment(t, 0, 7)
	buf := make([]byte, 1)

	_, err := byteSeg.Encode(buf, 256)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = byteSeg.EncodeSigned(buf, -129)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = byteSeg.EncodeSigned(buf, 128)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = byteSeg.EncodeBits(buf, []uint8{1, 0, 1})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = byteSeg.EncodeBits(buf, []uint8{1, 0, 1, 0, 1, 0, 1, 2})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	wide := mustSegment(t, 4, 11)
	_, err = wide.Decode(buf)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = newSegment("BAD", 4, 3)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = newSegment("BAD", 0, 64)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
