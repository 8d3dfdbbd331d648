package register

import (
	"fmt"
)

// ID names a register or a segment. Device packages declare their
// vocabulary as typed constants.
type ID string

// MaxSegmentWidth is the widest field a segment can describe.
const MaxSegmentWidth = 64

// Segment is a named bit range [Start, End] of a register buffer. Bit 0 is the
// least significant bit of the last byte; the buffer is read as one big-endian number.
type Segment struct {
	name  ID
	start uint
	end   uint
}

func newSegment(name ID, start, end uint) (*Segment, error) {
	if start > end {
		return nil, fmt.Errorf("%w: segment %s: start bit %d is after end bit %d", ErrInvalidArgument, name, start, end)
	}
	if end-start+1 > MaxSegmentWidth {
		return nil, fmt.Errorf("%w: segment %s: %d bits exceed %d", ErrInvalidArgument, name, end-start+1, MaxSegmentWidth)
	}
	return &Segment{name: name, start: start, end: end}, nil
}

func (s *Segment) Name() ID    { return s.name }
func (s *Segment) Start() uint { return s.start }
func (s *Segment) End() uint   { return s.end }
func (s *Segment) Width() uint { return s.end - s.start + 1 }

func (s *Segment) mask() uint64 {
	if s.Width() == 64 {
		return ^uint64(0)
	}
	return 1<<s.Width() - 1
}

func (s *Segment) check(buf []byte) error {
	if uint(len(buf))*8 <= s.end {
		return fmt.Errorf("%w: segment %s: end bit %d outside %d byte buffer", ErrInvalidArgument, s.name, s.end, len(buf))
	}
	return nil
}

func bitAt(buf []byte, pos uint) uint64 {
	return uint64(buf[len(buf)-1-int(pos/8)]>>(pos%8)) & 1
}

// Decode returns the segment bits of buf as an unsigned integer.
func (s *Segment) Decode(buf []byte) (uint64, error) {
	if err := s.check(buf); err != nil {
		return 0, err
	}
	var v uint64
	for pos := s.end; ; pos-- {
		v = v<<1 | bitAt(buf, pos)
		if pos == s.start {
			break
		}
	}
	return v, nil
}

// DecodeSigned interprets the segment bits as a two's complement number of the
// segment's own width.
func (s *Segment) DecodeSigned(buf []byte) (int64, error) {
	u, err := s.Decode(buf)
	if err != nil {
		return 0, err
	}
	w := s.Width()
	if w < 64 && u>>(w-1)&1 == 1 {
		return int64(u) - int64(1)<<w, nil
	}
	return int64(u), nil
}

// Bits returns the segment as a bit array, most significant bit first.
func (s *Segment) Bits(buf []byte) ([]uint8, error) {
	u, err := s.Decode(buf)
	if err != nil {
		return nil, err
	}
	bits := make([]uint8, s.Width())
	for i := range bits {
		bits[len(bits)-1-i] = uint8(u >> uint(i) & 1)
	}
	return bits, nil
}

// Encode returns a copy of buf with the segment bits replaced by v. Bits outside
// the segment are preserved.
func (s *Segment) Encode(buf []byte, v uint64) ([]byte, error) {
	if err := s.check(buf); err != nil {
		return nil, err
	}
	if v&^s.mask() != 0 {
		return nil, fmt.Errorf("%w: segment %s: value %d does not fit in %d bits", ErrInvalidArgument, s.name, v, s.Width())
	}
	out := make([]byte, len(buf))
	copy(out, buf)
	for i := uint(0); i < s.Width(); i++ {
		pos := s.start + i
		idx := len(out) - 1 - int(pos/8)
		bit := byte(1) << (pos % 8)
		if v>>i&1 == 1 {
			out[idx] |= bit
		} else {
			out[idx] &^= bit
		}
	}
	return out, nil
}

// EncodeSigned stores v in two's complement using the segment width.
func (s *Segment) EncodeSigned(buf []byte, v int64) ([]byte, error) {
	w := s.Width()
	if w < 64 {
		lo, hi := -(int64(1) << (w - 1)), int64(1)<<(w-1)-1
		if v < lo || v > hi {
			return nil, fmt.Errorf("%w: segment %s: value %d outside [%d, %d]", ErrInvalidArgument, s.name, v, lo, hi)
		}
	}
	return s.Encode(buf, uint64(v)&s.mask())
}

// EncodeBits stores an explicit bit array, most significant bit first.
func (s *Segment) EncodeBits(buf []byte, bits []uint8) ([]byte, error) {
	if uint(len(bits)) != s.Width() {
		return nil, fmt.Errorf("%w: segment %s: got %d bits, want %d", ErrInvalidArgument, s.name, len(bits), s.Width())
	}
	var v uint64
	for i, b := range bits {
		if b > 1 {
			return nil, fmt.Errorf("%w: segment %s: bit %d has value %d", ErrInvalidArgument, s.name, i, b)
		}
		v = v<<1 | uint64(b)
	}
	return s.Encode(buf, v)
}
