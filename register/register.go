package register

import (
	"context"
	"fmt"

	"github.com/mklimuk/rangefinder"
)

// Mode tells which bus operations a register accepts.
type Mode uint8

const (
	ModeRead Mode = 1 << iota
	ModeWrite
	ModeReadWrite = ModeRead | ModeWrite
)

func (m Mode) CanRead() bool  { return m&ModeRead != 0 }
func (m Mode) CanWrite() bool { return m&ModeWrite != 0 }

func (m Mode) String() string {
	switch m {
	case ModeRead:
		return "R"
	case ModeWrite:
		return "W"
	case ModeReadWrite:
		return "RW"
	default:
		return fmt.Sprintf("Mode(%d)", uint8(m))
	}
}

// SegmentSpec declares one field of a register.
type SegmentSpec struct {
	Name  ID
	Start uint
	End   uint
}

// Spec declares a register and its segments.
type Spec struct {
	Name     ID
	Address  byte
	Mode     Mode
	Segments []SegmentSpec
}

// Register is an addressed byte buffer split into named segments. The buffer
// holds whatever was last read from or staged for the device.
type Register struct {
	name     ID
	address  byte
	mode     Mode
	device   byte
	bus      rangefinder.RegisterBus
	segments map[ID]*Segment
	order    []ID
	buf      []byte
}

func newRegister(spec Spec, bus rangefinder.RegisterBus, device byte) (*Register, error) {
	if len(spec.Segments) == 0 {
		return nil, fmt.Errorf("%w: register %s has no segments", ErrInvalidArgument, spec.Name)
	}
	if !spec.Mode.CanRead() && !spec.Mode.CanWrite() {
		return nil, fmt.Errorf("%w: register %s: invalid mode %s", ErrInvalidArgument, spec.Name, spec.Mode)
	}
	r := &Register{
		name:     spec.Name,
		address:  spec.Address,
		mode:     spec.Mode,
		device:   device,
		bus:      bus,
		segments: make(map[ID]*Segment, len(spec.Segments)),
	}
	var last uint
	for _, ss := range spec.Segments {
		if _, ok := r.segments[ss.Name]; ok {
			return nil, fmt.Errorf("%w: register %s: duplicate segment %s", ErrInvalidArgument, spec.Name, ss.Name)
		}
		seg, err := newSegment(ss.Name, ss.Start, ss.End)
		if err != nil {
			return nil, fmt.Errorf("register %s: %w", spec.Name, err)
		}
		r.segments[ss.Name] = seg
		r.order = append(r.order, ss.Name)
		last = max(last, ss.End)
	}
	r.buf = make([]byte, last/8+1)
	return r, nil
}

func (r *Register) Name() ID       { return r.name }
func (r *Register) Address() byte  { return r.address }
func (r *Register) Mode() Mode     { return r.mode }
func (r *Register) Width() int     { return len(r.buf) }
func (r *Register) Segments() []ID { return append([]ID(nil), r.order...) }

// Buffer returns a copy of the cached register content.
func (r *Register) Buffer() []byte {
	return append([]byte(nil), r.buf...)
}

// Segment looks up a segment by name.
func (r *Register) Segment(name ID) (*Segment, error) {
	seg, ok := r.segments[name]
	if !ok {
		return nil, fmt.Errorf("%w: segment %s in register %s", ErrNotFound, name, r.name)
	}
	return seg, nil
}

// Read fetches the register from the device and caches it.
func (r *Register) Read(ctx context.Context) ([]byte, error) {
	if !r.mode.CanRead() {
		return nil, fmt.Errorf("%w: register %s is not readable", ErrPermissionDenied, r.name)
	}
	buf := make([]byte, len(r.buf))
	err := r.bus.ReadRegister(ctx, r.device, r.address, buf)
	if err != nil {
		return nil, fmt.Errorf("could not read register %s: %w", r.name, err)
	}
	r.buf = buf
	return r.Buffer(), nil
}

// Write sends the cached buffer to the device.
func (r *Register) Write(ctx context.Context) error {
	if !r.mode.CanWrite() {
		return fmt.Errorf("%w: register %s is not writable", ErrPermissionDenied, r.name)
	}
	err := r.bus.WriteRegister(ctx, r.device, r.address, r.Buffer())
	if err != nil {
		return fmt.Errorf("could not write register %s: %w", r.name, err)
	}
	return nil
}

// Set stages v into the named segment without touching the bus.
func (r *Register) Set(name ID, v uint64) ([]byte, error) {
	return r.stage(name, func(seg *Segment) ([]byte, error) { return seg.Encode(r.buf, v) })
}

// SetSigned stages a two's complement value into the named segment.
func (r *Register) SetSigned(name ID, v int64) ([]byte, error) {
	return r.stage(name, func(seg *Segment) ([]byte, error) { return seg.EncodeSigned(r.buf, v) })
}

// SetBits stages an explicit bit array (most significant bit first).
func (r *Register) SetBits(name ID, bits []uint8) ([]byte, error) {
	return r.stage(name, func(seg *Segment) ([]byte, error) { return seg.EncodeBits(r.buf, bits) })
}

func (r *Register) stage(name ID, encode func(*Segment) ([]byte, error)) ([]byte, error) {
	seg, err := r.Segment(name)
	if err != nil {
		return nil, err
	}
	buf, err := encode(seg)
	if err != nil {
		return nil, err
	}
	r.buf = buf
	return r.Buffer(), nil
}

// Unsigned decodes the named segment from the cached buffer.
func (r *Register) Unsigned(name ID) (uint64, error) {
	seg, err := r.Segment(name)
	if err != nil {
		return 0, err
	}
	return seg.Decode(r.buf)
}

// Signed decodes the named segment from the cached buffer as two's complement.
func (r *Register) Signed(name ID) (int64, error) {
	seg, err := r.Segment(name)
	if err != nil {
		return 0, err
	}
	return seg.DecodeSigned(r.buf)
}
