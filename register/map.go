package register

import (
	"context"
	"fmt"

	"github.com/mklimuk/rangefinder"
)

// WriteFunc commits a register to the device. Map.Write and ReadyGate.Write
// both satisfy it.
type WriteFunc func(ctx context.Context, name ID) error

// Map holds the static register layout of one device.
type Map struct {
	base      byte
	bus       rangefinder.RegisterBus
	registers map[ID]*Register
	order     []ID
}

// NewMap builds a register map for the device at 7-bit address base.
func NewMap(bus rangefinder.RegisterBus, base byte, specs ...Spec) (*Map, error) {
	if base > 0x7f {
		return nil, fmt.Errorf("%w: device address %#x is not a 7-bit address", ErrInvalidArgument, base)
	}
	m := &Map{
		base:      base,
		bus:       bus,
		registers: make(map[ID]*Register, len(specs)),
	}
	for _, spec := range specs {
		if _, err := m.add(spec); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Map) add(spec Spec) (*Register, error) {
	if _, ok := m.registers[spec.Name]; ok {
		return nil, fmt.Errorf("%w: duplicate register %s", ErrInvalidArgument, spec.Name)
	}
	r, err := newRegister(spec, m.bus, m.base)
	if err != nil {
		return nil, err
	}
	m.registers[spec.Name] = r
	m.order = append(m.order, spec.Name)
	return r, nil
}

func (m *Map) Base() byte { return m.base }

// Registers lists register names in declaration order.
func (m *Map) Registers() []ID { return append([]ID(nil), m.order...) }

// Register looks up a register by name.
func (m *Map) Register(name ID) (*Register, error) {
	r, ok := m.registers[name]
	if !ok {
		return nil, fmt.Errorf("%w: register %s", ErrNotFound, name)
	}
	return r, nil
}

func (m *Map) Read(ctx context.Context, name ID) ([]byte, error) {
	r, err := m.Register(name)
	if err != nil {
		return nil, err
	}
	return r.Read(ctx)
}

func (m *Map) Write(ctx context.Context, name ID) error {
	r, err := m.Register(name)
	if err != nil {
		return err
	}
	return r.Write(ctx)
}

// ToUnsigned decodes a segment. With readFirst set the register is refreshed
// from the device, otherwise the last cached buffer is used.
func (m *Map) ToUnsigned(ctx context.Context, reg, seg ID, readFirst bool) (uint64, error) {
	r, err := m.fetch(ctx, reg, seg, readFirst)
	if err != nil {
		return 0, err
	}
	return r.Unsigned(seg)
}

// ToSigned is the two's complement variant of ToUnsigned.
func (m *Map) ToSigned(ctx context.Context, reg, seg ID, readFirst bool) (int64, error) {
	r, err := m.fetch(ctx, reg, seg, readFirst)
	if err != nil {
		return 0, err
	}
	return r.Signed(seg)
}

func (m *Map) fetch(ctx context.Context, reg, seg ID, readFirst bool) (*Register, error) {
	r, err := m.Register(reg)
	if err != nil {
		return nil, err
	}
	if _, err := r.Segment(seg); err != nil {
		return nil, err
	}
	if readFirst {
		if _, err := r.Read(ctx); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// SetBits stages bits into a segment. If after is not nil it is called with
// the register name once the buffer is updated.
func (m *Map) SetBits(ctx context.Context, reg, seg ID, bits []uint8, after WriteFunc) ([]byte, error) {
	r, err := m.Register(reg)
	if err != nil {
		return nil, err
	}
	buf, err := r.SetBits(seg, bits)
	if err != nil {
		return nil, err
	}
	return m.commit(ctx, reg, buf, after)
}

// SetBitsFromInt is SetBits taking an unsigned value.
func (m *Map) SetBitsFromInt(ctx context.Context, reg, seg ID, v uint64, after WriteFunc) ([]byte, error) {
	r, err := m.Register(reg)
	if err != nil {
		return nil, err
	}
	buf, err := r.Set(seg, v)
	if err != nil {
		return nil, err
	}
	return m.commit(ctx, reg, buf, after)
}

func (m *Map) commit(ctx context.Context, reg ID, buf []byte, after WriteFunc) ([]byte, error) {
	if after == nil {
		return buf, nil
	}
	if err := after(ctx, reg); err != nil {
		return nil, err
	}
	return buf, nil
}
