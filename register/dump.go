package register

import (
	"context"
	"encoding/hex"
	"fmt"
)

type SegmentValue struct {
	Name  ID     `yaml:"name" json:"name"`
	Bits  string `yaml:"bits" json:"bits"`
	Value uint64 `yaml:"value" json:"value"`
}

// Dump is a decoded view of one register.
type Dump struct {
	Register ID             `yaml:"register" json:"register"`
	Address  string         `yaml:"address" json:"address"`
	Mode     string         `yaml:"mode" json:"mode"`
	Raw      string         `yaml:"raw" json:"raw"`
	Segments []SegmentValue `yaml:"segments" json:"segments"`
}

// Snapshot reads every readable register and decodes all of its segments.
// Write-only registers are skipped.
func (m *Map) Snapshot(ctx context.Context) ([]Dump, error) {
	var res []Dump
	for _, name := range m.order {
		r := m.registers[name]
		if !r.mode.CanRead() {
			continue
		}
		buf, err := r.Read(ctx)
		if err != nil {
			return nil, err
		}
		d := Dump{
			Register: name,
			Address:  fmt.Sprintf("0x%02x", r.address),
			Mode:     r.mode.String(),
			Raw:      hex.EncodeToString(buf),
		}
		for _, segName := range r.order {
			seg := r.segments[segName]
			v, err := seg.Decode(buf)
			if err != nil {
				return nil, err
			}
			bits, err := seg.Bits(buf)
			if err != nil {
				return nil, err
			}
			d.Segments = append(d.Segments, SegmentValue{Name: segName, Value: v, Bits: formatBits(bits)})
		}
		res = append(res, d)
	}
	return res, nil
}

func formatBits(bits []uint8) string {
	b := make([]byte, len(bits))
	for i, v := range bits {
		b[i] = '0' + v
	}
	return string(b)
}
