package register

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockRegisterBus is a testify mock of rangefinder.RegisterBus.
type MockRegisterBus struct {
	mock.Mock
}

func (m *MockRegisterBus) ReadRegister(ctx context.Context, device, register byte, buffer []byte) error {
	args := m.Called(ctx, device, register, buffer)
	if data, ok := args.Get(0).([]byte); ok {
		copy(buffer, data)
	}
	return args.Error(1)
}

func (m *MockRegisterBus) WriteRegister(ctx context.Context, device, register byte, data []byte) error {
	args := m.Called(ctx, device, register, data)
	return args.Error(0)
}

const (
	testDevice byte = 0x62

	regCommand ID = "COMMAND"
	regStatus  ID = "STATUS"
	regWide    ID = "WIDE"
	regLoop    ID = "LOOP"

	segCommand ID = "COMMAND"
	segBusy    ID = "BUSY"
	segError   ID = "ERROR"
	segLow     ID = "LOW"
	segMiddle  ID = "MIDDLE"
	segAll     ID = "ALL"
	segLoop    ID = "LOOP"
)

var testLayout = []Spec{
	{Name: regCommand, Address: 0x00, Mode: ModeWrite, Segments: []SegmentSpec{{Name: segCommand, Start: 0, End: 7}}},
	{Name: regStatus, Address: 0x01, Mode: ModeRead, Segments: []SegmentSpec{
		{Name: segBusy, Start: 0, End: 0},
		{Name: segError, Start: 6, End: 6},
	}},
	{Name: regWide, Address: 0x8f, Mode: ModeRead, Segments: []SegmentSpec{
		{Name: segAll, Start: 0, End: 15},
		{Name: segLow, Start: 0, End: 3},
		{Name: segMiddle, Start: 6, End: 10},
	}},
	{Name: regLoop, Address: 0x11, Mode: ModeReadWrite, Segments: []SegmentSpec{{Name: segLoop, Start: 0, End: 7}}},
}

func newTestMap(bus *MockRegisterBus) *Map {
	m, err := NewMap(bus, testDevice, testLayout...)
	if err != nil {
		panic(err)
	}
	return m
}
