package rangefinder

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockI2CBus struct {
	mock.Mock
}

func (m *MockI2CBus) WriteToAddr(ctx context.Context, address byte, buffer []byte) error {
	args := m.Called(ctx, address, buffer)
	return args.Error(0)
}

func (m *MockI2CBus) ReadFromAddr(ctx context.Context, address byte, buffer []byte) error {
	args := m.Called(ctx, address, buffer)
	if data, ok := args.Get(0).([]byte); ok {
		copy(buffer, data)
	}
	return args.Error(1)
}

func (m *MockI2CBus) Release(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func TestAddressedBus_ReadRegister(t *testing.T) {
	bus := new(MockI2CBus)
	bus.On("WriteToAddr", mock.Anything, byte(0x62), []byte{0x8f}).Return(nil).Once()
	bus.On("ReadFromAddr", mock.Anything, byte(0x62), mock.Anything).Return([]byte{0x01, 0x2c}, nil).Once()

	buf := make([]byte, 2)
	err := NewAddressedBus(bus).ReadRegister(context.Background(), 0x62, 0x8f, buf)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x2c}, buf)
	bus.AssertExpectations(t)
}

func TestAddressedBus_ReadRegisterPointerFailure(t *testing.T) {
	bus := new(MockI2CBus)
	bus.On("WriteToAddr", mock.Anything, byte(0x62), []byte{0x01}).Return(ErrBusBusy).Once()

	err := NewAddressedBus(bus).ReadRegister(context.Background(), 0x62, 0x01, make([]byte, 1))
	assert.ErrorIs(t, err, ErrBusBusy)
	bus.AssertNotCalled(t, "ReadFromAddr", mock.Anything, mock.Anything, mock.Anything)
}

func TestAddressedBus_WriteRegister(t *testing.T) {
	bus := new(MockI2CBus)
	bus.On("WriteToAddr", mock.Anything, byte(0x62), []byte{0x11, 0xff}).Return(nil).Once()

	err := NewAddressedBus(bus).WriteRegister(context.Background(), 0x62, 0x11, []byte{0xff})
	require.NoError(t, err)
	bus.AssertExpectations(t)
}

func TestAddressedBus_WriteRegisterFailure(t *testing.T) {
	bus := new(MockI2CBus)
	cause := errors.New("nack")
	bus.On("WriteToAddr", mock.Anything, byte(0x62), []byte{0x00, 0x04}).Return(cause).Once()

	err := NewAddressedBus(bus).WriteRegister(context.Background(), 0x62, 0x00, []byte{0x04})
	assert.ErrorIs(t, err, cause)
}
