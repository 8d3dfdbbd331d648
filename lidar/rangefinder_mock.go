package lidar

import (
	"context"
)

// DistanceBehaviorFunc returns a distance in centimetres or an error.
type DistanceBehaviorFunc func(ctx context.Context) (int, error)

// VelocityBehaviorFunc returns a signed velocity or an error.
type VelocityBehaviorFunc func(ctx context.Context) (int, error)

// MockRangefinder is a hardware-free stand-in for LidarLite driven by behavior functions.
//
// Example usage:
//
//	sensor := NewMockRangefinder(
//		func(ctx context.Context) (int, error) { return 120, nil },
//		func(ctx context.Context) (int, error) { return -3, nil },
//	)
type MockRangefinder struct {
	distance DistanceBehaviorFunc
	velocity VelocityBehaviorFunc
}

func NewMockRangefinder(distance DistanceBehaviorFunc, velocity VelocityBehaviorFunc) *MockRangefinder {
	return &MockRangefinder{distance: distance, velocity: velocity}
}

func (m *MockRangefinder) Reset(ctx context.Context) error { return nil }

func (m *MockRangefinder) ArmContinuous(ctx context.Context) error { return nil }

func (m *MockRangefinder) ReadDistance(ctx context.Context) (int, error) {
	return m.distance(ctx)
}

func (m *MockRangefinder) ReadVelocity(ctx context.Context) (int, error) {
	return m.velocity(ctx)
}

// Status always reports an idle, healthy device.
func (m *MockRangefinder) Status(ctx context.Context) (Status, error) {
	return Status{Healthy: true}, nil
}
