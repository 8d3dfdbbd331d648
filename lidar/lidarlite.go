package lidar

import (
	"context"
	"fmt"
	"time"

	"github.com/mklimuk/rangefinder"
	"github.com/mklimuk/rangefinder/register"
)

// DefaultAddress is the factory 7-bit I2C address of LIDAR-Lite v3 devices.
const DefaultAddress = 0x62

// Register names
const (
	RegAcqCommand     register.ID = "ACQ_COMMAND"
	RegStatus         register.ID = "STATUS"
	RegVelocity       register.ID = "VELOCITY"
	RegPeakCorr       register.ID = "PEAK_CORR"
	RegOuterLoopCount register.ID = "OUTER_LOOP_COUNT"
	RegDistance       register.ID = "DISTANCE"
)

// Segment names
const (
	SegAcqCommand            register.ID = "ACQ_COMMAND"
	SegBusyFlag              register.ID = "BUSY_FLAG"
	SegReferenceOverflowFlag register.ID = "REFERENCE_OVERFLOW_FLAG"
	SegSignalOverflowFlag    register.ID = "SIGNAL_OVERFLOW_FLAG"
	SegInvalidSignalFlag     register.ID = "INVALID_SIGNAL_FLAG"
	SegSecondaryRetFlag      register.ID = "SECONDARY_RET_FLAG"
	SegHealthFlag            register.ID = "HEALTH_FLAG"
	SegProcErrorFlag         register.ID = "PROC_ERROR_FLAG"
	SegVelocity              register.ID = "VELOCITY"
	SegPeakCorr              register.ID = "PEAK_CORR"
	SegOuterLoopCount        register.ID = "OUTER_LOOP_COUNT"
	SegDistance              register.ID = "DISTANCE"
)

const (
	cmdReset   = 0x00
	cmdAcquire = 0x04 // take distance measurement with receiver bias correction

	loopCountContinuous = 0xff
)

// Layout is the register table of the LIDAR-Lite v3. DISTANCE is read through
// 0x8f, which sets the auto-increment bit so both bytes come in one transfer.
var Layout = []register.Spec{
	{Name: RegAcqCommand, Address: 0x00, Mode: register.ModeWrite, Segments: []register.SegmentSpec{
		{Name: SegAcqCommand, Start: 0, End: 7},
	}},
	{Name: RegStatus, Address: 0x01, Mode: register.ModeRead, Segments: []register.SegmentSpec{
		{Name: SegProcErrorFlag, Start: 6, End: 6},
		{Name: SegHealthFlag, Start: 5, End: 5},
		{Name: SegSecondaryRetFlag, Start: 4, End: 4},
		{Name: SegInvalidSignalFlag, Start: 3, End: 3},
		{Name: SegSignalOverflowFlag, Start: 2, End: 2},
		{Name: SegReferenceOverflowFlag, Start: 1, End: 1},
		{Name: SegBusyFlag, Start: 0, End: 0},
	}},
	{Name: RegPeakCorr, Address: 0x0c, Mode: register.ModeRead, Segments: []register.SegmentSpec{
		{Name: SegPeakCorr, Start: 0, End: 7},
	}},
	{Name: RegVelocity, Address: 0x09, Mode: register.ModeRead, Segments: []register.SegmentSpec{
		{Name: SegVelocity, Start: 0, End: 7},
	}},
	{Name: RegOuterLoopCount, Address: 0x11, Mode: register.ModeReadWrite, Segments: []register.SegmentSpec{
		{Name: SegOuterLoopCount, Start: 0, End: 7},
	}},
	{Name: RegDistance, Address: 0x8f, Mode: register.ModeRead, Segments: []register.SegmentSpec{
		{Name: SegDistance, Start: 0, End: 15},
	}},
}

type LidarLiteConfig struct {
	Address    byte
	MaxCount   int
	CountDelay time.Duration
}

type LidarLiteOption func(*LidarLiteConfig)

func WithAddress(address byte) LidarLiteOption {
	return func(c *LidarLiteConfig) {
		c.Address = address
	}
}

// WithMaxCount sets the busy-poll budget of every gated write.
func WithMaxCount(n int) LidarLiteOption {
	return func(c *LidarLiteConfig) {
		c.MaxCount = n
	}
}

// WithCountDelay sets the pause between busy polls.
func WithCountDelay(d time.Duration) LidarLiteOption {
	return func(c *LidarLiteConfig) {
		c.CountDelay = d
	}
}

// LidarLite represents a Garmin LIDAR-Lite v3 optical rangefinder.
// Typical usage:
//
//	d, err := NewLidarLite(bus)
//	err = d.Reset(ctx)
//	err = d.ArmContinuous(ctx)
//	cm, err := d.ReadDistance(ctx)
//
// A LidarLite must not be used from more than one goroutine at a time.
type LidarLite struct {
	regs *register.Map
	gate *register.ReadyGate
}

func NewLidarLite(bus rangefinder.RegisterBus, opts ...LidarLiteOption) (*LidarLite, error) {
	config := &LidarLiteConfig{
		Address:    DefaultAddress,
		MaxCount:   register.DefaultMaxCount,
		CountDelay: register.DefaultCountDelay,
	}
	for _, opt := range opts {
		opt(config)
	}
	regs, err := register.NewMap(bus, config.Address, Layout...)
	if err != nil {
		return nil, fmt.Errorf("lidar: could not build register map: %w", err)
	}
	gate := register.NewReadyGate(regs, RegStatus, SegBusyFlag,
		register.WithMaxCount(config.MaxCount),
		register.WithCountDelay(config.CountDelay),
	)
	return &LidarLite{regs: regs, gate: gate}, nil
}

// Registers exposes the underlying register map.
func (d *LidarLite) Registers() *register.Map {
	return d.regs
}

// Reset clears the acquisition command register.
func (d *LidarLite) Reset(ctx context.Context) error {
	if _, err := d.gate.SetBitWhenReadyFromInt(ctx, RegAcqCommand, SegAcqCommand, cmdReset); err != nil {
		return fmt.Errorf("lidar: reset failed: %w", err)
	}
	return nil
}

// Setup triggers a single acquisition.
func (d *LidarLite) Setup(ctx context.Context) error {
	if _, err := d.gate.SetBitWhenReadyFromInt(ctx, RegAcqCommand, SegAcqCommand, cmdAcquire); err != nil {
		return fmt.Errorf("lidar: acquire command failed: %w", err)
	}
	return nil
}

// ArmContinuous starts free-running measurements: an acquire command followed
// by the maximum outer loop count.
func (d *LidarLite) ArmContinuous(ctx context.Context) error {
	if err := d.Setup(ctx); err != nil {
		return err
	}
	_, err := d.gate.SetBitWhenReadyFromInt(ctx, RegOuterLoopCount, SegOuterLoopCount, loopCountContinuous)
	if err != nil {
		return fmt.Errorf("lidar: could not set outer loop count: %w", err)
	}
	return nil
}

// ReadDistance triggers an acquisition and returns the measured distance in centimetres.
func (d *LidarLite) ReadDistance(ctx context.Context) (int, error) {
	if err := d.Setup(ctx); err != nil {
		return 0, err
	}
	v, err := d.regs.ToUnsigned(ctx, RegDistance, SegDistance, true)
	if err != nil {
		return 0, fmt.Errorf("lidar: could not read distance: %w", err)
	}
	return int(v), nil
}

// ReadVelocity returns the signed difference between the last two distance
// measurements.
func (d *LidarLite) ReadVelocity(ctx context.Context) (int, error) {
	v, err := d.regs.ToSigned(ctx, RegVelocity, SegVelocity, true)
	if err != nil {
		return 0, fmt.Errorf("lidar: could not read velocity: %w", err)
	}
	return int(v), nil
}

// PeakCorrelation returns the correlation peak value of the last measurement.
func (d *LidarLite) PeakCorrelation(ctx context.Context) (int, error) {
	v, err := d.regs.ToUnsigned(ctx, RegPeakCorr, SegPeakCorr, true)
	if err != nil {
		return 0, fmt.Errorf("lidar: could not read peak correlation: %w", err)
	}
	return int(v), nil
}

// Dump reads and decodes every readable register.
func (d *LidarLite) Dump(ctx context.Context) ([]register.Dump, error) {
	dumps, err := d.regs.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("lidar: could not dump registers: %w", err)
	}
	return dumps, nil
}
