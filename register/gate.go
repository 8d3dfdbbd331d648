package register

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

const (
	DefaultMaxCount   = 999
	DefaultCountDelay = 10 * time.Millisecond
)

type GateOpt func(*ReadyGate)

// WithMaxCount sets how many times the busy flag is polled before giving up.
func WithMaxCount(n int) GateOpt {
	return func(g *ReadyGate) {
		g.maxCount = n
	}
}

// WithCountDelay sets the pause between two busy polls.
func WithCountDelay(d time.Duration) GateOpt {
	return func(g *ReadyGate) {
		g.countDelay = d
	}
}

// ReadyGate writes registers only once the device reports idle. Before every
// write it polls the busy segment of the status register, backing off between
// polls, and fails with a *TimeoutError when the budget runs out.
type ReadyGate struct {
	regs       *Map
	status     ID
	busy       ID
	maxCount   int
	countDelay time.Duration
	sleep      func(ctx context.Context, d time.Duration) error
}

func NewReadyGate(regs *Map, status, busy ID, opts ...GateOpt) *ReadyGate {
	g := &ReadyGate{
		regs:       regs,
		status:     status,
		busy:       busy,
		maxCount:   DefaultMaxCount,
		countDelay: DefaultCountDelay,
		sleep:      sleepContext,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *ReadyGate) MaxCount() int             { return g.maxCount }
func (g *ReadyGate) CountDelay() time.Duration { return g.countDelay }

// Write commits the named register once the busy flag reads 0.
func (g *ReadyGate) Write(ctx context.Context, name ID) error {
	if g.maxCount < 1 {
		return fmt.Errorf("%w: max count must be >= 1, got %d", ErrInvalidArgument, g.maxCount)
	}
	if _, err := g.regs.Register(name); err != nil {
		return err
	}
	for count := 0; count < g.maxCount; count++ {
		busy, err := g.regs.ToUnsigned(ctx, g.status, g.busy, true)
		if err != nil {
			return fmt.Errorf("could not poll %s.%s: %w", g.status, g.busy, err)
		}
		if busy == 0 {
			return g.regs.Write(ctx, name)
		}
		slog.Debug("device busy", "register", name, "attempt", count+1, "max", g.maxCount)
		if err := g.sleep(ctx, g.countDelay); err != nil {
			return err
		}
	}
	return &TimeoutError{Register: name, MaxCount: g.maxCount, CountDelay: g.countDelay}
}

// SetBitWhenReady stages bits into a segment and commits the register through Write.
func (g *ReadyGate) SetBitWhenReady(ctx context.Context, reg, seg ID, bits []uint8) ([]byte, error) {
	return g.regs.SetBits(ctx, reg, seg, bits, g.Write)
}

// SetBitWhenReadyFromInt is SetBitWhenReady taking an unsigned value.
func (g *ReadyGate) SetBitWhenReadyFromInt(ctx context.Context, reg, seg ID, v uint64) ([]byte, error) {
	return g.regs.SetBitsFromInt(ctx, reg, seg, v, g.Write)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
