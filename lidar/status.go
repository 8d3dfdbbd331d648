package lidar

import (
	"context"
	"fmt"

	"github.com/mklimuk/rangefinder/register"
)

// Status holds the flags of the STATUS register.
type Status struct {
	Busy              bool `yaml:"busy" json:"busy"`
	ReferenceOverflow bool `yaml:"reference_overflow" json:"reference_overflow"`
	SignalOverflow    bool `yaml:"signal_overflow" json:"signal_overflow"`
	InvalidSignal     bool `yaml:"invalid_signal" json:"invalid_signal"`
	SecondaryReturn   bool `yaml:"secondary_return" json:"secondary_return"`
	Healthy           bool `yaml:"healthy" json:"healthy"`
	ProcessError      bool `yaml:"process_error" json:"process_error"`
}

// Status reads the STATUS register once and decodes all of its flags.
func (d *LidarLite) Status(ctx context.Context) (Status, error) {
	var st Status
	if _, err := d.regs.Read(ctx, RegStatus); err != nil {
		return st, fmt.Errorf("lidar: could not read status: %w", err)
	}
	flags := []struct {
		seg register.ID
		dst *bool
	}{
		{SegBusyFlag, &st.Busy},
		{SegReferenceOverflowFlag, &st.ReferenceOverflow},
		{SegSignalOverflowFlag, &st.SignalOverflow},
		{SegInvalidSignalFlag, &st.InvalidSignal},
		{SegSecondaryRetFlag, &st.SecondaryReturn},
		{SegHealthFlag, &st.Healthy},
		{SegProcErrorFlag, &st.ProcessError},
	}
	for _, f := range flags {
		v, err := d.regs.ToUnsigned(ctx, RegStatus, f.seg, false)
		if err != nil {
			return Status{}, fmt.Errorf("lidar: could not decode %s: %w", f.seg, err)
		}
		*f.dst = v == 1
	}
	return st, nil
}
