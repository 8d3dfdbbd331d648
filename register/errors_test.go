package register

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		err      error
		expected Kind
	}{
		{nil, KindOK},
		{fmt.Errorf("%w: bad", ErrInvalidArgument), KindInvalidArgument},
		{fmt.Errorf("wrap: %w", fmt.Errorf("%w: reg", ErrNotFound)), KindNotFound},
		{ErrPermissionDenied, KindPermissionDenied},
		{&TimeoutError{MaxCount: 1}, KindTimeout},
		{fmt.Errorf("poll: %w", context.Canceled), KindCanceled},
		{errors.New("i2c: nack"), KindTransport},
	}
	for _, tt := range tests {
		t.Run(string(tt.expected), func(t *testing.T) {
			assert.Equal(t, tt.expected, KindOf(tt.err))
		})
	}
}
