package cmd

import (
	"context"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignalContext(t *testing.T) {
	testCases := []struct {
		name string
		sig  syscall.Signal
	}{
		{name: "terminate", sig: syscall.SIGTERM},
		{name: "interrupt", sig: syscall.SIGINT},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx, stop := signalContext()
			defer stop()

			require.NoError(t, syscall.Kill(syscall.Getpid(), tc.sig))
			select {
			case <-ctx.Done():
				assert.ErrorIs(t, ctx.Err(), context.Canceled)
			case <-time.After(5 * time.Second):
				t.Fatal("context not cancelled")
			}
		})
	}
}

func TestSignalContext_Stop(t *testing.T) {
	ctx, stop := signalContext()
	assert.NoError(t, ctx.Err())
	stop()
	assert.Error(t, ctx.Err())
}
