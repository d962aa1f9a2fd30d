package shutdown

import (
	"context"
	"errors"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/honeycarbs/jobscout/pkg/logging"
)

func TestStop_ReverseOrderAndJoinedErrors(t *testing.T) {
	var order []string
	errDB := errors.New("db close failed")

	err := Stop(time.Second, logging.Nop(),
		Func(func(context.Context) error { order = append(order, "db"); return errDB }),
		nil,
		Func(func(ctx context.Context) error {
			_, ok := ctx.Deadline()
			assert.True(t, ok)
			order = append(order, "http")
			return nil
		}),
	)

	assert.ErrorIs(t, err, errDB)
	assert.Equal(t, []string{"http", "db"}, order)
}

func TestGraceful_StopsWhenContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})

	done := make(chan error, 1)
	go func() {
		done <- Graceful(ctx, []os.Signal{syscall.SIGUSR1}, time.Second, logging.Nop(),
			Func(func(context.Context) error { close(stopped); return nil }))
	}()

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Graceful did not return")
	}
	_, open := <-stopped
	assert.False(t, open)
}
