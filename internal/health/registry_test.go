package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry(time.Second)
	r.Register("store", CheckerFunc(func(ctx context.Context) error { return nil }))
	r.Register("docker", CheckerFunc(func(ctx context.Context) error { return errors.New("daemon down") }))

	assert.Equal(t, []string{"docker", "store"}, r.List())

	results := r.CheckAll(context.Background())
	assert.NoError(t, results["store"])
	assert.EqualError(t, results["docker"], "daemon down")
	assert.False(t, Healthy(results))

	r.Unregister("docker")
	results = r.CheckAll(context.Background())
	assert.Len(t, results, 1)
	assert.True(t, Healthy(results))
}

func TestRegistry_Timeout(t *testing.T) {
	r := NewRegistry(20 * time.Millisecond)
	r.Register("slow", CheckerFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}))

	results := r.CheckAll(context.Background())
	assert.ErrorIs(t, results["slow"], context.DeadlineExceeded)
}
