package runner_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/signalnine/solverbench/internal/runner"
)

func TestPool(t *testing.T) {
	var count atomic.Int32
	jobs := make([]runner.Job, 10)
	for i := range jobs {
		jobs[i] = func(context.Context) error {
			count.Add(1)
			return nil
		}
	}
	errs := runner.RunPool(context.Background(), 3, jobs)
	assert.Empty(t, errs)
	assert.Equal(t, int32(10), count.Load())
}

func TestPoolWithErrors(t *testing.T) {
	fail := errors.New("fail")
	jobs := []runner.Job{
		func(context.Context) error { return nil },
		func(context.Context) error { return fail },
		func(context.Context) error { return nil },
		func(context.Context) error { return fail },
	}
	errs := runner.RunPool(context.Background(), 2, jobs)
	assert.Len(t, errs, 2)
	for _, err := range errs {
		assert.ErrorIs(t, err, fail)
	}
}

func TestPoolBoundsConcurrency(t *testing.T) {
	var running, peak atomic.Int32
	jobs := make([]runner.Job, 12)
	for i := range jobs {
		jobs[i] = func(context.Context) error {
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			running.Add(-1)
			return nil
		}
	}
	runner.RunPool(context.Background(), 3, jobs)
	assert.LessOrEqual(t, peak.Load(), int32(3))
	assert.Positive(t, peak.Load())
}
