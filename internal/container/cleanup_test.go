package container

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResourceCleanerRunsInReverseRegistrationOrder(t *testing.T) {
	c := NewResourceCleaner()
	var order []string
	c.Register(func() error { order = append(order, "first"); return nil })
	c.Register(func() error { order = append(order, "second"); return nil })
	c.Register(func() error { order = append(order, "third"); return nil })

	errs := c.Cleanup(context.Background())
	assert.Empty(t, errs)
	assert.Equal(t, []string{"third", "second", "first"}, order)
}

func TestResourceCleanerCollectsErrorsButContinues(t *testing.T) {
	c := NewResourceCleaner()
	var ran []string
	c.Register(func() error { ran = append(ran, "a"); return errors.New("a failed") })
	c.Register(func() error { ran = append(ran, "b"); return nil })

	errs := c.Cleanup(context.Background())
	assert.Len(t, errs, 1)
	assert.Equal(t, []string{"b", "a"}, ran, "cleanup keeps running past a failing entry")
}

func TestResourceCleanerIgnoresNilCleanup(t *testing.T) {
	c := NewResourceCleaner()
	c.Register(nil)
	c.RegisterWithName("noop", nil)
	errs := c.Cleanup(context.Background())
	assert.Empty(t, errs)
}

func TestResourceCleanerStopsOnCancelledContext(t *testing.T) {
	c := NewResourceCleaner()
	ran := false
	c.Register(func() error { ran = true; return nil })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	errs := c.Cleanup(ctx)
	assert.Len(t, errs, 1)
	assert.False(t, ran, "a cancelled context must stop cleanup before any function runs")
}

func TestResourceCleanerRegisterWithNameStillRunsCleanup(t *testing.T) {
	c := NewResourceCleaner()
	ran := false
	c.RegisterWithName("thing", func() error { ran = true; return nil })
	c.Cleanup(context.Background())
	assert.True(t, ran)
}
