package container

import (
	"context"
	"log"
	"sync"
)

// CleanupFunc releases one resource acquired during container construction.
type CleanupFunc func() error

// ResourceCleaner collects cleanup functions registered during startup and
// runs them in reverse registration order on shutdown, so a resource is torn
// down before whatever it depends on.
type ResourceCleaner struct {
	mu       sync.Mutex
	cleanups []CleanupFunc
}

// NewResourceCleaner creates a new resource cleaner.
func NewResourceCleaner() *ResourceCleaner {
	return &ResourceCleaner{}
}

// Register adds a cleanup function, run last-in-first-out on Cleanup.
func (c *ResourceCleaner) Register(cleanup CleanupFunc) {
	if cleanup == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cleanups = append(c.cleanups, cleanup)
}

// RegisterWithName registers a cleanup function with a name, for logging.
func (c *ResourceCleaner) RegisterWithName(name string, cleanup CleanupFunc) {
	if cleanup == nil {
		return
	}
	c.Register(func() error {
		log.Printf("cleaning up resource: %s", name)
		if err := cleanup(); err != nil {
			log.Printf("error cleaning up resource %s: %v", name, err)
			return err
		}
		log.Printf("cleaned up resource: %s", name)
		return nil
	})
}

// Cleanup runs every registered cleanup function in reverse registration
// order, continuing past individual failures and collecting them.
func (c *ResourceCleaner) Cleanup(ctx context.Context) (errs []error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := len(c.cleanups) - 1; i >= 0; i-- {
		select {
		case <-ctx.Done():
			errs = append(errs, ctx.Err())
			return errs
		default:
			if err := c.cleanups[i](); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errs
}
