package claim

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/acadportal/eventportal/internal/event_bus"
	"github.com/acadportal/eventportal/internal/utils"
	"github.com/acadportal/eventportal/pkg/portal"
	log "github.com/sirupsen/logrus"
)

var ErrEventNotFound = errors.New("event not found")

// Cache holds the coordinator's event list. Local patches are provisional: the next
// Refresh replaces the whole list with what the backend returns.
type Cache struct {
	mu      sync.RWMutex
	client  portal.Client
	clock   utils.Clock
	delay   time.Duration
	loaded  bool
	events  []portal.Programme
	pending func() bool
}

func NewCache(client portal.Client, clock utils.Clock, refetchDelay time.Duration) *Cache {
	return &Cache{client: client, clock: clock, delay: refetchDelay}
}

// Subscribe keeps the cache in step with submissions and deletions published on the bus.
func (c *Cache) Subscribe(bus *event_bus.EventBus) {
	event_bus.SubscribeTyped(bus, event_bus.ProgrammeSubmittedType, func(e event_bus.EventT[event_bus.ProgrammeSubmitted]) error {
		if err := c.Refresh(e.Context()); err != nil {
			log.Warnf("Failed to refresh events after programme %s was submitted: %v", e.Data.ProgrammeId, err)
		}
		return nil
	})
	event_bus.SubscribeTyped(bus, event_bus.ClaimSubmittedType, func(e event_bus.EventT[event_bus.ClaimSubmitted]) error {
		c.ScheduleRefresh(e.Context())
		return nil
	})
	event_bus.SubscribeTyped(bus, event_bus.ProgrammeDeletedType, func(e event_bus.EventT[event_bus.ProgrammeDeleted]) error {
		c.Remove(e.Data.ProgrammeId)
		return nil
	})
}

// Refresh replaces the cached list with the backend's.
func (c *Cache) Refresh(ctx context.Context) error {
	events, err := c.client.ListProgrammes(ctx)
	if err != nil {
		return fmt.Errorf("failed to list programmes: %w", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = events
	c.loaded = true
	return nil
}

// List returns a copy of the cached events, loading them on first use.
func (c *Cache) List(ctx context.Context) ([]portal.Programme, error) {
	c.mu.RLock()
	loaded := c.loaded
	c.mu.RUnlock()
	if !loaded {
		if err := c.Refresh(ctx); err != nil {
			return nil, err
		}
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]portal.Programme, len(c.events))
	copy(result, c.events)
	return result, nil
}

func (c *Cache) Get(ctx context.Context, id string) (portal.Programme, error) {
	events, err := c.List(ctx)
	if err != nil {
		return portal.Programme{}, err
	}
	for _, e := range events {
		if e.Id == id {
			return e, nil
		}
	}
	return portal.Programme{}, ErrEventNotFound
}

// Patch applies update to the cached event with the given id. It reports whether the event was cached.
func (c *Cache) Patch(id string, update func(*portal.Programme)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.events {
		if c.events[i].Id == id {
			update(&c.events[i])
			return true
		}
	}
	return false
}

func (c *Cache) Remove(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.events {
		if c.events[i].Id == id {
			c.events = append(c.events[:i], c.events[i+1:]...)
			return
		}
	}
}

// ScheduleRefresh refetches the list after the configured delay. A newer schedule replaces an
// older one that has not fired yet. Failures are only logged; the local patch stays until then.
func (c *Cache) ScheduleRefresh(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending != nil {
		c.pending()
	}
	c.pending = c.clock.AfterFunc(c.delay, func() {
		if err := c.Refresh(ctx); err != nil {
			log.Errorf("Delayed event refresh failed: %v", err)
		}
	})
}

// Clear drops every cached event, e.g. when the session ends.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending != nil {
		c.pending()
		c.pending = nil
	}
	c.events = nil
	c.loaded = false
}
