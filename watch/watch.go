// Copyright (c) 2026 Tinwheel
// Modelkit - terse record operations for the Bun ORM
// This source code is licensed under the MIT license found in the LICENSE file.

// Package watch delivers table-level change notifications for records
// written through modelkit. A Hub fans events out to per-table subscribers;
// publishing never blocks, so a slow subscriber drops events rather than
// stalling writers.
package watch

import (
	"context"
	"sync"
)

// Op identifies the kind of change an Event describes.
type Op string

const (
	OpInsert Op = "insert"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Event describes a committed change to one table. PK is nil for bulk
// deletes, where individual keys are not known.
type Event struct {
	Table string
	Op    Op
	PK    any
}

// subscriber buffer size; events beyond this are dropped for that subscriber.
const subscriberBuffer = 16

type subscriber struct {
	ch   chan Event
	done <-chan struct{}
}

// Hub manages per-table subscriptions and event fan-out.
type Hub struct {
	mu     sync.RWMutex
	subs   map[string][]*subscriber
	done   chan struct{}
	closed bool
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[string][]*subscriber), done: make(chan struct{})}
}

// Subscribe registers for changes to the named table. The channel closes
// when ctx is canceled or the hub shuts down.
func (h *Hub) Subscribe(ctx context.Context, table string) <-chan Event {
	sub := &subscriber{ch: make(chan Event, subscriberBuffer), done: ctx.Done()}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(sub.ch)
		return sub.ch
	}
	h.subs[table] = append(h.subs[table], sub)
	h.mu.Unlock()

	// The reaper must also watch hub shutdown: ctx.Done() is nil for
	// non-cancelable contexts and would block this goroutine forever.
	go func() {
		select {
		case <-ctx.Done():
			h.remove(table, sub)
		case <-h.done:
		}
	}()
	return sub.ch
}

// Publish delivers e to every subscriber of e.Table without blocking.
func (h *Hub) Publish(e Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return
	}
	for _, sub := range h.subs[e.Table] {
		select {
		case <-sub.done:
		case sub.ch <- e:
		default:
			// Subscriber buffer full; drop rather than stall the writer.
		}
	}
}

// Close shuts down the hub and closes all subscriber channels.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	close(h.done)
	for _, subs := range h.subs {
		for _, sub := range subs {
			close(sub.ch)
		}
	}
	h.subs = nil
}

func (h *Hub) remove(table string, target *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	subs := h.subs[table]
	for i, sub := range subs {
		if sub == target {
			h.subs[table] = append(subs[:i], subs[i+1:]...)
			close(sub.ch)
			break
		}
	}
	if len(h.subs[table]) == 0 {
		delete(h.subs, table)
	}
}
