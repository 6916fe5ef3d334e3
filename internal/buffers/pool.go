// Package buffers allocates and recycles the pixel buffers handed to the
// compositor: memfd shared memory, dma-heap dmabufs and imported decoder
// buffers.
package buffers

import "fmt"

// Slot is a compositor buffer that can be torn down.
type Slot interface {
	comparable
	Destroy()
}

type entry[T Slot] struct {
	slot T
	busy bool
}

// Pool recycles at most capacity slots. A slot is busy from Acquire until the
// compositor releases it.
type Pool[T Slot] struct {
	capacity int
	create   func() (T, error)
	entries  []*entry[T]
}

func NewPool[T Slot](capacity int, create func() (T, error)) *Pool[T] {
	return &Pool[T]{capacity: capacity, create: create}
}

// Acquire returns a free slot, creating one while below capacity. ok is false
// when every slot is held by the compositor; the caller should retry on the
// next redraw opportunity.
func (p *Pool[T]) Acquire() (slot T, ok bool, err error) {
	for _, e := range p.entries {
		if !e.busy {
			e.busy = true
			return e.slot, true, nil
		}
	}
	if len(p.entries) >= p.capacity {
		return slot, false, nil
	}
	created, err := p.create()
	if err != nil {
		return slot, false, fmt.Errorf("creating pool buffer %d/%d: %w", len(p.entries)+1, p.capacity, err)
	}
	p.entries = append(p.entries, &entry[T]{slot: created, busy: true})
	return created, true, nil
}

// Release marks slot free again. It reports whether slot belongs to p.
func (p *Pool[T]) Release(slot T) bool {
	for _, e := range p.entries {
		if e.slot == slot {
			e.busy = false
			return true
		}
	}
	return false
}

// Busy counts slots currently held.
func (p *Pool[T]) Busy() int {
	n := 0
	for _, e := range p.entries {
		if e.busy {
			n++
		}
	}
	return n
}

func (p *Pool[T]) Len() int      { return len(p.entries) }
func (p *Pool[T]) Capacity() int { return p.capacity }

// Clear destroys every slot.
func (p *Pool[T]) Clear() {
	for _, e := range p.entries {
		e.slot.Destroy()
	}
	p.entries = nil
}
