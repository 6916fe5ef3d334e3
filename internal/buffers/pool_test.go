package buffers

import (
	"errors"
	"testing"
)

type fakeSlot struct {
	id        int
	destroyed *int
}

func (s *fakeSlot) Destroy() { *s.destroyed++ }

func newFakePool(capacity int) (*Pool[*fakeSlot], *int, *int) {
	created, destroyed := 0, 0
	p := NewPool(capacity, func() (*fakeSlot, error) {
		created++
		return &fakeSlot{id: created, destroyed: &destroyed}, nil
	})
	return p, &created, &destroyed
}

func TestPoolDefersWhenExhausted(t *testing.T) {
	p, created, _ := newFakePool(PoolSize)

	var held []*fakeSlot
	for i := 0; i < PoolSize+3; i++ {
		s, ok, err := p.Acquire()
		if err != nil {
			t.Fatalf("acquire %d: %v", i, err)
		}
		if ok {
			held = append(held, s)
		}
		if p.Busy() > p.Capacity() {
			t.Fatalf("busy %d exceeds capacity %d", p.Busy(), p.Capacity())
		}
	}
	if len(held) != PoolSize {
		t.Fatalf("acquired %d slots, want %d", len(held), PoolSize)
	}
	if *created != PoolSize {
		t.Fatalf("created %d slots, want %d", *created, PoolSize)
	}

	if !p.Release(held[0]) {
		t.Fatal("release of pooled slot reported foreign")
	}
	s, ok, err := p.Acquire()
	if err != nil || !ok {
		t.Fatalf("acquire after release: ok=%v err=%v", ok, err)
	}
	if s != held[0] {
		t.Errorf("got slot %d, want recycled slot %d", s.id, held[0].id)
	}
	if *created != PoolSize {
		t.Errorf("release caused a new allocation")
	}
}

func TestPoolReleaseForeign(t *testing.T) {
	p, _, _ := newFakePool(1)
	other := 0
	if p.Release(&fakeSlot{destroyed: &other}) {
		t.Error("foreign slot accepted")
	}
}

func TestPoolCreateError(t *testing.T) {
	boom := errors.New("boom")
	p := NewPool(2, func() (*fakeSlot, error) { return nil, boom })
	_, ok, err := p.Acquire()
	if ok || !errors.Is(err, boom) {
		t.Fatalf("ok=%v err=%v, want wrapped boom", ok, err)
	}
	if p.Len() != 0 {
		t.Errorf("failed creation left %d entries", p.Len())
	}
}

func TestPoolClearDestroysAll(t *testing.T) {
	p, _, destroyed := newFakePool(3)
	for i := 0; i < 3; i++ {
		if _, _, err := p.Acquire(); err != nil {
			t.Fatal(err)
		}
	}
	p.Clear()
	if *destroyed != 3 {
		t.Errorf("destroyed %d, want 3", *destroyed)
	}
	if p.Len() != 0 || p.Busy() != 0 {
		t.Errorf("pool not empty after Clear: len=%d busy=%d", p.Len(), p.Busy())
	}
}

func TestInFlightLimit(t *testing.T) {
	q := NewInFlight(MaxInFlight)
	bufs := make([]*ImportedBuffer, MaxInFlight+1)
	for i := range bufs {
		bufs[i] = &ImportedBuffer{}
	}
	for i := 0; i < MaxInFlight; i++ {
		if !q.Add(bufs[i]) {
			t.Fatalf("add %d rejected", i)
		}
	}
	if !q.Full() {
		t.Fatal("queue not full at limit")
	}
	if q.Add(bufs[MaxInFlight]) {
		t.Fatal("add beyond limit accepted")
	}
	if !q.Remove(bufs[1]) {
		t.Fatal("remove of tracked buffer failed")
	}
	if q.Full() || q.Len() != MaxInFlight-1 {
		t.Fatalf("len=%d after remove", q.Len())
	}
	if q.Remove(bufs[1]) {
		t.Error("second remove succeeded")
	}
}
