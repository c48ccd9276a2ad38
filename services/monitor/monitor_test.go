package monitor

import (
	"sync/atomic"
	"testing"
	"time"

	"carriercode-go/bus"
	"carriercode-go/types"
)

func TestPublishesRetainedStats(t *testing.T) {
	b := bus.NewBus(8)
	m := New(b.NewConnection("monitor"),
		WithInterval(5*time.Millisecond),
		WithSampler(func() (uint64, uint64) { return 50_000, 40_000 }))

	m.Start()
	defer m.Stop()

	// The loop samples once immediately; a late subscriber still sees
	// that sample via retention.
	sub := b.NewConnection("test").Subscribe(TopicStats)
	select {
	case msg := <-sub.Channel():
		st := msg.Payload.(types.MonitorStats)
		if st.FreeHeap != 50_000 || st.MinFree != 40_000 {
			t.Errorf("stats = %+v", st)
		}
	case <-time.After(time.Second):
		t.Fatal("no retained stats")
	}

	if got := m.Stats(); got.FreeHeap != 50_000 {
		t.Errorf("Stats() = %+v", got)
	}
}

func TestWarningBelowThreshold(t *testing.T) {
	b := bus.NewBus(8)
	conn := b.NewConnection("monitor")
	m := New(conn,
		WithInterval(time.Hour), // only the synchronous first sample
		WithThreshold(10_000),
		WithSampler(func() (uint64, uint64) { return 5_000, 5_000 }))

	var warned atomic.Uint64
	m.OnWarning(func(free uint64) { warned.Store(free) })

	sub := b.NewConnection("test").Subscribe(TopicWarning)
	m.Start()
	defer m.Stop()

	select {
	case msg := <-sub.Channel():
		if msg.Payload.(uint64) != 5_000 {
			t.Errorf("warning payload = %v", msg.Payload)
		}
	case <-time.After(time.Second):
		t.Fatal("no warning published")
	}
	if warned.Load() != 5_000 {
		t.Errorf("callback got %d, want 5000", warned.Load())
	}
}

func TestNoWarningAboveThreshold(t *testing.T) {
	b := bus.NewBus(8)
	m := New(b.NewConnection("monitor"),
		WithInterval(time.Hour),
		WithThreshold(10_000),
		WithSampler(func() (uint64, uint64) { return 20_000, 20_000 }))

	warned := false
	m.OnWarning(func(uint64) { warned = true })

	m.Start()
	m.Stop()

	if warned {
		t.Error("warning fired above threshold")
	}
}

func TestStartStopIdempotent(t *testing.T) {
	m := New(nil,
		WithInterval(time.Hour),
		WithSampler(func() (uint64, uint64) { return 1, 1 }))

	m.Start()
	m.Start()
	if !m.IsRunning() {
		t.Fatal("not running after start")
	}
	m.Stop()
	m.Stop()
	if m.IsRunning() {
		t.Fatal("still running after stop")
	}

	// Restartable.
	m.Start()
	if !m.IsRunning() {
		t.Fatal("not running after restart")
	}
	m.Stop()
}
