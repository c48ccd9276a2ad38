// Package monitor samples free heap and uptime on a fixed interval and
// publishes the result on the bus. It never touches the hardware core;
// anything that wants to react to memory pressure listens on the bus or
// registers a warning callback.
package monitor

import (
	"runtime"
	"sync"
	"time"

	"carriercode-go/bus"
	"carriercode-go/types"
	"carriercode-go/x/timex"
)

const (
	DefaultInterval  = 10 * time.Second
	DefaultThreshold = 10_000 // bytes of free heap
)

// TopicStats carries retained types.MonitorStats snapshots.
var TopicStats = bus.T("monitor", "stats")

// TopicWarning carries a free-heap byte count when it drops below the
// threshold. Not retained: a warning is an event, not a state.
var TopicWarning = bus.T("monitor", "warning")

// Sampler returns current and minimum-ever free heap in bytes.
type Sampler func() (free, minFree uint64)

// Monitor runs the sampling loop.
type Monitor struct {
	interval  time.Duration
	threshold uint64
	sample    Sampler
	conn      *bus.Connection

	mu      sync.Mutex
	warn    func(free uint64)
	last    types.MonitorStats
	started time.Time
	stop    chan struct{}
	done    chan struct{}
	running bool
}

// Option configures a Monitor.
type Option func(*Monitor)

func WithInterval(d time.Duration) Option {
	return func(m *Monitor) { m.interval = d }
}

func WithThreshold(bytes uint64) Option {
	return func(m *Monitor) { m.threshold = bytes }
}

// WithSampler replaces the runtime sampler, for tests.
func WithSampler(s Sampler) Option {
	return func(m *Monitor) { m.sample = s }
}

func New(conn *bus.Connection, opts ...Option) *Monitor {
	m := &Monitor{
		interval:  DefaultInterval,
		threshold: DefaultThreshold,
		sample:    runtimeSampler(),
		conn:      conn,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// runtimeSampler reads the Go heap and tracks the minimum free it has seen.
func runtimeSampler() Sampler {
	var min uint64 = ^uint64(0)
	return func() (uint64, uint64) {
		var ms runtime.MemStats
		runtime.ReadMemStats(&ms)
		free := ms.HeapSys - ms.HeapAlloc
		if free < min {
			min = free
		}
		return free, min
	}
}

// OnWarning registers cb, invoked from the sampling goroutine whenever
// free heap drops below the threshold.
func (m *Monitor) OnWarning(cb func(free uint64)) {
	m.mu.Lock()
	m.warn = cb
	m.mu.Unlock()
}

// Start launches the sampling loop. Starting a running monitor is a no-op.
func (m *Monitor) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return
	}
	m.started = time.Now()
	m.stop = make(chan struct{})
	m.done = make(chan struct{})
	m.running = true
	go m.loop(m.stop, m.done)
	println("Info: monitor started")
}

// Stop halts the loop and waits for it to exit.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	stop, done := m.stop, m.done
	m.running = false
	m.mu.Unlock()

	close(stop)
	<-done
	println("Info: monitor stopped")
}

func (m *Monitor) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// Stats returns the most recent sample.
func (m *Monitor) Stats() types.MonitorStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last
}

func (m *Monitor) loop(stop, done chan struct{}) {
	defer close(done)

	t := time.NewTicker(m.interval)
	defer t.Stop()

	m.tick() // one sample up front so Stats is never empty
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			m.tick()
		}
	}
}

func (m *Monitor) tick() {
	free, min := m.sample()

	m.mu.Lock()
	stats := types.MonitorStats{
		FreeHeap: free,
		MinFree:  min,
		UptimeMs: timex.SinceMs(m.started),
	}
	m.last = stats
	warn := m.warn
	m.mu.Unlock()

	if m.conn != nil {
		m.conn.Publish(m.conn.NewMessage(TopicStats, stats, true))
	}
	if free < m.threshold {
		println("Warning: low free heap:", int64(free), "bytes")
		if m.conn != nil {
			m.conn.Publish(m.conn.NewMessage(TopicWarning, free, false))
		}
		if warn != nil {
			warn(free)
		}
	}
}
