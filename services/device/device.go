// Package device is the orchestrator: multi-step flows that span the
// hardware core and the telemetry monitor, exposed to the console and to
// the boot sequence. It owns no hardware state of its own beyond the
// sleep snapshot.
package device

import (
	"fmt"
	"sync"
	"time"

	"carriercode-go/bus"
	"carriercode-go/errcode"
	"carriercode-go/services/monitor"
	"carriercode-go/types"
	"carriercode-go/x/mathx"
)

// Core is the slice of the hardware controller the orchestrator drives.
type Core interface {
	Status() (types.HardwareStatus, error)
	FormatStatus() (string, error)
	SetFanSpeed(speed uint8) error
	StopFan() error
	SetStripColor(id types.StripID, col types.Color) error
	SetStripBrightness(id types.StripID, brightness uint8) error
	TurnOffStrip(id types.StripID) error
	SelfTestQuick() error
	SelfTestAll() error
}

// Telemetry is the monitor surface the orchestrator controls.
type Telemetry interface {
	Start()
	Stop()
	IsRunning() bool
	Stats() types.MonitorStats
}

const (
	quickTestDwell      = 2 * time.Second
	stressCycleInterval = 100 * time.Millisecond
)

// Interface version, bumped when the orchestrator surface changes.
const (
	versionMajor = 1
	versionMinor = 0
	versionPatch = 0
)

// InterfaceVersion returns the version packed as 0xMMmmpp.
func InterfaceVersion() uint32 {
	return versionMajor<<16 | versionMinor<<8 | versionPatch
}

// VersionString returns the dotted form of InterfaceVersion.
func VersionString() string {
	return fmt.Sprintf("%d.%d.%d", versionMajor, versionMinor, versionPatch)
}

// Status is the combined device view: interface version, the hardware
// snapshot and the latest telemetry sample, each section flagged
// available so a degraded device still reports what it can.
type Status struct {
	InterfaceVersion uint32

	Hardware   types.HardwareStatus
	HardwareOK bool

	Monitor   types.MonitorStats
	MonitorOK bool
}

// Orchestrator ties the core, the monitor and the bus together.
type Orchestrator struct {
	hw   Core
	mon  Telemetry
	conn *bus.Connection
	sub  *bus.Subscription

	mu       sync.Mutex
	sleeping bool
	snapshot types.HardwareStatus
	onMemory func(free uint64)

	sleep func(time.Duration)
}

// New builds an orchestrator. conn may be nil when no bus is wired; memory
// warning events then never fire.
func New(hw Core, mon Telemetry, conn *bus.Connection) *Orchestrator {
	o := &Orchestrator{hw: hw, mon: mon, conn: conn, sleep: time.Sleep}
	if conn != nil {
		o.sub = conn.Subscribe(monitor.TopicWarning)
		go o.pumpEvents(o.sub)
	}
	return o
}

// pumpEvents forwards bus warnings to the registered callback.
func (o *Orchestrator) pumpEvents(sub *bus.Subscription) {
	for msg := range sub.Channel() {
		free, ok := msg.Payload.(uint64)
		if !ok {
			continue
		}
		o.mu.Lock()
		cb := o.onMemory
		o.mu.Unlock()
		if cb != nil {
			cb(free)
		}
	}
}

// OnMemoryWarning registers cb for low-heap events from the monitor.
func (o *Orchestrator) OnMemoryWarning(cb func(free uint64)) {
	o.mu.Lock()
	o.onMemory = cb
	o.mu.Unlock()
}

// Close detaches from the bus.
func (o *Orchestrator) Close() {
	if o.sub != nil {
		o.sub.Unsubscribe()
		o.sub = nil
	}
}

// QuickSetup drives fan speed and both strip colors in one call, in that
// order, aborting on the first error without rolling back.
func (o *Orchestrator) QuickSetup(fan uint8, board, touch types.Color) error {
	if err := o.hw.SetFanSpeed(fan); err != nil {
		return err
	}
	if err := o.hw.SetStripColor(types.StripBoard, board); err != nil {
		return err
	}
	return o.hw.SetStripColor(types.StripTouch, touch)
}

// ShutdownAll quiets every output. Each step is attempted regardless of
// earlier failures; errors are logged, never propagated, because shutdown
// must always run to completion.
func (o *Orchestrator) ShutdownAll() {
	if err := o.hw.StopFan(); err != nil {
		println("Error: shutdown: fan:", err.Error())
	}
	if err := o.hw.TurnOffStrip(types.StripBoard); err != nil {
		println("Error: shutdown: board strip:", err.Error())
	}
	if err := o.hw.TurnOffStrip(types.StripTouch); err != nil {
		println("Error: shutdown: touch strip:", err.Error())
	}
}

// ResetToDefault is QuickSetup with everything off.
func (o *Orchestrator) ResetToDefault() error {
	return o.QuickSetup(0, types.ColorOff, types.ColorOff)
}

// EnterSleepMode snapshots the visible state, quiets the outputs and stops
// telemetry. Entering sleep twice is a no-op.
func (o *Orchestrator) EnterSleepMode() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.sleeping {
		println("Warning: already sleeping")
		return nil
	}
	st, err := o.hw.Status()
	if err != nil {
		return err
	}
	o.snapshot = st
	o.ShutdownAll()
	if o.mon != nil {
		o.mon.Stop()
	}
	o.sleeping = true
	println("Info: entered sleep mode")
	return nil
}

// WakeUp restarts telemetry and restores the exact stored integers from
// the sleep snapshot, so the visible state round-trips through a
// sleep/wake cycle.
func (o *Orchestrator) WakeUp() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.sleeping {
		println("Warning: wake while not sleeping")
		return nil
	}
	o.sleeping = false
	if o.mon != nil {
		o.mon.Start()
	}

	st := o.snapshot
	if err := o.hw.SetFanSpeed(st.FanSpeed); err != nil {
		return err
	}
	if err := o.hw.SetStripColor(types.StripBoard, st.BoardLEDColor); err != nil {
		return err
	}
	if err := o.hw.SetStripBrightness(types.StripBoard, st.BoardLEDBrightness); err != nil {
		return err
	}
	if err := o.hw.SetStripColor(types.StripTouch, st.TouchLEDColor); err != nil {
		return err
	}
	if err := o.hw.SetStripBrightness(types.StripTouch, st.TouchLEDBrightness); err != nil {
		return err
	}
	println("Info: woke from sleep mode")
	return nil
}

// IsSleeping reports whether the device is in sleep mode.
func (o *Orchestrator) IsSleeping() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.sleeping
}

// FullStatus assembles the combined device view. A failing hardware read
// or a stopped monitor degrades its section rather than failing the call.
func (o *Orchestrator) FullStatus() Status {
	st := Status{InterfaceVersion: InterfaceVersion()}
	hw, err := o.hw.Status()
	if err == nil {
		st.Hardware = hw
		st.HardwareOK = true
	} else {
		println("Warning: full status: hardware unavailable:", err.Error())
	}
	if o.mon != nil && o.mon.IsRunning() {
		st.Monitor = o.mon.Stats()
		st.MonitorOK = true
	}
	return st
}

// FormatFullStatus renders the combined view for the console.
func (o *Orchestrator) FormatFullStatus() string {
	st := o.FullStatus()
	s := fmt.Sprintf("Device Status (interface %s)\n", VersionString())
	if st.HardwareOK {
		hw, err := o.hw.FormatStatus()
		if err == nil {
			s += hw
		}
	} else {
		s += "Hardware: unavailable\n"
	}
	if st.MonitorOK {
		s += fmt.Sprintf(
			"System:\n"+
				"  Free heap:       %d bytes\n"+
				"  Min free heap:   %d bytes\n"+
				"  Uptime:          %d ms\n",
			st.Monitor.FreeHeap, st.Monitor.MinFree, st.Monitor.UptimeMs)
	} else {
		s += "System: monitor not running\n"
	}
	return s
}

// RunQuickTest lights everything briefly and puts it back: fan at half,
// both strips green, a dwell, then back to defaults.
func (o *Orchestrator) RunQuickTest() error {
	println("Info: quick test start")
	if err := o.QuickSetup(50, types.ColorGreen, types.ColorGreen); err != nil {
		return err
	}
	o.sleep(quickTestDwell)
	return o.ResetToDefault()
}

// RunStressTest cycles QuickSetup with a rolling fan speed and color
// pattern, one cycle per interval for the requested duration, then puts
// the board back to defaults. The first failing cycle aborts.
func (o *Orchestrator) RunStressTest(d time.Duration) error {
	if d <= 0 {
		return errcode.InvalidArg
	}
	cycles := mathx.CeilDiv(uint64(d), uint64(stressCycleInterval))
	println("Info: stress test start,", d.Milliseconds(), "ms")

	for n := uint64(1); n <= cycles; n++ {
		fan := uint8(n * 25 % 101)
		col := types.Color{
			R: uint8(n * 50 % 256),
			G: uint8(n * 75 % 256),
			B: uint8(n * 100 % 256),
		}
		if err := o.QuickSetup(fan, col, col); err != nil {
			println("Error: stress test failed at cycle", int64(n))
			return err
		}
		o.sleep(stressCycleInterval)
	}

	if err := o.ResetToDefault(); err != nil {
		return err
	}
	println("Info: stress test completed:", int64(cycles), "cycles")
	return nil
}

// RunFullTest runs every hardware exerciser and checks telemetry is alive.
func (o *Orchestrator) RunFullTest() error {
	println("Info: full test start")
	if err := o.hw.SelfTestAll(); err != nil {
		return err
	}
	if o.mon != nil {
		if !o.mon.IsRunning() {
			println("Error: full test: monitor not running")
			return errcode.Error
		}
		st := o.mon.Stats()
		println("Info: full test: free heap", int64(st.FreeHeap), "uptime ms", st.UptimeMs)
	}
	return nil
}
