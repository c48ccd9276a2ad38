// Package hwctrl is the hardware core: the only code that touches pins,
// PWM and LED strips. All board state lives in one status record guarded
// by a mutex; everything above this package (console, settings, device)
// goes through the Controller API and only ever sees copies of it.
package hwctrl

import (
	"fmt"
	"sync"
	"time"

	"carriercode-go/errcode"
	"carriercode-go/types"
)

// Controller owns the carrier board peripherals. All exported methods are
// safe for concurrent use; pulse sequences hold the lock for their full
// duration so they cannot interleave.
type Controller struct {
	mu     sync.Mutex
	cfg    Config
	be     Backend
	status types.HardwareStatus

	// sleep is swapped out in tests so pulse protocols run instantly.
	sleep func(time.Duration)
}

// New wires a controller to a backend. Init must be called before any
// hardware operation.
func New(cfg Config, be Backend) *Controller {
	return &Controller{cfg: cfg, be: be, sleep: time.Sleep}
}

// Init configures every peripheral and establishes the boot-time status:
// fan stopped, strips dark at default brightness, mux routed to the
// controller, main module powered (its control line is active-low and the
// board pulls it on), aux module unknown. Calling Init twice is a no-op.
func (c *Controller) Init() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status.Initialized {
		println("Warning: hwctrl already initialized")
		return nil
	}

	c.status = types.HardwareStatus{
		BoardLEDBrightness: c.cfg.DefaultBrightness,
		TouchLEDBrightness: c.cfg.DefaultBrightness,
	}

	if err := c.be.Fan.Configure(c.cfg.FanFreqHz, c.cfg.FanTop); err != nil {
		return errcode.Driver("fan.configure", err)
	}
	if err := c.commitFan(0); err != nil {
		return err
	}

	if err := c.renderSolid(c.be.Board, types.ColorOff, 0); err != nil {
		return err
	}
	if err := c.renderSolid(c.be.Touch, types.ColorOff, 0); err != nil {
		return err
	}

	if err := c.setMuxLocked(types.MuxController); err != nil {
		return err
	}

	// Main module control lines: power line low keeps the module running,
	// reset and recovery strap idle low.
	p := c.cfg.Pins
	for _, init := range []struct {
		pin   int
		level Level
		op    string
	}{
		{p.MainPower, Low, "main.power"},
		{p.MainReset, Low, "main.reset"},
		{p.MainRecovery, Low, "main.recovery"},
		{p.AuxPowerBtn, Low, "aux.power_btn"},
		{p.AuxReset, Low, "aux.reset"},
	} {
		if err := c.be.Pins.SetOutput(init.pin, init.level); err != nil {
			return errcode.Driver(init.op, err)
		}
	}
	c.status.MainPowerState = types.PowerOn
	c.status.AuxPowerState = types.PowerUnknown

	c.status.Initialized = true
	println("Info: hwctrl initialized")
	return nil
}

// Deinit returns the board to a safe idle: fan stopped, strips dark.
// Power and mux lines are left as they are so downstream modules keep
// running. Calling Deinit on an uninitialized controller is a no-op.
func (c *Controller) Deinit() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.status.Initialized {
		println("Warning: hwctrl deinit while not initialized")
		return nil
	}

	if err := c.commitFan(0); err != nil {
		return err
	}
	c.status.FanSpeed = 0
	if err := c.renderSolid(c.be.Board, types.ColorOff, 0); err != nil {
		return err
	}
	c.status.BoardLEDColor = types.ColorOff
	if err := c.renderSolid(c.be.Touch, types.ColorOff, 0); err != nil {
		return err
	}
	c.status.TouchLEDColor = types.ColorOff

	c.status.Initialized = false
	println("Info: hwctrl deinitialized")
	return nil
}

// IsInitialized reports whether Init has completed.
func (c *Controller) IsInitialized() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status.Initialized
}

// checkInit must be called with the lock held.
func (c *Controller) checkInit() error {
	if !c.status.Initialized {
		return errcode.NotInitialized
	}
	return nil
}

// Status returns a snapshot of the full board state.
func (c *Controller) Status() (types.HardwareStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkInit(); err != nil {
		return types.HardwareStatus{}, err
	}
	return c.status, nil
}

// StatusInto copies the snapshot into dst.
func (c *Controller) StatusInto(dst *types.HardwareStatus) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkInit(); err != nil {
		return err
	}
	if dst == nil {
		return errcode.NullTarget
	}
	*dst = c.status
	return nil
}

// FormatStatus renders the snapshot as the human-readable block the
// console prints.
func (c *Controller) FormatStatus() (string, error) {
	st, err := c.Status()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(
		"Hardware Status:\n"+
			"  Fan speed:       %d%%\n"+
			"  Board LED:       RGB(%d,%d,%d) @ %d%%\n"+
			"  Touch LED:       RGB(%d,%d,%d) @ %d%%\n"+
			"  USB mux:         %s\n"+
			"  Main module:     %s\n"+
			"  Aux module:      %s\n",
		st.FanSpeed,
		st.BoardLEDColor.R, st.BoardLEDColor.G, st.BoardLEDColor.B, st.BoardLEDBrightness,
		st.TouchLEDColor.R, st.TouchLEDColor.G, st.TouchLEDColor.B, st.TouchLEDBrightness,
		st.USBMuxTarget,
		st.MainPowerState,
		st.AuxPowerState,
	), nil
}
