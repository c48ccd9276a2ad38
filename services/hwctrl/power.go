package hwctrl

import (
	"time"

	"carriercode-go/errcode"
	"carriercode-go/types"
)

// pulse drives pin high, sleeps d, drives it low again. Lock must be held;
// the lock stays held across the sleep so pulses never interleave.
func (c *Controller) pulse(op string, pin int, d time.Duration) error {
	if err := c.be.Pins.SetOutput(pin, High); err != nil {
		return errcode.Driver(op, err)
	}
	c.sleep(d)
	if err := c.be.Pins.SetOutput(pin, Low); err != nil {
		return errcode.Driver(op, err)
	}
	return nil
}

// ---- Main module ----
// The main module's power line is active-low: driving it low lets the
// module run, driving it high forces it off.

// MainPowerOn releases the main module's shutdown line.
func (c *Controller) MainPowerOn() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkInit(); err != nil {
		return err
	}
	if err := c.be.Pins.SetOutput(c.cfg.Pins.MainPower, Low); err != nil {
		return errcode.Driver("main.power_on", err)
	}
	c.status.MainPowerState = types.PowerOn
	println("Info: main module power on")
	return nil
}

// MainPowerOff asserts the main module's shutdown line.
func (c *Controller) MainPowerOff() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkInit(); err != nil {
		return err
	}
	if err := c.be.Pins.SetOutput(c.cfg.Pins.MainPower, High); err != nil {
		return errcode.Driver("main.power_off", err)
	}
	c.status.MainPowerState = types.PowerOff
	println("Info: main module power off")
	return nil
}

// MainReset pulses the main module's reset line. The power state is
// unaffected: a reset restarts the module, it does not turn it off.
func (c *Controller) MainReset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkInit(); err != nil {
		return err
	}
	println("Info: resetting main module")
	return c.pulse("main.reset", c.cfg.Pins.MainReset, c.cfg.Timings.MainResetPulse)
}

// recoveryStep enumerates the recovery sequence so each stage is explicit
// and individually abortable.
type recoveryStep uint8

const (
	recAssertStrap recoveryStep = iota
	recReset
	recHoldStrap
	recReleaseStrap
	recRouteUSB
	recDone
)

// MainEnterRecovery walks the main module into its USB recovery mode:
// assert the boot strap, hold it through a reset and a settle period,
// release it, then route USB to the module so a host can talk to it.
// The first failing step aborts the sequence; completed steps are not
// rolled back, so the module may be left mid-sequence. The strap level is
// never read back because the line is being driven.
func (c *Controller) MainEnterRecovery() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkInit(); err != nil {
		return err
	}

	println("Info: entering recovery mode on main module")
	p := c.cfg.Pins
	t := c.cfg.Timings

	for step := recAssertStrap; step < recDone; step++ {
		var err error
		switch step {
		case recAssertStrap:
			if err = c.be.Pins.SetOutput(p.MainRecovery, High); err != nil {
				err = errcode.Driver("recovery.strap_high", err)
				break
			}
			c.sleep(t.MainStrapSettle)
		case recReset:
			err = c.pulse("recovery.reset", p.MainReset, t.MainResetPulse)
		case recHoldStrap:
			c.sleep(t.MainPostReset)
		case recReleaseStrap:
			if err = c.be.Pins.SetOutput(p.MainRecovery, Low); err != nil {
				err = errcode.Driver("recovery.strap_low", err)
			}
		case recRouteUSB:
			err = c.setMuxLocked(types.MuxMain)
		}
		if err != nil {
			println("Error: recovery sequence aborted at step", int(step))
			return err
		}
	}

	println("Info: main module in recovery, USB routed to main")
	return nil
}

// MainPowerState returns the stored logical state.
func (c *Controller) MainPowerState() types.PowerState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status.MainPowerState
}

// ---- Aux module ----
// The aux module only exposes a momentary power button and a reset line.
// There is no way to observe its actual state, so the stored state starts
// Unknown and each successful toggle flips it optimistically: a toggle
// from Unknown assumes the press turned the module on.

// AuxPowerToggle presses the aux module's power button.
func (c *Controller) AuxPowerToggle() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkInit(); err != nil {
		return err
	}
	if err := c.pulse("aux.power_btn", c.cfg.Pins.AuxPowerBtn, c.cfg.Timings.AuxPowerPulse); err != nil {
		return err
	}
	if c.status.AuxPowerState == types.PowerOn {
		c.status.AuxPowerState = types.PowerOff
	} else {
		c.status.AuxPowerState = types.PowerOn
	}
	println("Info: aux module power toggled, assumed", c.status.AuxPowerState.String())
	return nil
}

// AuxReset pulses the aux module's reset line. The stored power state is
// untouched.
func (c *Controller) AuxReset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkInit(); err != nil {
		return err
	}
	println("Info: resetting aux module")
	return c.pulse("aux.reset", c.cfg.Pins.AuxReset, c.cfg.Timings.AuxResetPulse)
}

// AuxPowerState returns the stored logical state.
func (c *Controller) AuxPowerState() types.PowerState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status.AuxPowerState
}
