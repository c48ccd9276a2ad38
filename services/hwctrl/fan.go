package hwctrl

import (
	"carriercode-go/errcode"
	"carriercode-go/x/mathx"
)

// commitFan pushes a duty for speed percent through the set/update latch
// pair. Lock must be held.
func (c *Controller) commitFan(speed uint8) error {
	duty := mathx.ScalePct(c.cfg.FanTop, speed)
	if err := c.be.Fan.SetDuty(duty); err != nil {
		return errcode.Driver("fan.set_duty", err)
	}
	if err := c.be.Fan.Update(); err != nil {
		return errcode.Driver("fan.update", err)
	}
	return nil
}

// SetFanSpeed sets the fan to speed percent (0..100). Out-of-range speeds
// are rejected before anything is written, leaving the stored speed
// unchanged.
func (c *Controller) SetFanSpeed(speed uint8) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkInit(); err != nil {
		return err
	}
	if speed > 100 {
		return errcode.InvalidArg
	}
	if err := c.commitFan(speed); err != nil {
		return err
	}
	c.status.FanSpeed = speed
	println("Info: fan speed set to", speed)
	return nil
}

// FanSpeed returns the stored speed percent.
func (c *Controller) FanSpeed() uint8 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status.FanSpeed
}

// StartFan runs the fan at the board's default on-speed.
func (c *Controller) StartFan() error {
	return c.SetFanSpeed(c.cfg.DefaultFanOnSpeed)
}

// StopFan stops the fan.
func (c *Controller) StopFan() error {
	return c.SetFanSpeed(0)
}
