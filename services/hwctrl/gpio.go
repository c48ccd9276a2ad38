package hwctrl

import "carriercode-go/errcode"

// Raw pin access for the console's gpio command and board bring-up. These
// are deliberately not gated on Init: they are debug plumbing, not part of
// the managed board state, and nothing here touches the status record.

// SetPinOutput drives an arbitrary pin as an output.
func (c *Controller) SetPinOutput(pin int, level Level) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.be.Pins.SetOutput(pin, level); err != nil {
		return errcode.Driver("gpio.set_output", err)
	}
	return nil
}

// ReadPinInputMode switches pin to input mode and reads it. The mode
// change sticks, so do not call this on a pin something else is driving.
func (c *Controller) ReadPinInputMode(pin int) (Level, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	lv, err := c.be.Pins.ReadInputMode(pin)
	if err != nil {
		return Low, errcode.Driver("gpio.read_input", err)
	}
	return lv, nil
}

// ReadPinRaw reads pin without reconfiguring its direction.
func (c *Controller) ReadPinRaw(pin int) (Level, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	lv, err := c.be.Pins.ReadRawLevel(pin)
	if err != nil {
		return Low, errcode.Driver("gpio.read_raw", err)
	}
	return lv, nil
}
