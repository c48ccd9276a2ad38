package hwctrl

import (
	"time"

	"carriercode-go/types"
)

// Built-in exercisers, run from the console during bring-up. Each one
// drives a peripheral through a visible pattern and restores a quiet
// state. Dwell times go through c.sleep so tests run instantly under a
// fake clock.

const (
	fanTestDwell   = 2 * time.Second
	ledTestDwell   = time.Second
	gpioTestDwell  = time.Second
	powerTestDwell = 2 * time.Second
	auxTestDwell   = 3 * time.Second
)

// SelfTestFan steps the fan through 0/25/50/75/100 percent and stops it.
func (c *Controller) SelfTestFan() error {
	println("Info: fan test start")
	for _, speed := range []uint8{0, 25, 50, 75, 100} {
		if err := c.SetFanSpeed(speed); err != nil {
			return err
		}
		c.sleep(fanTestDwell)
	}
	return c.StopFan()
}

// selfTestStrip cycles a strip through red, green, blue and white, then
// turns it off.
func (c *Controller) selfTestStrip(id types.StripID) error {
	println("Info: LED test start:", id.String())
	for _, col := range []types.Color{
		types.ColorRed, types.ColorGreen, types.ColorBlue, types.ColorWhite,
	} {
		if err := c.SetStripColor(id, col); err != nil {
			return err
		}
		c.sleep(ledTestDwell)
	}
	return c.TurnOffStrip(id)
}

// SelfTestBoardLED exercises the board strip.
func (c *Controller) SelfTestBoardLED() error {
	return c.selfTestStrip(types.StripBoard)
}

// SelfTestTouchLED exercises the touch pixel.
func (c *Controller) SelfTestTouchLED() error {
	return c.selfTestStrip(types.StripTouch)
}

// SelfTestGPIO drives pin high then low, then reads it back in input mode.
// Only use on unconnected or probe-safe pins.
func (c *Controller) SelfTestGPIO(pin int) error {
	println("Info: GPIO test start: pin", pin)
	if err := c.SetPinOutput(pin, High); err != nil {
		return err
	}
	c.sleep(gpioTestDwell)
	if err := c.SetPinOutput(pin, Low); err != nil {
		return err
	}
	c.sleep(gpioTestDwell)
	lv, err := c.ReadPinInputMode(pin)
	if err != nil {
		return err
	}
	println("Info: GPIO test pin", pin, "reads", lv.String())
	return nil
}

// SelfTestMainPower cycles the main module off and back on.
func (c *Controller) SelfTestMainPower() error {
	println("Info: main power test start")
	if err := c.MainPowerOff(); err != nil {
		return err
	}
	c.sleep(powerTestDwell)
	return c.MainPowerOn()
}

// SelfTestAuxPower toggles the aux module twice, leaving the stored state
// where it started (modulo the Unknown-to-On assumption on first use).
func (c *Controller) SelfTestAuxPower() error {
	println("Info: aux power test start")
	if err := c.AuxPowerToggle(); err != nil {
		return err
	}
	c.sleep(auxTestDwell)
	return c.AuxPowerToggle()
}

// SelfTestQuick runs the non-disruptive tests: fan and both strips.
func (c *Controller) SelfTestQuick() error {
	if err := c.SelfTestFan(); err != nil {
		return err
	}
	if err := c.SelfTestBoardLED(); err != nil {
		return err
	}
	return c.SelfTestTouchLED()
}

// SelfTestAll runs every exerciser, including the power-disruptive ones.
func (c *Controller) SelfTestAll() error {
	if err := c.SelfTestQuick(); err != nil {
		return err
	}
	if err := c.SelfTestMainPower(); err != nil {
		return err
	}
	return c.SelfTestAuxPower()
}
