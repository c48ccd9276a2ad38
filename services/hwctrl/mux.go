package hwctrl

import (
	"carriercode-go/errcode"
	"carriercode-go/types"
)

// muxSelect returns the two select-line levels for a target.
func muxSelect(t types.MuxTarget) (sel0, sel1 Level, ok bool) {
	switch t {
	case types.MuxController:
		return Low, Low, true
	case types.MuxMain:
		return High, Low, true
	case types.MuxAux:
		return High, High, true
	default:
		return Low, Low, false
	}
}

// setMuxLocked drives both select lines, then records the target. A failed
// pin write aborts before the stored target changes; the lines themselves
// may be left partially switched, which the caller fixes by retrying.
func (c *Controller) setMuxLocked(t types.MuxTarget) error {
	sel0, sel1, ok := muxSelect(t)
	if !ok {
		return errcode.InvalidArg
	}
	if err := c.be.Pins.SetOutput(c.cfg.Pins.MuxSel0, sel0); err != nil {
		return errcode.Driver("mux.sel0", err)
	}
	if err := c.be.Pins.SetOutput(c.cfg.Pins.MuxSel1, sel1); err != nil {
		return errcode.Driver("mux.sel1", err)
	}
	c.status.USBMuxTarget = t
	return nil
}

// SetMuxTarget routes the shared USB data path to t.
func (c *Controller) SetMuxTarget(t types.MuxTarget) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkInit(); err != nil {
		return err
	}
	if err := c.setMuxLocked(t); err != nil {
		return err
	}
	println("Info: USB mux routed to", t.String())
	return nil
}

// MuxTarget returns the stored route.
func (c *Controller) MuxTarget() types.MuxTarget {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status.USBMuxTarget
}
