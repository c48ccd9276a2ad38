package hwctrl

import (
	"carriercode-go/errcode"
	"carriercode-go/types"
	"carriercode-go/x/mathx"
)

// stripOf maps a StripID to its driver and stored state. Lock must be held.
func (c *Controller) stripOf(id types.StripID) (StripDriver, *types.Color, *uint8, error) {
	switch id {
	case types.StripBoard:
		return c.be.Board, &c.status.BoardLEDColor, &c.status.BoardLEDBrightness, nil
	case types.StripTouch:
		return c.be.Touch, &c.status.TouchLEDColor, &c.status.TouchLEDBrightness, nil
	default:
		return nil, nil, nil, errcode.InvalidArg
	}
}

// renderSolid stages col scaled by brightness percent on every pixel and
// refreshes once. Lock must be held.
func (c *Controller) renderSolid(drv StripDriver, col types.Color, brightness uint8) error {
	out := types.Color{
		R: mathx.ScalePct(col.R, brightness),
		G: mathx.ScalePct(col.G, brightness),
		B: mathx.ScalePct(col.B, brightness),
	}
	for i := 0; i < drv.Len(); i++ {
		if err := drv.SetPixel(i, out); err != nil {
			return errcode.Driver("strip.set_pixel", err)
		}
	}
	if err := drv.Refresh(); err != nil {
		return errcode.Driver("strip.refresh", err)
	}
	return nil
}

// SetStripColor stores col for the strip and re-renders it at the stored
// brightness. The unscaled color is what gets stored; brightness is applied
// only at render time.
func (c *Controller) SetStripColor(id types.StripID, col types.Color) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkInit(); err != nil {
		return err
	}
	drv, stCol, stBright, err := c.stripOf(id)
	if err != nil {
		return err
	}
	if err := c.renderSolid(drv, col, *stBright); err != nil {
		return err
	}
	*stCol = col
	return nil
}

// SetStripBrightness stores brightness percent (0..100) and re-renders the
// stored color through it. Because the stored color is unscaled, brightness
// changes are independent: the final output only depends on the latest
// color and the latest brightness.
func (c *Controller) SetStripBrightness(id types.StripID, brightness uint8) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkInit(); err != nil {
		return err
	}
	if brightness > 100 {
		return errcode.InvalidArg
	}
	drv, stCol, stBright, err := c.stripOf(id)
	if err != nil {
		return err
	}
	if err := c.renderSolid(drv, *stCol, brightness); err != nil {
		return err
	}
	*stBright = brightness
	return nil
}

// TurnOffStrip writes {0,0,0} to every pixel regardless of brightness and
// stores the off color.
func (c *Controller) TurnOffStrip(id types.StripID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkInit(); err != nil {
		return err
	}
	drv, stCol, _, err := c.stripOf(id)
	if err != nil {
		return err
	}
	if err := c.renderSolid(drv, types.ColorOff, 0); err != nil {
		return err
	}
	*stCol = types.ColorOff
	return nil
}

// StripColor returns the stored (unscaled) color.
func (c *Controller) StripColor(id types.StripID) types.Color {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, stCol, _, err := c.stripOf(id)
	if err != nil {
		return types.ColorOff
	}
	return *stCol
}

// StripBrightness returns the stored brightness percent.
func (c *Controller) StripBrightness(id types.StripID) uint8 {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _, stBright, err := c.stripOf(id)
	if err != nil {
		return 0
	}
	return *stBright
}

// SetStripEffect renders an effect once. EffectSolid re-renders the stored
// color; EffectRainbow spreads the hue wheel evenly across the strip at the
// stored brightness. Effects are a single render, not an animation loop.
func (c *Controller) SetStripEffect(id types.StripID, eff types.Effect) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.checkInit(); err != nil {
		return err
	}
	drv, stCol, stBright, err := c.stripOf(id)
	if err != nil {
		return err
	}
	switch eff {
	case types.EffectSolid:
		return c.renderSolid(drv, *stCol, *stBright)
	case types.EffectRainbow:
		n := drv.Len()
		for i := 0; i < n; i++ {
			hue := uint16(i * 360 / n)
			col := hsvToRGB(hue, 100, 100)
			out := types.Color{
				R: mathx.ScalePct(col.R, *stBright),
				G: mathx.ScalePct(col.G, *stBright),
				B: mathx.ScalePct(col.B, *stBright),
			}
			if err := drv.SetPixel(i, out); err != nil {
				return errcode.Driver("strip.set_pixel", err)
			}
		}
		if err := drv.Refresh(); err != nil {
			return errcode.Driver("strip.refresh", err)
		}
		return nil
	default:
		return errcode.InvalidArg
	}
}

// hsvToRGB converts hue 0..359, saturation and value 0..100 to an RGB
// triple using 60-degree sector math with truncating integer division.
func hsvToRGB(h uint16, s, v uint8) types.Color {
	scale := func(x uint32) uint8 { return uint8(x * 255 / 100) }

	if s == 0 {
		g := scale(uint32(v))
		return types.Color{R: g, G: g, B: g}
	}

	h %= 360
	sector := h / 60
	rem := uint32(h % 60)
	vv := uint32(v)
	ss := uint32(s)

	p := vv * (100 - ss) / 100
	q := vv * (100 - ss*rem/60) / 100
	t := vv * (100 - ss*(60-rem)/60) / 100

	var r, g, b uint32
	switch sector {
	case 0:
		r, g, b = vv, t, p
	case 1:
		r, g, b = q, vv, p
	case 2:
		r, g, b = p, vv, t
	case 3:
		r, g, b = p, q, vv
	case 4:
		r, g, b = t, p, vv
	default:
		r, g, b = vv, p, q
	}
	return types.Color{R: scale(r), G: scale(g), B: scale(b)}
}
