//go:build linux && arm64 && !(rp2040 || rp2350)

package hwctrl

import (
	"fmt"
	"sync"

	"github.com/warthog618/go-gpiocdev"

	"carriercode-go/types"
)

// Linux backend for bench rigs: pins through the GPIO character device,
// fan PWM approximated as digital on/off, strips logged only. Lines are
// requested lazily and re-requested when the direction changes, because a
// cdev line keeps the direction it was requested with.

type cdevPins struct {
	chip string

	mu    sync.Mutex
	lines map[int]*cdevLine
}

type cdevLine struct {
	line   *gpiocdev.Line
	output bool
}

func newCdevPins(chip string) *cdevPins {
	return &cdevPins{chip: chip, lines: make(map[int]*cdevLine)}
}

func (c *cdevPins) request(pin int, output bool, initial int) (*cdevLine, error) {
	if l, ok := c.lines[pin]; ok {
		if l.output == output {
			return l, nil
		}
		_ = l.line.Close()
		delete(c.lines, pin)
	}
	opt := []gpiocdev.LineReqOption{gpiocdev.WithConsumer("carriercode")}
	if output {
		opt = append(opt, gpiocdev.AsOutput(initial))
	} else {
		opt = append(opt, gpiocdev.AsInput)
	}
	line, err := gpiocdev.RequestLine(c.chip, pin, opt...)
	if err != nil {
		return nil, fmt.Errorf("gpio line %d: %w", pin, err)
	}
	l := &cdevLine{line: line, output: output}
	c.lines[pin] = l
	return l, nil
}

func (c *cdevPins) SetOutput(pin int, level Level) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := 0
	if level {
		v = 1
	}
	l, err := c.request(pin, true, v)
	if err != nil {
		return err
	}
	return l.line.SetValue(v)
}

func (c *cdevPins) ReadInputMode(pin int) (Level, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, err := c.request(pin, false, 0)
	if err != nil {
		return Low, err
	}
	v, err := l.line.Value()
	return v != 0, err
}

func (c *cdevPins) ReadRawLevel(pin int) (Level, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.lines[pin]
	if !ok {
		return c.readInputLocked(pin)
	}
	v, err := l.line.Value()
	return v != 0, err
}

func (c *cdevPins) readInputLocked(pin int) (Level, error) {
	l, err := c.request(pin, false, 0)
	if err != nil {
		return Low, err
	}
	v, err := l.line.Value()
	return v != 0, err
}

// cdevFan maps any non-zero duty to ON through a plain GPIO, the usual
// transistor-driven 2-wire fan arrangement.
type cdevFan struct {
	pins *cdevPins
	pin  int
	duty uint16
}

func (f *cdevFan) Configure(freqHz uint32, top uint16) error { return nil }
func (f *cdevFan) SetDuty(duty uint16) error                 { f.duty = duty; return nil }
func (f *cdevFan) Update() error {
	return f.pins.SetOutput(f.pin, f.duty > 0)
}

// logStrip records the last refresh so bench runs can be inspected.
type logStrip struct {
	name string
	buf  []types.Color
}

func (s *logStrip) Len() int { return len(s.buf) }
func (s *logStrip) SetPixel(i int, c types.Color) error {
	if i >= 0 && i < len(s.buf) {
		s.buf[i] = c
	}
	return nil
}
func (s *logStrip) Refresh() error {
	println("Info: strip refresh:", s.name, "first pixel",
		int(s.buf[0].R), int(s.buf[0].G), int(s.buf[0].B))
	return nil
}

// NewDefaultBackend builds a gpiocdev-backed bench backend on gpiochip0.
func NewDefaultBackend(cfg Config) Backend {
	pins := newCdevPins("gpiochip0")
	return Backend{
		Pins:  pins,
		Fan:   &cdevFan{pins: pins, pin: cfg.Pins.FanPWM},
		Board: &logStrip{name: "board", buf: make([]types.Color, BoardStripLen)},
		Touch: &logStrip{name: "touch", buf: make([]types.Color, TouchStripLen)},
	}
}
