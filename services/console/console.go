// Package console is the line console: one text line in, one call into
// the core (or the orchestrator, or settings), human-readable text out.
// It holds no hardware state and adds no semantics of its own.
package console

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/google/shlex"

	"carriercode-go/services/device"
	"carriercode-go/services/hwctrl"
	"carriercode-go/services/settings"
	"carriercode-go/types"
	"carriercode-go/x/timex"
)

// Console dispatches command lines to the services it fronts.
type Console struct {
	hw  *hwctrl.Controller
	dev *device.Orchestrator
	set *settings.Service

	in  io.Reader
	out io.Writer

	started  time.Time
	executed int
	stopping bool
}

func New(hw *hwctrl.Controller, dev *device.Orchestrator, set *settings.Service, in io.Reader, out io.Writer) *Console {
	return &Console{hw: hw, dev: dev, set: set, in: in, out: out, started: time.Now()}
}

// Run reads lines until EOF or a reboot command.
func (c *Console) Run() {
	fmt.Fprintln(c.out, "carrier console ready, type 'help'")
	sc := bufio.NewScanner(c.in)
	for {
		fmt.Fprint(c.out, "> ")
		if !sc.Scan() {
			return
		}
		c.Execute(sc.Text())
		if c.stopping {
			return
		}
	}
}

// Execute runs one line and returns an exit-style code: 0 on success,
// 1 on any failure.
func (c *Console) Execute(line string) int {
	args, err := shlex.Split(line)
	if err != nil {
		c.fail("parse error: %v", err)
		return 1
	}
	if len(args) == 0 {
		return 0
	}
	c.executed++

	var cmdErr error
	switch args[0] {
	case "help":
		c.printHelp()
	case "info":
		c.printInfo()
	case "status":
		cmdErr = c.cmdStatus()
	case "reboot":
		fmt.Fprintln(c.out, "Rebooting...")
		c.stopping = true
	case "save":
		cmdErr = c.set.Capture()
	case "load":
		cmdErr = c.set.Apply()
	case "clear":
		cmdErr = c.set.Clear()
	case "fan":
		cmdErr = c.cmdFan(args[1:])
	case "bled":
		cmdErr = c.cmdLED(types.StripBoard, args[1:])
	case "tled":
		cmdErr = c.cmdLED(types.StripTouch, args[1:])
	case "gpio":
		cmdErr = c.cmdGPIO(args[1:])
	case "usbmux":
		cmdErr = c.cmdUSBMux(args[1:])
	case "main":
		cmdErr = c.cmdMain(args[1:])
	case "aux":
		cmdErr = c.cmdAux(args[1:])
	case "test":
		cmdErr = c.cmdTest(args[1:])
	case "sleep":
		cmdErr = c.dev.EnterSleepMode()
		if cmdErr == nil {
			fmt.Fprintln(c.out, "Sleeping. Type 'wake' to resume.")
		}
	case "wake":
		cmdErr = c.dev.WakeUp()
	default:
		c.fail("unknown command %q, type 'help'", args[0])
		return 1
	}

	if cmdErr != nil {
		c.fail("%s: %v", args[0], cmdErr)
		return 1
	}
	return 0
}

func (c *Console) fail(format string, a ...any) {
	fmt.Fprintf(c.out, "Error: "+format+"\n", a...)
}

func (c *Console) usage(u string) error {
	return fmt.Errorf("usage: %s", u)
}

// parsePct parses a 0..100 percentage.
func parsePct(s string) (uint8, error) {
	n, err := strconv.ParseUint(s, 10, 8)
	if err != nil || n > 100 {
		return 0, fmt.Errorf("want 0-100, got %q", s)
	}
	return uint8(n), nil
}

// parseColor parses three 0..255 channel arguments.
func parseColor(args []string) (types.Color, error) {
	var ch [3]uint8
	for i := 0; i < 3; i++ {
		n, err := strconv.ParseUint(args[i], 10, 8)
		if err != nil {
			return types.Color{}, fmt.Errorf("want 0-255, got %q", args[i])
		}
		ch[i] = uint8(n)
	}
	return types.Color{R: ch[0], G: ch[1], B: ch[2]}, nil
}

func (c *Console) cmdStatus() error {
	fmt.Fprint(c.out, c.dev.FormatFullStatus())
	return nil
}

func (c *Console) printInfo() {
	fmt.Fprintf(c.out, "carrier board controller\n")
	fmt.Fprintf(c.out, "  interface: %s\n", device.VersionString())
	fmt.Fprintf(c.out, "  uptime:   %d ms\n", timex.SinceMs(c.started))
	fmt.Fprintf(c.out, "  commands: %d\n", c.executed)
}

func (c *Console) cmdFan(args []string) error {
	if len(args) != 1 {
		return c.usage("fan <0-100>|on|off")
	}
	switch args[0] {
	case "on":
		return c.hw.StartFan()
	case "off":
		return c.hw.StopFan()
	default:
		pct, err := parsePct(args[0])
		if err != nil {
			return err
		}
		return c.hw.SetFanSpeed(pct)
	}
}

func (c *Console) cmdLED(id types.StripID, args []string) error {
	u := "bled <r> <g> <b>|bright <0-100>|off|rainbow"
	if id == types.StripTouch {
		u = "tled <r> <g> <b>|bright <0-100>|off"
	}
	switch {
	case len(args) == 3:
		col, err := parseColor(args)
		if err != nil {
			return err
		}
		return c.hw.SetStripColor(id, col)
	case len(args) == 2 && args[0] == "bright":
		pct, err := parsePct(args[1])
		if err != nil {
			return err
		}
		return c.hw.SetStripBrightness(id, pct)
	case len(args) == 1 && args[0] == "off":
		return c.hw.TurnOffStrip(id)
	case len(args) == 1 && args[0] == "rainbow" && id == types.StripBoard:
		return c.hw.SetStripEffect(id, types.EffectRainbow)
	default:
		return c.usage(u)
	}
}

func (c *Console) cmdGPIO(args []string) error {
	if len(args) != 2 {
		return c.usage("gpio <pin> high|low|input")
	}
	pin, err := strconv.Atoi(args[0])
	if err != nil || pin < 0 {
		return fmt.Errorf("bad pin %q", args[0])
	}
	switch args[1] {
	case "high":
		return c.hw.SetPinOutput(pin, hwctrl.High)
	case "low":
		return c.hw.SetPinOutput(pin, hwctrl.Low)
	case "input":
		lv, err := c.hw.ReadPinInputMode(pin)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "pin %d: %s\n", pin, lv)
		return nil
	default:
		return c.usage("gpio <pin> high|low|input")
	}
}

func (c *Console) cmdUSBMux(args []string) error {
	if len(args) != 1 {
		return c.usage("usbmux controller|main|aux|status")
	}
	switch args[0] {
	case "controller":
		return c.hw.SetMuxTarget(types.MuxController)
	case "main":
		return c.hw.SetMuxTarget(types.MuxMain)
	case "aux":
		return c.hw.SetMuxTarget(types.MuxAux)
	case "status":
		fmt.Fprintf(c.out, "USB routed to %s\n", c.hw.MuxTarget())
		return nil
	default:
		return c.usage("usbmux controller|main|aux|status")
	}
}

func (c *Console) cmdMain(args []string) error {
	if len(args) != 1 {
		return c.usage("main on|off|reset|recovery|status")
	}
	switch args[0] {
	case "on":
		return c.hw.MainPowerOn()
	case "off":
		return c.hw.MainPowerOff()
	case "reset":
		return c.hw.MainReset()
	case "recovery":
		return c.hw.MainEnterRecovery()
	case "status":
		fmt.Fprintf(c.out, "main module: %s\n", c.hw.MainPowerState())
		return nil
	default:
		return c.usage("main on|off|reset|recovery|status")
	}
}

func (c *Console) cmdAux(args []string) error {
	if len(args) != 1 {
		return c.usage("aux toggle|reset|status")
	}
	switch args[0] {
	case "toggle":
		return c.hw.AuxPowerToggle()
	case "reset":
		return c.hw.AuxReset()
	case "status":
		fmt.Fprintf(c.out, "aux module: %s\n", c.hw.AuxPowerState())
		return nil
	default:
		return c.usage("aux toggle|reset|status")
	}
}

func (c *Console) cmdTest(args []string) error {
	if len(args) == 0 {
		return c.usage("test fan|bled|tled|gpio <pin>|quick|all|stress <ms>")
	}
	switch args[0] {
	case "fan":
		return c.hw.SelfTestFan()
	case "bled":
		return c.hw.SelfTestBoardLED()
	case "tled":
		return c.hw.SelfTestTouchLED()
	case "gpio":
		if len(args) != 2 {
			return c.usage("test gpio <pin>")
		}
		pin, err := strconv.Atoi(args[1])
		if err != nil || pin < 0 {
			return fmt.Errorf("bad pin %q", args[1])
		}
		return c.hw.SelfTestGPIO(pin)
	case "quick":
		return c.dev.RunQuickTest()
	case "all":
		return c.dev.RunFullTest()
	case "stress":
		if len(args) != 2 {
			return c.usage("test stress <ms>")
		}
		ms, err := strconv.Atoi(args[1])
		if err != nil || ms <= 0 {
			return fmt.Errorf("bad duration %q", args[1])
		}
		return c.dev.RunStressTest(time.Duration(ms) * time.Millisecond)
	default:
		return c.usage("test fan|bled|tled|gpio <pin>|quick|all|stress <ms>")
	}
}

func (c *Console) printHelp() {
	fmt.Fprint(c.out, `Commands:
  help                                 this text
  info                                 firmware info and console stats
  status                               full device status
  reboot                               restart the controller
  save | load | clear                  persist / restore / wipe settings
  fan <0-100>|on|off                   fan speed
  bled <r> <g> <b>|bright <n>|off|rainbow   board LED strip
  tled <r> <g> <b>|bright <n>|off      touch LED
  gpio <pin> high|low|input            raw pin access
  usbmux controller|main|aux|status    USB data path routing
  main on|off|reset|recovery|status    main compute module
  aux toggle|reset|status              aux compute module
  test fan|bled|tled|gpio <pin>|quick|all|stress <ms>   built-in exercisers
  sleep | wake                         low-power mode
`)
}
