// carrierd is the carrier-board controller firmware entry point. It wires
// the hardware core to a platform backend, starts telemetry, restores the
// saved settings and hands the serial line to the console.
package main

import (
	"carriercode-go/bus"
	"carriercode-go/services/console"
	"carriercode-go/services/device"
	"carriercode-go/services/hwctrl"
	"carriercode-go/services/monitor"
	"carriercode-go/services/settings"
)

const settingsPath = "carrier-settings.yaml"

func main() {
	cfg := hwctrl.DefaultConfig()
	hw := hwctrl.New(cfg, hwctrl.NewDefaultBackend(cfg))
	if err := hw.Init(); err != nil {
		println("Error: hardware init failed:", err.Error())
		return
	}

	b := bus.NewBus(16)
	mon := monitor.New(b.NewConnection("monitor"))
	mon.Start()

	dev := device.New(hw, mon, b.NewConnection("device"))
	dev.OnMemoryWarning(func(free uint64) {
		println("Warning: memory pressure, free heap", int64(free), "bytes")
	})

	set := settings.New(settings.NewFileStore(settingsPath), hw)
	if err := set.Apply(); err != nil {
		println("Warning: could not restore settings:", err.Error())
	}

	in, out := console.OpenSerial()
	console.New(hw, dev, set, in, out).Run()

	// Reboot or EOF: quiesce before exiting.
	mon.Stop()
	dev.Close()
	dev.ShutdownAll()
	if err := hw.Deinit(); err != nil {
		println("Error: deinit:", err.Error())
	}
}
