package types

// ---- LED model ----

// Color is an RGB triple, each channel 0..255. Brightness is never baked
// into a stored Color; it is applied at the moment pixels are written.
type Color struct {
	R uint8
	G uint8
	B uint8
}

var (
	ColorOff   = Color{}
	ColorRed   = Color{R: 255}
	ColorGreen = Color{G: 255}
	ColorBlue  = Color{B: 255}
	ColorWhite = Color{R: 255, G: 255, B: 255}
)

// StripID names one of the two fixed LED strips on the board.
type StripID uint8

const (
	StripBoard StripID = iota // 28-pixel ring around the carrier
	StripTouch                // single pixel under the touch switch
)

func (s StripID) String() string {
	switch s {
	case StripBoard:
		return "board"
	case StripTouch:
		return "touch"
	default:
		return "invalid"
	}
}

// Effect selects a strip-wide rendering mode.
type Effect uint8

const (
	EffectSolid Effect = iota
	EffectRainbow
)

// ---- USB mux model ----

// MuxTarget names the device the shared USB data path is routed to.
type MuxTarget uint8

const (
	MuxController MuxTarget = iota // the carrier's own MCU (default)
	MuxMain                        // main compute module (recovery-capable)
	MuxAux                         // aux compute module
)

func (t MuxTarget) String() string {
	switch t {
	case MuxController:
		return "controller"
	case MuxMain:
		return "main"
	case MuxAux:
		return "aux"
	default:
		return "invalid"
	}
}

// ---- Power model ----

// PowerState is the logical power state of a downstream module. There is
// no hardware read-back for these lines; the stored value tracks the last
// commanded state only.
type PowerState uint8

const (
	PowerUnknown PowerState = iota
	PowerOff
	PowerOn
)

func (p PowerState) String() string {
	switch p {
	case PowerOff:
		return "OFF"
	case PowerOn:
		return "ON"
	case PowerUnknown:
		return "UNKNOWN"
	default:
		return "INVALID"
	}
}

// ---- Aggregated hardware status ----

// HardwareStatus mirrors everything the hardware core owns. One instance
// lives for the process lifetime inside the controller; callers only ever
// see copies.
type HardwareStatus struct {
	Initialized bool

	FanSpeed uint8 // percent, 0..100

	BoardLEDColor      Color
	BoardLEDBrightness uint8 // percent, 0..100
	TouchLEDColor      Color
	TouchLEDBrightness uint8 // percent, 0..100

	USBMuxTarget MuxTarget

	MainPowerState PowerState
	AuxPowerState  PowerState
}

// ---- Monitor payloads ----

// MonitorStats is published retained under monitor/stats.
type MonitorStats struct {
	FreeHeap uint64
	MinFree  uint64
	UptimeMs int64
}
