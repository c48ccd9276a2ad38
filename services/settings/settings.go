// Package settings persists the user-facing board state (fan speed, LED
// colors and brightnesses) as key-value pairs and replays it through the
// hardware core's own setters, so a restored state passes the same
// validation as a live command.
package settings

import (
	"carriercode-go/errcode"
	"carriercode-go/types"
)

// Values holds the persisted keys. Missing keys fall back to Defaults.
type Values struct {
	FanSpeed uint8 `yaml:"fan_speed"`

	BoardLEDR   uint8 `yaml:"board_led_r"`
	BoardLEDG   uint8 `yaml:"board_led_g"`
	BoardLEDB   uint8 `yaml:"board_led_b"`
	BoardBright uint8 `yaml:"board_bright"`

	TouchLEDR   uint8 `yaml:"touch_led_r"`
	TouchLEDG   uint8 `yaml:"touch_led_g"`
	TouchLEDB   uint8 `yaml:"touch_led_b"`
	TouchBright uint8 `yaml:"touch_bright"`
}

// Defaults is the state applied when nothing has been saved yet: outputs
// quiet, brightness at the board default.
func Defaults() Values {
	return Values{BoardBright: 50, TouchBright: 50}
}

// Store is the persistence backend. Load reports found=false when nothing
// has been saved, in which case the returned Values are Defaults.
type Store interface {
	Save(v Values) error
	Load() (v Values, found bool, err error)
	Clear() error
}

// Core is the slice of the hardware controller the service replays into.
type Core interface {
	Status() (types.HardwareStatus, error)
	SetFanSpeed(speed uint8) error
	SetStripColor(id types.StripID, col types.Color) error
	SetStripBrightness(id types.StripID, brightness uint8) error
}

// Service captures core state into a Store and applies it back.
type Service struct {
	store Store
	hw    Core
}

func New(store Store, hw Core) *Service {
	return &Service{store: store, hw: hw}
}

// Capture snapshots the current state and saves it.
func (s *Service) Capture() error {
	if s.hw == nil {
		return errcode.NullTarget
	}
	st, err := s.hw.Status()
	if err != nil {
		return err
	}
	v := Values{
		FanSpeed:    st.FanSpeed,
		BoardLEDR:   st.BoardLEDColor.R,
		BoardLEDG:   st.BoardLEDColor.G,
		BoardLEDB:   st.BoardLEDColor.B,
		BoardBright: st.BoardLEDBrightness,
		TouchLEDR:   st.TouchLEDColor.R,
		TouchLEDG:   st.TouchLEDColor.G,
		TouchLEDB:   st.TouchLEDColor.B,
		TouchBright: st.TouchLEDBrightness,
	}
	if err := s.store.Save(v); err != nil {
		return err
	}
	println("Info: settings saved")
	return nil
}

// Apply loads the stored values (or Defaults) and replays them in a fixed
// order: fan, board color, board brightness, touch color, touch
// brightness. The first failing setter aborts.
func (s *Service) Apply() error {
	if s.hw == nil {
		return errcode.NullTarget
	}
	v, found, err := s.store.Load()
	if err != nil {
		return err
	}
	if !found {
		println("Info: no saved settings, applying defaults")
	}

	if err := s.hw.SetFanSpeed(v.FanSpeed); err != nil {
		return err
	}
	if err := s.hw.SetStripColor(types.StripBoard,
		types.Color{R: v.BoardLEDR, G: v.BoardLEDG, B: v.BoardLEDB}); err != nil {
		return err
	}
	if err := s.hw.SetStripBrightness(types.StripBoard, v.BoardBright); err != nil {
		return err
	}
	if err := s.hw.SetStripColor(types.StripTouch,
		types.Color{R: v.TouchLEDR, G: v.TouchLEDG, B: v.TouchLEDB}); err != nil {
		return err
	}
	if err := s.hw.SetStripBrightness(types.StripTouch, v.TouchBright); err != nil {
		return err
	}
	println("Info: settings applied")
	return nil
}

// Clear removes the stored values.
func (s *Service) Clear() error {
	if err := s.store.Clear(); err != nil {
		return err
	}
	println("Info: settings cleared")
	return nil
}
