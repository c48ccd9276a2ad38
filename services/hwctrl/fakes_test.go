package hwctrl

import (
	"fmt"
	"time"

	"carriercode-go/types"
)

// fakePins records every write in order and keeps the last level per pin.
// failOn injects one error for a given pin.
type fakePins struct {
	levels map[int]Level
	log    []string
	failOn map[int]error
}

func newFakePins() *fakePins {
	return &fakePins{levels: make(map[int]Level), failOn: make(map[int]error)}
}

func (f *fakePins) SetOutput(pin int, level Level) error {
	if err := f.failOn[pin]; err != nil {
		return err
	}
	f.levels[pin] = level
	f.log = append(f.log, fmt.Sprintf("out %d %s", pin, level))
	return nil
}

func (f *fakePins) ReadInputMode(pin int) (Level, error) {
	if err := f.failOn[pin]; err != nil {
		return Low, err
	}
	f.log = append(f.log, fmt.Sprintf("in %d", pin))
	return f.levels[pin], nil
}

func (f *fakePins) ReadRawLevel(pin int) (Level, error) {
	if err := f.failOn[pin]; err != nil {
		return Low, err
	}
	return f.levels[pin], nil
}

// fakePWM separates staged duty from latched duty so set/update ordering
// is observable.
type fakePWM struct {
	freqHz  uint32
	top     uint16
	staged  uint16
	latched []uint16
	setErr  error
}

func (f *fakePWM) Configure(freqHz uint32, top uint16) error {
	f.freqHz, f.top = freqHz, top
	return nil
}

func (f *fakePWM) SetDuty(duty uint16) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.staged = duty
	return nil
}

func (f *fakePWM) Update() error {
	f.latched = append(f.latched, f.staged)
	return nil
}

func (f *fakePWM) lastDuty() uint16 {
	if len(f.latched) == 0 {
		return 0
	}
	return f.latched[len(f.latched)-1]
}

// fakeStrip keeps staged pixels and a snapshot of each refreshed frame.
type fakeStrip struct {
	pixels    []types.Color
	frames    [][]types.Color
	refreshes int
	setErr    error
}

func newFakeStrip(n int) *fakeStrip {
	return &fakeStrip{pixels: make([]types.Color, n)}
}

func (f *fakeStrip) Len() int { return len(f.pixels) }

func (f *fakeStrip) SetPixel(i int, c types.Color) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.pixels[i] = c
	return nil
}

func (f *fakeStrip) Refresh() error {
	frame := make([]types.Color, len(f.pixels))
	copy(frame, f.pixels)
	f.frames = append(f.frames, frame)
	f.refreshes++
	return nil
}

func (f *fakeStrip) lastFrame() []types.Color {
	if len(f.frames) == 0 {
		return nil
	}
	return f.frames[len(f.frames)-1]
}

// testRig bundles a controller with its fakes and a recorded sleep.
type testRig struct {
	c      *Controller
	pins   *fakePins
	fan    *fakePWM
	board  *fakeStrip
	touch  *fakeStrip
	sleeps []time.Duration
}

func newTestRig() *testRig {
	r := &testRig{
		pins:  newFakePins(),
		fan:   &fakePWM{},
		board: newFakeStrip(BoardStripLen),
		touch: newFakeStrip(TouchStripLen),
	}
	r.c = New(DefaultConfig(), Backend{
		Pins: r.pins, Fan: r.fan, Board: r.board, Touch: r.touch,
	})
	r.c.sleep = func(d time.Duration) { r.sleeps = append(r.sleeps, d) }
	return r
}

func newInitializedRig() *testRig {
	r := newTestRig()
	if err := r.c.Init(); err != nil {
		panic("init failed: " + err.Error())
	}
	return r
}
