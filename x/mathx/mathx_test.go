package mathx

import "testing"

func TestScalePctTruncates(t *testing.T) {
	cases := []struct {
		v    uint8
		pct  uint8
		want uint8
	}{
		{255, 100, 255},
		{255, 50, 127},
		{255, 0, 0},
		{101, 50, 50},
		{1, 49, 0}, // truncation loss at low percentages
	}
	for _, c := range cases {
		if got := ScalePct(c.v, c.pct); got != c.want {
			t.Errorf("ScalePct(%d, %d) = %d, want %d", c.v, c.pct, got, c.want)
		}
	}
	// 16-bit path used for PWM duty.
	if got := ScalePct(uint16(255), 42); got != 107 {
		t.Errorf("ScalePct(255, 42) = %d, want 107", got)
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(150, 0, 100); got != 100 {
		t.Errorf("Clamp high = %d", got)
	}
	if got := Clamp(-3, 0, 100); got != 0 {
		t.Errorf("Clamp low = %d", got)
	}
	if got := Clamp(5, 100, 0); got != 5 {
		t.Errorf("Clamp swapped bounds = %d", got)
	}
}

func TestCeilDiv(t *testing.T) {
	if got := CeilDiv(uint(10), 3); got != 4 {
		t.Errorf("CeilDiv(10,3) = %d", got)
	}
	if got := CeilDiv(uint(9), 3); got != 3 {
		t.Errorf("CeilDiv(9,3) = %d", got)
	}
	if got := CeilDiv(uint(1), 0); got != 0 {
		t.Errorf("CeilDiv by zero = %d", got)
	}
}
