package mathx

// ScalePct returns v*pct/100 with 32-bit intermediates, truncating.
// This is the one scaling rule for duty cycles and LED brightness:
// truncation loss at low percentages is expected and accepted.
func ScalePct[T ~uint8 | ~uint16 | ~uint32](v T, pct uint8) T {
	return T(uint32(v) * uint32(pct) / 100)
}

// CeilDiv returns ceil(a/b) for positive integers.
func CeilDiv[T ~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64](a, b T) T {
	if b == 0 {
		return 0
	}
	return (a + b - 1) / b
}
