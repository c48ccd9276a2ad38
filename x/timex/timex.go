package timex

import "time"

// SinceMs returns elapsed milliseconds since t.
func SinceMs(t time.Time) int64 { return time.Since(t).Milliseconds() }
