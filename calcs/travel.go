package calcs

import "math"

// DefaultTickPitch is the travel per encoder tick in mm for the stock
// actuators: the 50 tick lift offset corresponds to an eighth of an inch.
const DefaultTickPitch = 3.175 / 50

// TravelMM converts a tick count to millimetres of extension.
func TravelMM(ticks int64, pitch float64) float64 {
	return float64(ticks) * pitch
}

// Ticks converts millimetres of extension to the nearest whole encoder
// tick.
func Ticks(mm float64, pitch float64) int64 {
	return int64(math.Round(mm / pitch))
}

// Midpoint returns the integer midpoint of two positions. This is the
// freeze-in-place target used by stop.
func Midpoint(a, b int64) int64 {
	return (a + b) / 2
}

// Clamp bounds v to lo..hi.
func Clamp(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
