package beepengine

import "math"

// silentVolume is low enough to be inaudible on a base-2 scale.
const silentVolume = -10

// levelToVolume maps a 0..1 level onto beep's base-2 volume scale:
// 1 -> 0, 0.5 -> -1, 0.25 -> -2, 0 -> silent.
func levelToVolume(level float64) float64 {
	if level <= 0 {
		return silentVolume
	}
	if level >= 1 {
		return 0
	}
	return math.Log2(level)
}

func clampLevel(level float64) float64 {
	if math.IsNaN(level) {
		return 0
	}
	return min(max(level, 0), 1)
}
