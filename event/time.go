package event

import (
	"time"
)

// LotVBuild is the first build that runs the game clock at 22.4 frames per
// game second.
const LotVBuild = 39576

// FrameRate returns frames per game second for a build
func FrameRate(build int) float64 {
	if build >= LotVBuild {
		return 22.4
	}
	return 16
}

// FrameDuration converts a frame count into game time
func FrameDuration(frames uint32, build int) time.Duration {
	f := time.Duration(frames)
	if build >= LotVBuild {
		// 112 frames every 5 seconds
		return f/112*5*time.Second + f%112*5*time.Second/112
	}
	return f * time.Second / 16
}

// Time returns the game time at which the event happened
func (e Event) Time(build int) time.Duration {
	return FrameDuration(e.Frame, build)
}
