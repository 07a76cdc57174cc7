package domain

import "fmt"

// PostureReading is one head-pose sample from the camera pipeline.
type PostureReading struct {
	TiltDeg float64 // lateral head tilt
	NodDeg  float64 // forward nod
}

// PostureThresholds bound an acceptable reading. Zero values fall back
// to DefaultPostureThresholds.
type PostureThresholds struct {
	MaxTiltDeg float64
	MaxNodDeg  float64
}

// DefaultPostureThresholds match the camera monitor's defaults.
var DefaultPostureThresholds = PostureThresholds{MaxTiltDeg: 12, MaxNodDeg: 15}

// EvaluatePosture classifies a reading against the thresholds and
// returns ok plus a short reason when it is not.
func EvaluatePosture(r PostureReading, t PostureThresholds) (bool, string) {
	if t.MaxTiltDeg == 0 {
		t.MaxTiltDeg = DefaultPostureThresholds.MaxTiltDeg
	}
	if t.MaxNodDeg == 0 {
		t.MaxNodDeg = DefaultPostureThresholds.MaxNodDeg
	}
	abs := func(v float64) float64 {
		if v < 0 {
			return -v
		}
		return v
	}
	switch {
	case abs(r.TiltDeg) > t.MaxTiltDeg:
		return false, fmt.Sprintf("tilt %.1f exceeds %.1f", r.TiltDeg, t.MaxTiltDeg)
	case abs(r.NodDeg) > t.MaxNodDeg:
		return false, fmt.Sprintf("nod %.1f exceeds %.1f", r.NodDeg, t.MaxNodDeg)
	default:
		return true, ""
	}
}
