package onboard

import (
	"math"

	"github.com/CodedInternet/goactsync/calcs"
	"github.com/go-gl/mathgl/mgl64"
)

// LiftGeometry derives the lifted platform pose from the two extensions.
// The actuators mount a fixed distance apart, so differential extension
// tilts the platform about the axis between them.
type LiftGeometry struct {
	TickPitch  float64 // mm of travel per encoder tick
	Separation float64 // mm between the two actuator mounts
}

func DefaultLiftGeometry() LiftGeometry {
	return LiftGeometry{
		TickPitch:  calcs.DefaultTickPitch,
		Separation: 300,
	}
}

// HeightMM is the mean extension of the pair.
func (g LiftGeometry) HeightMM(posA, posB int64) float64 {
	return calcs.TravelMM(posA, g.TickPitch)/2 + calcs.TravelMM(posB, g.TickPitch)/2
}

// TiltRad is the platform tilt produced by the extension difference,
// positive when A is higher than B.
func (g LiftGeometry) TiltRad(posA, posB int64) float64 {
	delta := calcs.TravelMM(posA-posB, g.TickPitch)
	ratio := delta / g.Separation
	if ratio > 1 {
		ratio = 1
	} else if ratio < -1 {
		ratio = -1
	}
	return math.Asin(ratio)
}

func (g LiftGeometry) TiltDeg(posA, posB int64) float64 {
	return mgl64.RadToDeg(g.TiltRad(posA, posB))
}

// Normal returns the unit normal of the platform surface.
func (g LiftGeometry) Normal(posA, posB int64) mgl64.Vec3 {
	return mgl64.Rotate3DX(g.TiltRad(posA, posB)).Mul3x1(mgl64.Vec3{0, 0, 1})
}
