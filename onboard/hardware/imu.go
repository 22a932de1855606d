package hardware

import "github.com/go-gl/mathgl/mgl64"

// IMU exposes the inertial readings consumed once per telemetry tick.
// Acceleration is m/s^2, Gyro is deg/s.
type IMU interface {
	Acceleration() mgl64.Vec3
	Gyro() mgl64.Vec3
}
