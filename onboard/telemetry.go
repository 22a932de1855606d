package onboard

import (
	"context"
	"fmt"
	"io"
	"time"
)

// Telemetry prints both positions and the inertial readings on a fixed
// interval, in the line format the tooling already scrapes:
//
//	<pos_a> <pos_b> <accX> <accY> <accZ> <gyroX> <gyroY> <gyroZ>
//
// It runs on its own ticker at a much lower rate than the control loop and
// shares nothing with it beyond atomic reads, so it can never delay or
// drop a control tick.
func (d *Device) Telemetry(ctx context.Context, w io.Writer) {
	ticker := time.NewTicker(d.config.Tuning.TelemetryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		posA, posB := d.Controller.Positions()
		acc := d.IMU.Acceleration()
		gyro := d.IMU.Gyro()

		fmt.Fprintf(w, "%d %d %.2f %.2f %.2f %.2f %.2f %.2f\n",
			posA, posB,
			acc.X(), acc.Y(), acc.Z(),
			gyro.X(), gyro.Y(), gyro.Z())
	}
}
