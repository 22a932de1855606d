package hardware

import (
	"errors"

	"github.com/go-gl/mathgl/mgl64"
)

// Stub so the package builds on development machines.

type LSM6DSOX struct{}

func NewLSM6DSOX(dev string, addr int) (imu *LSM6DSOX, err error) {
	return nil, errors.New("i2c-dev is not available on darwin systems")
}

func (imu *LSM6DSOX) Acceleration() (v mgl64.Vec3) {
	return
}

func (imu *LSM6DSOX) Gyro() (v mgl64.Vec3) {
	return
}
