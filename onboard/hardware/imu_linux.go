package hardware

import (
	"fmt"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/sys/unix"
)

const (
	i2cSlave = 0x0703 // I2C_SLAVE ioctl

	lsmWhoAmI   = 0x0F
	lsmChipID   = 0x6C
	lsmCtrl1XL  = 0x10
	lsmCtrl2G   = 0x11
	lsmOutXLG   = 0x22
	lsmOutXLXL  = 0x28
	lsmOdr104Hz = 0x40

	// sensitivities at the default full scale ranges
	lsmAccelScale = 0.061 * 9.80665 / 1000 // 2g, mg/LSB to m/s^2
	lsmGyroScale  = 8.75 / 1000            // 250dps, mdps/LSB to deg/s
)

// LSM6DSOX reads the combined accelerometer/gyro over an i2c-dev device.
type LSM6DSOX struct {
	fd   int
	lock sync.Mutex
}

func NewLSM6DSOX(dev string, addr int) (imu *LSM6DSOX, err error) {
	imu = new(LSM6DSOX)

	imu.fd, err = unix.Open(dev, unix.O_RDWR, 0)
	if err != nil {
		return
	}

	err = unix.IoctlSetInt(imu.fd, i2cSlave, addr)
	if err != nil {
		return
	}

	id, err := imu.readReg(lsmWhoAmI, 1)
	if err != nil {
		return
	}
	if id[0] != lsmChipID {
		err = fmt.Errorf("lsm6dsox: unexpected chip id 0x%02X", id[0])
		return
	}

	// 104Hz output on both sensors, default full scale
	err = imu.writeReg(lsmCtrl1XL, lsmOdr104Hz)
	if err != nil {
		return
	}
	err = imu.writeReg(lsmCtrl2G, lsmOdr104Hz)
	return
}

func (imu *LSM6DSOX) writeReg(reg, val byte) (err error) {
	imu.lock.Lock()
	defer imu.lock.Unlock()
	_, err = unix.Write(imu.fd, []byte{reg, val})
	return
}

func (imu *LSM6DSOX) readReg(reg byte, n int) (buf []byte, err error) {
	imu.lock.Lock()
	defer imu.lock.Unlock()

	_, err = unix.Write(imu.fd, []byte{reg})
	if err != nil {
		return
	}

	buf = make([]byte, n)
	_, err = unix.Read(imu.fd, buf)
	return
}

func (imu *LSM6DSOX) readVec(reg byte, scale float64) (v mgl64.Vec3) {
	buf, err := imu.readReg(reg, 6)
	if err != nil {
		return
	}
	for i := 0; i < 3; i++ {
		raw := int16(uint16(buf[2*i]) | uint16(buf[2*i+1])<<8)
		v[i] = float64(raw) * scale
	}
	return
}

func (imu *LSM6DSOX) Acceleration() mgl64.Vec3 {
	return imu.readVec(lsmOutXLXL, lsmAccelScale)
}

func (imu *LSM6DSOX) Gyro() mgl64.Vec3 {
	return imu.readVec(lsmOutXLG, lsmGyroScale)
}
