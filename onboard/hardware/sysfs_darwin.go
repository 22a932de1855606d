package hardware

import (
	"errors"
)

// Stubs so the package builds on development machines. The sysfs tree only
// exists on the rig itself.

var errNoSysfs = errors.New("sysfs GPIO is not available on darwin systems")

type SysfsPin struct {
	num int
}

func NewSysfsPin(num int, output bool) (p *SysfsPin, err error) {
	return nil, errNoSysfs
}

func (p *SysfsPin) Set(state bool) {}

func (p *SysfsPin) Get() bool {
	return false
}

func (p *SysfsPin) OnRisingEdge(fn func()) {}

type SysfsPWM struct {
	chip, channel int
}

func NewSysfsPWM(chip, channel, periodNs int) (p *SysfsPWM, err error) {
	return nil, errNoSysfs
}

func (p *SysfsPWM) SetDuty(duty uint16) {}

type SysfsADC struct {
	device, channel int
	bits            uint
}

func NewSysfsADC(device, channel int, bits uint) *SysfsADC {
	return &SysfsADC{device, channel, bits}
}

func (a *SysfsADC) ReadU16() uint16 {
	return 0
}
