package hardware

import (
	"fmt"
	"io/ioutil"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// Sysfs implementations of the pin abstractions. These back the real rig;
// the simulator and tests provide their own.

const (
	gpioRoot = "/sys/class/gpio"
	pwmRoot  = "/sys/class/pwm"
)

type SysfsPin struct {
	num  int
	fd   int // value file, kept open for edge polling
	edge []func()
}

func exportIfNeeded(root, export string, num int) {
	// export fails with EBUSY when the pin is already exported, which is fine
	ioutil.WriteFile(root+"/"+export, []byte(strconv.Itoa(num)), 0644)
}

func NewSysfsPin(num int, output bool) (p *SysfsPin, err error) {
	p = new(SysfsPin)
	p.num = num

	exportIfNeeded(gpioRoot, "export", num)

	dir := "in"
	if output {
		dir = "out"
	}
	err = ioutil.WriteFile(p.path("direction"), []byte(dir), 0644)
	if err != nil {
		return
	}

	p.fd, err = unix.Open(p.path("value"), unix.O_RDWR, 0)
	return
}

func (p *SysfsPin) path(f string) string {
	return fmt.Sprintf("%s/gpio%d/%s", gpioRoot, p.num, f)
}

func (p *SysfsPin) Set(high bool) {
	v := []byte("0")
	if high {
		v = []byte("1")
	}
	unix.Pwrite(p.fd, v, 0)
}

func (p *SysfsPin) Get() bool {
	buf := make([]byte, 1)
	unix.Pread(p.fd, buf, 0)
	return buf[0] == '1'
}

// OnRisingEdge arms the kernel edge reporting and services it from a
// dedicated goroutine via poll(2) on the value file.
func (p *SysfsPin) OnRisingEdge(fn func()) {
	p.edge = append(p.edge, fn)
	if len(p.edge) > 1 {
		return // poller already running
	}

	ioutil.WriteFile(p.path("edge"), []byte("rising"), 0644)

	go p.poll()
}

func (p *SysfsPin) poll() {
	// initial read clears the pending event
	buf := make([]byte, 1)
	unix.Pread(p.fd, buf, 0)

	fds := []unix.PollFd{{Fd: int32(p.fd), Events: unix.POLLPRI | unix.POLLERR}}
	for {
		fds[0].Revents = 0
		n, err := unix.Poll(fds, -1)
		if err == unix.EINTR {
			continue
		}
		if err != nil || n == 0 {
			return
		}
		unix.Pread(p.fd, buf, 0)
		for _, fn := range p.edge {
			fn()
		}
	}
}

type SysfsPWM struct {
	dir    string
	period int // ns
}

// NewSysfsPWM exports channel on chip and programs the period. The original
// drivers ran at 20kHz, which is a 50000ns period.
func NewSysfsPWM(chip, channel, periodNs int) (p *SysfsPWM, err error) {
	p = new(SysfsPWM)
	p.period = periodNs
	p.dir = fmt.Sprintf("%s/pwmchip%d/pwm%d", pwmRoot, chip, channel)

	exportIfNeeded(fmt.Sprintf("%s/pwmchip%d", pwmRoot, chip), "export", channel)

	err = ioutil.WriteFile(p.dir+"/period", []byte(strconv.Itoa(periodNs)), 0644)
	if err != nil {
		return
	}
	err = ioutil.WriteFile(p.dir+"/duty_cycle", []byte("0"), 0644)
	if err != nil {
		return
	}
	err = ioutil.WriteFile(p.dir+"/enable", []byte("1"), 0644)
	return
}

func (p *SysfsPWM) SetDuty(duty uint16) {
	ns := int(int64(duty) * int64(p.period) / DutyMax)
	ioutil.WriteFile(p.dir+"/duty_cycle", []byte(strconv.Itoa(ns)), 0644)
}

// SysfsADC reads an IIO voltage channel and rescales it to 16 bits.
type SysfsADC struct {
	path string
	bits uint
}

func NewSysfsADC(device, channel int, bits uint) *SysfsADC {
	return &SysfsADC{
		path: fmt.Sprintf("/sys/bus/iio/devices/iio:device%d/in_voltage%d_raw", device, channel),
		bits: bits,
	}
}

func (a *SysfsADC) ReadU16() uint16 {
	raw, err := ioutil.ReadFile(a.path)
	if err != nil {
		return 0
	}
	v, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil {
		return 0
	}
	return uint16(v << (16 - a.bits))
}
