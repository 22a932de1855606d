package hardware

// DutyMax is the full scale of the PWM resolution. Speeds passed to Drive
// range over -DutyMax..+DutyMax.
const DutyMax = 65535

type MotorInterface interface {
	Drive(speed int)
}

// Driver translates a signed speed into direction pin state plus PWM duty
// for one actuator. Positive speed extends, negative retracts.
type Driver struct {
	sleep DigitalOut
	dir   DigitalOut
	pwm   PWMOut

	enabled bool
}

func NewDriver(sleep, dir DigitalOut, pwm PWMOut) (d *Driver) {
	d = new(Driver)
	d.sleep = sleep
	d.dir = dir
	d.pwm = pwm
	d.pwm.SetDuty(0)
	return
}

// Enable asserts the sleep pin. Drive never deasserts it again; a zero
// speed de-energises the coil but leaves the driver awake.
func (d *Driver) Enable() {
	d.sleep.Set(true)
	d.enabled = true
}

func (d *Driver) Disable() {
	d.sleep.Set(false)
	d.enabled = false
}

func (d *Driver) Enabled() bool {
	return d.enabled
}

// Drive commands the actuator. Out of range magnitudes are clamped, not
// rejected; there is no error path on the drive side.
func (d *Driver) Drive(speed int) {
	if speed > DutyMax {
		speed = DutyMax
	} else if speed < -DutyMax {
		speed = -DutyMax
	}

	d.dir.Set(speed >= 0)

	if speed < 0 {
		speed = -speed
	}
	d.pwm.SetDuty(uint16(speed))
}
