package hardware

// Actuator pairs one motor driver with its position tracker and the current
// sense line of the driver carrier.
type Actuator struct {
	Motor   MotorInterface
	Encoder PositionInterface
	Current AnalogIn
}

// CurrentAmps converts the raw sense sample to amps. The carrier outputs
// 20mV/A on top of a 50mV offset into a 3.3V 16 bit reading.
func (a *Actuator) CurrentAmps() float64 {
	if a.Current == nil {
		return 0
	}
	raw := a.Current.ReadU16()
	return (float64(raw)*3.3/65535 - 0.05) * 50
}
