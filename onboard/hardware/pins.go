package hardware

// Thin pin abstractions so the rest of the package can run against real
// sysfs lines, the simulator or test mocks.

// DigitalOut is a single output line.
type DigitalOut interface {
	Set(high bool)
}

// DigitalIn is a single input line.
type DigitalIn interface {
	Get() bool
}

// EdgeIn is an input line that can report rising edges. The registered
// handler runs on the line's event context and must be bounded: no blocking,
// no I/O. It preempts nothing in Go terms but it races the control loop, so
// anything it touches has to be safe for concurrent reads.
type EdgeIn interface {
	DigitalIn
	OnRisingEdge(fn func())
}

// PWMOut drives a PWM line with a 16 bit duty value.
type PWMOut interface {
	SetDuty(duty uint16)
}

// AnalogIn reads a raw 16 bit sample from an ADC channel.
type AnalogIn interface {
	ReadU16() uint16
}
