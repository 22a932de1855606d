package onboard

import (
	"context"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/CodedInternet/goactsync/onboard/hardware"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	SIM_STEP_INTERVAL = 2 * time.Millisecond
	SIM_IMU_DELTA     = 0.05
)

// SimulatedActuator models one actuator with a linear response: commanded
// duty moves the position proportionally each step, and travel is clamped
// at the mechanical limits so homing sees a genuine stall. It implements
// both the motor and the position side so it stands in for a full
// encoder/driver pair.
type SimulatedActuator struct {
	name string

	pos   int64 // accessed atomically
	speed int64 // accessed atomically, commanded duty

	rate     float64 // ticks per step at full duty
	min, max int64   // hard stops
}

func NewSimulatedActuator(name string, rate float64, min, max int64) (m *SimulatedActuator) {
	m = new(SimulatedActuator)
	m.name = name
	m.rate = rate
	m.min = min
	m.max = max
	return
}

func (m *SimulatedActuator) Drive(speed int) {
	if speed > hardware.DutyMax {
		speed = hardware.DutyMax
	} else if speed < -hardware.DutyMax {
		speed = -hardware.DutyMax
	}
	atomic.StoreInt64(&m.speed, int64(speed))
}

func (m *SimulatedActuator) Position() int64 {
	return atomic.LoadInt64(&m.pos)
}

func (m *SimulatedActuator) SetPosition(pos int64) {
	atomic.StoreInt64(&m.pos, pos)
}

// Step advances the physics by one interval.
func (m *SimulatedActuator) Step() {
	speed := atomic.LoadInt64(&m.speed)
	moved := int64(float64(speed) * m.rate / hardware.DutyMax)
	if moved == 0 {
		return
	}

	pos := atomic.LoadInt64(&m.pos) + moved
	if pos < m.min {
		pos = m.min // crashed into the retract stop
	} else if pos > m.max {
		pos = m.max // crashed into the extend stop
	}
	atomic.StoreInt64(&m.pos, pos)
}

// Run steps the model on a fixed interval until the context ends.
func (m *SimulatedActuator) Run(ctx context.Context) {
	ticker := time.NewTicker(SIM_STEP_INTERVAL)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Step()
		}
	}
}

// SimulatedIMU produces a slow random walk around gravity on Z.
type SimulatedIMU struct {
	accel mgl64.Vec3
	gyro  mgl64.Vec3
}

func NewSimulatedIMU() *SimulatedIMU {
	return &SimulatedIMU{accel: mgl64.Vec3{0, 0, 9.81}}
}

func (s *SimulatedIMU) Acceleration() mgl64.Vec3 {
	for i := range s.accel {
		s.accel[i] += rand.Float64()*SIM_IMU_DELTA*2 - SIM_IMU_DELTA
	}
	return s.accel
}

func (s *SimulatedIMU) Gyro() mgl64.Vec3 {
	for i := range s.gyro {
		s.gyro[i] += rand.Float64()*SIM_IMU_DELTA*2 - SIM_IMU_DELTA
	}
	return s.gyro
}

// SimulatedCurrent reads a plausible idle current.
type SimulatedCurrent struct{}

func (SimulatedCurrent) ReadU16() uint16 {
	return uint16(1000 + rand.Intn(200))
}
