package onboard

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/CodedInternet/goactsync/calcs"
	"github.com/CodedInternet/goactsync/onboard/hardware"
	"github.com/go-gl/mathgl/mgl64"
)

// Device assembles the rig: two actuators, their shared controller, the
// IMU and the persisted position record.
type Device struct {
	Controller *SyncController
	IMU        hardware.IMU
	Geometry   LiftGeometry

	actuatorA hardware.Actuator
	actuatorB hardware.Actuator

	config   SyncConfig
	store    *PositionStore
	sims     []*SimulatedActuator
	blinkers []hardware.DigitalOut
}

// DeviceState is the snapshot served to telemetry and the diagnostic
// surface.
type DeviceState struct {
	Name     string `json:"name"`
	PosA     int64  `json:"pos_a"`
	PosB     int64  `json:"pos_b"`
	Target   int64  `json:"target"`
	Active   bool   `json:"active"`
	Settled  bool   `json:"settled"`
	CurrentA float64 `json:"current_a"`
	CurrentB float64 `json:"current_b"`
	HeightMM float64 `json:"height_mm"`
	TiltDeg  float64 `json:"tilt_deg"`

	Acceleration mgl64.Vec3 `json:"acceleration"`
	Gyro         mgl64.Vec3 `json:"gyro"`
}

// NewDevice builds the device from config. With simulated set the hardware
// is replaced by the linear response model and no pins are touched.
func NewDevice(config SyncConfig, simulated bool) (d *Device, err error) {
	d = new(Device)
	d.config = config
	d.Geometry = DefaultLiftGeometry()

	d.store = NewPositionStore(config.Store, config.Name)

	if simulated {
		// mismatched rates so the spread logic has something to do
		simA := NewSimulatedActuator("A", 10, -20, config.Tuning.HomeExtend+20)
		simB := NewSimulatedActuator("B", 9, -20, config.Tuning.HomeExtend+20)
		d.sims = []*SimulatedActuator{simA, simB}

		d.actuatorA = hardware.Actuator{Motor: simA, Encoder: simA, Current: SimulatedCurrent{}}
		d.actuatorB = hardware.Actuator{Motor: simB, Encoder: simB, Current: SimulatedCurrent{}}
		d.IMU = NewSimulatedIMU()
	} else {
		d.actuatorA, err = buildActuator(config.ActuatorA)
		if err != nil {
			return nil, fmt.Errorf("actuator A: %v", err)
		}
		d.actuatorB, err = buildActuator(config.ActuatorB)
		if err != nil {
			return nil, fmt.Errorf("actuator B: %v", err)
		}

		d.IMU, err = hardware.NewLSM6DSOX(config.IMUDevice, config.IMUAddress)
		if err != nil {
			return nil, fmt.Errorf("imu: %v", err)
		}

		for _, num := range config.Indicators {
			pin, perr := hardware.NewSysfsPin(num, true)
			if perr != nil {
				log.Printf("indicator %d: %v", num, perr)
				continue
			}
			d.blinkers = append(d.blinkers, pin)
		}
	}

	d.Controller = NewSyncController(d.actuatorA, d.actuatorB, config.Name, d.store, config.Tuning)

	// recover absolute position from the last settle event
	tag, posA, posB, err := d.store.Load()
	if err != nil {
		// fresh install or corrupted record; motion still works, recovery
		// accuracy is simply lost until the next home
		log.Printf("position store: %v, starting from zero", err)
		d.store.EnsureDir()
		err = nil
	} else {
		if tag != config.Name {
			log.Printf("position store: record belongs to %q, expected %q", tag, config.Name)
		}
		d.Controller.Seed(posA, posB)
	}

	return
}

func buildActuator(pins PinConfig) (a hardware.Actuator, err error) {
	sleep, err := hardware.NewSysfsPin(pins.Sleep, true)
	if err != nil {
		return
	}
	dir, err := hardware.NewSysfsPin(pins.Dir, true)
	if err != nil {
		return
	}
	pwm, err := hardware.NewSysfsPWM(0, pins.PWM, 50000) // 20kHz
	if err != nil {
		return
	}
	encA, err := hardware.NewSysfsPin(pins.EncA, false)
	if err != nil {
		return
	}
	encB, err := hardware.NewSysfsPin(pins.EncB, false)
	if err != nil {
		return
	}

	driver := hardware.NewDriver(sleep, dir, pwm)
	driver.Enable()

	a.Motor = driver
	a.Encoder = hardware.NewEncoder(encA, encB)
	a.Current = hardware.NewSysfsADC(0, pins.ADC, 12)
	return
}

// Run starts the control loop plus, in simulator mode, the physics.
func (d *Device) Run(ctx context.Context) {
	for _, sim := range d.sims {
		go sim.Run(ctx)
	}
	go d.Controller.Run(ctx)
}

// Blink runs the startup indicator pattern: two pulses on every indicator
// line. Best effort only.
func (d *Device) Blink() {
	for i := 0; i < 2; i++ {
		for _, pin := range d.blinkers {
			pin.Set(true)
		}
		time.Sleep(200 * time.Millisecond)
		for _, pin := range d.blinkers {
			pin.Set(false)
		}
		time.Sleep(200 * time.Millisecond)
	}
}

// GetState snapshots everything the telemetry and diagnostic surfaces
// expose.
func (d *Device) GetState() (state DeviceState) {
	state.Name = d.config.Name
	state.PosA, state.PosB = d.Controller.Positions()
	state.Target = d.Controller.Target()
	state.Active = d.Controller.Active()
	state.Settled = d.Controller.Settled()
	state.CurrentA = d.actuatorA.CurrentAmps()
	state.CurrentB = d.actuatorB.CurrentAmps()
	state.HeightMM = d.Geometry.HeightMM(state.PosA, state.PosB)
	state.TiltDeg = d.Geometry.TiltDeg(state.PosA, state.PosB)
	state.Acceleration = d.IMU.Acceleration()
	state.Gyro = d.IMU.Gyro()
	return
}

// Config returns the loaded device config.
func (d *Device) Config() SyncConfig {
	return d.config
}

// TravelMM reports the mean extension in millimetres.
func (d *Device) TravelMM() float64 {
	posA, posB := d.Controller.Positions()
	return calcs.TravelMM(calcs.Midpoint(posA, posB), calcs.DefaultTickPitch)
}
