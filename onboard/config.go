package onboard

import (
	"io/ioutil"
	"time"

	deverrors "github.com/CodedInternet/goactsync/onboard/errors"
	"github.com/Masterminds/semver"
	"gopkg.in/yaml.v2"
)

const (
	// CONFIG_VERSION is the schema constraint this build understands.
	CONFIG_VERSION = "~1.0.0"
)

// PinConfig names the lines wired to one actuator.
type PinConfig struct {
	Sleep int `yaml:"slp"`
	Dir   int `yaml:"dir"`
	PWM   int `yaml:"pwm"`
	EncA  int `yaml:"enc_a"`
	EncB  int `yaml:"enc_b"`
	ADC   int `yaml:"adc"`
}

// Tuning carries every constant of the control law. Distances are encoder
// ticks, speeds are PWM duty counts out of hardware.DutyMax, intervals are
// configured in milliseconds.
type Tuning struct {
	DeadBand      int64 // arrival window around the target
	ExtendMargin  int64 // spread allowed while extending
	RetractMargin int64 // spread allowed while retracting
	NominalSpeed  int
	CatchupSpeed  int   // leader speed once spread opens
	SaturateSpan  int64 // extend/retract pseudo target
	HomeRetract   int64 // position written after a retract home
	HomeExtend    int64 // position written after an extend home
	LiftOffset    int64 // extra B offset on lift class units

	ControlInterval   time.Duration
	TelemetryInterval time.Duration
	HomePollInterval  time.Duration
	HomeTimeout       time.Duration
}

// yamlTuning is the on-disk shape of Tuning.
type yamlTuning struct {
	DeadBand      *int64 `yaml:"dead_band"`
	ExtendMargin  *int64 `yaml:"extend_margin"`
	RetractMargin *int64 `yaml:"retract_margin"`
	NominalSpeed  *int   `yaml:"nominal_speed"`
	CatchupSpeed  *int   `yaml:"catchup_speed"`
	SaturateSpan  *int64 `yaml:"saturate_span"`
	HomeRetract   *int64 `yaml:"home_retract"`
	HomeExtend    *int64 `yaml:"home_extend"`
	LiftOffset    *int64 `yaml:"lift_offset"`

	ControlMS   *int `yaml:"control_ms"`
	TelemetryMS *int `yaml:"telemetry_ms"`
	HomePollMS  *int `yaml:"home_poll_ms"`
	HomeoutMS   *int `yaml:"home_timeout_ms"`
}

// DefaultTuning returns the values the original rig shipped with.
func DefaultTuning() Tuning {
	return Tuning{
		DeadBand:      10,
		ExtendMargin:  5,
		RetractMargin: 10,
		NominalSpeed:  63000,
		CatchupSpeed:  55000,
		SaturateSpan:  1000000,
		HomeRetract:   0,
		HomeExtend:    4500,
		LiftOffset:    50,

		ControlInterval:   10 * time.Millisecond,
		TelemetryInterval: 250 * time.Millisecond,
		HomePollInterval:  200 * time.Millisecond,
		HomeTimeout:       30 * time.Second,
	}
}

func (t *Tuning) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var yt yamlTuning
	if err := unmarshal(&yt); err != nil {
		return err
	}

	*t = DefaultTuning()

	setI64 := func(dst *int64, src *int64) {
		if src != nil {
			*dst = *src
		}
	}
	setI64(&t.DeadBand, yt.DeadBand)
	setI64(&t.ExtendMargin, yt.ExtendMargin)
	setI64(&t.RetractMargin, yt.RetractMargin)
	setI64(&t.SaturateSpan, yt.SaturateSpan)
	setI64(&t.HomeRetract, yt.HomeRetract)
	setI64(&t.HomeExtend, yt.HomeExtend)
	setI64(&t.LiftOffset, yt.LiftOffset)

	if yt.NominalSpeed != nil {
		t.NominalSpeed = *yt.NominalSpeed
	}
	if yt.CatchupSpeed != nil {
		t.CatchupSpeed = *yt.CatchupSpeed
	}

	setMS := func(dst *time.Duration, src *int) {
		if src != nil {
			*dst = time.Duration(*src) * time.Millisecond
		}
	}
	setMS(&t.ControlInterval, yt.ControlMS)
	setMS(&t.TelemetryInterval, yt.TelemetryMS)
	setMS(&t.HomePollInterval, yt.HomePollMS)
	setMS(&t.HomeTimeout, yt.HomeoutMS)

	return nil
}

type SyncConfig struct {
	Version string `yaml:"version"`
	Name    string `yaml:"name"` // identity tag, also persisted with positions
	Store   string `yaml:"store"`

	Tuning Tuning `yaml:"tuning"`

	ActuatorA PinConfig `yaml:"actuator_a"`
	ActuatorB PinConfig `yaml:"actuator_b"`

	IMUDevice  string `yaml:"imu_device"`
	IMUAddress int    `yaml:"imu_address"`

	Indicators []int `yaml:"indicators,flow"`
}

// Validate gates the schema version the same way node firmware used to be
// gated: anything outside the constraint is refused up front.
func (c *SyncConfig) Validate() (err error) {
	v, err := semver.NewVersion(c.Version)
	if err != nil {
		return deverrors.ConfigVersionError{Version: c.Version, Constraint: CONFIG_VERSION}
	}

	constraint, err := semver.NewConstraint(CONFIG_VERSION)
	if err != nil {
		return
	}

	if !constraint.Check(v) {
		return deverrors.ConfigVersionError{Version: c.Version, Constraint: CONFIG_VERSION}
	}
	return nil
}

// LoadConfig reads and validates the device config.
func LoadConfig(path string) (c SyncConfig, err error) {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return
	}

	c.Tuning = DefaultTuning() // in case the file omits the block entirely
	err = yaml.Unmarshal(raw, &c)
	if err != nil {
		return
	}

	err = c.Validate()
	return
}
