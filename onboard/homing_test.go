package onboard

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	deverrors "github.com/CodedInternet/goactsync/onboard/errors"
	"github.com/CodedInternet/goactsync/onboard/hardware"
	. "github.com/smartystreets/goconvey/convey"
)

// homingTuning shrinks every interval so the runs finish quickly.
func homingTuning() Tuning {
	t := DefaultTuning()
	t.ControlInterval = time.Millisecond
	t.HomePollInterval = 25 * time.Millisecond
	t.HomeTimeout = 2 * time.Second
	return t
}

func newHomingRig(tag string, tuning Tuning) (c *SyncController, simA, simB *SimulatedActuator) {
	simA = NewSimulatedActuator("A", 10, -20, tuning.HomeExtend+20)
	simB = NewSimulatedActuator("B", 9, -20, tuning.HomeExtend+20)

	c = NewSyncController(
		hardware.Actuator{Motor: simA, Encoder: simA},
		hardware.Actuator{Motor: simB, Encoder: simB},
		tag, nil, tuning,
	)
	c.Activate(true)
	return
}

func runRig(ctx context.Context, c *SyncController, sims ...*SimulatedActuator) {
	go c.Run(ctx)
	for _, sim := range sims {
		go sim.Run(ctx)
	}
}

func TestRetractHome(t *testing.T) {
	Convey("Retract homing from an arbitrary position", t, func() {
		tuning := homingTuning()
		c, simA, simB := newHomingRig("test", tuning)
		simA.SetPosition(137)
		simB.SetPosition(214)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		runRig(ctx, c, simA, simB)

		err := c.RetractHome(ctx)
		So(err, ShouldBeNil)

		Convey("both counters reset to the retract reference", func() {
			posA, posB := c.Positions()
			So(posA, ShouldEqual, 0)
			So(posB, ShouldEqual, 0)
		})

		Convey("the pair is left holding in place", func() {
			So(c.Target(), ShouldEqual, 0)
		})
	})
}

func TestExtendHome(t *testing.T) {
	Convey("Extend homing resets to the calibrated extension", t, func() {
		tuning := homingTuning()
		c, simA, simB := newHomingRig("test", tuning)
		simA.SetPosition(4400)
		simB.SetPosition(4380)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		runRig(ctx, c, simA, simB)

		err := c.ExtendHome(ctx)
		So(err, ShouldBeNil)

		posA, posB := c.Positions()
		So(posA, ShouldEqual, 4500)
		So(posB, ShouldEqual, 4500)
	})

	Convey("Lift class units carry the asymmetric offset on B", t, func() {
		tuning := homingTuning()
		// wide enough that the offset pair parks on the midpoint target
		tuning.DeadBand = tuning.LiftOffset
		c, simA, simB := newHomingRig("lift_rear", tuning)
		simA.SetPosition(4400)
		simB.SetPosition(4380)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		runRig(ctx, c, simA, simB)

		err := c.ExtendHome(ctx)
		So(err, ShouldBeNil)

		posA, posB := c.Positions()
		So(posA, ShouldEqual, 4500)
		So(posB, ShouldEqual, 4550)
	})
}

// creepPosition never stalls: every read advances it, like a free spinning
// coupler would.
type creepPosition struct {
	pos int64
}

func (p *creepPosition) Position() int64 {
	return atomic.AddInt64(&p.pos, 1)
}

func (p *creepPosition) SetPosition(pos int64) {
	atomic.StoreInt64(&p.pos, pos)
}

func TestHomingTimeout(t *testing.T) {
	Convey("A rig that never stalls times out instead of hanging", t, func() {
		tuning := homingTuning()
		tuning.HomeTimeout = 50 * time.Millisecond

		c := NewSyncController(
			hardware.Actuator{Motor: new(MockMotor), Encoder: new(creepPosition)},
			hardware.Actuator{Motor: new(MockMotor), Encoder: new(creepPosition)},
			"test", nil, tuning,
		)
		c.Activate(true)

		err := c.RetractHome(context.Background())
		So(err, ShouldNotBeNil)
		So(err, ShouldHaveSameTypeAs, deverrors.HomingTimeoutError{})
	})
}

func TestHomingCancel(t *testing.T) {
	Convey("Cancelling the context aborts the run", t, func() {
		tuning := homingTuning()

		c := NewSyncController(
			hardware.Actuator{Motor: new(MockMotor), Encoder: new(creepPosition)},
			hardware.Actuator{Motor: new(MockMotor), Encoder: new(creepPosition)},
			"test", nil, tuning,
		)
		c.Activate(true)

		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(20 * time.Millisecond)
			cancel()
		}()

		err := c.ExtendHome(ctx)
		So(err, ShouldNotBeNil)
		So(err, ShouldHaveSameTypeAs, deverrors.HomingCancelledError{})
	})
}
