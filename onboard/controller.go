package onboard

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"github.com/CodedInternet/goactsync/calcs"
	"github.com/CodedInternet/goactsync/onboard/hardware"
)

// SyncController is the closed loop that moves both actuators toward a
// shared target while holding their positional spread inside the configured
// margins. The encoder edge handlers are the only other writers it shares
// state with, and that state is limited to the atomic position counters;
// target and active flag are written by the command plane and read here, so
// no locking is needed beyond the word level atomics.
type SyncController struct {
	a, b hardware.Actuator
	tag  string

	store  StoreInterface
	tuning Tuning

	target  int64  // accessed atomically
	active  uint32 // accessed atomically
	settled uint32 // accessed atomically; pair settled latch
}

func NewSyncController(a, b hardware.Actuator, tag string, store StoreInterface, tuning Tuning) (c *SyncController) {
	c = new(SyncController)
	c.a = a
	c.b = b
	c.tag = tag
	c.store = store
	c.tuning = tuning

	// hold in place until a command arrives
	c.Stop()
	return
}

// Run executes the control law on a fixed period until the context ends.
// Both drives are zeroed on the way out.
func (c *SyncController) Run(ctx context.Context) {
	ticker := time.NewTicker(c.tuning.ControlInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.a.Motor.Drive(0)
			c.b.Motor.Drive(0)
			return
		case <-ticker.C:
			c.Tick()
		}
	}
}

// Tick runs one control cycle. Exported so the simulator harness and tests
// can step the law deterministically.
func (c *SyncController) Tick() {
	if !c.Active() {
		c.a.Motor.Drive(0)
		c.b.Motor.Drive(0)
		return
	}

	// one consistent snapshot; neither decision may see a fresher position
	// than its sibling
	posA := c.a.Encoder.Position()
	posB := c.b.Encoder.Position()
	target := c.Target()

	diffA := posA - target
	diffB := posB - target

	speedA := c.tuning.NominalSpeed
	speedB := c.tuning.NominalSpeed

	if diffA < 0 && diffB < 0 { // both extending
		if posA+c.tuning.ExtendMargin < posB {
			speedB = c.tuning.CatchupSpeed
		}
		if posB+c.tuning.ExtendMargin < posA {
			speedA = c.tuning.CatchupSpeed
		}
	}

	if diffA > 0 && diffB > 0 { // both retracting
		if posA-c.tuning.RetractMargin > posB {
			speedB = c.tuning.CatchupSpeed
		}
		if posB-c.tuning.RetractMargin > posA {
			speedA = c.tuning.CatchupSpeed
		}
	}

	aStopped := c.driveToward(c.a.Motor, diffA, speedA)
	bStopped := c.driveToward(c.b.Motor, diffB, speedB)

	// Persist exactly once per transition into the settled state, even when
	// the two actuators arrive on different ticks. Holding steady inside the
	// dead-band never rewrites the record.
	if aStopped && bStopped {
		if atomic.CompareAndSwapUint32(&c.settled, 0, 1) {
			c.persist(posA, posB)
		}
	} else {
		atomic.StoreUint32(&c.settled, 0)
	}
}

// driveToward commands one actuator against its dead-band. Returns true
// when the actuator is on target for this tick.
func (c *SyncController) driveToward(m hardware.MotorInterface, diff int64, speed int) (stopped bool) {
	switch {
	case diff > c.tuning.DeadBand:
		m.Drive(-speed)
	case diff < -c.tuning.DeadBand:
		m.Drive(speed)
	default:
		m.Drive(0)
		stopped = true
	}
	return
}

func (c *SyncController) persist(posA, posB int64) {
	if c.store == nil {
		return
	}
	if err := c.store.Store(posA, posB); err != nil {
		// a stale record only degrades recovery after power loss, never
		// live control
		log.Printf("position store: %v", err)
	}
}

//---
// Motion command surface. Last write wins; there is no queueing.
//---

// SetTarget points both actuators at an absolute tick count.
func (c *SyncController) SetTarget(pos int64) {
	atomic.StoreInt64(&c.target, pos)
}

func (c *SyncController) Target() int64 {
	return atomic.LoadInt64(&c.target)
}

// Extend drives out until stopped by a command or a mechanical limit.
func (c *SyncController) Extend() {
	c.SetTarget(c.tuning.SaturateSpan)
}

// Retract drives in until stopped by a command or a mechanical limit.
func (c *SyncController) Retract() {
	c.SetTarget(-c.tuning.SaturateSpan)
}

// Stop freezes the pair at the midpoint of where they are right now.
func (c *SyncController) Stop() {
	posA, posB := c.Positions()
	c.SetTarget(calcs.Midpoint(posA, posB))
}

// Activate gates the whole law. While false the controller forces zero
// output regardless of target, starting with the very next tick.
func (c *SyncController) Activate(state bool) {
	var v uint32
	if state {
		v = 1
	}
	atomic.StoreUint32(&c.active, v)
}

func (c *SyncController) Active() bool {
	return atomic.LoadUint32(&c.active) == 1
}

// Positions reads both counters. Each read is torn-free but the pair is not
// a snapshot; the control law takes its own.
func (c *SyncController) Positions() (posA, posB int64) {
	return c.a.Encoder.Position(), c.b.Encoder.Position()
}

// Settled reports whether the pair is currently latched inside its
// dead-bands.
func (c *SyncController) Settled() bool {
	return atomic.LoadUint32(&c.settled) == 1
}

// Seed overwrites both counters, normally from the persisted record at
// startup, and re-freezes the target around them.
func (c *SyncController) Seed(posA, posB int64) {
	c.a.Encoder.SetPosition(posA)
	c.b.Encoder.SetPosition(posB)
	c.Stop()
}

// Tuning exposes a copy of the active constants.
func (c *SyncController) Tuning() Tuning {
	return c.tuning
}
