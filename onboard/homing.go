package onboard

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/CodedInternet/goactsync/calcs"
	deverrors "github.com/CodedInternet/goactsync/onboard/errors"
)

// Homing drives the pair into a mechanical end-stop and uses the stall -
// no encoder motion across a full poll interval - to establish an absolute
// reference. It blocks the calling goroutine for hundreds of milliseconds
// to seconds and must never run on the control loop itself. The controller
// must be active or the pair will never move and the run times out.

// RetractHome drives fully in and resets both counters to the retract
// reference.
func (c *SyncController) RetractHome(ctx context.Context) error {
	return c.home(ctx, false)
}

// ExtendHome drives fully out and resets both counters to the calibrated
// full-extension count. Lift class units carry an extra offset on actuator
// B for their asymmetric geometry.
func (c *SyncController) ExtendHome(ctx context.Context) error {
	return c.home(ctx, true)
}

func (c *SyncController) home(ctx context.Context, extend bool) (err error) {
	direction := "retract"
	if extend {
		direction = "extend"
	}

	if extend {
		c.Extend()
	} else {
		c.Retract()
	}

	start := time.Now()
	deadline := start.Add(c.tuning.HomeTimeout)

	ticker := time.NewTicker(c.tuning.HomePollInterval)
	defer ticker.Stop()

	lastA, lastB := c.Positions()
	for {
		select {
		case <-ctx.Done():
			c.Stop()
			return deverrors.HomingCancelledError{Direction: direction}
		case <-ticker.C:
		}

		posA, posB := c.Positions()
		if posA == lastA && posB == lastB {
			// neither encoder moved for a full interval: hard stop reached
			break
		}
		lastA, lastB = posA, posB

		if time.Now().After(deadline) {
			c.Stop()
			return deverrors.HomingTimeoutError{Direction: direction, Elapsed: time.Since(start)}
		}
	}

	// Freeze the hold target before touching the counters so the loop never
	// sees reset positions against the saturated homing target.
	refA, refB := c.tuning.HomeRetract, c.tuning.HomeRetract
	if extend {
		refA = c.tuning.HomeExtend
		refB = c.tuning.HomeExtend
		if strings.Contains(c.tag, "lift") {
			refB += c.tuning.LiftOffset
		}
	}
	c.SetTarget(calcs.Midpoint(refA, refB))
	c.a.Encoder.SetPosition(refA)
	c.b.Encoder.SetPosition(refB)

	log.Printf("homing: %sed in %s", direction, time.Since(start).Round(time.Millisecond))
	return nil
}
