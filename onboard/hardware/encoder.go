package hardware

import "sync/atomic"

// Encoder tracks the absolute position of one actuator from a quadrature
// encoder. A rising edge on phase A samples phase B in the same event:
// B low means forward travel (+1 tick), B high means reverse (-1 tick).
// The opposite wiring direction is handled by swapping the lines at
// deployment, never per read.
type Encoder struct {
	pos int64 // accessed atomically

	b DigitalIn
}

// PositionInterface is the read/reset surface the controller and homing
// routine use. The edge handler is the only writer that increments; resets
// come from homing and the startup seed.
type PositionInterface interface {
	Position() int64
	SetPosition(pos int64)
}

// NewEncoder registers the edge handler on phase A and returns the tracker.
func NewEncoder(a EdgeIn, b DigitalIn) (e *Encoder) {
	e = new(Encoder)
	e.b = b
	a.OnRisingEdge(e.handleEdge)
	return
}

// handleEdge runs on the encoder event context. Keep this bounded; it only
// samples phase B and bumps the counter.
func (e *Encoder) handleEdge() {
	if e.b.Get() {
		atomic.AddInt64(&e.pos, -1)
	} else {
		atomic.AddInt64(&e.pos, 1)
	}
}

// Position returns the current tick count without tearing.
func (e *Encoder) Position() int64 {
	return atomic.LoadInt64(&e.pos)
}

// SetPosition overwrites the tick count. Used by homing to establish the
// calibrated reference and at startup to seed from the persisted record.
func (e *Encoder) SetPosition(pos int64) {
	atomic.StoreInt64(&e.pos, pos)
}
