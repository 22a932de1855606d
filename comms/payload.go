package comms

import (
	"github.com/CodedInternet/goactsync/onboard"
)

// StatePayload is the message pushed to every subscribed client on each
// telemetry interval.
type StatePayload struct {
	onboard.DeviceState
	TravelMM float64 `json:"travel_mm"`
}
