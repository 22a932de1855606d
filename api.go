package main

import (
	"net/http"

	"github.com/CodedInternet/goactsync/comms"
	"github.com/go-chi/render"
)

// statePayload snapshots the device for the API and the telemetry stream.
func statePayload() comms.StatePayload {
	return comms.StatePayload{
		DeviceState: ENV.Device.GetState(),
		TravelMM:    ENV.Device.TravelMM(),
	}
}

// GetState serves the device snapshot.
func GetState(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, statePayload())
}

// Health is the unauthenticated liveness check.
func Health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]bool{
		"ok":     true,
		"active": ENV.Device.Controller.Active(),
	})
}
