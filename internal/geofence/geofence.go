// Package geofence evaluates positions against circular scenario fences.
package geofence

import (
	"math"

	"github.com/contextd-io/contextd/internal/models"
)

const earthRadiusMeters = 6371000.0

// Result describes the outcome of evaluating a fix against a fence.
type Result struct {
	// Inside is true iff the fix lies strictly within the fence radius.
	// Always false when the scenario has no configured fence.
	Inside bool

	// DistanceMeters is the great-circle distance from the fix to the
	// fence center, or -1 when no fence is configured.
	DistanceMeters float64
}

// Evaluate computes fence occupancy for a fix. A scenario without a fence is
// never inside one; occupancy uses a strict distance < radius comparison.
func Evaluate(fix models.LocationFix, cfg models.ScenarioConfig) Result {
	if !cfg.HasFence() || !fix.Valid() {
		return Result{Inside: false, DistanceMeters: -1}
	}

	distance := DistanceMeters(fix.Latitude, fix.Longitude, cfg.Latitude, cfg.Longitude)
	return Result{
		Inside:         distance < float64(cfg.RadiusMeters),
		DistanceMeters: distance,
	}
}

// DistanceMeters computes the haversine great-circle distance between two
// coordinates in meters. Meter-level accuracy, which is enough for fence
// radii measured in tens of meters.
func DistanceMeters(lat1, lng1, lat2, lng2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}
