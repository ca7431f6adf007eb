package models

import (
	"fmt"
	"strings"
)

// ActivityKind is the canonical activity classification vocabulary. It
// mirrors the detected-activity types reported by mobile activity
// recognition providers.
type ActivityKind string

const (
	ActivityInVehicle ActivityKind = "in_vehicle"
	ActivityOnBicycle ActivityKind = "on_bicycle"
	ActivityOnFoot    ActivityKind = "on_foot"
	ActivityStill     ActivityKind = "still"
	ActivityTilting   ActivityKind = "tilting"
	ActivityWalking   ActivityKind = "walking"
	ActivityRunning   ActivityKind = "running"
	ActivityUnknown   ActivityKind = "unknown"
)

// Raw provider codes for detected activities, as delivered by the
// activity-recognition collaborator.
const (
	RawInVehicle = 0
	RawOnBicycle = 1
	RawOnFoot    = 2
	RawStill     = 3
	RawUnknown   = 4
	RawTilting   = 5
	RawWalking   = 7
	RawRunning   = 8
)

// ParseActivityKind converts a user- or wire-supplied name into an
// ActivityKind.
func ParseActivityKind(s string) (ActivityKind, error) {
	switch ActivityKind(strings.ToLower(strings.TrimSpace(s))) {
	case ActivityInVehicle:
		return ActivityInVehicle, nil
	case ActivityOnBicycle:
		return ActivityOnBicycle, nil
	case ActivityOnFoot:
		return ActivityOnFoot, nil
	case ActivityStill:
		return ActivityStill, nil
	case ActivityTilting:
		return ActivityTilting, nil
	case ActivityWalking:
		return ActivityWalking, nil
	case ActivityRunning:
		return ActivityRunning, nil
	case ActivityUnknown:
		return ActivityUnknown, nil
	}
	return "", fmt.Errorf("unknown activity kind %q", s)
}

// ActivityKindFromRaw maps a raw provider code to its canonical kind.
// Unrecognized codes map to ActivityUnknown.
func ActivityKindFromRaw(code int) ActivityKind {
	switch code {
	case RawInVehicle:
		return ActivityInVehicle
	case RawOnBicycle:
		return ActivityOnBicycle
	case RawOnFoot:
		return ActivityOnFoot
	case RawStill:
		return ActivityStill
	case RawTilting:
		return ActivityTilting
	case RawWalking:
		return ActivityWalking
	case RawRunning:
		return ActivityRunning
	}
	return ActivityUnknown
}

// ActivitySample is one entry of an activity-recognition result. Providers
// may deliver several ranked candidates per result; each sample carries its
// own confidence in [0, 100].
type ActivitySample struct {
	// Kind is the canonical classification. When empty, RawType is
	// consulted instead.
	Kind ActivityKind `json:"kind,omitempty"`

	// RawType is the provider's integer code for the classification. Only
	// used when Kind is empty.
	RawType *int `json:"raw_type,omitempty"`

	// Confidence is the provider's confidence in [0, 100].
	Confidence int `json:"confidence"`
}

// ResolveKind returns the canonical kind of the sample, consulting the raw
// provider code when no kind was given. The second return is false when the
// sample names no recognizable activity at all.
func (s ActivitySample) ResolveKind() (ActivityKind, bool) {
	if s.Kind != "" {
		kind, err := ParseActivityKind(string(s.Kind))
		if err != nil {
			return ActivityUnknown, false
		}
		return kind, true
	}
	if s.RawType != nil {
		return ActivityKindFromRaw(*s.RawType), true
	}
	return ActivityUnknown, false
}
