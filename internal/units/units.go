// Package units converts speeds between the units drivers expect to see.
package units

import (
	"fmt"
	"strings"
)

// Speed is a display unit for speeds. Internally speeds are metres per second.
type Speed string

const (
	MPS Speed = "mps"
	KPH Speed = "kph"
	MPH Speed = "mph"
)

const mpsToMPH = 2.2369362920544

// ParseSpeed accepts mps, kph (or kmph) and mph in any case.
func ParseSpeed(s string) (Speed, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mps", "m/s":
		return MPS, nil
	case "kph", "kmph", "km/h":
		return KPH, nil
	case "mph":
		return MPH, nil
	}
	return "", fmt.Errorf("units: unknown speed unit %q (want mps, kph or mph)", s)
}

// FromMPS converts a speed in metres per second to u. Unknown units pass the
// value through unchanged.
func (u Speed) FromMPS(v float64) float64 {
	switch u {
	case KPH:
		return v * 3.6
	case MPH:
		return v * mpsToMPH
	default:
		return v
	}
}

// Label is the short suffix shown after a value.
func (u Speed) Label() string {
	switch u {
	case KPH:
		return "km/h"
	case MPH:
		return "mph"
	default:
		return "m/s"
	}
}

// Format renders a metres-per-second speed in u with one decimal.
func (u Speed) Format(mps float64) string {
	return fmt.Sprintf("%.1f %s", u.FromMPS(mps), u.Label())
}
