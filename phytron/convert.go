package phytron

import (
	"math"
	"strconv"
)

// Unit and sign conversion between raw controller values and user values.
// The controller stores the reciprocal of steps-per-unit ("spindle pitch",
// manual p. 50); the inversion flag flips the sign of position, set-point
// and backlash compensation.

// applySign negates v when the axis is inverted.
func applySign(v float64, inverted bool) float64 {
	if inverted {
		return -v
	}
	return v
}

// stepsPerUnitFromPitch converts the stored spindle pitch to steps per unit.
func stepsPerUnitFromPitch(pitch float64) float64 {
	return 1 / pitch
}

// pitchFromStepsPerUnit converts steps per unit to the stored spindle pitch.
func pitchFromStepsPerUnit(spu float64) float64 {
	return 1 / spu
}

// DisplayFormat returns the printf format for positions: integer when the
// reciprocal of steps-per-unit is an exact integer, three decimals otherwise.
func DisplayFormat(stepsPerUnit float64) string {
	if math.Mod(1/stepsPerUnit, 1) == 0 {
		return "%8d"
	}
	return "%8.3f"
}

// backlashRaw converts a user-facing backlash compensation value to the raw
// integer the controller stores. The MCC-2 stores signed steps as written;
// the phyMOTION convention stores the negated value scaled by steps-per-unit.
// Inversion flips the sign either way.
func (p *profile) backlashRaw(value, stepsPerUnit float64, inverted bool) int {
	if p.backlashFromSteps {
		return int(applySign(value, inverted))
	}
	return int(applySign(-value*stepsPerUnit, inverted))
}

// backlashValue is the inverse of backlashRaw.
func (p *profile) backlashValue(raw int, stepsPerUnit float64, inverted bool) float64 {
	if p.backlashFromSteps {
		return applySign(float64(raw), inverted)
	}
	return applySign(-float64(raw)/stepsPerUnit, inverted)
}

// parseFloat reads a controller float response. The controller may answer a
// bare NACK payload for unset parameters; those parse as zero.
func parseFloat(raw string) float64 {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return v
}

// parseInt reads a controller integer response, tolerating float formatting.
func parseInt(raw string) int {
	if v, err := strconv.Atoi(raw); err == nil {
		return v
	}
	return int(parseFloat(raw))
}
