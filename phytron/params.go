package phytron

import "fmt"

// Param identifies a numbered controller parameter (P01..P49).
type Param int

// Parameters used by the driver. The controller exposes many more; the full
// range is still cached by refreshAll so raw access and dumps stay complete.
const (
	ParamMovementType   Param = 1  // 0 = rotational, 1 = linear
	ParamMovementUnit   Param = 2  // 1 = step, 2 = mm, 3 = inch, 4 = degree
	ParamSpindlePitch   Param = 3  // reciprocal of steps per unit
	ParamHomingVelocity Param = 8  // Hz
	ParamVelocity       Param = 14 // Hz
	ParamAcceleration   Param = 15 // Hz
	ParamPosition       Param = 20 // steps
	ParamBacklash       Param = 25 // backlash compensation
	ParamInitiatorType  Param = 27 // 0 = NCC, 1 = NOC
	ParamHoldCurrent    Param = 40 // A * 10
	ParamRunCurrent     Param = 41 // A * 10
	ParamStepResolution Param = 45 // 1..256

	minParam Param = 1
	maxParam Param = 49
)

// readCmd returns the wire verb reading this parameter, e.g. "P20R".
func (p Param) readCmd() string {
	return fmt.Sprintf("P%02dR", int(p))
}

// writeCmd returns the wire verb writing value to this parameter.
func (p Param) writeCmd(value string) string {
	return fmt.Sprintf("P%02dS%s", int(p), value)
}

func (p Param) valid() bool {
	return p >= minParam && p <= maxParam
}

// Group is a cache-refresh group. A write refreshes only the group holding
// the written parameter, never the full set.
type Group int

const (
	// GroupOther holds parameters the driver does not interpret.
	GroupOther Group = iota
	// GroupSetup holds movement type/unit, spindle pitch, initiator type
	// and step resolution.
	GroupSetup
	// GroupMotion holds velocity, homing velocity and acceleration.
	GroupMotion
	// GroupPosition holds position and backlash compensation.
	GroupPosition
	// GroupCurrent holds run and hold current.
	GroupCurrent
)

var paramGroups = map[Param]Group{
	ParamMovementType:   GroupSetup,
	ParamMovementUnit:   GroupSetup,
	ParamSpindlePitch:   GroupSetup,
	ParamInitiatorType:  GroupSetup,
	ParamStepResolution: GroupSetup,
	ParamHomingVelocity: GroupMotion,
	ParamVelocity:       GroupMotion,
	ParamAcceleration:   GroupMotion,
	ParamPosition:       GroupPosition,
	ParamBacklash:       GroupPosition,
	ParamHoldCurrent:    GroupCurrent,
	ParamRunCurrent:     GroupCurrent,
}

// GroupOf returns the refresh group containing p.
func GroupOf(p Param) Group {
	if g, ok := paramGroups[p]; ok {
		return g
	}
	return GroupOther
}

// paramsInGroup lists the parameters refreshed together with g, in ascending
// order so batched reads match batched responses.
func paramsInGroup(g Group) []Param {
	var out []Param
	for p := minParam; p <= maxParam; p++ {
		if GroupOf(p) == g {
			out = append(out, p)
		}
	}
	return out
}

var paramNames = map[Param]string{
	ParamMovementType:   "type of movement",
	ParamMovementUnit:   "movement unit",
	ParamSpindlePitch:   "spindle pitch",
	ParamHomingVelocity: "homing velocity",
	ParamVelocity:       "velocity",
	ParamAcceleration:   "acceleration",
	ParamPosition:       "position",
	ParamBacklash:       "backlash compensation",
	ParamInitiatorType:  "initiator type",
	ParamHoldCurrent:    "hold current",
	ParamRunCurrent:     "run current",
	ParamStepResolution: "step resolution",
}

// Name returns a human readable parameter name, or "" for uninterpreted ones.
func (p Param) Name() string {
	return paramNames[p]
}

// MovementType selects how limit switches are treated.
type MovementType int

// Movement types. Rotational axes ignore limit switches during state
// derivation.
const (
	MovementRotational MovementType = 0
	MovementLinear     MovementType = 1
)

// MovementUnit is the physical unit positions are displayed in.
type MovementUnit int

// Movement units. On the wire the controller stores the enum value plus one.
const (
	UnitStep MovementUnit = iota
	UnitMM
	UnitInch
	UnitDegree
)

func (u MovementUnit) String() string {
	switch u {
	case UnitStep:
		return "step"
	case UnitMM:
		return "mm"
	case UnitInch:
		return "inch"
	case UnitDegree:
		return "degree"
	}
	return fmt.Sprintf("MovementUnit(%d)", int(u))
}

// InitiatorType is the limit switch contact type.
type InitiatorType int

// Initiator types: normally closed contact or normally open contact.
const (
	InitiatorNCC InitiatorType = 0
	InitiatorNOC InitiatorType = 1
)

// validStepResolutions are the microstep divisors the power stage accepts.
var validStepResolutions = []int{1, 2, 4, 8, 10, 16, 128, 256}
