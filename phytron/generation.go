package phytron

import "fmt"

// Generation selects the protocol generation of the connected controller.
// The generations differ in axis addressing, status encoding and backlash
// storage convention; all of that is fixed here at configuration time so no
// code path branches on magic axis numbers at runtime.
type Generation string

// Supported protocol generations.
const (
	// GenerationMCC2 is the original MCC-2 module firmware: numeric module
	// address plus axis letter, narrow bit-window status word, backlash
	// stored as signed steps.
	GenerationMCC2 Generation = "mcc2"
	// GenerationPhyMotion is the phyMOTION firmware: "<axis>.1" addressing,
	// hex-nibble packed status word, backlash stored as negated steps
	// derived from user units.
	GenerationPhyMotion Generation = "phymotion"
)

// AxisState is the derived state of one axis. It is recomputed on every
// poll and never cached across polls.
type AxisState int

// Axis states.
const (
	StateOn AxisState = iota
	StateMoving
	StateAlarm
	StateFault
)

func (s AxisState) String() string {
	switch s {
	case StateOn:
		return "ON"
	case StateMoving:
		return "MOVING"
	case StateAlarm:
		return "ALARM"
	case StateFault:
		return "FAULT"
	}
	return fmt.Sprintf("AxisState(%d)", int(s))
}

// stateRule maps a set of status flags to a state. Rules are evaluated in
// profile order, first match wins; a later rule never downgrades a state an
// earlier rule already fixed within the same poll.
type stateRule struct {
	flags []int
	state AxisState
	// linearOnly gates the rule on the movement type parameter: a rotational
	// axis passes its limit switches in normal operation and must not alarm.
	linearOnly bool
}

// profile bundles everything that differs between protocol generations.
type profile struct {
	generation Generation

	// dotAddressing selects the "<axis>.1" command prefix instead of the
	// "<address><axisLabel>" prefix.
	dotAddressing bool

	// statusDigits is the hex digit count of the packed status word; zero
	// when statusShifts is used instead.
	statusDigits int
	// statusShifts are the fixed bit-shift windows of the legacy layout.
	statusShifts []uint

	// inversionSwaps remaps paired flag indices (± limit and reference
	// conditions) when the axis is inverted, before state derivation and
	// status text composition.
	inversionSwaps map[int]int

	// resetFlags trigger the error-reset side command when set, independent
	// of the resulting state.
	resetFlags []int
	// errorResetVerb is the side command clearing a latched limit switch
	// error on the module.
	errorResetVerb string

	stateRules       []stateRule
	flagDescriptions []string

	// backlashFromSteps reports whether backlash is stored in raw steps as
	// written (MCC-2) instead of negated steps derived from user units.
	backlashFromSteps bool
}

func (p *profile) decodeStatus(raw int64) StatusWord {
	if p.statusDigits > 0 {
		return decodeNibbleStatus(raw, p.statusDigits)
	}
	return decodeWindowStatus(raw, p.statusShifts)
}

// phyMOTION status flags, indices 0..9 documented; the packed word carries
// 28 flags in total (7 hex digits).
var phyMotionFlagDescriptions = []string{
	"Power stage error",                    // 0
	"Power stage under voltage",            // 1
	"Power stage overtemperature",          // 2
	"Power stage is activated",             // 3
	"limit- is activated (emergency stop)", // 4
	"limit+ is activated",                  // 5
	"Step failure",                         // 6
	"Encoder error",                        // 7
	"Motor stands still",                   // 8
	"Reference point is driven and OK",     // 9
}

var mcc2FlagDescriptions = []string{
	"Axis is moving",              // 0
	"Axis is in position",         // 1
	"limit- is activated",         // 2
	"limit+ is activated",         // 3
	"Power stage error",           // 4
	"Power stage under voltage",   // 5
	"Power stage overtemperature", // 6
	"Step failure",                // 7
}

var profiles = map[Generation]*profile{
	GenerationPhyMotion: {
		generation:    GenerationPhyMotion,
		dotAddressing: true,
		statusDigits:  7,
		inversionSwaps: map[int]int{
			4: 5, 5: 4,
			7: 8, 8: 7,
		},
		resetFlags:     []int{12},
		errorResetVerb: "SEC",
		stateRules: []stateRule{
			{flags: []int{3, 19}, state: StateOn},
			{flags: []int{0, 16, 21, 22, 23}, state: StateMoving},
			{flags: []int{4, 5, 6, 7, 8, 12}, state: StateAlarm, linearOnly: true},
			{flags: []int{1, 11, 13, 14, 15}, state: StateFault},
		},
		flagDescriptions: phyMotionFlagDescriptions,
	},
	GenerationMCC2: {
		generation:     GenerationMCC2,
		statusShifts:   []uint{0, 1, 2, 3, 4, 5, 6, 7},
		inversionSwaps: map[int]int{2: 3, 3: 2},
		// The legacy firmware keeps no latched limit switch error, so
		// nothing triggers a reset side command.
		errorResetVerb: "SEC",
		// Legacy rule order: a movement or alarm condition reported in the
		// same word overrides an in-position flag.
		stateRules: []stateRule{
			{flags: []int{0}, state: StateMoving},
			{flags: []int{2, 3, 7}, state: StateAlarm, linearOnly: true},
			{flags: []int{4, 5, 6}, state: StateFault},
			{flags: []int{1}, state: StateOn},
		},
		flagDescriptions:  mcc2FlagDescriptions,
		backlashFromSteps: true,
	},
}

// profileFor returns the profile of gen, or an error for unknown generations.
func profileFor(gen Generation) (*profile, error) {
	p, ok := profiles[gen]
	if !ok {
		return nil, fmt.Errorf("unknown protocol generation %q", gen)
	}
	return p, nil
}
