package phytron

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from YAML strings like
// "200ms".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return errors.Wrapf(err, "bad duration %q", value.Value)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// AxisHandle is the immutable addressing tuple of one axis: module address
// on the bus, axis index within the module and the axis letter used by the
// MCC-2 addressing scheme.
type AxisHandle struct {
	Address int
	Index   int
	Label   string
}

// AxisConfig configures one axis on a shared controller link.
type AxisConfig struct {
	// Name identifies the axis in logs and in the settings store.
	Name string `json:"name" yaml:"name"`
	// Address is the module address on the bus, starting at 0.
	Address int `json:"address" yaml:"address"`
	// Axis is the axis index within the module, 0 or 1.
	Axis int `json:"axis" yaml:"axis"`
	// Generation selects the protocol generation, "mcc2" or "phymotion".
	Generation Generation `json:"generation" yaml:"generation"`
	// TimeOut is the minimum interval between status polls to bound the
	// communication traffic; 200ms by default.
	TimeOut Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (cfg *AxisConfig) Validate() error {
	var err error
	if cfg.Name == "" {
		err = multierr.Append(err, errors.New("axis name required"))
	}
	if cfg.Address < 0 || cfg.Address > 15 {
		err = multierr.Append(err, fmt.Errorf("invalid module address %d, acceptable values are 0 thru 15", cfg.Address))
	}
	if cfg.Axis != 0 && cfg.Axis != 1 {
		err = multierr.Append(err, fmt.Errorf("invalid axis %d, acceptable values are 0 and 1", cfg.Axis))
	}
	if _, perr := profileFor(cfg.Generation); perr != nil {
		err = multierr.Append(err, perr)
	}
	if cfg.TimeOut < 0 {
		err = multierr.Append(err, errors.New("timeout must not be negative"))
	}
	return err
}

// Axis drives a single motor on a controller. An Axis references, but does
// not own, the controller link; several axes share one link and their
// exchanges queue on it. All operations are synchronous.
type Axis struct {
	handle   AxisHandle
	link     ControllerLink
	prof     *profile
	logger   golog.Logger
	clk      clock.Clock
	settings SettingsStore
	name     string
	timeout  time.Duration

	mu           sync.Mutex
	cache        *paramCache
	inverted     bool
	lastPoll     time.Time
	status       StatusWord
	statusText   string
	state        AxisState
	lastSetpoint float64
}

// NewAxis creates an axis on link and reads all controller parameters once.
// The persisted inversion flag is looked up in settings; any failure there
// falls back to false. settings may be nil for axes without persistence.
func NewAxis(ctx context.Context, link ControllerLink, cfg AxisConfig, settings SettingsStore, logger golog.Logger) (*Axis, error) {
	return newAxis(ctx, link, cfg, settings, logger, clock.New())
}

func newAxis(
	ctx context.Context,
	link ControllerLink,
	cfg AxisConfig,
	settings SettingsStore,
	logger golog.Logger,
	clk clock.Clock,
) (*Axis, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	prof, err := profileFor(cfg.Generation)
	if err != nil {
		return nil, err
	}
	timeout := time.Duration(cfg.TimeOut)
	if timeout == 0 {
		timeout = 200 * time.Millisecond
	}

	label := "X"
	if cfg.Axis == 1 {
		label = "Y"
	}

	a := &Axis{
		handle:   AxisHandle{Address: cfg.Address, Index: cfg.Axis, Label: label},
		link:     link,
		prof:     prof,
		logger:   logger,
		clk:      clk,
		settings: settings,
		name:     cfg.Name,
		timeout:  timeout,
		cache:    newParamCache(clk, timeout),
		state:    StateOn,
	}

	if settings != nil {
		inverted, ok := settings.Bool(cfg.Name, "inverted")
		if ok {
			a.inverted = inverted
		}
	}

	logger.Infof("axis %s: module address %d, axis %d (%s), generation %s",
		cfg.Name, cfg.Address, cfg.Axis, label, cfg.Generation)

	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.refreshAll(ctx); err != nil {
		return nil, errors.Wrapf(err, "axis %s: initial parameter read failed", cfg.Name)
	}
	return a, nil
}

// Name returns the configured axis name.
func (a *Axis) Name() string { return a.name }

// Handle returns the addressing tuple of the axis.
func (a *Axis) Handle() AxisHandle { return a.handle }

// command sends one axis-addressed command and returns its payload. A NACK
// response puts the axis into fault and surfaces as NotAcknowledgedError;
// the command is not retried. Must be called with a.mu held.
func (a *Axis) command(ctx context.Context, body string) (string, error) {
	wire := a.prof.encodeCommand(a.handle, body)
	res, err := a.link.Exchange(ctx, wire)
	if err != nil {
		return "", err
	}
	if res == NotAcknowledged {
		a.state = StateFault
		a.logger.Warnf("axis %s: command %q not acknowledged by controller", a.name, body)
		return "", &NotAcknowledgedError{Command: body}
	}
	return res, nil
}

// moduleCommand sends a command addressed to the module rather than the
// axis, used for EEPROM commits and the firmware version query. Must be
// called with a.mu held.
func (a *Axis) moduleCommand(ctx context.Context, body string) (string, error) {
	var wire string
	if a.prof.dotAddressing {
		wire = a.prof.encodeCommand(a.handle, body)
	} else {
		wire = strconv.Itoa(a.handle.Address) + body
	}
	res, err := a.link.Exchange(ctx, wire)
	if err != nil {
		return "", err
	}
	if res == NotAcknowledged {
		a.state = StateFault
		return "", &NotAcknowledgedError{Command: body}
	}
	return res, nil
}

// batch submits several commands as one framed exchange to bound poll
// latency, and returns the sub-responses in request order. Must be called
// with a.mu held.
func (a *Axis) batch(ctx context.Context, bodies []string) ([]string, error) {
	wire := a.prof.encodeBatch(a.handle, bodies)
	res, err := a.link.Exchange(ctx, wire)
	if err != nil {
		return nil, err
	}
	if res == NotAcknowledged {
		a.state = StateFault
		return nil, &NotAcknowledgedError{Command: strings.Join(bodies, " ")}
	}
	parts := splitBatch(res)
	if len(parts) < len(bodies) {
		return nil, fmt.Errorf("short batch response: %d answers for %d commands", len(parts), len(bodies))
	}
	return parts[:len(bodies)], nil
}

// refreshAll reads every numbered parameter in one batched exchange. Must be
// called with a.mu held.
func (a *Axis) refreshAll(ctx context.Context) error {
	var bodies []string
	for p := minParam; p <= maxParam; p++ {
		bodies = append(bodies, p.readCmd())
	}
	res, err := a.batch(ctx, bodies)
	if err != nil {
		return err
	}
	for i, p := 0, minParam; p <= maxParam; i, p = i+1, p+1 {
		a.cache.put(p, res[i])
	}
	return nil
}

// refreshGroup re-reads only the group containing a just-written parameter,
// never the full set. Must be called with a.mu held.
func (a *Axis) refreshGroup(ctx context.Context, g Group) error {
	params := paramsInGroup(g)
	bodies := make([]string, len(params))
	for i, p := range params {
		bodies[i] = p.readCmd()
	}
	res, err := a.batch(ctx, bodies)
	if err != nil {
		return err
	}
	for i, p := range params {
		a.cache.put(p, res[i])
	}
	return nil
}

// getParam returns the raw value of p, from cache when fresh, otherwise via
// exactly one refresh of p's group. Must be called with a.mu held.
func (a *Axis) getParam(ctx context.Context, p Param) (string, error) {
	if !p.valid() {
		return "", fmt.Errorf("invalid parameter P%02d", int(p))
	}
	if raw, ok := a.cache.fresh(p); ok {
		return raw, nil
	}
	if err := a.refreshGroup(ctx, GroupOf(p)); err != nil {
		return "", err
	}
	raw, _ := a.cache.peek(p)
	return raw, nil
}

// writeParam validates nothing by itself: callers check bounds before the
// value reaches the wire. On ACK the parameter's group is refreshed
// synchronously so a following read observes the new value; on NACK the
// cache is left untouched. Must be called with a.mu held.
func (a *Axis) writeParam(ctx context.Context, p Param, value string) error {
	if _, err := a.command(ctx, p.writeCmd(value)); err != nil {
		return err
	}
	return a.refreshGroup(ctx, GroupOf(p))
}

// maybePoll refreshes status and position if the last poll is older than the
// timeout. The status query takes ~10ms per axis on phyMOTION over TCP, so
// the poll rate is capped rather than scheduled. Must be called with a.mu
// held.
func (a *Axis) maybePoll(ctx context.Context) error {
	if !a.lastPoll.IsZero() && a.clk.Since(a.lastPoll) <= a.timeout {
		return nil
	}
	res, err := a.batch(ctx, []string{"SE", ParamPosition.readCmd()})
	if err != nil {
		return err
	}
	a.lastPoll = a.clk.Now()

	rawStatus, err := strconv.ParseInt(strings.TrimSpace(res[0]), 10, 64)
	if err != nil {
		return errors.Wrapf(err, "unparseable status payload %q", res[0])
	}
	a.cache.put(ParamPosition, res[1])

	word := a.prof.decodeStatus(rawStatus)
	if a.inverted {
		word = word.swapped(a.prof.inversionSwaps)
	}
	a.status = word
	a.statusText = statusText(word, a.prof.flagDescriptions)
	a.logger.Debugf("axis %s: status %s position %s", a.name, res[0], res[1])

	if reset, err := word.any(a.prof.resetFlags); err != nil {
		return err
	} else if reset {
		// Clear the latched limit switch error on the module, whatever
		// state this poll derives.
		if _, err := a.command(ctx, a.prof.errorResetVerb); err != nil {
			a.logger.Warnf("axis %s: error reset failed: %v", a.name, err)
		}
	}

	linear := parseInt(a.cachedRaw(ParamMovementType)) > 0
	for _, rule := range a.prof.stateRules {
		if rule.linearOnly && !linear {
			continue
		}
		match, err := word.any(rule.flags)
		if err != nil {
			return err
		}
		if match {
			a.state = rule.state
			break
		}
	}
	return nil
}

func (a *Axis) cachedRaw(p Param) string {
	raw, _ := a.cache.peek(p)
	return raw
}

// State derives the axis state from the most recent status word, polling
// the controller first if the cached poll is stale.
func (a *Axis) State(ctx context.Context) (AxisState, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.maybePoll(ctx); err != nil {
		return a.state, err
	}
	return a.state, nil
}

// StatusText returns the newline-joined descriptions of all active status
// flags, with the inversion-aware limit/reference label swap applied.
func (a *Axis) StatusText(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.maybePoll(ctx); err != nil {
		return "", err
	}
	return a.statusText, nil
}

// StatusFlags returns the most recent decoded status word.
func (a *Axis) StatusFlags(ctx context.Context) (StatusWord, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.maybePoll(ctx); err != nil {
		return StatusWord{}, err
	}
	return a.status, nil
}

// Position returns the current position, sign-corrected for inversion.
func (a *Axis) Position(ctx context.Context) (float64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	raw, err := a.getParam(ctx, ParamPosition)
	if err != nil {
		return 0, err
	}
	return applySign(parseFloat(raw), a.inverted), nil
}

// MoveAbsolute starts an absolute move to pos in user units. The axis state
// becomes Moving only on acknowledgment; a rejected move leaves position
// cache and state alone.
func (a *Axis) MoveAbsolute(ctx context.Context, pos float64) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, err := a.command(ctx, fmt.Sprintf("A%.10f", applySign(pos, a.inverted))); err != nil {
		return err
	}
	a.state = StateMoving
	a.lastSetpoint = pos
	return nil
}

// LastSetpoint returns the target of the most recent acknowledged absolute
// move, in user units.
func (a *Axis) LastSetpoint() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastSetpoint
}

// SetPosition redefines the current position without moving.
func (a *Axis) SetPosition(ctx context.Context, pos float64) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.writeParam(ctx, ParamPosition, fmt.Sprintf("%.4f", applySign(pos, a.inverted)))
}

// JogPlus moves continuously towards positive user coordinates. With the
// inversion flag set the opposite hardware direction is commanded.
func (a *Axis) JogPlus(ctx context.Context) error { return a.jog(ctx, true) }

// JogMinus moves continuously towards negative user coordinates.
func (a *Axis) JogMinus(ctx context.Context) error { return a.jog(ctx, false) }

func (a *Axis) jog(ctx context.Context, plus bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	body := "L+"
	if plus == a.inverted {
		body = "L-"
	}
	if _, err := a.command(ctx, body); err != nil {
		return err
	}
	a.state = StateMoving
	return nil
}

// HomePlus drives to the reference switch in positive user direction.
func (a *Axis) HomePlus(ctx context.Context) error { return a.home(ctx, true) }

// HomeMinus drives to the reference switch in negative user direction.
func (a *Axis) HomeMinus(ctx context.Context) error { return a.home(ctx, false) }

func (a *Axis) home(ctx context.Context, plus bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	body := "0+"
	if plus == a.inverted {
		body = "0-"
	}
	if _, err := a.command(ctx, body); err != nil {
		return err
	}
	a.state = StateMoving
	return nil
}

// Stop decelerates the axis on its ramp and stops.
func (a *Axis) Stop(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, err := a.command(ctx, "S"); err != nil {
		return err
	}
	a.state = StateOn
	return nil
}

// Abort stops the axis immediately, without the deceleration ramp.
func (a *Axis) Abort(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, err := a.command(ctx, "SN"); err != nil {
		return err
	}
	a.state = StateOn
	return nil
}

// ResetErrors clears a latched limit switch error on the module.
func (a *Axis) ResetErrors(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, err := a.command(ctx, a.prof.errorResetVerb)
	return err
}

// FirmwareVersion queries the controller firmware version.
func (a *Axis) FirmwareVersion(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.moduleCommand(ctx, "IVR")
}

// WriteToEEPROM commits the current parameters to the non-volatile store.
func (a *Axis) WriteToEEPROM(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, err := a.moduleCommand(ctx, "SA"); err != nil {
		return err
	}
	a.logger.Infof("axis %s: parameters written to EEPROM", a.name)
	return nil
}

// SendCommand sends a raw axis-addressed command and returns the payload.
// Escape hatch for commands the driver does not model.
func (a *Axis) SendCommand(ctx context.Context, body string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.command(ctx, body)
}

// DumpAllParameters refreshes and formats every numbered parameter.
func (a *Axis) DumpAllParameters(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.refreshAll(ctx); err != nil {
		return "", err
	}
	var b strings.Builder
	for p := minParam; p <= maxParam; p++ {
		raw, _ := a.cache.peek(p)
		fmt.Fprintf(&b, "P%02d: %s\n", int(p), raw)
	}
	return b.String(), nil
}

// Inverted reports the persisted inversion flag.
func (a *Axis) Inverted() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.inverted
}

// SetInverted flips position and backlash sign and swaps the ± limit
// semantics for axes mounted "backwards", and persists the flag.
func (a *Axis) SetInverted(inverted bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.inverted = inverted
	if a.settings == nil {
		return nil
	}
	return a.settings.SetBool(a.name, "inverted", inverted)
}

// Acceleration returns the acceleration ramp in Hz.
func (a *Axis) Acceleration(ctx context.Context) (int, error) {
	return a.intParam(ctx, ParamAcceleration)
}

// SetAcceleration writes the acceleration ramp in Hz.
func (a *Axis) SetAcceleration(ctx context.Context, hz int) error {
	if err := checkRange("acceleration", float64(hz), 4000, 500000); err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.writeParam(ctx, ParamAcceleration, strconv.Itoa(hz))
}

// Velocity returns the run frequency in Hz.
func (a *Axis) Velocity(ctx context.Context) (int, error) {
	return a.intParam(ctx, ParamVelocity)
}

// SetVelocity writes the run frequency in Hz.
func (a *Axis) SetVelocity(ctx context.Context, hz int) error {
	if err := checkRange("velocity", float64(hz), 0, 40000); err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.writeParam(ctx, ParamVelocity, strconv.Itoa(hz))
}

// HomingVelocity returns the reference run frequency in Hz.
func (a *Axis) HomingVelocity(ctx context.Context) (int, error) {
	return a.intParam(ctx, ParamHomingVelocity)
}

// SetHomingVelocity writes the reference run frequency in Hz.
func (a *Axis) SetHomingVelocity(ctx context.Context, hz int) error {
	if err := checkRange("homing velocity", float64(hz), 0, 40000); err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.writeParam(ctx, ParamHomingVelocity, strconv.Itoa(hz))
}

// HoldCurrent returns the stop current in ampere.
func (a *Axis) HoldCurrent(ctx context.Context) (float64, error) {
	return a.currentParam(ctx, ParamHoldCurrent)
}

// SetHoldCurrent writes the stop current in ampere, 0 to 2.5 A.
func (a *Axis) SetHoldCurrent(ctx context.Context, amps float64) error {
	return a.setCurrentParam(ctx, ParamHoldCurrent, "hold current", amps)
}

// RunCurrent returns the run current in ampere.
func (a *Axis) RunCurrent(ctx context.Context) (float64, error) {
	return a.currentParam(ctx, ParamRunCurrent)
}

// SetRunCurrent writes the run current in ampere, 0 to 2.5 A.
func (a *Axis) SetRunCurrent(ctx context.Context, amps float64) error {
	return a.setCurrentParam(ctx, ParamRunCurrent, "run current", amps)
}

// currents are transmitted in tenths of ampere.
func (a *Axis) currentParam(ctx context.Context, p Param) (float64, error) {
	raw, err := a.rawParam(ctx, p)
	if err != nil {
		return 0, err
	}
	return parseFloat(raw) / 10, nil
}

func (a *Axis) setCurrentParam(ctx context.Context, p Param, name string, amps float64) error {
	if err := checkRange(name, amps, 0, 2.5); err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.writeParam(ctx, p, strconv.Itoa(int(amps*10)))
}

// InitiatorType returns the limit switch contact type.
func (a *Axis) InitiatorType(ctx context.Context) (InitiatorType, error) {
	v, err := a.intParam(ctx, ParamInitiatorType)
	return InitiatorType(v), err
}

// SetInitiatorType writes the limit switch contact type.
func (a *Axis) SetInitiatorType(ctx context.Context, t InitiatorType) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.writeParam(ctx, ParamInitiatorType, strconv.Itoa(int(t)))
}

// StepsPerUnit returns the scale factor converting steps to user units. The
// controller stores its reciprocal, the spindle pitch.
func (a *Axis) StepsPerUnit(ctx context.Context) (float64, error) {
	raw, err := a.rawParam(ctx, ParamSpindlePitch)
	if err != nil {
		return 0, err
	}
	pitch := parseFloat(raw)
	if pitch == 0 {
		return 0, fmt.Errorf("axis %s: spindle pitch reads zero", a.name)
	}
	return stepsPerUnitFromPitch(pitch), nil
}

// SetStepsPerUnit writes the scale factor as its reciprocal spindle pitch.
func (a *Axis) SetStepsPerUnit(ctx context.Context, spu float64) error {
	if spu <= 0 {
		return &OutOfRangeError{Name: "steps per unit", Value: spu, Min: 0, Max: 0}
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.writeParam(ctx, ParamSpindlePitch, fmt.Sprintf("%10.8f", pitchFromStepsPerUnit(spu)))
}

// StepResolution returns the microstep divisor.
func (a *Axis) StepResolution(ctx context.Context) (int, error) {
	return a.intParam(ctx, ParamStepResolution)
}

// SetStepResolution writes the microstep divisor.
func (a *Axis) SetStepResolution(ctx context.Context, res int) error {
	valid := false
	for _, v := range validStepResolutions {
		if res == v {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("invalid step resolution %d, acceptable values are %v", res, validStepResolutions)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.writeParam(ctx, ParamStepResolution, strconv.Itoa(res))
}

// Backlash returns the backlash compensation in user units (steps on the
// MCC-2 convention), sign-corrected for inversion.
func (a *Axis) Backlash(ctx context.Context) (float64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	raw, err := a.getParam(ctx, ParamBacklash)
	if err != nil {
		return 0, err
	}
	spu, err := a.stepsPerUnitLocked(ctx)
	if err != nil {
		return 0, err
	}
	return a.prof.backlashValue(parseInt(raw), spu, a.inverted), nil
}

// SetBacklash writes the backlash compensation, converting to the storage
// convention of the protocol generation.
func (a *Axis) SetBacklash(ctx context.Context, value float64) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	spu, err := a.stepsPerUnitLocked(ctx)
	if err != nil {
		return err
	}
	raw := a.prof.backlashRaw(value, spu, a.inverted)
	return a.writeParam(ctx, ParamBacklash, strconv.Itoa(raw))
}

func (a *Axis) stepsPerUnitLocked(ctx context.Context) (float64, error) {
	if a.prof.backlashFromSteps {
		// MCC-2 backlash is raw steps, no scale factor involved.
		return 1, nil
	}
	raw, err := a.getParam(ctx, ParamSpindlePitch)
	if err != nil {
		return 0, err
	}
	pitch := parseFloat(raw)
	if pitch == 0 {
		return 0, fmt.Errorf("axis %s: spindle pitch reads zero", a.name)
	}
	return stepsPerUnitFromPitch(pitch), nil
}

// MovementType returns whether the axis is rotational or linear.
func (a *Axis) MovementType(ctx context.Context) (MovementType, error) {
	v, err := a.intParam(ctx, ParamMovementType)
	return MovementType(v), err
}

// SetMovementType writes the movement type. Rotational axes suppress the
// limit switch alarms during state derivation.
func (a *Axis) SetMovementType(ctx context.Context, t MovementType) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.writeParam(ctx, ParamMovementType, strconv.Itoa(int(t)))
}

// MovementUnit returns the display unit of positions.
func (a *Axis) MovementUnit(ctx context.Context) (MovementUnit, error) {
	v, err := a.intParam(ctx, ParamMovementUnit)
	if err != nil {
		return UnitStep, err
	}
	// The controller stores the enum value plus one.
	return MovementUnit(v - 1), nil
}

// SetMovementUnit writes the display unit of positions.
func (a *Axis) SetMovementUnit(ctx context.Context, u MovementUnit) error {
	if u < UnitStep || u > UnitDegree {
		return fmt.Errorf("invalid movement unit %d", int(u))
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.writeParam(ctx, ParamMovementUnit, strconv.Itoa(int(u)+1))
}

func (a *Axis) intParam(ctx context.Context, p Param) (int, error) {
	raw, err := a.rawParam(ctx, p)
	if err != nil {
		return 0, err
	}
	return parseInt(raw), nil
}

func (a *Axis) rawParam(ctx context.Context, p Param) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.getParam(ctx, p)
}

func checkRange(name string, v, min, max float64) error {
	if v < min || v > max {
		return &OutOfRangeError{Name: name, Value: v, Min: min, Max: max}
	}
	return nil
}
