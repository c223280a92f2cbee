package host

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/cwbudde/algo-drumgate/dsp/core"
	"github.com/cwbudde/algo-drumgate/gate"
)

// ErrUnknownParameter is returned for a parameter ID outside the table.
var ErrUnknownParameter = errors.New("host: unknown parameter")

// ParamID identifies a host parameter.
type ParamID int

// Host parameters, in table order.
const (
	ParamThreshold ParamID = iota
	ParamAttack
	ParamRelease
	ParamFloor
	ParamBypass

	paramCount
)

// ParamInfo describes one ranged parameter.
type ParamInfo struct {
	ID      ParamID
	Name    string
	Unit    string
	Min     float64
	Max     float64
	Default float64
}

var paramInfos = [paramCount]ParamInfo{
	{ParamThreshold, "threshold", "dB", gate.MinThresholdDB, gate.MaxThresholdDB, gate.DefaultThresholdDB},
	{ParamAttack, "attack", "s", gate.MinAttack, gate.MaxAttack, gate.DefaultAttack},
	{ParamRelease, "release", "s", gate.MinRelease, gate.MaxRelease, gate.DefaultRelease},
	{ParamFloor, "floor", "dB", gate.MinFloorDB, gate.MaxFloorDB, gate.DefaultFloorDB},
	{ParamBypass, "bypass", "", 0, 1, 0},
}

func (id ParamID) String() string {
	if id < 0 || id >= paramCount {
		return fmt.Sprintf("ParamID(%d)", int(id))
	}

	return paramInfos[id].Name
}

// Info returns the description of parameter id.
func Info(id ParamID) (ParamInfo, error) {
	if id < 0 || id >= paramCount {
		return ParamInfo{}, fmt.Errorf("%w: %d", ErrUnknownParameter, int(id))
	}

	return paramInfos[id], nil
}

// ParamInfos returns every parameter description in table order.
func ParamInfos() []ParamInfo {
	return append([]ParamInfo(nil), paramInfos[:]...)
}

// Values is one complete set of parameter values indexed by [ParamID].
type Values [paramCount]float64

// DefaultValues returns every parameter at its default.
func DefaultValues() Values {
	var v Values
	for i, info := range paramInfos {
		v[i] = info.Default
	}

	return v
}

// ValuesFromSettings maps gate settings onto the parameter table. An
// absent floor becomes the bottom of the floor range.
func ValuesFromSettings(s gate.Settings) Values {
	s = s.Clamped()

	v := Values{
		ParamThreshold: s.ThresholdDB,
		ParamAttack:    s.Attack,
		ParamRelease:   s.Release,
		ParamFloor:     s.FloorDB.Or(gate.MinFloorDB),
	}

	if !s.Active {
		v[ParamBypass] = 1
	}

	return v
}

// Settings converts the values into gate settings. A floor at the bottom
// of its range means no floor; bypass at or above one half deactivates the
// gate.
func (v Values) Settings() gate.Settings {
	floor := gate.None()
	if v[ParamFloor] > gate.MinFloorDB {
		floor = gate.Some(v[ParamFloor])
	}

	return gate.Settings{
		ThresholdDB: v[ParamThreshold],
		Attack:      v[ParamAttack],
		Release:     v[ParamRelease],
		FloorDB:     floor,
		Active:      v[ParamBypass] < 0.5,
	}
}

func (v Values) clamped() Values {
	for i, info := range paramInfos {
		v[i] = clampOr(v[i], info.Min, info.Max, info.Default)
	}

	return v
}

// Params is the parameter table shared by writers and the render callback.
// Every write publishes a complete new value set, so readers never observe
// a half-applied update. Reads never allocate or block.
type Params struct {
	cur atomic.Pointer[Values]
}

// NewParams returns a table holding the default values.
func NewParams() *Params {
	p := &Params{}
	v := DefaultValues()
	p.cur.Store(&v)

	return p
}

// Value returns the current value of parameter id.
func (p *Params) Value(id ParamID) (float64, error) {
	if id < 0 || id >= paramCount {
		return 0, fmt.Errorf("%w: %d", ErrUnknownParameter, int(id))
	}

	return p.cur.Load()[id], nil
}

// SetValue writes one parameter, clamped to its range. Non-finite values
// reset the parameter to its default.
func (p *Params) SetValue(id ParamID, value float64) error {
	if id < 0 || id >= paramCount {
		return fmt.Errorf("%w: %d", ErrUnknownParameter, int(id))
	}

	info := paramInfos[id]
	value = clampOr(value, info.Min, info.Max, info.Default)

	for {
		old := p.cur.Load()
		next := *old
		next[id] = value

		if p.cur.CompareAndSwap(old, &next) {
			return nil
		}
	}
}

// SetValues replaces the whole value set in one publication.
func (p *Params) SetValues(v Values) {
	v = v.clamped()
	p.cur.Store(&v)
}

// Snapshot returns a copy of the current value set.
func (p *Params) Snapshot() Values {
	return *p.cur.Load()
}

func clampOr(v, lo, hi, def float64) float64 {
	if !core.IsFinite(v) {
		return def
	}

	return core.Clamp(v, lo, hi)
}
