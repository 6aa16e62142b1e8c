package game

import (
	"errors"

	"ktcompanion/internal/catalog"
	"ktcompanion/internal/roster"
)

// ========================= Live Game State =========================

var (
	// ErrEmptyRoster is returned when a game is started from a roster
	// with no operatives.
	ErrEmptyRoster = errors.New("roster has no operatives")
	// ErrNoCommandPoints reports an attempted CP spend at zero. It is
	// an expected condition, not a failure; state is unchanged.
	ErrNoCommandPoints = errors.New("no command points available")
)

// Operative is a live unit: a deep copy of the roster instance plus
// wound tracking. StartOfTurnWounds is the baseline locked in at the
// last turn boundary; the gap between it and CurrentWounds is what the
// UI renders as this-turn damage.
type Operative struct {
	roster.Operative
	CurrentWounds     int
	StartOfTurnWounds int
}

func (o *Operative) BaseWounds() int {
	return o.Def.Stats.Wounds
}

func (o *Operative) Incapacitated() bool {
	return o.CurrentWounds <= 0
}

// Injured is strict: exactly half wounds is not injured.
func (o *Operative) Injured() bool {
	if o.Incapacitated() {
		return false
	}
	return float64(o.CurrentWounds) < float64(o.BaseWounds())/2
}

// EffectiveMove is the displayed Move: injured operatives lose 2",
// floored at 0.
func (o *Operative) EffectiveMove() int {
	m := o.Def.Stats.Move
	if o.Injured() {
		m -= 2
		if m < 0 {
			m = 0
		}
	}
	return m
}

// EffectiveHit is the displayed hit threshold for weapon index w.
// Injured operatives hit one worse (numerically higher, "N+" values).
func (o *Operative) EffectiveHit(w int) int {
	hit := o.Def.Weapons[w].Hit
	if o.Injured() {
		hit++
	}
	return hit
}

// CellState classifies one wound cell for display.
type CellState string

const (
	CellActive    CellState = "active"    // undamaged before and after the turn boundary
	CellRecovered CellState = "recovered" // healed since the turn started
	CellDamaged   CellState = "damaged"   // lost since the turn started
	CellInactive  CellState = "inactive"  // damage carried in from earlier turns
)

// WoundCell returns the display state of wound cell i (1-based,
// i in [1, BaseWounds]).
func (o *Operative) WoundCell(i int) CellState {
	if i <= o.CurrentWounds {
		if i <= o.StartOfTurnWounds {
			return CellActive
		}
		return CellRecovered
	}
	if i <= o.StartOfTurnWounds {
		return CellDamaged
	}
	return CellInactive
}

// Resource identifies one of the per-team counters.
type Resource string

const (
	VictoryPoints   Resource = "vp"
	CommandPoints   Resource = "cp"
	FactionResource Resource = "fp"
)

const startingCommandPoints = 2

// TeamState is the live state of one team in a session.
type TeamState struct {
	Name   string
	TeamID string
	VP     int
	CP     int
	FP     int
	// Faction resource bounds, copied from the team's ResourceConfig.
	HasResource bool
	ResourceMax int
	Ops         []*Operative
}

// NewTeamState hydrates live state from builder operatives. Operatives
// without wounds (expendable markers and the like) are filtered out;
// the rest are deep-copied and start at full wounds.
func NewTeamState(name, teamID string, ops []*roster.Operative, cfg *catalog.ResourceConfig) *TeamState {
	ts := &TeamState{
		Name:   name,
		TeamID: teamID,
		CP:     startingCommandPoints,
	}
	if cfg != nil {
		ts.HasResource = true
		ts.FP = cfg.Start
		ts.ResourceMax = cfg.Max
	}
	for _, op := range ops {
		if op.Def.Stats.Wounds <= 0 {
			continue
		}
		live := &Operative{Operative: *op.Clone()}
		live.CurrentWounds = live.BaseWounds()
		live.StartOfTurnWounds = live.BaseWounds()
		ts.Ops = append(ts.Ops, live)
	}
	return ts
}

// SetWounds sets an operative's current wounds to value, with the
// tie-break rule: clicking the cell already equal to the current value
// drops it by one instead, so a single control can both mark and undo
// a wound. No clamping beyond that; the fixed cell range guards input.
func (ts *TeamState) SetWounds(opIndex, value int) {
	if opIndex < 0 || opIndex >= len(ts.Ops) {
		return
	}
	op := ts.Ops[opIndex]
	if op.CurrentWounds == value {
		op.CurrentWounds = value - 1
	} else {
		op.CurrentWounds = value
	}
}

// UpdateResource adds delta to one counter. All counters floor at
// zero; the faction resource additionally clamps at its configured max.
func (ts *TeamState) UpdateResource(res Resource, delta int) {
	switch res {
	case VictoryPoints:
		ts.VP = floorZero(ts.VP + delta)
	case CommandPoints:
		ts.CP = floorZero(ts.CP + delta)
	case FactionResource:
		ts.FP = floorZero(ts.FP + delta)
		if ts.HasResource && ts.FP > ts.ResourceMax {
			ts.FP = ts.ResourceMax
		}
	}
}

// SpendCommandPoint decrements CP by one, or reports
// ErrNoCommandPoints without mutating state.
func (ts *TeamState) SpendCommandPoint() error {
	if ts.CP <= 0 {
		return ErrNoCommandPoints
	}
	ts.CP--
	return nil
}

// FinalizeWoundState locks in current damage as the new start-of-turn
// baseline for every operative. Idempotent.
func (ts *TeamState) FinalizeWoundState() {
	for _, op := range ts.Ops {
		op.StartOfTurnWounds = op.CurrentWounds
	}
}

// ToggleEquipmentUsed flips the used flag on a live equipment
// instance. Cosmetic; no resource effect.
func (ts *TeamState) ToggleEquipmentUsed(opIndex, eqIndex int) {
	if opIndex < 0 || opIndex >= len(ts.Ops) {
		return
	}
	op := ts.Ops[opIndex]
	if eqIndex < 0 || eqIndex >= len(op.Equipment) {
		return
	}
	op.Equipment[eqIndex].Used = !op.Equipment[eqIndex].Used
}

func floorZero(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

// Side selects one of the two team slots in a session.
type Side int

const (
	SideLeft Side = iota
	SideRight
)

// Session is a running game: one or two team states sharing a single
// turn pointer.
type Session struct {
	TP    int
	Left  *TeamState
	Right *TeamState
}

// Start begins a session from a non-empty squad. The turn pointer
// resets to 1 on every start.
func Start(name, teamID string, ops []*roster.Operative, cfg *catalog.ResourceConfig) (*Session, error) {
	if len(ops) == 0 {
		return nil, ErrEmptyRoster
	}
	return &Session{
		TP:   1,
		Left: NewTeamState(name, teamID, ops, cfg),
	}, nil
}

// AttachCoop adds the second team. The first team's state is not
// touched; only the turn pointer is shared from here on.
func (s *Session) AttachCoop(name, teamID string, ops []*roster.Operative, cfg *catalog.ResourceConfig) {
	s.Right = NewTeamState(name, teamID, ops, cfg)
}

// Team returns the state for a side, or nil if none is attached.
func (s *Session) Team(side Side) *TeamState {
	if side == SideRight {
		return s.Right
	}
	return s.Left
}

// Teams returns every attached team state, left first.
func (s *Session) Teams() []*TeamState {
	out := []*TeamState{s.Left}
	if s.Right != nil {
		out = append(out, s.Right)
	}
	return out
}

// AdvanceTurnPointer nudges the shared turn pointer by delta, floored
// at 1, and finalizes wound state on every attached team: any manual
// pointer move locks in current damage as the new baseline.
func (s *Session) AdvanceTurnPointer(delta int) {
	s.TP += delta
	if s.TP < 1 {
		s.TP = 1
	}
	for _, ts := range s.Teams() {
		ts.FinalizeWoundState()
	}
}

// EndTurn is the compound turn boundary: the turn pointer and every
// attached team's CP each go up by exactly one, then wound state is
// finalized everywhere. Both teams see the increment before any
// snapshot is taken.
func (s *Session) EndTurn() {
	s.TP++
	for _, ts := range s.Teams() {
		ts.CP++
	}
	for _, ts := range s.Teams() {
		ts.FinalizeWoundState()
	}
}
