package roster

import (
	"fmt"

	"ktcompanion/internal/catalog"
)

// ========================= Builder State =========================
// The in-progress squad for one team. Operatives are deep copies of
// catalog definitions plus instance-local overlay state; definitions
// are never mutated.

// Equipment is an assigned equipment instance: a copy of the
// definition plus a used flag toggled during play. The embedded
// definition keeps the persisted JSON shape flat.
type Equipment struct {
	catalog.EquipmentDefinition
	Used bool `json:"isUsed"`
}

func (e Equipment) Clone() Equipment {
	return Equipment{EquipmentDefinition: e.EquipmentDefinition.Clone(), Used: e.Used}
}

// Operative is one unit instance in a roster.
type Operative struct {
	Def catalog.OperativeDefinition `json:"def"`
	// WeaponActive parallels Def.Weapons. All weapons start active.
	WeaponActive []bool      `json:"weaponActive"`
	Equipment    []Equipment `json:"equipment"`
}

// NewOperative clones a definition into a fresh instance with every
// weapon active and no equipment.
func NewOperative(def catalog.OperativeDefinition) *Operative {
	op := &Operative{Def: def.Clone()}
	op.WeaponActive = make([]bool, len(op.Def.Weapons))
	for i := range op.WeaponActive {
		op.WeaponActive[i] = true
	}
	return op
}

// Clone deep-copies the instance, overlay state included.
func (o *Operative) Clone() *Operative {
	out := &Operative{Def: o.Def.Clone()}
	out.WeaponActive = make([]bool, len(o.WeaponActive))
	copy(out.WeaponActive, o.WeaponActive)
	out.Equipment = make([]Equipment, len(o.Equipment))
	for i, e := range o.Equipment {
		out.Equipment[i] = e.Clone()
	}
	return out
}

// Builder holds the squad being assembled for one team.
type Builder struct {
	TeamID string
	Ops    []*Operative
}

func NewBuilder() *Builder {
	return &Builder{}
}

// SelectTeam switches the builder to another team. The roster is
// cleared; operatives never carry over across teams.
func (b *Builder) SelectTeam(teamID string) {
	b.TeamID = teamID
	b.Ops = nil
}

// Replace swaps in a hydrated squad, e.g. when loading a saved roster.
func (b *Builder) Replace(teamID string, ops []*Operative) {
	b.TeamID = teamID
	b.Ops = ops
}

func (b *Builder) AddOperative(def catalog.OperativeDefinition) {
	b.Ops = append(b.Ops, NewOperative(def))
}

// RemoveOperative removes the operative at index. Remaining indices
// shift; callers must not reuse indices taken before the removal.
func (b *Builder) RemoveOperative(index int) error {
	if index < 0 || index >= len(b.Ops) {
		return fmt.Errorf("operative index %d out of range", index)
	}
	b.Ops = append(b.Ops[:index], b.Ops[index+1:]...)
	return nil
}

func (b *Builder) ToggleWeapon(opIndex, weaponIndex int) error {
	op, err := b.op(opIndex)
	if err != nil {
		return err
	}
	if weaponIndex < 0 || weaponIndex >= len(op.WeaponActive) {
		return fmt.Errorf("weapon index %d out of range", weaponIndex)
	}
	op.WeaponActive[weaponIndex] = !op.WeaponActive[weaponIndex]
	return nil
}

// AddEquipment assigns a copy of def to the operative. No cap is
// enforced here; the display layer owns the team-wide limit.
func (b *Builder) AddEquipment(opIndex int, def catalog.EquipmentDefinition) error {
	op, err := b.op(opIndex)
	if err != nil {
		return err
	}
	op.Equipment = append(op.Equipment, Equipment{EquipmentDefinition: def.Clone()})
	return nil
}

func (b *Builder) RemoveEquipment(opIndex, eqIndex int) error {
	op, err := b.op(opIndex)
	if err != nil {
		return err
	}
	if eqIndex < 0 || eqIndex >= len(op.Equipment) {
		return fmt.Errorf("equipment index %d out of range", eqIndex)
	}
	op.Equipment = append(op.Equipment[:eqIndex], op.Equipment[eqIndex+1:]...)
	return nil
}

// EquipCount is the team-wide number of assigned equipment instances.
func (b *Builder) EquipCount() int {
	n := 0
	for _, op := range b.Ops {
		n += len(op.Equipment)
	}
	return n
}

func (b *Builder) op(index int) (*Operative, error) {
	if index < 0 || index >= len(b.Ops) {
		return nil, fmt.Errorf("operative index %d out of range", index)
	}
	return b.Ops[index], nil
}
