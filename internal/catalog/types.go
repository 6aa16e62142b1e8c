package catalog

import "ktcompanion/internal/text"

// ========================= Static Definitions =========================
// Everything in this package is loaded once at startup and treated as
// immutable afterward. Mutable per-roster state always works on deep
// copies produced by the Clone methods below.

type TeamDefinition struct {
	ID             string                `json:"id"`
	Name           text.Localized        `json:"name"`
	Color          string                `json:"color"`
	RulesText      text.Localized        `json:"rulesText,omitempty"`
	Operatives     []OperativeDefinition `json:"operatives"`
	Equipments     []EquipmentDefinition `json:"equipments"`
	FactionRules   []RuleDefinition      `json:"factionRules,omitempty"`
	Ploys          Ploys                 `json:"ploys"`
	ResourceConfig *ResourceConfig       `json:"resourceConfig,omitempty"`
}

type Ploys struct {
	Strategy  []PloyDefinition `json:"strategy"`
	Firefight []PloyDefinition `json:"firefight"`
}

type PloyDefinition struct {
	Name text.Localized `json:"name"`
	Cost string         `json:"cost,omitempty"`
	Desc text.Localized `json:"desc"`
}

type RuleDefinition struct {
	Title text.Localized `json:"title"`
	Desc  text.Localized `json:"desc"`
}

// ResourceConfig describes a team's faction-specific resource pool
// (e.g. blooding points). Teams without one track only VP and CP.
type ResourceConfig struct {
	Name  text.Localized `json:"name"`
	Start int            `json:"start"`
	Max   int            `json:"max"`
}

type OperativeDefinition struct {
	ID        string              `json:"id"`
	Name      text.Localized      `json:"name"`
	Role      text.Localized      `json:"role,omitempty"`
	Stats     Statline            `json:"stats"`
	Weapons   []WeaponDefinition  `json:"weapons"`
	Abilities []AbilityDefinition `json:"abilities,omitempty"`
}

// Statline holds the profile numbers. Move is inches, Save and weapon
// hit thresholds are "N+" values stored as N.
type Statline struct {
	Move         int `json:"M"`
	ActionPoints int `json:"APL"`
	Defense      int `json:"D"`
	Save         int `json:"S"`
	Wounds       int `json:"W"`
}

type RangeClass string

const (
	RangeRanged RangeClass = "ranged"
	RangeMelee  RangeClass = "melee"
)

type WeaponDefinition struct {
	Name    text.Localized   `json:"name"`
	Range   RangeClass       `json:"range"`
	Attacks int              `json:"A"`
	Hit     int              `json:"hit"`
	Damage  string           `json:"dmg"`
	Rules   []text.Localized `json:"rules,omitempty"`
}

type AbilityDefinition struct {
	Title text.Localized `json:"title"`
	Desc  text.Localized `json:"desc"`
}

type EquipmentDefinition struct {
	Name  text.Localized `json:"name"`
	Cost  string         `json:"cost,omitempty"`
	Desc  text.Localized `json:"desc"`
	Limit int            `json:"limit,omitempty"`
}

// CommonRule is a universal rule shared by every team. Keys are raw
// strings in the data source; descriptions are localized.
type CommonRule struct {
	Key  string         `json:"key"`
	Desc text.Localized `json:"desc"`
}

// Clone deep-copies an operative definition into a fresh value that a
// roster instance may own.
func (d OperativeDefinition) Clone() OperativeDefinition {
	out := d
	out.Name = d.Name.Clone()
	out.Role = d.Role.Clone()
	out.Weapons = make([]WeaponDefinition, len(d.Weapons))
	for i, w := range d.Weapons {
		out.Weapons[i] = w.Clone()
	}
	out.Abilities = make([]AbilityDefinition, len(d.Abilities))
	for i, a := range d.Abilities {
		out.Abilities[i] = AbilityDefinition{Title: a.Title.Clone(), Desc: a.Desc.Clone()}
	}
	return out
}

func (w WeaponDefinition) Clone() WeaponDefinition {
	out := w
	out.Name = w.Name.Clone()
	out.Rules = make([]text.Localized, len(w.Rules))
	for i, r := range w.Rules {
		out.Rules[i] = r.Clone()
	}
	return out
}

func (e EquipmentDefinition) Clone() EquipmentDefinition {
	out := e
	out.Name = e.Name.Clone()
	out.Desc = e.Desc.Clone()
	return out
}
