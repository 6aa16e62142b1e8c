package app

import (
	"ktcompanion/internal/game"
	"ktcompanion/internal/roster"
)

// ========================= Snapshots =========================
// The UI consumes fully-resolved read-only views; all localized text
// is flattened to the requested language here and all derived combat
// state (injury penalties, wound cells) is computed on read.

type Snapshot struct {
	Lang            string          `json:"lang"`
	Teams           []TeamInfo      `json:"teams"`
	Rosters         []RosterInfo    `json:"rosters"`
	CurrentRosterID string          `json:"currentRosterId"`
	RosterName      string          `json:"rosterName"`
	TeamID          string          `json:"teamId"`
	EquipCount      int             `json:"equipCount"`
	Operatives      []OperativeView `json:"operatives"`
	Game            *GameView       `json:"game,omitempty"`
}

type TeamInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

type RosterInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	TeamID    string `json:"teamId"`
	UpdatedAt int64  `json:"updatedAt"`
}

type OperativeView struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Role      string          `json:"role,omitempty"`
	Move      int             `json:"move"`
	APL       int             `json:"apl"`
	Defense   int             `json:"defense"`
	Save      int             `json:"save"`
	Wounds    int             `json:"wounds"`
	Weapons   []WeaponView    `json:"weapons"`
	Abilities []AbilityView   `json:"abilities,omitempty"`
	Equipment []EquipmentView `json:"equipment"`
}

type WeaponView struct {
	Name    string   `json:"name"`
	Range   string   `json:"range"`
	Attacks int      `json:"attacks"`
	Hit     int      `json:"hit"`
	Damage  string   `json:"damage"`
	Rules   []string `json:"rules,omitempty"`
	Active  bool     `json:"active"`
}

type AbilityView struct {
	Title string `json:"title"`
	Desc  string `json:"desc"`
}

type EquipmentView struct {
	Name string `json:"name"`
	Desc string `json:"desc"`
	Used bool   `json:"isUsed"`
}

type GameView struct {
	TP    int       `json:"tp"`
	Left  *TeamView `json:"left"`
	Right *TeamView `json:"right,omitempty"`
}

type TeamView struct {
	Name         string       `json:"name"`
	TeamID       string       `json:"teamId"`
	Color        string       `json:"color"`
	VP           int          `json:"vp"`
	CP           int          `json:"cp"`
	FP           int          `json:"fp"`
	HasResource  bool         `json:"hasResource"`
	ResourceName string       `json:"resourceName,omitempty"`
	ResourceMax  int          `json:"resourceMax,omitempty"`
	Ops          []GameOpView `json:"operatives"`
}

type GameOpView struct {
	OperativeView
	CurrentWounds     int      `json:"currentWounds"`
	StartOfTurnWounds int      `json:"startOfTurnWounds"`
	Incapacitated     bool     `json:"incapacitated"`
	Injured           bool     `json:"injured"`
	EffectiveMove     int      `json:"effectiveMove"`
	WoundCells        []string `json:"woundCells"`
}

// Snapshot renders the complete application state for one language.
func (a *App) Snapshot(lang string) Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	snap := Snapshot{
		Lang:            lang,
		CurrentRosterID: a.rosterID,
		RosterName:      a.rosterName,
		TeamID:          a.builder.TeamID,
		EquipCount:      a.builder.EquipCount(),
		Teams:           []TeamInfo{},
		Operatives:      []OperativeView{},
		Rosters:         []RosterInfo{},
	}

	for _, team := range a.store.Teams() {
		snap.Teams = append(snap.Teams, TeamInfo{
			ID:    team.ID,
			Name:  team.Name.Resolve(lang),
			Color: team.Color,
		})
	}

	if rosters, err := a.lib.LoadAll(); err == nil {
		for _, r := range rosters {
			snap.Rosters = append(snap.Rosters, RosterInfo{ID: r.ID, Name: r.Name, TeamID: r.TeamID, UpdatedAt: r.UpdatedAt})
		}
	}

	for _, op := range a.builder.Ops {
		snap.Operatives = append(snap.Operatives, builderOpView(op, lang))
	}

	if a.session != nil {
		gv := &GameView{TP: a.session.TP}
		gv.Left = a.teamView(a.session.Left, lang)
		if a.session.Right != nil {
			gv.Right = a.teamView(a.session.Right, lang)
		}
		snap.Game = gv
	}
	return snap
}

func builderOpView(op *roster.Operative, lang string) OperativeView {
	v := OperativeView{
		ID:        op.Def.ID,
		Name:      op.Def.Name.Resolve(lang),
		Role:      op.Def.Role.Resolve(lang),
		Move:      op.Def.Stats.Move,
		APL:       op.Def.Stats.ActionPoints,
		Defense:   op.Def.Stats.Defense,
		Save:      op.Def.Stats.Save,
		Wounds:    op.Def.Stats.Wounds,
		Weapons:   []WeaponView{},
		Equipment: []EquipmentView{},
	}
	for i, w := range op.Def.Weapons {
		wv := WeaponView{
			Name:    w.Name.Resolve(lang),
			Range:   string(w.Range),
			Attacks: w.Attacks,
			Hit:     w.Hit,
			Damage:  w.Damage,
			Active:  op.WeaponActive[i],
		}
		for _, r := range w.Rules {
			wv.Rules = append(wv.Rules, r.Resolve(lang))
		}
		v.Weapons = append(v.Weapons, wv)
	}
	for _, a := range op.Def.Abilities {
		v.Abilities = append(v.Abilities, AbilityView{Title: a.Title.Resolve(lang), Desc: a.Desc.Resolve(lang)})
	}
	for _, e := range op.Equipment {
		v.Equipment = append(v.Equipment, EquipmentView{Name: e.Name.Resolve(lang), Desc: e.Desc.Resolve(lang), Used: e.Used})
	}
	return v
}

func (a *App) teamView(ts *game.TeamState, lang string) *TeamView {
	tv := &TeamView{
		Name:        ts.Name,
		TeamID:      ts.TeamID,
		VP:          ts.VP,
		CP:          ts.CP,
		FP:          ts.FP,
		HasResource: ts.HasResource,
		ResourceMax: ts.ResourceMax,
	}
	if team, ok := a.store.Team(ts.TeamID); ok {
		tv.Color = team.Color
		if team.ResourceConfig != nil {
			tv.ResourceName = team.ResourceConfig.Name.Resolve(lang)
		}
	}
	for _, op := range ts.Ops {
		gov := GameOpView{
			OperativeView:     builderOpView(&op.Operative, lang),
			CurrentWounds:     op.CurrentWounds,
			StartOfTurnWounds: op.StartOfTurnWounds,
			Incapacitated:     op.Incapacitated(),
			Injured:           op.Injured(),
			EffectiveMove:     op.EffectiveMove(),
		}
		// Injury worsens displayed hit thresholds.
		for i := range gov.Weapons {
			gov.Weapons[i].Hit = op.EffectiveHit(i)
		}
		for i := 1; i <= op.BaseWounds(); i++ {
			gov.WoundCells = append(gov.WoundCells, string(op.WoundCell(i)))
		}
		tv.Ops = append(tv.Ops, gov)
	}
	return tv
}
