package game

import (
	"errors"
	"testing"

	"ktcompanion/internal/catalog"
	"ktcompanion/internal/roster"
	"ktcompanion/internal/text"
)

func squadMember(id string, move, hit, wounds int) *roster.Operative {
	return roster.NewOperative(catalog.OperativeDefinition{
		ID:   id,
		Name: text.New(id),
		Stats: catalog.Statline{
			Move: move, ActionPoints: 2, Defense: 3, Save: 4, Wounds: wounds,
		},
		Weapons: []catalog.WeaponDefinition{
			{Name: text.New("gun"), Range: catalog.RangeRanged, Attacks: 4, Hit: hit, Damage: "3/4"},
		},
	})
}

func testSquad(wounds ...int) []*roster.Operative {
	var ops []*roster.Operative
	for i, w := range wounds {
		ops = append(ops, squadMember(string(rune('a'+i)), 6, 3, w))
	}
	return ops
}

func TestStartRejectsEmptySquad(t *testing.T) {
	if _, err := Start("Team", "team", nil, nil); !errors.Is(err, ErrEmptyRoster) {
		t.Fatalf("expected ErrEmptyRoster, got %v", err)
	}
}

func TestStartFiltersWoundlessOperatives(t *testing.T) {
	s, err := Start("Team", "team", testSquad(10, 0, 8), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Left.Ops) != 2 {
		t.Fatalf("expected woundless operative filtered, got %d", len(s.Left.Ops))
	}
	if s.TP != 1 {
		t.Fatalf("turn pointer must start at 1, got %d", s.TP)
	}
	if s.Left.CP != 2 {
		t.Fatalf("command points must start at 2, got %d", s.Left.CP)
	}
	for _, op := range s.Left.Ops {
		if op.CurrentWounds != op.BaseWounds() || op.StartOfTurnWounds != op.BaseWounds() {
			t.Fatalf("operatives must start at full wounds")
		}
	}
}

func TestStartCopiesRosterState(t *testing.T) {
	squad := testSquad(10)
	s, _ := Start("Team", "team", squad, nil)
	s.Left.Ops[0].WeaponActive[0] = false
	if !squad[0].WeaponActive[0] {
		t.Fatalf("live state must not alias the roster")
	}
}

func TestSetWoundsTieBreak(t *testing.T) {
	s, _ := Start("Team", "team", testSquad(10), nil)
	ts := s.Left

	ts.SetWounds(0, 6)
	if ts.Ops[0].CurrentWounds != 6 {
		t.Fatalf("expected 6, got %d", ts.Ops[0].CurrentWounds)
	}
	// Repeating the same value drops one below it.
	ts.SetWounds(0, 6)
	if ts.Ops[0].CurrentWounds != 5 {
		t.Fatalf("expected tie-break to 5, got %d", ts.Ops[0].CurrentWounds)
	}
	// Holds for every value, including 1 -> 0.
	ts.SetWounds(0, 1)
	ts.SetWounds(0, 1)
	if ts.Ops[0].CurrentWounds != 0 {
		t.Fatalf("expected 0, got %d", ts.Ops[0].CurrentWounds)
	}
	// Out-of-range index is ignored.
	ts.SetWounds(9, 4)
}

func TestInjuredIsStrictHalf(t *testing.T) {
	s, _ := Start("Team", "team", testSquad(10), nil)
	op := s.Left.Ops[0]

	s.Left.SetWounds(0, 6)
	if op.Injured() {
		t.Fatalf("6 of 10 is not injured")
	}
	s.Left.SetWounds(0, 5)
	if op.Injured() {
		t.Fatalf("exactly half is not injured")
	}
	if op.EffectiveMove() != 6 || op.EffectiveHit(0) != 3 {
		t.Fatalf("uninjured stats must be unmodified")
	}

	s.Left.SetWounds(0, 4)
	if !op.Injured() {
		t.Fatalf("4 of 10 is injured")
	}
	if op.EffectiveMove() != 4 {
		t.Fatalf("injured move should be 4, got %d", op.EffectiveMove())
	}
	if op.EffectiveHit(0) != 4 {
		t.Fatalf("injured hit should be 4+, got %d", op.EffectiveHit(0))
	}

	s.Left.SetWounds(0, 0)
	if op.Injured() {
		t.Fatalf("incapacitated operatives are not injured")
	}
	if !op.Incapacitated() {
		t.Fatalf("zero wounds is incapacitated")
	}
}

func TestEffectiveMoveFloorsAtZero(t *testing.T) {
	squad := []*roster.Operative{squadMember("slow", 1, 3, 10)}
	s, _ := Start("Team", "team", squad, nil)
	s.Left.SetWounds(0, 2)
	if got := s.Left.Ops[0].EffectiveMove(); got != 0 {
		t.Fatalf("move must floor at 0, got %d", got)
	}
}

func TestWoundCellClassification(t *testing.T) {
	s, _ := Start("Team", "team", testSquad(10), nil)
	op := s.Left.Ops[0]

	// Baseline 7, current 4: cells 1-4 active, 5-7 damaged, 8-10 inactive.
	op.CurrentWounds = 7
	s.Left.FinalizeWoundState()
	op.CurrentWounds = 4

	cases := []struct {
		cell int
		want CellState
	}{
		{1, CellActive}, {4, CellActive},
		{5, CellDamaged}, {7, CellDamaged},
		{8, CellInactive}, {10, CellInactive},
	}
	for _, c := range cases {
		if got := op.WoundCell(c.cell); got != c.want {
			t.Fatalf("cell %d: want %s, got %s", c.cell, c.want, got)
		}
	}

	// Healing above the baseline shows as recovered.
	op.CurrentWounds = 9
	if got := op.WoundCell(8); got != CellRecovered {
		t.Fatalf("cell 8: want %s, got %s", CellRecovered, got)
	}
	if got := op.WoundCell(10); got != CellInactive {
		t.Fatalf("cell 10: want %s, got %s", CellInactive, got)
	}
}

func TestUpdateResourceFloorsAndClamps(t *testing.T) {
	cfg := &catalog.ResourceConfig{Name: text.New("Charge"), Start: 1, Max: 6}
	s, _ := Start("Team", "team", testSquad(10), cfg)
	ts := s.Left

	ts.UpdateResource(VictoryPoints, -5)
	if ts.VP != 0 {
		t.Fatalf("VP must floor at 0, got %d", ts.VP)
	}
	ts.UpdateResource(CommandPoints, -5)
	if ts.CP != 0 {
		t.Fatalf("CP must floor at 0, got %d", ts.CP)
	}
	ts.UpdateResource(FactionResource, 10)
	if ts.FP != 6 {
		t.Fatalf("faction resource must clamp at max, got %d", ts.FP)
	}
	ts.UpdateResource(FactionResource, -10)
	if ts.FP != 0 {
		t.Fatalf("faction resource must floor at 0, got %d", ts.FP)
	}
}

func TestFactionResourceStartsAtConfiguredValue(t *testing.T) {
	cfg := &catalog.ResourceConfig{Name: text.New("Charge"), Start: 3, Max: 6}
	s, _ := Start("Team", "team", testSquad(10), cfg)
	if !s.Left.HasResource || s.Left.FP != 3 || s.Left.ResourceMax != 6 {
		t.Fatalf("resource pool not initialized from config")
	}

	plain, _ := Start("Team", "team", testSquad(10), nil)
	if plain.Left.HasResource {
		t.Fatalf("teams without a config must not expose a resource pool")
	}
}

func TestSpendCommandPoint(t *testing.T) {
	s, _ := Start("Team", "team", testSquad(10), nil)
	ts := s.Left

	if err := ts.SpendCommandPoint(); err != nil {
		t.Fatal(err)
	}
	if err := ts.SpendCommandPoint(); err != nil {
		t.Fatal(err)
	}
	if err := ts.SpendCommandPoint(); !errors.Is(err, ErrNoCommandPoints) {
		t.Fatalf("expected ErrNoCommandPoints, got %v", err)
	}
	if ts.CP != 0 {
		t.Fatalf("failed spend must not mutate CP, got %d", ts.CP)
	}
}

func TestFinalizeWoundStateIsIdempotent(t *testing.T) {
	s, _ := Start("Team", "team", testSquad(10), nil)
	op := s.Left.Ops[0]

	op.CurrentWounds = 6
	s.Left.FinalizeWoundState()
	if op.StartOfTurnWounds != 6 {
		t.Fatalf("baseline not updated")
	}
	s.Left.FinalizeWoundState()
	if op.StartOfTurnWounds != 6 || op.CurrentWounds != 6 {
		t.Fatalf("repeated finalize must be a no-op")
	}
}

func TestEndTurnIncrementsEverything(t *testing.T) {
	s, _ := Start("Alpha", "alpha", testSquad(10), nil)
	s.AttachCoop("Beta", "beta", testSquad(8), nil)
	s.TP = 3
	s.Left.CP = 2
	s.Right.CP = 1
	s.Left.Ops[0].CurrentWounds = 6
	s.Right.Ops[0].CurrentWounds = 4

	s.EndTurn()

	if s.TP != 4 {
		t.Fatalf("turn pointer should be 4, got %d", s.TP)
	}
	if s.Left.CP != 3 || s.Right.CP != 2 {
		t.Fatalf("each team gains exactly one CP, got %d/%d", s.Left.CP, s.Right.CP)
	}
	if s.Left.Ops[0].StartOfTurnWounds != 6 || s.Right.Ops[0].StartOfTurnWounds != 4 {
		t.Fatalf("end of turn must finalize wound state on both teams")
	}
}

func TestAdvanceTurnPointer(t *testing.T) {
	s, _ := Start("Team", "team", testSquad(10), nil)
	s.Left.Ops[0].CurrentWounds = 7

	s.AdvanceTurnPointer(-5)
	if s.TP != 1 {
		t.Fatalf("turn pointer floors at 1, got %d", s.TP)
	}
	// Even a clamped move locks in the wound baseline.
	if s.Left.Ops[0].StartOfTurnWounds != 7 {
		t.Fatalf("pointer move must finalize wound state")
	}

	s.AdvanceTurnPointer(2)
	if s.TP != 3 {
		t.Fatalf("expected 3, got %d", s.TP)
	}
}

func TestToggleEquipmentUsed(t *testing.T) {
	squad := testSquad(10)
	squad[0].Equipment = append(squad[0].Equipment, roster.Equipment{
		EquipmentDefinition: catalog.EquipmentDefinition{Name: text.New("frag")},
	})
	s, _ := Start("Team", "team", squad, nil)
	ts := s.Left

	ts.ToggleEquipmentUsed(0, 0)
	if !ts.Ops[0].Equipment[0].Used {
		t.Fatalf("toggle should mark equipment used")
	}
	ts.ToggleEquipmentUsed(0, 0)
	if ts.Ops[0].Equipment[0].Used {
		t.Fatalf("toggle should be its own inverse")
	}
	// Mutating live equipment must not leak back into the roster.
	ts.ToggleEquipmentUsed(0, 0)
	if squad[0].Equipment[0].Used {
		t.Fatalf("live equipment aliases the roster instance")
	}
	// Out-of-range indices are ignored.
	ts.ToggleEquipmentUsed(0, 5)
	ts.ToggleEquipmentUsed(9, 0)
}

func TestTeamsAndSides(t *testing.T) {
	s, _ := Start("Alpha", "alpha", testSquad(10), nil)
	if s.Team(SideRight) != nil {
		t.Fatalf("no right team before coop attach")
	}
	if len(s.Teams()) != 1 {
		t.Fatalf("expected one team")
	}

	s.AttachCoop("Beta", "beta", testSquad(8), nil)
	if s.Team(SideRight) == nil || s.Team(SideRight).Name != "Beta" {
		t.Fatalf("right team not attached")
	}
	teams := s.Teams()
	if len(teams) != 2 || teams[0].Name != "Alpha" {
		t.Fatalf("teams order must be left first")
	}
}
