package app

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"ktcompanion/internal/catalog"
	"ktcompanion/internal/game"
	"ktcompanion/internal/library"
	"ktcompanion/internal/roster"
	"ktcompanion/internal/search"
)

// ========================= Application Controller =========================
// App owns all live state: the static catalog, the roster library, the
// builder, the optional game session and the search index. Every state
// transition runs to completion under one mutex before the next command
// is processed; the UI only ever sees complete snapshots.

var (
	ErrUnknownTeam   = errors.New("team is not in the catalog")
	ErrUnknownRoster = errors.New("no saved roster with that id")
	ErrNoSession     = errors.New("no game in progress")
)

type App struct {
	mu sync.Mutex

	store   *catalog.Store
	lib     *library.Library
	builder *roster.Builder
	session *game.Session
	index   *search.Index

	rosterID   string
	rosterName string

	defaultLang string

	// onChange fires after every successful mutation, outside the
	// lock, so listeners may take fresh snapshots.
	onChange func()
}

// New wires the controller and restores the most recently used roster,
// if any; otherwise it starts a fresh roster on the first catalog team.
func New(store *catalog.Store, lib *library.Library, defaultLang string) *App {
	a := &App{
		store:       store,
		lib:         lib,
		builder:     roster.NewBuilder(),
		defaultLang: defaultLang,
	}

	rosters, err := lib.LoadAll()
	if err != nil {
		log.Printf("app: loading roster library: %v", err)
		rosters = nil
	}

	if recent := library.MostRecent(rosters); recent != nil {
		if err := a.loadRosterLocked(*recent); err != nil {
			log.Printf("app: restoring roster %s: %v", recent.ID, err)
			a.resetToNewRosterLocked()
		}
	} else {
		a.resetToNewRosterLocked()
	}
	return a
}

// SetOnChange registers the post-mutation callback.
func (a *App) SetOnChange(fn func()) {
	a.mu.Lock()
	a.onChange = fn
	a.mu.Unlock()
}

// mutate runs fn under the lock and fires onChange on success. The
// callback is read under the lock but invoked outside it, so listeners
// may take fresh snapshots.
func (a *App) mutate(fn func() error) error {
	a.mu.Lock()
	err := fn()
	notify := a.onChange
	a.mu.Unlock()
	if err == nil && notify != nil {
		notify()
	}
	return err
}

// autosaveLocked persists the builder as the current roster, creating
// the record on first save.
func (a *App) autosaveLocked() {
	rec, err := a.lib.Save(a.rosterName, a.builder.TeamID, library.Snapshot(a.builder.Ops), a.rosterID)
	if err != nil {
		log.Printf("app: autosave: %v", err)
		return
	}
	a.rosterID = rec.ID
}

func (a *App) defaultRosterName() string {
	if a.defaultLang == "ko" {
		return "새 로스터"
	}
	return "New Roster"
}

// resetToNewRosterLocked returns the builder to the "new roster" state
// on the first catalog team.
func (a *App) resetToNewRosterLocked() {
	a.rosterID = ""
	a.rosterName = a.defaultRosterName()
	a.builder.SelectTeam(a.store.FirstTeamID())
	a.index = search.Rebuild(a.store, a.builder.TeamID)
}

// loadRosterLocked hydrates a saved roster into the builder. If the
// roster's team is gone from the catalog nothing changes.
func (a *App) loadRosterLocked(saved library.SavedRoster) error {
	team, ok := a.store.Team(saved.TeamID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTeam, saved.TeamID)
	}
	a.rosterID = saved.ID
	a.rosterName = saved.Name
	a.builder.Replace(saved.TeamID, library.Hydrate(saved, team))
	a.index = search.Rebuild(a.store, saved.TeamID)
	return nil
}

// ========================= Roster commands =========================

// SelectTeam switches the builder team, clearing the roster.
func (a *App) SelectTeam(teamID string) error {
	return a.mutate(func() error {
		if _, ok := a.store.Team(teamID); !ok {
			return fmt.Errorf("%w: %s", ErrUnknownTeam, teamID)
		}
		a.builder.SelectTeam(teamID)
		a.index = search.Rebuild(a.store, teamID)
		a.autosaveLocked()
		return nil
	})
}

// SetRosterName renames the current roster.
func (a *App) SetRosterName(name string) {
	_ = a.mutate(func() error {
		if name == "" {
			name = "Unknown"
		}
		a.rosterName = name
		a.autosaveLocked()
		return nil
	})
}

// NewRoster abandons the current roster selection and starts fresh.
func (a *App) NewRoster() {
	_ = a.mutate(func() error {
		a.resetToNewRosterLocked()
		return nil
	})
}

// SwitchRoster loads a saved roster by id.
func (a *App) SwitchRoster(id string) error {
	return a.mutate(func() error {
		saved, err := a.findRosterLocked(id)
		if err != nil {
			return err
		}
		return a.loadRosterLocked(saved)
	})
}

// DeleteRoster removes the current roster from the library and resets
// to a new roster.
func (a *App) DeleteRoster() error {
	return a.mutate(func() error {
		if a.rosterID == "" {
			return ErrUnknownRoster
		}
		if err := a.lib.Delete(a.rosterID); err != nil {
			return err
		}
		a.resetToNewRosterLocked()
		return nil
	})
}

// AddOperative appends an instance of the definition with the given id
// from the current team.
func (a *App) AddOperative(opID string) error {
	return a.mutate(func() error {
		team, ok := a.store.Team(a.builder.TeamID)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownTeam, a.builder.TeamID)
		}
		for _, def := range team.Operatives {
			if def.ID == opID {
				a.builder.AddOperative(def)
				a.autosaveLocked()
				return nil
			}
		}
		return fmt.Errorf("operative %q is not in team %s", opID, team.ID)
	})
}

func (a *App) RemoveOperative(index int) error {
	return a.mutate(func() error {
		if err := a.builder.RemoveOperative(index); err != nil {
			return err
		}
		a.autosaveLocked()
		return nil
	})
}

func (a *App) ToggleWeapon(opIndex, weaponIndex int) error {
	return a.mutate(func() error {
		if err := a.builder.ToggleWeapon(opIndex, weaponIndex); err != nil {
			return err
		}
		a.autosaveLocked()
		return nil
	})
}

// AddEquipment assigns the team's equipment at catalog index eqIndex
// to the operative.
func (a *App) AddEquipment(opIndex, eqIndex int) error {
	return a.mutate(func() error {
		team, ok := a.store.Team(a.builder.TeamID)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownTeam, a.builder.TeamID)
		}
		if eqIndex < 0 || eqIndex >= len(team.Equipments) {
			return fmt.Errorf("equipment index %d out of range", eqIndex)
		}
		if err := a.builder.AddEquipment(opIndex, team.Equipments[eqIndex]); err != nil {
			return err
		}
		a.autosaveLocked()
		return nil
	})
}

func (a *App) RemoveEquipment(opIndex, eqIndex int) error {
	return a.mutate(func() error {
		if err := a.builder.RemoveEquipment(opIndex, eqIndex); err != nil {
			return err
		}
		a.autosaveLocked()
		return nil
	})
}

// ========================= Game commands =========================

// StartGame begins a session from the current builder squad.
func (a *App) StartGame() error {
	return a.mutate(func() error {
		team, ok := a.store.Team(a.builder.TeamID)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownTeam, a.builder.TeamID)
		}
		session, err := game.Start(a.rosterName, team.ID, a.builder.Ops, team.ResourceConfig)
		if err != nil {
			return err
		}
		a.session = session
		a.index = search.Rebuild(a.store, team.ID)
		return nil
	})
}

// AttachCoopTeam hydrates a second team from any saved roster and adds
// it to the running session.
func (a *App) AttachCoopTeam(rosterID string) error {
	return a.mutate(func() error {
		if a.session == nil {
			return ErrNoSession
		}
		saved, err := a.findRosterLocked(rosterID)
		if err != nil {
			return err
		}
		team, ok := a.store.Team(saved.TeamID)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownTeam, saved.TeamID)
		}
		a.session.AttachCoop(saved.Name, team.ID, library.Hydrate(saved, team), team.ResourceConfig)
		a.index = search.Rebuild(a.store, a.session.Left.TeamID, team.ID)
		return nil
	})
}

// ExitGame discards the session and returns to roster building.
func (a *App) ExitGame() {
	_ = a.mutate(func() error {
		a.session = nil
		a.index = search.Rebuild(a.store)
		return nil
	})
}

func (a *App) SetWounds(side game.Side, opIndex, value int) error {
	return a.mutate(func() error {
		ts, err := a.teamStateLocked(side)
		if err != nil {
			return err
		}
		ts.SetWounds(opIndex, value)
		return nil
	})
}

func (a *App) UpdateResource(side game.Side, res game.Resource, delta int) error {
	return a.mutate(func() error {
		ts, err := a.teamStateLocked(side)
		if err != nil {
			return err
		}
		ts.UpdateResource(res, delta)
		return nil
	})
}

// SpendCommandPoint spends one CP. game.ErrNoCommandPoints reports the
// expected empty-pool condition; nothing changed in that case.
func (a *App) SpendCommandPoint(side game.Side) error {
	return a.mutate(func() error {
		ts, err := a.teamStateLocked(side)
		if err != nil {
			return err
		}
		return ts.SpendCommandPoint()
	})
}

func (a *App) AdvanceTurnPointer(delta int) error {
	return a.mutate(func() error {
		if a.session == nil {
			return ErrNoSession
		}
		a.session.AdvanceTurnPointer(delta)
		return nil
	})
}

func (a *App) EndTurn() error {
	return a.mutate(func() error {
		if a.session == nil {
			return ErrNoSession
		}
		a.session.EndTurn()
		return nil
	})
}

func (a *App) ToggleEquipmentUsed(side game.Side, opIndex, eqIndex int) error {
	return a.mutate(func() error {
		ts, err := a.teamStateLocked(side)
		if err != nil {
			return err
		}
		ts.ToggleEquipmentUsed(opIndex, eqIndex)
		return nil
	})
}

// ========================= Reads =========================

// Search queries the current index.
func (a *App) Search(term string) []search.Entry {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.index == nil {
		return nil
	}
	return a.index.Query(term)
}

func (a *App) findRosterLocked(id string) (library.SavedRoster, error) {
	rosters, err := a.lib.LoadAll()
	if err != nil {
		return library.SavedRoster{}, err
	}
	for _, r := range rosters {
		if r.ID == id {
			return r, nil
		}
	}
	return library.SavedRoster{}, fmt.Errorf("%w: %s", ErrUnknownRoster, id)
}

func (a *App) teamStateLocked(side game.Side) (*game.TeamState, error) {
	if a.session == nil {
		return nil, ErrNoSession
	}
	ts := a.session.Team(side)
	if ts == nil {
		return nil, fmt.Errorf("%w: side has no team attached", ErrNoSession)
	}
	return ts, nil
}
