package library

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"ktcompanion/internal/catalog"
	"ktcompanion/internal/roster"
)

// ========================= Roster Library =========================
// The persisted collection of saved rosters. The store keeps minimal
// projections only; full operative data is rehydrated from the catalog
// on load. The collection is read in full and rewritten in full on
// every mutation: there is exactly one logical writer.

// SavedOperative is the minimal persisted form of one operative.
type SavedOperative struct {
	OpID            string             `json:"opId"`
	DisabledWeapons []string           `json:"disabledWeapons"`
	Equipments      []roster.Equipment `json:"equipments"`
}

// SavedRoster is one persisted roster record.
type SavedRoster struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	TeamID    string           `json:"teamId"`
	Roster    []SavedOperative `json:"roster"`
	UpdatedAt int64            `json:"updatedAt"` // epoch millis
}

type Library struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS rosters (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	team_id    TEXT NOT NULL,
	payload    TEXT NOT NULL,
	updated_at INTEGER NOT NULL
);
`

// Open opens (creating if needed) the library database at path.
func Open(path string) (*Library, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("pragma: %w", err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &Library{db: db}, nil
}

func (l *Library) Close() error {
	return l.db.Close()
}

// LoadAll returns every saved roster ordered most-recent first. Rows
// with unparseable payloads are skipped, not surfaced.
func (l *Library) LoadAll() ([]SavedRoster, error) {
	rows, err := l.db.Query(
		"SELECT id, name, team_id, payload, updated_at FROM rosters ORDER BY updated_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SavedRoster
	for rows.Next() {
		var r SavedRoster
		var payload string
		if err := rows.Scan(&r.ID, &r.Name, &r.TeamID, &payload, &r.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(payload), &r.Roster); err != nil {
			log.Printf("library: skipping corrupt roster %s: %v", r.ID, err)
			continue
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// MostRecent returns the roster with the highest updatedAt, or nil.
func MostRecent(rosters []SavedRoster) *SavedRoster {
	var best *SavedRoster
	for i := range rosters {
		if best == nil || rosters[i].UpdatedAt > best.UpdatedAt {
			best = &rosters[i]
		}
	}
	return best
}

// Save persists a roster projection. An empty existingID creates a new
// record with a fresh id; otherwise the matching record is overwritten
// in place, or appended if it vanished. The whole collection is
// rewritten either way.
func (l *Library) Save(name, teamID string, ops []SavedOperative, existingID string) (SavedRoster, error) {
	all, err := l.LoadAll()
	if err != nil {
		return SavedRoster{}, err
	}

	rec := SavedRoster{
		ID:        existingID,
		Name:      name,
		TeamID:    teamID,
		Roster:    ops,
		UpdatedAt: time.Now().UnixMilli(),
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
		all = append(all, rec)
	} else {
		found := false
		for i := range all {
			if all[i].ID == rec.ID {
				all[i] = rec
				found = true
				break
			}
		}
		if !found {
			all = append(all, rec)
		}
	}

	if err := l.rewriteAll(all); err != nil {
		return SavedRoster{}, err
	}
	return rec, nil
}

// Delete removes the matching record and rewrites the collection.
// Deleting an unknown id is a no-op.
func (l *Library) Delete(id string) error {
	all, err := l.LoadAll()
	if err != nil {
		return err
	}
	kept := all[:0]
	for _, r := range all {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	return l.rewriteAll(kept)
}

func (l *Library) rewriteAll(all []SavedRoster) error {
	tx, err := l.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec("DELETE FROM rosters"); err != nil {
		_ = tx.Rollback()
		return err
	}
	for _, r := range all {
		payload, err := json.Marshal(r.Roster)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
		if _, err := tx.Exec(
			"INSERT INTO rosters (id, name, team_id, payload, updated_at) VALUES (?, ?, ?, ?, ?)",
			r.ID, r.Name, r.TeamID, string(payload), r.UpdatedAt,
		); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// Snapshot projects builder operatives into their minimal persisted
// form. Disabled weapons are recorded by English name.
func Snapshot(ops []*roster.Operative) []SavedOperative {
	out := make([]SavedOperative, 0, len(ops))
	for _, op := range ops {
		saved := SavedOperative{
			OpID:            op.Def.ID,
			DisabledWeapons: []string{},
			Equipments:      make([]roster.Equipment, 0, len(op.Equipment)),
		}
		for i, active := range op.WeaponActive {
			if !active {
				saved.DisabledWeapons = append(saved.DisabledWeapons, op.Def.Weapons[i].Name.Resolve("en"))
			}
		}
		for _, e := range op.Equipment {
			saved.Equipments = append(saved.Equipments, e.Clone())
		}
		out = append(out, saved)
	}
	return out
}

// Hydrate rebuilds live operative instances from a saved projection
// against the current team definition. Entries whose operative id is
// no longer in the catalog are dropped silently.
func Hydrate(saved SavedRoster, team catalog.TeamDefinition) []*roster.Operative {
	var out []*roster.Operative
	for _, s := range saved.Roster {
		def, ok := findOperative(team, s.OpID)
		if !ok {
			continue
		}
		op := roster.NewOperative(def)
		for i, w := range op.Def.Weapons {
			if contains(s.DisabledWeapons, w.Name.Resolve("en")) {
				op.WeaponActive[i] = false
			}
		}
		for _, e := range s.Equipments {
			op.Equipment = append(op.Equipment, e.Clone())
		}
		out = append(out, op)
	}
	return out
}

func findOperative(team catalog.TeamDefinition, id string) (catalog.OperativeDefinition, bool) {
	for _, def := range team.Operatives {
		if def.ID == id {
			return def, true
		}
	}
	return catalog.OperativeDefinition{}, false
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
