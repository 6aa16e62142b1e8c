package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed team.schema.json
var teamSchemaJSON string

var teamSchema = jsonschema.MustCompileString("team.schema.json", teamSchemaJSON)

// Store holds every loaded team definition plus the common rules. It is
// populated once by Load and read-only afterward.
type Store struct {
	teams map[string]TeamDefinition
	order []string
	rules []CommonRule
}

// universal.json carries the ploys and equipment shared by all teams.
type universalData struct {
	Ploys      Ploys                 `json:"ploys"`
	Equipments []EquipmentDefinition `json:"equipments"`
}

// Load reads the team manifest, the universal rule file and the common
// rules list from dataDir. A missing or malformed manifest, universal
// file or rules file aborts the load; a bad individual team file only
// excludes that team.
//
// Layout:
//
//	dataDir/rules.json          common rules
//	dataDir/teams/index.json    manifest: ["teamA.json", ...]
//	dataDir/teams/universal.json
//	dataDir/teams/<file>.json   one TeamDefinition each
func Load(dataDir string) (*Store, error) {
	manifestPath := filepath.Join(dataDir, "teams", "index.json")
	raw, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var manifest []string
	if err := json.Unmarshal(raw, &manifest); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}

	raw, err = os.ReadFile(filepath.Join(dataDir, "teams", "universal.json"))
	if err != nil {
		return nil, fmt.Errorf("read universal rules: %w", err)
	}
	var universal universalData
	if err := json.Unmarshal(raw, &universal); err != nil {
		return nil, fmt.Errorf("parse universal rules: %w", err)
	}

	raw, err = os.ReadFile(filepath.Join(dataDir, "rules.json"))
	if err != nil {
		return nil, fmt.Errorf("read common rules: %w", err)
	}
	var rules []CommonRule
	if err := json.Unmarshal(raw, &rules); err != nil {
		return nil, fmt.Errorf("parse common rules: %w", err)
	}

	s := &Store{teams: map[string]TeamDefinition{}, rules: rules}
	for _, file := range manifest {
		team, err := loadTeamFile(filepath.Join(dataDir, "teams", file))
		if err != nil {
			log.Printf("catalog: skipping %s: %v", file, err)
			continue
		}
		if _, dup := s.teams[team.ID]; dup {
			log.Printf("catalog: skipping %s: duplicate team id %q", file, team.ID)
			continue
		}
		mergeUniversal(&team, universal)
		s.teams[team.ID] = team
		s.order = append(s.order, team.ID)
	}
	return s, nil
}

func loadTeamFile(path string) (TeamDefinition, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return TeamDefinition{}, err
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return TeamDefinition{}, fmt.Errorf("parse: %w", err)
	}
	if err := teamSchema.Validate(doc); err != nil {
		return TeamDefinition{}, fmt.Errorf("schema: %w", err)
	}
	var team TeamDefinition
	if err := json.Unmarshal(raw, &team); err != nil {
		return TeamDefinition{}, fmt.Errorf("decode: %w", err)
	}
	if team.ID == "" {
		return TeamDefinition{}, fmt.Errorf("empty team id")
	}
	return team, nil
}

// mergeUniversal appends the shared ploys and equipment after the
// team's own entries. Duplicates are permitted; the source data decides.
func mergeUniversal(team *TeamDefinition, u universalData) {
	team.Ploys.Strategy = append(team.Ploys.Strategy, u.Ploys.Strategy...)
	team.Ploys.Firefight = append(team.Ploys.Firefight, u.Ploys.Firefight...)
	team.Equipments = append(team.Equipments, u.Equipments...)
}

// Teams returns all loaded teams in manifest order.
func (s *Store) Teams() []TeamDefinition {
	out := make([]TeamDefinition, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.teams[id])
	}
	return out
}

// Team looks up one team definition by id.
func (s *Store) Team(id string) (TeamDefinition, bool) {
	t, ok := s.teams[id]
	return t, ok
}

// CommonRules returns the universal rule list shared by every team.
func (s *Store) CommonRules() []CommonRule {
	return s.rules
}

// FirstTeamID returns the first team in manifest order, or "".
func (s *Store) FirstTeamID() string {
	if len(s.order) == 0 {
		return ""
	}
	return s.order[0]
}
