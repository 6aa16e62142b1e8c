package search

import (
	"os"
	"path/filepath"
	"testing"

	"ktcompanion/internal/catalog"
)

const fixtureRules = `[
  {"key": "Obscured", "desc": {"en": "Target is obscured.", "ko": "대상이 가려져 있습니다."}},
  {"key": "Engage", "desc": "Choose the engage order."}
]`

const fixtureUniversal = `{
  "ploys": {
    "strategy": [{"name": {"en": "Command Re-roll"}, "cost": "1CP", "desc": "Re-roll one dice."}],
    "firefight": []
  },
  "equipments": [
    {"name": {"en": "Frag Grenade"}, "desc": "Throw once per game.", "limit": 1}
  ]
}`

const fixtureAlpha = `{
  "id": "alpha",
  "name": {"en": "Alpha Squad", "ko": "알파 분대"},
  "color": "#aa0000",
  "factionRules": [{"title": {"en": "Alpha Doctrine"}, "desc": "Alpha rule text."}],
  "ploys": {
    "strategy": [{"name": {"en": "Alpha Strike"}, "cost": "1CP", "desc": "Hit first."}],
    "firefight": [{"name": {"en": "Fall Back"}, "cost": "1CP", "desc": "Retreat safely."}]
  },
  "equipments": [{"name": {"en": "Alpha Kit"}, "desc": "Team kit."}],
  "operatives": [
    {
      "id": "alpha-leader",
      "name": {"en": "Alpha Leader", "ko": "알파 리더"},
      "stats": {"M": 6, "APL": 3, "D": 3, "S": 3, "W": 10},
      "weapons": [{"name": {"en": "Pistol"}, "range": "ranged", "A": 4, "hit": 3, "dmg": "3/4"}],
      "abilities": [{"title": {"en": "Inspire"}, "desc": "Friendly re-rolls nearby."}]
    }
  ]
}`

const fixtureBeta = `{
  "id": "beta",
  "name": {"en": "Beta Squad"},
  "color": "#00aa00",
  "ploys": {"strategy": [], "firefight": []},
  "equipments": [],
  "operatives": [
    {
      "id": "beta-trooper",
      "name": {"en": "Beta Trooper"},
      "stats": {"M": 6, "APL": 2, "D": 3, "S": 4, "W": 8},
      "weapons": [{"name": {"en": "Rifle"}, "range": "ranged", "A": 4, "hit": 4, "dmg": "3/4"}]
    }
  ]
}`

func fixtureStore(t *testing.T) *catalog.Store {
	t.Helper()
	dir := t.TempDir()
	teamsDir := filepath.Join(dir, "teams")
	if err := os.MkdirAll(teamsDir, 0o755); err != nil {
		t.Fatal(err)
	}
	files := map[string]string{
		filepath.Join(dir, "rules.json"):          fixtureRules,
		filepath.Join(teamsDir, "index.json"):     `["alpha.json","beta.json"]`,
		filepath.Join(teamsDir, "universal.json"): fixtureUniversal,
		filepath.Join(teamsDir, "alpha.json"):     fixtureAlpha,
		filepath.Join(teamsDir, "beta.json"):      fixtureBeta,
	}
	for path, content := range files {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	store, err := catalog.Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	return store
}

func countCategory(entries []Entry, c Category) int {
	n := 0
	for _, e := range entries {
		if e.Category == c {
			n++
		}
	}
	return n
}

func TestRebuildWithNoTeamsIndexesCommonRulesOnly(t *testing.T) {
	ix := Rebuild(fixtureStore(t))
	if ix.Len() != 2 {
		t.Fatalf("expected only the 2 common rules, got %d", ix.Len())
	}
}

func TestRebuildIndexesEveryRuleBearingEntity(t *testing.T) {
	ix := Rebuild(fixtureStore(t), "alpha")

	// 2 common rules, 1 faction rule, 2 team ploys + 1 universal ploy,
	// 1 team kit + 1 universal grenade, 1 operative, 1 ability.
	if ix.Len() != 10 {
		t.Fatalf("expected 10 entries, got %d", ix.Len())
	}

	got := ix.Query("alpha")
	if countCategory(got, CategoryFactionRule) != 1 {
		t.Fatalf("faction rule not indexed")
	}
	if countCategory(got, CategoryOperative) != 1 {
		t.Fatalf("operative not indexed")
	}
	for _, e := range got {
		if e.TeamColor != "#aa0000" {
			t.Fatalf("team entries must carry the team color, got %q", e.TeamColor)
		}
	}
}

func TestRebuildUnknownTeamIsIgnored(t *testing.T) {
	ix := Rebuild(fixtureStore(t), "gamma")
	if ix.Len() != 2 {
		t.Fatalf("unknown team ids must contribute nothing, got %d entries", ix.Len())
	}
}

func TestRebuildCoopIndexesBothTeams(t *testing.T) {
	ix := Rebuild(fixtureStore(t), "alpha", "beta")
	if len(ix.Query("Beta Trooper")) != 1 {
		t.Fatalf("second team not indexed")
	}
	if len(ix.Query("Alpha Leader")) != 1 {
		t.Fatalf("first team not indexed")
	}
}

func TestQueryIsCaseInsensitiveSubstring(t *testing.T) {
	ix := Rebuild(fixtureStore(t), "alpha")

	if len(ix.Query("OBSCUR")) != 1 {
		t.Fatalf("case-insensitive key match failed")
	}
	// Description text matches too: the Command Re-roll ploy and the
	// Inspire ability ("Friendly re-rolls nearby.").
	if got := len(ix.Query("re-roll")); got != 2 {
		t.Fatalf("expected 2 description matches, got %d", got)
	}
}

func TestQueryMatchesAnyLanguage(t *testing.T) {
	ix := Rebuild(fixtureStore(t), "alpha")
	if len(ix.Query("알파 리더")) != 1 {
		t.Fatalf("korean key match failed")
	}
	if len(ix.Query("가려져")) != 1 {
		t.Fatalf("korean description match failed")
	}
}

func TestQueryRejectsShortTerms(t *testing.T) {
	ix := Rebuild(fixtureStore(t), "alpha")
	if ix.Query("") != nil || ix.Query("a") != nil || ix.Query("  a  ") != nil {
		t.Fatalf("terms of length <= 1 must yield nothing")
	}
	// One Hangul syllable is one keystroke even though it is three
	// bytes; "알" would otherwise match the 알파 entries.
	if got := ix.Query("알"); got != nil {
		t.Fatalf("single-character korean query must yield nothing, got %d results", len(got))
	}
	if len(ix.Query("알파")) == 0 {
		t.Fatalf("two korean characters must pass the gate")
	}
}
