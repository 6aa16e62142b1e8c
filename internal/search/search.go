package search

import (
	"strings"
	"unicode/utf8"

	"ktcompanion/internal/catalog"
	"ktcompanion/internal/text"
)

// ========================= Search Index =========================
// A flattened lookup over every rule-bearing entity in scope. The
// index is discarded and rebuilt whenever the relevant team set
// changes; it is never updated incrementally.

type Category string

const (
	CategoryCommonRule  Category = "common-rule"
	CategoryFactionRule Category = "faction-rule"
	CategoryPloy        Category = "ploy"
	CategoryEquipment   Category = "equipment"
	CategoryOperative   Category = "operative"
	CategoryAbility     Category = "ability"
)

type Entry struct {
	Key       text.Localized `json:"key"`
	Desc      text.Localized `json:"desc"`
	Category  Category       `json:"category"`
	TeamColor string         `json:"teamColor,omitempty"`
}

type Index struct {
	entries []Entry
}

// Rebuild builds a fresh index: all common rules, plus every
// rule-bearing entity of each named team present in the store.
func Rebuild(store *catalog.Store, teamIDs ...string) *Index {
	ix := &Index{}

	for _, rule := range store.CommonRules() {
		ix.entries = append(ix.entries, Entry{
			Key:      text.New(rule.Key),
			Desc:     rule.Desc,
			Category: CategoryCommonRule,
		})
	}

	for _, teamID := range teamIDs {
		team, ok := store.Team(teamID)
		if !ok {
			continue
		}
		color := team.Color

		for _, r := range team.FactionRules {
			ix.entries = append(ix.entries, Entry{Key: r.Title, Desc: r.Desc, Category: CategoryFactionRule, TeamColor: color})
		}
		for _, p := range team.Ploys.Strategy {
			ix.entries = append(ix.entries, Entry{Key: p.Name, Desc: p.Desc, Category: CategoryPloy, TeamColor: color})
		}
		for _, p := range team.Ploys.Firefight {
			ix.entries = append(ix.entries, Entry{Key: p.Name, Desc: p.Desc, Category: CategoryPloy, TeamColor: color})
		}
		for _, e := range team.Equipments {
			ix.entries = append(ix.entries, Entry{Key: e.Name, Desc: e.Desc, Category: CategoryEquipment, TeamColor: color})
		}
		for _, op := range team.Operatives {
			ix.entries = append(ix.entries, Entry{
				Key: op.Name,
				Desc: text.NewMap(map[string]string{
					"en": "Operative from " + team.Name.Resolve("en"),
					"ko": team.Name.Resolve("ko") + "의 오퍼레이티브",
				}),
				Category:  CategoryOperative,
				TeamColor: color,
			})
			for _, a := range op.Abilities {
				ix.entries = append(ix.entries, Entry{Key: a.Title, Desc: a.Desc, Category: CategoryAbility, TeamColor: color})
			}
		}
	}
	return ix
}

// Len returns the number of indexed entries.
func (ix *Index) Len() int {
	return len(ix.entries)
}

// Query returns entries whose key or description contains term in any
// supported language, case-insensitively. Queries of one character or
// less yield nothing; one keystroke matches too much to be useful. The
// gate counts characters, not bytes, so a single Hangul syllable is
// still one keystroke.
func (ix *Index) Query(term string) []Entry {
	term = strings.ToLower(strings.TrimSpace(term))
	if utf8.RuneCountInString(term) <= 1 {
		return nil
	}
	var out []Entry
	for _, e := range ix.entries {
		if entryMatches(e, term) {
			out = append(out, e)
		}
	}
	return out
}

func entryMatches(e Entry, term string) bool {
	for _, lang := range text.Langs() {
		if strings.Contains(strings.ToLower(e.Key.Resolve(lang)), term) {
			return true
		}
		if strings.Contains(strings.ToLower(e.Desc.Resolve(lang)), term) {
			return true
		}
	}
	return false
}
