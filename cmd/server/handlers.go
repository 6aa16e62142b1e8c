package main

import (
	"encoding/json"
	"errors"
	"net/http"

	"ktcompanion/internal/app"
	"ktcompanion/internal/game"
	"ktcompanion/internal/text"
)

type server struct {
	app         *app.App
	hub         *hub
	defaultLang string
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func decode(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// respond maps controller errors onto HTTP statuses and otherwise
// returns the fresh snapshot.
func (s *server) respond(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case err == nil:
		s.writeSnapshot(w, r)
	case errors.Is(err, app.ErrUnknownTeam), errors.Is(err, app.ErrUnknownRoster):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, app.ErrNoSession), errors.Is(err, game.ErrEmptyRoster):
		writeError(w, http.StatusConflict, err)
	default:
		writeError(w, http.StatusBadRequest, err)
	}
}

func (s *server) writeSnapshot(w http.ResponseWriter, r *http.Request) {
	lang := text.MatchLang(r, s.defaultLang)
	writeJSON(w, http.StatusOK, s.app.Snapshot(lang))
}

func (s *server) handleState(w http.ResponseWriter, r *http.Request) {
	s.writeSnapshot(w, r)
}

func (s *server) handleTeams(w http.ResponseWriter, r *http.Request) {
	lang := text.MatchLang(r, s.defaultLang)
	writeJSON(w, http.StatusOK, s.app.Snapshot(lang).Teams)
}

func (s *server) handleSearch(w http.ResponseWriter, r *http.Request) {
	lang := text.MatchLang(r, s.defaultLang)
	results := s.app.Search(r.URL.Query().Get("q"))
	type outEntry struct {
		Key       string `json:"key"`
		Desc      string `json:"desc"`
		Category  string `json:"category"`
		TeamColor string `json:"teamColor,omitempty"`
	}
	out := make([]outEntry, 0, len(results))
	for _, e := range results {
		out = append(out, outEntry{
			Key:       e.Key.Resolve(lang),
			Desc:      e.Desc.Resolve(lang),
			Category:  string(e.Category),
			TeamColor: e.TeamColor,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// ========================= Roster commands =========================

func (s *server) handleSelectTeam(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TeamID string `json:"teamId"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.respond(w, r, s.app.SelectTeam(req.TeamID))
}

func (s *server) handleRosterName(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.app.SetRosterName(req.Name)
	s.writeSnapshot(w, r)
}

func (s *server) handleNewRoster(w http.ResponseWriter, r *http.Request) {
	s.app.NewRoster()
	s.writeSnapshot(w, r)
}

func (s *server) handleSwitchRoster(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.respond(w, r, s.app.SwitchRoster(req.ID))
}

func (s *server) handleDeleteRoster(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, s.app.DeleteRoster())
}

func (s *server) handleAddOperative(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OpID string `json:"opId"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.respond(w, r, s.app.AddOperative(req.OpID))
}

func (s *server) handleRemoveOperative(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Index int `json:"index"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.respond(w, r, s.app.RemoveOperative(req.Index))
}

func (s *server) handleToggleWeapon(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OpIndex     int `json:"opIndex"`
		WeaponIndex int `json:"weaponIndex"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.respond(w, r, s.app.ToggleWeapon(req.OpIndex, req.WeaponIndex))
}

func (s *server) handleAddEquipment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OpIndex int `json:"opIndex"`
		EqIndex int `json:"eqIndex"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.respond(w, r, s.app.AddEquipment(req.OpIndex, req.EqIndex))
}

func (s *server) handleRemoveEquipment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OpIndex int `json:"opIndex"`
		EqIndex int `json:"eqIndex"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.respond(w, r, s.app.RemoveEquipment(req.OpIndex, req.EqIndex))
}

// ========================= Game commands =========================

func sideFrom(s string) game.Side {
	if s == "right" {
		return game.SideRight
	}
	return game.SideLeft
}

func (s *server) handleStartGame(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, s.app.StartGame())
}

func (s *server) handleAttachCoop(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RosterID string `json:"rosterId"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.respond(w, r, s.app.AttachCoopTeam(req.RosterID))
}

func (s *server) handleExitGame(w http.ResponseWriter, r *http.Request) {
	s.app.ExitGame()
	s.writeSnapshot(w, r)
}

func (s *server) handleSetWounds(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Side    string `json:"side"`
		OpIndex int    `json:"opIndex"`
		Value   int    `json:"value"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.respond(w, r, s.app.SetWounds(sideFrom(req.Side), req.OpIndex, req.Value))
}

func (s *server) handleUpdateResource(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Side  string `json:"side"`
		Type  string `json:"type"`
		Delta int    `json:"delta"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.respond(w, r, s.app.UpdateResource(sideFrom(req.Side), game.Resource(req.Type), req.Delta))
}

func (s *server) handleSpendCP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Side string `json:"side"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	err := s.app.SpendCommandPoint(sideFrom(req.Side))
	if errors.Is(err, game.ErrNoCommandPoints) {
		// Expected condition, not an error: report and move on.
		writeJSON(w, http.StatusOK, map[string]string{"notice": err.Error()})
		return
	}
	s.respond(w, r, err)
}

func (s *server) handleAdvanceTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Delta int `json:"delta"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.respond(w, r, s.app.AdvanceTurnPointer(req.Delta))
}

func (s *server) handleEndTurn(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, s.app.EndTurn())
}

func (s *server) handleToggleEquipUsed(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Side    string `json:"side"`
		OpIndex int    `json:"opIndex"`
		EqIndex int    `json:"eqIndex"`
	}
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.respond(w, r, s.app.ToggleEquipmentUsed(sideFrom(req.Side), req.OpIndex, req.EqIndex))
}

// ========================= Misc =========================

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"version": buildVersion,
		"time":    buildTime,
	})
}
