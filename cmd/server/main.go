package main

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"ktcompanion/internal/app"
	"ktcompanion/internal/catalog"
	"ktcompanion/internal/config"
	"ktcompanion/internal/library"
)

// Build metadata injected via -ldflags at build time
var (
	buildVersion = "dev"
	buildTime    = ""
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	store, err := catalog.Load(cfg.DataDir)
	if err != nil {
		log.Fatalf("catalog: %v", err)
	}
	if len(store.Teams()) == 0 {
		log.Fatalf("catalog: no teams could be loaded from %s", cfg.DataDir)
	}

	lib, err := library.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("library: %v", err)
	}
	defer lib.Close()

	controller := app.New(store, lib, cfg.DefaultLang)

	hub := newHub(controller, cfg.DefaultLang)
	controller.SetOnChange(hub.broadcast)

	s := &server{app: controller, hub: hub, defaultLang: cfg.DefaultLang}

	r := mux.NewRouter()
	r.HandleFunc("/api/state", s.handleState).Methods(http.MethodGet)
	r.HandleFunc("/api/teams", s.handleTeams).Methods(http.MethodGet)
	r.HandleFunc("/api/search", s.handleSearch).Methods(http.MethodGet)

	r.HandleFunc("/api/roster/team", s.handleSelectTeam).Methods(http.MethodPost)
	r.HandleFunc("/api/roster/name", s.handleRosterName).Methods(http.MethodPost)
	r.HandleFunc("/api/roster/new", s.handleNewRoster).Methods(http.MethodPost)
	r.HandleFunc("/api/roster/switch", s.handleSwitchRoster).Methods(http.MethodPost)
	r.HandleFunc("/api/roster/delete", s.handleDeleteRoster).Methods(http.MethodPost)
	r.HandleFunc("/api/roster/operative", s.handleAddOperative).Methods(http.MethodPost)
	r.HandleFunc("/api/roster/operative/remove", s.handleRemoveOperative).Methods(http.MethodPost)
	r.HandleFunc("/api/roster/weapon/toggle", s.handleToggleWeapon).Methods(http.MethodPost)
	r.HandleFunc("/api/roster/equipment", s.handleAddEquipment).Methods(http.MethodPost)
	r.HandleFunc("/api/roster/equipment/remove", s.handleRemoveEquipment).Methods(http.MethodPost)

	r.HandleFunc("/api/game/start", s.handleStartGame).Methods(http.MethodPost)
	r.HandleFunc("/api/game/coop", s.handleAttachCoop).Methods(http.MethodPost)
	r.HandleFunc("/api/game/exit", s.handleExitGame).Methods(http.MethodPost)
	r.HandleFunc("/api/game/wounds", s.handleSetWounds).Methods(http.MethodPost)
	r.HandleFunc("/api/game/resource", s.handleUpdateResource).Methods(http.MethodPost)
	r.HandleFunc("/api/game/cp/spend", s.handleSpendCP).Methods(http.MethodPost)
	r.HandleFunc("/api/game/tp", s.handleAdvanceTP).Methods(http.MethodPost)
	r.HandleFunc("/api/game/turn/end", s.handleEndTurn).Methods(http.MethodPost)
	r.HandleFunc("/api/game/equipment/toggle", s.handleToggleEquipUsed).Methods(http.MethodPost)

	r.HandleFunc("/ws", hub.handleWS)
	r.HandleFunc("/healthz", handleHealthz).Methods(http.MethodGet)
	r.HandleFunc("/version", s.handleVersion).Methods(http.MethodGet)

	addr := ":" + cfg.Port
	log.Printf("kt companion listening on %s (data=%s db=%s)", addr, cfg.DataDir, cfg.DBPath)
	log.Fatal(http.ListenAndServe(addr, r))
}
