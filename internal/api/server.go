// Package api exposes the search engine, preset store, and snapshot
// lifecycle over HTTP.
package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"xiv-profit/internal/config"
	"xiv-profit/internal/db"
	"xiv-profit/internal/engine"
	"xiv-profit/internal/logger"
	"xiv-profit/internal/recipes"
	"xiv-profit/internal/servers"
	"xiv-profit/internal/universalis"
)

// SnapshotSource captures market snapshots. Satisfied by *universalis.Client.
type SnapshotSource interface {
	CaptureSnapshot(ctx context.Context, catalog []recipes.Definition, opts universalis.CaptureOptions) engine.MarketSnapshot
}

// Server is the HTTP API server that connects the market client, search
// engine, and database.
type Server struct {
	cfg     config.Config
	db      *db.DB
	catalog []recipes.Definition
	market  SnapshotSource

	// captureMu serializes snapshot refreshes so a burst of searches
	// against a stale snapshot triggers one capture, not many.
	captureMu sync.Mutex
}

// NewServer creates a Server with the given config, snapshot source, catalog,
// and database.
func NewServer(cfg config.Config, market SnapshotSource, catalog []recipes.Definition, database *db.DB) *Server {
	return &Server{
		cfg:     cfg,
		db:      database,
		catalog: catalog,
		market:  market,
	}
}

// Handler returns the HTTP handler with all API routes and CORS middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /api/settings", s.handleGetSettings)
	mux.HandleFunc("POST /api/settings", s.handleSetSettings)
	mux.HandleFunc("POST /api/search", s.handleSearch)
	mux.HandleFunc("POST /api/snapshot/refresh", s.handleSnapshotRefresh)
	mux.HandleFunc("GET /api/snapshot/latest", s.handleSnapshotLatest)
	mux.HandleFunc("GET /api/presets", s.handleListPresets)
	mux.HandleFunc("POST /api/presets", s.handleCreatePreset)
	mux.HandleFunc("GET /api/presets/export", s.handleExportPresets)
	mux.HandleFunc("POST /api/presets/import", s.handleImportPresets)
	mux.HandleFunc("GET /api/presets/{id}", s.handleGetPreset)
	mux.HandleFunc("PUT /api/presets/{id}", s.handleUpdatePreset)
	mux.HandleFunc("DELETE /api/presets/{id}", s.handleDeletePreset)
	mux.HandleFunc("GET /api/servers/datacenters", s.handleDataCenters)
	mux.HandleFunc("GET /api/servers/worlds", s.handleWorlds)
	mux.HandleFunc("GET /api/servers/regions", s.handleRegions)
	return corsMiddleware(mux)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(204)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status":    "ok",
		"recipes":   len(s.catalog),
		"homeWorld": s.settings().HomeWorld,
	}
	if latest, err := s.db.LatestSnapshot(); err == nil {
		status["snapshotCapturedAt"] = latest.Snapshot.CapturedAt
		status["snapshotSource"] = latest.Snapshot.Source
	}
	writeJSON(w, status)
}

func (s *Server) settings() db.Settings {
	return s.db.LoadSettings(db.Settings{
		HomeWorld:     s.cfg.Market.HomeWorld,
		DataCenter:    s.cfg.Market.DataCenter,
		Region:        s.cfg.Market.Region,
		CacheWindowMs: s.cfg.Market.CacheWindowMs,
	})
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.settings())
}

func (s *Server) handleSetSettings(w http.ResponseWriter, r *http.Request) {
	settings := s.settings()
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		writeError(w, http.StatusBadRequest, "invalid settings payload")
		return
	}
	if settings.CacheWindowMs < 0 {
		writeError(w, http.StatusBadRequest, "cacheWindowMs must not be negative")
		return
	}
	if settings.DataCenter != "" && servers.RegionForDataCenter(settings.DataCenter) == "" {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown data center %q", settings.DataCenter))
		return
	}
	if err := s.db.SaveSettings(settings); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, settings)
}

// searchRequest is the body of POST /api/search.
type searchRequest struct {
	Parameters   json.RawMessage `json:"parameters"`
	SnapshotID   string          `json:"snapshotId"`
	ForceRefresh bool            `json:"forceRefresh"`
	Page         int             `json:"page"`
}

// searchResponse wraps one page of results with snapshot provenance.
type searchResponse struct {
	Results             []engine.SearchResult `json:"results"`
	TotalResults        int                   `json:"totalResults"`
	TotalPages          int                   `json:"totalPages"`
	Page                int                   `json:"page"`
	AvailableCategories []string              `json:"availableCategories"`
	SnapshotID          string                `json:"snapshotId"`
	CapturedAt          time.Time             `json:"capturedAt"`
	Source              string                `json:"source"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid search payload")
		return
	}

	// Absent parameter fields keep their defaults.
	params := engine.DefaultSearchParameters()
	if len(req.Parameters) > 0 {
		if err := json.Unmarshal(req.Parameters, &params); err != nil {
			writeError(w, http.StatusBadRequest, "invalid search parameters")
			return
		}
	}

	stored, err := s.ensureSnapshot(r.Context(), req.SnapshotID, req.ForceRefresh)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	started := time.Now()
	output := engine.RunSearch(stored.Snapshot, params)
	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := s.cfg.Search.PageSize
	paged := engine.Paginate(output.Results, page, pageSize)

	logger.WithFields("Search", map[string]interface{}{
		"matched":  humanize.Comma(int64(len(output.Results))),
		"snapshot": stored.ID,
		"tookMs":   time.Since(started).Milliseconds(),
	}).Info("Search complete")

	writeJSON(w, searchResponse{
		Results:             paged,
		TotalResults:        len(output.Results),
		TotalPages:          engine.TotalPages(len(output.Results), pageSize),
		Page:                page,
		AvailableCategories: output.AvailableCategories,
		SnapshotID:          stored.ID,
		CapturedAt:          stored.Snapshot.CapturedAt,
		Source:              stored.Snapshot.Source,
	})
}

// ensureSnapshot returns a reusable stored snapshot, capturing a fresh one
// when the requested or latest snapshot is missing, stale, or force-refreshed.
func (s *Server) ensureSnapshot(ctx context.Context, snapshotID string, forceRefresh bool) (db.StoredSnapshot, error) {
	if snapshotID != "" && !forceRefresh {
		stored, err := s.db.GetSnapshot(snapshotID)
		if err == nil {
			return stored, nil
		}
		if err != sql.ErrNoRows {
			return db.StoredSnapshot{}, fmt.Errorf("load snapshot %s: %w", snapshotID, err)
		}
		// Requested snapshot is gone; fall through to the latest.
	}

	s.captureMu.Lock()
	defer s.captureMu.Unlock()

	now := time.Now().UTC()
	latest, err := s.db.LatestSnapshot()
	if err == nil && engine.SnapshotReusable(&latest.Snapshot, forceRefresh, now) {
		return latest, nil
	}
	if err != nil && err != sql.ErrNoRows {
		return db.StoredSnapshot{}, fmt.Errorf("load latest snapshot: %w", err)
	}

	settings := s.settings()
	region := settings.Region
	if region == "" {
		region = servers.RegionForDataCenter(settings.DataCenter)
	}
	snap := s.market.CaptureSnapshot(ctx, s.catalog, universalis.CaptureOptions{
		HomeWorld:   settings.HomeWorld,
		Region:      region,
		CacheWindow: time.Duration(settings.CacheWindowMs) * time.Millisecond,
	})

	id, err := s.db.SaveSnapshot(snap)
	if err != nil {
		return db.StoredSnapshot{}, err
	}
	if err := s.db.PruneSnapshots(10); err != nil {
		logger.Warn("Snapshot", fmt.Sprintf("Prune failed: %v", err))
	}
	logger.Info("Snapshot", fmt.Sprintf("Captured %s snapshot of %s items",
		snap.Source, humanize.Comma(int64(len(snap.Items)))))
	return db.StoredSnapshot{ID: id, Snapshot: snap}, nil
}

func (s *Server) handleSnapshotRefresh(w http.ResponseWriter, r *http.Request) {
	stored, err := s.ensureSnapshot(r.Context(), "", true)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, map[string]interface{}{
		"snapshotId": stored.ID,
		"capturedAt": stored.Snapshot.CapturedAt,
		"source":     stored.Snapshot.Source,
		"items":      len(stored.Snapshot.Items),
	})
}

func (s *Server) handleSnapshotLatest(w http.ResponseWriter, r *http.Request) {
	latest, err := s.db.LatestSnapshot()
	if err == sql.ErrNoRows {
		writeError(w, http.StatusNotFound, "no snapshot captured yet")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, map[string]interface{}{
		"snapshotId": latest.ID,
		"capturedAt": latest.Snapshot.CapturedAt,
		"source":     latest.Snapshot.Source,
		"cacheMs":    latest.Snapshot.CacheMs,
		"items":      len(latest.Snapshot.Items),
	})
}

func (s *Server) handleListPresets(w http.ResponseWriter, r *http.Request) {
	presets, err := s.db.ListPresets()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, presets)
}

func (s *Server) handleGetPreset(w http.ResponseWriter, r *http.Request) {
	preset, err := s.db.GetPreset(r.PathValue("id"))
	if err == sql.ErrNoRows {
		writeError(w, http.StatusNotFound, "preset not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, preset)
}

func (s *Server) handleCreatePreset(w http.ResponseWriter, r *http.Request) {
	preset := db.Preset{Parameters: engine.DefaultSearchParameters()}
	if err := json.NewDecoder(r.Body).Decode(&preset); err != nil {
		writeError(w, http.StatusBadRequest, "invalid preset payload")
		return
	}
	preset.ID = "" // server assigns ids
	if err := s.db.SavePreset(&preset); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	w.WriteHeader(http.StatusCreated)
	writeJSON(w, preset)
}

func (s *Server) handleUpdatePreset(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	existing, err := s.db.GetPreset(id)
	if err == sql.ErrNoRows {
		writeError(w, http.StatusNotFound, "preset not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	updated := existing
	if err := json.NewDecoder(r.Body).Decode(&updated); err != nil {
		writeError(w, http.StatusBadRequest, "invalid preset payload")
		return
	}
	updated.ID = id
	updated.CreatedAt = existing.CreatedAt
	if err := s.db.SavePreset(&updated); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, updated)
}

func (s *Server) handleDeletePreset(w http.ResponseWriter, r *http.Request) {
	deleted, err := s.db.DeletePreset(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "preset not found")
		return
	}
	writeJSON(w, map[string]bool{"deleted": true})
}

// presetExport is the portable preset file format.
type presetExport struct {
	Version    int         `json:"version"`
	ExportedAt time.Time   `json:"exportedAt"`
	Presets    []db.Preset `json:"presets"`
}

func (s *Server) handleExportPresets(w http.ResponseWriter, r *http.Request) {
	presets, err := s.db.ListPresets()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="presets.json"`)
	writeJSON(w, presetExport{Version: 1, ExportedAt: time.Now().UTC(), Presets: presets})
}

func (s *Server) handleImportPresets(w http.ResponseWriter, r *http.Request) {
	var export presetExport
	if err := json.NewDecoder(r.Body).Decode(&export); err != nil {
		writeError(w, http.StatusBadRequest, "invalid preset export payload")
		return
	}
	if export.Version != 1 {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unsupported export version %d", export.Version))
		return
	}

	imported := 0
	for i := range export.Presets {
		// Imported presets get fresh ids so they never clobber existing ones.
		export.Presets[i].ID = ""
		export.Presets[i].IsDefault = false
		if err := s.db.SavePreset(&export.Presets[i]); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		imported++
	}
	logger.Info("Presets", fmt.Sprintf("Imported %d presets", imported))
	writeJSON(w, map[string]int{"imported": imported})
}

func (s *Server) handleDataCenters(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, servers.DataCenters())
}

func (s *Server) handleWorlds(w http.ResponseWriter, r *http.Request) {
	dc := r.URL.Query().Get("dataCenter")
	worlds := servers.WorldsForDataCenter(dc)
	if dc != "" && worlds == nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown data center %q", dc))
		return
	}
	writeJSON(w, worlds)
}

func (s *Server) handleRegions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, servers.Regions())
}

// ListenAndServe starts the HTTP server on addr and blocks.
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
	}
	logger.Server(addr)
	return srv.ListenAndServe()
}
