// Package ops exposes the operational HTTP surface: health, metrics, and
// bare trigger endpoints for the engine runs. The scouting web application
// (forms, views, auth) lives elsewhere; this process serves no business UI.
package ops

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/openscout/scoutcore/internal/app"
	"github.com/openscout/scoutcore/pkg/metrics"
)

// Handler serves the ops routes over the core service.
type Handler struct {
	svc *app.Service
}

// NewHandler creates an ops handler driving svc.
func NewHandler(svc *app.Service) *Handler {
	return &Handler{svc: svc}
}

// Register attaches the ops routes to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.handleHealth)
	mux.Handle("GET /metrics", promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}))

	mux.HandleFunc("POST /api/orgs/{org}/events/{event}/sync", h.handleSync)
	mux.HandleFunc("POST /api/orgs/{org}/events/{event}/aggranges", h.handleAggRanges)
	mux.HandleFunc("POST /api/orgs/{org}/events/{event}/allocations/teams", h.handleTeamAllocations)
	mux.HandleFunc("POST /api/orgs/{org}/events/{event}/allocations/matches", h.handleMatchAllocations)
	mux.HandleFunc("POST /api/orgs/{org}/events/{event}/swap", h.handleSwap)
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleSync(w http.ResponseWriter, r *http.Request) {
	year, ok := yearParam(w, r)
	if !ok {
		return
	}
	err := h.svc.SyncEventMatches(r.Context(), r.PathValue("org"), year, r.PathValue("event"))
	if errors.Is(err, app.ErrNoScheduleSource) {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	finish(w, err)
}

func (h *Handler) handleAggRanges(w http.ResponseWriter, r *http.Request) {
	year, ok := yearParam(w, r)
	if !ok {
		return
	}
	finish(w, h.svc.CalculateAndStoreAggRanges(r.Context(), r.PathValue("org"), year, r.PathValue("event")))
}

func (h *Handler) handleTeamAllocations(w http.ResponseWriter, r *http.Request) {
	active := r.URL.Query().Get("active_team")
	finish(w, h.svc.GenerateTeamAllocations(r.Context(), r.PathValue("org"), r.PathValue("event"), active))
}

func (h *Handler) handleMatchAllocations(w http.ResponseWriter, r *http.Request) {
	org, event := r.PathValue("org"), r.PathValue("event")
	switch mode := r.URL.Query().Get("mode"); mode {
	case "", "preference":
		finish(w, h.svc.GenerateMatchAllocations(r.Context(), org, event))
	case "block":
		finish(w, h.svc.GenerateMatchAllocationsByBlock(r.Context(), org, event))
	default:
		writeError(w, http.StatusBadRequest, errors.New("mode must be preference or block"))
	}
}

func (h *Handler) handleSwap(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Old string `json:"old"`
		New string `json:"new"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Old == "" || body.New == "" {
		writeError(w, http.StatusBadRequest, errors.New("body must carry old and new scout names"))
		return
	}
	finish(w, h.svc.SwapScorers(r.Context(), r.PathValue("org"), r.PathValue("event"), body.Old, body.New))
}

func yearParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("year query parameter is required"))
		return 0, false
	}
	return year, true
}

func finish(w http.ResponseWriter, err error) {
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
