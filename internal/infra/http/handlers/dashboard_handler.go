package handlers

import (
	"net/http"
	"time"

	"github.com/openclinic/medscout/internal/usecase"
)

type DashboardHandler struct {
	Stats *usecase.DashboardStatsUseCase
}

func NewDashboardHandler(stats *usecase.DashboardStatsUseCase) *DashboardHandler {
	return &DashboardHandler{Stats: stats}
}

// HandleStats serves the windowed summary, defaulting to the last 7 days.
func (h *DashboardHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	start, end, ok := dateRange(w, r)
	if !ok {
		return
	}

	stats, err := h.Stats.Stats(r.Context(), start, end)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// HandleMainStats serves the all-time summary unless dates narrow it.
func (h *DashboardHandler) HandleMainStats(w http.ResponseWriter, r *http.Request) {
	start, end, ok := dateRange(w, r)
	if !ok {
		return
	}

	stats, err := h.Stats.MainStats(r.Context(), start, end)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *DashboardHandler) HandleWithEmailStats(w http.ResponseWriter, r *http.Request) {
	start, end, ok := dateRange(w, r)
	if !ok {
		return
	}
	page := intParam(r.URL.Query().Get("page"), 1)
	pageSize := intParam(r.URL.Query().Get("page_size"), 10)

	stats, err := h.Stats.WithEmailStats(r.Context(), start, end, page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *DashboardHandler) HandleWithoutEmailStats(w http.ResponseWriter, r *http.Request) {
	start, end, ok := dateRange(w, r)
	if !ok {
		return
	}
	page := intParam(r.URL.Query().Get("page"), 1)
	pageSize := intParam(r.URL.Query().Get("page_size"), 10)

	stats, err := h.Stats.WithoutEmailStats(r.Context(), start, end, page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// dateRange parses optional start_date/end_date query params as calendar
// days. Writes a 400 and returns ok=false on a malformed date.
func dateRange(w http.ResponseWriter, r *http.Request) (start, end *time.Time, ok bool) {
	q := r.URL.Query()

	parse := func(name string) (*time.Time, bool) {
		raw := q.Get(name)
		if raw == "" {
			return nil, true
		}
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{
				Error: name + " must be a YYYY-MM-DD date",
			})
			return nil, false
		}
		return &t, true
	}

	if start, ok = parse("start_date"); !ok {
		return nil, nil, false
	}
	if end, ok = parse("end_date"); !ok {
		return nil, nil, false
	}
	return start, end, true
}
