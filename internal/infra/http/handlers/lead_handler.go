package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/openclinic/medscout/internal/entity"
	"github.com/openclinic/medscout/internal/usecase"
)

type LeadHandler struct {
	Leads usecase.LeadRepositoryInterface
}

func NewLeadHandler(leads usecase.LeadRepositoryInterface) *LeadHandler {
	return &LeadHandler{Leads: leads}
}

func (h *LeadHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := entity.LeadFilter{
		City:      q.Get("city"),
		Specialty: q.Get("specialty"),
	}
	page := intParam(q.Get("page"), 1)
	pageSize := intParam(q.Get("page_size"), 50)
	if pageSize > 100 {
		pageSize = 100
	}

	leads, total, err := h.Leads.Find(r.Context(), filter, page, pageSize)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to list leads"})
		return
	}
	if leads == nil {
		leads = []entity.Lead{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"leads": leads,
		"total": total,
		"page":  page,
	})
}

func (h *LeadHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	npi := chi.URLParam(r, "npi")

	lead, err := h.Leads.FindByNPI(r.Context(), npi)
	if errors.Is(err, entity.ErrLeadNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "lead not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to fetch lead"})
		return
	}

	writeJSON(w, http.StatusOK, lead)
}

func intParam(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
