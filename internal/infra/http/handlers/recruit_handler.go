package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/openclinic/medscout/internal/usecase"
)

type RecruitHandler struct {
	Recruit *usecase.RecruitLeadsUseCase
}

func NewRecruitHandler(recruit *usecase.RecruitLeadsUseCase) *RecruitHandler {
	return &RecruitHandler{Recruit: recruit}
}

// Handle runs one recruitment request. A degraded run (budget exhausted,
// leads without email) is still a 200: the summary makes it observable.
func (h *RecruitHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var input usecase.RecruitInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON"})
		return
	}

	result, err := h.Recruit.Execute(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// HandleLoad is the bulk load path: scout-only, no enrichment spend.
func (h *RecruitHandler) HandleLoad(w http.ResponseWriter, r *http.Request) {
	var input usecase.RecruitInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON"})
		return
	}
	input.SkipEnrichment = true

	result, err := h.Recruit.Execute(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
