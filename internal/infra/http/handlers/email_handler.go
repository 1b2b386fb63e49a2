package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/openclinic/medscout/internal/usecase"
)

type EmailHandler struct {
	Send *usecase.SendOutreachUseCase
}

func NewEmailHandler(send *usecase.SendOutreachUseCase) *EmailHandler {
	return &EmailHandler{Send: send}
}

// Handle accepts one outreach message and queues it for dispatch. The 202
// means "accepted", not "delivered": the worker records the real outcome.
func (h *EmailHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var input usecase.SendOutreachInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON"})
		return
	}

	output, err := h.Send.Execute(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, output)
}
