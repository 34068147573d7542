package claim

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/acadportal/eventportal/internal/rest"
	"github.com/acadportal/eventportal/pkg/money"
	"github.com/acadportal/eventportal/pkg/portal"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

// ClaimDTO is a claim form together with the totals it currently adds up to.
type ClaimDTO struct {
	Submission
	TotalIncome        string `json:"totalIncome"`
	TotalExpenditure   string `json:"totalExpenditure"`
	UniversityOverhead string `json:"universityOverhead"`
	NetBalance         string `json:"netBalance"`
	CanSubmit          bool   `json:"canSubmit"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// ListEvents godoc
// @Summary List the coordinator's events
// @Tags Events
// @Produce json
// @Success 200 {array} portal.Programme
// @Failure 502 {object} rest.ErrorResponse "Backend unavailable"
// @Router /api/events [get]
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	log.Debug("Listing events")
	events, err := h.service.Events(r.Context())
	if err != nil {
		writeBackendError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, events)
}

// DeleteEvent godoc
// @Summary Delete an event proposal
// @Tags Events
// @Param id path string true "Event ID"
// @Success 204 "No Content"
// @Router /api/events/{id} [delete]
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	log.Debugf("Deleting event %s", id)
	if err := h.service.DeleteEvent(r.Context(), id); err != nil {
		writeBackendError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetClaim godoc
// @Summary Get a pre-filled claim for an event
// @Tags Claims
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} ClaimDTO
// @Failure 404 {object} rest.ErrorResponse "Event not found"
// @Router /api/events/{id}/claim [get]
func (h *Handler) GetClaim(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	submission, err := h.service.Seed(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrEventNotFound) {
			rest.WriteError(w, http.StatusNotFound, "Event not found", "")
			return
		}
		writeBackendError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, claimToDTO(submission))
}

// SubmitClaim godoc
// @Summary Submit the claim bill of an event
// @Tags Claims
// @Accept json
// @Param id path string true "Event ID"
// @Param claim body Submission true "Claim rows"
// @Success 204 "No Content"
// @Failure 400 {object} rest.ErrorResponse "Incomplete claim"
// @Router /api/events/{id}/claim [post]
func (h *Handler) SubmitClaim(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	log.Debugf("Submitting claim for event %s", id)

	var submission Submission
	if err := json.NewDecoder(r.Body).Decode(&submission); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", "")
		return
	}
	if err := h.service.Submit(r.Context(), id, submission); err != nil {
		if errors.Is(err, ErrIncompleteClaim) {
			rest.WriteError(w, http.StatusBadRequest, "Add at least one complete expense and income entry", "")
			return
		}
		writeBackendError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ClaimPDF godoc
// @Summary Download a submitted claim as PDF
// @Tags Claims
// @Produce application/pdf
// @Param id path string true "Claim ID"
// @Success 200 {file} binary
// @Router /api/claims/{id}/pdf [get]
func (h *Handler) ClaimPDF(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	pdf, err := h.service.PDF(r.Context(), id)
	if err != nil {
		writeBackendError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="claim-`+id+`.pdf"`)
	if _, err := w.Write(pdf); err != nil {
		log.Errorf("failed to write claim pdf: %v", err)
	}
}

func claimToDTO(s Submission) ClaimDTO {
	totals := s.Breakdown().RecalculateAllIncome().Totals()
	return ClaimDTO{
		Submission:         s,
		TotalIncome:        money.Format(totals.TotalIncome),
		TotalExpenditure:   money.Format(totals.TotalExpenditure),
		UniversityOverhead: money.Format(totals.UniversityOverhead),
		NetBalance:         money.Format(totals.NetBalance),
		CanSubmit:          s.CanSubmit(),
	}
}

func writeBackendError(w http.ResponseWriter, err error) {
	status := portal.StatusCode(err)
	if status >= http.StatusInternalServerError {
		log.Errorf("backend call failed: %v", err)
	}
	rest.WriteError(w, status, portal.UserMessage(err), "")
}
