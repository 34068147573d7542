package submission

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/acadportal/eventportal/internal/rest"
	"github.com/acadportal/eventportal/pkg/budget"
	"github.com/acadportal/eventportal/pkg/money"
	"github.com/acadportal/eventportal/pkg/portal"
	"github.com/acadportal/eventportal/pkg/proposal"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type DraftDTO struct {
	Id         string                 `json:"id"`
	EditId     string                 `json:"editId,omitempty"`
	ActiveStep int                    `json:"activeStep"`
	StepName   string                 `json:"stepName"`
	Steps      map[string]bool        `json:"steps"`
	CanNext    bool                   `json:"canNext"`
	CanBack    bool                   `json:"canBack"`
	CanSubmit  bool                   `json:"canSubmit"`
	Proposal   proposal.EventProposal `json:"proposal"`
	Totals     TotalsDTO              `json:"totals"`
}

type TotalsDTO struct {
	TotalIncome        string `json:"totalIncome"`
	TotalExpenditure   string `json:"totalExpenditure"`
	UniversityOverhead string `json:"universityOverhead"`
	NetBalance         string `json:"netBalance"`
}

type CalculationDTO struct {
	Breakdown budget.Breakdown `json:"budgetBreakdown"`
	Totals    TotalsDTO        `json:"totals"`
}

type Handler struct {
	drafts       DraftService
	orchestrator *Orchestrator
}

func NewHandler(drafts DraftService, orchestrator *Orchestrator) *Handler {
	return &Handler{drafts: drafts, orchestrator: orchestrator}
}

// CreateDraft godoc
// @Summary Open the proposal wizard
// @Description Starts an empty proposal, or one seeded from an existing programme when editId is given
// @Tags Drafts
// @Produce json
// @Param editId query string false "Programme to edit"
// @Success 201 {object} DraftDTO
// @Router /api/drafts [post]
func (h *Handler) CreateDraft(w http.ResponseWriter, r *http.Request) {
	editId := r.URL.Query().Get("editId")
	log.Debugf("Opening draft, editId: %q", editId)
	draft, err := h.drafts.Create(r.Context(), editId)
	if err != nil {
		h.writeError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, draftToDTO(draft))
}

// GetDraft godoc
// @Summary Get a draft
// @Tags Drafts
// @Produce json
// @Param id path string true "Draft ID"
// @Success 200 {object} DraftDTO
// @Failure 404 {object} rest.ErrorResponse "Draft not found"
// @Router /api/drafts/{id} [get]
func (h *Handler) GetDraft(w http.ResponseWriter, r *http.Request) {
	draft, err := h.drafts.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, draftToDTO(draft))
}

// UpdateProposal godoc
// @Summary Replace the form state of a draft
// @Tags Drafts
// @Accept json
// @Produce json
// @Param id path string true "Draft ID"
// @Param proposal body proposal.EventProposal true "Form state"
// @Success 200 {object} DraftDTO
// @Router /api/drafts/{id}/proposal [put]
func (h *Handler) UpdateProposal(w http.ResponseWriter, r *http.Request) {
	var p proposal.EventProposal
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}
	draft, err := h.drafts.UpdateProposal(r.Context(), mux.Vars(r)["id"], p)
	if err != nil {
		h.writeError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, draftToDTO(draft))
}

// EditProposal godoc
// @Summary Apply one field or row change to the form state
// @Description Budget numbers are sanitized and the row income derived from participants, unit price and GST
// @Tags Drafts
// @Accept json
// @Produce json
// @Param id path string true "Draft ID"
// @Param edit body proposal.Edit true "Change"
// @Success 200 {object} DraftDTO
// @Failure 400 {object} rest.ErrorResponse "Unknown operation or field"
// @Router /api/drafts/{id}/edits [post]
func (h *Handler) EditProposal(w http.ResponseWriter, r *http.Request) {
	var e proposal.Edit
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}
	draft, err := h.drafts.Edit(r.Context(), mux.Vars(r)["id"], e)
	if err != nil {
		h.writeError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, draftToDTO(draft))
}

// NextStep godoc
// @Summary Advance the wizard
// @Tags Drafts
// @Produce json
// @Param id path string true "Draft ID"
// @Success 200 {object} DraftDTO
// @Failure 422 {object} rest.ErrorResponse "Current step is incomplete"
// @Router /api/drafts/{id}/next [post]
func (h *Handler) NextStep(w http.ResponseWriter, r *http.Request) {
	draft, err := h.drafts.Next(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, draftToDTO(draft))
}

// PreviousStep godoc
// @Summary Go back one wizard step
// @Tags Drafts
// @Produce json
// @Param id path string true "Draft ID"
// @Success 200 {object} DraftDTO
// @Router /api/drafts/{id}/back [post]
func (h *Handler) PreviousStep(w http.ResponseWriter, r *http.Request) {
	draft, err := h.drafts.Back(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, draftToDTO(draft))
}

// DiscardDraft godoc
// @Summary Close the wizard without submitting
// @Tags Drafts
// @Param id path string true "Draft ID"
// @Success 204 "No Content"
// @Router /api/drafts/{id} [delete]
func (h *Handler) DiscardDraft(w http.ResponseWriter, r *http.Request) {
	if err := h.drafts.Discard(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Submit godoc
// @Summary Submit a draft to the backend
// @Description Multipart request; the optional "brochure" file must not exceed 10 MB
// @Tags Drafts
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Draft ID"
// @Param brochure formData file false "Brochure"
// @Success 200 {object} portal.Programme
// @Failure 400 {object} rest.ErrorResponse "Validation failed"
// @Failure 409 {object} rest.ErrorResponse "Submission already in progress"
// @Failure 422 {object} rest.ErrorResponse "Wizard is not on a submittable step"
// @Router /api/drafts/{id}/submit [post]
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	log.Debugf("Submitting draft %s", id)

	brochure, err := readBrochure(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	programme, err := h.orchestrator.Submit(r.Context(), id, brochure)
	if err != nil {
		h.writeError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, programme)
}

// CalculateBudget godoc
// @Summary Compute derived income and totals of a budget breakdown
// @Tags Budget
// @Accept json
// @Produce json
// @Param breakdown body budget.Breakdown true "Budget rows"
// @Success 200 {object} CalculationDTO
// @Router /api/budget/calculate [post]
func (h *Handler) CalculateBudget(w http.ResponseWriter, r *http.Request) {
	var b budget.Breakdown
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return
	}
	b = b.RecalculateAllIncome()
	rest.WriteJSON(w, http.StatusOK, CalculationDTO{Breakdown: b, Totals: totalsToDTO(b.Totals())})
}

func readBrochure(r *http.Request) (*portal.File, error) {
	if err := r.ParseMultipartForm(portal.MaxBrochureSize + 1<<20); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, &proposal.ValidationError{Message: "Invalid upload"}
	}
	file, header, err := r.FormFile("brochure")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, &proposal.ValidationError{Message: "Invalid brochure upload"}
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, portal.MaxBrochureSize+1))
	if err != nil {
		return nil, err
	}
	return &portal.File{Name: header.Filename, Content: content}, nil
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var validationErr *proposal.ValidationError
	switch {
	case errors.As(err, &validationErr):
		rest.WriteError(w, http.StatusBadRequest, validationErr.Message, "")
	case errors.Is(err, ErrDraftNotFound):
		rest.WriteError(w, http.StatusNotFound, "Draft not found", "")
	case errors.Is(err, ErrSubmissionInProgress):
		rest.WriteError(w, http.StatusConflict, "Submission already in progress", "")
	case errors.Is(err, proposal.ErrStepInvalid):
		rest.WriteError(w, http.StatusUnprocessableEntity, "Please complete the current step", "")
	case errors.Is(err, proposal.ErrNotSubmitable):
		rest.WriteError(w, http.StatusUnprocessableEntity, "Complete every step before submitting", "")
	case errors.Is(err, proposal.ErrUnknownEdit), errors.Is(err, proposal.ErrUnknownField), errors.Is(err, budget.ErrUnknownField):
		rest.WriteError(w, http.StatusBadRequest, "Unsupported change", err.Error())
	default:
		status := portal.StatusCode(err)
		if status >= http.StatusInternalServerError {
			log.Errorf("draft request failed: %v", err)
		}
		rest.WriteError(w, status, portal.UserMessage(err), "")
	}
}

func draftToDTO(d Draft) DraftDTO {
	return DraftDTO{
		Id:         d.Id,
		EditId:     d.EditId,
		ActiveStep: int(d.Wizard.ActiveStep),
		StepName:   d.Wizard.ActiveStep.String(),
		Steps:      d.Wizard.StepStatus(),
		CanNext:    d.Wizard.CanNext(),
		CanBack:    d.Wizard.CanBack(),
		CanSubmit:  d.Wizard.CanSubmit(),
		Proposal:   d.Wizard.Proposal,
		Totals:     totalsToDTO(d.Wizard.Proposal.BudgetBreakdown.Totals()),
	}
}

func totalsToDTO(t budget.Totals) TotalsDTO {
	return TotalsDTO{
		TotalIncome:        money.Format(t.TotalIncome),
		TotalExpenditure:   money.Format(t.TotalExpenditure),
		UniversityOverhead: money.Format(t.UniversityOverhead),
		NetBalance:         money.Format(t.NetBalance),
	}
}
