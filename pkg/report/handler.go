package report

import (
	"context"
	"errors"
	"net/http"

	"github.com/acadportal/eventportal/internal/rest"
	"github.com/acadportal/eventportal/pkg/budget"
	"github.com/acadportal/eventportal/pkg/claim"
	"github.com/acadportal/eventportal/pkg/money"
	"github.com/acadportal/eventportal/pkg/portal"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type EventSource interface {
	Get(ctx context.Context, id string) (portal.Programme, error)
}

type LineDTO struct {
	Kind     Kind   `json:"kind"`
	Category string `json:"category"`
	Planned  string `json:"planned"`
	Claimed  string `json:"claimed"`
	Variance string `json:"variance"`
}

type TotalsDTO struct {
	TotalIncome        string `json:"totalIncome"`
	TotalExpenditure   string `json:"totalExpenditure"`
	UniversityOverhead string `json:"universityOverhead"`
	NetBalance         string `json:"netBalance"`
}

type SummaryDTO struct {
	EventId        string    `json:"eventId"`
	Title          string    `json:"title"`
	ClaimSubmitted bool      `json:"claimSubmitted"`
	Lines          []LineDTO `json:"lines"`
	Planned        TotalsDTO `json:"planned"`
	Claimed        TotalsDTO `json:"claimed"`
}

type Handler struct {
	events      EventSource
	csvRenderer Renderer
}

func NewHandler(events EventSource, csvRenderer Renderer) *Handler {
	return &Handler{events: events, csvRenderer: csvRenderer}
}

// GetReport godoc
// @Summary Compare the claim of an event with its planned budget
// @Description Responds with CSV when the request accepts text/csv
// @Tags Events
// @Produce json
// @Produce text/csv
// @Param id path string true "Event ID"
// @Success 200 {object} SummaryDTO
// @Failure 404 {object} rest.ErrorResponse "Event not found"
// @Router /api/events/{id}/report [get]
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	event, err := h.events.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, claim.ErrEventNotFound) {
			rest.WriteError(w, http.StatusNotFound, "Event not found", "")
			return
		}
		rest.WriteError(w, portal.StatusCode(err), portal.UserMessage(err), "")
		return
	}
	summary := Build(event)

	if r.Header.Get("Accept") == "text/csv" {
		csv, err := h.csvRenderer.Render(summary)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="report-`+id+`.csv"`)
		if _, err := w.Write([]byte(csv)); err != nil {
			log.Errorf("failed to write report: %v", err)
		}
		return
	}
	rest.WriteJSON(w, http.StatusOK, summaryToDTO(summary))
}

func summaryToDTO(s Summary) SummaryDTO {
	lines := make([]LineDTO, 0, len(s.Lines))
	for _, l := range s.Lines {
		lines = append(lines, LineDTO{
			Kind:     l.Kind,
			Category: l.Category,
			Planned:  money.Format(l.Planned),
			Claimed:  money.Format(l.Claimed),
			Variance: money.Format(l.Variance()),
		})
	}
	return SummaryDTO{
		EventId:        s.EventId,
		Title:          s.Title,
		ClaimSubmitted: s.ClaimSubmitted,
		Lines:          lines,
		Planned:        totalsToDTO(s.Planned),
		Claimed:        totalsToDTO(s.Claimed),
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
