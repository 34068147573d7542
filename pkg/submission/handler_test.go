package submission

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/acadportal/eventportal/internal/rest"
	"github.com/acadportal/eventportal/pkg/portal"
	"github.com/acadportal/eventportal/pkg/user"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupHandlerTest(t *testing.T) (*mux.Router, *submissionTest) {
	st := setupSubmissionTest(t)
	handler := NewHandler(st.drafts, st.orchestrator)
	r := mux.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(user.WithUser(req.Context(), coordinatorUser)))
		})
	})
	r.HandleFunc("/api/drafts", handler.CreateDraft).Methods("POST")
	r.HandleFunc("/api/drafts/{id}", handler.GetDraft).Methods("GET")
	r.HandleFunc("/api/drafts/{id}/proposal", handler.UpdateProposal).Methods("PUT")
	r.HandleFunc("/api/drafts/{id}/edits", handler.EditProposal).Methods("POST")
	r.HandleFunc("/api/drafts/{id}/next", handler.NextStep).Methods("POST")
	r.HandleFunc("/api/drafts/{id}/submit", handler.Submit).Methods("POST")
	r.HandleFunc("/api/budget/calculate", handler.CalculateBudget).Methods("POST")
	return r, st
}

func TestHandler_CalculateBudget(t *testing.T) {
	// given
	router, _ := setupHandlerTest(t)
	body := `{"income":[{"category":"Fees","expectedParticipants":"50","perParticipantAmount":"1000","gstPercentage":"18"}],
		"expenses":[{"category":"Venue","amount":"20000"}]}`
	rr := httptest.NewRecorder()

	// when
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/budget/calculate", strings.NewReader(body)))

	// then
	require.Equal(t, http.StatusOK, rr.Code)
	var resp CalculationDTO
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "59000.00", resp.Breakdown.Income[0].Income)
	assert.Equal(t, TotalsDTO{
		TotalIncome:        "59000.00",
		TotalExpenditure:   "20000.00",
		UniversityOverhead: "17700.00",
		NetBalance:         "21300.00",
	}, resp.Totals)
}

func TestHandler_Drafts(t *testing.T) {
	t.Run("should report an incomplete step", func(t *testing.T) {
		router, _ := setupHandlerTest(t)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/drafts", nil))
		require.Equal(t, http.StatusCreated, rr.Code)
		var draft DraftDTO
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&draft))
		assert.False(t, draft.CanNext)
		assert.Equal(t, "BasicDetails", draft.StepName)

		rr = httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/drafts/"+draft.Id+"/next", nil))

		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	})

	t.Run("should answer 404 for an unknown draft", func(t *testing.T) {
		router, _ := setupHandlerTest(t)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/drafts/nope", nil))

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestHandler_UpdateProposal(t *testing.T) {
	t.Run("should store sanitized budget input", func(t *testing.T) {
		// given
		router, st := setupHandlerTest(t)
		draft, err := st.drafts.Create(st.ctx, "")
		require.NoError(t, err)
		p := draft.Wizard.Proposal
		p.BudgetBreakdown.Income[0].ExpectedParticipants = "12.5"
		p.BudgetBreakdown.Income[0].PerParticipantAmount = "100"
		p.BudgetBreakdown.Income[0].GstPercentage = "150"
		body, err := json.Marshal(p)
		require.NoError(t, err)
		rr := httptest.NewRecorder()

		// when
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodPut, "/api/drafts/"+draft.Id+"/proposal", bytes.NewReader(body)))

		// then
		require.Equal(t, http.StatusOK, rr.Code)
		var dto DraftDTO
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&dto))
		income := dto.Proposal.BudgetBreakdown.Income[0]
		assert.Equal(t, "125", income.ExpectedParticipants)
		assert.Equal(t, "100", income.GstPercentage)
		assert.Equal(t, "25000.00", dto.Totals.TotalIncome)
	})

	t.Run("should apply an edit and reject an unknown one", func(t *testing.T) {
		router, st := setupHandlerTest(t)
		draft, err := st.drafts.Create(st.ctx, "")
		require.NoError(t, err)

		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/drafts/"+draft.Id+"/edits",
			strings.NewReader(`{"op":"updateExpense","index":0,"field":"amount","value":"-1,500"}`)))

		require.Equal(t, http.StatusOK, rr.Code)
		var dto DraftDTO
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&dto))
		assert.Equal(t, "1500", dto.Proposal.BudgetBreakdown.Expenses[0].Amount)
		assert.Equal(t, "1500.00", dto.Totals.TotalExpenditure)

		rr = httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/drafts/"+draft.Id+"/edits", strings.NewReader(`{"op":"rename"}`)))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestHandler_Submit(t *testing.T) {
	t.Run("should refuse a draft before the review step", func(t *testing.T) {
		router, st := setupHandlerTest(t)
		draft := st.filledDraft(t, "")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/drafts/"+draft.Id+"/submit", nil))

		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		assert.Equal(t, 0, st.client.CreateCalls())
	})

	t.Run("should show the backend message verbatim", func(t *testing.T) {
		// given
		router, st := setupHandlerTest(t)
		draft := st.readyDraft(t, "")
		st.client.SetCreateError(&portal.APIError{Status: http.StatusBadRequest, Message: "Venue required"})

		var body bytes.Buffer
		writer := multipart.NewWriter(&body)
		part, err := writer.CreateFormFile("brochure", "brochure.pdf")
		require.NoError(t, err)
		_, _ = part.Write([]byte("%PDF-1.4"))
		require.NoError(t, writer.Close())
		req := httptest.NewRequest(http.MethodPost, "/api/drafts/"+draft.Id+"/submit", &body)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		rr := httptest.NewRecorder()

		// when
		router.ServeHTTP(rr, req)

		// then
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		var resp rest.ErrorResponse
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
		assert.Equal(t, "Venue required", resp.Error)
		require.Len(t, st.client.Forms(), 1)
		assert.Equal(t, "brochure.pdf", st.client.Forms()[0].Brochure.Name)
	})

	t.Run("should submit without a brochure", func(t *testing.T) {
		router, st := setupHandlerTest(t)
		draft := st.readyDraft(t, "")
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/drafts/"+draft.Id+"/submit", nil))

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Nil(t, st.client.Forms()[0].Brochure)
	})
}
