package app

import (
	"github.com/acadportal/eventportal/internal/config"
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies, cfg config.Application) {

	// Session
	r.HandleFunc("/api/session", deps.UserHandler.Login).Methods("POST")
	r.HandleFunc("/api/session", deps.UserHandler.CurrentUser).Methods("GET")
	r.HandleFunc("/api/session", deps.UserHandler.Logout).Methods("DELETE")

	// Proposal wizard
	r.HandleFunc("/api/drafts", deps.SubmissionHandler.CreateDraft).Methods("POST")
	r.HandleFunc("/api/drafts/{id}", deps.SubmissionHandler.GetDraft).Methods("GET")
	r.HandleFunc("/api/drafts/{id}", deps.SubmissionHandler.DiscardDraft).Methods("DELETE")
	r.HandleFunc("/api/drafts/{id}/proposal", deps.SubmissionHandler.UpdateProposal).Methods("PUT")
	r.HandleFunc("/api/drafts/{id}/edits", deps.SubmissionHandler.EditProposal).Methods("POST")
	r.HandleFunc("/api/drafts/{id}/next", deps.SubmissionHandler.NextStep).Methods("POST")
	r.HandleFunc("/api/drafts/{id}/back", deps.SubmissionHandler.PreviousStep).Methods("POST")
	r.HandleFunc("/api/drafts/{id}/submit", deps.SubmissionHandler.Submit).Methods("POST")
	r.HandleFunc("/api/budget/calculate", deps.SubmissionHandler.CalculateBudget).Methods("POST")

	// Events and claims
	r.HandleFunc("/api/events", deps.ClaimHandler.ListEvents).Methods("GET")
	r.HandleFunc("/api/events/{id}", deps.ClaimHandler.DeleteEvent).Methods("DELETE")
	r.HandleFunc("/api/events/{id}/claim", deps.ClaimHandler.GetClaim).Methods("GET")
	r.HandleFunc("/api/events/{id}/claim", deps.ClaimHandler.SubmitClaim).Methods("POST")
	r.HandleFunc("/api/claims/{id}/pdf", deps.ClaimHandler.ClaimPDF).Methods("GET")
	r.HandleFunc("/api/events/{id}/report", deps.ReportHandler.GetReport).Methods("GET")
}
