package user

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/acadportal/eventportal/internal/rest"
	log "github.com/sirupsen/logrus"
)

type UserDTO struct {
	Id          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Designation string `json:"designation"`
	Department  string `json:"department"`
	Role        Role   `json:"role"`
}

type LoginRequest struct {
	Token string `json:"token"`
}

type Handler struct {
	session *Session
}

func NewHandler(session *Session) *Handler {
	return &Handler{session: session}
}

// Login godoc
// @Summary Start a session
// @Description Stores the bearer token and caches the profile it belongs to
// @Tags Session
// @Accept json
// @Produce json
// @Param login body LoginRequest true "Token"
// @Success 200 {object} UserDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid request"
// @Failure 401 {object} rest.ErrorResponse "Invalid or expired token"
// @Router /api/session [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	log.Debug("Starting session")

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", "")
		return
	}
	if req.Token == "" {
		rest.WriteError(w, http.StatusBadRequest, "Token is required", "")
		return
	}

	u, err := h.session.Login(r.Context(), req.Token)
	if err != nil {
		if errors.Is(err, ErrInvalidToken) || errors.Is(err, ErrTokenExpired) {
			rest.WriteError(w, http.StatusUnauthorized, "Invalid or expired token", err.Error())
			return
		}
		log.Errorf("login failed: %v", err)
		rest.WriteError(w, http.StatusBadGateway, "Unable to load user profile", err.Error())
		return
	}
	rest.WriteJSON(w, http.StatusOK, userToDTO(u))
}

// CurrentUser godoc
// @Summary Get current user
// @Tags Session
// @Produce json
// @Success 200 {object} UserDTO
// @Failure 401 {object} rest.ErrorResponse "No active session"
// @Router /api/session [get]
func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.session.CurrentUser()
	if err != nil {
		rest.WriteError(w, http.StatusUnauthorized, "No active session", "")
		return
	}
	rest.WriteJSON(w, http.StatusOK, userToDTO(u))
}

// Logout godoc
// @Summary End the session
// @Tags Session
// @Success 204 "No Content"
// @Router /api/session [delete]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	log.Debug("Ending session")
	if err := h.session.Logout(r.Context()); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func userToDTO(u User) UserDTO {
	return UserDTO{
		Id:          u.Id,
		Name:        u.Name,
		Email:       u.Email,
		Designation: u.Designation,
		Department:  u.Department,
		Role:        u.Role,
	}
}
