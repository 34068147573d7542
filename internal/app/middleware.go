package app

import (
	"net/http"
	"strings"

	"github.com/acadportal/eventportal/internal/config"
	"github.com/acadportal/eventportal/internal/rest"
	"github.com/acadportal/eventportal/pkg/user"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

// SetupMiddleware wires all HTTP middlewares for the application.
func SetupMiddleware(r *mux.Router, deps *Dependencies, cfg config.Application) {
	r.Use(requestLogging)
	r.Use(sessionUser(deps.Session))
}

func requestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		requestId := req.Header.Get("X-Request-Id")
		if requestId == "" {
			requestId = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", requestId)
		log.WithFields(log.Fields{"requestId": requestId, "method": req.Method, "path": req.URL.Path}).Debug("Handling request")
		next.ServeHTTP(w, req)
	})
}

// sessionUser puts the logged-in user into the request context. API calls other than
// the session endpoints are refused without a session.
func sessionUser(session *user.Session) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := req.Context()
			u, err := session.CurrentUser()
			if err == nil {
				ctx = user.WithUser(ctx, u)
			} else if requiresSession(req) {
				log.Debugf("Rejecting %s %s without a session", req.Method, req.URL.Path)
				rest.WriteError(w, http.StatusUnauthorized, "Please log in", "")
				return
			}
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	}
}

func requiresSession(req *http.Request) bool {
	if !strings.HasPrefix(req.URL.Path, "/api/") {
		return false
	}
	return req.URL.Path != "/api/session"
}
