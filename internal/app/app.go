package app

import (
	"context"
	"net/http"
	"time"

	"github.com/acadportal/eventportal/internal/config"
	"github.com/acadportal/eventportal/internal/database"
	"github.com/acadportal/eventportal/pkg/storage"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

// Application wires configuration, database, router, and server lifecycle.
type Application struct {
	cfg    config.Application
	db     *pgxpool.Pool
	router *mux.Router
	srv    *http.Server
}

// NewApplication constructs the full HTTP application, ready to Run().
func NewApplication(ctx context.Context) (*Application, error) {
	cfg, err := config.Load("./config/application.yaml")
	if err != nil {
		return nil, err
	}

	if err := database.Migrate(cfg.Database); err != nil {
		return nil, err
	}
	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	deps := BuildDependencies(storage.NewRepository(db), cfg)
	if err := deps.Session.Restore(ctx); err != nil {
		log.Warnf("Could not restore the previous session: %v", err)
	}

	r := mux.NewRouter()
	SetupMiddleware(r, deps, cfg)
	RegisterRoutes(r, deps, cfg)

	srv := &http.Server{
		Handler:      r,
		Addr:         cfg.Server.Addr,
		WriteTimeout: 60 * time.Second,
		ReadTimeout:  60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Application{cfg: cfg, db: db, router: r, srv: srv}, nil
}

// Run serves until ctx is cancelled, then shuts the server down and closes the pool.
func (a *Application) Run(ctx context.Context) error {
	errs := make(chan error, 1)
	go func() {
		log.Infof("Starting server on %s", a.srv.Addr)
		errs <- a.srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		a.db.Close()
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := a.srv.Shutdown(shutdownCtx)
	a.db.Close()
	return err
}
