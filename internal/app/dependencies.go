package app

import (
	"net/http"

	"github.com/acadportal/eventportal/internal/config"
	"github.com/acadportal/eventportal/internal/event_bus"
	"github.com/acadportal/eventportal/internal/utils"
	"github.com/acadportal/eventportal/pkg/claim"
	"github.com/acadportal/eventportal/pkg/portal"
	"github.com/acadportal/eventportal/pkg/report"
	"github.com/acadportal/eventportal/pkg/storage"
	"github.com/acadportal/eventportal/pkg/submission"
	"github.com/acadportal/eventportal/pkg/user"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	Clock    utils.Clock
	EventBus *event_bus.EventBus
	Storage  storage.Repository

	PortalClient *portal.ClientImpl

	Session     *user.Session
	UserHandler *user.Handler

	EventCache   *claim.Cache
	ClaimService *claim.ServiceImpl
	ClaimHandler *claim.Handler

	ReportHandler *report.Handler

	DraftService      *submission.DraftServiceImpl
	Orchestrator      *submission.Orchestrator
	SubmissionHandler *submission.Handler
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(repo storage.Repository, cfg config.Application) *Dependencies {
	deps := &Dependencies{}

	deps.Clock = &utils.SystemClock{}
	deps.EventBus = event_bus.NewEventBus()
	deps.Storage = repo

	deps.PortalClient = portal.NewClient(cfg.Backend.BaseURL, nil, &http.Client{Timeout: cfg.Backend.Timeout})
	deps.Session = user.NewSession(deps.Storage, deps.PortalClient, deps.Clock)
	deps.PortalClient.SetTokenProvider(deps.Session)
	deps.UserHandler = user.NewHandler(deps.Session)

	deps.EventCache = claim.NewCache(deps.PortalClient, deps.Clock, cfg.Claim.RefetchDelay)
	deps.EventCache.Subscribe(deps.EventBus)
	deps.Session.OnChange(deps.EventCache.Clear)
	deps.ClaimService = claim.NewService(deps.PortalClient, deps.EventCache, deps.EventBus)
	deps.ClaimHandler = claim.NewHandler(deps.ClaimService)
	deps.ReportHandler = report.NewHandler(deps.EventCache, report.NewCsvRenderer())

	deps.DraftService = submission.NewDraftService(deps.Storage, deps.PortalClient)
	deps.Orchestrator = submission.NewOrchestrator(deps.DraftService, deps.PortalClient, deps.EventBus)
	deps.SubmissionHandler = submission.NewHandler(deps.DraftService, deps.Orchestrator)

	return deps
}
