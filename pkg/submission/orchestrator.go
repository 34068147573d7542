package submission

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/acadportal/eventportal/internal/event_bus"
	"github.com/acadportal/eventportal/pkg/portal"
	"github.com/acadportal/eventportal/pkg/proposal"
	"github.com/acadportal/eventportal/pkg/user"
	log "github.com/sirupsen/logrus"
)

var ErrSubmissionInProgress = errors.New("a submission for this draft is already in progress")

// Orchestrator turns a finished draft into a create or update call on the backend.
type Orchestrator struct {
	drafts *DraftServiceImpl
	client portal.Client
	bus    *event_bus.EventBus

	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewOrchestrator(drafts *DraftServiceImpl, client portal.Client, bus *event_bus.EventBus) *Orchestrator {
	return &Orchestrator{
		drafts:   drafts,
		client:   client,
		bus:      bus,
		inFlight: make(map[string]struct{}),
	}
}

func (o *Orchestrator) acquire(draftId string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, busy := o.inFlight[draftId]; busy {
		return false
	}
	o.inFlight[draftId] = struct{}{}
	return true
}

func (o *Orchestrator) release(draftId string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.inFlight, draftId)
}

// Submit requires the wizard on its last step with every step complete. It validates the draft, resolves the reviewing HOD and sends the proposal. On success the
// draft goes back to its seed at the first step; on any failure it is left exactly as it was.
func (o *Orchestrator) Submit(ctx context.Context, draftId string, brochure *portal.File) (portal.Programme, error) {
	if !o.acquire(draftId) {
		return portal.Programme{}, ErrSubmissionInProgress
	}
	defer o.release(draftId)

	draft, err := o.drafts.Get(ctx, draftId)
	if err != nil {
		return portal.Programme{}, err
	}
	if !draft.Wizard.CanSubmit() {
		return portal.Programme{}, proposal.ErrNotSubmitable
	}
	p := draft.Wizard.Proposal
	if err := proposal.Validate(p); err != nil {
		return portal.Programme{}, err
	}
	if brochure != nil && len(brochure.Content) > portal.MaxBrochureSize {
		return portal.Programme{}, &proposal.ValidationError{Message: "Brochure must be 10 MB or smaller"}
	}

	currentUser, err := user.CurrentUser(ctx)
	if err != nil {
		return portal.Programme{}, fmt.Errorf("failed to get current user: %w", err)
	}
	hod, err := o.client.LookupHOD(ctx, currentUser.Id)
	if err != nil {
		return portal.Programme{}, err
	}

	form, err := proposal.Payload(p, currentUser, hod)
	if err != nil {
		return portal.Programme{}, err
	}
	form.Brochure = brochure

	var programme portal.Programme
	if draft.EditId != "" {
		programme, err = o.client.UpdateProgramme(ctx, draft.EditId, form)
	} else {
		programme, err = o.client.CreateProgramme(ctx, form)
	}
	if err != nil {
		log.Debugf("Submission of draft %s rejected: %v", draftId, err)
		return portal.Programme{}, err
	}

	submitted := event_bus.ProgrammeSubmitted{ProgrammeId: programme.Id, DraftId: draftId, Updated: draft.EditId != ""}
	if err := o.bus.Publish(event_bus.NewEvent(ctx, event_bus.ProgrammeSubmittedType, submitted)); err != nil {
		log.Errorf("failed to publish submission of %s: %v", programme.Id, err)
	}

	draft.Wizard = draft.Wizard.Reset(draft.Seed)
	if err := o.drafts.save(ctx, draft); err != nil {
		log.Errorf("Programme %s was saved but draft %s could not be reset: %v", programme.Id, draftId, err)
	}
	return programme, nil
}
