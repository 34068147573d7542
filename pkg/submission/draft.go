package submission

import (
	"context"
	"errors"
	"fmt"

	"github.com/acadportal/eventportal/pkg/portal"
	"github.com/acadportal/eventportal/pkg/proposal"
	"github.com/acadportal/eventportal/pkg/storage"
	"github.com/acadportal/eventportal/pkg/user"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

var ErrDraftNotFound = errors.New("draft not found")

// Draft is the server-side state of one open proposal wizard.
// Seed is what the wizard returns to after a successful submission.
type Draft struct {
	Id     string                 `json:"id"`
	EditId string                 `json:"editId,omitempty"`
	Wizard proposal.Wizard        `json:"wizard"`
	Seed   proposal.EventProposal `json:"seed"`
}

type DraftService interface {
	Create(ctx context.Context, editId string) (Draft, error)
	Get(ctx context.Context, id string) (Draft, error)
	UpdateProposal(ctx context.Context, id string, p proposal.EventProposal) (Draft, error)
	Edit(ctx context.Context, id string, e proposal.Edit) (Draft, error)
	Next(ctx context.Context, id string) (Draft, error)
	Back(ctx context.Context, id string) (Draft, error)
	Discard(ctx context.Context, id string) error
}

type DraftServiceImpl struct {
	repo   storage.Repository
	client portal.Client
}

func NewDraftService(repo storage.Repository, client portal.Client) *DraftServiceImpl {
	return &DraftServiceImpl{repo: repo, client: client}
}

func draftKey(id string) string {
	return "draft." + id
}

// Create opens a wizard. Without editId it starts from the current user's defaults,
// otherwise from the stored programme.
func (s *DraftServiceImpl) Create(ctx context.Context, editId string) (Draft, error) {
	currentUser, err := user.CurrentUser(ctx)
	if err != nil {
		return Draft{}, fmt.Errorf("failed to get current user: %w", err)
	}

	seed := proposal.NewProposal(currentUser)
	if editId != "" {
		record, err := s.client.GetProgramme(ctx, editId)
		if err != nil {
			return Draft{}, err
		}
		seed = proposal.FromRecord(record)
	}

	draft := Draft{
		Id:     uuid.NewString(),
		EditId: editId,
		Wizard: proposal.NewWizard(seed),
		Seed:   seed,
	}
	if err := s.save(ctx, draft); err != nil {
		return Draft{}, err
	}
	log.Debugf("Opened draft %s (edit: %q)", draft.Id, editId)
	return draft, nil
}

func (s *DraftServiceImpl) Get(ctx context.Context, id string) (Draft, error) {
	var draft Draft
	if err := s.repo.Get(ctx, draftKey(id), &draft); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Draft{}, ErrDraftNotFound
		}
		return Draft{}, fmt.Errorf("failed to load draft %s: %w", id, err)
	}
	return draft, nil
}

// UpdateProposal replaces the form state. The primary coordinator stays the seeded one,
// budget input is sanitized and row income derived again.
func (s *DraftServiceImpl) UpdateProposal(ctx context.Context, id string, p proposal.EventProposal) (Draft, error) {
	draft, err := s.Get(ctx, id)
	if err != nil {
		return Draft{}, err
	}
	p = p.Clone()
	if len(draft.Seed.Coordinators) > 0 {
		if len(p.Coordinators) == 0 {
			p.Coordinators = []proposal.Coordinator{draft.Seed.Coordinators[0]}
		} else {
			p.Coordinators[0].Name = draft.Seed.Coordinators[0].Name
		}
	}
	p.TargetAudience = proposal.DedupTargetAudience(p.TargetAudience)
	if len(p.BudgetBreakdown.Income) == 0 || len(p.BudgetBreakdown.Expenses) == 0 {
		defaults := draft.Wizard.Proposal.BudgetBreakdown
		if len(p.BudgetBreakdown.Income) == 0 {
			p.BudgetBreakdown.Income = defaults.Income
		}
		if len(p.BudgetBreakdown.Expenses) == 0 {
			p.BudgetBreakdown.Expenses = defaults.Expenses
		}
	}
	p.BudgetBreakdown = p.BudgetBreakdown.Sanitize().RecalculateAllIncome()
	draft.Wizard.Proposal = p
	return draft, s.save(ctx, draft)
}

// Edit applies a single field or row change to the form state.
func (s *DraftServiceImpl) Edit(ctx context.Context, id string, e proposal.Edit) (Draft, error) {
	draft, err := s.Get(ctx, id)
	if err != nil {
		return Draft{}, err
	}
	next, err := draft.Wizard.Proposal.Apply(e)
	if err != nil {
		return draft, err
	}
	draft.Wizard.Proposal = next
	return draft, s.save(ctx, draft)
}

func (s *DraftServiceImpl) Next(ctx context.Context, id string) (Draft, error) {
	draft, err := s.Get(ctx, id)
	if err != nil {
		return Draft{}, err
	}
	next, err := draft.Wizard.Next()
	if err != nil {
		return draft, err
	}
	draft.Wizard = next
	return draft, s.save(ctx, draft)
}

func (s *DraftServiceImpl) Back(ctx context.Context, id string) (Draft, error) {
	draft, err := s.Get(ctx, id)
	if err != nil {
		return Draft{}, err
	}
	draft.Wizard = draft.Wizard.Back()
	return draft, s.save(ctx, draft)
}

func (s *DraftServiceImpl) Discard(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, draftKey(id))
}

func (s *DraftServiceImpl) save(ctx context.Context, draft Draft) error {
	if err := s.repo.Put(ctx, draftKey(draft.Id), draft); err != nil {
		return fmt.Errorf("failed to store draft %s: %w", draft.Id, err)
	}
	return nil
}
