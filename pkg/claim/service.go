package claim

import (
	"context"
	"errors"
	"fmt"

	"github.com/acadportal/eventportal/internal/event_bus"
	"github.com/acadportal/eventportal/pkg/budget"
	"github.com/acadportal/eventportal/pkg/portal"
	log "github.com/sirupsen/logrus"
)

var ErrIncompleteClaim = errors.New("a claim needs at least one complete expense and one complete income row")

type Service interface {
	Events(ctx context.Context) ([]portal.Programme, error)
	DeleteEvent(ctx context.Context, id string) error
	Seed(ctx context.Context, eventId string) (Submission, error)
	Submit(ctx context.Context, eventId string, s Submission) error
	PDF(ctx context.Context, claimId string) ([]byte, error)
}

type ServiceImpl struct {
	client portal.Client
	cache  *Cache
	bus    *event_bus.EventBus
}

func NewService(client portal.Client, cache *Cache, bus *event_bus.EventBus) *ServiceImpl {
	return &ServiceImpl{client: client, cache: cache, bus: bus}
}

func (s *ServiceImpl) Events(ctx context.Context) ([]portal.Programme, error) {
	return s.cache.List(ctx)
}

func (s *ServiceImpl) DeleteEvent(ctx context.Context, id string) error {
	if err := s.client.DeleteProgramme(ctx, id); err != nil {
		return err
	}
	if err := s.bus.Publish(event_bus.NewEvent(ctx, event_bus.ProgrammeDeletedType, event_bus.ProgrammeDeleted{ProgrammeId: id})); err != nil {
		log.Errorf("failed to publish deletion of %s: %v", id, err)
	}
	return nil
}

func (s *ServiceImpl) Seed(ctx context.Context, eventId string) (Submission, error) {
	event, err := s.cache.Get(ctx, eventId)
	if err != nil {
		return Submission{}, err
	}
	return Apply(event), nil
}

// Submit posts the claim, patches the cached event with the locally computed totals and
// asks for an authoritative refresh shortly after.
func (s *ServiceImpl) Submit(ctx context.Context, eventId string, claim Submission) error {
	claim = claim.Sanitize()
	if !claim.CanSubmit() {
		return ErrIncompleteClaim
	}
	request := claim.Request()
	if err := s.client.SubmitClaim(ctx, eventId, request); err != nil {
		return fmt.Errorf("failed to submit claim for %s: %w", eventId, err)
	}

	totals := budget.Breakdown{
		Income:   budget.IncomeFromWire(request.Income),
		Expenses: budget.ExpensesFromWire(request.Expenses),
	}.Totals()
	totalIncome := totals.TotalIncome.InexactFloat64()
	totalExpenditure := totals.TotalExpenditure.InexactFloat64()
	overhead := totals.UniversityOverhead.InexactFloat64()

	patched := s.cache.Patch(eventId, func(p *portal.Programme) {
		p.ClaimBill = &portal.ClaimBill{
			Expenses:           request.Expenses,
			Income:             request.Income,
			TotalExpenditure:   totalExpenditure,
			TotalIncome:        totalIncome,
			UniversityOverhead: overhead,
		}
		next := portal.BudgetBreakdown{}
		if p.BudgetBreakdown != nil {
			next = *p.BudgetBreakdown
		}
		next.TotalIncome = totalIncome
		next.TotalExpenditure = totalExpenditure
		next.UniversityOverhead = overhead
		p.BudgetBreakdown = &next
		p.ClaimSubmitted = true
	})
	if !patched {
		log.Debugf("Claimed event %s is not cached, waiting for refresh", eventId)
	}

	event := event_bus.ClaimSubmitted{EventId: eventId, TotalIncome: totalIncome, TotalExpenditure: totalExpenditure}
	if err := s.bus.Publish(event_bus.NewEvent(ctx, event_bus.ClaimSubmittedType, event)); err != nil {
		log.Errorf("failed to publish claim for %s: %v", eventId, err)
	}
	return nil
}

func (s *ServiceImpl) PDF(ctx context.Context, claimId string) ([]byte, error) {
	return s.client.ClaimPDF(ctx, claimId)
}
