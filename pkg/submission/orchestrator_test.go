package submission

import (
	"context"
	"testing"
	"time"

	"github.com/acadportal/eventportal/internal/event_bus"
	"github.com/acadportal/eventportal/pkg/budget"
	"github.com/acadportal/eventportal/pkg/portal"
	"github.com/acadportal/eventportal/pkg/proposal"
	"github.com/acadportal/eventportal/pkg/storage"
	"github.com/acadportal/eventportal/pkg/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var coordinatorUser = user.User{
	Id:          "u-1",
	Name:        "Asha Rao",
	Designation: "Associate Professor",
	Department:  "CSE",
	Role:        user.Coordinator,
}

type submissionTest struct {
	ctx          context.Context
	client       *portal.ClientStub
	repo         *storage.RepositoryStub
	drafts       *DraftServiceImpl
	orchestrator *Orchestrator
	submitted    []event_bus.ProgrammeSubmitted
}

func setupSubmissionTest(t *testing.T) *submissionTest {
	st := &submissionTest{
		ctx:    user.WithUser(context.Background(), coordinatorUser),
		client: portal.NewClientStub(),
		repo:   storage.NewRepositoryStub(),
	}
	st.client.SetHOD("u-1", portal.HOD{Id: "h-7", Name: "Dr. Menon", Department: "CSE"})
	bus := event_bus.NewEventBus()
	event_bus.SubscribeTyped(bus, event_bus.ProgrammeSubmittedType, func(e event_bus.EventT[event_bus.ProgrammeSubmitted]) error {
		st.submitted = append(st.submitted, e.Data)
		return nil
	})
	st.drafts = NewDraftService(st.repo, st.client)
	st.orchestrator = NewOrchestrator(st.drafts, st.client, bus)
	return st
}

func fill(p proposal.EventProposal) proposal.EventProposal {
	p.Title = "Workshop"
	p.StartDate = "2025-03-10"
	p.EndDate = "2025-03-12"
	p.Venue = "Seminar Hall"
	p.Duration = "3 days"
	p.Type = "FDP"
	p = p.AddTargetAudience("Faculty")
	p.BudgetBreakdown.Income[0].ExpectedParticipants = "50"
	p.BudgetBreakdown.Income[0].PerParticipantAmount = "1000"
	p.BudgetBreakdown.Expenses[0] = budget.ExpenseItem{Category: "Venue", Amount: "20000"}
	return p
}

func (st *submissionTest) filledDraft(t *testing.T, editId string) Draft {
	draft, err := st.drafts.Create(st.ctx, editId)
	require.NoError(t, err)
	draft, err = st.drafts.UpdateProposal(st.ctx, draft.Id, fill(draft.Wizard.Proposal))
	require.NoError(t, err)
	return draft
}

// readyDraft fills a draft and walks it to the review step.
func (st *submissionTest) readyDraft(t *testing.T, editId string) Draft {
	draft := st.filledDraft(t, editId)
	for range len(proposal.Steps) - 1 {
		var err error
		draft, err = st.drafts.Next(st.ctx, draft.Id)
		require.NoError(t, err)
	}
	require.True(t, draft.Wizard.CanSubmit())
	return draft
}

func TestOrchestrator_Submit(t *testing.T) {
	t.Run("should create the programme and reset the draft to its seed", func(t *testing.T) {
		// given
		st := setupSubmissionTest(t)
		draft := st.readyDraft(t, "")

		// when
		programme, err := st.orchestrator.Submit(st.ctx, draft.Id, nil)

		// then
		require.NoError(t, err)
		assert.Equal(t, "p-1", programme.Id)
		assert.Equal(t, 1, st.client.CreateCalls())
		assert.Equal(t, []event_bus.ProgrammeSubmitted{{ProgrammeId: "p-1", DraftId: draft.Id}}, st.submitted)

		form := st.client.Forms()[0]
		reviewer, _ := form.Value("reviewedBy")
		assert.Equal(t, "h-7", reviewer)

		stored, err := st.drafts.Get(st.ctx, draft.Id)
		require.NoError(t, err)
		assert.Equal(t, proposal.NewWizard(proposal.NewProposal(coordinatorUser)), stored.Wizard)
	})

	t.Run("should update when the draft edits an existing programme", func(t *testing.T) {
		st := setupSubmissionTest(t)
		st.client.SetProgrammes([]portal.Programme{{
			Id:           "p-42",
			Title:        "Old title",
			Coordinators: []portal.Coordinator{{Name: "Asha Rao", Designation: "Associate Professor", Department: "CSE"}},
		}})
		draft := st.readyDraft(t, "p-42")

		programme, err := st.orchestrator.Submit(st.ctx, draft.Id, &portal.File{Name: "b.pdf", Content: []byte("%PDF")})

		require.NoError(t, err)
		assert.Equal(t, "Workshop", programme.Title)
		assert.Equal(t, 0, st.client.CreateCalls())
		assert.Equal(t, 1, st.client.UpdateCalls())
		assert.NotNil(t, st.client.Forms()[0].Brochure)
		assert.True(t, st.submitted[0].Updated)
	})

	t.Run("should refuse a draft that is not on the last step", func(t *testing.T) {
		// given
		st := setupSubmissionTest(t)
		draft := st.filledDraft(t, "")
		draft, err := st.drafts.Next(st.ctx, draft.Id)
		require.NoError(t, err)

		// when
		_, err = st.orchestrator.Submit(st.ctx, draft.Id, nil)

		// then
		assert.ErrorIs(t, err, proposal.ErrNotSubmitable)
		assert.Equal(t, 0, st.client.CreateCalls())
		assert.Empty(t, st.submitted)
	})

	t.Run("should resubmit an unchanged programme holding zero values", func(t *testing.T) {
		// given
		st := setupSubmissionTest(t)
		st.client.SetProgrammes([]portal.Programme{{
			Id:             "p-7",
			Title:          "Sponsored Seminar",
			StartDate:      "2025-04-01T00:00:00.000Z",
			EndDate:        "2025-04-01T00:00:00.000Z",
			Venue:          "Auditorium",
			Mode:           "Offline",
			Duration:       "1 day",
			Type:           "Seminar",
			Coordinators:   []portal.Coordinator{{Name: "Asha Rao", Designation: "Associate Professor", Department: "CSE"}},
			TargetAudience: []string{"Students"},
			BudgetBreakdown: &portal.BudgetBreakdown{
				Income:   []portal.IncomeLine{{Category: "Sponsorship", ExpectedParticipants: 10, PerParticipantAmount: 100, GstPercentage: 0, Income: 1000}},
				Expenses: []portal.ExpenseLine{{Category: "Venue", Amount: 0}},
			},
		}})
		draft, err := st.drafts.Create(st.ctx, "p-7")
		require.NoError(t, err)
		for range len(proposal.Steps) - 1 {
			draft, err = st.drafts.Next(st.ctx, draft.Id)
			require.NoError(t, err)
		}

		// when
		_, err = st.orchestrator.Submit(st.ctx, draft.Id, nil)

		// then
		require.NoError(t, err)
		assert.Equal(t, 1, st.client.UpdateCalls())
		raw, _ := st.client.Forms()[0].Value("budgetBreakdown")
		assert.JSONEq(t, `{
			"income":[{"category":"Sponsorship","expectedParticipants":10,"perParticipantAmount":100,"gstPercentage":0,"income":1000}],
			"expenses":[{"category":"Venue","amount":0}],
			"totalIncome":1000,"totalExpenditure":0,"universityOverhead":300}`, raw)
	})

	t.Run("should not call the backend when validation fails", func(t *testing.T) {
		// given
		st := setupSubmissionTest(t)
		draft := st.readyDraft(t, "")
		p := draft.Wizard.Proposal
		p.EndDate = "2025-03-01"
		draft, err := st.drafts.UpdateProposal(st.ctx, draft.Id, p)
		require.NoError(t, err)

		// when
		_, err = st.orchestrator.Submit(st.ctx, draft.Id, nil)

		// then
		var validationErr *proposal.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Equal(t, "End date cannot be before start date", portal.UserMessage(err))
		assert.Equal(t, 0, st.client.CreateCalls())
		assert.Empty(t, st.submitted)
	})

	t.Run("should refuse an oversized brochure", func(t *testing.T) {
		st := setupSubmissionTest(t)
		draft := st.readyDraft(t, "")

		_, err := st.orchestrator.Submit(st.ctx, draft.Id, &portal.File{Name: "big.pdf", Content: make([]byte, portal.MaxBrochureSize+1)})

		var validationErr *proposal.ValidationError
		assert.ErrorAs(t, err, &validationErr)
		assert.Equal(t, 0, st.client.CreateCalls())
	})

	t.Run("should keep the form when the backend rejects it", func(t *testing.T) {
		// given
		st := setupSubmissionTest(t)
		draft := st.readyDraft(t, "")
		st.client.SetCreateError(&portal.APIError{Status: 400, Message: "Venue required"})

		// when
		_, err := st.orchestrator.Submit(st.ctx, draft.Id, nil)

		// then
		assert.Equal(t, "Venue required", portal.UserMessage(err))
		stored, getErr := st.drafts.Get(st.ctx, draft.Id)
		require.NoError(t, getErr)
		assert.Equal(t, draft.Wizard, stored.Wizard)
		assert.Equal(t, "Seminar Hall", stored.Wizard.Proposal.Venue)

		// and the guard is released for a retry
		st.client.SetCreateError(nil)
		_, err = st.orchestrator.Submit(st.ctx, draft.Id, nil)
		assert.NoError(t, err)
	})

	t.Run("should issue a single backend call for concurrent submits", func(t *testing.T) {
		// given
		st := setupSubmissionTest(t)
		draft := st.readyDraft(t, "")
		release := st.client.BlockCreate()
		defer release()

		first := make(chan error, 1)
		go func() {
			_, err := st.orchestrator.Submit(st.ctx, draft.Id, nil)
			first <- err
		}()
		require.Eventually(t, func() bool { return st.client.CreateCalls() == 1 }, time.Second, 5*time.Millisecond)

		// when
		_, err := st.orchestrator.Submit(st.ctx, draft.Id, nil)

		// then
		assert.ErrorIs(t, err, ErrSubmissionInProgress)
		release()
		assert.NoError(t, <-first)
		assert.Equal(t, 1, st.client.CreateCalls())
	})
}

func TestDraftService(t *testing.T) {
	t.Run("should gate next on the current step", func(t *testing.T) {
		st := setupSubmissionTest(t)
		draft, err := st.drafts.Create(st.ctx, "")
		require.NoError(t, err)

		_, err = st.drafts.Next(st.ctx, draft.Id)
		assert.ErrorIs(t, err, proposal.ErrStepInvalid)

		p := draft.Wizard.Proposal
		p.Title, p.StartDate, p.EndDate, p.Venue, p.Duration, p.Type = "Workshop", "2025-03-10", "2025-03-10", "Hall", "1 day", "FDP"
		_, err = st.drafts.UpdateProposal(st.ctx, draft.Id, p)
		require.NoError(t, err)
		draft, err = st.drafts.Next(st.ctx, draft.Id)

		require.NoError(t, err)
		assert.Equal(t, proposal.Coordinators, draft.Wizard.ActiveStep)
		draft, err = st.drafts.Back(st.ctx, draft.Id)
		require.NoError(t, err)
		assert.Equal(t, proposal.BasicDetails, draft.Wizard.ActiveStep)
	})

	t.Run("should keep the primary coordinator name", func(t *testing.T) {
		st := setupSubmissionTest(t)
		draft, _ := st.drafts.Create(st.ctx, "")
		p := draft.Wizard.Proposal
		p.Coordinators[0].Name = "Impostor"

		draft, err := st.drafts.UpdateProposal(st.ctx, draft.Id, p)

		require.NoError(t, err)
		assert.Equal(t, "Asha Rao", draft.Wizard.Proposal.Coordinators[0].Name)
	})

	t.Run("should sanitize the budget and derive income on update", func(t *testing.T) {
		// given
		st := setupSubmissionTest(t)
		draft, err := st.drafts.Create(st.ctx, "")
		require.NoError(t, err)
		p := draft.Wizard.Proposal
		p.BudgetBreakdown.Income[0] = budget.IncomeItem{Category: "Fees", ExpectedParticipants: "12.5", PerParticipantAmount: "100", GstPercentage: "150"}
		p.BudgetBreakdown.Expenses[0] = budget.ExpenseItem{Category: "Refund", Amount: "-5000"}

		// when
		draft, err = st.drafts.UpdateProposal(st.ctx, draft.Id, p)

		// then
		require.NoError(t, err)
		income := draft.Wizard.Proposal.BudgetBreakdown.Income[0]
		assert.Equal(t, "125", income.ExpectedParticipants)
		assert.Equal(t, "100", income.GstPercentage)
		assert.Equal(t, "25000.00", income.Income)
		assert.Equal(t, "5000", draft.Wizard.Proposal.BudgetBreakdown.Expenses[0].Amount)
	})

	t.Run("should apply a single edit", func(t *testing.T) {
		st := setupSubmissionTest(t)
		draft, _ := st.drafts.Create(st.ctx, "")

		draft, err := st.drafts.Edit(st.ctx, draft.Id, proposal.Edit{Op: proposal.AddAudienceOp, Value: "Faculty"})

		require.NoError(t, err)
		stored, _ := st.drafts.Get(st.ctx, draft.Id)
		assert.Equal(t, []string{"Faculty"}, stored.Wizard.Proposal.TargetAudience)
	})

	t.Run("should forget a discarded draft", func(t *testing.T) {
		st := setupSubmissionTest(t)
		draft, _ := st.drafts.Create(st.ctx, "")

		require.NoError(t, st.drafts.Discard(st.ctx, draft.Id))

		_, err := st.drafts.Get(st.ctx, draft.Id)
		assert.ErrorIs(t, err, ErrDraftNotFound)
	})

	t.Run("should require a logged in user", func(t *testing.T) {
		st := setupSubmissionTest(t)

		_, err := st.drafts.Create(context.Background(), "")

		assert.ErrorIs(t, err, user.ErrNoUser)
	})
}
