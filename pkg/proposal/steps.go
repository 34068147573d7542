package proposal

import (
	"errors"
	"strings"
)

type Step int

const (
	BasicDetails Step = iota
	Coordinators
	Participants
	Registration
	Financials
	Review
)

// Steps is the fixed, linear order of the proposal wizard.
var Steps = []Step{BasicDetails, Coordinators, Participants, Registration, Financials, Review}

var (
	ErrStepInvalid   = errors.New("current step is incomplete")
	ErrNotSubmitable = errors.New("proposal cannot be submitted yet")
)

func (s Step) String() string {
	switch s {
	case BasicDetails:
		return "BasicDetails"
	case Coordinators:
		return "Coordinators"
	case Participants:
		return "Participants"
	case Registration:
		return "Registration"
	case Financials:
		return "Financials"
	case Review:
		return "Review"
	}
	return "Unknown"
}

// StepValid is the loose per-step gate. Submission re-checks everything through Validate.
func StepValid(step Step, p EventProposal) bool {
	switch step {
	case BasicDetails:
		return allFilled(p.Title, p.StartDate, p.EndDate, p.Venue, p.Duration, p.Type)
	case Coordinators:
		for _, c := range p.Coordinators {
			if !c.complete() {
				return false
			}
		}
		return true
	case Participants:
		return len(p.TargetAudience) > 0
	case Financials:
		return len(p.BudgetBreakdown.Income) > 0 && len(p.BudgetBreakdown.Expenses) > 0
	case Registration, Review:
		return true
	}
	return false
}

func allFilled(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return false
		}
	}
	return true
}

// Wizard tracks the active step of one proposal being edited.
type Wizard struct {
	ActiveStep Step          `json:"activeStep"`
	Proposal   EventProposal `json:"proposal"`
}

func NewWizard(seed EventProposal) Wizard {
	return Wizard{ActiveStep: BasicDetails, Proposal: seed.Clone()}
}

func (w Wizard) IsLastStep() bool {
	return int(w.ActiveStep) == len(Steps)-1
}

func (w Wizard) CanNext() bool {
	return !w.IsLastStep() && StepValid(w.ActiveStep, w.Proposal)
}

func (w Wizard) CanBack() bool {
	return w.ActiveStep > BasicDetails
}

// Next advances one step; when the current step is invalid the wizard is returned unchanged.
func (w Wizard) Next() (Wizard, error) {
	if !w.CanNext() {
		return w, ErrStepInvalid
	}
	w.ActiveStep++
	return w, nil
}

func (w Wizard) Back() Wizard {
	if w.CanBack() {
		w.ActiveStep--
	}
	return w
}

// CanSubmit holds on the last step once every gating step is valid.
func (w Wizard) CanSubmit() bool {
	if !w.IsLastStep() {
		return false
	}
	for _, step := range Steps {
		if !StepValid(step, w.Proposal) {
			return false
		}
	}
	return true
}

// Reset returns a wizard at the first step holding a copy of seed.
func (w Wizard) Reset(seed EventProposal) Wizard {
	return NewWizard(seed)
}

// StepStatus reports, per step, whether its gate currently holds.
func (w Wizard) StepStatus() map[string]bool {
	status := make(map[string]bool, len(Steps))
	for _, step := range Steps {
		status[step.String()] = StepValid(step, w.Proposal)
	}
	return status
}
