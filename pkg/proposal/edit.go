package proposal

import (
	"errors"
	"fmt"
)

type EditOp string

const (
	AddCoordinatorOp       EditOp = "addCoordinator"
	RemoveCoordinatorOp    EditOp = "removeCoordinator"
	UpdateCoordinatorOp    EditOp = "updateCoordinator"
	AddAudienceOp          EditOp = "addTargetAudience"
	RemoveAudienceOp       EditOp = "removeTargetAudience"
	AddResourcePersonOp    EditOp = "addResourcePerson"
	RemoveResourcePersonOp EditOp = "removeResourcePerson"
	AddIncomeRowOp         EditOp = "addIncomeRow"
	RemoveIncomeRowOp      EditOp = "removeIncomeRow"
	UpdateIncomeOp         EditOp = "updateIncome"
	AddExpenseRowOp        EditOp = "addExpenseRow"
	RemoveExpenseRowOp     EditOp = "removeExpenseRow"
	UpdateExpenseOp        EditOp = "updateExpense"
)

var ErrUnknownEdit = errors.New("unknown edit operation")

// Edit is one change made in the wizard form. Index addresses a coordinator, resource person
// or budget row; Value carries the new text.
type Edit struct {
	Op    EditOp `json:"op"`
	Index int    `json:"index"`
	Field string `json:"field,omitempty"`
	Value string `json:"value,omitempty"`
}

// Apply returns p with e applied. Numeric budget input is sanitized by the row update, and
// changing participants, unit price or GST derives the row income again.
func (p EventProposal) Apply(e Edit) (EventProposal, error) {
	switch e.Op {
	case AddCoordinatorOp:
		return p.AddCoordinator(), nil
	case RemoveCoordinatorOp:
		return p.RemoveCoordinator(e.Index), nil
	case UpdateCoordinatorOp:
		return p.UpdateCoordinator(e.Index, e.Field, e.Value)
	case AddAudienceOp:
		return p.AddTargetAudience(e.Value), nil
	case RemoveAudienceOp:
		return p.RemoveTargetAudience(e.Value), nil
	case AddResourcePersonOp:
		return p.AddResourcePerson(e.Value), nil
	case RemoveResourcePersonOp:
		return p.RemoveResourcePerson(e.Index), nil
	}

	next := p.Clone()
	b := next.BudgetBreakdown
	var err error
	switch e.Op {
	case AddIncomeRowOp:
		b = b.AddIncomeRow()
	case RemoveIncomeRowOp:
		b = b.RemoveIncomeRow(e.Index)
	case UpdateIncomeOp:
		b, err = b.UpdateIncomeField(e.Index, e.Field, e.Value)
		if err == nil && e.Field != "category" && e.Field != "income" {
			b = b.RecalculateIncome(e.Index)
		}
	case AddExpenseRowOp:
		b = b.AddExpenseRow()
	case RemoveExpenseRowOp:
		b = b.RemoveExpenseRow(e.Index)
	case UpdateExpenseOp:
		b, err = b.UpdateExpenseField(e.Index, e.Field, e.Value)
	default:
		return p, fmt.Errorf("%w: %q", ErrUnknownEdit, e.Op)
	}
	if err != nil {
		return p, err
	}
	next.BudgetBreakdown = b
	return next, nil
}
