package claim

import (
	"github.com/acadportal/eventportal/pkg/budget"
	"github.com/acadportal/eventportal/pkg/portal"
)

// Submission is the claim bill being filled in for one finished event.
type Submission struct {
	Expenses []budget.ExpenseItem `json:"expenses"`
	Income   []budget.IncomeItem  `json:"income"`
}

// Apply seeds a claim for event. Expenses come from an earlier claim bill, else from the
// planned budget, else one empty row. Income comes from the planned budget, else the default row.
func Apply(event portal.Programme) Submission {
	s := Submission{
		Expenses: []budget.ExpenseItem{{}},
		Income:   []budget.IncomeItem{budget.DefaultIncomeItem()},
	}
	switch {
	case event.ClaimBill != nil && len(event.ClaimBill.Expenses) > 0:
		s.Expenses = budget.ExpensesFromWire(event.ClaimBill.Expenses)
	case event.BudgetBreakdown != nil && len(event.BudgetBreakdown.Expenses) > 0:
		s.Expenses = budget.ExpensesFromWire(event.BudgetBreakdown.Expenses)
	}
	if event.BudgetBreakdown != nil && len(event.BudgetBreakdown.Income) > 0 {
		s.Income = budget.IncomeFromWire(event.BudgetBreakdown.Income)
	}
	return s
}

// Sanitize cleans every row. Signs are dropped and GST is capped at 100.
func (s Submission) Sanitize() Submission {
	b := s.Breakdown().Sanitize()
	return Submission{Expenses: b.Expenses, Income: b.Income}
}

func (s Submission) Breakdown() budget.Breakdown {
	return budget.Breakdown{Income: s.Income, Expenses: s.Expenses}.Clone()
}

// CanSubmit needs at least one complete row on each side.
func (s Submission) CanSubmit() bool {
	return anyComplete(s.Expenses) && anyComplete(s.Income)
}

func anyComplete[T interface{ IsComplete() bool }](rows []T) bool {
	for _, row := range rows {
		if row.IsComplete() {
			return true
		}
	}
	return false
}

// Request fills in derived income and converts the rows to their wire form.
func (s Submission) Request() portal.ClaimRequest {
	b := s.Breakdown().RecalculateAllIncome()
	return portal.ClaimRequest{
		Expenses: budget.ExpensesToWire(b.Expenses),
		Income:   budget.IncomeToWire(b.Income),
	}
}
