package budget

import (
	"strconv"

	"github.com/acadportal/eventportal/pkg/money"
	"github.com/acadportal/eventportal/pkg/portal"
)

func IncomeToWire(items []IncomeItem) []portal.IncomeLine {
	lines := make([]portal.IncomeLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, portal.IncomeLine{
			Category:             item.Category,
			ExpectedParticipants: money.Parse(item.ExpectedParticipants).InexactFloat64(),
			PerParticipantAmount: money.Parse(item.PerParticipantAmount).InexactFloat64(),
			GstPercentage:        money.Parse(item.GstPercentage).InexactFloat64(),
			Income:               money.Parse(item.Income).InexactFloat64(),
		})
	}
	return lines
}

func ExpensesToWire(items []ExpenseItem) []portal.ExpenseLine {
	lines := make([]portal.ExpenseLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, portal.ExpenseLine{
			Category: item.Category,
			Amount:   money.Parse(item.Amount).InexactFloat64(),
		})
	}
	return lines
}

func IncomeFromWire(lines []portal.IncomeLine) []IncomeItem {
	items := make([]IncomeItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, IncomeItem{
			Category:             line.Category,
			ExpectedParticipants: formatFloat(line.ExpectedParticipants),
			PerParticipantAmount: formatFloat(line.PerParticipantAmount),
			GstPercentage:        formatFloat(line.GstPercentage),
			Income:               formatFloat(line.Income),
		})
	}
	return items
}

func ExpensesFromWire(lines []portal.ExpenseLine) []ExpenseItem {
	items := make([]ExpenseItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, ExpenseItem{Category: line.Category, Amount: formatFloat(line.Amount)})
	}
	return items
}

// ToWire serialises the breakdown with its derived totals.
func (b Breakdown) ToWire() portal.BudgetBreakdown {
	totals := b.Totals()
	return portal.BudgetBreakdown{
		Income:             IncomeToWire(b.Income),
		Expenses:           ExpensesToWire(b.Expenses),
		TotalIncome:        totals.TotalIncome.InexactFloat64(),
		TotalExpenditure:   totals.TotalExpenditure.InexactFloat64(),
		UniversityOverhead: totals.UniversityOverhead.InexactFloat64(),
	}
}

// FromWire restores editable rows from a stored breakdown; empty collections get their minimum row.
func FromWire(w *portal.BudgetBreakdown) Breakdown {
	b := Default()
	if w == nil {
		return b
	}
	if len(w.Income) > 0 {
		b.Income = IncomeFromWire(w.Income)
	}
	if len(w.Expenses) > 0 {
		b.Expenses = ExpensesFromWire(w.Expenses)
	}
	return b
}

// formatFloat renders 0 as "0". A stored zero is a value, not a blank field.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
