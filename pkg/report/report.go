package report

import (
	"sort"
	"strings"

	"github.com/acadportal/eventportal/pkg/budget"
	"github.com/acadportal/eventportal/pkg/money"
	"github.com/acadportal/eventportal/pkg/portal"
	"github.com/shopspring/decimal"
)

type Kind string

const (
	Income  Kind = "Income"
	Expense Kind = "Expense"
)

// Line compares one budget category as planned in the proposal with what was claimed afterwards.
type Line struct {
	Kind     Kind
	Category string
	Planned  decimal.Decimal
	Claimed  decimal.Decimal
}

func (l Line) Variance() decimal.Decimal {
	return l.Claimed.Sub(l.Planned)
}

// Summary reconciles the claim bill of an event against its original budget breakdown.
type Summary struct {
	EventId        string
	Title          string
	ClaimSubmitted bool
	Lines          []Line
	Planned        budget.Totals
	Claimed        budget.Totals
}

// Build creates the reconciliation. Without a claim bill every claimed amount is zero.
func Build(event portal.Programme) Summary {
	planned := budget.Breakdown{}
	if event.BudgetBreakdown != nil {
		planned.Income = budget.IncomeFromWire(event.BudgetBreakdown.Income)
		planned.Expenses = budget.ExpensesFromWire(event.BudgetBreakdown.Expenses)
	}
	claimed := budget.Breakdown{}
	if event.ClaimBill != nil {
		claimed.Income = budget.IncomeFromWire(event.ClaimBill.Income)
		claimed.Expenses = budget.ExpensesFromWire(event.ClaimBill.Expenses)
	}

	lines := merge(Income, incomeByCategory(planned.Income), incomeByCategory(claimed.Income))
	lines = append(lines, merge(Expense, expensesByCategory(planned.Expenses), expensesByCategory(claimed.Expenses))...)

	return Summary{
		EventId:        event.Id,
		Title:          event.Title,
		ClaimSubmitted: event.ClaimSubmitted,
		Lines:          lines,
		Planned:        planned.Totals(),
		Claimed:        claimed.Totals(),
	}
}

type categoryAmounts struct {
	order   []string
	amounts map[string]decimal.Decimal
}

func (c *categoryAmounts) add(category string, amount decimal.Decimal) {
	category = strings.TrimSpace(category)
	if c.amounts == nil {
		c.amounts = make(map[string]decimal.Decimal)
	}
	if _, ok := c.amounts[category]; !ok {
		c.order = append(c.order, category)
	}
	c.amounts[category] = c.amounts[category].Add(amount)
}

func incomeByCategory(rows []budget.IncomeItem) categoryAmounts {
	var result categoryAmounts
	for _, row := range rows {
		result.add(row.Category, money.Parse(row.Income))
	}
	return result
}

func expensesByCategory(rows []budget.ExpenseItem) categoryAmounts {
	var result categoryAmounts
	for _, row := range rows {
		result.add(row.Category, money.Parse(row.Amount))
	}
	return result
}

// merge keeps the planned order and appends categories that only appear in the claim, sorted by name.
func merge(kind Kind, planned, claimed categoryAmounts) []Line {
	lines := make([]Line, 0, len(planned.order)+len(claimed.order))
	for _, category := range planned.order {
		lines = append(lines, Line{
			Kind:     kind,
			Category: category,
			Planned:  planned.amounts[category],
			Claimed:  claimed.amounts[category],
		})
	}
	var extra []string
	for _, category := range claimed.order {
		if _, ok := planned.amounts[category]; !ok {
			extra = append(extra, category)
		}
	}
	sort.Strings(extra)
	for _, category := range extra {
		lines = append(lines, Line{Kind: kind, Category: category, Claimed: claimed.amounts[category]})
	}
	return lines
}
