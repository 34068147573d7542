package budget

import (
	"errors"
	"strings"

	"github.com/acadportal/eventportal/pkg/money"
	"github.com/shopspring/decimal"
)

const (
	DefaultIncomeCategory = "Registration Fees"
	DefaultGstPercentage  = "18"
)

var ErrUnknownField = errors.New("unknown budget field")

// IncomeItem keeps numeric values as entered; they are parsed only for computation.
type IncomeItem struct {
	Category             string `json:"category"`
	ExpectedParticipants string `json:"expectedParticipants"`
	PerParticipantAmount string `json:"perParticipantAmount"`
	GstPercentage        string `json:"gstPercentage"`
	Income               string `json:"income"`
}

type ExpenseItem struct {
	Category string `json:"category"`
	Amount   string `json:"amount"`
}

type Breakdown struct {
	Income   []IncomeItem  `json:"income"`
	Expenses []ExpenseItem `json:"expenses"`
}

type Totals struct {
	TotalIncome        decimal.Decimal
	TotalExpenditure   decimal.Decimal
	UniversityOverhead decimal.Decimal
	NetBalance         decimal.Decimal
}

func DefaultIncomeItem() IncomeItem {
	return IncomeItem{Category: DefaultIncomeCategory, GstPercentage: DefaultGstPercentage}
}

// Default returns the breakdown a fresh proposal starts with: one row of each kind.
func Default() Breakdown {
	return Breakdown{
		Income:   []IncomeItem{DefaultIncomeItem()},
		Expenses: []ExpenseItem{{}},
	}
}

// CalculatedIncome derives the row income from participants, unit price and GST.
func (i IncomeItem) CalculatedIncome() decimal.Decimal {
	return money.Income(
		money.Parse(i.ExpectedParticipants),
		money.Parse(i.PerParticipantAmount),
		money.Parse(i.GstPercentage),
	)
}

// IsComplete reports whether the row has a category and a usable income value.
func (i IncomeItem) IsComplete() bool {
	if strings.TrimSpace(i.Category) == "" {
		return false
	}
	return money.Parse(i.Income).IsPositive() || i.CalculatedIncome().IsPositive()
}

func (e ExpenseItem) IsComplete() bool {
	return strings.TrimSpace(e.Category) != "" && money.Parse(e.Amount).IsPositive()
}

func (b Breakdown) Totals() Totals {
	totalIncome := money.Sum(b.Income, func(i IncomeItem) string { return i.Income })
	totalExpenditure := money.Sum(b.Expenses, func(e ExpenseItem) string { return e.Amount })
	overhead := money.Overhead(totalIncome)
	return Totals{
		TotalIncome:        totalIncome,
		TotalExpenditure:   totalExpenditure,
		UniversityOverhead: overhead,
		NetBalance:         money.NetBalance(totalIncome, overhead, totalExpenditure),
	}
}

// Clone copies both row slices so the result shares no backing arrays with b.
func (b Breakdown) Clone() Breakdown {
	income := make([]IncomeItem, len(b.Income))
	copy(income, b.Income)
	expenses := make([]ExpenseItem, len(b.Expenses))
	copy(expenses, b.Expenses)
	return Breakdown{Income: income, Expenses: expenses}
}

func (b Breakdown) AddIncomeRow() Breakdown {
	next := b.Clone()
	next.Income = append(next.Income, IncomeItem{})
	return next
}

// RemoveIncomeRow never drops the last row; out-of-range indexes are ignored.
func (b Breakdown) RemoveIncomeRow(index int) Breakdown {
	next := b.Clone()
	if len(next.Income) <= 1 || index < 0 || index >= len(next.Income) {
		return next
	}
	next.Income = append(next.Income[:index], next.Income[index+1:]...)
	return next
}

func (b Breakdown) UpdateIncomeField(index int, field, value string) (Breakdown, error) {
	next := b.Clone()
	if index < 0 || index >= len(next.Income) {
		return next, nil
	}
	row := &next.Income[index]
	switch field {
	case "category":
		row.Category = value
	case "expectedParticipants":
		row.ExpectedParticipants = SanitizeInteger(value)
	case "perParticipantAmount":
		row.PerParticipantAmount = SanitizeDecimal(value)
	case "gstPercentage":
		row.GstPercentage = SanitizePercentage(value)
	case "income":
		row.Income = SanitizeDecimal(value)
	default:
		return b, ErrUnknownField
	}
	return next, nil
}

// RecalculateIncome stores the derived income on one row.
func (b Breakdown) RecalculateIncome(index int) Breakdown {
	next := b.Clone()
	if index < 0 || index >= len(next.Income) {
		return next
	}
	next.Income[index].Income = money.Format(next.Income[index].CalculatedIncome())
	return next
}

// RecalculateAllIncome derives income for every row with positive participants and unit price.
// Other rows keep the income that was entered directly, e.g. a lump-sum sponsorship.
func (b Breakdown) RecalculateAllIncome() Breakdown {
	next := b.Clone()
	for idx, row := range next.Income {
		if !money.Parse(row.ExpectedParticipants).IsPositive() || !money.Parse(row.PerParticipantAmount).IsPositive() {
			continue
		}
		next.Income[idx].Income = money.Format(row.CalculatedIncome())
	}
	return next
}

// Sanitize cleans every numeric value of every row the way a single field update does.
func (b Breakdown) Sanitize() Breakdown {
	next := b.Clone()
	for i := range next.Income {
		row := &next.Income[i]
		row.ExpectedParticipants = SanitizeInteger(row.ExpectedParticipants)
		row.PerParticipantAmount = SanitizeDecimal(row.PerParticipantAmount)
		row.GstPercentage = SanitizePercentage(row.GstPercentage)
		row.Income = SanitizeDecimal(row.Income)
	}
	for i := range next.Expenses {
		next.Expenses[i].Amount = SanitizeDecimal(next.Expenses[i].Amount)
	}
	return next
}

func (b Breakdown) AddExpenseRow() Breakdown {
	next := b.Clone()
	next.Expenses = append(next.Expenses, ExpenseItem{})
	return next
}

func (b Breakdown) RemoveExpenseRow(index int) Breakdown {
	next := b.Clone()
	if len(next.Expenses) <= 1 || index < 0 || index >= len(next.Expenses) {
		return next
	}
	next.Expenses = append(next.Expenses[:index], next.Expenses[index+1:]...)
	return next
}

func (b Breakdown) UpdateExpenseField(index int, field, value string) (Breakdown, error) {
	next := b.Clone()
	if index < 0 || index >= len(next.Expenses) {
		return next, nil
	}
	row := &next.Expenses[index]
	switch field {
	case "category":
		row.Category = value
	case "amount":
		row.Amount = SanitizeDecimal(value)
	default:
		return b, ErrUnknownField
	}
	return next, nil
}
