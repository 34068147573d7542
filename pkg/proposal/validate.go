package proposal

import (
	"fmt"
	"strings"
	"time"

	"github.com/acadportal/eventportal/pkg/money"
	"github.com/shopspring/decimal"
)

// ValidationError is a client-side rejection. Its message is shown to the user as is.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

var maxGst = decimal.NewFromInt(100)

var dateLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04"}

// ParseDate accepts a calendar date or an RFC3339 timestamp.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// Validate is the strict check run before any submission reaches the backend.
func Validate(p EventProposal) error {
	required := []struct {
		label string
		value string
	}{
		{"Title", p.Title},
		{"Start date", p.StartDate},
		{"End date", p.EndDate},
		{"Venue", p.Venue},
		{"Duration", p.Duration},
		{"Event type", p.Type},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return invalid("%s is required", r.label)
		}
	}
	if !p.Mode.Valid() {
		return invalid("Mode must be Online, Offline or Hybrid")
	}

	start, err := ParseDate(p.StartDate)
	if err != nil {
		return invalid("Start date is not a valid date")
	}
	end, err := ParseDate(p.EndDate)
	if err != nil {
		return invalid("End date is not a valid date")
	}
	if end.Before(start) {
		return invalid("End date cannot be before start date")
	}

	if len(p.Coordinators) == 0 {
		return invalid("At least one coordinator is required")
	}
	for i, c := range p.Coordinators {
		if !c.complete() {
			return invalid("Coordinator %d must have a name, designation and department", i+1)
		}
	}

	if len(p.TargetAudience) == 0 {
		return invalid("Select at least one target audience")
	}

	if len(p.BudgetBreakdown.Income) == 0 || len(p.BudgetBreakdown.Expenses) == 0 {
		return invalid("Budget must contain at least one income and one expense entry")
	}
	for i, row := range p.BudgetBreakdown.Income {
		if strings.TrimSpace(row.Category) == "" {
			return invalid("Income row %d needs a category", i+1)
		}
		if !numeric(row.ExpectedParticipants) || !numeric(row.PerParticipantAmount) || !numeric(row.GstPercentage) {
			return invalid("Income row %d needs numeric participants, amount per participant and GST", i+1)
		}
		if !money.Parse(row.ExpectedParticipants).IsInteger() {
			return invalid("Income row %d needs a whole number of participants", i+1)
		}
		if money.Parse(row.GstPercentage).GreaterThan(maxGst) {
			return invalid("Income row %d GST must be between 0 and 100", i+1)
		}
	}
	for i, row := range p.BudgetBreakdown.Expenses {
		if strings.TrimSpace(row.Category) == "" {
			return invalid("Expense row %d needs a category", i+1)
		}
		if !numeric(row.Amount) {
			return invalid("Expense row %d needs a numeric amount", i+1)
		}
	}

	if rp := p.RegistrationProcedure; rp.Enabled && rp.Deadline != "" {
		if _, err := ParseDate(rp.Deadline); err != nil {
			return invalid("Registration deadline is not a valid date")
		}
	}
	return nil
}

func numeric(value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return false
	}
	d, err := decimal.NewFromString(value)
	return err == nil && !d.IsNegative()
}

// budgetOrDefault falls back to the planned expenditure when no overall budget was typed in.
func budgetOrDefault(p EventProposal) string {
	if strings.TrimSpace(p.Budget) != "" {
		return money.Format(money.Parse(p.Budget))
	}
	return money.Format(p.BudgetBreakdown.Totals().TotalExpenditure)
}
