package budget

import (
	"testing"

	"github.com/acadportal/eventportal/pkg/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreakdown_Totals(t *testing.T) {
	t.Run("should compute totals, overhead and net balance", func(t *testing.T) {
		// given
		b := Breakdown{
			Income:   []IncomeItem{{Income: "59000"}},
			Expenses: []ExpenseItem{{Amount: "20000"}},
		}

		// when
		totals := b.Totals()

		// then
		assert.Equal(t, "59000.00", money.Format(totals.TotalIncome))
		assert.Equal(t, "20000.00", money.Format(totals.TotalExpenditure))
		assert.Equal(t, "17700.00", money.Format(totals.UniversityOverhead))
		assert.Equal(t, "21300.00", money.Format(totals.NetBalance))
	})

	t.Run("should count empty and malformed values as zero", func(t *testing.T) {
		b := Breakdown{
			Income:   []IncomeItem{{Income: "100"}, {Income: ""}, {Income: "x"}},
			Expenses: []ExpenseItem{{Amount: ""}, {Amount: "40.25"}},
		}

		totals := b.Totals()

		assert.Equal(t, "100.00", money.Format(totals.TotalIncome))
		assert.Equal(t, "40.25", money.Format(totals.TotalExpenditure))
	})
}

func TestBreakdown_Rows(t *testing.T) {
	t.Run("should not remove the last income row", func(t *testing.T) {
		b := Default()

		next := b.RemoveIncomeRow(0)

		assert.Len(t, next.Income, 1)
	})

	t.Run("should not remove the last expense row", func(t *testing.T) {
		b := Default()

		next := b.RemoveExpenseRow(0)

		assert.Len(t, next.Expenses, 1)
	})

	t.Run("should remove a row and keep order", func(t *testing.T) {
		b := Breakdown{
			Expenses: []ExpenseItem{{Category: "Venue"}, {Category: "Food"}, {Category: "Travel"}},
		}

		next := b.RemoveExpenseRow(1)

		require.Len(t, next.Expenses, 2)
		assert.Equal(t, "Venue", next.Expenses[0].Category)
		assert.Equal(t, "Travel", next.Expenses[1].Category)
		assert.Len(t, b.Expenses, 3, "input must not be modified")
		assert.Equal(t, "Food", b.Expenses[1].Category, "input must not be modified")
	})

	t.Run("should append zero valued rows", func(t *testing.T) {
		b := Default()

		next := b.AddIncomeRow().AddExpenseRow()

		assert.Len(t, next.Income, 2)
		assert.Len(t, next.Expenses, 2)
		assert.Equal(t, IncomeItem{}, next.Income[1])
		assert.Len(t, b.Income, 1)
	})

	t.Run("should update a single field and keep the others", func(t *testing.T) {
		b := Breakdown{Income: []IncomeItem{{Category: "Fees", GstPercentage: "18"}}}

		next, err := b.UpdateIncomeField(0, "expectedParticipants", "5a0")

		require.NoError(t, err)
		assert.Equal(t, "50", next.Income[0].ExpectedParticipants)
		assert.Equal(t, "Fees", next.Income[0].Category)
		assert.Equal(t, "18", next.Income[0].GstPercentage)
		assert.Equal(t, "", b.Income[0].ExpectedParticipants)
	})

	t.Run("should clamp GST percentage", func(t *testing.T) {
		b := Default()

		next, err := b.UpdateIncomeField(0, "gstPercentage", "150")

		require.NoError(t, err)
		assert.Equal(t, "100", next.Income[0].GstPercentage)
	})

	t.Run("should reject unknown fields", func(t *testing.T) {
		b := Default()

		_, err := b.UpdateExpenseField(0, "colour", "red")

		assert.ErrorIs(t, err, ErrUnknownField)
	})
}

func TestBreakdown_RecalculateIncome(t *testing.T) {
	b := Breakdown{Income: []IncomeItem{{
		Category:             "Registration Fees",
		ExpectedParticipants: "50",
		PerParticipantAmount: "1000",
		GstPercentage:        "18",
	}}}

	next := b.RecalculateIncome(0)

	assert.Equal(t, "59000.00", next.Income[0].Income)
	assert.True(t, next.Income[0].IsComplete())
	assert.Equal(t, "", b.Income[0].Income)
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "123", SanitizeInteger("1.2-3"))
	assert.Equal(t, "12.34", SanitizeDecimal("12.3.4"))
	assert.Equal(t, "1000", SanitizeDecimal("₹1,000"))
	assert.Equal(t, "18.5", SanitizePercentage("18.5%"))
	assert.Equal(t, "100", SanitizePercentage("101"))
	assert.Equal(t, "", SanitizePercentage("abc"))
}

func TestCompleteness(t *testing.T) {
	assert.False(t, ExpenseItem{Category: "Venue"}.IsComplete())
	assert.False(t, ExpenseItem{Amount: "100"}.IsComplete())
	assert.True(t, ExpenseItem{Category: "Venue", Amount: "100"}.IsComplete())
	assert.False(t, DefaultIncomeItem().IsComplete())
	assert.True(t, IncomeItem{Category: "Sponsorship", Income: "5000"}.IsComplete())
}

func TestBreakdown_RecalculateAllIncome(t *testing.T) {
	// given
	b := Breakdown{Income: []IncomeItem{
		{Category: "Registration Fees", ExpectedParticipants: "50", PerParticipantAmount: "1000", GstPercentage: "18"},
		{Category: "Sponsorship", ExpectedParticipants: "0", PerParticipantAmount: "0", GstPercentage: "0", Income: "25000"},
		{Category: "Workshop Kits", ExpectedParticipants: "10", Income: "300"},
	}}

	// when
	next := b.RecalculateAllIncome()

	// then
	assert.Equal(t, "59000.00", next.Income[0].Income)
	assert.Equal(t, "25000", next.Income[1].Income)
	assert.Equal(t, "300", next.Income[2].Income)
	assert.Equal(t, "84300.00", money.Format(next.Totals().TotalIncome))
}

func TestBreakdown_Sanitize(t *testing.T) {
	// given
	b := Breakdown{
		Income:   []IncomeItem{{Category: "Fees", ExpectedParticipants: "12.5", PerParticipantAmount: "-100", GstPercentage: "150", Income: "1,000"}},
		Expenses: []ExpenseItem{{Category: "Refund", Amount: "-5000"}, {Category: "Venue", Amount: "₹2,500.50"}},
	}

	// when
	next := b.Sanitize()

	// then
	assert.Equal(t, IncomeItem{Category: "Fees", ExpectedParticipants: "125", PerParticipantAmount: "100", GstPercentage: "100", Income: "1000"}, next.Income[0])
	assert.Equal(t, "5000", next.Expenses[0].Amount)
	assert.Equal(t, "2500.50", next.Expenses[1].Amount)
	assert.Equal(t, "150", b.Income[0].GstPercentage)
}
