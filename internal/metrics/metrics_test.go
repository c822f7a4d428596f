package metrics

import (
	"testing"
	"time"

	"finora/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tx(t models.TransactionType, amount float64, category string, date time.Time) models.Transaction {
	return models.Transaction{Type: t, Amount: amount, Category: category, Date: date}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func TestTotalByType(t *testing.T) {
	txs := []models.Transaction{
		tx(models.Income, 1000, "Salary", day(2024, 3, 1)),
		tx(models.Expense, 0.1, "Food", day(2024, 3, 2)),
		tx(models.Expense, 0.2, "Food", day(2024, 3, 3)),
		tx(models.Income, 250.75, "Freelance", day(2024, 3, 4)),
		tx(models.Expense, 99.99, "Utilities", day(2024, 3, 5)),
	}

	for _, typ := range []models.TransactionType{models.Income, models.Expense} {
		var want float64
		for _, x := range txs {
			if x.Type == typ {
				want += x.Amount
			}
		}
		got := TotalByType(txs, typ)
		assert.GreaterOrEqual(t, got, 0.0)
		assert.InDelta(t, want, got, 1e-9, "total for %s", typ)
	}

	assert.Equal(t, 0.3, TotalByType(txs[1:3], models.Expense), "decimal sums avoid float drift")
	assert.Zero(t, TotalByType(nil, models.Income))
}

func TestNetSavingsAndWorth(t *testing.T) {
	txs := []models.Transaction{
		tx(models.Income, 3000, "Salary", day(2024, 3, 1)),
		tx(models.Expense, 1200, "Housing", day(2024, 3, 2)),
	}
	debts := []models.Debt{{RemainingAmount: 500}, {RemainingAmount: 2000}}

	assert.Equal(t, 1800.0, NetSavings(txs))
	assert.Equal(t, 2500.0, TotalDebt(debts))
	assert.Equal(t, -700.0, NetWorth(txs, debts))
}

func TestCurrentMonthExpenseTotal(t *testing.T) {
	ref := day(2024, 3, 15)
	txs := []models.Transaction{
		tx(models.Expense, 100, "Food", day(2024, 3, 1)),
		tx(models.Expense, 50, "Food", day(2024, 2, 28)),
		tx(models.Income, 999, "Salary", day(2024, 3, 1)),
		// Same month of a previous year is counted as well.
		tx(models.Expense, 25, "Food", day(2023, 3, 10)),
	}

	assert.Equal(t, 125.0, CurrentMonthExpenseTotal(txs, ref))
}

func TestBudgetConsumptionPercent(t *testing.T) {
	tests := []struct {
		name         string
		spent, limit float64
		want         float64
	}{
		{"nothing spent", 0, 1000, 0},
		{"quarter", 250, 1000, 25},
		{"exactly at limit", 1000, 1000, 100},
		{"over limit", 1500, 1000, 100},
		{"zero limit", 10, 0, 100},
		{"zero limit nothing spent", 0, 0, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BudgetConsumptionPercent(tt.spent, tt.limit))
		})
	}
}

func TestBudgetConsumptionPercentIsMonotonic(t *testing.T) {
	const limit = 800.0
	prev := -1.0
	for spent := 0.0; spent <= 1200; spent += 7.5 {
		p := BudgetConsumptionPercent(spent, limit)
		assert.GreaterOrEqual(t, p, prev, "percent went down at spent=%v", spent)
		assert.LessOrEqual(t, p, 100.0)
		if spent >= limit {
			assert.Equal(t, 100.0, p)
		}
		prev = p
	}
}

func TestBudgetRemainingAndDailySafeSpend(t *testing.T) {
	assert.Equal(t, 400.0, BudgetRemaining(1000, 600))
	assert.Equal(t, -200.0, BudgetRemaining(1000, 1200), "over budget goes negative")

	assert.Equal(t, 20.0, DailySafeSpend(400, 20))
	assert.Zero(t, DailySafeSpend(-200, 10))
	assert.Equal(t, 400.0, DailySafeSpend(400, 0), "last day of month gets the whole remainder")
}

func TestDaysRemainingInMonth(t *testing.T) {
	assert.Equal(t, 0, DaysRemainingInMonth(day(2024, 1, 31)))
	assert.Equal(t, 19, DaysRemainingInMonth(day(2024, 2, 10)), "leap year february")
	assert.Equal(t, 18, DaysRemainingInMonth(day(2023, 2, 10)))
	assert.Equal(t, 29, DaysRemainingInMonth(day(2024, 4, 1)))
}

func TestAmortizedMonthlyPayment(t *testing.T) {
	assert.Equal(t, 100.0, AmortizedMonthlyPayment(1200, 0, 12), "zero interest is principal/months")
	assert.InDelta(t, 1000.0/3, AmortizedMonthlyPayment(1000, 0, 3), 1e-9)
	assert.InDelta(t, 888.49, AmortizedMonthlyPayment(10000, 12, 12), 0.01)
	assert.InDelta(t, 1073.64, AmortizedMonthlyPayment(200000, 5, 360), 0.01)
	assert.Zero(t, AmortizedMonthlyPayment(1000, 5, 0), "no tenure means no payment")
}

func TestSnowballOrderIsStable(t *testing.T) {
	debts := []models.Debt{
		{ID: "a", RemainingAmount: 500},
		{ID: "b", RemainingAmount: 200},
		{ID: "c", RemainingAmount: 200},
		{ID: "d", RemainingAmount: 800},
	}

	got := SnowballOrder(debts)

	ids := make([]string, len(got))
	for i, d := range got {
		ids[i] = d.ID
	}
	assert.Equal(t, []string{"b", "c", "a", "d"}, ids)
	assert.Equal(t, "a", debts[0].ID, "input must not be reordered")
}

func TestSnowballPlan(t *testing.T) {
	plan := Snowball([]models.Debt{
		{ID: "car", TotalAmount: 10000, RemainingAmount: 7500, InterestRate: 12, TenureMonths: 12},
		{ID: "card", TotalAmount: 1200, RemainingAmount: 1200, InterestRate: 0, TenureMonths: 12},
	})
	require.Len(t, plan, 2)

	assert.Equal(t, "card", plan[0].ID)
	assert.Equal(t, 100.0, plan[0].MonthlyPayment)
	assert.Zero(t, plan[0].PaidPercent)

	assert.Equal(t, 888.49, plan[1].MonthlyPayment)
	assert.Equal(t, 25.0, plan[1].PaidPercent)
}

func TestExpenseBreakdown(t *testing.T) {
	txs := []models.Transaction{
		tx(models.Expense, 30, "Food", day(2024, 3, 1)),
		tx(models.Expense, 70, "Housing", day(2024, 3, 1)),
		tx(models.Expense, 20, "Food", day(2024, 3, 2)),
		tx(models.Income, 500, "Salary", day(2024, 3, 2)),
	}

	assert.Equal(t, map[string]float64{"Food": 50, "Housing": 70}, ExpenseBreakdownByCategory(txs))

	shares := CategoryShares(txs)
	require.Len(t, shares, 2)
	assert.Equal(t, "Housing", shares[0].Category)
	assert.InDelta(t, 58.33, shares[0].Percent, 0.01)
	assert.Equal(t, "Food", shares[1].Category)

	assert.Empty(t, CategoryShares(nil))
}

func TestGoalProgressPercent(t *testing.T) {
	assert.Equal(t, 50.0, GoalProgressPercent(500, 1000))
	assert.Equal(t, 100.0, GoalProgressPercent(1500, 1000), "overflow is clamped for display")
	assert.Zero(t, GoalProgressPercent(0, 0))
	assert.Equal(t, 100.0, GoalProgressPercent(10, 0))
}

func TestCourseCompletionPercent(t *testing.T) {
	assert.Equal(t, 30, CourseCompletionPercent(3, 10))
	assert.Equal(t, 33, CourseCompletionPercent(1, 3))
	assert.Zero(t, CourseCompletionPercent(1, 0))
}

func TestSummarize(t *testing.T) {
	ref := day(2024, 3, 21)
	txs := []models.Transaction{
		tx(models.Income, 3000, "Salary", day(2024, 3, 1)),
		tx(models.Expense, 800, "Housing", day(2024, 3, 2)),
		tx(models.Expense, 200, "Food", day(2024, 2, 2)),
	}

	s := Summarize(txs, &models.Budget{MonthlyLimit: 1000}, []models.Debt{{RemainingAmount: 500}}, ref)

	assert.Equal(t, 3000.0, s.TotalIncome)
	assert.Equal(t, 1000.0, s.TotalExpense)
	assert.Equal(t, 2000.0, s.NetSavings)
	assert.Equal(t, 1500.0, s.NetWorth)
	require.NotNil(t, s.Budget)
	assert.Equal(t, 800.0, s.Budget.Spent)
	assert.Equal(t, 200.0, s.Budget.Remaining)
	assert.Equal(t, 80.0, s.Budget.Percent)
	assert.Equal(t, 10, s.Budget.DaysRemaining)
	assert.Equal(t, 20.0, s.Budget.DailySafeSpend)
	assert.False(t, s.Budget.OverBudget)

	assert.Nil(t, Summarize(txs, nil, nil, ref).Budget)
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "$1,234.50", FormatMoney(1234.5, "USD"))
	assert.Equal(t, FormatMoney(5, "USD"), FormatMoney(5, "ZZZ"), "unknown currency falls back to USD")
}
