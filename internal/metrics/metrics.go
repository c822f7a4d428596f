// Package metrics derives presentation values from repository results.
//
// Every function here is pure and total: empty inputs and zero denominators
// produce zero (or a clamped percentage) instead of NaN or Inf.
package metrics

import (
	"cmp"
	"math"
	"slices"
	"time"

	"finora/internal/models"

	"github.com/shopspring/decimal"
)

func dec(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

// RoundCents rounds v to two decimal places.
func RoundCents(v float64) float64 {
	return dec(v).Round(2).InexactFloat64()
}

// TotalByType sums the amounts of transactions of type t.
func TotalByType(txs []models.Transaction, t models.TransactionType) float64 {
	total := decimal.Zero
	for _, tx := range txs {
		if tx.Type == t {
			total = total.Add(dec(tx.Amount))
		}
	}
	return total.InexactFloat64()
}

// NetSavings is total income minus total expense.
func NetSavings(txs []models.Transaction) float64 {
	income := dec(TotalByType(txs, models.Income))
	return income.Sub(dec(TotalByType(txs, models.Expense))).InexactFloat64()
}

// CurrentMonthExpenseTotal sums expenses whose month of year equals the
// month of ref. The year is not compared, so the same month of earlier
// years is counted too.
func CurrentMonthExpenseTotal(txs []models.Transaction, ref time.Time) float64 {
	total := decimal.Zero
	for _, tx := range txs {
		if tx.Type == models.Expense && tx.Date.In(ref.Location()).Month() == ref.Month() {
			total = total.Add(dec(tx.Amount))
		}
	}
	return total.InexactFloat64()
}

// BudgetConsumptionPercent is spent/limit as a percentage, clamped to 100.
func BudgetConsumptionPercent(spent, limit float64) float64 {
	if spent >= limit {
		return 100
	}
	if limit <= 0 || spent <= 0 {
		return 0
	}
	return spent / limit * 100
}

// BudgetRemaining is limit minus spent. A negative result means over budget.
func BudgetRemaining(limit, spent float64) float64 {
	return dec(limit).Sub(dec(spent)).InexactFloat64()
}

// DaysRemainingInMonth counts the days after ref until the end of its month.
// It is zero on the last day of the month.
func DaysRemainingInMonth(ref time.Time) int {
	last := time.Date(ref.Year(), ref.Month()+1, 0, 0, 0, 0, 0, ref.Location()).Day()
	return last - ref.Day()
}

// DailySafeSpend spreads remaining over the days left. On the last day of the
// month the whole remainder is available for that day.
func DailySafeSpend(remaining float64, daysRemaining int) float64 {
	if daysRemaining < 1 {
		daysRemaining = 1
	}
	return math.Max(0, remaining/float64(daysRemaining))
}

// AmortizedMonthlyPayment is the fixed monthly payment retiring principal at
// annualRatePercent over months.
func AmortizedMonthlyPayment(principal, annualRatePercent float64, months int) float64 {
	if months <= 0 {
		return 0
	}
	r := annualRatePercent / 12 / 100
	if r == 0 {
		return principal / float64(months)
	}
	f := math.Pow(1+r, float64(months))
	return principal * r * f / (f - 1)
}

// SnowballOrder returns debts sorted by remaining balance, smallest first.
// Debts with equal balances keep their relative order.
func SnowballOrder(debts []models.Debt) []models.Debt {
	out := slices.Clone(debts)
	slices.SortStableFunc(out, func(a, b models.Debt) int {
		return cmp.Compare(a.RemainingAmount, b.RemainingAmount)
	})
	return out
}

// TotalDebt sums the remaining balance of debts.
func TotalDebt(debts []models.Debt) float64 {
	total := decimal.Zero
	for _, d := range debts {
		total = total.Add(dec(d.RemainingAmount))
	}
	return total.InexactFloat64()
}

// NetWorth is net savings minus outstanding debt.
func NetWorth(txs []models.Transaction, debts []models.Debt) float64 {
	return dec(NetSavings(txs)).Sub(dec(TotalDebt(debts))).InexactFloat64()
}

// ExpenseBreakdownByCategory sums expense amounts per category.
func ExpenseBreakdownByCategory(txs []models.Transaction) map[string]float64 {
	sums := make(map[string]decimal.Decimal)
	for _, tx := range txs {
		if tx.Type == models.Expense {
			sums[tx.Category] = sums[tx.Category].Add(dec(tx.Amount))
		}
	}
	out := make(map[string]float64, len(sums))
	for c, v := range sums {
		out[c] = v.InexactFloat64()
	}
	return out
}

// CategoryShare is one slice of the expense breakdown.
type CategoryShare struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
	Percent  float64 `json:"percent"`
}

// CategoryShares returns the expense breakdown with each category's share of
// total spending, largest first.
func CategoryShares(txs []models.Transaction) []CategoryShare {
	breakdown := ExpenseBreakdownByCategory(txs)
	var total float64
	for _, v := range breakdown {
		total += v
	}

	shares := make([]CategoryShare, 0, len(breakdown))
	for c, v := range breakdown {
		s := CategoryShare{Category: c, Amount: v}
		if total > 0 {
			s.Percent = v / total * 100
		}
		shares = append(shares, s)
	}
	slices.SortFunc(shares, func(a, b CategoryShare) int {
		if c := cmp.Compare(b.Amount, a.Amount); c != 0 {
			return c
		}
		return cmp.Compare(a.Category, b.Category)
	})
	return shares
}

// GoalProgressPercent is current/target as a percentage, clamped to 100.
func GoalProgressPercent(current, target float64) float64 {
	if target <= 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return math.Min(math.Max(current, 0)/target*100, 100)
}

// CourseCompletionPercent is the rounded share of lessons completed.
func CourseCompletionPercent(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}
