package metrics

import (
	"strings"
	"time"

	"finora/internal/models"

	"github.com/Rhymond/go-money"
)

// BudgetStatus describes how much of a monthly limit has been used.
type BudgetStatus struct {
	Limit          float64 `json:"limit"`
	Spent          float64 `json:"spent"`
	Remaining      float64 `json:"remaining"`
	Percent        float64 `json:"percent"`
	DaysRemaining  int     `json:"daysRemaining"`
	DailySafeSpend float64 `json:"dailySafeSpend"`
	OverBudget     bool    `json:"overBudget"`
}

// Budget computes the status of limit against this month's expenses.
func Budget(limit float64, txs []models.Transaction, ref time.Time) BudgetStatus {
	spent := CurrentMonthExpenseTotal(txs, ref)
	remaining := BudgetRemaining(limit, spent)
	days := DaysRemainingInMonth(ref)
	return BudgetStatus{
		Limit:          limit,
		Spent:          spent,
		Remaining:      remaining,
		Percent:        BudgetConsumptionPercent(spent, limit),
		DaysRemaining:  days,
		DailySafeSpend: DailySafeSpend(remaining, days),
		OverBudget:     remaining < 0,
	}
}

// DebtPlan is a debt annotated with its monthly payment, in snowball order.
type DebtPlan struct {
	models.Debt
	MonthlyPayment float64 `json:"monthlyPayment"`
	PaidPercent    float64 `json:"paidPercent"`
}

// Snowball returns the repayment plan for debts, smallest balance first.
func Snowball(debts []models.Debt) []DebtPlan {
	ordered := SnowballOrder(debts)
	plan := make([]DebtPlan, 0, len(ordered))
	for _, d := range ordered {
		paid := 0.0
		if d.TotalAmount > 0 {
			paid = (d.TotalAmount - d.RemainingAmount) / d.TotalAmount * 100
		}
		plan = append(plan, DebtPlan{
			Debt:           d,
			MonthlyPayment: RoundCents(AmortizedMonthlyPayment(d.TotalAmount, d.InterestRate, d.TenureMonths)),
			PaidPercent:    paid,
		})
	}
	return plan
}

// Summary is the dashboard view of a user's finances.
type Summary struct {
	TotalIncome  float64         `json:"totalIncome"`
	TotalExpense float64         `json:"totalExpense"`
	NetSavings   float64         `json:"netSavings"`
	TotalDebt    float64         `json:"totalDebt"`
	NetWorth     float64         `json:"netWorth"`
	Budget       *BudgetStatus   `json:"budget,omitempty"`
	Breakdown    []CategoryShare `json:"breakdown"`
}

// Summarize builds the dashboard summary. budget may be nil.
func Summarize(txs []models.Transaction, budget *models.Budget, debts []models.Debt, ref time.Time) Summary {
	s := Summary{
		TotalIncome:  TotalByType(txs, models.Income),
		TotalExpense: TotalByType(txs, models.Expense),
		NetSavings:   NetSavings(txs),
		TotalDebt:    TotalDebt(debts),
		NetWorth:     NetWorth(txs, debts),
		Breakdown:    CategoryShares(txs),
	}
	if budget != nil {
		status := Budget(budget.MonthlyLimit, txs, ref)
		s.Budget = &status
	}
	return s
}

// FormatMoney renders amount in currency, e.g. "$1,234.50". Unknown
// currency codes fall back to the default currency.
func FormatMoney(amount float64, currency string) string {
	code := strings.ToUpper(currency)
	if money.GetCurrency(code) == nil {
		code = models.DefaultCurrency
	}
	return money.NewFromFloat(amount, code).Display()
}
