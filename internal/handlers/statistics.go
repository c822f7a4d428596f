package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"finora/internal/metrics"
	"finora/internal/models"
	"finora/internal/storage"
)

const recentTransactions = 5

// DashboardResponse is the data behind the dashboard view.
type DashboardResponse struct {
	metrics.Summary
	Recent   []models.Transaction `json:"recent"`
	Goals    int                  `json:"goals"`
	Learning progressResponse     `json:"learning"`
	// Display holds the headline amounts formatted in the user's currency.
	Display map[string]string `json:"display"`
}

// StatsResponse is the spending of one calendar month.
type StatsResponse struct {
	Year           int                     `json:"year"`
	Month          int                     `json:"month"`
	MonthName      string                  `json:"monthName"`
	Total          float64                 `json:"total"`
	Categories     []metrics.CategoryShare `json:"categories"`
	Transactions   []models.Transaction    `json:"transactions"`
	PrevYear       int                     `json:"prevYear"`
	PrevMonth      int                     `json:"prevMonth"`
	NextYear       int                     `json:"nextYear"`
	NextMonth      int                     `json:"nextMonth"`
	IsCurrentMonth bool                    `json:"isCurrentMonth"`
}

// Dashboard returns the overview of the user's finances.
func (h *Handlers) Dashboard(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	ctx := r.Context()

	txs, err := h.db.ListTransactions(ctx, user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	budget, err := h.db.GetBudget(ctx, user.ID)
	if errors.Is(err, storage.ErrNotFound) {
		budget, err = nil, nil
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	debts, err := h.db.ListDebts(ctx, user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	goals, err := h.db.ListGoals(ctx, user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	progress, err := h.db.GetProgress(ctx, user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	summary := metrics.Summarize(txs, budget, debts, h.now())
	display := map[string]string{
		"totalIncome":  metrics.FormatMoney(summary.TotalIncome, user.Currency),
		"totalExpense": metrics.FormatMoney(summary.TotalExpense, user.Currency),
		"netSavings":   metrics.FormatMoney(summary.NetSavings, user.Currency),
		"totalDebt":    metrics.FormatMoney(summary.TotalDebt, user.Currency),
		"netWorth":     metrics.FormatMoney(summary.NetWorth, user.Currency),
	}
	if summary.Budget != nil {
		display["budgetRemaining"] = metrics.FormatMoney(summary.Budget.Remaining, user.Currency)
		display["dailySafeSpend"] = metrics.FormatMoney(summary.Budget.DailySafeSpend, user.Currency)
	}

	writeJSON(w, http.StatusOK, DashboardResponse{
		Summary:  summary,
		Recent:   txs[:min(len(txs), recentTransactions)],
		Goals:    len(goals),
		Learning: h.progressResponse(progress),
		Display:  display,
	})
}

// Statistics returns the expense breakdown of one month.
func (h *Handlers) Statistics(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)

	// Get year and month from query params, default to current month
	yearStr := r.URL.Query().Get("year")
	monthStr := r.URL.Query().Get("month")

	now := h.now()
	year := now.Year()
	month := int(now.Month())

	if yearStr != "" {
		if y, err := strconv.Atoi(yearStr); err == nil {
			year = y
		}
	}
	if monthStr != "" {
		if m, err := strconv.Atoi(monthStr); err == nil && m >= 1 && m <= 12 {
			month = m
		}
	}

	txs, err := h.db.ListTransactions(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	expenses := make([]models.Transaction, 0)
	for _, t := range txs {
		d := t.Date.In(now.Location())
		if t.Type == models.Expense && d.Year() == year && int(d.Month()) == month {
			expenses = append(expenses, t)
		}
	}

	// Calculate previous and next month
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	prevDate := first.AddDate(0, -1, 0)
	nextDate := first.AddDate(0, 1, 0)

	writeJSON(w, http.StatusOK, StatsResponse{
		Year:           year,
		Month:          month,
		MonthName:      time.Month(month).String(),
		Total:          metrics.TotalByType(expenses, models.Expense),
		Categories:     metrics.CategoryShares(expenses),
		Transactions:   expenses,
		PrevYear:       prevDate.Year(),
		PrevMonth:      int(prevDate.Month()),
		NextYear:       nextDate.Year(),
		NextMonth:      int(nextDate.Month()),
		IsCurrentMonth: year == now.Year() && month == int(now.Month()),
	})
}
