package handlers

import (
	"errors"
	"net/http"
	"strings"

	"finora/internal/metrics"
	"finora/internal/models"
	"finora/internal/storage"
)

type transactionRequest struct {
	Type        models.TransactionType `json:"type"`
	Amount      formValue              `json:"amount"`
	Category    string                 `json:"category"`
	Description string                 `json:"description"`
	Date        string                 `json:"date"`
}

type budgetRequest struct {
	MonthlyLimit formValue `json:"monthlyLimit"`
}

type budgetResponse struct {
	Budget *models.Budget         `json:"budget"`
	Status *metrics.BudgetStatus `json:"status,omitempty"`
}

type categoriesResponse struct {
	Expense []string `json:"expense"`
	Income  []string `json:"income"`
}

// transaction builds a validated transaction for userID from the form.
// An empty date means now.
func (h *Handlers) transaction(req transactionRequest, userID string) (models.Transaction, error) {
	amount, err := models.ParseAmount("amount", string(req.Amount))
	if err != nil {
		return models.Transaction{}, err
	}
	date := h.timestamp()
	if strings.TrimSpace(req.Date) != "" {
		if date, err = models.ParseDate("date", req.Date); err != nil {
			return models.Transaction{}, err
		}
	}
	t := models.Transaction{
		UserID:      userID,
		Type:        req.Type,
		Amount:      amount,
		Category:    req.Category,
		Description: strings.TrimSpace(req.Description),
		Date:        date.UTC(),
	}
	return t, t.Validate()
}

// ListTransactions returns the user's transactions, latest first.
// ?type=income or ?type=expense narrows the list.
func (h *Handlers) ListTransactions(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	filter := models.TransactionType(r.URL.Query().Get("type"))
	if filter != "" && filter != models.Income && filter != models.Expense {
		writeError(w, r, &models.ValidationError{Field: "type", Message: "must be income or expense"})
		return
	}

	txs, err := h.db.ListTransactions(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]models.Transaction, 0, len(txs))
	for _, t := range txs {
		if filter == "" || t.Type == filter {
			out = append(out, t)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// CreateTransaction records an income or an expense.
func (h *Handlers) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	t, err := h.transaction(req, user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	created, err := h.db.CreateTransaction(r.Context(), t)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// UpdateTransaction handles the update of an existing transaction.
func (h *Handlers) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	t, err := h.transaction(req, user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	t.ID = r.PathValue("id")
	if err := h.db.UpdateTransaction(r.Context(), t); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// DeleteTransaction removes a transaction.
func (h *Handlers) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	if err := h.db.DeleteTransaction(r.Context(), user.ID, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Categories lists the categories for each transaction type.
func (h *Handlers) Categories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, categoriesResponse{
		Expense: models.CategoriesFor(models.Expense),
		Income:  models.CategoriesFor(models.Income),
	})
}

// GetBudget returns the monthly limit and how much of it was used. A user
// without a budget gets a null budget.
func (h *Handlers) GetBudget(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	budget, err := h.db.GetBudget(r.Context(), user.ID)
	if errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusOK, budgetResponse{})
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.writeBudget(w, r, budget)
}

// SetBudget sets the monthly limit.
func (h *Handlers) SetBudget(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	var req budgetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	limit, err := models.ParseAmount("monthlyLimit", string(req.MonthlyLimit))
	if err != nil {
		writeError(w, r, err)
		return
	}

	budget, err := h.db.SetBudget(r.Context(), user.ID, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.writeBudget(w, r, budget)
}

func (h *Handlers) writeBudget(w http.ResponseWriter, r *http.Request, budget *models.Budget) {
	txs, err := h.db.ListTransactions(r.Context(), budget.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	status := metrics.Budget(budget.MonthlyLimit, txs, h.now())
	writeJSON(w, http.StatusOK, budgetResponse{Budget: budget, Status: &status})
}
