package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"finora/internal/metrics"
	"finora/internal/models"
)

type debtRequest struct {
	LoanName        string    `json:"loanName"`
	TotalAmount     formValue `json:"totalAmount"`
	InterestRate    formValue `json:"interestRate"`
	TenureMonths    formValue `json:"tenureMonths"`
	RemainingAmount formValue `json:"remainingAmount"`
	StartDate       string    `json:"startDate"`
}

type goalRequest struct {
	Title         string    `json:"title"`
	TargetAmount  formValue `json:"targetAmount"`
	CurrentAmount formValue `json:"currentAmount"`
	Deadline      string    `json:"deadline"`
}

type amountRequest struct {
	Amount formValue `json:"amount"`
}

type debtsResponse struct {
	Debts     []metrics.DebtPlan `json:"debts"`
	TotalDebt float64            `json:"totalDebt"`
}

type goalView struct {
	models.Goal
	ProgressPercent float64 `json:"progressPercent"`
}

func newGoalView(g models.Goal) goalView {
	return goalView{Goal: g, ProgressPercent: metrics.GoalProgressPercent(g.CurrentAmount, g.TargetAmount)}
}

// optionalNumber parses an optional numeric field. Empty input yields def.
func optionalNumber(field string, v formValue, def float64) (float64, error) {
	if v.empty() {
		return def, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(string(v)), 64)
	if err != nil {
		return 0, &models.ValidationError{Field: field, Message: strconv.Quote(string(v)) + " is not a number"}
	}
	return f, nil
}

// apply overlays the form onto d. When d is a stored debt, fields left out
// of the form keep their values. A new debt starts with its full amount
// outstanding unless the form says otherwise.
func (req debtRequest) apply(d models.Debt) (models.Debt, error) {
	editing := d.ID != ""

	total := d.TotalAmount
	if !editing || !req.TotalAmount.empty() {
		v, err := models.ParseAmount("totalAmount", string(req.TotalAmount))
		if err != nil {
			return d, err
		}
		total = v
	}
	rate, err := optionalNumber("interestRate", req.InterestRate, d.InterestRate)
	if err != nil {
		return d, err
	}
	tenure := d.TenureMonths
	if !editing || !req.TenureMonths.empty() {
		tenure, err = strconv.Atoi(strings.TrimSpace(string(req.TenureMonths)))
		if err != nil {
			return d, &models.ValidationError{Field: "tenureMonths", Message: "must be a whole number of months"}
		}
	}
	def := total
	if editing {
		def = d.RemainingAmount
	}
	remaining, err := optionalNumber("remainingAmount", req.RemainingAmount, def)
	if err != nil {
		return d, err
	}
	if strings.TrimSpace(req.StartDate) != "" {
		start, err := models.ParseDate("startDate", req.StartDate)
		if err != nil {
			return d, err
		}
		d.StartDate = start.UTC()
	}

	if name := strings.TrimSpace(req.LoanName); name != "" || !editing {
		d.LoanName = name
	}
	d.TotalAmount = total
	d.InterestRate = rate
	d.TenureMonths = tenure
	d.RemainingAmount = remaining
	return d, d.Validate()
}

// apply overlays the form onto g. When g is a stored goal, fields left out
// of the form keep their values.
func (req goalRequest) apply(g models.Goal) (models.Goal, error) {
	editing := g.ID != ""

	target := g.TargetAmount
	if !editing || !req.TargetAmount.empty() {
		v, err := models.ParseAmount("targetAmount", string(req.TargetAmount))
		if err != nil {
			return g, err
		}
		target = v
	}
	current, err := optionalNumber("currentAmount", req.CurrentAmount, g.CurrentAmount)
	if err != nil {
		return g, err
	}
	if strings.TrimSpace(req.Deadline) != "" {
		deadline, err := models.ParseDate("deadline", req.Deadline)
		if err != nil {
			return g, err
		}
		deadline = deadline.UTC()
		g.Deadline = &deadline
	}
	if title := strings.TrimSpace(req.Title); title != "" || !editing {
		g.Title = title
	}
	g.TargetAmount = target
	g.CurrentAmount = current
	return g, g.Validate()
}

// ListDebts returns the user's debts as a snowball plan, smallest balance first.
func (h *Handlers) ListDebts(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	debts, err := h.db.ListDebts(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, debtsResponse{
		Debts:     metrics.Snowball(debts),
		TotalDebt: metrics.TotalDebt(debts),
	})
}

// GetDebt returns a single loan.
func (h *Handlers) GetDebt(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	d, err := h.db.GetDebt(r.Context(), user.ID, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// CreateDebt adds a loan.
func (h *Handlers) CreateDebt(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	var req debtRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	d, err := req.apply(models.Debt{UserID: user.ID, StartDate: h.timestamp()})
	if err != nil {
		writeError(w, r, err)
		return
	}
	created, err := h.db.CreateDebt(r.Context(), d)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// UpdateDebt edits a loan. Fields left out of the form keep their values.
func (h *Handlers) UpdateDebt(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	var req debtRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	d, err := h.db.UpdateDebt(r.Context(), user.ID, r.PathValue("id"), req.apply)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// RecordDebtPayment lowers the outstanding balance of a loan.
func (h *Handlers) RecordDebtPayment(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	var req amountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	amount, err := models.ParseAmount("amount", string(req.Amount))
	if err != nil {
		writeError(w, r, err)
		return
	}
	d, err := h.db.RecordDebtPayment(r.Context(), user.ID, r.PathValue("id"), amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// DeleteDebt removes a loan.
func (h *Handlers) DeleteDebt(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	if err := h.db.DeleteDebt(r.Context(), user.ID, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListGoals returns the user's savings goals with their progress.
func (h *Handlers) ListGoals(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	goals, err := h.db.ListGoals(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]goalView, 0, len(goals))
	for _, g := range goals {
		out = append(out, newGoalView(g))
	}
	writeJSON(w, http.StatusOK, out)
}

// GetGoal returns a single savings goal with its progress.
func (h *Handlers) GetGoal(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	g, err := h.db.GetGoal(r.Context(), user.ID, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newGoalView(*g))
}

// CreateGoal adds a savings goal.
func (h *Handlers) CreateGoal(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	var req goalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	g, err := req.apply(models.Goal{UserID: user.ID})
	if err != nil {
		writeError(w, r, err)
		return
	}
	created, err := h.db.CreateGoal(r.Context(), g)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newGoalView(*created))
}

// UpdateGoal edits a savings goal. Fields left out of the form keep their values.
func (h *Handlers) UpdateGoal(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	var req goalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	g, err := h.db.UpdateGoal(r.Context(), user.ID, r.PathValue("id"), req.apply)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newGoalView(*g))
}

// ContributeToGoal adds money to a goal.
func (h *Handlers) ContributeToGoal(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	var req amountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	amount, err := models.ParseAmount("amount", string(req.Amount))
	if err != nil {
		writeError(w, r, err)
		return
	}
	g, err := h.db.ContributeToGoal(r.Context(), user.ID, r.PathValue("id"), amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newGoalView(*g))
}

// DeleteGoal removes a savings goal.
func (h *Handlers) DeleteGoal(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r)
	if err := h.db.DeleteGoal(r.Context(), user.ID, r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
