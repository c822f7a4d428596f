package models

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ValidationError reports malformed input for a single field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// ParseAmount parses a user supplied monetary amount. It must be a finite
// number greater than zero.
func ParseAmount(field, s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, invalid(field, "%q is not a number", s)
	}
	if err := positive(field, v); err != nil {
		return 0, err
	}
	return v, nil
}

func positive(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return invalid(field, "must be a finite number")
	}
	if v <= 0 {
		return invalid(field, "must be greater than zero")
	}
	return nil
}

func nonNegative(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return invalid(field, "must be a finite number")
	}
	if v < 0 {
		return invalid(field, "must not be negative")
	}
	return nil
}

// ParseDate accepts a calendar date (2006-01-02), a form datetime
// (2006-01-02T15:04) or an RFC 3339 timestamp.
func ParseDate(field, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04", time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, invalid(field, "%q is not a date", s)
}

// Validate checks the transaction fields a caller is allowed to set.
func (t Transaction) Validate() error {
	if t.Type != Income && t.Type != Expense {
		return invalid("type", "must be %q or %q", Income, Expense)
	}
	if err := positive("amount", t.Amount); err != nil {
		return err
	}
	if !IsValidCategory(t.Type, t.Category) {
		return invalid("category", "%q is not a known %s category", t.Category, t.Type)
	}
	if t.Date.IsZero() {
		return invalid("date", "is required")
	}
	return nil
}

// Validate checks the debt fields, including 0 <= remaining <= total.
func (d Debt) Validate() error {
	if strings.TrimSpace(d.LoanName) == "" {
		return invalid("loanName", "is required")
	}
	if err := positive("totalAmount", d.TotalAmount); err != nil {
		return err
	}
	if err := nonNegative("interestRate", d.InterestRate); err != nil {
		return err
	}
	if d.TenureMonths <= 0 {
		return invalid("tenureMonths", "must be greater than zero")
	}
	if err := nonNegative("remainingAmount", d.RemainingAmount); err != nil {
		return err
	}
	if d.RemainingAmount > d.TotalAmount {
		return invalid("remainingAmount", "must not exceed the total amount")
	}
	return nil
}

// Pay returns d with amount taken off the remaining balance, floored at zero.
func (d Debt) Pay(amount float64) (Debt, error) {
	if err := positive("amount", amount); err != nil {
		return d, err
	}
	d.RemainingAmount = math.Max(0, d.RemainingAmount-amount)
	return d, nil
}

// Validate checks the goal fields.
func (g Goal) Validate() error {
	if strings.TrimSpace(g.Title) == "" {
		return invalid("title", "is required")
	}
	if err := positive("targetAmount", g.TargetAmount); err != nil {
		return err
	}
	return nonNegative("currentAmount", g.CurrentAmount)
}

// ValidateMonthlyLimit checks a budget limit.
func ValidateMonthlyLimit(limit float64) error {
	return positive("monthlyLimit", limit)
}

// Validate checks the editable profile fields.
func (p Profile) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return invalid("name", "is required")
	}
	if p.Theme != ThemeLight && p.Theme != ThemeDark {
		return invalid("theme", "must be %q or %q", ThemeLight, ThemeDark)
	}
	if len(p.Currency) != 3 || strings.ToUpper(p.Currency) != p.Currency {
		return invalid("currency", "%q is not an ISO 4217 code", p.Currency)
	}
	return nil
}

// ValidateRegistration checks the sign up form.
func ValidateRegistration(name, email, password string) error {
	if strings.TrimSpace(name) == "" {
		return invalid("name", "is required")
	}
	if !strings.Contains(email, "@") {
		return invalid("email", "%q is not an email address", email)
	}
	if strings.TrimSpace(password) == "" {
		return invalid("password", "is required")
	}
	return nil
}

// ValidatePasswordChange checks that the new password is usable and was
// typed the same way twice.
func ValidatePasswordChange(next, confirm string) error {
	if strings.TrimSpace(next) == "" {
		return invalid("newPassword", "is required")
	}
	if next != confirm {
		return invalid("confirmPassword", "passwords don't match")
	}
	return nil
}
