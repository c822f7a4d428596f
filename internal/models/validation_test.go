package models

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fieldOf(t *testing.T, err error) string {
	t.Helper()
	var ve *ValidationError
	require.True(t, errors.As(err, &ve), "expected a ValidationError, got %v", err)
	return ve.Field
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"12.50", 12.5, false},
		{" 100 ", 100, false},
		{"0.01", 0.01, false},
		{"0", 0, true},
		{"-5", 0, true},
		{"abc", 0, true},
		{"", 0, true},
		{"NaN", 0, true},
		{"Inf", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAmount("amount", tt.in)
			if tt.wantErr {
				assert.Equal(t, "amount", fieldOf(t, err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("date", "2024-03-05")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), d)

	d, err = ParseDate("date", "2024-03-05T14:30")
	require.NoError(t, err)
	assert.Equal(t, 14, d.Hour())

	d, err = ParseDate("date", "2024-03-05T14:30:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 5, 12, 30, 0, 0, time.UTC), d.UTC())

	_, err = ParseDate("deadline", "next week")
	assert.Equal(t, "deadline", fieldOf(t, err))
}

func TestTransactionValidate(t *testing.T) {
	valid := Transaction{Type: Expense, Amount: 10, Category: "Food", Date: time.Now()}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name  string
		edit  func(*Transaction)
		field string
	}{
		{"unknown type", func(tx *Transaction) { tx.Type = "transfer" }, "type"},
		{"zero amount", func(tx *Transaction) { tx.Amount = 0 }, "amount"},
		{"NaN amount", func(tx *Transaction) { tx.Amount = math.NaN() }, "amount"},
		{"income category on expense", func(tx *Transaction) { tx.Category = "Salary" }, "category"},
		{"missing date", func(tx *Transaction) { tx.Date = time.Time{} }, "date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := valid
			tt.edit(&tx)
			assert.Equal(t, tt.field, fieldOf(t, tx.Validate()))
		})
	}
}

func TestDebtValidate(t *testing.T) {
	valid := Debt{LoanName: "Car", TotalAmount: 1000, InterestRate: 5, TenureMonths: 12, RemainingAmount: 1000}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name  string
		edit  func(*Debt)
		field string
	}{
		{"blank name", func(d *Debt) { d.LoanName = "  " }, "loanName"},
		{"zero total", func(d *Debt) { d.TotalAmount = 0 }, "totalAmount"},
		{"negative rate", func(d *Debt) { d.InterestRate = -1 }, "interestRate"},
		{"zero tenure", func(d *Debt) { d.TenureMonths = 0 }, "tenureMonths"},
		{"negative remaining", func(d *Debt) { d.RemainingAmount = -1 }, "remainingAmount"},
		{"remaining above total", func(d *Debt) { d.RemainingAmount = 1000.01 }, "remainingAmount"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := valid
			tt.edit(&d)
			assert.Equal(t, tt.field, fieldOf(t, d.Validate()))
		})
	}
}

func TestDebtPay(t *testing.T) {
	d := Debt{TotalAmount: 1000, RemainingAmount: 300}

	paid, err := d.Pay(100)
	require.NoError(t, err)
	assert.Equal(t, 200.0, paid.RemainingAmount)
	assert.Equal(t, 300.0, d.RemainingAmount, "receiver is not modified")

	paid, err = d.Pay(500)
	require.NoError(t, err)
	assert.Zero(t, paid.RemainingAmount, "overpayment floors at zero")

	_, err = d.Pay(0)
	assert.Equal(t, "amount", fieldOf(t, err))
}

func TestGoalValidate(t *testing.T) {
	require.NoError(t, Goal{Title: "Trip", TargetAmount: 500}.Validate())
	require.NoError(t, Goal{Title: "Trip", TargetAmount: 500, CurrentAmount: 900}.Validate(), "overfunding is allowed")

	assert.Equal(t, "title", fieldOf(t, Goal{TargetAmount: 500}.Validate()))
	assert.Equal(t, "targetAmount", fieldOf(t, Goal{Title: "Trip"}.Validate()))
	assert.Equal(t, "currentAmount", fieldOf(t, Goal{Title: "Trip", TargetAmount: 1, CurrentAmount: -1}.Validate()))
}

func TestValidateMonthlyLimit(t *testing.T) {
	assert.NoError(t, ValidateMonthlyLimit(2000))
	assert.Equal(t, "monthlyLimit", fieldOf(t, ValidateMonthlyLimit(0)))
}

func TestProfileValidate(t *testing.T) {
	valid := Profile{Name: "Ana", Currency: "EUR", Theme: ThemeDark}
	require.NoError(t, valid.Validate())

	p := valid
	p.Name = ""
	assert.Equal(t, "name", fieldOf(t, p.Validate()))

	p = valid
	p.Theme = "blue"
	assert.Equal(t, "theme", fieldOf(t, p.Validate()))

	for _, c := range []string{"eur", "EURO", ""} {
		p = valid
		p.Currency = c
		assert.Equal(t, "currency", fieldOf(t, p.Validate()), c)
	}
}

func TestValidateRegistration(t *testing.T) {
	assert.NoError(t, ValidateRegistration("Ana", "ana@example.com", "secret"))
	assert.Equal(t, "name", fieldOf(t, ValidateRegistration(" ", "ana@example.com", "secret")))
	assert.Equal(t, "email", fieldOf(t, ValidateRegistration("Ana", "ana", "secret")))
	assert.Equal(t, "password", fieldOf(t, ValidateRegistration("Ana", "ana@example.com", "")))
}

func TestValidatePasswordChange(t *testing.T) {
	assert.NoError(t, ValidatePasswordChange("newpass", "newpass"))
	assert.Equal(t, "newPassword", fieldOf(t, ValidatePasswordChange("", "")))
	assert.Equal(t, "confirmPassword", fieldOf(t, ValidatePasswordChange("newpass", "newpasss")))
}

func TestValidationErrorMessage(t *testing.T) {
	err := &ValidationError{Field: "amount", Message: "must be greater than zero"}
	assert.Equal(t, "invalid amount: must be greater than zero", err.Error())
}
