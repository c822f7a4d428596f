package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"finora/internal/models"
	"finora/internal/storage"

	"github.com/google/subcommands"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seed creates an account with some activity and returns the database path.
func seed(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "finctl.db")
	db, err := storage.NewDB(path)
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()

	user, err := db.Register(ctx, "Jane", "jane@example.com", "secret")
	require.NoError(t, err)

	for _, tx := range []models.Transaction{
		{Type: models.Income, Amount: 3000, Category: "Salary", Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{Type: models.Expense, Amount: 800, Category: "Housing", Date: time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)},
		{Type: models.Expense, Amount: 200, Category: "Food", Date: time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC)},
	} {
		tx.UserID = user.ID
		_, err := db.CreateTransaction(ctx, tx)
		require.NoError(t, err)
	}
	_, err = db.SetBudget(ctx, user.ID, 1000)
	require.NoError(t, err)
	for _, d := range []models.Debt{
		{LoanName: "Car", TotalAmount: 10000, RemainingAmount: 7500, InterestRate: 12, TenureMonths: 12},
		{LoanName: "Card", TotalAmount: 1200, RemainingAmount: 1200, TenureMonths: 12},
	} {
		d.UserID = user.ID
		_, err := db.CreateDebt(ctx, d)
		require.NoError(t, err)
	}
	require.NoError(t, db.SaveProgress(ctx, models.LearningProgress{
		UserID: user.ID, CompletedLessonIDs: []string{"l1", "l2"}, QuizScore: 100,
	}))
	return path
}

func TestSummary(t *testing.T) {
	path := seed(t)
	var out, errOut bytes.Buffer

	code := run([]string{"summary", "-email", "jane@example.com", "-db", path, "-date", "2024-03-21"}, &out, &errOut)
	require.Equal(t, int(subcommands.ExitSuccess), code, errOut.String())

	got := out.String()
	assert.Contains(t, got, "Jane <jane@example.com>")
	assert.Contains(t, got, "$3,000.00")
	assert.Contains(t, got, "$2,000.00", "net savings")
	assert.Contains(t, got, "$8,700.00", "debt")
	assert.Contains(t, got, "$800.00 of $1,000.00 (80%)")
	assert.Contains(t, got, "$20.00/day for 10 days")
	assert.Less(t, strings.Index(got, "Housing"), strings.Index(got, "Food"), "largest category first")
}

func TestSnowball(t *testing.T) {
	path := seed(t)
	var out, errOut bytes.Buffer

	code := run([]string{"snowball", "-email", "jane@example.com", "-db", path}, &out, &errOut)
	require.Equal(t, int(subcommands.ExitSuccess), code, errOut.String())

	got := out.String()
	assert.Less(t, strings.Index(got, "Card"), strings.Index(got, "Car "), "smallest balance first")
	assert.Contains(t, got, "$100.00")
	assert.Contains(t, got, "$888.49")
	assert.Contains(t, got, "25%")
}

func TestLessons(t *testing.T) {
	path := seed(t)
	var out, errOut bytes.Buffer

	code := run([]string{"lessons", "-email", "jane@example.com", "-db", path}, &out, &errOut)
	require.Equal(t, int(subcommands.ExitSuccess), code, errOut.String())

	got := out.String()
	assert.Contains(t, got, "[x]  The 50/30/20 Rule")
	assert.Contains(t, got, "[ ]  Debt Snowball vs. Avalanche")
	assert.Contains(t, got, "20% complete, 100 points")
}

func TestErrors(t *testing.T) {
	path := seed(t)

	tests := []struct {
		name    string
		args    []string
		want    subcommands.ExitStatus
		wantErr string
	}{
		{"missing email", []string{"summary", "-db", path}, subcommands.ExitFailure, "missing required flag: -email"},
		{"unknown account", []string{"snowball", "-email", "nobody@example.com", "-db", path}, subcommands.ExitFailure, "account nobody@example.com"},
		{"bad date", []string{"summary", "-email", "jane@example.com", "-db", path, "-date", "soon"}, subcommands.ExitFailure, "invalid date"},
		{"lessons without email", []string{"lessons", "-db", path}, subcommands.ExitFailure, "missing required flag: -email"},
		{"unknown command", []string{"forecast"}, subcommands.ExitUsageError, ""},
		{"unknown flag", []string{"summary", "-verbose"}, subcommands.ExitUsageError, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out, errOut bytes.Buffer
			assert.Equal(t, int(tt.want), run(tt.args, &out, &errOut))
			if tt.wantErr != "" {
				assert.Contains(t, errOut.String(), tt.wantErr)
				assert.Empty(t, out.String())
			}
		})
	}
}
