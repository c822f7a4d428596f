package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"

	"finora/internal/models"

	"github.com/google/uuid"
)

// ListTransactions returns the transactions of a user, latest first.
func (db *DB) ListTransactions(ctx context.Context, userID string) ([]models.Transaction, error) {
	txs, err := transactionSet.listByUser(ctx, db.conn, userID)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(txs, func(a, b models.Transaction) int {
		return b.Date.Compare(a.Date)
	})
	return txs, nil
}

// CreateTransaction stores t under a new id and returns the stored record.
func (db *DB) CreateTransaction(ctx context.Context, t models.Transaction) (*models.Transaction, error) {
	t.ID = uuid.NewString()
	if err := db.update(ctx, func(tx *sql.Tx) error { return transactionSet.insert(ctx, tx, t) }); err != nil {
		return nil, err
	}
	return &t, nil
}

// UpdateTransaction replaces the stored transaction with the same id.
func (db *DB) UpdateTransaction(ctx context.Context, t models.Transaction) error {
	return db.update(ctx, func(tx *sql.Tx) error { return transactionSet.replace(ctx, tx, t) })
}

// DeleteTransaction removes a transaction owned by userID.
func (db *DB) DeleteTransaction(ctx context.Context, userID, id string) error {
	return db.update(ctx, func(tx *sql.Tx) error { return transactionSet.delete(ctx, tx, userID, id) })
}

// GetBudget returns the budget of a user, or ErrNotFound when none was set.
func (db *DB) GetBudget(ctx context.Context, userID string) (*models.Budget, error) {
	budgets, err := budgetSet.listByUser(ctx, db.conn, userID)
	if err != nil {
		return nil, err
	}
	if len(budgets) == 0 {
		return nil, fmt.Errorf("budget for %s: %w", userID, ErrNotFound)
	}
	return &budgets[0], nil
}

// SetBudget creates or replaces the budget of a user, keeping its id.
func (db *DB) SetBudget(ctx context.Context, userID string, monthlyLimit float64) (*models.Budget, error) {
	if err := models.ValidateMonthlyLimit(monthlyLimit); err != nil {
		return nil, err
	}
	b := models.Budget{
		UserID:       userID,
		MonthlyLimit: monthlyLimit,
		UpdatedAt:    db.timestamp(),
	}
	err := db.update(ctx, func(tx *sql.Tx) error {
		return mutate(ctx, tx, budgetsCollection, func(budgets []models.Budget) ([]models.Budget, error) {
			i := slices.IndexFunc(budgets, func(x models.Budget) bool { return x.UserID == userID })
			if i < 0 {
				b.ID = uuid.NewString()
				return append(budgets, b), nil
			}
			b.ID = budgets[i].ID
			budgets[i] = b
			return budgets, nil
		})
	})
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// ListDebts returns the debts of a user in the order they were added.
func (db *DB) ListDebts(ctx context.Context, userID string) ([]models.Debt, error) {
	return debtSet.listByUser(ctx, db.conn, userID)
}

// GetDebt returns a single debt owned by userID.
func (db *DB) GetDebt(ctx context.Context, userID, id string) (*models.Debt, error) {
	d, err := debtSet.find(ctx, db.conn, userID, id)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// CreateDebt stores d under a new id and returns the stored record.
func (db *DB) CreateDebt(ctx context.Context, d models.Debt) (*models.Debt, error) {
	d.ID = uuid.NewString()
	if err := db.update(ctx, func(tx *sql.Tx) error { return debtSet.insert(ctx, tx, d) }); err != nil {
		return nil, err
	}
	return &d, nil
}

// UpdateDebt applies fn to the stored debt and saves the result in the same
// transaction, so fn always sees the latest balance. The id and owner of the
// debt cannot be changed by fn.
func (db *DB) UpdateDebt(ctx context.Context, userID, id string, fn func(models.Debt) (models.Debt, error)) (*models.Debt, error) {
	var out models.Debt
	err := db.update(ctx, func(tx *sql.Tx) error {
		var err error
		out, err = debtSet.modify(ctx, tx, userID, id, func(d models.Debt) (models.Debt, error) {
			next, err := fn(d)
			next.ID, next.UserID = d.ID, d.UserID
			return next, err
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// RecordDebtPayment lowers the remaining balance of a debt by amount,
// never below zero.
func (db *DB) RecordDebtPayment(ctx context.Context, userID, id string, amount float64) (*models.Debt, error) {
	var out models.Debt
	err := db.update(ctx, func(tx *sql.Tx) error {
		var err error
		out, err = debtSet.modify(ctx, tx, userID, id, func(d models.Debt) (models.Debt, error) {
			return d.Pay(amount)
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteDebt removes a debt owned by userID.
func (db *DB) DeleteDebt(ctx context.Context, userID, id string) error {
	return db.update(ctx, func(tx *sql.Tx) error { return debtSet.delete(ctx, tx, userID, id) })
}

// ListGoals returns the goals of a user in the order they were added.
func (db *DB) ListGoals(ctx context.Context, userID string) ([]models.Goal, error) {
	return goalSet.listByUser(ctx, db.conn, userID)
}

// GetGoal returns a single goal owned by userID.
func (db *DB) GetGoal(ctx context.Context, userID, id string) (*models.Goal, error) {
	g, err := goalSet.find(ctx, db.conn, userID, id)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// CreateGoal stores g under a new id and returns the stored record.
func (db *DB) CreateGoal(ctx context.Context, g models.Goal) (*models.Goal, error) {
	g.ID = uuid.NewString()
	if err := db.update(ctx, func(tx *sql.Tx) error { return goalSet.insert(ctx, tx, g) }); err != nil {
		return nil, err
	}
	return &g, nil
}

// UpdateGoal applies fn to the stored goal and saves the result in the same
// transaction. The id and owner of the goal cannot be changed by fn.
func (db *DB) UpdateGoal(ctx context.Context, userID, id string, fn func(models.Goal) (models.Goal, error)) (*models.Goal, error) {
	var out models.Goal
	err := db.update(ctx, func(tx *sql.Tx) error {
		var err error
		out, err = goalSet.modify(ctx, tx, userID, id, func(g models.Goal) (models.Goal, error) {
			next, err := fn(g)
			next.ID, next.UserID = g.ID, g.UserID
			return next, err
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ContributeToGoal adds amount to the saved total of a goal. The total may
// go past the target.
func (db *DB) ContributeToGoal(ctx context.Context, userID, id string, amount float64) (*models.Goal, error) {
	if amount <= 0 {
		return nil, &models.ValidationError{Field: "amount", Message: "must be greater than zero"}
	}
	var out models.Goal
	err := db.update(ctx, func(tx *sql.Tx) error {
		var err error
		out, err = goalSet.modify(ctx, tx, userID, id, func(g models.Goal) (models.Goal, error) {
			g.CurrentAmount += amount
			return g, nil
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteGoal removes a goal owned by userID.
func (db *DB) DeleteGoal(ctx context.Context, userID, id string) error {
	return db.update(ctx, func(tx *sql.Tx) error { return goalSet.delete(ctx, tx, userID, id) })
}

// GetProgress returns the learning progress of a user. A user without a
// stored record gets an empty one, which is not persisted.
func (db *DB) GetProgress(ctx context.Context, userID string) (models.LearningProgress, error) {
	p, err := progressSet.find(ctx, db.conn, userID, userID)
	if errors.Is(err, ErrNotFound) {
		return emptyProgress(userID), nil
	}
	return p, err
}

func emptyProgress(userID string) models.LearningProgress {
	return models.LearningProgress{UserID: userID, CompletedLessonIDs: []string{}}
}

// errUnchanged aborts an update that has nothing to write.
var errUnchanged = errors.New("unchanged")

// UpdateProgress applies fn to the learning progress of userID and saves the
// result in the same transaction, so concurrent updates never drop a
// completed lesson. Lesson ids are deduplicated and the quiz score may not go
// down. When fn changes nothing, nothing is written.
func (db *DB) UpdateProgress(ctx context.Context, userID string, fn func(models.LearningProgress) (models.LearningProgress, error)) (models.LearningProgress, error) {
	var out models.LearningProgress
	err := db.update(ctx, func(tx *sql.Tx) error {
		return mutate(ctx, tx, progressCollection, func(all []models.LearningProgress) ([]models.LearningProgress, error) {
			i := slices.IndexFunc(all, func(x models.LearningProgress) bool { return x.UserID == userID })
			current := emptyProgress(userID)
			if i >= 0 {
				current = all[i]
			}

			next, err := fn(current)
			if err != nil {
				return nil, err
			}
			next.UserID = userID
			next.CompletedLessonIDs = dedupe(next.CompletedLessonIDs)
			if next.QuizScore < current.QuizScore {
				return nil, &models.ValidationError{
					Field:   "quizScore",
					Message: fmt.Sprintf("cannot decrease from %d to %d", current.QuizScore, next.QuizScore),
				}
			}
			out = next
			if next.QuizScore == current.QuizScore && slices.Equal(next.CompletedLessonIDs, current.CompletedLessonIDs) {
				return nil, errUnchanged
			}

			if i < 0 {
				return append(all, next), nil
			}
			all[i] = next
			return all, nil
		})
	})
	if errors.Is(err, errUnchanged) {
		err = nil
	}
	if err != nil {
		return models.LearningProgress{}, err
	}
	return out, nil
}

// SaveProgress creates or replaces the learning progress of p.UserID.
func (db *DB) SaveProgress(ctx context.Context, p models.LearningProgress) error {
	_, err := db.UpdateProgress(ctx, p.UserID, func(models.LearningProgress) (models.LearningProgress, error) {
		return p, nil
	})
	return err
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}
