package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"finora/internal/models"
)

// Collection names, one per entity type.
const (
	usersCollection        = "users"
	transactionsCollection = "transactions"
	budgetsCollection      = "budgets"
	debtsCollection        = "debts"
	goalsCollection        = "goals"
	progressCollection     = "progress"
)

var collectionNames = []string{
	usersCollection,
	transactionsCollection,
	budgetsCollection,
	debtsCollection,
	goalsCollection,
	progressCollection,
}

// readCollection decodes the named collection in stored order. The returned
// version must be handed back to writeCollection.
func readCollection[T any](ctx context.Context, q querier, name string) ([]T, int64, error) {
	var data string
	var version int64
	err := q.QueryRowContext(ctx, "SELECT data, version FROM collections WHERE name = ?", name).Scan(&data, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, fmt.Errorf("unknown collection %q", name)
	}
	if err != nil {
		return nil, 0, err
	}

	var records []T
	if err := json.Unmarshal([]byte(data), &records); err != nil {
		return nil, 0, fmt.Errorf("%w: collection %q: %w", ErrStoreCorruption, name, err)
	}
	return records, version, nil
}

// writeCollection replaces the whole collection. It fails with ErrConflict
// if the collection version moved since it was read.
func writeCollection[T any](ctx context.Context, q querier, name string, records []T, version int64) error {
	if records == nil {
		records = []T{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return err
	}

	res, err := q.ExecContext(ctx,
		"UPDATE collections SET data = ?, version = version + 1, updated_at = CURRENT_TIMESTAMP WHERE name = ? AND version = ?",
		string(data), name, version,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: collection %q changed since it was read", ErrConflict, name)
	}
	return nil
}

// mutate reads a collection inside tx, applies fn and writes the result back.
func mutate[T any](ctx context.Context, tx *sql.Tx, name string, fn func([]T) ([]T, error)) error {
	records, version, err := readCollection[T](ctx, tx, name)
	if err != nil {
		return err
	}
	records, err = fn(records)
	if err != nil {
		return err
	}
	return writeCollection(ctx, tx, name, records, version)
}

// ownedSet describes a collection of records owned by a user and keyed by id.
type ownedSet[T any] struct {
	name  string
	id    func(T) string
	owner func(T) string
}

var (
	transactionSet = ownedSet[models.Transaction]{
		name:  transactionsCollection,
		id:    func(t models.Transaction) string { return t.ID },
		owner: func(t models.Transaction) string { return t.UserID },
	}
	budgetSet = ownedSet[models.Budget]{
		name:  budgetsCollection,
		id:    func(b models.Budget) string { return b.ID },
		owner: func(b models.Budget) string { return b.UserID },
	}
	debtSet = ownedSet[models.Debt]{
		name:  debtsCollection,
		id:    func(d models.Debt) string { return d.ID },
		owner: func(d models.Debt) string { return d.UserID },
	}
	goalSet = ownedSet[models.Goal]{
		name:  goalsCollection,
		id:    func(g models.Goal) string { return g.ID },
		owner: func(g models.Goal) string { return g.UserID },
	}
	progressSet = ownedSet[models.LearningProgress]{
		name:  progressCollection,
		id:    func(p models.LearningProgress) string { return p.UserID },
		owner: func(p models.LearningProgress) string { return p.UserID },
	}
)

func (s ownedSet[T]) listByUser(ctx context.Context, q querier, userID string) ([]T, error) {
	records, _, err := readCollection[T](ctx, q, s.name)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0)
	for _, r := range records {
		if s.owner(r) == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

// find returns the record with the given id owned by userID.
func (s ownedSet[T]) find(ctx context.Context, q querier, userID, id string) (T, error) {
	var zero T
	records, _, err := readCollection[T](ctx, q, s.name)
	if err != nil {
		return zero, err
	}
	i := s.index(records, userID, id)
	if i < 0 {
		return zero, fmt.Errorf("%s %s: %w", s.name, id, ErrNotFound)
	}
	return records[i], nil
}

// index returns the position of id in records, or -1 when it is missing or
// owned by someone else.
func (s ownedSet[T]) index(records []T, userID, id string) int {
	i := slices.IndexFunc(records, func(r T) bool { return s.id(r) == id })
	if i < 0 || s.owner(records[i]) != userID {
		return -1
	}
	return i
}

func (s ownedSet[T]) insert(ctx context.Context, tx *sql.Tx, rec T) error {
	return mutate(ctx, tx, s.name, func(records []T) ([]T, error) {
		return append(records, rec), nil
	})
}

// replace swaps the stored record having rec's id, as long as the stored
// record belongs to the same user.
func (s ownedSet[T]) replace(ctx context.Context, tx *sql.Tx, rec T) error {
	return mutate(ctx, tx, s.name, func(records []T) ([]T, error) {
		i := s.index(records, s.owner(rec), s.id(rec))
		if i < 0 {
			return nil, fmt.Errorf("%s %s: %w", s.name, s.id(rec), ErrNotFound)
		}
		records[i] = rec
		return records, nil
	})
}

// modify applies fn to the stored record and persists the result.
func (s ownedSet[T]) modify(ctx context.Context, tx *sql.Tx, userID, id string, fn func(T) (T, error)) (T, error) {
	var out T
	err := mutate(ctx, tx, s.name, func(records []T) ([]T, error) {
		i := s.index(records, userID, id)
		if i < 0 {
			return nil, fmt.Errorf("%s %s: %w", s.name, id, ErrNotFound)
		}
		rec, err := fn(records[i])
		if err != nil {
			return nil, err
		}
		records[i] = rec
		out = rec
		return records, nil
	})
	return out, err
}

func (s ownedSet[T]) delete(ctx context.Context, tx *sql.Tx, userID, id string) error {
	return mutate(ctx, tx, s.name, func(records []T) ([]T, error) {
		i := s.index(records, userID, id)
		if i < 0 {
			return nil, fmt.Errorf("%s %s: %w", s.name, id, ErrNotFound)
		}
		return slices.Delete(records, i, i+1), nil
	})
}

func (s ownedSet[T]) deleteOwnedBy(ctx context.Context, tx *sql.Tx, userID string) error {
	return mutate(ctx, tx, s.name, func(records []T) ([]T, error) {
		return slices.DeleteFunc(records, func(r T) bool { return s.owner(r) == userID }), nil
	})
}
