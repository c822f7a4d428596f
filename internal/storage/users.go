package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"

	"finora/internal/auth"
	"finora/internal/models"

	"github.com/google/uuid"
)

// userRecord is the stored form of a user. models.User hides the hash from
// JSON, so it is carried in its own field here.
type userRecord struct {
	models.User
	PasswordHash string `json:"passwordHash"`
}

func (r userRecord) model() *models.User {
	u := r.User
	u.PasswordHash = r.PasswordHash
	return &u
}

func newUserRecord(u models.User) userRecord {
	return userRecord{User: u, PasswordHash: u.PasswordHash}
}

// Register creates a new account. Emails are matched exactly, so two
// addresses differing only in case are distinct accounts.
func (db *DB) Register(ctx context.Context, name, email, password string) (*models.User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		ID:            uuid.NewString(),
		Name:          name,
		Email:         email,
		PasswordHash:  hash,
		CreatedAt:     db.timestamp(),
		Currency:      models.DefaultCurrency,
		Theme:         models.ThemeLight,
		Notifications: true,
	}

	err = db.update(ctx, func(tx *sql.Tx) error {
		return mutate(ctx, tx, usersCollection, func(users []userRecord) ([]userRecord, error) {
			if slices.ContainsFunc(users, func(u userRecord) bool { return u.Email == email }) {
				return nil, fmt.Errorf("%s: %w", email, ErrDuplicateUser)
			}
			return append(users, newUserRecord(user)), nil
		})
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Login returns the stored user matching email and password.
func (db *DB) Login(ctx context.Context, email, password string) (*models.User, error) {
	user, err := db.GetUserByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !auth.CheckPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// GetUser retrieves a user by ID.
func (db *DB) GetUser(ctx context.Context, id string) (*models.User, error) {
	return db.findUser(ctx, db.conn, func(u userRecord) bool { return u.ID == id }, id)
}

// GetUserByEmail retrieves a user by exact email.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return db.findUser(ctx, db.conn, func(u userRecord) bool { return u.Email == email }, email)
}

func (db *DB) findUser(ctx context.Context, q querier, match func(userRecord) bool, key string) (*models.User, error) {
	users, _, err := readCollection[userRecord](ctx, q, usersCollection)
	if err != nil {
		return nil, err
	}
	i := slices.IndexFunc(users, match)
	if i < 0 {
		return nil, fmt.Errorf("user %s: %w", key, ErrNotFound)
	}
	return users[i].model(), nil
}

// UpdateProfile replaces the editable profile fields of a user.
func (db *DB) UpdateProfile(ctx context.Context, id string, p models.Profile) (*models.User, error) {
	var updated *models.User
	err := db.update(ctx, func(tx *sql.Tx) error {
		return mutate(ctx, tx, usersCollection, func(users []userRecord) ([]userRecord, error) {
			i := slices.IndexFunc(users, func(u userRecord) bool { return u.ID == id })
			if i < 0 {
				return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
			}
			u := &users[i].User
			u.Name = p.Name
			u.Phone = p.Phone
			u.Currency = p.Currency
			u.Theme = p.Theme
			u.Notifications = p.Notifications
			updated = users[i].model()
			return users, nil
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ChangePassword replaces the credential of a user once current is verified.
func (db *DB) ChangePassword(ctx context.Context, id, current, next string) error {
	hash, err := auth.HashPassword(next)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return db.update(ctx, func(tx *sql.Tx) error {
		return mutate(ctx, tx, usersCollection, func(users []userRecord) ([]userRecord, error) {
			i := slices.IndexFunc(users, func(u userRecord) bool { return u.ID == id })
			if i < 0 {
				return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
			}
			if !auth.CheckPassword(current, users[i].PasswordHash) {
				return nil, ErrInvalidCredentials
			}
			users[i].PasswordHash = hash
			return users, nil
		})
	})
}

// DeleteAccount removes a user together with every record they own and
// their sessions. Either everything is removed or nothing is.
func (db *DB) DeleteAccount(ctx context.Context, id string) error {
	return db.update(ctx, func(tx *sql.Tx) error {
		err := mutate(ctx, tx, usersCollection, func(users []userRecord) ([]userRecord, error) {
			i := slices.IndexFunc(users, func(u userRecord) bool { return u.ID == id })
			if i < 0 {
				return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
			}
			return slices.Delete(users, i, i+1), nil
		})
		if err != nil {
			return err
		}

		cascade := []func() error{
			func() error { return transactionSet.deleteOwnedBy(ctx, tx, id) },
			func() error { return budgetSet.deleteOwnedBy(ctx, tx, id) },
			func() error { return debtSet.deleteOwnedBy(ctx, tx, id) },
			func() error { return goalSet.deleteOwnedBy(ctx, tx, id) },
			func() error { return progressSet.deleteOwnedBy(ctx, tx, id) },
		}
		for _, del := range cascade {
			if err := del(); err != nil {
				return err
			}
		}

		_, err = tx.ExecContext(ctx, "DELETE FROM sessions WHERE user_id = ?", id)
		return err
	})
}

// UserCount returns the number of registered users.
func (db *DB) UserCount(ctx context.Context) (int, error) {
	users, _, err := readCollection[userRecord](ctx, db.conn, usersCollection)
	return len(users), err
}
