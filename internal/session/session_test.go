package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"finora/internal/models"
	"finora/internal/storage"

	"github.com/stretchr/testify/suite"
)

type ManagerTestSuite struct {
	suite.Suite
	db      *storage.DB
	manager *Manager
	user    *models.User
	ctx     context.Context
}

func (suite *ManagerTestSuite) SetupTest() {
	db, err := storage.NewDB(":memory:")
	suite.Require().NoError(err)
	suite.db = db
	suite.ctx = context.Background()
	suite.manager = NewManager(db, time.Hour)

	user, err := db.Register(suite.ctx, "Test User", "test@example.com", "password123")
	suite.Require().NoError(err)
	suite.user = user
}

func (suite *ManagerTestSuite) TearDownTest() {
	if suite.db != nil {
		suite.db.Close()
	}
}

func (suite *ManagerTestSuite) TestNewStateIsLoading() {
	s := NewState()
	suite.True(s.Loading)
	suite.False(s.Authenticated)
	suite.Nil(s.User)
}

func (suite *ManagerTestSuite) TestAllows() {
	s := NewState()
	suite.True(s.Allows(ViewLogin))
	suite.True(s.Allows(ViewRegister))
	suite.False(s.Allows("dashboard"), "protected views wait for restore")

	s.Login(suite.user)
	suite.True(s.Allows("dashboard"))
	suite.True(s.Allows("settings"))

	s.Logout()
	suite.False(s.Allows("dashboard"))
	suite.True(s.Allows(ViewLogin))
}

func (suite *ManagerTestSuite) TestStartAndRestore() {
	state := NewState()
	token, expiresAt, err := suite.manager.Start(suite.ctx, state, suite.user)
	suite.Require().NoError(err)
	suite.NotEmpty(token)
	suite.WithinDuration(time.Now().Add(time.Hour), expiresAt, time.Minute)
	suite.True(state.Authenticated)

	restored := NewState()
	renewed, err := suite.manager.Restore(suite.ctx, restored, token)
	suite.Require().NoError(err)
	suite.True(renewed.IsZero(), "fresh session is not renewed")
	suite.False(restored.Loading)
	suite.True(restored.Authenticated)
	suite.Equal(suite.user.ID, restored.User.ID)
}

func (suite *ManagerTestSuite) TestRestoreWithoutToken() {
	state := NewState()
	_, err := suite.manager.Restore(suite.ctx, state, "")
	suite.ErrorIs(err, ErrNoSession)
	suite.False(state.Loading, "loading ends even when nothing is restored")
	suite.False(state.Authenticated)
}

func (suite *ManagerTestSuite) TestRestoreUnknownToken() {
	state := NewState()
	_, err := suite.manager.Restore(suite.ctx, state, "does-not-exist")
	suite.ErrorIs(err, ErrNoSession)
	suite.False(state.Loading)
	suite.False(state.Authenticated)
}

func (suite *ManagerTestSuite) TestRestoreExpiredSession() {
	suite.Require().NoError(suite.db.CreateSession(suite.ctx, "expired", suite.user.ID, time.Now().Add(-time.Minute)))

	state := NewState()
	_, err := suite.manager.Restore(suite.ctx, state, "expired")
	suite.ErrorIs(err, ErrNoSession)
	suite.False(state.Authenticated)
}

func (suite *ManagerTestSuite) TestRestoreRenewsPastHalfLife() {
	suite.Require().NoError(suite.db.CreateSession(suite.ctx, "old", suite.user.ID, time.Now().Add(10*time.Minute)))

	state := NewState()
	renewed, err := suite.manager.Restore(suite.ctx, state, "old")
	suite.Require().NoError(err)
	suite.False(renewed.IsZero())
	suite.WithinDuration(time.Now().Add(time.Hour), renewed, time.Minute)

	info, err := suite.db.ValidateSessionWithInfo(suite.ctx, "old")
	suite.Require().NoError(err)
	suite.WithinDuration(renewed, info.ExpiresAt, time.Second)
}

func (suite *ManagerTestSuite) TestRestoreForDeletedAccount() {
	state := NewState()
	token, _, err := suite.manager.Start(suite.ctx, state, suite.user)
	suite.Require().NoError(err)
	suite.Require().NoError(suite.db.DeleteAccount(suite.ctx, suite.user.ID))

	restored := NewState()
	_, err = suite.manager.Restore(suite.ctx, restored, token)
	suite.ErrorIs(err, ErrNoSession)
	suite.False(restored.Authenticated)
}

func (suite *ManagerTestSuite) TestEnd() {
	state := NewState()
	token, _, err := suite.manager.Start(suite.ctx, state, suite.user)
	suite.Require().NoError(err)

	suite.Require().NoError(suite.manager.End(suite.ctx, state, token))
	suite.False(state.Authenticated)
	suite.Nil(state.User)

	_, err = suite.manager.Restore(suite.ctx, NewState(), token)
	suite.ErrorIs(err, ErrNoSession, "ended session cannot be restored")
}

func TestManagerSuite(t *testing.T) {
	suite.Run(t, new(ManagerTestSuite))
}

type failingStore struct {
	Store
	err error
}

func (f failingStore) DeleteSession(context.Context, string) error { return f.err }

func TestEndClearsStateWhenDeleteFails(t *testing.T) {
	boom := errors.New("boom")
	m := NewManager(failingStore{err: boom}, 0)

	state := &State{User: &models.User{ID: "u1"}, Authenticated: true}
	err := m.End(context.Background(), state, "token")

	if !errors.Is(err, boom) {
		t.Fatalf("End() error = %v, want %v", err, boom)
	}
	if state.Authenticated || state.User != nil {
		t.Fatalf("state not cleared: %+v", state)
	}
	if m.Duration() != DefaultDuration {
		t.Fatalf("Duration() = %v, want %v", m.Duration(), DefaultDuration)
	}
}
