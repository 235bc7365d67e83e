package services

import (
	"context"
	"testing"
	"time"

	"authhub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type MockAttemptRepository struct {
	mock.Mock
}

func (m *MockAttemptRepository) Create(ctx context.Context, attempt *models.AuthAttempt) error {
	args := m.Called(ctx, attempt)
	return args.Error(0)
}

func (m *MockAttemptRepository) RecentFailed(ctx context.Context, email, tenantID string, since time.Time) ([]*models.AuthAttempt, error) {
	args := m.Called(ctx, email, tenantID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.AuthAttempt), args.Error(1)
}

type AttemptLedgerTestSuite struct {
	suite.Suite
	repo    *MockAttemptRepository
	ledger  AttemptLedger
	context context.Context
}

func (suite *AttemptLedgerTestSuite) SetupTest() {
	suite.repo = &MockAttemptRepository{}
	suite.ledger = NewAttemptLedger(suite.repo)
	suite.context = context.Background()
	suite.repo.Test(suite.T())
}

func (suite *AttemptLedgerTestSuite) TearDownTest() {
	suite.repo.AssertExpectations(suite.T())
}

func TestAttemptLedgerTestSuite(t *testing.T) {
	suite.Run(t, new(AttemptLedgerTestSuite))
}

func failedAttempts(n int) []*models.AuthAttempt {
	attempts := make([]*models.AuthAttempt, n)
	for i := range attempts {
		attempts[i] = &models.AuthAttempt{Email: "jo@example.com", TenantID: "acme", Success: false}
	}
	return attempts
}

func (suite *AttemptLedgerTestSuite) TestIsLocked_UnderThreshold() {
	suite.repo.On("RecentFailed", suite.context, "jo@example.com", "acme", mock.AnythingOfType("time.Time")).
		Return(failedAttempts(4), nil)

	locked, err := suite.ledger.IsLocked(suite.context, "jo@example.com", "acme")
	assert.NoError(suite.T(), err)
	assert.False(suite.T(), locked)
}

func (suite *AttemptLedgerTestSuite) TestIsLocked_AtThreshold() {
	suite.repo.On("RecentFailed", suite.context, "jo@example.com", "acme", mock.AnythingOfType("time.Time")).
		Return(failedAttempts(5), nil)

	locked, err := suite.ledger.IsLocked(suite.context, "jo@example.com", "acme")
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), locked)
}

func (suite *AttemptLedgerTestSuite) TestIsLocked_WindowSlidesFromNow() {
	var cutoff time.Time
	suite.repo.On("RecentFailed", suite.context, "jo@example.com", "acme", mock.AnythingOfType("time.Time")).
		Return(failedAttempts(0), nil).
		Run(func(args mock.Arguments) {
			cutoff = args.Get(3).(time.Time)
		})

	before := time.Now()
	_, err := suite.ledger.IsLocked(suite.context, "jo@example.com", "acme")
	assert.NoError(suite.T(), err)

	expected := before.Add(-15 * time.Minute)
	assert.WithinDuration(suite.T(), expected, cutoff, time.Second)
}

func (suite *AttemptLedgerTestSuite) TestRecord_PassesThrough() {
	ip := "10.0.0.1"
	suite.repo.On("Create", suite.context, mock.AnythingOfType("*models.AuthAttempt")).Return(nil).
		Run(func(args mock.Arguments) {
			attempt := args.Get(1).(*models.AuthAttempt)
			assert.Equal(suite.T(), "jo@example.com", attempt.Email)
			assert.Equal(suite.T(), "acme", attempt.TenantID)
			assert.False(suite.T(), attempt.Success)
			assert.Equal(suite.T(), &ip, attempt.IPAddress)
		})

	err := suite.ledger.Record(suite.context, "jo@example.com", "acme", false, &ip, nil)
	assert.NoError(suite.T(), err)
}
