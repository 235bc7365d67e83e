package repositories

import (
	"context"
	"testing"
	"time"

	"authhub/internal/models"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type AttemptRepoTestSuite struct {
	suite.Suite
	mock    pgxmock.PgxPoolIface
	repo    AttemptRepository
	context context.Context
}

func (suite *AttemptRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.repo = NewAttemptRepository(mock)
	suite.context = context.Background()
}

func (suite *AttemptRepoTestSuite) TearDownTest() {
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
	suite.mock.Close()
}

func TestAttemptRepoTestSuite(t *testing.T) {
	suite.Run(t, new(AttemptRepoTestSuite))
}

func (suite *AttemptRepoTestSuite) TestCreate_Success() {
	attempt := &models.AuthAttempt{
		Email:    "jo@example.com",
		TenantID: "acme",
		Success:  false,
	}
	now := time.Now()

	suite.mock.ExpectQuery(`INSERT INTO auth_attempts`).
		WithArgs(attempt.Email, attempt.TenantID, attempt.Success, attempt.IPAddress, attempt.UserAgent).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(1), now))

	err := suite.repo.Create(suite.context, attempt)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(1), attempt.ID)
}

func (suite *AttemptRepoTestSuite) TestRecentFailed_FiltersOnWindow() {
	since := time.Now().Add(-15 * time.Minute)
	now := time.Now()

	suite.mock.ExpectQuery(`SELECT id, email, tenant_id, success`).
		WithArgs("acme", "jo@example.com", since).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "email", "tenant_id", "success", "ip_address", "user_agent", "created_at",
		}).
			AddRow(int64(2), "jo@example.com", "acme", false, (*string)(nil), (*string)(nil), now).
			AddRow(int64(1), "jo@example.com", "acme", false, (*string)(nil), (*string)(nil), now.Add(-time.Minute)))

	attempts, err := suite.repo.RecentFailed(suite.context, "jo@example.com", "acme", since)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), attempts, 2)
	assert.False(suite.T(), attempts[0].Success)
}
