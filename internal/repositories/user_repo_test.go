package repositories

import (
	"context"
	"testing"
	"time"

	"authhub/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type UserRepoTestSuite struct {
	suite.Suite
	mock    pgxmock.PgxPoolIface
	repo    UserRepository
	context context.Context
}

func (suite *UserRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.repo = NewUserRepository(mock)
	suite.context = context.Background()
}

func (suite *UserRepoTestSuite) TearDownTest() {
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
	suite.mock.Close()
}

func TestUserRepoTestSuite(t *testing.T) {
	suite.Run(t, new(UserRepoTestSuite))
}

func (suite *UserRepoTestSuite) TestCreate_Success() {
	user := &models.User{
		TenantID:     "acme",
		Email:        "jo@example.com",
		PasswordHash: "hashed",
		IsActive:     true,
	}
	now := time.Now()

	suite.mock.ExpectQuery(`INSERT INTO users`).
		WithArgs(user.TenantID, user.Email, user.PasswordHash, user.FirstName, user.LastName,
			user.IsActive, user.MFAEnabled, user.MFASecret).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(7), now, now))

	err := suite.repo.Create(suite.context, user)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), int64(7), user.ID)
}

func (suite *UserRepoTestSuite) TestCreate_DuplicateEmailInTenant() {
	user := &models.User{
		TenantID:     "acme",
		Email:        "jo@example.com",
		PasswordHash: "hashed",
		IsActive:     true,
	}

	suite.mock.ExpectQuery(`INSERT INTO users`).
		WithArgs(user.TenantID, user.Email, user.PasswordHash, user.FirstName, user.LastName,
			user.IsActive, user.MFAEnabled, user.MFASecret).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_tenant_email_unique"})

	err := suite.repo.Create(suite.context, user)
	assert.Error(suite.T(), err)
	assert.True(suite.T(), IsUniqueViolation(err))
}

func (suite *UserRepoTestSuite) TestGetByEmail_NotFound() {
	suite.mock.ExpectQuery(`SELECT id, tenant_id, email`).
		WithArgs("acme", "nobody@example.com").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "tenant_id", "email", "password_hash", "first_name", "last_name",
			"is_active", "mfa_enabled", "mfa_secret", "created_at", "updated_at",
		}))

	user, err := suite.repo.GetByEmail(suite.context, "nobody@example.com", "acme")
	assert.NoError(suite.T(), err)
	assert.Nil(suite.T(), user)
}

func (suite *UserRepoTestSuite) TestGetByEmail_ScopedToTenant() {
	now := time.Now()
	suite.mock.ExpectQuery(`SELECT id, tenant_id, email`).
		WithArgs("acme", "jo@example.com").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "tenant_id", "email", "password_hash", "first_name", "last_name",
			"is_active", "mfa_enabled", "mfa_secret", "created_at", "updated_at",
		}).AddRow(int64(7), "acme", "jo@example.com", "hashed", (*string)(nil), (*string)(nil),
			true, false, (*string)(nil), now, now))

	user, err := suite.repo.GetByEmail(suite.context, "jo@example.com", "acme")
	assert.NoError(suite.T(), err)
	assert.NotNil(suite.T(), user)
	assert.Equal(suite.T(), "acme", user.TenantID)
	assert.Equal(suite.T(), int64(7), user.ID)
}
