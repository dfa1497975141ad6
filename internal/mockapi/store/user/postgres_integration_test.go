//go:build integration

package user_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"neoquiz/internal/mockapi/models"
	"neoquiz/internal/mockapi/store"
	"neoquiz/internal/mockapi/store/user"
	"neoquiz/pkg/platform/sentinel"
	"neoquiz/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *user.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.pg = containers.GetManager().GetPostgres(s.T())
	s.Require().NoError(store.EnsureSchema(context.Background(), s.pg.DB))
	s.store = user.NewPostgres(s.pg.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.pg.Truncate(context.Background(), "users"))
}

func (s *PostgresStoreSuite) TestCreateAndFind() {
	ctx := context.Background()
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	u := &models.User{
		ID:           "u-1",
		Email:        "Grace@Example.com",
		FirstName:    "Grace",
		LastName:     "Hopper",
		PasswordHash: "hash",
		Role:         models.RoleTeacher,
		Age:          40,
		Organization: "Navy",
		CreatedAt:    created,
	}
	s.Require().NoError(s.store.Create(ctx, u))

	byEmail, err := s.store.FindByEmail(ctx, "grace@example.com")
	s.Require().NoError(err)
	s.Equal("u-1", byEmail.ID)
	s.Equal(models.RoleTeacher, byEmail.Role)
	s.True(created.Equal(byEmail.CreatedAt))

	byID, err := s.store.FindByID(ctx, "u-1")
	s.Require().NoError(err)
	s.Equal("Navy", byID.Organization)

	_, err = s.store.FindByID(ctx, "missing")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestEmailIsUniqueIgnoringCase() {
	ctx := context.Background()
	now := time.Now().UTC()
	s.Require().NoError(s.store.Create(ctx, &models.User{ID: "u-1", Email: "ada@example.com", Role: models.RoleStudent, CreatedAt: now}))

	err := s.store.Create(ctx, &models.User{ID: "u-2", Email: "ADA@example.com", Role: models.RoleStudent, CreatedAt: now})
	s.ErrorIs(err, sentinel.ErrConflict)
}

func (s *PostgresStoreSuite) TestListByRoleAndCount() {
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, u := range []*models.User{
		{ID: "t-2", Email: "b@example.com", Role: models.RoleTeacher, CreatedAt: base.Add(time.Hour)},
		{ID: "t-1", Email: "a@example.com", Role: models.RoleTeacher, CreatedAt: base},
		{ID: "s-1", Email: "c@example.com", Role: models.RoleStudent, TeacherID: "t-1", CreatedAt: base},
	} {
		s.Require().NoError(s.store.Create(ctx, u), "user %d", i)
	}

	teachers, err := s.store.ListByRole(ctx, models.RoleTeacher)
	s.Require().NoError(err)
	s.Require().Len(teachers, 2)
	s.Equal("t-1", teachers[0].ID)
	s.Equal("t-2", teachers[1].ID)

	n, err := s.store.Count(ctx)
	s.Require().NoError(err)
	s.Equal(3, n)
}
