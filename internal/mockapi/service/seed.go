package service

import (
	"context"

	authmodels "neoquiz/internal/auth/models"
)

// DefaultSeedPassword is the password of every seeded teacher.
const DefaultSeedPassword = "teacher123"

// DefaultTeachers gives a fresh mock API something to pick on
// TeacherSelection.
var DefaultTeachers = []authmodels.RegisterRequest{
	{Email: "sarah.johnson@neoquiz.dev", FirstName: "Sarah", LastName: "Johnson", Age: 38, Gender: "female", Organization: "Riverside High School"},
	{Email: "michael.chen@neoquiz.dev", FirstName: "Michael", LastName: "Chen", Age: 45, Gender: "male", Organization: "Lakeside Academy"},
	{Email: "amina.okafor@neoquiz.dev", FirstName: "Amina", LastName: "Okafor", Age: 33, Gender: "female", Organization: "Hilltop College"},
}

// SeedTeachers registers teachers when the store holds no users at all.
// It returns how many were created.
func (s *Service) SeedTeachers(ctx context.Context, teachers []authmodels.RegisterRequest) (int, error) {
	n, err := s.users.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}
	for i, t := range teachers {
		t.Role = "teacher"
		t.TeacherID = ""
		if t.Password == "" {
			t.Password = DefaultSeedPassword
		}
		if _, err := s.Register(ctx, t); err != nil {
			return i, err
		}
	}
	s.logger.InfoContext(ctx, "seeded teachers", "count", len(teachers))
	return len(teachers), nil
}
