package service

import (
	"neoquiz/internal/flow/models"
	dErrors "neoquiz/pkg/domain-errors"
)

// ResolveNextAfterDetails is the role branch: students pick a teacher first,
// teachers go straight to ProfilePicture.
func ResolveNextAfterDetails(role models.Role) (models.ScreenID, error) {
	switch role {
	case models.RoleStudent:
		return models.ScreenTeacherSelection, nil
	case models.RoleTeacher:
		return models.ScreenProfilePicture, nil
	}
	return "", dErrors.New(dErrors.CodeInvalidInput, "role must be 'student' or 'teacher'")
}

// AutoAdvance reports whether a screen leaves on its own after a delay
// instead of on user input.
func AutoAdvance(screen models.ScreenID) bool {
	return screen == models.ScreenSplash || screen == models.ScreenWelcome
}
