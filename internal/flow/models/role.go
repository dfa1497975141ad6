package models

import (
	"strings"

	dErrors "neoquiz/pkg/domain-errors"
)

// Role is chosen once, at RegisterDetails or on the Login role selector, and
// never changes for the rest of the session.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
)

// IsValid checks if the role is one of the two supported values.
func (r Role) IsValid() bool {
	return r == RoleStudent || r == RoleTeacher
}

func (r Role) String() string {
	return string(r)
}

// ParseRole accepts "student" or "teacher", case-insensitively.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "role must be 'student' or 'teacher'")
	}
	return r, nil
}

// Gender as collected on RegisterDetails. The empty value means the user did
// not pick one.
type Gender string

const (
	GenderUnspecified Gender = ""
	GenderMale        Gender = "male"
	GenderFemale      Gender = "female"
)

func (g Gender) IsValid() bool {
	return g == GenderUnspecified || g == GenderMale || g == GenderFemale
}

// ParseGender accepts "male", "female" or an empty string.
func ParseGender(s string) (Gender, error) {
	g := Gender(strings.ToLower(strings.TrimSpace(s)))
	if !g.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "gender must be 'male', 'female' or empty")
	}
	return g, nil
}
