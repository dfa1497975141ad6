package models

import (
	"net/mail"
	"strings"

	dErrors "neoquiz/pkg/domain-errors"
)

const (
	minAge = 1
	maxAge = 120
)

// Details are the fields entered on RegisterDetails.
type Details struct {
	FirstName    string
	LastName     string
	Age          int
	Organization string
	Gender       Gender
	Role         Role
	Password     string
}

// RegistrationDraft accumulates what the user enters between Register and
// Welcome. It is a value: every With* method returns a new draft and leaves
// the receiver untouched.
//
// Invariants:
//   - Email is set at creation and never changes
//   - Fields are only added; a set field is never cleared or replaced
//   - TeacherID is only ever set on a student draft
//   - At ProfilePicture: Role == student <=> TeacherID != ""
type RegistrationDraft struct {
	Email        string
	FirstName    string
	LastName     string
	Age          int
	Organization string
	Gender       Gender
	Role         Role
	Password     string
	TeacherID    string
	Avatar       string
}

// NewDraft starts a draft from the address typed on Register.
func NewDraft(email string) (RegistrationDraft, error) {
	email = strings.TrimSpace(email)
	if err := ValidateEmail(email); err != nil {
		return RegistrationDraft{}, err
	}
	return RegistrationDraft{Email: email}, nil
}

// ValidateEmail rejects empty and malformed addresses.
func ValidateEmail(email string) error {
	if email == "" {
		return dErrors.New(dErrors.CodeValidation, "Please enter your email address")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return dErrors.New(dErrors.CodeValidation, "Please enter a valid email address")
	}
	return nil
}

// HasDetails reports whether RegisterDetails has been completed.
func (d RegistrationDraft) HasDetails() bool {
	return d.Role != ""
}

// HasTeacher reports whether a teacher was chosen.
func (d RegistrationDraft) HasTeacher() bool {
	return d.TeacherID != ""
}

// WithDetails adds the RegisterDetails fields to an email-only draft.
func (d RegistrationDraft) WithDetails(det Details) (RegistrationDraft, error) {
	if d.Email == "" {
		return d, dErrors.New(dErrors.CodeInvariantViolation, "draft has no email")
	}
	if d.HasDetails() {
		return d, dErrors.New(dErrors.CodeInvariantViolation, "draft details are already set")
	}
	if err := det.Validate(); err != nil {
		return d, err
	}
	d.FirstName = strings.TrimSpace(det.FirstName)
	d.LastName = strings.TrimSpace(det.LastName)
	d.Age = det.Age
	d.Organization = strings.TrimSpace(det.Organization)
	d.Gender = det.Gender
	d.Role = det.Role
	d.Password = det.Password
	return d, nil
}

// WithTeacher records the teacher picked on TeacherSelection. Picking the
// same teacher again is a no-op; picking a different one is rejected.
func (d RegistrationDraft) WithTeacher(teacherID string) (RegistrationDraft, error) {
	teacherID = strings.TrimSpace(teacherID)
	if teacherID == "" {
		return d, dErrors.New(dErrors.CodeValidation, "Please select a teacher to continue")
	}
	if d.Role != RoleStudent {
		return d, dErrors.New(dErrors.CodeInvariantViolation, "only students select a teacher")
	}
	if d.HasTeacher() && d.TeacherID != teacherID {
		return d, dErrors.New(dErrors.CodeInvariantViolation, "teacher is already selected")
	}
	d.TeacherID = teacherID
	return d, nil
}

// WithAvatar records the avatar picked on AvatarSelection.
func (d RegistrationDraft) WithAvatar(avatar string) (RegistrationDraft, error) {
	avatar = strings.TrimSpace(avatar)
	if avatar == "" {
		return d, dErrors.New(dErrors.CodeValidation, "Please select an avatar")
	}
	if d.Avatar != "" && d.Avatar != avatar {
		return d, dErrors.New(dErrors.CodeInvariantViolation, "avatar is already selected")
	}
	d.Avatar = avatar
	return d, nil
}

// ReadyForTeacherSelection checks the draft a student carries into
// TeacherSelection: complete details, no teacher yet.
func (d RegistrationDraft) ReadyForTeacherSelection() error {
	if err := d.detailsComplete(); err != nil {
		return err
	}
	if d.Role != RoleStudent {
		return dErrors.New(dErrors.CodeContractViolation, "TeacherSelection requires a student draft")
	}
	if d.HasTeacher() {
		return dErrors.New(dErrors.CodeContractViolation, "TeacherSelection requires a draft without a teacher")
	}
	return nil
}

// ReadyForProfilePicture checks the draft carried into ProfilePicture and
// AvatarSelection.
func (d RegistrationDraft) ReadyForProfilePicture() error {
	if err := d.detailsComplete(); err != nil {
		return err
	}
	if (d.Role == RoleStudent) != d.HasTeacher() {
		return dErrors.New(dErrors.CodeContractViolation, "students must have a teacher and teachers must not")
	}
	return nil
}

func (d RegistrationDraft) detailsComplete() error {
	if d.Email == "" {
		return dErrors.New(dErrors.CodeContractViolation, "draft is missing email")
	}
	if !d.Role.IsValid() {
		return dErrors.New(dErrors.CodeContractViolation, "draft is missing role")
	}
	if d.FirstName == "" || d.LastName == "" || d.Password == "" || d.Organization == "" || d.Age == 0 {
		return dErrors.New(dErrors.CodeContractViolation, "draft details are incomplete")
	}
	return nil
}

// Validate checks the fields as typed on RegisterDetails.
func (det Details) Validate() error {
	switch {
	case strings.TrimSpace(det.FirstName) == "":
		return dErrors.New(dErrors.CodeValidation, "Please enter your first name")
	case strings.TrimSpace(det.LastName) == "":
		return dErrors.New(dErrors.CodeValidation, "Please enter your last name")
	case det.Age < minAge || det.Age > maxAge:
		return dErrors.New(dErrors.CodeValidation, "Please enter a valid age")
	case strings.TrimSpace(det.Organization) == "":
		return dErrors.New(dErrors.CodeValidation, "Please enter your organization")
	case !det.Gender.IsValid():
		return dErrors.New(dErrors.CodeValidation, "Please choose a gender")
	case !det.Role.IsValid():
		return dErrors.New(dErrors.CodeValidation, "Please choose student or teacher")
	case det.Password == "":
		return dErrors.New(dErrors.CodeValidation, "Please enter a password")
	}
	return nil
}
