package models

import (
	"strings"

	flow "neoquiz/internal/flow/models"
)

// Teacher as listed by GET /users/teachers.
type Teacher struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Organization string `json:"organization,omitempty"`
}

// TeachersResponse wraps the teacher list.
type TeachersResponse struct {
	Teachers []Teacher `json:"teachers"`
}

type RegisterRequest struct {
	Email        string `json:"email"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Password     string `json:"password"`
	Role         string `json:"role"`
	TeacherID    string `json:"teacher_id,omitempty"`
	Age          int    `json:"age"`
	Gender       string `json:"gender"`
	Organization string `json:"organization"`
	ProfileImage string `json:"profile_image,omitempty"`
}

type RegisterResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// User is the account summary returned on login and kept in the credential
// store under user_data.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        User   `json:"user"`
}

// ErrorResponse is the body of a rejected request. Servers send message,
// detail, or both.
type ErrorResponse struct {
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

// Text returns the first non-empty of message and detail.
func (e ErrorResponse) Text() string {
	if m := strings.TrimSpace(e.Message); m != "" {
		return m
	}
	return strings.TrimSpace(e.Detail)
}

// RegisterRequestFromDraft maps a completed draft onto the register body.
// The avatar travels as profile_image.
func RegisterRequestFromDraft(d flow.RegistrationDraft) RegisterRequest {
	req := RegisterRequest{
		Email:        d.Email,
		FirstName:    d.FirstName,
		LastName:     d.LastName,
		Password:     d.Password,
		Role:         d.Role.String(),
		Age:          d.Age,
		Gender:       string(d.Gender),
		Organization: d.Organization,
		ProfileImage: d.Avatar,
	}
	if d.Role == flow.RoleStudent {
		req.TeacherID = d.TeacherID
	}
	return req
}

// ToFlowTeachers converts the wire list for the TeacherSelection screen.
func ToFlowTeachers(in []Teacher) []flow.Teacher {
	out := make([]flow.Teacher, 0, len(in))
	for _, t := range in {
		out = append(out, flow.Teacher{
			ID:           t.ID,
			Email:        t.Email,
			FirstName:    t.FirstName,
			LastName:     t.LastName,
			Organization: t.Organization,
		})
	}
	return out
}
