package models

import (
	"time"
)

type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
)

func (r Role) IsValid() bool {
	return r == RoleStudent || r == RoleTeacher
}

// User is an account as the mock backend stores it.
type User struct {
	ID           string
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	Role         Role
	TeacherID    string
	Age          int
	Gender       string
	Organization string
	ProfileImage string
	CreatedAt    time.Time
}

// EventType names an account event.
type EventType string

const (
	EventUserRegistered EventType = "user.registered"
	EventUserLoggedIn   EventType = "user.logged_in"
	EventUserLoggedOut  EventType = "user.logged_out"
)

// Event is published on every account change the mock API observes.
type Event struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	UserID     string    `json:"user_id"`
	Email      string    `json:"email,omitempty"`
	Role       Role      `json:"role,omitempty"`
	Platform   string    `json:"platform,omitempty"`
	RequestID  string    `json:"request_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
