package models

// Session is what a successful login leaves in the credential store.
type Session struct {
	AccessToken string
	User        *User
}

// Authenticated reports whether a token is held.
func (s *Session) Authenticated() bool {
	return s != nil && s.AccessToken != ""
}
