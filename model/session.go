package model

// DefaultUserID is the internal user id assigned to every first-time login.
const DefaultUserID int64 = 101

// Session is the identity held for the lifetime of a browser session.
type Session struct {
	UserID  int64
	Email   string
	Name    string
	Subject string // account id at the identity provider
	Token   string // opaque session token issued at login
}

// Login is what the identity provider reports after a successful sign-in.
type Login struct {
	Subject string
	Email   string
	Name    string
	Token   string
}

// NewSession builds the session that results from login. A user id already
// present in prev is carried over; otherwise the fixed DefaultUserID is
// assigned. prev is never modified.
func NewSession(prev *Session, login Login) Session {
	s := Session{
		UserID:  DefaultUserID,
		Email:   login.Email,
		Name:    login.Name,
		Subject: login.Subject,
		Token:   login.Token,
	}
	if prev != nil && prev.UserID != 0 {
		s.UserID = prev.UserID
	}
	return s
}

// Authenticated reports whether the session carries an identity.
func (s Session) Authenticated() bool {
	return s.UserID != 0 && s.Token != ""
}
