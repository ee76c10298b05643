package model_test

import (
	"testing"

	"github.com/billingcat/notes/model"
)

func TestNewSession_FirstLoginGetsDefaultID(t *testing.T) {
	login := model.Login{Subject: "g-1", Email: "a@x.com", Name: "A", Token: "tok"}
	s := model.NewSession(nil, login)
	if s.UserID != model.DefaultUserID {
		t.Errorf("UserID = %d, want %d", s.UserID, model.DefaultUserID)
	}
	if s.Email != "a@x.com" || s.Subject != "g-1" || s.Name != "A" || s.Token != "tok" {
		t.Errorf("session = %+v", s)
	}
	if !s.Authenticated() {
		t.Error("session should be authenticated")
	}
}

func TestNewSession_KeepsExistingID(t *testing.T) {
	prev := &model.Session{UserID: 555, Email: "old@x.com", Token: "old"}
	s := model.NewSession(prev, model.Login{Email: "new@x.com", Token: "new"})
	if s.UserID != 555 {
		t.Errorf("UserID = %d, want 555", s.UserID)
	}
	if s.Email != "new@x.com" {
		t.Errorf("Email = %q, want new@x.com", s.Email)
	}
	if prev.Email != "old@x.com" || prev.Token != "old" {
		t.Errorf("previous session was modified: %+v", prev)
	}
}

func TestNewSession_PreviousWithoutID(t *testing.T) {
	s := model.NewSession(&model.Session{}, model.Login{Token: "t"})
	if s.UserID != model.DefaultUserID {
		t.Errorf("UserID = %d, want %d", s.UserID, model.DefaultUserID)
	}
}

func TestSession_Authenticated(t *testing.T) {
	tests := []struct {
		name string
		s    model.Session
		want bool
	}{
		{"empty", model.Session{}, false},
		{"no token", model.Session{UserID: 101}, false},
		{"no id", model.Session{Token: "t"}, false},
		{"complete", model.Session{UserID: 101, Token: "t"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.s.Authenticated(); got != tt.want {
				t.Errorf("Authenticated() = %v, want %v", got, tt.want)
			}
		})
	}
}
