package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"coursehub/internal/model"
)

func TestDecide(t *testing.T) {
	userSess := &Session{Token: "u", Payload: &Payload{Role: model.RoleUser, Username: "bob"}}
	adminSess := &Session{Token: "a", Payload: &Payload{Role: model.RoleAdmin, Username: "alice"}}
	emptySess := &Session{Token: "e"}
	blankName := &Session{Token: "b", Payload: &Payload{Role: model.RoleAdmin}}

	tests := []struct {
		name     string
		sess     *Session
		required model.Role
		want     Decision
	}{
		{"user on user page", userSess, model.RoleUser, Decision{Verdict: Allow}},
		{"admin on admin page", adminSess, model.RoleAdmin, Decision{Verdict: Allow}},
		{"user on admin page", userSess, model.RoleAdmin, Decision{Verdict: Redirect, Target: "/adminlogin"}},
		{"admin on user page", adminSess, model.RoleUser, Decision{Verdict: Redirect, Target: "/login"}},
		{"empty session", emptySess, model.RoleAdmin, Decision{Verdict: Redirect, Target: "/adminlogin"}},
		{"blank marker", blankName, model.RoleAdmin, Decision{Verdict: Redirect, Target: "/adminlogin"}},
		{"no session", nil, model.RoleUser, Decision{Verdict: Redirect, Target: "/login"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decide(tt.sess, tt.required))
		})
	}
}
