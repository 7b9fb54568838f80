package auth

import "coursehub/internal/model"

// Verdict is the outcome of an access decision.
type Verdict int

const (
	Allow Verdict = iota
	Redirect
)

func (v Verdict) String() string {
	if v == Allow {
		return "allow"
	}
	return "redirect"
}

// Decision is what the guard concluded and, for Redirect, where to send the client.
type Decision struct {
	Verdict Verdict
	Target  string
}

// Decide allows access only when the session carries the marker for the
// required role. Missing or foreign sessions are redirected to the role's login page.
func Decide(sess *Session, required model.Role) Decision {
	if _, ok := sess.Marker(required); ok {
		return Decision{Verdict: Allow}
	}
	return Decision{Verdict: Redirect, Target: required.LoginPath()}
}
