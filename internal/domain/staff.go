package domain

import "time"

// RoleStaff is the role a bearer token must carry to cancel registrations or check guests in.
const RoleStaff = "staff"

// TokenIssuer issues signed bearer tokens for staff members.
type TokenIssuer interface {
	Issue(subject string, roles []string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a bearer token and returns its subject.
type TokenVerifier interface {
	Verify(token string) (subject string, err error)
}
