package domain

// IdentifierIssuer generates registration IDs and check-in tokens.
type IdentifierIssuer interface {
	// NewRegistrationID returns a short, time-sortable, human-presentable ID.
	NewRegistrationID() (string, error)
	// NewCheckInToken returns a fixed-length, unpredictable token used as the
	// sole check-in credential.
	NewCheckInToken() (string, error)
	// CompanionRegistrationID derives the companion's registration ID from the primary's.
	CompanionRegistrationID(primaryRegistrationID string) string
}
