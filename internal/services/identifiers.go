package services

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"

	"guestregistration/internal/domain"
)

const (
	registrationIDPrefix = "REG-"
	checkInTokenBytes    = 16
)

type identifierIssuer struct {
	node *snowflake.Node
}

// NewIdentifierIssuer returns an issuer whose registration IDs are snowflake
// IDs scoped to nodeID (0-1023). Each replica should use its own node ID.
func NewIdentifierIssuer(nodeID int64) (domain.IdentifierIssuer, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("snowflake node %d: %w", nodeID, err)
	}
	return &identifierIssuer{node: node}, nil
}

func (i *identifierIssuer) NewRegistrationID() (string, error) {
	return registrationIDPrefix + strings.ToUpper(i.node.Generate().Base36()), nil
}

// NewCheckInToken returns 32 hex characters from crypto/rand. It carries no
// information about the registrant.
func (i *identifierIssuer) NewCheckInToken() (string, error) {
	b := make([]byte, checkInTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate check-in token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func (i *identifierIssuer) CompanionRegistrationID(primaryRegistrationID string) string {
	return primaryRegistrationID + domain.CompanionRegistrationSuffix
}
