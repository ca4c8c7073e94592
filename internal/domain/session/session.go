package session

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/kailas-cloud/creatorscout/internal/domain"
)

// Ref identifies one conversation session of one user.
type Ref struct {
	UserID    string
	SessionID string
}

// New validates and creates a Ref.
func New(userID, sessionID string) (Ref, error) {
	userID = strings.TrimSpace(userID)
	sessionID = strings.TrimSpace(sessionID)
	if userID == "" || sessionID == "" {
		return Ref{}, fmt.Errorf("%w: user_id and session_id are required", domain.ErrInvalidRequest)
	}
	return Ref{UserID: userID, SessionID: sessionID}, nil
}

// DocID returns the ledger document id.
func (r Ref) DocID() string { return r.UserID + "_" + r.SessionID }

// IsZero reports whether the ref carries no session.
func (r Ref) IsZero() bool { return r.UserID == "" && r.SessionID == "" }

// FromRequest builds a Ref from optional request fields. No user means no
// session; a user without a session id gets a fresh one.
func FromRequest(userID, sessionID string) (Ref, error) {
	userID = strings.TrimSpace(userID)
	sessionID = strings.TrimSpace(sessionID)
	if userID == "" {
		if sessionID != "" {
			return Ref{}, fmt.Errorf("%w: session_id requires user_id", domain.ErrInvalidRequest)
		}
		return Ref{}, nil
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	return New(userID, sessionID)
}
