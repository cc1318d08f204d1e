package session

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Session identifies the agent console session issuing mutations. It exists
// for attribution (journal rows, stale-response keying), not authorization.
type Session struct {
	ID         string
	AgentName  string
	AgentEmail string
}

// Manager issues and validates signed session tokens.
type Manager struct {
	secret []byte
	ttl    time.Duration
}

// NewManager builds a session manager.
func NewManager(secret string, ttlMinutes int) *Manager {
	if ttlMinutes <= 0 {
		ttlMinutes = 480
	}
	return &Manager{secret: []byte(secret), ttl: time.Duration(ttlMinutes) * time.Minute}
}

// Claims describes the session token payload.
type Claims struct {
	AgentName  string `json:"agent_name"`
	AgentEmail string `json:"agent_email,omitempty"`
	jwt.RegisteredClaims
}

// Issue creates a new session and its signed token.
func (m *Manager) Issue(agentName, agentEmail string) (Session, string, time.Time, error) {
	sess := Session{
		ID:         uuid.NewString(),
		AgentName:  agentName,
		AgentEmail: agentEmail,
	}
	expiresAt := time.Now().Add(m.ttl)
	claims := &Claims{
		AgentName:  agentName,
		AgentEmail: agentEmail,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sess.ID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return Session{}, "", time.Time{}, err
	}
	return sess, signed, expiresAt, nil
}

// Parse validates a token and returns the session it names.
func (m *Manager) Parse(tokenStr string) (Session, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil {
		return Session{}, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return Session{}, errors.New("invalid session claims")
	}
	return Session{
		ID:         claims.Subject,
		AgentName:  claims.AgentName,
		AgentEmail: claims.AgentEmail,
	}, nil
}
