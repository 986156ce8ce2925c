// Package identity issues anonymous participant identities. A participant
// id is a random uuid carried in a signed token, so a reconnecting client
// can prove it is the same seat without accounts.
package identity

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrSecretMissing = errors.New("identity secret is not set")
	ErrInvalidToken  = errors.New("invalid identity token")
)

type Claims struct {
	ParticipantID string `json:"pid"`
	jwt.RegisteredClaims
}

type Identity struct {
	ParticipantID string    `json:"participantId"`
	Token         string    `json:"token"`
	ExpiresAt     time.Time `json:"expiresAt"`
}

type Issuer struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func NewIssuer(secret string, ttl time.Duration) (*Issuer, error) {
	if secret == "" {
		return nil, ErrSecretMissing
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Issuer{key: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// IssueAnonymous mints a fresh participant id and its token.
func (i *Issuer) IssueAnonymous() (Identity, error) {
	return i.Issue(uuid.NewString())
}

// Issue signs a token for an existing participant id, e.g. to refresh it.
func (i *Issuer) Issue(participantID string) (Identity, error) {
	if _, err := uuid.Parse(participantID); err != nil {
		return Identity{}, ErrInvalidToken
	}
	now := i.now()
	exp := now.Add(i.ttl)
	claims := &Claims{
		ParticipantID: participantID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   participantID,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.key)
	if err != nil {
		return Identity{}, err
	}
	return Identity{ParticipantID: participantID, Token: token, ExpiresAt: exp}, nil
}

// Parse validates the token and returns the participant id it carries.
func (i *Issuer) Parse(tokenStr string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return i.key, nil
	}, jwt.WithTimeFunc(i.now))
	if err != nil {
		return "", errors.Join(ErrInvalidToken, err)
	}
	if token == nil || !token.Valid || claims.ParticipantID == "" {
		return "", ErrInvalidToken
	}
	return claims.ParticipantID, nil
}
