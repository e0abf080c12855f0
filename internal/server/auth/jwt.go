// Package auth implements the signing side of the credential subsystem:
// compact, tamper-evident token strings carrying the subject e-mail, the
// role claim and a credential-type marker.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tatame/backend/internal/common"
	"github.com/tatame/backend/internal/server/models"
)

// Claims extends the registered JWT claims with the role of the subject and
// the credential type the token was minted as. Subject holds the e-mail.
type Claims struct {
	jwt.RegisteredClaims
	Role      models.Role           `json:"role"`
	TokenType models.CredentialType `json:"typ"`
}

// Signer signs and verifies credential strings with a process-wide HS256
// secret. The key is fixed at construction and never reloaded.
type Signer struct {
	secret []byte
}

// NewSigner validates the secret and returns a Signer. An empty secret is a
// configuration error; the caller must treat it as fatal and refuse to start.
func NewSigner(secret []byte) (*Signer, error) {
	if len(secret) == 0 {
		return nil, errors.New("signing secret is empty")
	}
	return &Signer{secret: secret}, nil
}

// Issue produces a signed token string for the subject with an expiry of
// now+ttl. It has no side effects. The id becomes the jti claim; timestamps
// have second granularity, so without it two tokens minted in the same
// second for the same subject would be byte-identical.
func (s *Signer) Issue(id, subject string, role models.Role, typ models.CredentialType, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Role:      role,
		TokenType: typ,
	})

	return token.SignedString(s.secret)
}

// Verify parses and validates a token string. It returns
// common.ErrTokenExpired when the embedded expiry has passed and
// common.ErrTokenMalformed for every other parse or signature failure.
func (s *Signer) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrTokenMalformed
	}
	if !token.Valid || claims.Subject == "" {
		return nil, common.ErrTokenMalformed
	}

	return claims, nil
}
