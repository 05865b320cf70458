// Package auth implements the stateless access token codec: HS256-signed
// JWTs carrying the subject and role claims. Validity is signature + expiry
// only; there is no revocation list, which is why the access TTL stays short
// and the refresh token store carries the revocable half of the pair.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/trainerhub/portal/internal/common"
)

// Claims carries the registered claims plus the portal's role list.
type Claims struct {
	jwt.RegisteredClaims
	Roles []string `json:"roles,omitempty"`
}

// GenerateToken mints a signed access token for subject with the given roles,
// valid from now for validityDuration.
func GenerateToken(subject string, roles []string, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		Roles: roles,
	})

	return token.SignedString(secretKey)
}

// ParseToken validates tokenString and returns its claims. Failures map to
// common.ErrTokenExpired, common.ErrTokenUnsupported (non-HMAC algorithm), or
// common.ErrTokenMalformed (bad signature, garbage input, wrong shape).
func ParseToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, common.ErrTokenUnsupported
		}
		return secretKey, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, common.ErrTokenUnsupported):
			return nil, common.ErrTokenUnsupported
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, common.ErrTokenExpired
		default:
			return nil, common.ErrTokenMalformed
		}
	}

	if !token.Valid {
		return nil, common.ErrTokenMalformed
	}

	return claims, nil
}
