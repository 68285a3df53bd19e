package application

import (
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/zumo-network/zumokit-core/internal/core/domain"
)

type accessClaims struct {
	userID    string
	expiresAt time.Time
}

// parseAccessToken extracts the user id and expiry of the access token.
// The signature is not verified here, the backend does it on every request.
func parseAccessToken(token string, now time.Time) (*accessClaims, error) {
	if len(token) <= 0 {
		return nil, domain.ErrInvalidArgument.WithMessage("missing access token")
	}

	claims := &jwt.StandardClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
		return nil, domain.ErrInvalidArgument.WithMessage(
			"malformed access token: %s", err,
		)
	}
	if len(claims.Subject) <= 0 {
		return nil, domain.ErrInvalidArgument.WithMessage(
			"access token has no subject",
		)
	}

	parsed := &accessClaims{userID: claims.Subject}
	if claims.ExpiresAt > 0 {
		parsed.expiresAt = time.Unix(claims.ExpiresAt, 0)
		if !now.Before(parsed.expiresAt) {
			return nil, domain.ErrTokenExpired
		}
	}
	return parsed, nil
}
