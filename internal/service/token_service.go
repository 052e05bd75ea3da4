package service

import (
	"fmt"

	"print-wallet-ledger/internal/core/ports"

	"github.com/golang-jwt/jwt/v5"
)

// IdentityTokenService implements ports.TokenService for HS256 JWTs issued
// by the external identity service. This service only validates; issuing
// tokens is the identity service's job.
type IdentityTokenService struct {
	secret []byte
	issuer string
}

// NewIdentityTokenService creates a new identity token validator.
func NewIdentityTokenService(secret string, issuer string) *IdentityTokenService {
	return &IdentityTokenService{
		secret: []byte(secret),
		issuer: issuer,
	}
}

// Validate parses and validates an identity token, returning the claims.
// The token subject is the portal userID.
func (s *IdentityTokenService) Validate(tokenString string) (*ports.IdentityClaims, error) {
	var opts []jwt.ParserOption
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return nil, fmt.Errorf("missing subject claim")
	}

	return &ports.IdentityClaims{UserID: sub}, nil
}
