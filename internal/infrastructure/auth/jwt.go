package auth

import (
	"crypto/rsa"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// TokenVerifier validates RS256 access tokens issued by the external
// auth service. This core never issues tokens; identity is an input.
type TokenVerifier struct {
	publicKey *rsa.PublicKey
	issuer    string
	audience  string
}

type accessClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

func NewTokenVerifier(publicKey *rsa.PublicKey, issuer, audience string) *TokenVerifier {
	return &TokenVerifier{publicKey: publicKey, issuer: issuer, audience: audience}
}

// ValidateAccessToken parses and verifies the token, returning the user
// id and email claims.
func (t *TokenVerifier) ValidateAccessToken(tokenString string) (userID, email string, err error) {
	token, err := jwt.ParseWithClaims(tokenString, &accessClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.publicKey, nil
	}, jwt.WithIssuer(t.issuer), jwt.WithAudience(t.audience))
	if err != nil {
		return "", "", err
	}
	claims, ok := token.Claims.(*accessClaims)
	if !ok || !token.Valid {
		return "", "", errors.New("invalid token claims")
	}
	if claims.UserID == "" {
		return "", "", errors.New("token has no user_id claim")
	}
	return claims.UserID, claims.Email, nil
}
