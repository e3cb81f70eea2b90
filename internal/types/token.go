package types

import "github.com/golang-jwt/jwt/v5"

// TokenClaims represents the claims in a JWT token. The registered ID
// (jti) is what logout revokes.
type TokenClaims struct {
	jwt.RegisteredClaims
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
}
