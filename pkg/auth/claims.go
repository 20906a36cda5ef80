package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// RoleAdmin is the only role the back office issues tokens for.
const RoleAdmin = "admin"

// AdminTokenPayload captures the data available when minting a JWT.
type AdminTokenPayload struct {
	Username string
	JTI      string
}

// AdminTokenClaims represents the typed JWT issued to the back office client.
type AdminTokenClaims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}
