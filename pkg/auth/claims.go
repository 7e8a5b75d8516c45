package auth

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/storefront/storefront-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID  string
	StoreID *int64
	Role    enums.UserRole
	JTI     string
}

// AccessTokenClaims represents the typed JWT shared with the storefront
// backend. StoreID pins a signed-in user to their store; Role is empty for
// plain shoppers.
type AccessTokenClaims struct {
	UserID  string         `json:"user_id"`
	StoreID *int64         `json:"store_id,omitempty"`
	Role    enums.UserRole `json:"role,omitempty"`
	jwt.RegisteredClaims
}
