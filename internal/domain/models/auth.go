package models

import "github.com/golang-jwt/jwt/v5"

// Claims is the JWT claim set issued by the studio login service.
type Claims struct {
	jwt.RegisteredClaims        // sub, iss, aud, exp, iat
	Email                string `json:"email"`
	Name                 string `json:"user_name"`
	Role                 string `json:"role"` // owner, admin, member
}

// Principal returns the email used for drive authorization.
// Falls back to the subject when the email claim is absent.
func (c *Claims) Principal() string {
	if c.Email != "" {
		return c.Email
	}
	return c.Subject
}
