package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"swadiq-lms/app/models"
)

type JWTClaims struct {
	UserID    string   `json:"user_id"`
	Email     string   `json:"email"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Roles     []string `json:"roles"`
	jwt.RegisteredClaims
}

// Actor converts verified claims into the caller identity used by the services
func (c *JWTClaims) Actor() *models.Actor {
	roles := make([]models.Role, len(c.Roles))
	for i, name := range c.Roles {
		roles[i] = models.Role(name)
	}
	return &models.Actor{
		ID:        c.UserID,
		Email:     c.Email,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Roles:     roles,
	}
}

// GenerateJWT issues a token in the identity provider's format. Used by tooling and tests.
func GenerateJWT(secret string, actor *models.Actor, ttl time.Duration) (string, error) {
	roles := make([]string, len(actor.Roles))
	for i, r := range actor.Roles {
		roles[i] = string(r)
	}
	claims := JWTClaims{
		UserID:    actor.ID,
		Email:     actor.Email,
		FirstName: actor.FirstName,
		LastName:  actor.LastName,
		Roles:     roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "swadiq-lms",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ValidateJWT(secret, tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid && claims.UserID != "" {
		return claims, nil
	}

	return nil, jwt.ErrInvalidKey
}
