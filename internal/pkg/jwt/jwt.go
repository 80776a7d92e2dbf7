package jwt

import (
	"errors"
	"time"

	"github.com/cmlabs-hris/hris-timesheet/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const TokenTypeAccess = "access"

var ErrInvalidToken = errors.New("invalid or expired token")

// AccessClaims are the identity fields carried by an access token
type AccessClaims struct {
	UserID     string
	EmployeeID string
	Role       user.Role
}

type Service interface {
	GenerateAccessToken(userID string, employeeID string, role user.Role) (token string, expiresAt int64, err error)
	ParseAccessToken(tokenString string) (AccessClaims, error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	accessTokenExpiration time.Duration
	tokenAuth             *jwtauth.JWTAuth
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string, accessTokenExpiration time.Duration) Service {
	return &JWTService{
		accessTokenExpiration: accessTokenExpiration,
		tokenAuth:             jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

func (j *JWTService) GenerateAccessToken(userID string, employeeID string, role user.Role) (token string, expiresAt int64, err error) {
	expiresAt = time.Now().Add(j.accessTokenExpiration).Unix()

	claims := map[string]interface{}{
		"user_id":     userID,
		"employee_id": employeeID,
		"role":        string(role),
		"type":        TokenTypeAccess,
		"exp":         expiresAt,
	}

	_, tokenString, err := j.tokenAuth.Encode(claims)
	return tokenString, expiresAt, err
}

// ParseAccessToken verifies the signature and expiry and returns the identity claims
func (j *JWTService) ParseAccessToken(tokenString string) (AccessClaims, error) {
	token, err := jwtauth.VerifyToken(j.tokenAuth, tokenString)
	if err != nil {
		return AccessClaims{}, ErrInvalidToken
	}

	if tokenType, ok := token.Get("type"); !ok || tokenType != TokenTypeAccess {
		return AccessClaims{}, ErrInvalidToken
	}

	claims := AccessClaims{}
	if v, ok := token.Get("user_id"); ok {
		claims.UserID, _ = v.(string)
	}
	if v, ok := token.Get("employee_id"); ok {
		claims.EmployeeID, _ = v.(string)
	}
	if v, ok := token.Get("role"); ok {
		role, _ := v.(string)
		claims.Role = user.Role(role)
	}
	if !claims.Role.IsValid() {
		return AccessClaims{}, ErrInvalidToken
	}

	return claims, nil
}
