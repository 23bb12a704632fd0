package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/rodhonsys/saude-escolar-api/internal/model"
)

// JWTService issues and validates access tokens. The session id baked into
// the claims is the advisory single-login token persisted on the account.
type JWTService interface {
	GenerateAccessToken(acct *model.UserAccount, sessionID string) (string, error)
	ValidateToken(token string) (*model.TokenClaims, error)
}

type jwtService struct {
	secret []byte
	expiry time.Duration
}

func NewJWTService(secret string, expiryHours int) JWTService {
	if expiryHours <= 0 {
		expiryHours = 24
	}
	return &jwtService{
		secret: []byte(secret),
		expiry: time.Duration(expiryHours) * time.Hour,
	}
}

func (s *jwtService) GenerateAccessToken(acct *model.UserAccount, sessionID string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id":    acct.UID.String(),
		"email":      acct.Email,
		"role":       acct.Role,
		"session_id": sessionID,
		"iat":        now.Unix(),
		"exp":        now.Add(s.expiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *jwtService) ValidateToken(tokenStr string) (*model.TokenClaims, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	userID, ok := claims["user_id"].(string)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}
	parsed, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID in token")
	}

	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)
	sessionID, _ := claims["session_id"].(string)

	return &model.TokenClaims{
		UserID:    parsed,
		Email:     email,
		Role:      role,
		SessionID: sessionID,
	}, nil
}

// NewSessionID mints the opaque token stored on the account at login. A
// fresh login unconditionally overwrites the previous one; last write
// wins.
func NewSessionID() string {
	return fmt.Sprintf("sess_%s", uuid.New().String())
}
