package usecases

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// AuthUsecase guards the admin dashboard. There is no user database for the
// panel: a single administrator account comes from configuration and logins
// are exchanged for a short-lived JWT.
type AuthUsecase struct {
	adminUser    string
	passwordHash []byte
	jwtSecret    []byte
}

func NewAuthUsecase(adminUser, adminPassword, secret string) (*AuthUsecase, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}
	return &AuthUsecase{
		adminUser:    adminUser,
		passwordHash: hash,
		jwtSecret:    []byte(secret),
	}, nil
}

func (uc *AuthUsecase) Login(username, password string) (string, error) {
	if username != uc.adminUser {
		return "", errors.New("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword(uc.passwordHash, []byte(password)); err != nil {
		return "", errors.New("invalid credentials")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  username,
		"role": "admin",
		"exp":  time.Now().Add(time.Hour * 24).Unix(),
	})

	tokenString, err := token.SignedString(uc.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %v", err)
	}
	return tokenString, nil
}
