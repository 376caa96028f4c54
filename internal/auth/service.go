package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 8 * time.Hour

var (
	ErrInvalidCredentials = errors.New("incorrect username or password")
	ErrInvalidToken       = errors.New("invalid authentication credentials")
)

// Credentials holds the admin account the service authenticates against.
// PasswordHash is a bcrypt hash, not a plaintext password.
type Credentials struct {
	Username     string
	PasswordHash string
}

type Service struct {
	creds  Credentials
	secret []byte
	log    *logrus.Logger
	now    func() time.Time
}

func NewService(creds Credentials, secret string, log *logrus.Logger) *Service {
	return &Service{
		creds:  creds,
		secret: []byte(secret),
		log:    log,
		now:    time.Now,
	}
}

// Login checks the admin credentials and mints an HS256 token valid for 8 hours.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	if username != s.creds.Username {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.creds.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": username,
		"exp": s.now().Add(tokenTTL).Unix(),
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", err
	}

	s.log.WithField("username", username).Info("admin logged in")
	return signed, nil
}

// VerifyToken parses and validates a bearer token, returning the subject claim.
func (s *Service) VerifyToken(ctx context.Context, tokenStr string) (string, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return s.now() }))
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", ErrInvalidToken
	}
	return sub, nil
}
