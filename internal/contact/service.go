package contact

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/blastmusic247/blast-gear-full/internal/domain"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrCaptchaNotConfigured = errors.New("captcha configuration missing")
	ErrCaptchaFailed        = errors.New("captcha verification failed")
	ErrIncompleteForm       = errors.New("name, email and message are required")
)

// CaptchaVerifier checks a client captcha token with the captcha provider.
type CaptchaVerifier interface {
	Verify(ctx context.Context, token string) (bool, error)
}

// HCaptchaVerifier talks to hcaptcha.com's siteverify endpoint.
type HCaptchaVerifier struct {
	secret string
	client *http.Client
}

func NewHCaptchaVerifier(secret string) *HCaptchaVerifier {
	return &HCaptchaVerifier{
		secret: secret,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (h *HCaptchaVerifier) Verify(ctx context.Context, token string) (bool, error) {
	form := url.Values{}
	form.Set("secret", h.secret)
	form.Set("response", token)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		"https://hcaptcha.com/siteverify", strings.NewReader(form.Encode()))
	if err != nil {
		return false, fmt.Errorf("build captcha request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := h.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("captcha request failed: %w", err)
	}
	defer resp.Body.Close()

	var result struct {
		Success bool `json:"success"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, fmt.Errorf("decode captcha response: %w", err)
	}
	return result.Success, nil
}

type Form struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Message       string `json:"message"`
	HCaptchaToken string `json:"hcaptchaToken"`
}

type Service struct {
	verifier      CaptchaVerifier
	messages      *mongo.Collection
	log           *logrus.Logger
	hasCaptchaKey bool
}

func NewService(verifier CaptchaVerifier, db *mongo.Database, hasCaptchaKey bool, log *logrus.Logger) *Service {
	var messages *mongo.Collection
	if db != nil {
		messages = db.Collection("contact_messages")
	}
	return &Service{
		verifier:      verifier,
		messages:      messages,
		log:           log,
		hasCaptchaKey: hasCaptchaKey,
	}
}

// Submit verifies the captcha and records the message. Persisting the
// message is best-effort; the shopper already passed the captcha and should
// not see an error because Mongo hiccupped.
func (s *Service) Submit(ctx context.Context, form Form) error {
	if !s.hasCaptchaKey {
		return ErrCaptchaNotConfigured
	}
	if strings.TrimSpace(form.Name) == "" || strings.TrimSpace(form.Email) == "" || strings.TrimSpace(form.Message) == "" {
		return ErrIncompleteForm
	}

	ok, err := s.verifier.Verify(ctx, form.HCaptchaToken)
	if err != nil {
		s.log.WithError(err).Error("captcha verification error")
		return ErrCaptchaFailed
	}
	if !ok {
		return ErrCaptchaFailed
	}

	if s.messages != nil {
		msg := domain.ContactMessage{
			ID:        uuid.NewString(),
			Name:      form.Name,
			Email:     form.Email,
			Message:   form.Message,
			CreatedAt: time.Now(),
		}
		if _, err := s.messages.InsertOne(ctx, msg); err != nil {
			s.log.WithError(err).Error("failed to store contact message")
		}
	}

	s.log.WithFields(logrus.Fields{
		"name":  form.Name,
		"email": form.Email,
	}).Info("contact form submitted")
	return nil
}
