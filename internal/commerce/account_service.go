// internal/commerce/account_service.go
package commerce

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/your-org/farmcrate-storefront/internal/pkg/auth"
)

// AccountService implements the OTP and Google login flows for the
// reference API. Users live in memory; the durable account store is out
// of scope.
type AccountService struct {
	mu    sync.Mutex
	users map[string]*User // keyed by phone or email

	otps OTPRepository
	jwt  *auth.JWTManager
	log  *logrus.Entry

	otpTTL time.Duration
}

// NewAccountService creates an account service
func NewAccountService(otps OTPRepository, jwtManager *auth.JWTManager, log *logrus.Logger) *AccountService {
	return &AccountService{
		users:  make(map[string]*User),
		otps:   otps,
		jwt:    jwtManager,
		log:    log.WithField("component", "commerce.account"),
		otpTTL: 5 * time.Minute,
	}
}

// SendOTP issues a one-time code for the phone number. The code is
// returned so development mode can echo it; production delivery (SMS) is
// out of scope for the reference API.
func (s *AccountService) SendOTP(ctx context.Context, phone string) (string, error) {
	if strings.TrimSpace(phone) == "" {
		return "", fmt.Errorf("phone number is required")
	}

	code, err := randomCode()
	if err != nil {
		return "", fmt.Errorf("failed to generate otp: %w", err)
	}

	if err := s.otps.Put(ctx, phone, code, s.otpTTL); err != nil {
		return "", fmt.Errorf("failed to store otp: %w", err)
	}

	s.log.WithField("phone", phone).Info("otp issued")
	return code, nil
}

// VerifyOTP checks a pending code and, on success, returns a token and
// the (possibly newly created) user
func (s *AccountService) VerifyOTP(ctx context.Context, phone, code string) (string, *User, error) {
	stored, ok, err := s.otps.Get(ctx, phone)
	if err != nil {
		return "", nil, err
	}
	if !ok || stored != code {
		return "", nil, fmt.Errorf("invalid or expired code")
	}

	// One-shot: a code never verifies twice.
	if err := s.otps.Delete(ctx, phone); err != nil {
		return "", nil, err
	}

	user := s.upsertUser(phone, "")
	token, err := s.jwt.GenerateAccessToken(user.ID, user.Phone, user.Email)
	if err != nil {
		return "", nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return token, user, nil
}

// ExchangeGoogleToken accepts a Google identity token and returns a
// session token and user. The reference API treats the id token as
// opaque and derives the account email from it in development.
func (s *AccountService) ExchangeGoogleToken(_ context.Context, idToken string) (string, *User, error) {
	if strings.TrimSpace(idToken) == "" {
		return "", nil, fmt.Errorf("id_token is required")
	}

	email := idToken
	if !strings.Contains(email, "@") {
		email = fmt.Sprintf("%s@google.example", idToken[:min(8, len(idToken))])
	}

	user := s.upsertUser("", email)
	token, err := s.jwt.GenerateAccessToken(user.ID, user.Phone, user.Email)
	if err != nil {
		return "", nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return token, user, nil
}

func (s *AccountService) upsertUser(phone, email string) *User {
	key := phone
	if key == "" {
		key = email
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if user, ok := s.users[key]; ok {
		return user
	}
	user := &User{
		ID:        uuid.NewString(),
		Phone:     phone,
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}
	s.users[key] = user
	return user
}

func randomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
