// internal/account/service.go
package account

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/your-org/farmcrate-storefront/internal/gateway"
	"github.com/your-org/farmcrate-storefront/internal/identity"
)

// User is the authenticated principal returned by the auth endpoints
type User struct {
	ID    string `json:"id"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}

// Service drives the client-side login flows. On success the identity
// resolver is updated with the issued credential; callers observe the
// change through the gateway on their next protected request.
type Service struct {
	gw       *gateway.Gateway
	resolver *identity.Resolver
	log      *logrus.Entry
}

// tokenPayload is the wire shape of a successful auth exchange
type tokenPayload struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// NewService creates an account service
func NewService(gw *gateway.Gateway, resolver *identity.Resolver, log *logrus.Logger) *Service {
	return &Service{
		gw:       gw,
		resolver: resolver,
		log:      log.WithField("component", "account"),
	}
}

// SendOTP requests a one-time code for the given phone number. In
// development mode the server echoes the code back; it is returned so a
// dev flow can complete the login loop without an SMS provider.
func (s *Service) SendOTP(ctx context.Context, phone string) (string, error) {
	body := map[string]string{"phone": phone}

	var payload struct {
		Code string `json:"code"`
	}
	if err := s.gw.Post(ctx, "/auth/send-otp", body, false, &payload); err != nil {
		return "", err
	}
	return payload.Code, nil
}

// VerifyOTP exchanges a one-time code for a credential and installs it
func (s *Service) VerifyOTP(ctx context.Context, phone, code string) (*User, error) {
	body := map[string]string{"phone": phone, "code": code}

	var payload tokenPayload
	if err := s.gw.Post(ctx, "/auth/verify-otp", body, false, &payload); err != nil {
		return nil, err
	}

	s.resolver.SetAuthToken(payload.Token)
	s.log.WithField("user_id", payload.User.ID).Info("logged in via OTP")
	return &payload.User, nil
}

// LoginWithGoogle exchanges a Google identity token for a credential
func (s *Service) LoginWithGoogle(ctx context.Context, idToken string) (*User, error) {
	body := map[string]string{"id_token": idToken}

	var payload tokenPayload
	if err := s.gw.Post(ctx, "/auth/google", body, false, &payload); err != nil {
		return nil, err
	}

	s.resolver.SetAuthToken(payload.Token)
	s.log.WithField("user_id", payload.User.ID).Info("logged in via Google")
	return &payload.User, nil
}

// Logout clears the active credential. The session id is kept so the
// anonymous cart grouping survives.
func (s *Service) Logout() {
	s.resolver.ClearAuthToken()
}
