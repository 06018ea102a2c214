package auth

import (
	"context"

	"go.uber.org/zap"
)

// Notifier delivers best-effort account notifications. Implementations
// must be safe for concurrent use; delivery failures are logged by the
// caller and never surfaced to the user.
type Notifier interface {
	Welcome(email, name string) error
	PasswordReset(email, token string) error
	Event(name string, payload map[string]interface{})
}

// Service is the thin orchestration layer over the identity provider:
// shape validation, taxonomy mapping, detached notifications. Every
// method converts failures into the uniform Result, never panics or
// throws past its boundary.
type Service struct {
	provider IdentityProvider
	notifier Notifier
}

func NewService(provider IdentityProvider, notifier Notifier) *Service {
	return &Service{provider: provider, notifier: notifier}
}

// SignInData is returned on successful sign-in.
type SignInData struct {
	Identity *Identity `json:"identity"`
	Token    string    `json:"token"`
}

func (s *Service) notify(task func() error, what string) {
	if s.notifier == nil {
		return
	}
	go func() {
		defer func() {
			if err := recover(); err != nil {
				zap.S().Error("notification panic: ", err)
			}
		}()
		if err := task(); err != nil {
			zap.L().Warn("notification failed", zap.String("kind", what), zap.Error(err))
		}
	}()
}

func (s *Service) SignIn(ctx context.Context, creds Credentials) Result {
	if creds.Email == "" || creds.Password == "" {
		return Fail(NewError(CodeInvalidInput, "email and password are required"))
	}
	identity, token, err := s.provider.SignIn(ctx, creds)
	if err != nil {
		zap.L().Info("sign-in rejected", zap.String("email", creds.Email), zap.String("code", AsError(err).Code))
		return Fail(err)
	}
	return Ok(SignInData{Identity: identity, Token: token})
}

func (s *Service) SignUp(ctx context.Context, in SignUpInput) Result {
	if in.Email == "" || in.Password == "" || in.Username == "" {
		return Fail(NewError(CodeInvalidInput, "email, username and password are required"))
	}
	identity, err := s.provider.SignUp(ctx, in)
	if err != nil {
		return Fail(err)
	}
	s.notify(func() error { return s.notifier.Welcome(identity.Email, identity.Username) }, "welcome")
	if s.notifier != nil {
		s.notifier.Event("user.signup", map[string]interface{}{
			"email":    identity.Email,
			"username": identity.Username,
		})
	}
	return Ok(identity)
}

func (s *Service) SignOut(ctx context.Context, token string) Result {
	if token == "" {
		return Fail(NewError(CodeTokenInvalid, "missing token"))
	}
	if err := s.provider.SignOut(ctx, token); err != nil {
		return Fail(err)
	}
	return Ok(map[string]interface{}{"signed_out": true})
}

func (s *Service) GetCurrentUser(ctx context.Context, token string) Result {
	if token == "" {
		return Fail(NewError(CodeTokenInvalid, "missing token"))
	}
	identity, err := s.provider.GetCurrentUser(ctx, token)
	if err != nil {
		return Fail(err)
	}
	return Ok(identity)
}

// ResetPassword always reports success for unknown emails after logging,
// so the endpoint does not leak which addresses have accounts. The reset
// token travels by email only.
func (s *Service) ResetPassword(ctx context.Context, email string) Result {
	if email == "" {
		return Fail(NewError(CodeInvalidInput, "email is required"))
	}
	token, err := s.provider.ResetPassword(ctx, email)
	if err != nil {
		if AsError(err).Code == CodeUserNotFound {
			zap.L().Info("password reset for unknown email", zap.String("email", email))
			return Ok(map[string]interface{}{"sent": true})
		}
		return Fail(err)
	}
	s.notify(func() error { return s.notifier.PasswordReset(email, token) }, "password_reset")
	return Ok(map[string]interface{}{"sent": true})
}

func (s *Service) ConfirmPasswordReset(ctx context.Context, token, newPassword string) Result {
	if token == "" || newPassword == "" {
		return Fail(NewError(CodeInvalidInput, "token and new password are required"))
	}
	if err := s.provider.ConfirmPasswordReset(ctx, token, newPassword); err != nil {
		return Fail(err)
	}
	return Ok(map[string]interface{}{"reset": true})
}
