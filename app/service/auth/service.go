package auth

import (
	"adminctl/app/client/api"
	"adminctl/app/dto"
	"adminctl/app/service/session"
	"adminctl/app/util/telemetry"
	"context"
	"log/slog"

	"github.com/samber/do"
	"github.com/samber/oops"
	"go.opentelemetry.io/otel/attribute"
)

var serviceName = "auth"

const (
	pathLogin              = "auth/login"
	pathRegister           = "auth/register"
	pathLogout             = "auth/logout"
	pathMe                 = "me"
	pathForgotPassword     = "auth/forgot-password"
	pathResetPassword      = "auth/reset-password"
	pathChangePassword     = "auth/change-password"
	pathVerifyEmail        = "auth/verify-email"
	pathResendVerification = "auth/resend-verification"
	pathProfile            = "auth/profile"
)

type Service struct {
	client  *api.Client
	store   *session.Store
	tracing *telemetry.Tracing
}

func New(di *do.Injector) (*Service, error) {
	return &Service{
		client:  do.MustInvoke[*api.Client](di),
		store:   do.MustInvoke[*session.Store](di),
		tracing: do.MustInvoke[*telemetry.Tracing](di),
	}, nil
}

// FetchMe loads the current user with its flattened permissions.
func (s *Service) FetchMe(ctx context.Context) (*dto.User, error) {
	ctx, span := s.tracing.StartServiceSpan(ctx, serviceName, "fetch_me")
	defer span.End()

	env, err := s.client.Get(ctx, pathMe, nil)
	if err != nil {
		return nil, s.tracing.Error(span, oops.Errorf("client.Get: %w", err))
	}

	user, err := api.Decode[dto.User](env)
	if err != nil {
		return nil, s.tracing.Error(span, err)
	}

	s.tracing.Success(span)

	return &user, nil
}

// RefreshUserInfo re-reads the user from the server. Failures are logged
// and the previous snapshot stays in place.
func (s *Service) RefreshUserInfo(ctx context.Context) error {
	if err := s.store.RefreshUserInfo(ctx, s); err != nil {
		slog.WarnContext(ctx, "Failed to refresh user info",
			slog.Any("error", err),
		)

		return err
	}

	return nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*dto.User, error) {
	ctx, span := s.tracing.StartServiceSpan(ctx, serviceName, "login")
	defer span.End()

	span.SetAttributes(attribute.String("email", email))

	req := dto.LoginRequest{Email: email, Password: password}
	if err := api.Validate(&req); err != nil {
		return nil, s.tracing.Error(span, err)
	}

	env, err := s.client.Post(ctx, pathLogin, req)
	if err != nil {
		return nil, s.tracing.Error(span, oops.Errorf("client.Post: %w", err))
	}

	resp, err := api.Decode[dto.LoginResponse](env)
	if err != nil {
		return nil, s.tracing.Error(span, err)
	}
	if resp.Token == "" {
		return nil, s.tracing.Error(span, oops.
			Public(api.MsgErrorInResponse).
			Errorf("login response without token"))
	}

	if err := s.store.SetUserInfo(&resp.User); err != nil {
		return nil, s.tracing.Error(span, oops.Errorf("SetUserInfo: %w", err))
	}
	if err := s.store.SetToken(resp.Token); err != nil {
		return nil, s.tracing.Error(span, oops.Errorf("SetToken: %w", err))
	}

	s.tracing.Success(span)

	return &resp.User, nil
}

// Logout tells the backend (best effort) and clears the local session.
func (s *Service) Logout(ctx context.Context) error {
	ctx, span := s.tracing.StartServiceSpan(ctx, serviceName, "logout")
	defer span.End()

	if s.store.HasToken() {
		if _, err := s.client.Post(ctx, pathLogout, nil); err != nil {
			slog.WarnContext(ctx, "Backend logout failed",
				slog.Any("error", err),
			)
		}
	}

	if err := s.store.Logout(); err != nil {
		return s.tracing.Error(span, oops.Errorf("store.Logout: %w", err))
	}

	s.tracing.Success(span)

	return nil
}

func (s *Service) Register(ctx context.Context, req *dto.RegisterRequest) error {
	return s.send(ctx, "register", pathRegister, req)
}

func (s *Service) ForgotPassword(ctx context.Context, req *dto.ForgotPasswordRequest) error {
	return s.send(ctx, "forgot_password", pathForgotPassword, req)
}

func (s *Service) ResetPassword(ctx context.Context, req *dto.ResetPasswordRequest) error {
	return s.send(ctx, "reset_password", pathResetPassword, req)
}

func (s *Service) VerifyEmail(ctx context.Context, req *dto.VerifyEmailRequest) error {
	return s.send(ctx, "verify_email", pathVerifyEmail, req)
}

func (s *Service) ResendVerification(ctx context.Context, req *dto.ResendVerificationRequest) error {
	return s.send(ctx, "resend_verification", pathResendVerification, req)
}

func (s *Service) ChangePassword(ctx context.Context, req *dto.ChangePasswordRequest) error {
	return s.send(ctx, "change_password", pathChangePassword, req)
}

// UpdateProfile saves the profile and replaces the session snapshot with
// the returned user.
func (s *Service) UpdateProfile(ctx context.Context, req *dto.ProfileForm) (*dto.User, error) {
	ctx, span := s.tracing.StartServiceSpan(ctx, serviceName, "update_profile")
	defer span.End()

	if err := api.Validate(req); err != nil {
		return nil, s.tracing.Error(span, err)
	}

	env, err := s.client.Put(ctx, pathProfile, req)
	if err != nil {
		return nil, s.tracing.Error(span, oops.Errorf("client.Put: %w", err))
	}

	user, err := api.Decode[*dto.User](env)
	if err != nil {
		return nil, s.tracing.Error(span, err)
	}
	if user == nil {
		if err := s.RefreshUserInfo(ctx); err != nil {
			return nil, s.tracing.Error(span, err)
		}

		s.tracing.Success(span)

		return s.store.UserInfo(), nil
	}

	if err := s.store.SetUserInfo(user); err != nil {
		return nil, s.tracing.Error(span, oops.Errorf("SetUserInfo: %w", err))
	}

	s.tracing.Success(span)

	return user, nil
}

func (s *Service) send(ctx context.Context, operation, path string, payload any) error {
	ctx, span := s.tracing.StartServiceSpan(ctx, serviceName, operation)
	defer span.End()

	if err := api.Validate(payload); err != nil {
		return s.tracing.Error(span, err)
	}

	if _, err := s.client.Post(ctx, path, payload); err != nil {
		return s.tracing.Error(span, oops.Errorf("client.Post: %w", err))
	}

	s.tracing.Success(span)

	return nil
}
