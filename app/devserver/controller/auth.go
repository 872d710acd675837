package controller

import (
	"adminctl/app/devserver/middleware"
	"adminctl/app/devserver/store"
	"adminctl/app/dto"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rofleksey/meg"
	"github.com/samber/oops"
)

func invalidCredentials() error {
	return oops.
		With("status_code", http.StatusUnauthorized).
		Public("Invalid email or password").
		Errorf("invalid email or password")
}

func (s *Server) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	usr, ok := s.store.UserByEmail(req.Email)
	if !ok {
		s.metrics.CountLogin(dto.LoginStatusFailed)
		return invalidCredentials()
	}

	if !meg.CheckPasswordHash(usr.PasswordHash, req.Password) {
		s.recordLogin(c, usr, dto.LoginStatusFailed)
		return invalidCredentials()
	}

	if !usr.Status.IsActive() {
		s.recordLogin(c, usr, dto.LoginStatusFailed)
		return oops.
			With("status_code", http.StatusForbidden).
			Public("Your account is " + strings.ToLower(usr.Status.Label())).
			Errorf("login of inactive user %d", usr.ID)
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub": strconv.FormatInt(usr.ID, 10),
		"jti": uuid.NewString(),
		"iat": now.Unix(),
		"exp": now.Add(time.Duration(s.cfg.Session.TokenTTL) * time.Hour).Unix(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.DevServer.JWTSecret))
	if err != nil {
		return oops.Errorf("failed to sign token: %w", err)
	}

	s.store.TouchLogin(usr.ID)
	s.recordLogin(c, usr, dto.LoginStatusSuccess)
	s.store.AddActivity(store.Activity{
		LogName:     "auth",
		Event:       "login",
		Description: "Logged in",
		Causer:      &usr,
		SubjectType: "User",
		SubjectID:   usr.ID,
		SubjectName: usr.Name,
	})

	usr, err = s.store.User(usr.ID)
	if err != nil {
		return err
	}

	mapped, err := s.mapUser(usr)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "Login successful", dto.LoginResponse{
		User:  mapped,
		Token: token,
	})
}

func (s *Server) recordLogin(c *fiber.Ctx, usr store.User, status string) {
	s.metrics.CountLogin(status)

	userAgent := c.Get(fiber.HeaderUserAgent)
	device, browser, platform := describeUserAgent(userAgent)

	s.store.AddLogin(dto.LoginHistory{
		UserID:    usr.ID,
		User:      &dto.LoginHistoryUser{ID: usr.ID, Name: usr.Name, Email: usr.Email},
		IPAddress: c.IP(),
		UserAgent: userAgent,
		Device:    device,
		Browser:   browser,
		Platform:  platform,
		Status:    status,
	})
}

func describeUserAgent(userAgent string) (device, browser, platform string) {
	ua := strings.ToLower(userAgent)

	device = "Desktop"
	if strings.Contains(ua, "mobile") || strings.Contains(ua, "android") || strings.Contains(ua, "iphone") {
		device = "Mobile"
	}

	switch {
	case strings.HasPrefix(ua, "adminctl/"):
		browser = "adminctl"
		device = "CLI"
	case strings.Contains(ua, "firefox"):
		browser = "Firefox"
	case strings.Contains(ua, "edg/"):
		browser = "Edge"
	case strings.Contains(ua, "chrome"):
		browser = "Chrome"
	case strings.Contains(ua, "safari"):
		browser = "Safari"
	default:
		browser = "Unknown"
	}

	switch {
	case strings.Contains(ua, "windows"):
		platform = "Windows"
	case strings.Contains(ua, "android"):
		platform = "Android"
	case strings.Contains(ua, "iphone"), strings.Contains(ua, "ipad"):
		platform = "iOS"
	case strings.Contains(ua, "mac os"):
		platform = "macOS"
	case strings.Contains(ua, "linux"):
		platform = "Linux"
	default:
		platform = "Unknown"
	}

	return device, browser, platform
}

func (s *Server) Logout(c *fiber.Ctx) error {
	usr, err := s.currentUser(c)
	if err != nil {
		return err
	}

	if claims, ok := middleware.CurrentClaims(c); ok {
		s.store.Revoke(claims.ID, claims.ExpiresAt)
	}

	s.store.CloseLogin(usr.ID)
	s.store.AddActivity(store.Activity{
		LogName:     "auth",
		Event:       "logout",
		Description: "Logged out",
		Causer:      &usr,
		SubjectType: "User",
		SubjectID:   usr.ID,
		SubjectName: usr.Name,
	})

	return respond(c, http.StatusOK, "Logged out", nil)
}

func (s *Server) Me(c *fiber.Ctx) error {
	usr, err := s.currentUser(c)
	if err != nil {
		return err
	}

	mapped, err := s.mapUser(usr)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "ok", mapped)
}

func (s *Server) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	hash, err := meg.HashPassword(req.Password)
	if err != nil {
		return oops.Errorf("HashPassword: %w", err)
	}

	usr, err := s.store.SaveUser(store.User{
		Name:         req.Name,
		Email:        req.Email,
		UserType:     dto.DefaultUserType,
		Status:       dto.UserStatusActive,
		PasswordHash: hash,
	})
	if err != nil {
		return err
	}

	s.issueVerifyToken(c, usr.Email)
	s.store.AddActivity(store.Activity{
		LogName:     "auth",
		Event:       "created",
		Description: "Registered",
		Causer:      &usr,
		SubjectType: "User",
		SubjectID:   usr.ID,
		SubjectName: usr.Name,
	})

	mapped, err := s.mapUser(usr)
	if err != nil {
		return err
	}

	return respond(c, http.StatusCreated, "Registration successful. Please verify your email.", mapped)
}

func (s *Server) issueVerifyToken(c *fiber.Ctx, email string) {
	token := uuid.NewString()
	s.store.SetVerifyToken(email, token)

	slog.InfoContext(c.UserContext(), "Email verification token issued",
		slog.String("email", email),
		slog.String("token", token),
	)
}

func (s *Server) ForgotPassword(c *fiber.Ctx) error {
	var req dto.ForgotPasswordRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	if usr, ok := s.store.UserByEmail(req.Email); ok {
		token := uuid.NewString()
		s.store.SetResetToken(usr.Email, token)

		slog.InfoContext(c.UserContext(), "Password reset token issued",
			slog.String("email", usr.Email),
			slog.String("token", token),
		)
	}

	return respond(c, http.StatusOK, "If the email exists, a reset link has been sent.", nil)
}

func (s *Server) ResetPassword(c *fiber.Ctx) error {
	var req dto.ResetPasswordRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	usr, ok := s.store.UserByEmail(req.Email)
	if !ok || !s.store.ConsumeResetToken(req.Email, req.Token) {
		return fieldError("token", "This password reset token is invalid.")
	}

	if err := s.setPassword(usr, req.Password); err != nil {
		return err
	}

	return respond(c, http.StatusOK, "Password has been reset.", nil)
}

func (s *Server) ChangePassword(c *fiber.Ctx) error {
	usr, err := s.currentUser(c)
	if err != nil {
		return err
	}

	var req dto.ChangePasswordRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	if !meg.CheckPasswordHash(usr.PasswordHash, req.CurrentPassword) {
		return fieldError("current_password", "The current password is incorrect.")
	}

	if err := s.setPassword(usr, req.Password); err != nil {
		return err
	}

	return respond(c, http.StatusOK, "Password changed.", nil)
}

func (s *Server) setPassword(usr store.User, password string) error {
	hash, err := meg.HashPassword(password)
	if err != nil {
		return oops.Errorf("HashPassword: %w", err)
	}

	usr.PasswordHash = hash
	if _, err := s.store.SaveUser(usr); err != nil {
		return err
	}

	return nil
}

func (s *Server) VerifyEmail(c *fiber.Ctx) error {
	var req dto.VerifyEmailRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	usr, ok := s.store.UserByEmail(req.Email)
	if !ok || !s.store.ConsumeVerifyToken(req.Email, req.Token) {
		return fieldError("token", "This verification link is invalid.")
	}

	usr.IsVerified = true
	if _, err := s.store.SaveUser(usr); err != nil {
		return err
	}

	return respond(c, http.StatusOK, "Email verified.", nil)
}

func (s *Server) ResendVerification(c *fiber.Ctx) error {
	var req dto.ResendVerificationRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	if usr, ok := s.store.UserByEmail(req.Email); ok && !usr.IsVerified {
		s.issueVerifyToken(c, usr.Email)
	}

	return respond(c, http.StatusOK, "If the email needs verification, a new link has been sent.", nil)
}

func (s *Server) UpdateProfile(c *fiber.Ctx) error {
	usr, err := s.currentUser(c)
	if err != nil {
		return err
	}

	var req dto.ProfileForm
	if err := bind(c, &req); err != nil {
		return err
	}

	usr.Name = req.Name
	usr.Email = req.Email
	usr.Phone = req.Phone
	usr.Bio = req.Bio
	usr.Timezone = req.Timezone
	usr.Language = req.Language

	saved, err := s.store.SaveUser(usr)
	if err != nil {
		return err
	}

	mapped, err := s.mapUser(saved)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, "Profile updated.", mapped)
}
