package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"trading_academy_backend/internal/config"
	"trading_academy_backend/internal/model"
	"trading_academy_backend/internal/repository"
	"trading_academy_backend/internal/util"
	"trading_academy_backend/pkg/logger"
	"trading_academy_backend/pkg/monitoring"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type SignInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password"`
}

type SignUpRequest struct {
	Name            string `json:"name" binding:"required,min=2"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" binding:"required,eqfield=Password"`
}

type SignInResult struct {
	Token   string         `json:"token"`
	Session *model.Session `json:"session"`
}

// AuthService signs sessions in and out. Any credentials produce a student
// session; only the configured admin e-mail and password produce an admin one.
type AuthService struct {
	Sessions repository.SessionRepository
	Viewer   *ViewerService
	Cfg      *config.Config

	adminHash []byte
	Now       func() time.Time
}

func NewAuthService(sessions repository.SessionRepository, viewer *ViewerService, cfg *config.Config) (*AuthService, error) {
	hash := []byte(cfg.Admin.PasswordHash)
	if len(hash) == 0 {
		var err error
		hash, err = bcrypt.GenerateFromPassword([]byte(cfg.Admin.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash admin password: %w", err)
		}
	}

	return &AuthService{
		Sessions:  sessions,
		Viewer:    viewer,
		Cfg:       cfg,
		adminHash: hash,
		Now:       time.Now,
	}, nil
}

func (s *AuthService) isAdmin(email, password string) bool {
	if !strings.EqualFold(strings.TrimSpace(email), s.Cfg.Admin.Email) {
		return false
	}
	return bcrypt.CompareHashAndPassword(s.adminHash, []byte(password)) == nil
}

func (s *AuthService) SignIn(ctx context.Context, req SignInRequest) (*SignInResult, error) {
	return s.signIn(ctx, req.Email, req.Password, "")
}

func (s *AuthService) SignUp(ctx context.Context, req SignUpRequest) (*SignInResult, error) {
	if len(strings.TrimSpace(req.Name)) < 2 {
		return nil, fmt.Errorf("%w: name must be at least 2 characters", util.ErrValidation)
	}
	if len(req.Password) < 6 {
		return nil, fmt.Errorf("%w: password must be at least 6 characters", util.ErrValidation)
	}
	if req.Password != req.ConfirmPassword {
		return nil, fmt.Errorf("%w: passwords don't match", util.ErrValidation)
	}
	return s.signIn(ctx, req.Email, req.Password, strings.TrimSpace(req.Name))
}

func (s *AuthService) signIn(ctx context.Context, email, password, name string) (*SignInResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", util.ErrValidation)
	}

	now := s.Now()
	session := &model.Session{
		ID:              uuid.New().String(),
		Email:           email,
		Name:            name,
		IsAuthenticated: true,
		IsAdmin:         s.isAdmin(email, password),
		CreatedAt:       now,
		ExpiresAt:       now.Add(s.Cfg.JWT.ExpireTime),
	}

	if err := s.Sessions.Save(ctx, session, s.Cfg.JWT.ExpireTime); err != nil {
		return nil, fmt.Errorf("%w: save session: %w", util.ErrOperationFailed, err)
	}

	token, err := util.GenerateJWT(session, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
	if err != nil {
		return nil, fmt.Errorf("%w: sign token: %w", util.ErrOperationFailed, err)
	}

	role := "student"
	if session.IsAdmin {
		role = "admin"
	}
	monitoring.SignIns.WithLabelValues(role).Inc()
	logger.Log.Info("Signed in", zap.String("sessionID", session.ID), zap.String("email", email), zap.Bool("admin", session.IsAdmin))

	return &SignInResult{Token: token, Session: session}, nil
}

// Resume turns a token back into its live session. A valid token whose session
// was signed out is rejected.
func (s *AuthService) Resume(ctx context.Context, token string) (*model.Session, error) {
	claims, err := util.ParseJWT(token, s.Cfg.JWT.Secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrUnauthorized, err)
	}

	session, err := s.Sessions.Get(ctx, claims.SessionID)
	if errors.Is(err, util.ErrSessionNotFound) {
		return nil, util.ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	if !session.IsAuthenticated {
		return nil, util.ErrUnauthorized
	}
	return session, nil
}

func (s *AuthService) SignOut(ctx context.Context, session *model.Session) error {
	if err := s.Sessions.Delete(ctx, session.ID); err != nil {
		return fmt.Errorf("%w: delete session: %w", util.ErrOperationFailed, err)
	}
	dropped := 0
	if s.Viewer != nil {
		s.Viewer.Forget(session.ID)
		dropped = s.Viewer.Courses.DropEnrollments(session.UserID())
	}
	logger.Log.Info("Signed out", zap.String("sessionID", session.ID), zap.Int("enrollmentsDropped", dropped))
	return nil
}
