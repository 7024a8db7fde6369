package service

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"trading_academy_backend/internal/model"
	"trading_academy_backend/internal/repository"
	"trading_academy_backend/internal/util"
	"trading_academy_backend/pkg/logger"

	"go.uber.org/zap"
)

type JoinWaitlistRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
}

type WaitlistService struct {
	Repo *repository.WaitlistRepository
	Now  func() time.Time
}

func NewWaitlistService(repo *repository.WaitlistRepository) *WaitlistService {
	return &WaitlistService{Repo: repo, Now: time.Now}
}

func (s *WaitlistService) Join(req JoinWaitlistRequest) (model.WaitlistEntry, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return model.WaitlistEntry{}, fmt.Errorf("%w: name is required", util.ErrValidation)
	}
	addr, err := mail.ParseAddress(strings.TrimSpace(req.Email))
	if err != nil {
		return model.WaitlistEntry{}, fmt.Errorf("%w: invalid email address", util.ErrValidation)
	}

	entry := model.WaitlistEntry{
		Name:     name,
		Email:    strings.ToLower(addr.Address),
		JoinedAt: s.Now(),
	}
	if err := s.Repo.Add(entry); err != nil {
		return model.WaitlistEntry{}, err
	}

	logger.Log.Info("Joined waitlist", zap.String("email", entry.Email))
	return entry, nil
}

func (s *WaitlistService) List() []model.WaitlistEntry {
	return s.Repo.List()
}
