package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/GTDGit/retail_api/internal/metrics"
	"github.com/GTDGit/retail_api/internal/models"
	"github.com/GTDGit/retail_api/internal/utils"
)

// UserStore is the user persistence used for authentication.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	TouchLastLogin(ctx context.Context, id int) error
}

type AuthService struct {
	users   UserStore
	metrics *metrics.Metrics
}

func NewAuthService(users UserStore, m *metrics.Metrics) *AuthService {
	return &AuthService{users: users, metrics: m}
}

// Login checks the credentials and returns a signed token for the user.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	log.Debug().Str("email", email).Msg("Login attempt")

	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		s.metrics.RecordAuth("failure")
		return "", nil, utils.ErrInvalidCredentials
	}
	if err != nil {
		log.Error().Err(err).Str("email", email).Msg("Failed to get user by email")
		return "", nil, err
	}

	if !user.IsActive {
		log.Warn().Str("email", email).Msg("Account is inactive")
		s.metrics.RecordAuth("failure")
		return "", nil, utils.ErrAccountInactive
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		log.Warn().Str("email", email).Msg("Password verification failed")
		s.metrics.RecordAuth("failure")
		return "", nil, utils.ErrInvalidCredentials
	}

	token, err := utils.GenerateJWT(user.ID, user.Email, user.CompanyID)
	if err != nil {
		return "", nil, err
	}

	if err := s.users.TouchLastLogin(ctx, user.ID); err != nil {
		log.Warn().Err(err).Int("user_id", user.ID).Msg("Failed to update last login")
	}

	s.metrics.RecordAuth("success")
	log.Info().Str("email", email).Str("company_id", user.CompanyID).Msg("Login successful")
	return token, user, nil
}

// EnsureUser creates the user unless the email is already registered.
func (s *AuthService) EnsureUser(ctx context.Context, companyID, email, password, name string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return false, nil
	} else if !errors.Is(err, sql.ErrNoRows) {
		return false, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, err
	}

	user := &models.User{
		CompanyID:    companyID,
		Email:        email,
		PasswordHash: string(hashedPassword),
		Name:         name,
		Role:         models.RoleManager,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return false, fmt.Errorf("failed to create user %s: %w", email, err)
	}
	return true, nil
}
