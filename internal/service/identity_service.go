package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"ogarx/internal/domain"
	"ogarx/internal/port"
)

const bcryptCost = 12

// RegisterInput is the DTO for self-registration.
type RegisterInput struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// IdentityService verifies and registers users.
type IdentityService interface {
	Verify(ctx context.Context, username, password string) bool
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	EnsureUser(ctx context.Context, input RegisterInput) error
}

type identityService struct {
	userRepo    port.UserRepository
	emailSender port.EmailSender
}

// NewIdentityService creates a new IdentityService. emailSender may be nil.
func NewIdentityService(userRepo port.UserRepository, emailSender port.EmailSender) IdentityService {
	return &identityService{userRepo: userRepo, emailSender: emailSender}
}

// Verify reports whether the credentials match a stored user.
func (s *identityService) Verify(ctx context.Context, username, password string) bool {
	_, err := s.Authenticate(ctx, username, password)
	return err == nil
}

func (s *identityService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("identity.Authenticate: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

func (s *identityService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(input.Email)
	if input.Username == "" || input.Email == "" || input.Password == "" {
		return nil, domain.ErrMissingFields
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &domain.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hash),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err // ErrDuplicateUsername propagates naturally
	}
	log.Printf("identityService.Register: registered user %s", user.Username)

	if s.emailSender != nil {
		if err := s.emailSender.SendWelcomeEmail(ctx, user.Email, user.Username); err != nil {
			log.Printf("identityService.Register: failed to send welcome email to %s: %v", user.Email, err)
		}
	}
	return user, nil
}

// EnsureUser registers the account unless the username is already taken.
func (s *identityService) EnsureUser(ctx context.Context, input RegisterInput) error {
	if _, err := s.userRepo.GetByUsername(ctx, input.Username); err == nil {
		return nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("identity.EnsureUser: %w", err)
	}

	_, err := s.Register(ctx, input)
	if errors.Is(err, domain.ErrDuplicateUsername) {
		return nil
	}
	return err
}
