package account

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"auction-manager/internal/auctionerrors"
	model "auction-manager/internal/models"
	"auction-manager/internal/repository"
	"auction-manager/internal/security"
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]{1,150}$`)

const (
	minPasswordLength = 8
	// bcrypt only hashes the first 72 bytes and rejects longer input
	maxPasswordBytes = 72
)

// TokenIssuer signs access tokens for authenticated users
type TokenIssuer interface {
	Issue(userID uint, username string) (string, time.Time, error)
}

// RegisterParams holds the data of a new account
type RegisterParams struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	Password  string
}

// UpdateParams holds the account fields to change; nil fields stay untouched
type UpdateParams struct {
	Email     *string
	FirstName *string
	LastName  *string
}

// Session is the result of a successful login
type Session struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expires_at"`
	User      model.User `json:"user"`
}

// AccountService defines the business logic for user accounts
type AccountService struct {
	repo   repository.UserStore
	tokens TokenIssuer
	now    func() time.Time
}

// NewAccountService creates a new AccountService instance
func NewAccountService(repo repository.UserStore, tokens TokenIssuer) *AccountService {
	return &AccountService{
		repo:   repo,
		tokens: tokens,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Register validates and creates a new account
func (s *AccountService) Register(ctx context.Context, p RegisterParams) (model.User, error) {
	p.Username = strings.TrimSpace(p.Username)
	p.Email = strings.TrimSpace(p.Email)
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)

	if !usernamePattern.MatchString(p.Username) {
		return model.User{}, fmt.Errorf("service: %w - username must be 1-150 letters, digits or @/./+/-/_", auctionerrors.ErrInvalidInput)
	}
	if err := validateName("first name", p.FirstName); err != nil {
		return model.User{}, err
	}
	if err := validateName("last name", p.LastName); err != nil {
		return model.User{}, err
	}
	if err := validateEmail(p.Email); err != nil {
		return model.User{}, err
	}
	if err := validatePassword(p.Password); err != nil {
		return model.User{}, err
	}

	hash, err := security.HashPassword(p.Password)
	if err != nil {
		return model.User{}, fmt.Errorf("service: %w", err)
	}

	user := model.User{
		Username:     p.Username,
		Email:        p.Email,
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := s.repo.CreateUser(ctx, &user); err != nil {
		return model.User{}, fmt.Errorf("service: failed to register %s: %w", p.Username, err)
	}
	return user, nil
}

// Login checks the credentials and issues an access token
func (s *AccountService) Login(ctx context.Context, username, password string) (Session, error) {
	user, err := s.repo.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, auctionerrors.ErrUserNotFound) {
			return Session{}, fmt.Errorf("service: %w", auctionerrors.ErrBadCredentials)
		}
		return Session{}, fmt.Errorf("service: failed to load user %s: %w", username, err)
	}
	if !security.CheckPassword(user.PasswordHash, password) {
		return Session{}, fmt.Errorf("service: %w", auctionerrors.ErrBadCredentials)
	}
	if !user.IsActive {
		return Session{}, fmt.Errorf("service: %w", auctionerrors.ErrInactiveAccount)
	}

	now := s.now()
	if err := s.repo.UpdateUser(ctx, user.ID, map[string]any{"last_login": now}); err != nil {
		return Session{}, fmt.Errorf("service: failed to record login for %s: %w", username, err)
	}
	user.LastLogin = &now

	token, expires, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return Session{}, fmt.Errorf("service: %w", err)
	}
	return Session{Token: token, ExpiresAt: expires, User: user}, nil
}

// GetUser returns the account with the given id
func (s *AccountService) GetUser(ctx context.Context, userID uint) (model.User, error) {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return model.User{}, fmt.Errorf("service: failed to get user %d: %w", userID, err)
	}
	return user, nil
}

// UpdateAccount changes the email and names of an account
func (s *AccountService) UpdateAccount(ctx context.Context, userID uint, p UpdateParams) (model.User, error) {
	fields := map[string]any{}
	if p.Email != nil {
		email := strings.TrimSpace(*p.Email)
		if err := validateEmail(email); err != nil {
			return model.User{}, err
		}
		fields["email"] = email
	}
	if p.FirstName != nil {
		name := strings.TrimSpace(*p.FirstName)
		if err := validateName("first name", name); err != nil {
			return model.User{}, err
		}
		fields["first_name"] = name
	}
	if p.LastName != nil {
		name := strings.TrimSpace(*p.LastName)
		if err := validateName("last name", name); err != nil {
			return model.User{}, err
		}
		fields["last_name"] = name
	}
	if len(fields) == 0 {
		return model.User{}, fmt.Errorf("service: %w - nothing to update", auctionerrors.ErrInvalidInput)
	}

	if err := s.repo.UpdateUser(ctx, userID, fields); err != nil {
		return model.User{}, fmt.Errorf("service: failed to update user %d: %w", userID, err)
	}
	return s.GetUser(ctx, userID)
}

// ChangePassword replaces the password after checking the current one
func (s *AccountService) ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("service: failed to get user %d: %w", userID, err)
	}
	if !security.CheckPassword(user.PasswordHash, oldPassword) {
		return fmt.Errorf("service: %w", auctionerrors.ErrBadCredentials)
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	hash, err := security.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("service: %w", err)
	}
	if err := s.repo.UpdateUser(ctx, userID, map[string]any{"password_hash": hash}); err != nil {
		return fmt.Errorf("service: failed to change password of user %d: %w", userID, err)
	}
	return nil
}

// GetBalance summarises what a user won, paid and still owes
func (s *AccountService) GetBalance(ctx context.Context, userID uint) (model.BalanceSummary, error) {
	summary, err := s.repo.GetBalanceSummary(ctx, userID)
	if err != nil {
		return model.BalanceSummary{}, fmt.Errorf("service: failed to get balance of user %d: %w", userID, err)
	}
	return summary, nil
}

func validateName(field, value string) error {
	if n := utf8.RuneCountInString(value); n < 1 || n > 20 {
		return fmt.Errorf("service: %w - %s must be 1-20 characters", auctionerrors.ErrInvalidInput, field)
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return nil
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || len(email) > 254 {
		return fmt.Errorf("service: %w - invalid email address", auctionerrors.ErrInvalidInput)
	}
	return nil
}

func validatePassword(password string) error {
	if utf8.RuneCountInString(password) < minPasswordLength {
		return fmt.Errorf("service: %w - password must be at least %d characters", auctionerrors.ErrInvalidInput, minPasswordLength)
	}
	if len(password) > maxPasswordBytes {
		return fmt.Errorf("service: %w - password must be at most %d bytes", auctionerrors.ErrInvalidInput, maxPasswordBytes)
	}
	return nil
}
