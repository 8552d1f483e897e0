package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"conrelay/internal/domain"
	"conrelay/internal/security"
)

// AuthService is the credential store collaborator: registration, credential
// validation, and token issuance for the REST surface.
type AuthService struct {
	users    domain.UserRepository
	tokens   *security.TokenService
	hash     *security.PasswordHasher
	validate *validator.Validate
}

func NewAuthService(users domain.UserRepository, tokens *security.TokenService, hash *security.PasswordHasher) *AuthService {
	return &AuthService{
		users:    users,
		tokens:   tokens,
		hash:     hash,
		validate: validator.New(),
	}
}

// credentials carries the registration policy: names of at least 3 runes,
// passwords of at least 4.
type credentials struct {
	Username string `validate:"required,min=3"`
	Password string `validate:"required,min=4"`
}

type TokenResponse struct {
	AccessToken string
	TokenType   string
	User        *domain.User
}

// Register creates a new user after applying the registration policy.
func (s *AuthService) Register(ctx context.Context, username, password string) (*domain.User, error) {
	username = domain.NormalizeUsername(username)

	if err := s.validate.Struct(credentials{Username: username, Password: password}); err != nil {
		return nil, policyError(err)
	}

	existing, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if existing != nil {
		return nil, domain.ErrUsernameTaken
	}

	hashed, err := s.hash.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Username:       username,
		HashedPassword: hashed,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate validates a username/password pair. Empty input yields
// ErrMissingField, a mismatch ErrInvalidCredentials; the two are never
// conflated so the client can tell a form error from a bad login.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	username = domain.NormalizeUsername(username)
	if username == "" || password == "" {
		return nil, domain.ErrMissingField
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, domain.ErrInvalidCredentials
	}
	if err := s.hash.Verify(password, user.HashedPassword); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	if err := s.users.TouchLastSeen(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("touch last seen: %w", err)
	}
	return user, nil
}

// Lookup fetches a user by handle. Returns (nil, nil) when no such user
// exists.
func (s *AuthService) Lookup(ctx context.Context, username string) (*domain.User, error) {
	return s.users.GetByUsername(ctx, domain.NormalizeUsername(username))
}

// Login authenticates and issues a bearer token for the REST surface.
func (s *AuthService) Login(ctx context.Context, username, password string) (*TokenResponse, error) {
	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.CreateForUser(user.Username)
	if err != nil {
		return nil, fmt.Errorf("create token: %w", err)
	}

	return &TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User:        user,
	}, nil
}

// policyError maps validator failures onto the domain's registration errors.
func policyError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return domain.ErrInvalidInput
	}
	for _, fe := range verrs {
		switch {
		case fe.Tag() == "required":
			return domain.ErrMissingField
		case fe.Field() == "Username":
			return domain.ErrUsernameTooShort
		case fe.Field() == "Password":
			return domain.ErrPasswordTooShort
		}
	}
	return domain.ErrInvalidInput
}
