package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/SimonLou-Dev/cours-gestionaire-mdp/internal/crypto"
	"github.com/SimonLou-Dev/cours-gestionaire-mdp/internal/model"
	"github.com/SimonLou-Dev/cours-gestionaire-mdp/internal/repository"
)

const maxUsernameLength = 255

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameRequired   = errors.New("username is required")
	ErrUsernameTooLong    = errors.New("username must be at most 255 characters")
	ErrPasswordRequired   = errors.New("password is required")
	ErrUsernameTaken      = errors.New("username already taken")
)

// AuthService handles registration, login and logout. A successful login
// derives the user's vault key and parks it in the key ring; the issued JWT
// only names the session.
type AuthService struct {
	repo      UserStore
	keys      KeyRing
	kdf       crypto.KeyDeriver
	jwtSecret string
}

// NewAuthService creates a new AuthService. Tokens expire with the key ring's TTL.
func NewAuthService(repo UserStore, keys KeyRing, kdf crypto.KeyDeriver, secret string) *AuthService {
	return &AuthService{
		repo:      repo,
		keys:      keys,
		kdf:       kdf,
		jwtSecret: secret,
	}
}

// Register creates a new user account with a fresh salt and logs it in.
func (s *AuthService) Register(ctx context.Context, req model.CreateUserRequest) (model.AuthResponse, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return model.AuthResponse{}, ErrUsernameRequired
	}
	if len(username) > maxUsernameLength {
		return model.AuthResponse{}, ErrUsernameTooLong
	}
	if req.Password == "" {
		return model.AuthResponse{}, ErrPasswordRequired
	}

	salt, err := crypto.NewSalt()
	if err != nil {
		return model.AuthResponse{}, err
	}
	verifier, err := crypto.NewVerifier(req.Password)
	if err != nil {
		return model.AuthResponse{}, err
	}

	user := &model.User{
		Username:      username,
		Verifier:      verifier,
		Salt:          salt,
		KDFIterations: s.kdf.Iterations(),
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUsername) {
			return model.AuthResponse{}, ErrUsernameTaken
		}
		return model.AuthResponse{}, err
	}

	slog.Info("user registered", "user_id", user.ID)
	return s.openSession(user, req.Password)
}

// Login verifies the master secret and opens a session holding the derived vault key.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error) {
	if req.Username == "" || req.Password == "" {
		return model.AuthResponse{}, ErrInvalidCredentials
	}

	user, err := s.repo.GetByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			crypto.BurnVerifierCost(req.Password)
			return model.AuthResponse{}, ErrInvalidCredentials
		}
		return model.AuthResponse{}, err
	}

	match, err := crypto.CheckVerifier(req.Password, user.Verifier)
	if err != nil {
		return model.AuthResponse{}, err
	}
	if !match {
		return model.AuthResponse{}, ErrInvalidCredentials
	}

	return s.openSession(user, req.Password)
}

// Logout drops the session and zeroes its key.
func (s *AuthService) Logout(p Principal) {
	s.keys.Delete(p.SessionID)
}

// GetUser retrieves a user by ID and returns safe user data.
func (s *AuthService) GetUser(ctx context.Context, userID int64) (model.UserResponse, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return model.UserResponse{}, err
	}

	return toUserResponse(user), nil
}

// openSession derives the vault key with the work factor recorded for the
// user, not the configured one, so raising KDF_ITERATIONS only affects new accounts.
func (s *AuthService) openSession(user *model.User, password string) (model.AuthResponse, error) {
	key, err := crypto.NewKeyDeriver(user.KDFIterations).Derive(password, user.Salt)
	if err != nil {
		return model.AuthResponse{}, err
	}
	defer crypto.Wipe(key)

	sid, err := s.keys.Create(user.ID, key)
	if err != nil {
		return model.AuthResponse{}, err
	}

	ttl := s.keys.TTL()
	token, err := crypto.GenerateToken(user.ID, sid, s.jwtSecret, ttl)
	if err != nil {
		s.keys.Delete(sid)
		return model.AuthResponse{}, err
	}

	return model.AuthResponse{
		Token:     token,
		ExpiresAt: time.Now().UTC().Add(ttl),
		User:      toUserResponse(user),
	}, nil
}

func toUserResponse(u *model.User) model.UserResponse {
	return model.UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		CreatedAt: u.CreatedAt,
	}
}
