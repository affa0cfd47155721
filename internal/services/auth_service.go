package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"fridgepos/internal/models"
	"fridgepos/internal/store"
)

// AuthService covers the account/verification subsystem: one-time signup
// codes binding a Redbox identity to a password-setup action, plus the
// trusted login boundary. It is co-located with the store but independent
// of the ledger.
type AuthService interface {
	// GenerateVerificationCode issues a 6-digit code for the identity,
	// valid for ten minutes. Any previously issued code for the same
	// identity is invalidated.
	GenerateVerificationCode(ctx context.Context, redboxID string) (*models.VerificationToken, error)

	// RegisterUser consumes a verification code exactly once, sets the
	// account password and activates the account.
	RegisterUser(ctx context.Context, redboxID, code, password string) (*models.User, error)

	// Login resolves (role, username, password) to a user record. The
	// ledger trusts whatever record this returns.
	Login(ctx context.Context, role models.UserRole, username, password string) (*models.User, error)
}

type authService struct {
	store *store.Store
}

// NewAuthService creates a new account/verification service.
func NewAuthService(st *store.Store) AuthService {
	return &authService{store: st}
}

func (s *authService) GenerateVerificationCode(ctx context.Context, redboxID string) (*models.VerificationToken, error) {
	user, ok := s.store.FindUserByRedboxID(redboxID)
	if !ok {
		return nil, &NotFoundError{Resource: "user", ID: redboxID}
	}

	code, err := sixDigitCode()
	if err != nil {
		return nil, fmt.Errorf("generate verification code: %w", err)
	}

	token := &models.VerificationToken{
		UserID:    user.ID,
		RedboxID:  redboxID,
		Code:      code,
		ExpiresAt: time.Now().Add(models.VerificationTokenTTL),
	}
	// Replaces any live token for this identity.
	s.store.PutVerificationToken(ctx, token)
	return token, nil
}

func (s *authService) RegisterUser(ctx context.Context, redboxID, code, password string) (*models.User, error) {
	token, ok := s.store.GetVerificationToken(redboxID)
	if !ok || token.Code != code {
		return nil, ErrTokenInvalid
	}
	if token.Expired(time.Now()) {
		s.store.DeleteVerificationToken(ctx, redboxID)
		return nil, ErrTokenExpired
	}

	user, ok := s.store.GetUser(token.UserID)
	if !ok {
		return nil, &NotFoundError{Resource: "user", ID: token.UserID}
	}

	user.Password = password
	user.Status = models.UserActive
	s.store.SaveUser(ctx, user)
	s.store.DeleteVerificationToken(ctx, redboxID)
	return user, nil
}

func (s *authService) Login(ctx context.Context, role models.UserRole, username, password string) (*models.User, error) {
	user, ok := s.store.FindUserByUsername(username)
	if !ok || user.Role != role || user.Password != password {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func sixDigitCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
