package service

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pawnledger/ledger-engine/internal/config"
	"github.com/pawnledger/ledger-engine/internal/repository"
	apperrors "github.com/pawnledger/ledger-engine/pkg/errors"
)

const failedAttemptsKey = "auth:failed_attempts"

// AuthService verifies the single shared system password. After too many
// failed attempts logins are refused until the lockout window expires;
// the limit is configurable and 0 disables it entirely.
type AuthService struct {
	UserRepo repository.SystemUserRepository
	redis    *redis.Client
	config   *config.Config
}

func NewAuthService(userRepo repository.SystemUserRepository, redis *redis.Client, config *config.Config) *AuthService {
	return &AuthService{
		UserRepo: userRepo,
		redis:    redis,
		config:   config,
	}
}

// EnsureSeed stores the configured default password if no credential row
// exists yet. Existing hashes are never overwritten.
func (s *AuthService) EnsureSeed(ctx context.Context) error {
	return s.UserRepo.Seed(ctx, HashPassword(s.config.Auth.DefaultPassword), time.Now())
}

// Verify checks the password against the stored hash.
func (s *AuthService) Verify(ctx context.Context, password string) error {
	if err := s.checkLockout(ctx); err != nil {
		return err
	}

	stored, err := s.UserRepo.GetPasswordHash(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.WrapInvalidCredentials()
		}
		return apperrors.WrapDatabaseError(err)
	}

	if subtle.ConstantTimeCompare([]byte(HashPassword(password)), []byte(stored)) != 1 {
		s.recordFailure(ctx)
		return apperrors.WrapInvalidCredentials()
	}

	s.clearFailures(ctx)
	return nil
}

// ChangePassword re-verifies the old password, then overwrites the hash.
func (s *AuthService) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	if err := s.Verify(ctx, oldPassword); err != nil {
		return err
	}

	if len(newPassword) < 4 {
		return apperrors.NewBusinessError(
			apperrors.ErrCodeInvalidCredentials,
			"New password must be at least 4 characters",
			apperrors.ErrInvalidCredentials,
		)
	}

	if err := s.UserRepo.SetPasswordHash(ctx, HashPassword(newPassword)); err != nil {
		return apperrors.WrapDatabaseError(err)
	}

	return nil
}

// HashPassword returns the sha256 hex digest used for the shared secret.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

func (s *AuthService) checkLockout(ctx context.Context) error {
	if s.redis == nil || !s.config.LockoutEnabled() {
		return nil
	}

	attempts, err := s.redis.Get(ctx, failedAttemptsKey).Int()
	if err != nil && !errors.Is(err, redis.Nil) {
		log.Printf("failed to read login attempt counter: %v", err)
		return nil
	}

	if attempts >= s.config.Auth.MaxAttempts {
		return apperrors.WrapAccountLocked(fmt.Sprintf("%v", s.config.Auth.LockoutWindow))
	}

	return nil
}

func (s *AuthService) recordFailure(ctx context.Context) {
	if s.redis == nil || !s.config.LockoutEnabled() {
		return
	}

	count, err := s.redis.Incr(ctx, failedAttemptsKey).Result()
	if err != nil {
		log.Printf("failed to record login failure: %v", err)
		return
	}
	if count == 1 {
		s.redis.Expire(ctx, failedAttemptsKey, s.config.Auth.LockoutWindow)
	}
}

func (s *AuthService) clearFailures(ctx context.Context) {
	if s.redis == nil || !s.config.LockoutEnabled() {
		return
	}
	if err := s.redis.Del(ctx, failedAttemptsKey).Err(); err != nil {
		log.Printf("failed to clear login attempt counter: %v", err)
	}
}
