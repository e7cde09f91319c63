package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	initdata "github.com/telegram-mini-apps/init-data-golang"
	"go.uber.org/zap"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrSessionNotFound = errors.New("session not found")
)

const initDataMaxAge = 24 * time.Hour

// SessionRecord ties a session cookie to the Telegram user who opened the
// Mini App. The external user id is the only identity fact the rest of the
// system consumes.
type SessionRecord struct {
	SID            string
	ExternalUserID string
	Username       string
	FirstName      string
	CreatedAt      time.Time
}

type SessionStore interface {
	Create(ctx context.Context, session SessionRecord, ttl time.Duration) error
	Get(ctx context.Context, sid string) (SessionRecord, error)
	Delete(ctx context.Context, sid string) error
}

type Service struct {
	botToken   string
	sessions   SessionStore
	sessionTTL time.Duration
	now        func() time.Time
	logger     *zap.Logger
}

func NewService(botToken string, sessions SessionStore, sessionTTL time.Duration, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	return &Service{
		botToken:   botToken,
		sessions:   sessions,
		sessionTTL: sessionTTL,
		now:        time.Now,
		logger:     logger,
	}
}

// Authenticate validates Mini App init data against the bot token and
// opens a session for the embedded Telegram user.
func (s *Service) Authenticate(ctx context.Context, rawInitData string) (SessionRecord, error) {
	if s.sessions == nil {
		return SessionRecord{}, fmt.Errorf("session store is nil")
	}
	if strings.TrimSpace(rawInitData) == "" {
		return SessionRecord{}, ErrInvalidInput
	}

	if err := initdata.Validate(rawInitData, s.botToken, initDataMaxAge); err != nil {
		s.logger.Debug("init data validation failed", zap.Error(err))
		return SessionRecord{}, ErrUnauthorized
	}

	parsed, err := initdata.Parse(rawInitData)
	if err != nil {
		return SessionRecord{}, ErrUnauthorized
	}
	if parsed.User.ID == 0 {
		return SessionRecord{}, ErrUnauthorized
	}

	record := SessionRecord{
		SID:            uuid.NewString(),
		ExternalUserID: strconv.FormatInt(parsed.User.ID, 10),
		Username:       parsed.User.Username,
		FirstName:      parsed.User.FirstName,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.sessions.Create(ctx, record, s.sessionTTL); err != nil {
		return SessionRecord{}, fmt.Errorf("persist session: %w", err)
	}

	s.logger.Info("user session opened", zap.String("external_user_id", record.ExternalUserID))
	return record, nil
}

// Resolve maps a session cookie back to the user identity.
func (s *Service) Resolve(ctx context.Context, sid string) (SessionRecord, error) {
	if s.sessions == nil {
		return SessionRecord{}, fmt.Errorf("session store is nil")
	}
	if strings.TrimSpace(sid) == "" {
		return SessionRecord{}, ErrUnauthorized
	}

	record, err := s.sessions.Get(ctx, sid)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return SessionRecord{}, ErrUnauthorized
		}
		return SessionRecord{}, err
	}
	return record, nil
}

func (s *Service) Logout(ctx context.Context, sid string) error {
	if s.sessions == nil || strings.TrimSpace(sid) == "" {
		return nil
	}
	return s.sessions.Delete(ctx, sid)
}
