package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	authsvc "github.com/ivankudzin/muji/internal/services/auth"
)

const sessionPrefix = "sessions:"

// SessionRepo is the opaque user-identity store: it maps a session id from
// the cookie back to the Telegram user who authenticated.
type SessionRepo struct {
	client *goredis.Client
}

func NewSessionRepo(client *goredis.Client) *SessionRepo {
	return &SessionRepo{client: client}
}

func (r *SessionRepo) Create(ctx context.Context, session authsvc.SessionRecord, ttl time.Duration) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if strings.TrimSpace(session.SID) == "" || strings.TrimSpace(session.ExternalUserID) == "" {
		return authsvc.ErrInvalidInput
	}
	if ttl <= 0 {
		return authsvc.ErrInvalidInput
	}

	fields := map[string]interface{}{
		"external_user_id": session.ExternalUserID,
		"username":         session.Username,
		"first_name":       session.FirstName,
		"created_at":       session.CreatedAt.Unix(),
	}

	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, sessionKey(session.SID), fields)
	pipe.Expire(ctx, sessionKey(session.SID), ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("create redis session: %w", err)
	}

	return nil
}

func (r *SessionRepo) Get(ctx context.Context, sid string) (authsvc.SessionRecord, error) {
	if r.client == nil {
		return authsvc.SessionRecord{}, fmt.Errorf("redis client is nil")
	}

	values, err := r.client.HGetAll(ctx, sessionKey(sid)).Result()
	if err != nil {
		return authsvc.SessionRecord{}, fmt.Errorf("get session hash: %w", err)
	}
	if len(values) == 0 {
		return authsvc.SessionRecord{}, authsvc.ErrSessionNotFound
	}

	record := authsvc.SessionRecord{
		SID:            sid,
		ExternalUserID: values["external_user_id"],
		Username:       values["username"],
		FirstName:      values["first_name"],
	}
	if record.ExternalUserID == "" {
		return authsvc.SessionRecord{}, authsvc.ErrSessionNotFound
	}
	if createdUnix, parseErr := strconv.ParseInt(values["created_at"], 10, 64); parseErr == nil {
		record.CreatedAt = time.Unix(createdUnix, 0).UTC()
	}

	return record, nil
}

func (r *SessionRepo) Delete(ctx context.Context, sid string) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if strings.TrimSpace(sid) == "" {
		return nil
	}

	if err := r.client.Del(ctx, sessionKey(sid)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func sessionKey(sid string) string {
	return sessionPrefix + sid
}
