package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/terra-clan/interview-console/internal/models"
)

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Address   string
	Password  string
	DB        int
	KeyPrefix string
}

// RedisRepository stores JSON values whose TTL follows the session expiry
type RedisRepository struct {
	client *redis.Client
	prefix string
}

// sessionRecord is the stored form; WebSession hides tokens from JSON
type sessionRecord struct {
	ID           string    `json:"id"`
	PhoneNumber  string    `json:"phone_number"`
	Role         string    `json:"role"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	CreatedAt    time.Time `json:"created_at"`
	LastSeenAt   time.Time `json:"last_seen_at"`
	ExpiresAt    time.Time `json:"expires_at"`
}

func toRecord(s *models.WebSession) sessionRecord {
	return sessionRecord{
		ID:           s.ID,
		PhoneNumber:  s.PhoneNumber,
		Role:         string(s.Role),
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		CreatedAt:    s.CreatedAt,
		LastSeenAt:   s.LastSeenAt,
		ExpiresAt:    s.ExpiresAt,
	}
}

func (rec sessionRecord) session() *models.WebSession {
	return &models.WebSession{
		ID:           rec.ID,
		PhoneNumber:  rec.PhoneNumber,
		Role:         models.SessionRole(rec.Role),
		AccessToken:  rec.AccessToken,
		RefreshToken: rec.RefreshToken,
		CreatedAt:    rec.CreatedAt,
		LastSeenAt:   rec.LastSeenAt,
		ExpiresAt:    rec.ExpiresAt,
	}
}

// NewRedisRepository connects to Redis
func NewRedisRepository(ctx context.Context, cfg RedisConfig) (*RedisRepository, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "console:"
	}

	return &RedisRepository{client: client, prefix: prefix}, nil
}

func (r *RedisRepository) sessionKey(id string) string {
	return r.prefix + "session:" + id
}

func (r *RedisRepository) questionKey(owner string, interviewID int64) string {
	return fmt.Sprintf("%squestion:%s:%d", r.prefix, owner, interviewID)
}

func ttlUntil(t time.Time) time.Duration {
	ttl := time.Until(t)
	if ttl < time.Second {
		return time.Second
	}
	return ttl
}

func (r *RedisRepository) writeSession(ctx context.Context, s *models.WebSession, mustExist bool) error {
	data, err := json.Marshal(toRecord(s))
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	args := redis.SetArgs{TTL: ttlUntil(s.ExpiresAt)}
	if mustExist {
		args.Mode = "XX"
	} else {
		args.Mode = "NX"
	}

	err = r.client.SetArgs(ctx, r.sessionKey(s.ID), data, args).Err()
	if errors.Is(err, redis.Nil) {
		if mustExist {
			return fmt.Errorf("session %s not found", s.MaskedID())
		}
		return fmt.Errorf("session %s already exists", s.MaskedID())
	}
	if err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

func (r *RedisRepository) CreateSession(ctx context.Context, s *models.WebSession) error {
	return r.writeSession(ctx, s, false)
}

func (r *RedisRepository) GetSession(ctx context.Context, id string) (*models.WebSession, error) {
	data, err := r.client.Get(ctx, r.sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var rec sessionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return rec.session(), nil
}

func (r *RedisRepository) UpdateSession(ctx context.Context, s *models.WebSession) error {
	return r.writeSession(ctx, s, true)
}

func (r *RedisRepository) DeleteSession(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, r.sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteExpiredSessions is a no-op; Redis expires keys itself
func (r *RedisRepository) DeleteExpiredSessions(ctx context.Context) (int, error) {
	return 0, nil
}

func (r *RedisRepository) SaveInitialQuestion(ctx context.Context, owner string, interviewID int64, question string) error {
	if err := r.client.Set(ctx, r.questionKey(owner, interviewID), question, QuestionRetention).Err(); err != nil {
		return fmt.Errorf("failed to save initial question: %w", err)
	}
	return nil
}

func (r *RedisRepository) GetInitialQuestion(ctx context.Context, owner string, interviewID int64) (string, bool, error) {
	q, err := r.client.Get(ctx, r.questionKey(owner, interviewID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get initial question: %w", err)
	}
	return q, true, nil
}

func (r *RedisRepository) DeleteInitialQuestion(ctx context.Context, owner string, interviewID int64) error {
	if err := r.client.Del(ctx, r.questionKey(owner, interviewID)).Err(); err != nil {
		return fmt.Errorf("failed to delete initial question: %w", err)
	}
	return nil
}

func (r *RedisRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisRepository) Close() error {
	return r.client.Close()
}
