package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/terra-clan/interview-console/internal/models"
)

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// PostgresConfig holds PostgreSQL connection configuration
type PostgresConfig struct {
	DSN          string
	MaxOpenConns int32
	MaxIdleConns int32
	MaxLifetime  time.Duration
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(ctx context.Context, cfg PostgresConfig) (*PostgresRepository, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		poolConfig.MaxConns = cfg.MaxOpenConns
	} else {
		poolConfig.MaxConns = 25
	}

	if cfg.MaxIdleConns > 0 {
		poolConfig.MinConns = cfg.MaxIdleConns
	} else {
		poolConfig.MinConns = 2
	}

	if cfg.MaxLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxLifetime
	} else {
		poolConfig.MaxConnLifetime = 30 * time.Minute
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{pool: pool}, nil
}

// Ping checks database connectivity
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close closes the database connection pool
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

// CreateSession inserts a new web session
func (r *PostgresRepository) CreateSession(ctx context.Context, s *models.WebSession) error {
	query := `
		INSERT INTO web_sessions (id, phone_number, role, access_token, refresh_token, created_at, last_seen_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.pool.Exec(ctx, query,
		s.ID,
		s.PhoneNumber,
		string(s.Role),
		s.AccessToken,
		s.RefreshToken,
		s.CreatedAt,
		s.LastSeenAt,
		s.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

// GetSession retrieves a web session by id
func (r *PostgresRepository) GetSession(ctx context.Context, id string) (*models.WebSession, error) {
	query := `
		SELECT id, phone_number, role, access_token, refresh_token, created_at, last_seen_at, expires_at
		FROM web_sessions
		WHERE id = $1
	`

	var s models.WebSession
	var role string

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&s.ID,
		&s.PhoneNumber,
		&role,
		&s.AccessToken,
		&s.RefreshToken,
		&s.CreatedAt,
		&s.LastSeenAt,
		&s.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	s.Role = models.SessionRole(role)
	return &s, nil
}

// UpdateSession overwrites the mutable session fields
func (r *PostgresRepository) UpdateSession(ctx context.Context, s *models.WebSession) error {
	query := `
		UPDATE web_sessions
		SET phone_number = $2, role = $3, access_token = $4, refresh_token = $5, last_seen_at = $6, expires_at = $7
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		s.ID,
		s.PhoneNumber,
		string(s.Role),
		s.AccessToken,
		s.RefreshToken,
		s.LastSeenAt,
		s.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("session %s not found", s.MaskedID())
	}

	return nil
}

// DeleteSession removes a session
func (r *PostgresRepository) DeleteSession(ctx context.Context, id string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM web_sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteExpiredSessions removes every session past its expiry, along with
// opening questions older than QuestionRetention
func (r *PostgresRepository) DeleteExpiredSessions(ctx context.Context) (int, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM web_sessions WHERE expires_at < NOW()`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}

	cutoff := time.Now().Add(-QuestionRetention)
	if _, err := r.pool.Exec(ctx, `DELETE FROM initial_questions WHERE created_at < $1`, cutoff); err != nil {
		return int(tag.RowsAffected()), fmt.Errorf("failed to delete stale questions: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// SaveInitialQuestion upserts the opening question for an interview
func (r *PostgresRepository) SaveInitialQuestion(ctx context.Context, owner string, interviewID int64, question string) error {
	query := `
		INSERT INTO initial_questions (phone_number, interview_id, question)
		VALUES ($1, $2, $3)
		ON CONFLICT (phone_number, interview_id) DO UPDATE
		SET question = EXCLUDED.question, created_at = NOW()
	`
	if _, err := r.pool.Exec(ctx, query, owner, interviewID, question); err != nil {
		return fmt.Errorf("failed to save initial question: %w", err)
	}
	return nil
}

// GetInitialQuestion returns the cached opening question, if any
func (r *PostgresRepository) GetInitialQuestion(ctx context.Context, owner string, interviewID int64) (string, bool, error) {
	var q string
	err := r.pool.QueryRow(ctx,
		`SELECT question FROM initial_questions WHERE phone_number = $1 AND interview_id = $2`,
		owner, interviewID,
	).Scan(&q)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get initial question: %w", err)
	}
	return q, true, nil
}

// DeleteInitialQuestion drops the cached opening question
func (r *PostgresRepository) DeleteInitialQuestion(ctx context.Context, owner string, interviewID int64) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM initial_questions WHERE phone_number = $1 AND interview_id = $2`,
		owner, interviewID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete initial question: %w", err)
	}
	return nil
}
