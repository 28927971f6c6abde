package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/terra-clan/interview-console/internal/models"
)

// Repository defines the interface for console persistence.
// Getters return nil (or false) with no error when the record does not exist.
type Repository interface {
	// Web sessions
	CreateSession(ctx context.Context, s *models.WebSession) error
	GetSession(ctx context.Context, id string) (*models.WebSession, error)
	UpdateSession(ctx context.Context, s *models.WebSession) error
	DeleteSession(ctx context.Context, id string) error
	DeleteExpiredSessions(ctx context.Context) (int, error)

	// Opening questions cached per user (phone number) and interview.
	// They outlive the web session that started the interview and are
	// dropped once it completes or after QuestionRetention.
	SaveInitialQuestion(ctx context.Context, owner string, interviewID int64, question string) error
	GetInitialQuestion(ctx context.Context, owner string, interviewID int64) (string, bool, error)
	DeleteInitialQuestion(ctx context.Context, owner string, interviewID int64) error

	// Health
	Ping(ctx context.Context) error
	Close() error
}

// QuestionRetention bounds how long an unfinished interview's opening question is kept
const QuestionRetention = 7 * 24 * time.Hour

// Driver names accepted by Open
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// Config selects and configures a driver
type Config struct {
	Driver        string
	Postgres      PostgresConfig
	Redis         RedisConfig
	MigrationsDir string
}

// Open creates the repository for cfg.Driver, running migrations for postgres
func Open(ctx context.Context, cfg Config) (Repository, error) {
	switch cfg.Driver {
	case DriverMemory, "":
		return NewMemoryRepository(), nil

	case DriverPostgres:
		repo, err := NewPostgresRepository(ctx, cfg.Postgres)
		if err != nil {
			return nil, err
		}
		if cfg.MigrationsDir != "" {
			if err := RunMigrations(ctx, repo.pool, cfg.MigrationsDir); err != nil {
				repo.Close()
				return nil, fmt.Errorf("failed to run migrations: %w", err)
			}
		}
		return repo, nil

	case DriverRedis:
		return NewRedisRepository(ctx, cfg.Redis)

	default:
		return nil, fmt.Errorf("unknown storage driver: %s", cfg.Driver)
	}
}
