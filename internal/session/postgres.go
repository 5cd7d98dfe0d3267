package session

import (
	"context"
	"time"

	"github.com/Aashish1107/TravelAgent/internal/db"
)

type PostgresRepo interface {
	GetSession(ctx context.Context, sid string, now time.Time) ([]byte, error)
	UpsertSession(ctx context.Context, sid string, data []byte, expire time.Time) error
	DeleteSession(ctx context.Context, sid string) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

// PostgresStore keeps sessions in the sessions table. Expired rows are
// invisible to Get and removed by the sweeper.
type PostgresStore struct {
	repo PostgresRepo
	now  func() time.Time
}

func NewPostgresStore(repo PostgresRepo) *PostgresStore {
	return &PostgresStore{repo: repo, now: time.Now}
}

func (s *PostgresStore) Get(ctx context.Context, id string) ([]byte, error) {
	data, err := s.repo.GetSession(ctx, id, s.now())
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

func (s *PostgresStore) Set(ctx context.Context, id string, data []byte, expiresAt time.Time) error {
	return s.repo.UpsertSession(ctx, id, data, expiresAt)
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	return s.repo.DeleteSession(ctx, id)
}

func (s *PostgresStore) DeleteExpired(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpiredSessions(ctx, s.now())
}
