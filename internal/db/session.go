package db

import (
	"context"
	"time"
)

// Session rows use the same layout as connect-pg-simple so existing session
// tables keep working: sid, sess (jsonb), expire.
func (db *Postgres) EnsureSessionSchema(ctx context.Context) error {
	queries := []string{
		`
		CREATE TABLE IF NOT EXISTS sessions (
			sid VARCHAR NOT NULL PRIMARY KEY,
			sess JSONB NOT NULL,
			expire TIMESTAMPTZ NOT NULL
		)
		`,
		`CREATE INDEX IF NOT EXISTS "IDX_session_expire" ON sessions(expire)`,
	}

	for _, query := range queries {
		if _, err := db.Pool.Exec(ctx, query); err != nil {
			return err
		}
	}
	return nil
}

// GetSession returns pgx.ErrNoRows for unknown and expired sessions alike.
func (db *Postgres) GetSession(ctx context.Context, sid string, now time.Time) ([]byte, error) {
	query := `
		SELECT sess
		FROM sessions
		WHERE sid = $1 AND expire > $2
	`
	var data []byte
	if err := db.Pool.QueryRow(ctx, query, sid, now).Scan(&data); err != nil {
		return nil, err
	}
	return data, nil
}

func (db *Postgres) UpsertSession(ctx context.Context, sid string, data []byte, expire time.Time) error {
	query := `
		INSERT INTO sessions (sid, sess, expire)
		VALUES ($1, $2, $3)
		ON CONFLICT (sid) DO UPDATE
		SET sess = EXCLUDED.sess, expire = EXCLUDED.expire
	`
	_, err := db.Pool.Exec(ctx, query, sid, data, expire)
	return err
}

func (db *Postgres) DeleteSession(ctx context.Context, sid string) error {
	_, err := db.Pool.Exec(ctx, `DELETE FROM sessions WHERE sid = $1`, sid)
	return err
}

func (db *Postgres) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM sessions WHERE expire <= $1`, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
