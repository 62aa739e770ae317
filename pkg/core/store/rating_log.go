package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
)

// Schema creates the rating log table.
const Schema = `
CREATE TABLE IF NOT EXISTS rating_log (
	id          BIGSERIAL PRIMARY KEY,
	request_id  TEXT NOT NULL,
	ticker      TEXT NOT NULL,
	rating      TEXT NOT NULL,
	score       INTEGER NOT NULL,
	components  JSONB NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL
)`

const insertRating = `
	INSERT INTO rating_log (request_id, ticker, rating, score, components, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)`

// Execer is the part of *pgxpool.Pool the log needs.
type Execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// Entry is one produced rating.
type Entry struct {
	RequestID  string
	Ticker     string
	Rating     string
	Score      int
	Components map[string]int
	CreatedAt  time.Time
}

type RatingLog struct {
	db  Execer
	now func() time.Time
}

func NewRatingLog(db Execer) *RatingLog {
	return &RatingLog{db: db, now: time.Now}
}

// Migrate creates the table when it does not exist.
func (l *RatingLog) Migrate(ctx context.Context) error {
	if _, err := l.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to create rating_log: %w", err)
	}
	return nil
}

func (l *RatingLog) Append(ctx context.Context, e Entry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = l.now().UTC()
	}
	if e.Components == nil {
		e.Components = map[string]int{}
	}
	components, err := json.Marshal(e.Components)
	if err != nil {
		return fmt.Errorf("failed to marshal components: %w", err)
	}

	if _, err := l.db.Exec(ctx, insertRating, e.RequestID, e.Ticker, e.Rating, e.Score, components, e.CreatedAt); err != nil {
		return fmt.Errorf("failed to append rating for %s: %w", e.Ticker, err)
	}
	zerolog.Ctx(ctx).Debug().Str("ticker", e.Ticker).Str("rating", e.Rating).Msg("rating logged")
	return nil
}
