// Package audit persists a local trail of successful pipeline transitions
// for operator traceability. Failed operations are surfaced to the caller
// and intentionally never written here.
package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Entry records one successful transition.
type Entry struct {
	ID        int64
	ActorID   string
	Operation string
	Entity    string
	EntityID  string
	Ref       uuid.UUID
	Meta      map[string]any
	At        time.Time
}

// Recorder writes transition entries to Postgres.
type Recorder struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewRecorder constructs a Recorder.
func NewRecorder(pool *pgxpool.Pool, logger *slog.Logger) *Recorder {
	return &Recorder{pool: pool, logger: logger}
}

// TransitionRef derives a deterministic reference for an entity transition,
// so a replayed write collides instead of duplicating.
func TransitionRef(entity, entityID, operation string) uuid.UUID {
	return uuid.NewSHA1(uuid.Nil, []byte(fmt.Sprintf("%s:%s:%s", entity, entityID, operation)))
}

// Record inserts the entry. A duplicate ref is tolerated silently.
func (r *Recorder) Record(ctx context.Context, entry Entry) error {
	if r == nil || r.pool == nil {
		return errors.New("audit recorder not initialised")
	}
	if entry.Operation == "" || entry.Entity == "" || entry.EntityID == "" {
		return errors.New("audit entry requires operation/entity/entity_id")
	}
	if entry.Ref == uuid.Nil {
		entry.Ref = TransitionRef(entry.Entity, entry.EntityID, entry.Operation)
	}
	metaJSON, err := json.Marshal(entry.Meta)
	if err != nil {
		return err
	}
	var occurredAt any
	if !entry.At.IsZero() {
		occurredAt = entry.At
	}
	_, err = r.pool.Exec(ctx, `INSERT INTO pipeline_transitions (actor_id, operation, entity, entity_id, ref, meta, occurred_at)
VALUES ($1, $2, $3, $4, $5, $6, COALESCE($7, NOW()))`,
		entry.ActorID, entry.Operation, entry.Entity, entry.EntityID, entry.Ref, metaJSON, occurredAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil
		}
		if r.logger != nil {
			r.logger.Error("record transition", slog.Any("error", err))
		}
		return err
	}
	return nil
}

// List returns the recorded transitions for an entity, oldest first.
func (r *Recorder) List(ctx context.Context, entity, entityID string) ([]Entry, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("audit recorder not initialised")
	}
	rows, err := r.pool.Query(ctx, `SELECT id, actor_id, operation, entity, entity_id, ref, meta, occurred_at
FROM pipeline_transitions WHERE entity=$1 AND entity_id=$2 ORDER BY occurred_at ASC`, entity, entityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []Entry
	for rows.Next() {
		var e Entry
		var metaJSON []byte
		if err := rows.Scan(&e.ID, &e.ActorID, &e.Operation, &e.Entity, &e.EntityID, &e.Ref, &metaJSON, &e.At); err != nil {
			return nil, err
		}
		if len(metaJSON) > 0 {
			if err := json.Unmarshal(metaJSON, &e.Meta); err != nil {
				return nil, err
			}
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
