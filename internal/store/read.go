package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/blueprint/internal/ir"
	"github.com/roach88/blueprint/internal/session"
)

// SessionRecord is a journaled session header.
type SessionRecord struct {
	ID            string      `json:"id"`
	StartedAt     time.Time   `json:"startedAt"`
	Seed          ir.Document `json:"seed"`
	SeedHash      string      `json:"seedHash"`
	EngineVersion string      `json:"engineVersion"`
	IRVersion     string      `json:"irVersion"`
}

// ChangeRecord is a journaled change with its chain links.
type ChangeRecord struct {
	session.Change
	ID     string `json:"id"`
	PrevID string `json:"prevId"`
}

// SessionSummary is one row of ListSessions.
type SessionSummary struct {
	ID        string    `json:"id"`
	StartedAt time.Time `json:"startedAt"`
	Changes   int       `json:"changes"`
}

// ReadSession returns the header and seed document of a session.
func (s *Store) ReadSession(ctx context.Context, sessionID string) (SessionRecord, error) {
	var (
		rec       SessionRecord
		startedAt string
		seed      string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, started_at, seed_document, seed_hash, engine_version, ir_version
		FROM sessions
		WHERE id = ?
	`, sessionID).Scan(&rec.ID, &startedAt, &seed, &rec.SeedHash, &rec.EngineVersion, &rec.IRVersion)
	if errors.Is(err, sql.ErrNoRows) {
		return SessionRecord{}, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	if err != nil {
		return SessionRecord{}, fmt.Errorf("read session %s: %w", sessionID, err)
	}

	if rec.StartedAt, err = time.Parse(timeLayout, startedAt); err != nil {
		return SessionRecord{}, fmt.Errorf("parse started_at of %s: %w", sessionID, err)
	}
	if err := json.Unmarshal([]byte(seed), &rec.Seed); err != nil {
		return SessionRecord{}, fmt.Errorf("decode seed of %s: %w", sessionID, err)
	}
	return rec, nil
}

// ReadChanges returns every change of a session in seq order.
// Returns an empty slice (not nil) when the session has no changes.
func (s *Store) ReadChanges(ctx context.Context, sessionID string) ([]ChangeRecord, error) {
	rows, err := s.query(ctx, `
		SELECT id, prev_id, seq, op, args, document_hash, recorded_at
		FROM changes
		WHERE session_id = ?
		ORDER BY seq ASC
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query changes of %s: %w", sessionID, err)
	}
	defer rows.Close()

	records := []ChangeRecord{}
	for rows.Next() {
		var (
			rec        ChangeRecord
			recordedAt string
		)
		if err := rows.Scan(&rec.ID, &rec.PrevID, &rec.Seq, &rec.Op, &rec.Args, &rec.DocumentHash, &recordedAt); err != nil {
			return nil, fmt.Errorf("scan change: %w", err)
		}
		if rec.Timestamp, err = time.Parse(timeLayout, recordedAt); err != nil {
			return nil, fmt.Errorf("parse recorded_at of %s/%d: %w", sessionID, rec.Seq, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate changes: %w", err)
	}
	return records, nil
}

// ListSessions returns every journaled session, oldest first.
func (s *Store) ListSessions(ctx context.Context) ([]SessionSummary, error) {
	rows, err := s.query(ctx, `
		SELECT s.id, s.started_at, COUNT(c.id)
		FROM sessions s
		LEFT JOIN changes c ON c.session_id = s.id
		GROUP BY s.id
		ORDER BY s.started_at ASC, s.id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	summaries := []SessionSummary{}
	for rows.Next() {
		var (
			sum       SessionSummary
			startedAt string
		)
		if err := rows.Scan(&sum.ID, &startedAt, &sum.Changes); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		if sum.StartedAt, err = time.Parse(timeLayout, startedAt); err != nil {
			return nil, fmt.Errorf("parse started_at of %s: %w", sum.ID, err)
		}
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return summaries, nil
}

// Changes strips chain links, yielding the input of session.Replay.
func Changes(records []ChangeRecord) []session.Change {
	out := make([]session.Change, len(records))
	for i, r := range records {
		out[i] = r.Change
	}
	return out
}
