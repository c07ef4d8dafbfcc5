package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/blueprint/internal/ir"
	"github.com/roach88/blueprint/internal/session"
)

var (
	// ErrSessionExists is returned by Begin for an id that is already journaled.
	ErrSessionExists = errors.New("session already exists")

	// ErrSessionNotFound is returned for an unknown session id.
	ErrSessionNotFound = errors.New("session not found")

	// ErrOutOfSequence is returned by Append when seq does not follow the
	// last journaled change.
	ErrOutOfSequence = errors.New("change out of sequence")
)

const timeLayout = time.RFC3339Nano

var _ session.Journal = (*Store)(nil)

// Begin journals a new session with its seed document.
func (s *Store) Begin(ctx context.Context, sessionID string, seed ir.Document, startedAt time.Time) error {
	canonical, err := ir.MarshalCanonical(seed)
	if err != nil {
		return fmt.Errorf("marshal seed: %w", err)
	}
	hash, err := ir.DocumentHash(seed)
	if err != nil {
		return fmt.Errorf("hash seed: %w", err)
	}

	var exists int
	err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions WHERE id = ?`, sessionID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check session %s: %w", sessionID, err)
	}
	if exists > 0 {
		return fmt.Errorf("%w: %s", ErrSessionExists, sessionID)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (id, started_at, seed_document, seed_hash, engine_version, ir_version)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		sessionID,
		startedAt.UTC().Format(timeLayout),
		string(canonical),
		hash,
		ir.EngineVersion,
		ir.IRVersion,
	)
	if err != nil {
		return fmt.Errorf("write session %s: %w", sessionID, err)
	}
	return nil
}

// Append journals one committed change. The change must carry the next seq
// for the session; its ID is chained from the previous change (or from the
// seed hash for the first change).
func (s *Store) Append(ctx context.Context, sessionID string, c session.Change) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append: %w", err)
	}
	defer tx.Rollback()

	prevID, lastSeq, err := chainHead(ctx, tx, sessionID)
	if err != nil {
		return err
	}
	if c.Seq != lastSeq+1 {
		return fmt.Errorf("%w: session %s expects seq %d, got %d", ErrOutOfSequence, sessionID, lastSeq+1, c.Seq)
	}

	id := ir.EntryID(prevID, c.Seq, c.Op, c.Args, c.DocumentHash)
	_, err = tx.ExecContext(ctx, `
		INSERT INTO changes (id, session_id, seq, op, args, document_hash, prev_id, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		id,
		sessionID,
		c.Seq,
		c.Op,
		c.Args,
		c.DocumentHash,
		prevID,
		c.Timestamp.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("write change %s/%d: %w", sessionID, c.Seq, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit change %s/%d: %w", sessionID, c.Seq, err)
	}
	return nil
}

// chainHead returns the ID and seq of the last change of a session, or the
// seed hash and 0 when nothing has been appended yet.
func chainHead(ctx context.Context, tx *sql.Tx, sessionID string) (string, int64, error) {
	var (
		id  string
		seq int64
	)
	err := tx.QueryRowContext(ctx, `
		SELECT id, seq FROM changes
		WHERE session_id = ?
		ORDER BY seq DESC
		LIMIT 1
	`, sessionID).Scan(&id, &seq)
	if err == nil {
		return id, seq, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", 0, fmt.Errorf("read chain head %s: %w", sessionID, err)
	}

	var seedHash string
	err = tx.QueryRowContext(ctx, `SELECT seed_hash FROM sessions WHERE id = ?`, sessionID).Scan(&seedHash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", 0, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	if err != nil {
		return "", 0, fmt.Errorf("read session %s: %w", sessionID, err)
	}
	return seedHash, 0, nil
}
