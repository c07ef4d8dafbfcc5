package store

import (
	"context"
	"fmt"

	"github.com/roach88/blueprint/internal/ir"
	"github.com/roach88/blueprint/internal/session"
)

// ChainError reports a change whose stored ID or link does not match the
// recomputed chain.
type ChainError struct {
	SessionID string
	Seq       int64
	Reason    string
}

func (e *ChainError) Error() string {
	return fmt.Sprintf("session %s seq %d: %s", e.SessionID, e.Seq, e.Reason)
}

// VerifyChain recomputes every change ID of a session from the seed hash
// forward and checks the seed hash against the stored seed document.
func (s *Store) VerifyChain(ctx context.Context, sessionID string) error {
	rec, err := s.ReadSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if got := ir.MustDocumentHash(rec.Seed); got != rec.SeedHash {
		return &ChainError{SessionID: sessionID, Seq: 0, Reason: "seed document does not match seed hash"}
	}

	changes, err := s.ReadChanges(ctx, sessionID)
	if err != nil {
		return err
	}

	prev := rec.SeedHash
	for i, c := range changes {
		if c.Seq != int64(i+1) {
			return &ChainError{SessionID: sessionID, Seq: c.Seq, Reason: fmt.Sprintf("expected seq %d", i+1)}
		}
		if c.PrevID != prev {
			return &ChainError{SessionID: sessionID, Seq: c.Seq, Reason: "previous link does not match"}
		}
		if want := ir.EntryID(prev, c.Seq, c.Op, c.Args, c.DocumentHash); c.ID != want {
			return &ChainError{SessionID: sessionID, Seq: c.Seq, Reason: "entry id does not match contents"}
		}
		prev = c.ID
	}
	return nil
}

// Replay verifies the chain of a session, then re-executes its changes and
// returns the final document.
func (s *Store) Replay(ctx context.Context, sessionID string) (ir.Document, error) {
	if err := s.VerifyChain(ctx, sessionID); err != nil {
		return ir.Document{}, err
	}
	rec, err := s.ReadSession(ctx, sessionID)
	if err != nil {
		return ir.Document{}, err
	}
	changes, err := s.ReadChanges(ctx, sessionID)
	if err != nil {
		return ir.Document{}, err
	}
	return session.Replay(rec.Seed, Changes(changes))
}
