package session

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/blueprint/internal/ir"
	"github.com/roach88/blueprint/internal/mutate"
)

// ReplayError reports a journal change whose recomputed document hash
// does not match the recorded one.
type ReplayError struct {
	Seq  int64
	Op   string
	Want string
	Got  string
}

func (e *ReplayError) Error() string {
	return fmt.Sprintf("replay seq %d (%s): document hash %s, journal has %s", e.Seq, e.Op, short(e.Got), short(e.Want))
}

func short(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}

// Replay re-applies changes on top of seed and checks each resulting
// document against the recorded hash. It returns the final document.
// Changes must be in Seq order starting at 1.
func Replay(seed ir.Document, changes []Change) (ir.Document, error) {
	docs := []ir.Document{seed}
	current := seed

	for _, c := range changes {
		if want := int64(len(docs)); c.Seq != want {
			return ir.Document{}, fmt.Errorf("replay: expected seq %d, got %d", want, c.Seq)
		}

		var next ir.Document
		if c.Op == OpRestore {
			var args restoreArgs
			if err := json.Unmarshal([]byte(c.Args), &args); err != nil {
				return ir.Document{}, fmt.Errorf("replay seq %d: restore args: %w", c.Seq, err)
			}
			if args.Index < 0 || args.Index >= len(docs) {
				return ir.Document{}, fmt.Errorf("replay seq %d: restore index %d out of range", c.Seq, args.Index)
			}
			next = docs[args.Index]
		} else {
			op, err := mutate.Unmarshal(c.Op, c.Args)
			if err != nil {
				return ir.Document{}, fmt.Errorf("replay seq %d: %w", c.Seq, err)
			}
			next, err = op.Apply(current)
			if err != nil {
				return ir.Document{}, fmt.Errorf("replay seq %d: %s: %w", c.Seq, c.Op, err)
			}
		}

		if got := ir.MustDocumentHash(next); got != c.DocumentHash {
			return ir.Document{}, &ReplayError{Seq: c.Seq, Op: c.Op, Want: c.DocumentHash, Got: got}
		}
		docs = append(docs, next)
		current = next
	}
	return current, nil
}
