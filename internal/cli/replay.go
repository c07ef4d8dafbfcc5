package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/blueprint/internal/ir"
	"github.com/roach88/blueprint/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Session string // optional - specific session only
}

// ReplaySessionResult holds the replay result for a single session.
type ReplaySessionResult struct {
	SessionID string `json:"sessionId"`
	Changes   int    `json:"changes"`
	Verified  bool   `json:"verified"`
	Hash      string `json:"hash,omitempty"`
	Error     string `json:"error,omitempty"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Sessions    []ReplaySessionResult `json:"sessions"`
	AllVerified bool                  `json:"allVerified"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay <journal>",
		Short: "Verify and replay journaled sessions",
		Long: `Verify the hash chain of journaled sessions and replay their changes.

Each change ID is recomputed from the previous one, then every change is
re-applied to the seed document and the resulting document hash is compared
with the recorded one.

Exit codes:
  0 - Every session verified
  1 - A chain link or a replayed hash did not match
  2 - Command error (journal not found, unknown session)

Examples:
  blueprint replay audit.db
  blueprint replay audit.db --session 0192f7c4-...
  blueprint replay audit.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Session, "session", "", "replay a specific session only")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command, path string) error {
	ctx := cmd.Context()
	f := opts.formatter(cmd)

	st, err := openJournal(f, path)
	if err != nil {
		return err
	}
	defer st.Close()

	var summaries []store.SessionSummary
	if opts.Session != "" {
		records, err := st.ReadChanges(ctx, opts.Session)
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeJournal, "failed to read changes", err)
		}
		summaries = []store.SessionSummary{{ID: opts.Session, Changes: len(records)}}
	} else {
		summaries, err = st.ListSessions(ctx)
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeJournal, "failed to list sessions", err)
		}
	}

	result := ReplayResult{
		Sessions:    make([]ReplaySessionResult, 0, len(summaries)),
		AllVerified: true,
	}
	for _, s := range summaries {
		r, err := replaySession(ctx, st, s)
		if err != nil {
			if errors.Is(err, store.ErrSessionNotFound) {
				return f.Fail(ExitCommandError, ErrCodeNotFound, "unknown session", err)
			}
			return f.Fail(ExitCommandError, ErrCodeJournal, fmt.Sprintf("failed to replay session %s", s.ID), err)
		}
		result.Sessions = append(result.Sessions, r)
		if !r.Verified {
			result.AllVerified = false
		}
	}

	if f.JSON() {
		if err := f.Success(result); err != nil {
			return err
		}
	} else {
		outputReplayText(f, result)
	}

	if !result.AllVerified {
		return NewExitError(ExitFailure, "journal verification failed")
	}
	return nil
}

// replaySession verifies one session. A broken chain, a hash mismatch or a
// change that no longer applies is part of the result; an unknown session is
// returned as an error.
func replaySession(ctx context.Context, st *store.Store, s store.SessionSummary) (ReplaySessionResult, error) {
	r := ReplaySessionResult{SessionID: s.ID, Changes: s.Changes}

	doc, err := st.Replay(ctx, s.ID)
	if errors.Is(err, store.ErrSessionNotFound) {
		return r, err
	}
	if err != nil {
		r.Error = err.Error()
		return r, nil
	}
	r.Verified = true
	r.Hash = ir.MustDocumentHash(doc)
	return r, nil
}

func outputReplayText(f *OutputFormatter, result ReplayResult) {
	if len(result.Sessions) == 0 {
		fmt.Fprintln(f.Writer, "No sessions found in journal.")
		return
	}
	for _, s := range result.Sessions {
		if s.Verified {
			fmt.Fprintf(f.Writer, "✓ %s: %d changes replayed (%s)\n", s.SessionID, s.Changes, short(s.Hash))
		} else {
			fmt.Fprintf(f.Writer, "✗ %s: %s\n", s.SessionID, s.Error)
		}
	}
	if result.AllVerified {
		fmt.Fprintf(f.Writer, "\nAll %d sessions verified.\n", len(result.Sessions))
	} else {
		fmt.Fprintln(f.Writer, "\nJournal verification FAILED.")
	}
}
