package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/blueprint/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Session string
}

// HistoryChange is one journaled change in JSON output.
type HistoryChange struct {
	Seq          int64     `json:"seq"`
	Op           string    `json:"op"`
	Args         string    `json:"args"`
	DocumentHash string    `json:"documentHash"`
	Timestamp    time.Time `json:"timestamp"`
	ID           string    `json:"id"`
}

// HistoryResult is the JSON payload of history for one session.
type HistoryResult struct {
	SessionID     string          `json:"sessionId"`
	StartedAt     time.Time       `json:"startedAt"`
	SeedHash      string          `json:"seedHash"`
	EngineVersion string          `json:"engineVersion"`
	Changes       []HistoryChange `json:"changes"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history <journal>",
		Short: "Show journaled sessions and their changes",
		Long: `Show the contents of an audit journal written by apply --journal.

Without --session, every journaled session is listed with its change count.
With --session, each change of that session is listed in order.

Exit codes:
  0 - Journal read
  2 - Command error (journal not found, unknown session)

Examples:
  blueprint history audit.db
  blueprint history audit.db --session 0192f7c4-...
  blueprint history audit.db --session 0192f7c4-... --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Session, "session", "", "show the changes of one session")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command, path string) error {
	ctx := cmd.Context()
	f := opts.formatter(cmd)

	st, err := openJournal(f, path)
	if err != nil {
		return err
	}
	defer st.Close()

	if opts.Session == "" {
		sessions, err := st.ListSessions(ctx)
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeJournal, "failed to list sessions", err)
		}
		if f.JSON() {
			return f.Success(sessions)
		}
		if len(sessions) == 0 {
			return f.Success("No sessions found in journal.")
		}
		for _, s := range sessions {
			fmt.Fprintf(f.Writer, "%s  %s  %d changes\n", s.ID, s.StartedAt.Format(time.RFC3339), s.Changes)
		}
		return nil
	}

	rec, err := st.ReadSession(ctx, opts.Session)
	if err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			return f.Fail(ExitCommandError, ErrCodeNotFound, "unknown session", err)
		}
		return f.Fail(ExitCommandError, ErrCodeJournal, "failed to read session", err)
	}
	records, err := st.ReadChanges(ctx, opts.Session)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeJournal, "failed to read changes", err)
	}

	if f.JSON() {
		result := HistoryResult{
			SessionID:     rec.ID,
			StartedAt:     rec.StartedAt,
			SeedHash:      rec.SeedHash,
			EngineVersion: rec.EngineVersion,
			Changes:       make([]HistoryChange, 0, len(records)),
		}
		for _, r := range records {
			result.Changes = append(result.Changes, HistoryChange{
				Seq:          r.Seq,
				Op:           r.Op,
				Args:         r.Args,
				DocumentHash: r.DocumentHash,
				Timestamp:    r.Timestamp,
				ID:           r.ID,
			})
		}
		return f.Success(result)
	}

	fmt.Fprintf(f.Writer, "Session %s (started %s)\n", rec.ID, rec.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(f.Writer, "  [0] seed  %s\n", short(rec.SeedHash))
	for _, r := range records {
		fmt.Fprintf(f.Writer, "  [%d] %s  %s\n", r.Seq, r.Op, short(r.DocumentHash))
		f.VerboseLog("      args: %s", r.Args)
	}
	return nil
}

// openJournal opens an existing journal. store.Open would create a
// missing file, so absence is checked first.
func openJournal(f *OutputFormatter, path string) (*store.Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeNotFound, "journal not found", err)
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeJournal, "failed to open journal", err)
	}
	return st, nil
}

func short(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}
