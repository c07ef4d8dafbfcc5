// Package session holds one editing session: the current document, its
// history log and the results of assistant requests.
//
// Every edit goes through Apply, which validates via the op, records the
// new document in history, appends a Change to the journal (if any) and
// only then makes the document current. A rejected op leaves the session
// exactly as it was.
//
// A Session is safe for concurrent use. Assistant requests run in their own
// goroutines and commit their result under the session lock in one step.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/roach88/blueprint/internal/assist"
	"github.com/roach88/blueprint/internal/history"
	"github.com/roach88/blueprint/internal/ir"
	"github.com/roach88/blueprint/internal/mutate"
	"github.com/roach88/blueprint/internal/project"
	"github.com/roach88/blueprint/internal/validate"
)

// OpRestore is the journal op name of a restore.
const OpRestore = "restore"

// Change is the journal form of one committed history entry.
type Change struct {
	Seq          int64     `json:"seq"`
	Op           string    `json:"op"`
	Args         string    `json:"args"`
	DocumentHash string    `json:"documentHash"`
	Timestamp    time.Time `json:"timestamp"`
}

// Journal persists the changes of a session, e.g. the SQLite audit store.
type Journal interface {
	Begin(ctx context.Context, sessionID string, seed ir.Document, startedAt time.Time) error
	Append(ctx context.Context, sessionID string, c Change) error
}

// TokenGenerator issues request tokens for assistant calls.
type TokenGenerator interface {
	Generate() string
}

type uuidTokens struct{}

func (uuidTokens) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Result is what a committed edit returns.
type Result struct {
	Document ir.Document                 `json:"document"`
	Entry    history.Entry               `json:"-"`
	Warnings []validate.ReferenceWarning `json:"warnings,omitempty"`
}

// Session is one editing session.
type Session struct {
	id        string
	logger    *zap.SugaredLogger
	clock     history.Clock
	assistant assist.Assistant
	journal   Journal
	tokens    TokenGenerator

	discardStale bool

	mu          sync.Mutex
	doc         ir.Document
	history     *history.Log
	latest      map[assist.Feature]string
	suggestions []string
	simulation  []assist.PerformanceResult
	converted   string

	pending sync.WaitGroup
}

// Option configures a Session.
type Option func(*Session)

// WithID sets the session id. Default is a UUIDv7.
func WithID(id string) Option {
	return func(s *Session) { s.id = id }
}

// WithLogger sets the logger. Default is a no-op logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(s *Session) { s.logger = l }
}

// WithClock sets the history clock. Default is history.SystemClock.
func WithClock(c history.Clock) Option {
	return func(s *Session) { s.clock = c }
}

// WithAssistant sets the assistant. Default is assist.NewMock().
func WithAssistant(a assist.Assistant) Option {
	return func(s *Session) { s.assistant = a }
}

// WithJournal records every change to j.
func WithJournal(j Journal) Option {
	return func(s *Session) { s.journal = j }
}

// WithTokens sets the request token generator. Default issues UUIDv7s.
func WithTokens(g TokenGenerator) Option {
	return func(s *Session) { s.tokens = g }
}

// WithDiscardStale drops an assistant result when a newer request for the
// same feature has been issued. By default the last result to resolve wins.
func WithDiscardStale(discard bool) Option {
	return func(s *Session) { s.discardStale = discard }
}

// New starts a session seeded with initial, which must validate.
func New(ctx context.Context, initial ir.Document, opts ...Option) (*Session, error) {
	s := &Session{
		logger: zap.NewNop().Sugar(),
		clock:  history.SystemClock{},
		tokens: uuidTokens{},
		latest: make(map[assist.Feature]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.id == "" {
		s.id = uuid.Must(uuid.NewV7()).String()
	}
	if s.assistant == nil {
		s.assistant = assist.NewMock(assist.WithLogger(s.logger))
	}

	seed, err := validate.Document(initial)
	if err != nil {
		return nil, fmt.Errorf("initial document: %w", err)
	}
	if seed.Endpoints == nil {
		seed.Endpoints = []ir.Endpoint{}
	}

	s.doc = seed
	s.history = history.New(seed, s.clock)
	if s.journal != nil {
		if err := s.journal.Begin(ctx, s.id, seed, s.history.Latest().Timestamp); err != nil {
			return nil, fmt.Errorf("begin journal: %w", err)
		}
	}
	s.logger.Debugw("session started", "session", s.id, "endpoints", len(seed.Endpoints), "models", seed.Schema.Len())
	return s, nil
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// Document returns a copy of the current document.
func (s *Session) Document() ir.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone()
}

// History returns copies of every history entry, oldest first.
func (s *Session) History() []history.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Entries()
}

// Apply runs op against the current document and commits the result.
// On error the session is unchanged.
func (s *Session) Apply(ctx context.Context, op mutate.Op) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applyLocked(ctx, op)
}

func (s *Session) applyLocked(ctx context.Context, op mutate.Op) (Result, error) {
	next, err := op.Apply(s.doc)
	if err != nil {
		s.logger.Debugw("op rejected", "session", s.id, "op", op.Name(), "error", err)
		return Result{}, fmt.Errorf("%s: %w", op.Name(), err)
	}
	args, err := mutate.Marshal(op)
	if err != nil {
		return Result{}, err
	}
	return s.commitLocked(ctx, next, op.Name(), args)
}

// Restore makes history entry index the current document again and records
// it as a new entry. Later entries are kept.
func (s *Session) Restore(ctx context.Context, index int) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.history.Restore(index)
	if err != nil {
		return Result{}, err
	}
	args, err := json.Marshal(restoreArgs{Index: index})
	if err != nil {
		return Result{}, err
	}
	return s.commitLocked(ctx, doc, OpRestore, string(args))
}

type restoreArgs struct {
	Index int `json:"index"`
}

// commitLocked journals next, records it in history and makes it current.
// The journal write comes first so a failed write commits nothing.
func (s *Session) commitLocked(ctx context.Context, next ir.Document, op, args string) (Result, error) {
	now := s.clock.Now()
	hash := ir.MustDocumentHash(next)
	seq := int64(s.history.Len())

	if s.journal != nil {
		c := Change{Seq: seq, Op: op, Args: args, DocumentHash: hash, Timestamp: now}
		if err := s.journal.Append(ctx, s.id, c); err != nil {
			return Result{}, fmt.Errorf("journal %s: %w", op, err)
		}
	}

	entry := s.history.RecordAt(next, now)
	s.doc = entry.Data
	warnings := validate.References(s.doc)
	s.logger.Debugw("op committed", "session", s.id, "op", op, "seq", entry.Seq, "warnings", len(warnings))

	return Result{Document: s.doc.Clone(), Entry: entry, Warnings: warnings}, nil
}

// Warnings returns the reference warnings of the current document.
func (s *Session) Warnings() []validate.ReferenceWarning {
	s.mu.Lock()
	defer s.mu.Unlock()
	return validate.References(s.doc)
}

// Project renders the current document.
func (s *Session) Project(target project.Target, opts ...project.Option) (string, error) {
	return project.Generate(s.Document(), target, opts...)
}
