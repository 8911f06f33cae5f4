// Package session keeps uploaded ledgers apart. Every upload gets its own
// session id and an immutable ledger; nothing is shared between sessions.
package session

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"spendtrend/internal/cache"
	"spendtrend/internal/core"
	"spendtrend/internal/ingest"
	"spendtrend/internal/log"
)

var ErrNotFound = errors.New("session not found")

// Session is one uploaded ledger and how it got there.
type Session struct {
	ID        string       `json:"session_id"`
	Source    string       `json:"source"`
	CreatedAt time.Time    `json:"created_at"`
	Stats     ingest.Stats `json:"stats"`
	Ledger    core.Ledger  `json:"-"`
}

type Store struct {
	entries *cache.LRUCache[*Session]
	logger  *log.Logger
	now     func() time.Time
}

type Options struct {
	TTL        time.Duration
	MaxEntries int
	Logger     *log.Logger
	Clock      func() time.Time
}

func NewStore(opts Options) *Store {
	logger := opts.Logger
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentSession)

	now := opts.Clock
	if now == nil {
		now = time.Now
	}

	s := &Store{logger: logger, now: now}
	s.entries = cache.NewLRUCache(opts.MaxEntries, opts.TTL,
		cache.WithClock[*Session](now),
		cache.WithEvictHook(func(id string, _ *Session) {
			logger.Info("Session evicted", log.FieldSessionID, id)
		}),
	)
	return s
}

// Create stores ledger under a fresh session id.
func (s *Store) Create(source string, ledger core.Ledger, stats ingest.Stats) *Session {
	sess := &Session{
		ID:        uuid.NewString(),
		Source:    source,
		CreatedAt: s.now().UTC(),
		Stats:     stats,
		Ledger:    ledger,
	}
	s.entries.Set(sess.ID, sess)
	s.logger.Info("Session created",
		log.FieldSessionID, sess.ID,
		log.FieldSource, source,
		log.FieldRowsKept, stats.Kept,
	)
	return sess
}

// Get returns the session and refreshes its expiry.
func (s *Store) Get(id string) (*Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	sess, ok := s.entries.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return sess, nil
}

func (s *Store) Delete(id string) error {
	if !s.entries.Delete(id) {
		return ErrNotFound
	}
	s.logger.Info("Session deleted", log.FieldSessionID, id)
	return nil
}

func (s *Store) Len() int {
	return s.entries.Size()
}

// Cleaner exposes the backing cache to a cache.Janitor.
func (s *Store) Cleaner() cache.Cleaner {
	return s.entries
}
