package queuestore

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"sync"

	"concert-reservation/internal/domain/queue"
	"concert-reservation/internal/infra"

	"github.com/google/uuid"
)

type memoryEntry struct {
	token *queue.Token
	seq   uint64
}

// MemoryStore keeps tokens in process. It backs single-instance deployments and tests.
type MemoryStore struct {
	mu        sync.Mutex
	logger    *slog.Logger
	tokens    map[string]memoryEntry
	byAccount map[uuid.UUID]string // live token
	latest    map[uuid.UUID]string // newest token until purged
	seq       uint64
}

func NewMemoryStore(logger *slog.Logger) *MemoryStore {
	return &MemoryStore{
		logger:    logger,
		tokens:    make(map[string]memoryEntry),
		byAccount: make(map[uuid.UUID]string),
		latest:    make(map[uuid.UUID]string),
	}
}

func (s *MemoryStore) Add(_ context.Context, token *queue.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byAccount[token.AccountID()]; ok {
		return infra.WrapRepoErr(s.logger, infra.KindDuplicateKey, "account already holds a live token", nil)
	}
	if _, ok := s.tokens[token.ID()]; ok {
		return infra.WrapRepoErr(s.logger, infra.KindDuplicateKey, "token id already exists", nil)
	}

	s.seq++
	s.tokens[token.ID()] = memoryEntry{token: token, seq: s.seq}
	s.latest[token.AccountID()] = token.ID()
	if token.Status().IsLive() {
		s.byAccount[token.AccountID()] = token.ID()
	}
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*queue.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.tokens[id]
	if !ok {
		return nil, infra.WrapRepoErr(s.logger, infra.KindNotFound, "token not found", nil)
	}
	return e.token, nil
}

func (s *MemoryStore) FindByAccount(_ context.Context, accountID uuid.UUID) (*queue.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.latest[accountID]
	if !ok {
		return nil, infra.WrapRepoErr(s.logger, infra.KindNotFound, "no token for account", nil)
	}
	return s.tokens[id].token, nil
}

func (s *MemoryStore) Members(_ context.Context, status queue.Status, limit int) ([]*queue.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make([]memoryEntry, 0, len(s.tokens))
	for _, e := range s.tokens {
		if e.token.Status() == status {
			entries = append(entries, e)
		}
	}
	slices.SortFunc(entries, func(a, b memoryEntry) int {
		return cmp.Compare(a.seq, b.seq)
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	out := make([]*queue.Token, len(entries))
	for i, e := range entries {
		out[i] = e.token
	}
	return out, nil
}

func (s *MemoryStore) Count(_ context.Context, status queue.Status) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, e := range s.tokens {
		if e.token.Status() == status {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) CompareAndSet(_ context.Context, tr queue.Transition) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.tokens[tr.TokenID]
	if !ok || e.token.Status() != tr.From {
		return false, nil
	}
	next, err := e.token.Apply(tr)
	if err != nil {
		return false, nil
	}

	s.tokens[tr.TokenID] = memoryEntry{token: next, seq: e.seq}
	if !next.Status().IsLive() && s.byAccount[next.AccountID()] == next.ID() {
		delete(s.byAccount, next.AccountID())
	}
	return true, nil
}

func (s *MemoryStore) Remove(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.tokens[id]
	if !ok {
		return nil
	}
	delete(s.tokens, id)
	if s.byAccount[e.token.AccountID()] == id {
		delete(s.byAccount, e.token.AccountID())
	}
	if s.latest[e.token.AccountID()] == id {
		delete(s.latest, e.token.AccountID())
	}
	return nil
}
