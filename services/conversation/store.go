// File: services/conversation/store.go
package conversation

import (
	"sync"
	"time"

	"clipbook/models"
	"clipbook/utils"

	"go.uber.org/zap"
)

// ConversationStore owns per-subject dialogue state. All access goes
// through WithConversation so that turns for one subject are applied in
// arrival order while different subjects proceed in parallel.
type ConversationStore interface {
	// WithConversation runs fn with exclusive access to the subject's
	// conversation, creating it lazily on first use.
	WithConversation(subjectID string, fn func(conv *models.Conversation))

	// Clear drops a subject's state.
	Clear(subjectID string)
}

type storeEntry struct {
	mu   sync.Mutex
	conv *models.Conversation
}

// MemoryConversationStore keeps conversations in process memory with a TTL
// sweep. Persistence across restarts is explicitly not a goal; the TTL
// bounds growth over the process lifetime.
type MemoryConversationStore struct {
	mu      sync.Mutex
	entries map[string]*storeEntry
	ttl     time.Duration

	// Now is the clock; tests override it.
	Now func() time.Time
}

func NewMemoryConversationStore(ttl time.Duration) *MemoryConversationStore {
	return &MemoryConversationStore{
		entries: make(map[string]*storeEntry),
		ttl:     ttl,
	}
}

func (s *MemoryConversationStore) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *MemoryConversationStore) WithConversation(subjectID string, fn func(conv *models.Conversation)) {
	for {
		s.mu.Lock()
		e, ok := s.entries[subjectID]
		if !ok {
			e = &storeEntry{conv: &models.Conversation{
				SubjectID: subjectID,
				Stage:     models.StageInitial,
				UpdatedAt: s.now(),
			}}
			s.entries[subjectID] = e
		}
		s.mu.Unlock()

		e.mu.Lock()

		// The sweeper may have evicted the entry (and a later turn created a
		// replacement) between the map read and the lock. Holding a stale
		// entry's lock guards nothing, so look the subject up again.
		s.mu.Lock()
		current := s.entries[subjectID] == e
		s.mu.Unlock()
		if !current {
			e.mu.Unlock()
			continue
		}

		fn(e.conv)
		e.conv.UpdatedAt = s.now()
		e.mu.Unlock()
		return
	}
}

func (s *MemoryConversationStore) Clear(subjectID string) {
	s.mu.Lock()
	delete(s.entries, subjectID)
	s.mu.Unlock()
}

// StartSweeper evicts idle conversations in the background.
func (s *MemoryConversationStore) StartSweeper(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for range ticker.C {
			s.sweep(s.now())
		}
	}()
}

func (s *MemoryConversationStore) sweep(now time.Time) {
	logger := utils.GetLogger()
	s.mu.Lock()
	defer s.mu.Unlock()

	for subjectID, e := range s.entries {
		// Skip subjects with a turn in flight.
		if !e.mu.TryLock() {
			continue
		}
		expired := now.Sub(e.conv.UpdatedAt) > s.ttl
		e.mu.Unlock()
		if expired {
			delete(s.entries, subjectID)
			logger.Debug("evicted idle conversation", zap.String("subjectID", subjectID))
		}
	}
}
