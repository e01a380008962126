// Package cache holds the volatile, session-scoped string store used for
// convenience state such as the active filter and the chat transcript.
// Nothing in it is a source of truth; losing it only resets defaults.
package cache

import (
	"encoding/json"
	"time"
)

// Fixed session keys.
const (
	KeyFilters        = "finance-filters"
	KeyChatTranscript = "chat-transcript"
)

// Cache is a keyed store of values of one type.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	Delete(key string)
	Size() int
}

// Session is a string store for the lifetime of one process.
type Session struct {
	store Cache[string]
}

// NewSession returns a session store holding at most size entries, each
// expiring ttl after its last write.
func NewSession(size int, ttl time.Duration) *Session {
	return &Session{store: NewLRUCache[string](size, ttl)}
}

func (s *Session) Get(key string) (string, bool) { return s.store.Get(key) }

func (s *Session) Set(key, value string) { s.store.Set(key, value) }

func (s *Session) Delete(key string) { s.store.Delete(key) }

// LoadJSON decodes the value under key into v. It reports false when the
// key is missing or the stored text does not decode; the bad entry is
// dropped in that case.
func (s *Session) LoadJSON(key string, v any) bool {
	raw, ok := s.store.Get(key)
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		s.store.Delete(key)
		return false
	}
	return true
}

// StoreJSON encodes v under key.
func (s *Session) StoreJSON(key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.store.Set(key, string(b))
	return nil
}
