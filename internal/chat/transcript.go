package chat

import (
	"slices"
	"sync"

	"calcula/internal/cache"
)

// Message is one line of the chat transcript.
type Message struct {
	Text     string `json:"text"`
	FromUser bool   `json:"isUser"`
}

// Transcript is the chat history of the current session, mirrored to the
// session cache so it survives a reload of the same session.
type Transcript struct {
	mu       sync.Mutex
	session  *cache.Session
	messages []Message
}

// NewTranscript restores the transcript cached in session, if any.
func NewTranscript(session *cache.Session) *Transcript {
	t := &Transcript{session: session}
	var cached []Message
	if session.LoadJSON(cache.KeyChatTranscript, &cached) {
		t.messages = cached
	}
	return t
}

// Append adds messages and writes the whole transcript back to the cache.
func (t *Transcript) Append(msgs ...Message) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.messages = append(t.messages, msgs...)
	return t.session.StoreJSON(cache.KeyChatTranscript, t.messages)
}

func (t *Transcript) Messages() []Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.messages)
}
