package services

import (
	"context"
	"errors"
	"fmt"

	"calcula/internal/cache"
	"calcula/internal/chat"
	"calcula/internal/core"
	"calcula/internal/log"
)

const chatHint = `Could not understand. Try: "50 reais groceries 12/04/2025"`

// ChatService records transactions typed as free text and keeps the
// session transcript.
type ChatService struct {
	state      *StateController
	transcript *chat.Transcript
	logger     *log.Logger
}

func NewChatService(state *StateController, session *cache.Session) *ChatService {
	return &ChatService{
		state:      state,
		transcript: chat.NewTranscript(session),
		logger:     state.logger.WithComponent(log.ComponentChat),
	}
}

// Send parses text, stores the resulting transaction and returns the
// bot reply. The reply is filled even when an error is returned.
func (s *ChatService) Send(ctx context.Context, text string) (string, core.Transaction, error) {
	userMsg := chat.Message{Text: text, FromUser: true}
	today := core.DateOf(s.state.now())

	draft, err := chat.Parse(text, s.state.Snapshot().Categories, today)
	if err != nil {
		reply := chatHint
		if errors.Is(err, chat.ErrNoCategories) {
			reply = "There is no expense category to file this under."
		}
		s.record(userMsg, chat.Message{Text: reply})
		s.logger.DebugContext(ctx, "Chat message not understood", log.FieldOperation, log.OpParse, log.FieldError, err)
		return reply, core.Transaction{}, err
	}

	t, err := s.state.AddTransaction(ctx, draft)
	if err != nil {
		reply := "Could not add the transaction."
		s.record(userMsg, chat.Message{Text: reply})
		return reply, core.Transaction{}, err
	}

	reply := fmt.Sprintf("Added %s to %s on %s", t.Amount.Format(), s.state.CategoryName(t.Category), t.Date.Format())
	s.record(userMsg, chat.Message{Text: reply})
	return reply, t, nil
}

func (s *ChatService) Transcript() []chat.Message {
	return s.transcript.Messages()
}

func (s *ChatService) record(msgs ...chat.Message) {
	if err := s.transcript.Append(msgs...); err != nil {
		s.logger.Warn("Failed to cache chat transcript", log.FieldError, err)
	}
}
