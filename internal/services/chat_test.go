package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"calcula/internal/cache"
	"calcula/internal/chat"
)

func TestChatServiceAddsTransaction(t *testing.T) {
	ctx := context.Background()
	session := cache.NewSession(4, 0)
	c := newController(t, newStore(t), session)
	svc := NewChatService(c, session)

	reply, tx, err := svc.Send(ctx, "12 reais groceries")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	for _, want := range []string{"R$ 12,00", "Groceries", "20/11/2025"} {
		if !strings.Contains(reply, want) {
			t.Errorf("reply %q missing %q", reply, want)
		}
	}
	if tx.Category != "cat-expense-groceries" || tx.Date != "2025-11-20" {
		t.Errorf("transaction = %+v", tx)
	}
	if n := len(c.Snapshot().Transactions); n != 1 {
		t.Errorf("stored transactions = %d", n)
	}

	if _, _, err := svc.Send(ctx, "hello there"); !errors.Is(err, chat.ErrNotUnderstood) {
		t.Errorf("expected ErrNotUnderstood, got %v", err)
	}

	msgs := NewChatService(c, session).Transcript()
	if len(msgs) != 4 || !msgs[0].FromUser || msgs[1].FromUser {
		t.Errorf("transcript = %+v", msgs)
	}
}
