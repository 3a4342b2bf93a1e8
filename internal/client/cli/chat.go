package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/ideaforge/internal/common"
	"github.com/dmitrijs2005/ideaforge/internal/models"
)

// Chat sends one message to the refinement assistant. The conversation so
// far travels with every request and is dropped on logout.
func (a *App) Chat(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}

	text, err := GetMultiline(a.reader, "-Message", a.out)
	if err != nil {
		return err
	}
	if text == "" {
		return fmt.Errorf("empty message: %w", common.ErrorValidation)
	}

	a.mu.Lock()
	history := append(append([]models.ChatMessage{}, a.chat...), models.ChatMessage{Role: "user", Content: text})
	a.mu.Unlock()

	reply, err := a.api.Chat(ctx, history)
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.chat = append(history, models.ChatMessage{Role: "assistant", Content: reply.Message})
	a.mu.Unlock()

	fmt.Fprintf(a.out, "\n%s\n", reply.Message)
	if reply.Usage != nil {
		fmt.Fprintf(a.out, "(%d tokens)\n", reply.Usage.TotalTokens)
	}
	return nil
}
