package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/yourname/fitcoach/internal"
	"github.com/yourname/fitcoach/internal/storage"
)

// History is capped so the model context and the stored row stay bounded.
const maxChatHistory = 50

type Coach struct {
	store     storage.ChatRepository
	generator PlanGenerator
	logger    internal.Logger
}

func NewCoach(store storage.ChatRepository, generator PlanGenerator, logger internal.Logger) *Coach {
	return &Coach{store: store, generator: generator, logger: logger}
}

type ChatRequest struct {
	Message string `json:"message" validate:"required,max=4000"`
}

type ChatReply struct {
	Response  string `json:"response"`
	SessionID string `json:"session_id"`
}

// Chat sends a message to the coach and appends both turns to the user's
// session history.
func (c *Coach) Chat(ctx context.Context, user *internal.User, body *ChatRequest) (*ChatReply, error) {
	if err := validate.Struct(body); err != nil {
		return nil, internal.ErrOutOfRange
	}

	session, err := c.store.GetChatSession(ctx, user.ID)
	if err != nil {
		if !errors.Is(err, internal.ErrNotFound) {
			return nil, err
		}
		session = &internal.ChatSession{ID: uuid.NewString(), UserID: user.ID}
	}

	reply, err := c.generator.Chat(ctx, user, session.Messages, body.Message)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	session.Messages = append(session.Messages,
		internal.ChatMessage{Role: "user", Content: body.Message, Timestamp: now},
		internal.ChatMessage{Role: "assistant", Content: reply, Timestamp: now},
	)
	if len(session.Messages) > maxChatHistory {
		session.Messages = session.Messages[len(session.Messages)-maxChatHistory:]
	}
	session.UpdatedAt = now

	if err := c.store.SaveChatSession(ctx, session); err != nil {
		return nil, err
	}
	return &ChatReply{Response: reply, SessionID: session.ID}, nil
}

func (c *Coach) History(ctx context.Context, userID string) ([]internal.ChatMessage, error) {
	session, err := c.store.GetChatSession(ctx, userID)
	if err != nil {
		if errors.Is(err, internal.ErrNotFound) {
			return []internal.ChatMessage{}, nil
		}
		return nil, err
	}
	return session.Messages, nil
}

func (c *Coach) ClearHistory(ctx context.Context, userID string) error {
	session, err := c.store.GetChatSession(ctx, userID)
	if err != nil {
		if errors.Is(err, internal.ErrNotFound) {
			return nil
		}
		return err
	}
	session.Messages = nil
	session.UpdatedAt = time.Now()
	return c.store.SaveChatSession(ctx, session)
}
