package service_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourname/fitcoach/internal"
	"github.com/yourname/fitcoach/internal/service"
)

func TestCoachChatKeepsHistory(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	user := createTestUser(t, store)
	coach := service.NewCoach(store, stubGenerator{}, internal.NopLogger())

	reply, err := coach.Chat(ctx, user, &service.ChatRequest{Message: "how do I warm up?"})
	require.NoError(t, err)
	assert.Equal(t, "echo: how do I warm up?", reply.Response)
	assert.NotEmpty(t, reply.SessionID)

	reply2, err := coach.Chat(ctx, user, &service.ChatRequest{Message: "and cool down?"})
	require.NoError(t, err)
	assert.Equal(t, reply.SessionID, reply2.SessionID, "one session per user")

	history, err := coach.History(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, history, 4)
	assert.Equal(t, "user", history[0].Role)
	assert.Equal(t, "assistant", history[1].Role)
	assert.Equal(t, "and cool down?", history[2].Content)
}

func TestCoachChatRejectsEmptyMessage(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	user := createTestUser(t, store)
	coach := service.NewCoach(store, stubGenerator{}, internal.NopLogger())

	_, err := coach.Chat(ctx, user, &service.ChatRequest{Message: ""})
	assert.ErrorIs(t, err, internal.ErrOutOfRange)
}

func TestCoachHistoryIsCapped(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	user := createTestUser(t, store)
	coach := service.NewCoach(store, stubGenerator{}, internal.NopLogger())

	for i := 0; i < 30; i++ {
		_, err := coach.Chat(ctx, user, &service.ChatRequest{Message: fmt.Sprintf("message %d", i)})
		require.NoError(t, err)
	}

	history, err := coach.History(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, history, 50, "history trimmed to the newest 50 turns")
	assert.Equal(t, "message 29", history[len(history)-2].Content)
}

func TestCoachClearHistory(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	user := createTestUser(t, store)
	coach := service.NewCoach(store, stubGenerator{}, internal.NopLogger())

	_, err := coach.Chat(ctx, user, &service.ChatRequest{Message: "hello"})
	require.NoError(t, err)

	require.NoError(t, coach.ClearHistory(ctx, user.ID))

	history, err := coach.History(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, history)
}
