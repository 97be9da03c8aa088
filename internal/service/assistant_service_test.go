package service

import (
	"context"
	"testing"

	"ai-conversation-be/internal/constant"
	"ai-conversation-be/internal/repository/memory"
	"ai-conversation-be/pkg/checkpoint"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveThreadTokenExplicitWins(t *testing.T) {
	as := &assistantService{sessionStore: memory.NewSessionRepository()}

	token, err := as.resolveThreadToken(context.Background(),
		Caller{SessionKey: "sess-1"}, "explicit-token", true)
	require.NoError(t, err)
	assert.Equal(t, "explicit-token", token)
}

func TestResolveThreadTokenMintsAndRemembers(t *testing.T) {
	store := memory.NewSessionRepository()
	as := &assistantService{sessionStore: store}
	ctx := context.Background()
	caller := Caller{SessionKey: "sess-2"}

	minted, err := as.resolveThreadToken(ctx, caller, "", true)
	require.NoError(t, err)
	require.NotEmpty(t, minted)
	_, parseErr := uuid.Parse(minted)
	assert.NoError(t, parseErr)

	// Same session resolves to the same token afterwards
	again, err := as.resolveThreadToken(ctx, caller, "", true)
	require.NoError(t, err)
	assert.Equal(t, minted, again)

	// And on the read path too
	read, err := as.resolveThreadToken(ctx, caller, "", false)
	require.NoError(t, err)
	assert.Equal(t, minted, read)
}

func TestResolveThreadTokenReadPathDoesNotMint(t *testing.T) {
	as := &assistantService{sessionStore: memory.NewSessionRepository()}

	token, err := as.resolveThreadToken(context.Background(),
		Caller{SessionKey: "sess-3"}, "", false)
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestBuildLLMHistoryTrimsToLimit(t *testing.T) {
	as := &assistantService{historyLimit: 2}

	history := []checkpoint.HistoryMessage{
		{Role: "user", Content: "one"},
		{Role: "assistant", Content: "two"},
		{Role: "user", Content: "three"},
	}

	messages := as.buildLLMHistory(history, "latest question")
	require.Len(t, messages, 4) // system + 2 kept + new user turn

	assert.Equal(t, constant.ChatRoleSystem, messages[0].Role)
	assert.Equal(t, "two", messages[1].Content, "oldest turns are dropped first")
	assert.Equal(t, "three", messages[2].Content)
	assert.Equal(t, constant.ChatRoleUser, messages[3].Role)
	assert.Equal(t, "latest question", messages[3].Content)
}

func TestBuildLLMHistoryNoLimit(t *testing.T) {
	as := &assistantService{historyLimit: 0}

	messages := as.buildLLMHistory([]checkpoint.HistoryMessage{
		{Role: "user", Content: "kept"},
	}, "q")
	assert.Len(t, messages, 3)
}

func TestPreviousMessages(t *testing.T) {
	assert.Nil(t, previousMessages(nil))
	assert.Nil(t, previousMessages(&checkpoint.Tuple{Checkpoint: map[string]interface{}{}}))

	tuple := &checkpoint.Tuple{Checkpoint: map[string]interface{}{
		"channel_values": map[string]interface{}{
			"messages": []interface{}{"a", "b"},
		},
	}}
	assert.Len(t, previousMessages(tuple), 2)
}
