package entity

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestThreadIsAnonymous(t *testing.T) {
	thread := &ConversationThread{ThreadId: "tok-1"}
	assert.True(t, thread.IsAnonymous())

	ownerId := uuid.New()
	thread.OwnerId = &ownerId
	assert.False(t, thread.IsAnonymous())
}
