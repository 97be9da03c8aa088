package integration

import (
	"context"
	"log"
	"os"
	"testing"

	"ai-conversation-be/internal/pkg/logger"
	"ai-conversation-be/internal/repository/specification"
	"ai-conversation-be/internal/repository/unitofwork"
	"ai-conversation-be/pkg/checkpoint"
	"ai-conversation-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSaver(t *testing.T) (*checkpoint.Saver, unitofwork.RepositoryFactory) {
	t.Helper()

	// Load .env from root
	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	sysLogger := logger.NewZapLogger("logs/test.log", false)
	return checkpoint.NewSaver(uowFactory, sysLogger), uowFactory
}

func stateWithMessages(checkpointID string, messages ...interface{}) map[string]interface{} {
	return map[string]interface{}{
		"id": checkpointID,
		"channel_values": map[string]interface{}{
			"messages": messages,
		},
	}
}

func TestSaverPutAndGetTuple(t *testing.T) {
	saver, _ := setupSaver(t)
	ctx := context.Background()

	token := "it-thread-" + uuid.New().String()
	cfg := checkpoint.Config{ThreadID: token}
	defer saver.DeleteThread(ctx, cfg)

	cpID := uuid.New().String()
	state := stateWithMessages(cpID,
		map[string]interface{}{"type": "human", "content": "hello"},
		map[string]interface{}{"type": "ai", "content": "hi there"},
	)

	saved, err := saver.Put(ctx, cfg, state, map[string]interface{}{"source": "chat"}, map[string]int{"messages": 2})
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, cpID, saved.Checkpoint["id"])

	got, err := saver.GetTuple(ctx, cfg)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, cpID, got.Checkpoint["id"])
	assert.Equal(t, "chat", got.Metadata["source"])

	messages := got.Checkpoint["channel_values"].(map[string]interface{})["messages"].([]interface{})
	assert.Len(t, messages, 2)
}

func TestSaverMissesReturnNil(t *testing.T) {
	saver, _ := setupSaver(t)
	ctx := context.Background()

	// Absent token
	tuple, err := saver.GetTuple(ctx, checkpoint.Config{})
	assert.NoError(t, err)
	assert.Nil(t, tuple)

	// Unknown thread
	tuple, err = saver.GetTuple(ctx, checkpoint.Config{ThreadID: "never-created-" + uuid.New().String()})
	assert.NoError(t, err)
	assert.Nil(t, tuple)

	// Known thread, unknown checkpoint
	token := "it-thread-" + uuid.New().String()
	cfg := checkpoint.Config{ThreadID: token}
	defer saver.DeleteThread(ctx, cfg)

	_, err = saver.Put(ctx, cfg, stateWithMessages(uuid.New().String()), nil, nil)
	require.NoError(t, err)

	tuple, err = saver.GetTuple(ctx, checkpoint.Config{ThreadID: token, CheckpointID: uuid.New().String()})
	assert.NoError(t, err)
	assert.Nil(t, tuple)
}

func TestSaverSecondWriteWins(t *testing.T) {
	saver, uowFactory := setupSaver(t)
	ctx := context.Background()

	token := "it-thread-" + uuid.New().String()
	cfg := checkpoint.Config{ThreadID: token}
	defer saver.DeleteThread(ctx, cfg)

	cpID := uuid.New().String()

	_, err := saver.Put(ctx, cfg,
		stateWithMessages(cpID, map[string]interface{}{"type": "human", "content": "v1"}),
		map[string]interface{}{"rev": 1}, map[string]int{"messages": 1})
	require.NoError(t, err)

	_, err = saver.Put(ctx, cfg,
		stateWithMessages(cpID,
			map[string]interface{}{"type": "human", "content": "v1"},
			map[string]interface{}{"type": "ai", "content": "v2"}),
		map[string]interface{}{"rev": 2}, map[string]int{"messages": 2})
	require.NoError(t, err)

	got, err := saver.GetTuple(ctx, checkpoint.Config{ThreadID: token, CheckpointID: cpID})
	require.NoError(t, err)
	require.NotNil(t, got)

	messages := got.Checkpoint["channel_values"].(map[string]interface{})["messages"].([]interface{})
	assert.Len(t, messages, 2, "same checkpoint id overwrites in place")
	assert.EqualValues(t, 2, got.Metadata["rev"])

	tuples, err := saver.List(ctx, cfg, nil, "", 0)
	require.NoError(t, err)
	assert.Len(t, tuples, 1, "overwrite must not create a second row")

	uow := uowFactory.NewUnitOfWork(ctx)
	thread, err := uow.ConversationThreadRepository().FindOne(ctx,
		specification.ByThreadToken{Token: token})
	require.NoError(t, err)
	require.NotNil(t, thread)

	rows, err := uow.ConversationCheckpointRepository().Count(ctx,
		specification.ByThreadRef{ThreadId: thread.Id})
	require.NoError(t, err)
	assert.EqualValues(t, 1, rows)
}

func TestSaverLatestWins(t *testing.T) {
	saver, _ := setupSaver(t)
	ctx := context.Background()

	token := "it-thread-" + uuid.New().String()
	cfg := checkpoint.Config{ThreadID: token}
	defer saver.DeleteThread(ctx, cfg)

	first := uuid.New().String()
	second := uuid.New().String()

	_, err := saver.Put(ctx, cfg, stateWithMessages(first), nil, map[string]int{"messages": 1})
	require.NoError(t, err)
	_, err = saver.Put(ctx, cfg, stateWithMessages(second), nil, map[string]int{"messages": 2})
	require.NoError(t, err)

	got, err := saver.GetTuple(ctx, cfg)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, second, got.Checkpoint["id"])
}

func TestSaverParentLink(t *testing.T) {
	saver, uowFactory := setupSaver(t)
	ctx := context.Background()

	token := "it-thread-" + uuid.New().String()
	cfg := checkpoint.Config{ThreadID: token}
	defer saver.DeleteThread(ctx, cfg)

	parentID := uuid.New().String()
	childID := uuid.New().String()

	_, err := saver.Put(ctx, cfg, stateWithMessages(parentID), nil, nil)
	require.NoError(t, err)

	childState := stateWithMessages(childID)
	childState["parent_checkpoint_id"] = parentID
	_, err = saver.Put(ctx, cfg, childState, nil, nil)
	require.NoError(t, err)

	uow := uowFactory.NewUnitOfWork(ctx)
	thread, err := uow.ConversationThreadRepository().FindOne(ctx,
		specification.ByThreadToken{Token: token})
	require.NoError(t, err)
	require.NotNil(t, thread)

	child, err := uow.ConversationCheckpointRepository().FindOne(ctx,
		specification.ByThreadRef{ThreadId: thread.Id},
		specification.ByCheckpointId{CheckpointId: childID})
	require.NoError(t, err)
	require.NotNil(t, child)
	require.NotNil(t, child.ParentId)

	parent, err := uow.ConversationCheckpointRepository().FindOne(ctx,
		specification.ByThreadRef{ThreadId: thread.Id},
		specification.ByCheckpointId{CheckpointId: parentID})
	require.NoError(t, err)
	require.NotNil(t, parent)
	assert.Equal(t, parent.Id, *child.ParentId)

	// Unknown parent references are dropped silently, not rejected.
	orphanID := uuid.New().String()
	orphanState := stateWithMessages(orphanID)
	orphanState["parent_checkpoint_id"] = uuid.New().String()
	_, err = saver.Put(ctx, cfg, orphanState, nil, nil)
	require.NoError(t, err)

	orphan, err := uow.ConversationCheckpointRepository().FindOne(ctx,
		specification.ByThreadRef{ThreadId: thread.Id},
		specification.ByCheckpointId{CheckpointId: orphanID})
	require.NoError(t, err)
	require.NotNil(t, orphan)
	assert.Nil(t, orphan.ParentId)
}

func TestSaverChildSurvivesParentDelete(t *testing.T) {
	saver, uowFactory := setupSaver(t)
	ctx := context.Background()

	token := "it-thread-" + uuid.New().String()
	cfg := checkpoint.Config{ThreadID: token}
	defer saver.DeleteThread(ctx, cfg)

	parentID := uuid.New().String()
	childID := uuid.New().String()

	_, err := saver.Put(ctx, cfg, stateWithMessages(parentID), nil, nil)
	require.NoError(t, err)

	childState := stateWithMessages(childID)
	childState["parent_checkpoint_id"] = parentID
	_, err = saver.Put(ctx, cfg, childState, nil, nil)
	require.NoError(t, err)

	uow := uowFactory.NewUnitOfWork(ctx)
	thread, err := uow.ConversationThreadRepository().FindOne(ctx,
		specification.ByThreadToken{Token: token})
	require.NoError(t, err)
	require.NotNil(t, thread)

	parent, err := uow.ConversationCheckpointRepository().FindOne(ctx,
		specification.ByThreadRef{ThreadId: thread.Id},
		specification.ByCheckpointId{CheckpointId: parentID})
	require.NoError(t, err)
	require.NotNil(t, parent)

	// Removing the parent must not cascade. The child becomes a root.
	err = uow.ConversationCheckpointRepository().Delete(ctx, parent.Id)
	require.NoError(t, err)

	gone, err := saver.GetTuple(ctx, checkpoint.Config{ThreadID: token, CheckpointID: parentID})
	require.NoError(t, err)
	assert.Nil(t, gone)

	child, err := saver.GetTuple(ctx, checkpoint.Config{ThreadID: token, CheckpointID: childID})
	require.NoError(t, err)
	require.NotNil(t, child)

	row, err := uow.ConversationCheckpointRepository().FindOne(ctx,
		specification.ByThreadRef{ThreadId: thread.Id},
		specification.ByCheckpointId{CheckpointId: childID})
	require.NoError(t, err)
	require.NotNil(t, row)
	assert.Nil(t, row.ParentId)
}

func TestSaverThreadOwnerAttachOnce(t *testing.T) {
	saver, uowFactory := setupSaver(t)
	ctx := context.Background()

	token := "it-thread-" + uuid.New().String()
	defer saver.DeleteThread(ctx, checkpoint.Config{ThreadID: token})

	// Anonymous first contact
	_, err := saver.Put(ctx, checkpoint.Config{ThreadID: token},
		stateWithMessages(uuid.New().String()), nil, nil)
	require.NoError(t, err)

	uow := uowFactory.NewUnitOfWork(ctx)
	thread, err := uow.ConversationThreadRepository().FindOne(ctx,
		specification.ByThreadToken{Token: token})
	require.NoError(t, err)
	require.NotNil(t, thread)
	assert.Nil(t, thread.OwnerId)

	// First authenticated write attaches the owner
	owner := uuid.New()
	_, err = saver.Put(ctx, checkpoint.Config{ThreadID: token, OwnerID: &owner},
		stateWithMessages(uuid.New().String()), nil, nil)
	require.NoError(t, err)

	thread, err = uow.ConversationThreadRepository().FindOne(ctx,
		specification.ByThreadToken{Token: token})
	require.NoError(t, err)
	require.NotNil(t, thread.OwnerId)
	assert.Equal(t, owner, *thread.OwnerId)

	// A different caller does not steal the thread
	intruder := uuid.New()
	_, err = saver.Put(ctx, checkpoint.Config{ThreadID: token, OwnerID: &intruder},
		stateWithMessages(uuid.New().String()), nil, nil)
	require.NoError(t, err)

	thread, err = uow.ConversationThreadRepository().FindOne(ctx,
		specification.ByThreadToken{Token: token})
	require.NoError(t, err)
	require.NotNil(t, thread.OwnerId)
	assert.Equal(t, owner, *thread.OwnerId)

	threads, err := uow.ConversationThreadRepository().Count(ctx,
		specification.ByThreadToken{Token: token})
	require.NoError(t, err)
	assert.EqualValues(t, 1, threads, "repeat writes reuse the thread row")
}

func TestSaverList(t *testing.T) {
	saver, _ := setupSaver(t)
	ctx := context.Background()

	token := "it-thread-" + uuid.New().String()
	cfg := checkpoint.Config{ThreadID: token}
	defer saver.DeleteThread(ctx, cfg)

	c1 := uuid.New().String()
	c2 := uuid.New().String()

	s1 := stateWithMessages(c1)
	s1["version"] = 3
	_, err := saver.Put(ctx, cfg, s1, nil, nil)
	require.NoError(t, err)

	s2 := stateWithMessages(c2)
	s2["version"] = 4
	_, err = saver.Put(ctx, cfg, s2, nil, nil)
	require.NoError(t, err)

	// Newest first
	tuples, err := saver.List(ctx, cfg, nil, "", 0)
	require.NoError(t, err)
	require.Len(t, tuples, 2)
	assert.Equal(t, c2, tuples[0].Checkpoint["id"])
	assert.Equal(t, c1, tuples[1].Checkpoint["id"])

	// Limit
	tuples, err = saver.List(ctx, cfg, nil, "", 1)
	require.NoError(t, err)
	require.Len(t, tuples, 1)
	assert.Equal(t, c2, tuples[0].Checkpoint["id"])

	// Version filter
	tuples, err = saver.List(ctx, cfg, map[string]interface{}{"version": 3}, "", 0)
	require.NoError(t, err)
	require.Len(t, tuples, 1)
	assert.Equal(t, c1, tuples[0].Checkpoint["id"])

	// Malformed before filter is ignored
	tuples, err = saver.List(ctx, cfg, nil, "not-a-timestamp", 0)
	require.NoError(t, err)
	assert.Len(t, tuples, 2)

	// Unknown thread lists empty
	tuples, err = saver.List(ctx, checkpoint.Config{ThreadID: "missing-" + uuid.New().String()}, nil, "", 0)
	require.NoError(t, err)
	assert.Empty(t, tuples)
}

func TestSaverSanitizesOnRead(t *testing.T) {
	saver, _ := setupSaver(t)
	ctx := context.Background()

	token := "it-thread-" + uuid.New().String()
	cfg := checkpoint.Config{ThreadID: token}
	defer saver.DeleteThread(ctx, cfg)

	_, err := saver.Put(ctx, cfg, stateWithMessages(uuid.New().String(),
		map[string]interface{}{"type": "tool", "content": "legacy tool output"},
	), nil, nil)
	require.NoError(t, err)

	got, err := saver.GetTuple(ctx, cfg)
	require.NoError(t, err)
	require.NotNil(t, got)

	messages := got.Checkpoint["channel_values"].(map[string]interface{})["messages"].([]interface{})
	tool := messages[0].(map[string]interface{})
	assert.Equal(t, checkpoint.LegacyMissingToolCallID, tool["tool_call_id"])
}

func TestSaverDeleteThreadCascades(t *testing.T) {
	saver, _ := setupSaver(t)
	ctx := context.Background()

	token := "it-thread-" + uuid.New().String()
	cfg := checkpoint.Config{ThreadID: token}

	_, err := saver.Put(ctx, cfg, stateWithMessages(uuid.New().String()), nil, nil)
	require.NoError(t, err)

	require.NoError(t, saver.DeleteThread(ctx, cfg))

	tuple, err := saver.GetTuple(ctx, cfg)
	assert.NoError(t, err)
	assert.Nil(t, tuple)

	// Deleting an already absent thread is a no-op
	assert.NoError(t, saver.DeleteThread(ctx, cfg))
}
