package checkpoint

import (
	"context"
	"errors"
	"time"

	"ai-conversation-be/internal/entity"
	"ai-conversation-be/internal/pkg/logger"
	"ai-conversation-be/internal/repository/specification"
	"ai-conversation-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// ErrThreadIDRequired is the only failure the write path raises for a
// structural reason. Silently minting a token here would permanently
// fragment conversation history, so the caller must supply one.
var ErrThreadIDRequired = errors.New("thread_id is required in checkpoint config")

// Config identifies the conversation a checkpoint operation targets.
type Config struct {
	ThreadID     string
	CheckpointID string
	OwnerID      *uuid.UUID
	WorkflowKind string
	Metadata     map[string]interface{}
}

// Tuple is a saved checkpoint handed back to callers: sanitized state with
// the assigned checkpoint id merged in, plus raw metadata.
type Tuple struct {
	Config     Config
	Checkpoint map[string]interface{}
	Metadata   map[string]interface{}
}

// PendingWrite is one speculative per-task channel write.
type PendingWrite struct {
	Channel string
	Value   interface{}
}

// Saver persists and retrieves conversation checkpoints. All operations are
// request-scoped; Put runs inside one database transaction so the checkpoint
// upsert and the thread timestamp bump commit or roll back together.
type Saver struct {
	uowFactory unitofwork.RepositoryFactory
	log        logger.ILogger
}

func NewSaver(uowFactory unitofwork.RepositoryFactory, log logger.ILogger) *Saver {
	return &Saver{
		uowFactory: uowFactory,
		log:        log,
	}
}

// Put saves a checkpoint: resolves or creates the thread, links the parent
// checkpoint when it exists in the same thread, and upserts on
// (thread, checkpoint_id). An existing row's mutable fields are overwritten.
func (s *Saver) Put(
	ctx context.Context,
	cfg Config,
	checkpoint map[string]interface{},
	metadata map[string]interface{},
	newVersions map[string]int,
) (*Tuple, error) {
	if cfg.ThreadID == "" {
		return nil, ErrThreadIDRequired
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	tuple, err := s.putInTx(ctx, uow, cfg, checkpoint, metadata, newVersions)
	if err != nil {
		_ = uow.Rollback()
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}
	return tuple, nil
}

func (s *Saver) putInTx(
	ctx context.Context,
	uow unitofwork.UnitOfWork,
	cfg Config,
	checkpoint map[string]interface{},
	metadata map[string]interface{},
	newVersions map[string]int,
) (*Tuple, error) {
	thread, err := s.getOrCreateThread(ctx, uow, cfg)
	if err != nil {
		return nil, err
	}

	checkpointID := extractCheckpointID(checkpoint, cfg)

	// The parent is referenced by its per-thread checkpoint id. A dangling
	// reference is not an error; the checkpoint simply becomes a root.
	var parentRowID *uuid.UUID
	if parentID, _ := checkpoint["parent_checkpoint_id"].(string); parentID != "" {
		parent, err := uow.ConversationCheckpointRepository().FindOne(ctx,
			specification.ByThreadRef{ThreadId: thread.Id},
			specification.ByCheckpointId{CheckpointId: parentID},
		)
		if err != nil {
			return nil, err
		}
		if parent != nil {
			parentRowID = &parent.Id
		} else {
			s.log.Debug("CheckpointSaver", "parent checkpoint not found", map[string]interface{}{
				"thread_id": cfg.ThreadID,
				"parent_id": parentID,
			})
		}
	}

	version := payloadVersion(checkpoint)
	if len(newVersions) > 0 {
		version = maxVersion(newVersions)
	}

	safeState, ok := ToJSONable(checkpoint).(map[string]interface{})
	if !ok {
		safeState = map[string]interface{}{}
	}
	safeMetadata, ok := ToJSONable(metadata).(map[string]interface{})
	if !ok {
		safeMetadata = map[string]interface{}{}
	}

	cp := entity.ConversationCheckpoint{
		Id:                 uuid.New(),
		ThreadId:           thread.Id,
		CheckpointId:       checkpointID,
		ParentId:           parentRowID,
		State:              safeState,
		CheckpointMetadata: safeMetadata,
		Version:            version,
	}
	if err := uow.ConversationCheckpointRepository().Upsert(ctx, &cp); err != nil {
		return nil, err
	}

	thread.UpdatedAt = time.Now()
	if err := uow.ConversationThreadRepository().Update(ctx, thread); err != nil {
		return nil, err
	}

	s.log.Info("CheckpointSaver", "checkpoint saved", map[string]interface{}{
		"thread_id":     cfg.ThreadID,
		"checkpoint_id": checkpointID,
		"version":       version,
	})

	return &Tuple{
		Config:     cfg,
		Checkpoint: withCheckpointID(safeState, checkpointID),
		Metadata:   safeMetadata,
	}, nil
}

// PutWrites accepts speculative per-task writes. They are not durably
// persisted: the next full Put carries the merged state, so dropping them
// loses no conversation data. Logged for traceability.
func (s *Saver) PutWrites(ctx context.Context, cfg Config, writes []PendingWrite, taskID, taskPath string) error {
	s.log.Info("CheckpointSaver", "received pending writes", map[string]interface{}{
		"thread_id": cfg.ThreadID,
		"count":     len(writes),
		"task_id":   taskID,
		"task_path": taskPath,
	})
	return nil
}

// Get retrieves a checkpoint. Equivalent to GetTuple.
func (s *Saver) Get(ctx context.Context, cfg Config) (*Tuple, error) {
	return s.GetTuple(ctx, cfg)
}

// GetTuple retrieves the checkpoint named by cfg.CheckpointID, or the latest
// one for the thread when no id is given. Every miss (absent token, thread,
// or checkpoint) is a nil result, never an error: "no history yet" is the
// normal first-turn case.
func (s *Saver) GetTuple(ctx context.Context, cfg Config) (*Tuple, error) {
	if cfg.ThreadID == "" {
		s.log.Warn("CheckpointSaver", "lookup without thread token", nil)
		return nil, nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	thread, err := uow.ConversationThreadRepository().FindOne(ctx,
		specification.ByThreadToken{Token: cfg.ThreadID})
	if err != nil {
		return nil, err
	}
	if thread == nil {
		return nil, nil
	}

	specs := []specification.Specification{
		specification.ByThreadRef{ThreadId: thread.Id},
	}
	if cfg.CheckpointID != "" {
		specs = append(specs, specification.ByCheckpointId{CheckpointId: cfg.CheckpointID})
	} else {
		specs = append(specs,
			specification.OrderBy{Field: "created_at", Desc: true},
			specification.OrderBy{Field: "id", Desc: true},
		)
	}

	cp, err := uow.ConversationCheckpointRepository().FindOne(ctx, specs...)
	if err != nil {
		return nil, err
	}
	if cp == nil {
		return nil, nil
	}

	return s.toTuple(cfg, cp), nil
}

// List returns the thread's checkpoints newest first. A malformed before
// timestamp is ignored rather than rejected; an absent thread yields an
// empty slice.
func (s *Saver) List(
	ctx context.Context,
	cfg Config,
	filter map[string]interface{},
	before string,
	limit int,
) ([]*Tuple, error) {
	if cfg.ThreadID == "" {
		return []*Tuple{}, nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	thread, err := uow.ConversationThreadRepository().FindOne(ctx,
		specification.ByThreadToken{Token: cfg.ThreadID})
	if err != nil {
		return nil, err
	}
	if thread == nil {
		return []*Tuple{}, nil
	}

	specs := []specification.Specification{
		specification.ByThreadRef{ThreadId: thread.Id},
	}

	if before != "" {
		if beforeAt, err := time.Parse(time.RFC3339, before); err == nil {
			specs = append(specs, specification.CreatedBefore{Before: beforeAt})
		}
	}

	if filter != nil {
		if version, ok := filterVersion(filter["version"]); ok {
			specs = append(specs, specification.ByVersion{Version: version})
		}
	}

	specs = append(specs,
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.OrderBy{Field: "id", Desc: true},
	)
	if limit > 0 {
		specs = append(specs, specification.Limit{N: limit})
	}

	rows, err := uow.ConversationCheckpointRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	tuples := make([]*Tuple, len(rows))
	for i, cp := range rows {
		tuples[i] = s.toTuple(cfg, cp)
	}
	return tuples, nil
}

// DeleteThread removes a thread; checkpoints cascade with it. Deleting a
// single checkpoint instead leaves its children alive as new roots via the
// SET NULL parent constraint.
func (s *Saver) DeleteThread(ctx context.Context, cfg Config) error {
	if cfg.ThreadID == "" {
		return ErrThreadIDRequired
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	thread, err := uow.ConversationThreadRepository().FindOne(ctx,
		specification.ByThreadToken{Token: cfg.ThreadID})
	if err != nil {
		return err
	}
	if thread == nil {
		return nil
	}
	return uow.ConversationThreadRepository().Delete(ctx, thread.Id)
}

func (s *Saver) toTuple(cfg Config, cp *entity.ConversationCheckpoint) *Tuple {
	// State is sanitized on the way out; metadata is returned as stored.
	return &Tuple{
		Config:     cfg,
		Checkpoint: withCheckpointID(SanitizeState(cp.State), cp.CheckpointId),
		Metadata:   cp.CheckpointMetadata,
	}
}

// getOrCreateThread resolves the thread identity for cfg, creating it
// lazily, attaching an owner to a previously anonymous thread (one-way), and
// shallow-merging any caller metadata. It may write even on read-looking
// paths.
func (s *Saver) getOrCreateThread(ctx context.Context, uow unitofwork.UnitOfWork, cfg Config) (*entity.ConversationThread, error) {
	repo := uow.ConversationThreadRepository()

	thread, err := repo.FindOne(ctx, specification.ByThreadToken{Token: cfg.ThreadID})
	if err != nil {
		return nil, err
	}

	if thread == nil {
		kind := cfg.WorkflowKind
		if kind == "" {
			kind = "chatbot"
		}
		metadata, _ := ToJSONable(cfg.Metadata).(map[string]interface{})
		if metadata == nil {
			metadata = map[string]interface{}{}
		}
		thread = &entity.ConversationThread{
			Id:           uuid.New(),
			ThreadId:     cfg.ThreadID,
			OwnerId:      cfg.OwnerID,
			WorkflowKind: kind,
			Metadata:     metadata,
			IsActive:     true,
		}
		if err := repo.Create(ctx, thread); err != nil {
			return nil, err
		}
		return thread, nil
	}

	dirty := false

	// Anonymous threads gain an owner once; an owner is never reassigned.
	if thread.IsAnonymous() && cfg.OwnerID != nil {
		thread.OwnerId = cfg.OwnerID
		dirty = true
	}

	if len(cfg.Metadata) > 0 {
		if thread.Metadata == nil {
			thread.Metadata = map[string]interface{}{}
		}
		safeMetadata, _ := ToJSONable(cfg.Metadata).(map[string]interface{})
		for k, v := range safeMetadata {
			thread.Metadata[k] = v
		}
		dirty = true
	}

	if dirty {
		if err := repo.Update(ctx, thread); err != nil {
			return nil, err
		}
	}

	return thread, nil
}

func extractCheckpointID(checkpoint map[string]interface{}, cfg Config) string {
	if checkpoint != nil {
		if id, _ := checkpoint["id"].(string); id != "" {
			return id
		}
		if id, _ := checkpoint["checkpoint_id"].(string); id != "" {
			return id
		}
	}
	if cfg.CheckpointID != "" {
		return cfg.CheckpointID
	}
	return uuid.New().String()
}

func payloadVersion(checkpoint map[string]interface{}) int {
	if checkpoint == nil {
		return 1
	}
	switch v := checkpoint["version"].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 1
}

func maxVersion(newVersions map[string]int) int {
	max := 0
	first := true
	for _, v := range newVersions {
		if first || v > max {
			max = v
			first = false
		}
	}
	return max
}

func filterVersion(raw interface{}) (int, bool) {
	switch v := raw.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	}
	return 0, false
}

func withCheckpointID(state map[string]interface{}, checkpointID string) map[string]interface{} {
	out := make(map[string]interface{}, len(state)+1)
	for k, v := range state {
		out[k] = v
	}
	out["id"] = checkpointID
	return out
}
