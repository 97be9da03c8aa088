package specification

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByThreadToken filters threads by their external token
type ByThreadToken struct {
	Token string
}

func (s ByThreadToken) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("thread_id = ?", s.Token)
}

// ByThreadRef filters checkpoints by their owning thread row id
type ByThreadRef struct {
	ThreadId uuid.UUID
}

func (s ByThreadRef) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("thread_id = ?", s.ThreadId)
}

// ByCheckpointId filters by the per-thread checkpoint identifier
type ByCheckpointId struct {
	CheckpointId string
}

func (s ByCheckpointId) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("checkpoint_id = ?", s.CheckpointId)
}

// ByVersion filters checkpoints by exact version
type ByVersion struct {
	Version int
}

func (s ByVersion) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("version = ?", s.Version)
}

// CreatedBefore restricts to rows created strictly before the given instant
type CreatedBefore struct {
	Before time.Time
}

func (s CreatedBefore) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("created_at < ?", s.Before)
}

// ByOwner filters threads by authenticated owner
type ByOwner struct {
	OwnerId uuid.UUID
}

func (s ByOwner) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("owner_id = ?", s.OwnerId)
}

// Limit truncates the result set
type Limit struct {
	N int
}

func (s Limit) Apply(db *gorm.DB) *gorm.DB {
	return db.Limit(s.N)
}
