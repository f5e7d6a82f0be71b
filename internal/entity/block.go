package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Block is the per-period container the scheduler creates.
// (community_id, bucket_key) is unique so a bucket can be serviced at most once.
type Block struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CommunityID     uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_block_bucket,priority:1;index:idx_block_community_created,priority:1" json:"community_id"`
	Community       *Community     `gorm:"foreignKey:CommunityID;constraint:OnDelete:CASCADE" json:"community,omitempty"`
	Title           string         `gorm:"size:255;not null" json:"title"`
	Date            datatypes.Date `gorm:"not null" json:"date"`
	BucketKey       *string        `gorm:"size:16;uniqueIndex:idx_block_bucket,priority:2" json:"bucket_key,omitempty"`
	IsAutoGenerated bool           `gorm:"not null" json:"is_auto_generated"`
	ScheduleID      *uuid.UUID     `gorm:"type:uuid" json:"schedule_id,omitempty"`
	CreatedAt       time.Time      `gorm:"autoCreateTime;index:idx_block_community_created,priority:2" json:"created_at"`
}

func (b *Block) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == uuid.Nil {
		b.ID, err = uuid.NewV7()
	}
	return
}
