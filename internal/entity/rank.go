package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RankChangeIncrease = "increase"
	RankChangeDecrease = "decrease"
)

type UserRank struct {
	ID     uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_rank_user_kind,priority:1" json:"user_id"`
	User   *User        `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Kind   ActivityKind `gorm:"size:20;not null;uniqueIndex:idx_rank_user_kind,priority:2;index:idx_rank_kind" json:"kind"`

	// Zero ids mean the row was just created and has not been placed yet.
	MajorTierID    uint         `json:"major_tier_id"`
	MajorTier      MajorTier    `gorm:"foreignKey:MajorTierID" json:"major_tier"`
	SubMajorTierID uint         `json:"sub_major_tier_id"`
	SubMajorTier   SubMajorTier `gorm:"foreignKey:SubMajorTierID" json:"sub_major_tier"`
	MinorTierID    uint         `json:"minor_tier_id"`
	MinorTier      MinorTier    `gorm:"foreignKey:MinorTierID" json:"minor_tier"`
	DaysCount      int          `gorm:"not null;default:0" json:"days_count"`

	HighestMajorTierID    uint         `json:"highest_major_tier_id"`
	HighestMajorTier      MajorTier    `gorm:"foreignKey:HighestMajorTierID" json:"highest_major_tier"`
	HighestSubMajorTierID uint         `json:"highest_sub_major_tier_id"`
	HighestSubMajorTier   SubMajorTier `gorm:"foreignKey:HighestSubMajorTierID" json:"highest_sub_major_tier"`
	HighestMinorTierID    uint         `json:"highest_minor_tier_id"`
	HighestMinorTier      MinorTier    `gorm:"foreignKey:HighestMinorTierID" json:"highest_minor_tier"`
	HighestDaysCount      int          `gorm:"not null;default:0" json:"highest_days_count"`

	SyncedVersion int64     `gorm:"not null;default:0" json:"-"`
	LastUpdate    time.Time `json:"last_update"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (r *UserRank) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == uuid.Nil {
		r.ID, err = uuid.NewV7()
	}
	return
}

// RankHistory rows are append-only.
type RankHistory struct {
	ID             uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID    `gorm:"type:uuid;not null;index:idx_rank_history_user,priority:1" json:"user_id"`
	Kind           ActivityKind `gorm:"size:20;not null;index:idx_rank_history_user,priority:2" json:"kind"`
	MajorTierID    uint         `json:"major_tier_id"`
	MajorTier      MajorTier    `gorm:"foreignKey:MajorTierID" json:"major_tier"`
	SubMajorTierID uint         `json:"sub_major_tier_id"`
	SubMajorTier   SubMajorTier `gorm:"foreignKey:SubMajorTierID" json:"sub_major_tier"`
	MinorTierID    uint         `json:"minor_tier_id"`
	MinorTier      MinorTier    `gorm:"foreignKey:MinorTierID" json:"minor_tier"`
	DaysCount      int          `gorm:"not null" json:"days_count"`
	ChangeType     string       `gorm:"size:10;not null" json:"change_type"`
	ChangeDate     time.Time    `gorm:"not null;index:idx_rank_history_user,priority:3" json:"change_date"`
}

func (h *RankHistory) BeforeCreate(tx *gorm.DB) (err error) {
	if h.ID == uuid.Nil {
		h.ID, err = uuid.NewV7()
	}
	return
}
