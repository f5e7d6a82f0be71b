package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Streak struct {
	ID                     uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID                 uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_streak_user_kind,priority:1" json:"user_id"`
	User                   *User           `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Kind                   ActivityKind    `gorm:"size:20;not null;uniqueIndex:idx_streak_user_kind,priority:2" json:"kind"`
	CurrentCount           int             `gorm:"not null;default:0" json:"current_count"`
	MaxCount               int             `gorm:"not null;default:0" json:"max_count"`
	LastDate               *datatypes.Date `json:"last_date"`
	FreezeUntil            *datatypes.Date `json:"freeze_until"`
	RecoveryTasksCompleted int             `gorm:"not null;default:0" json:"recovery_tasks_completed"`
	// Version increases on every credited activity; rank syncs carry it to drop stale updates.
	Version   int64     `gorm:"not null;default:0" json:"version"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (s *Streak) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID, err = uuid.NewV7()
	}
	return
}
