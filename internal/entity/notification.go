package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	NotificationRankIncrease = "rank_increase"
)

type Notification struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"` // User who receives the notification
	EntityType string    `gorm:"type:varchar(50);not null" json:"entity_type"` // 'rank'
	EntityID   uuid.UUID `gorm:"type:uuid;not null" json:"entity_id"`
	Type       string    `gorm:"type:varchar(50);not null" json:"type"`
	Message    string    `gorm:"type:text" json:"message"`
	IsRead     bool      `gorm:"default:false" json:"is_read"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
