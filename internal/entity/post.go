package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Post struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	BlockID         uuid.UUID `gorm:"type:uuid;not null;index" json:"block_id"`
	Block           *Block    `gorm:"foreignKey:BlockID;constraint:OnDelete:CASCADE" json:"block,omitempty"`
	UserID          uuid.UUID `gorm:"type:uuid;not null" json:"user_id"`
	User            *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Title           string    `gorm:"size:255;not null" json:"title"`
	Content         string    `gorm:"type:text;not null" json:"content"`
	WordCount       int       `gorm:"not null" json:"word_count"`
	IsAutoGenerated bool      `gorm:"not null" json:"is_auto_generated"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID, err = uuid.NewV7()
	}
	return
}
