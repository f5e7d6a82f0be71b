package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SchedulePeriod string

const (
	PeriodDaily   SchedulePeriod = "daily"
	PeriodWeekly  SchedulePeriod = "weekly"
	PeriodMonthly SchedulePeriod = "monthly"
)

const (
	DefaultWordLimitMin = 50
	DefaultWordLimitMax = 1000
)

// CommunitySchedule is the per-community recurrence config. One row per community.
type CommunitySchedule struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CommunityID   uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex" json:"community_id"`
	Community     *Community     `gorm:"foreignKey:CommunityID;constraint:OnDelete:CASCADE" json:"community,omitempty"`
	Time          string         `gorm:"size:5;not null" json:"time"` // HH:MM, local to Timezone
	Timezone      string         `gorm:"size:64;not null;default:UTC" json:"timezone"`
	Period        SchedulePeriod `gorm:"size:10;not null;default:daily" json:"period"`
	AutoGenTitle  bool           `gorm:"not null" json:"auto_gen_title"`
	TitlePrompt   string         `gorm:"type:text" json:"title_prompt"`
	AutoGenPost   bool           `gorm:"not null" json:"auto_gen_post"`
	PostPrompt    string         `gorm:"type:text" json:"post_prompt"`
	WordLimitMin  int            `gorm:"not null" json:"word_limit_min"`
	WordLimitMax  int            `gorm:"not null" json:"word_limit_max"`
	IsActive      bool           `gorm:"not null;index" json:"is_active"`
	LastExecution *time.Time     `json:"last_execution"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (s *CommunitySchedule) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID, err = uuid.NewV7()
	}
	return
}
