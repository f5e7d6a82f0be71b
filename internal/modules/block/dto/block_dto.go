package dto

import (
	"time"

	commonDto "anoa.com/practiceforum/pkg/dto"
	"github.com/google/uuid"
)

type BlockResponse struct {
	ID              uuid.UUID  `json:"id"`
	CommunityID     uuid.UUID  `json:"community_id"`
	Title           string     `json:"title"`
	Date            string     `json:"date"`
	BucketKey       *string    `json:"bucket_key,omitempty"`
	IsAutoGenerated bool       `json:"is_auto_generated"`
	ScheduleID      *uuid.UUID `json:"schedule_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

type BlockFilter struct {
	Page  int `form:"page"`
	Limit int `form:"limit"`
}

type PaginatedBlockResponse struct {
	Data []BlockResponse          `json:"data"`
	Meta commonDto.PaginationMeta `json:"meta"`
}
