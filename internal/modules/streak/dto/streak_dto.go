package dto

import (
	"time"

	commonDto "anoa.com/practiceforum/pkg/dto"
	"github.com/google/uuid"
)

type RecordActivityRequest struct {
	ActivityType string `json:"activity_type" binding:"required"`
	ReferenceID  string `json:"reference_id" binding:"max=36"`
}

// FreezeStatus is present only while a freeze is open.
type FreezeStatus struct {
	Active                 bool   `json:"active"`
	Until                  string `json:"until"`
	RecoveryTasksCompleted int    `json:"recovery_tasks_completed"`
	RemainingTasks         int    `json:"remaining_tasks"`
}

type StreakResponse struct {
	Kind         string        `json:"kind"`
	CurrentCount int           `json:"current_count"`
	MaxCount     int           `json:"max_count"`
	LastDate     *string       `json:"last_date"`
	FreezeStatus *FreezeStatus `json:"freeze_status"`
}

type RecordActivityResponse struct {
	StreakResponse
	// Credited is false when the day had already been counted.
	Credited bool   `json:"credited"`
	Outcome  string `json:"outcome"`
}

type UserStreaksResponse struct {
	UserID      uuid.UUID      `json:"user_id"`
	Translation StreakResponse `json:"translation"`
	Writing     StreakResponse `json:"writing"`
}

type StreakLeaderboardEntry struct {
	Position     int       `json:"position"`
	UserID       uuid.UUID `json:"user_id"`
	Username     string    `json:"username"`
	AvatarURL    *string   `json:"avatar_url,omitempty"`
	CurrentCount int       `json:"current_count"`
	MaxCount     int       `json:"max_count"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type StreakLeaderboardResponse struct {
	Kind string                   `json:"kind"`
	Data []StreakLeaderboardEntry `json:"data"`
	Meta commonDto.PaginationMeta `json:"meta"`
}

type LeaderboardFilter struct {
	Page  int `form:"page"`
	Limit int `form:"limit"`
}
